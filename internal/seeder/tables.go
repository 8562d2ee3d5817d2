package seeder

import "github.com/alexivanou/ddigeo/internal/model"

// Continents returns the GeoNames continents
func Continents() []model.GeonamesContinent {
	return []model.GeonamesContinent{
		{Name: "Africa", Code: "AF", GeonamesID: 6255146},
		{Name: "Asia", Code: "AS", GeonamesID: 6255147},
		{Name: "Europe", Code: "EU", GeonamesID: 6255148},
		{Name: "North America", Code: "NA", GeonamesID: 6255149},
		{Name: "South America", Code: "SA", GeonamesID: 6255150},
		{Name: "Oceania", Code: "OC", GeonamesID: 6255151},
		{Name: "Antarctica", Code: "AN", GeonamesID: 6255152},
	}
}

// HistoricCountries are dissolved states that codebooks still name.
// The geocoder takes their country code from this table.
func HistoricCountries() []model.GeonamesCountry {
	return []model.GeonamesCountry{
		{Name: "Union of Soviet Socialist Republics", Code: "SU", NumericCode: 810, Continent: "EU", GeonamesID: 8354411},
		{Name: "Yugoslavia", Code: "YU", NumericCode: 890, Continent: "EU", GeonamesID: 8505035},
		{Name: "Serbia and Montenegro", Code: "CS", NumericCode: 891, Continent: "EU", GeonamesID: 8505033},
	}
}

// StateCodes returns U.S. state abbreviations with their FIPS codes
func StateCodes() []model.StateCode {
	return []model.StateCode{
		{Name: "Alabama", Code: "AL", FIPS: 1},
		{Name: "Alaska", Code: "AK", FIPS: 2},
		{Name: "Arizona", Code: "AZ", FIPS: 4},
		{Name: "Arkansas", Code: "AR", FIPS: 5},
		{Name: "California", Code: "CA", FIPS: 6},
		{Name: "Colorado", Code: "CO", FIPS: 8},
		{Name: "Connecticut", Code: "CT", FIPS: 9},
		{Name: "Delaware", Code: "DE", FIPS: 10},
		{Name: "District of Columbia", Code: "DC", FIPS: 11},
		{Name: "Florida", Code: "FL", FIPS: 12},
		{Name: "Georgia", Code: "GA", FIPS: 13},
		{Name: "Hawaii", Code: "HI", FIPS: 15},
		{Name: "Idaho", Code: "ID", FIPS: 16},
		{Name: "Illinois", Code: "IL", FIPS: 17},
		{Name: "Indiana", Code: "IN", FIPS: 18},
		{Name: "Iowa", Code: "IA", FIPS: 19},
		{Name: "Kansas", Code: "KS", FIPS: 20},
		{Name: "Kentucky", Code: "KY", FIPS: 21},
		{Name: "Louisiana", Code: "LA", FIPS: 22},
		{Name: "Maine", Code: "ME", FIPS: 23},
		{Name: "Maryland", Code: "MD", FIPS: 24},
		{Name: "Massachusetts", Code: "MA", FIPS: 25},
		{Name: "Michigan", Code: "MI", FIPS: 26},
		{Name: "Minnesota", Code: "MN", FIPS: 27},
		{Name: "Mississippi", Code: "MS", FIPS: 28},
		{Name: "Missouri", Code: "MO", FIPS: 29},
		{Name: "Montana", Code: "MT", FIPS: 30},
		{Name: "Nebraska", Code: "NE", FIPS: 31},
		{Name: "Nevada", Code: "NV", FIPS: 32},
		{Name: "New Hampshire", Code: "NH", FIPS: 33},
		{Name: "New Jersey", Code: "NJ", FIPS: 34},
		{Name: "New Mexico", Code: "NM", FIPS: 35},
		{Name: "New York", Code: "NY", FIPS: 36},
		{Name: "North Carolina", Code: "NC", FIPS: 37},
		{Name: "North Dakota", Code: "ND", FIPS: 38},
		{Name: "Ohio", Code: "OH", FIPS: 39},
		{Name: "Oklahoma", Code: "OK", FIPS: 40},
		{Name: "Oregon", Code: "OR", FIPS: 41},
		{Name: "Pennsylvania", Code: "PA", FIPS: 42},
		{Name: "Rhode Island", Code: "RI", FIPS: 44},
		{Name: "South Carolina", Code: "SC", FIPS: 45},
		{Name: "South Dakota", Code: "SD", FIPS: 46},
		{Name: "Tennessee", Code: "TN", FIPS: 47},
		{Name: "Texas", Code: "TX", FIPS: 48},
		{Name: "Utah", Code: "UT", FIPS: 49},
		{Name: "Vermont", Code: "VT", FIPS: 50},
		{Name: "Virginia", Code: "VA", FIPS: 51},
		{Name: "Washington", Code: "WA", FIPS: 53},
		{Name: "West Virginia", Code: "WV", FIPS: 54},
		{Name: "Wisconsin", Code: "WI", FIPS: 55},
		{Name: "Wyoming", Code: "WY", FIPS: 56},
		{Name: "Puerto Rico", Code: "PR", FIPS: 72},
	}
}
