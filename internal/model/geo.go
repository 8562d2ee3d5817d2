package model

import "fmt"

// IdentifierPrefix is prepended to a GeoNames id when it is written into a
// coverage term. Search and browse filtering match on the exact string.
const IdentifierPrefix = "geonames:"

// Identifier formats a GeoNames id as a coverage term identifier
func Identifier(geonamesID int) string {
	return fmt.Sprintf("%s%d", IdentifierPrefix, geonamesID)
}

// Location is a previously resolved place. Rows are append-only and unique by GeonamesID;
// Name is not unique.
type Location struct {
	ID            int     `db:"id" json:"-"`
	Name          string  `db:"name" json:"name"`
	GeonamesID    int     `db:"geonames_id" json:"geonames_id"`
	Latitude      float64 `db:"latitude" json:"latitude"`
	Longitude     float64 `db:"longitude" json:"longitude"`
	CountryCode   *string `db:"country_code" json:"country_code,omitempty"`
	FeatureCode   string  `db:"feature_code" json:"feature_code"`
	ContinentCode *string `db:"continent_code" json:"continent_code,omitempty"`
	// StateCode is the GeoNames adminCode1; for the US it is the two-letter state code
	StateCode *string `db:"state_code" json:"state_code,omitempty"`
}

// Identifier returns the "geonames:<id>" form of the location id
func (l *Location) Identifier() string {
	return Identifier(l.GeonamesID)
}

// Country returns the country code, or "" when unset
func (l *Location) Country() string {
	return deref(l.CountryCode)
}

// Continent returns the continent code, or "" when unset
func (l *Location) Continent() string {
	return deref(l.ContinentCode)
}

// State returns the state code, or "" when unset
func (l *Location) State() string {
	return deref(l.StateCode)
}

func (l *Location) String() string {
	return fmt.Sprintf("%s (%s, %s)", l.Name, l.Country(), l.Continent())
}

// GeonamesCountry is minimal country information from the GeoNames countryInfo download
type GeonamesCountry struct {
	ID          int    `db:"id" json:"-"`
	Name        string `db:"name" json:"name"`
	Code        string `db:"code" json:"code"`
	NumericCode int    `db:"numeric_code" json:"numeric_code"`
	Continent   string `db:"continent" json:"continent"`
	GeonamesID  int    `db:"geonames_id" json:"geonames_id"`
}

// GeonamesContinent is a continent name and code as listed by GeoNames
type GeonamesContinent struct {
	ID         int    `db:"id" json:"-"`
	Name       string `db:"name" json:"name"`
	Code       string `db:"code" json:"code"`
	GeonamesID int    `db:"geonames_id" json:"geonames_id"`
}

// StateCode is a U.S. state abbreviation and FIPS code, used for map highlighting
type StateCode struct {
	ID   int    `db:"id" json:"-"`
	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`
	FIPS int    `db:"fips" json:"fips"`
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
