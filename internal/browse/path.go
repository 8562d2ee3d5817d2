// Package browse maps places to their route in the geographic browse hierarchy:
// continent, country, state, then individual sub-state places.
package browse

import (
	"fmt"
	"strings"

	"github.com/alexivanou/ddigeo/internal/model"
)

// RoutePrefix is where the browse hierarchy is mounted
const RoutePrefix = "/geo"

var (
	// country level besides the PCL* family
	countryFeatureCodes  = map[string]bool{"TERR": true, "PPLC": true}
	stateFeatureCodes    = map[string]bool{"ADM1": true, "RGN": true}
	subStateFeatureCodes = map[string]bool{
		"PPL":   true,
		"PPLA":  true,
		"PPLA2": true,
		"ADMD":  true,
		"ISL":   true,
		"ADM2":  true,
	}
)

// ContinentPath returns the continent level route
func ContinentPath(continent string) string {
	return fmt.Sprintf("%s/%s/", RoutePrefix, continent)
}

// CountryPath returns the country level route
func CountryPath(continent, country string) string {
	return fmt.Sprintf("%s/%s/%s/", RoutePrefix, continent, country)
}

// StatePath returns the state level route
func StatePath(continent, country, state string) string {
	return fmt.Sprintf("%s/%s/%s/%s/", RoutePrefix, continent, country, state)
}

// PlacePath returns the route of a single place inside a state
func PlacePath(continent, country, state string, geonamesID int) string {
	return fmt.Sprintf("%s/%s/%s/%s/%d/", RoutePrefix, continent, country, state, geonamesID)
}

// IsCountryLevel reports whether a feature code denotes a country-like entity
func IsCountryLevel(featureCode string) bool {
	return strings.HasPrefix(featureCode, "PCL") || countryFeatureCodes[featureCode]
}

// Path returns the browse route for a *model.Location, *model.GeonamesCountry
// or *model.GeonamesContinent, or "" when the place lacks the codes its level
// needs.
func Path(place interface{}) string {
	switch p := place.(type) {
	case *model.Location:
		return locationPath(p)
	case *model.GeonamesContinent:
		if p == nil || p.Code == "" {
			return ""
		}
		return ContinentPath(p.Code)
	case *model.GeonamesCountry:
		if p == nil || p.Code == "" || p.Continent == "" {
			return ""
		}
		return CountryPath(p.Continent, p.Code)
	}
	return ""
}

func locationPath(loc *model.Location) string {
	if loc == nil {
		return ""
	}
	if loc.FeatureCode == "CONT" {
		if loc.Continent() == "" {
			return ""
		}
		return ContinentPath(loc.Continent())
	}

	continent, country := loc.Continent(), loc.Country()
	if continent == "" || country == "" {
		return ""
	}
	if IsCountryLevel(loc.FeatureCode) {
		return CountryPath(continent, country)
	}

	state := loc.State()
	if state == "" {
		return ""
	}
	if stateFeatureCodes[loc.FeatureCode] {
		return StatePath(continent, country, state)
	}
	if subStateFeatureCodes[loc.FeatureCode] {
		return PlacePath(continent, country, state, loc.GeonamesID)
	}
	return ""
}
