package geocoder

import (
	"context"
	"fmt"

	"github.com/alexivanou/ddigeo/internal/geonames"
	"github.com/alexivanou/ddigeo/internal/model"
	"github.com/alexivanou/ddigeo/internal/repository"
	"go.uber.org/zap"
)

// historicCountryOverrides lists places whose country code comes from the
// local country table (rows added for dissolved states) rather than from
// GeoNames.
var historicCountryOverrides = map[int]string{
	8354411: "Union of Soviet Socialist Republics",
	8505035: "Yugoslavia",
	8505033: "Serbia and Montenegro",
}

// sub-state places that need their ADM1 row for browsing
var backfillFeatureCodes = map[string]bool{
	"PPLA":  true,
	"PPLA2": true,
	"ISL":   true,
	"ADM2":  true,
}

// LocationFromGeoname returns the cached location for a GeoNames result,
// creating it when the id has not been seen yet. New sub-state places also
// pull in their containing state.
func (g *Geocoder) LocationFromGeoname(ctx context.Context, res *geonames.Result) (*model.Location, error) {
	existing, err := g.locations.GetByGeonamesID(ctx, res.GeonameID)
	if err != nil {
		return nil, fmt.Errorf("location lookup: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	countryCode, _ := res.CountryCode()
	if _, ok := historicCountryOverrides[res.GeonameID]; ok {
		if code := g.historicCountryCode(ctx, res.GeonameID); code != "" {
			countryCode = code
		}
	}
	stateCode, _ := res.AdminCode1()

	loc := &model.Location{
		Name:          res.Name,
		GeonamesID:    res.GeonameID,
		Latitude:      res.Latitude,
		Longitude:     res.Longitude,
		CountryCode:   model.StringPtr(countryCode),
		FeatureCode:   res.FeatureCode,
		ContinentCode: model.StringPtr(g.continentCode(ctx, countryCode, res)),
		StateCode:     model.StringPtr(stateCode),
	}
	if err := g.locations.Insert(ctx, loc); err != nil {
		return nil, fmt.Errorf("failed to save location %d: %w", res.GeonameID, err)
	}
	g.logger.Info("new location",
		zap.Int("geonames_id", loc.GeonamesID),
		zap.String("name", loc.Name),
		zap.String("feature_code", loc.FeatureCode))

	if backfillFeatureCodes[loc.FeatureCode] && loc.StateCode != nil && loc.CountryCode != nil {
		if err := g.backfillState(ctx, loc); err != nil {
			return loc, err
		}
	}
	return loc, nil
}

func (g *Geocoder) historicCountryCode(ctx context.Context, geonamesID int) string {
	country, err := g.countries.GetCountryByGeonamesID(ctx, geonamesID)
	if err != nil {
		g.logger.Warn("historic country lookup failed", zap.Int("geonames_id", geonamesID), zap.Error(err))
		return ""
	}
	if country == nil {
		return ""
	}
	return country.Code
}

// continentCode derives the continent; lookup misses leave it unset
func (g *Geocoder) continentCode(ctx context.Context, countryCode string, res *geonames.Result) string {
	if countryCode != "" {
		country, err := g.countries.GetCountryByCode(ctx, countryCode)
		if err != nil {
			g.logger.Warn("country lookup failed", zap.String("country", countryCode), zap.Error(err))
			return ""
		}
		if country == nil {
			return ""
		}
		return country.Continent
	}

	if res.FeatureCode != featureContinent {
		return ""
	}
	for _, c := range g.continents {
		if c.GeonamesID == res.GeonameID {
			return c.Code
		}
	}
	return ""
}

func (g *Geocoder) backfillState(ctx context.Context, loc *model.Location) error {
	exists, err := g.locations.Exists(ctx, repository.LocationQuery{
		CountryCode:  loc.Country(),
		StateCode:    loc.State(),
		FeatureCodes: []string{featureState},
	})
	if err != nil {
		return fmt.Errorf("state lookup: %w", err)
	}
	if exists {
		return nil
	}

	state, err := g.provider.Geocode(ctx, geonames.Query{
		Country:     loc.Country(),
		FeatureCode: featureState,
		AdminCode1:  loc.State(),
	})
	if err != nil {
		return fmt.Errorf("state back-fill for %s: %w", loc.Name, err)
	}
	if state == nil {
		g.logger.Warn("no geonames result for containing state",
			zap.String("country", loc.Country()),
			zap.String("state", loc.State()))
		return nil
	}
	_, err = g.LocationFromGeoname(ctx, state)
	return err
}
