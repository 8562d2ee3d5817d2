package service

import (
	"context"
	"fmt"

	"github.com/alexivanou/ddigeo/internal/browse"
	"github.com/alexivanou/ddigeo/internal/model"
	"github.com/alexivanou/ddigeo/internal/repository"
)

const (
	countryFeaturePrefix = "PCL"
	featureState         = "ADM1"
	featureRegion        = "RGN"
	countryUS            = "US"
)

// Browse returns one level of the geographic hierarchy: the continents in
// use, the countries of a continent, the states of a country, the places of
// a state, or a single place.
func (s *Service) Browse(ctx context.Context, req model.BrowseRequest) (*model.BrowsePage, error) {
	page := &model.BrowsePage{
		Hierarchy: []model.PlaceLink{},
		Places:    []model.PlaceLink{},
	}

	if req.Continent == "" {
		return s.browseGlobal(ctx, page)
	}

	continent, err := s.continents.GetContinentByCode(ctx, req.Continent)
	if err != nil {
		return nil, fmt.Errorf("failed to get continent: %w", err)
	}
	if continent == nil {
		return nil, fmt.Errorf("continent %s: %w", req.Continent, ErrNotFound)
	}
	page.Descend(continentLink(continent))
	page.Identifiers = []string{model.Identifier(continent.GeonamesID)}

	if req.Country == "" {
		codes, err := s.locations.ListCountryCodes(ctx, continent.Code)
		if err != nil {
			return nil, fmt.Errorf("failed to list country codes: %w", err)
		}
		countries, err := s.countries.ListCountries(ctx, codes)
		if err != nil {
			return nil, fmt.Errorf("failed to list countries: %w", err)
		}
		for i := range countries {
			page.Places = append(page.Places, countryLink(&countries[i]))
		}
		return page, nil
	}

	country, err := s.countries.GetCountryByCode(ctx, req.Country)
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	if country == nil || country.Continent != continent.Code {
		return nil, fmt.Errorf("country %s/%s: %w", req.Continent, req.Country, ErrNotFound)
	}
	page.Descend(countryLink(country))

	// a country code can belong to several entities (Czech Republic, Czechoslovakia)
	entities, err := s.locations.Find(ctx, repository.LocationQuery{
		CountryCode:       country.Code,
		FeatureCodePrefix: countryFeaturePrefix,
		OrderByName:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find country locations: %w", err)
	}
	page.Identifiers = identifiers(entities)

	if req.State == "" {
		states, err := s.locations.Find(ctx, repository.LocationQuery{
			CountryCode:  country.Code,
			FeatureCodes: []string{featureState},
			OrderByName:  true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to find states: %w", err)
		}
		page.Places = append(page.Places, locationLinks(states)...)
		if err := s.addFIPS(ctx, country.Code, page.Places); err != nil {
			return nil, err
		}

		for i := range entities {
			if entities[i].GeonamesID != country.GeonamesID {
				page.AlternateNames = append(page.AlternateNames, locationLink(&entities[i]))
			}
		}
		return page, nil
	}

	states, err := s.locations.Find(ctx, repository.LocationQuery{
		StateCode:     req.State,
		FeatureCodes:  []string{featureState, featureRegion},
		ContinentCode: continent.Code,
		CountryCode:   country.Code,
		Limit:         1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find state: %w", err)
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("state %s/%s/%s: %w", req.Continent, req.Country, req.State, ErrNotFound)
	}
	state := &states[0]
	stateLink := []model.PlaceLink{locationLink(state)}
	if err := s.addFIPS(ctx, country.Code, stateLink); err != nil {
		return nil, err
	}
	page.Descend(stateLink[0])
	page.Identifiers = []string{state.Identifier()}

	if req.GeonamesID == 0 {
		places, err := s.locations.Find(ctx, repository.LocationQuery{
			CountryCode:         country.Code,
			StateCode:           state.State(),
			ExcludeFeatureCodes: []string{featureState},
			OrderByName:         true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to find places: %w", err)
		}
		page.Places = append(page.Places, locationLinks(places)...)
		return page, nil
	}

	place, err := s.locations.GetByGeonamesID(ctx, req.GeonamesID)
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	if place == nil || place.Continent() != continent.Code || place.Country() != country.Code {
		return nil, fmt.Errorf("place %d: %w", req.GeonamesID, ErrNotFound)
	}
	page.Descend(locationLink(place))
	page.Identifiers = []string{place.Identifier()}
	return page, nil
}

// browseGlobal lists the continents that resolved locations belong to
func (s *Service) browseGlobal(ctx context.Context, page *model.BrowsePage) (*model.BrowsePage, error) {
	codes, err := s.locations.ListContinentCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list continent codes: %w", err)
	}
	inUse := make(map[string]bool, len(codes))
	for _, c := range codes {
		inUse[c] = true
	}

	continents, err := s.continents.ListContinents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list continents: %w", err)
	}
	for i := range continents {
		if inUse[continents[i].Code] {
			page.Places = append(page.Places, continentLink(&continents[i]))
		}
	}
	page.Global = true
	return page, nil
}

// addFIPS sets the FIPS code on U.S. state links
func (s *Service) addFIPS(ctx context.Context, countryCode string, links []model.PlaceLink) error {
	if countryCode != countryUS || len(links) == 0 {
		return nil
	}
	codes, err := s.stateCodes.ListStateCodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list state codes: %w", err)
	}
	fips := make(map[string]int, len(codes))
	for _, c := range codes {
		fips[c.Code] = c.FIPS
	}
	for i := range links {
		links[i].FIPS = fips[links[i].Code]
	}
	return nil
}

func continentLink(c *model.GeonamesContinent) model.PlaceLink {
	return model.PlaceLink{Name: c.Name, Code: c.Code, GeonamesID: c.GeonamesID, Path: browse.Path(c)}
}

func countryLink(c *model.GeonamesCountry) model.PlaceLink {
	return model.PlaceLink{Name: c.Name, Code: c.Code, GeonamesID: c.GeonamesID, Path: browse.Path(c)}
}

func locationLink(loc *model.Location) model.PlaceLink {
	code := loc.State()
	if browse.IsCountryLevel(loc.FeatureCode) {
		code = loc.Country()
	}
	return model.PlaceLink{Name: loc.Name, Code: code, GeonamesID: loc.GeonamesID, Path: browse.Path(loc)}
}

func locationLinks(locs []model.Location) []model.PlaceLink {
	links := make([]model.PlaceLink, 0, len(locs))
	for i := range locs {
		links = append(links, locationLink(&locs[i]))
	}
	return links
}

func identifiers(locs []model.Location) []string {
	ids := make([]string, 0, len(locs))
	for i := range locs {
		ids = append(ids, locs[i].Identifier())
	}
	return ids
}
