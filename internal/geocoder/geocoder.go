package geocoder

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/alexivanou/ddigeo/internal/geonames"
	"github.com/alexivanou/ddigeo/internal/model"
	"github.com/alexivanou/ddigeo/internal/repository"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	unitedStates = "United States"
	puertoRico   = "Puerto Rico"
	georgia      = "Georgia"
	// stateQualifier as in "New York (state)"
	stateQualifier = "state"

	featureContinent = "CONT"
	featureState     = "ADM1"
	countryUS        = "US"
)

// "Portland (Maine)", "Hiroshima (prefecture)", "New York (state)"
var qualifiedName = regexp.MustCompile(`^([A-Z][a-zA-Z ]+) \(([A-Za-z ]+)\)$`)

// Options are the tunable disambiguation heuristics
type Options struct {
	// USStateThreshold is how many distinct state names make a record assume
	// US places even without a "United States" term
	USStateThreshold int
	// SingleStateBias searches inside the one state of a record that names
	// the United States and exactly one state
	SingleStateBias bool
}

// DefaultOptions returns the heuristics used when nothing is configured
func DefaultOptions() Options {
	return Options{USStateThreshold: 3, SingleStateBias: true}
}

// OptionsFromConfig converts the env configuration
func OptionsFromConfig(cfg config.GeocoderConfig) Options {
	opts := Options{
		USStateThreshold: cfg.USStateThreshold,
		SingleStateBias:  cfg.SingleStateBias,
	}
	if opts.USStateThreshold <= 0 {
		opts.USStateThreshold = DefaultOptions().USStateThreshold
	}
	return opts
}

// Deps are the stores and provider the geocoder reads and writes
type Deps struct {
	Provider   geonames.Provider
	Locations  repository.LocationRepository
	Countries  repository.CountryRepository
	Continents repository.ContinentRepository
	Logger     *zap.Logger
}

// Geocoder resolves the geographic coverage terms of codebook records to
// GeoNames locations, caching every resolved place in the location store.
// It is not safe for concurrent use by multiple load processes.
type Geocoder struct {
	provider   geonames.Provider
	locations  repository.LocationRepository
	countries  repository.CountryRepository
	continents map[string]model.GeonamesContinent
	opts       Options
	logger     *zap.Logger
}

// New creates a geocoder. The continent table is read once here.
func New(ctx context.Context, deps Deps, opts Options) (*Geocoder, error) {
	if deps.Provider == nil || deps.Locations == nil || deps.Countries == nil || deps.Continents == nil {
		return nil, fmt.Errorf("geocoder: provider and all stores are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	continents, err := deps.Continents.ListContinents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load continents: %w", err)
	}
	byName := make(map[string]model.GeonamesContinent, len(continents))
	for _, c := range continents {
		byName[c.Name] = c
	}

	return &Geocoder{
		provider:   deps.Provider,
		locations:  deps.Locations,
		countries:  deps.Countries,
		continents: byName,
		opts:       opts,
		logger:     deps.Logger,
	}, nil
}

// document is the record level context computed before any term is resolved
type document struct {
	global     bool
	includesUS bool
	// distinct state names in term order
	states   []string
	assumeUS bool
}

func (d document) hasState(name string) bool {
	for _, s := range d.states {
		if s == name {
			return true
		}
	}
	return false
}

func (g *Geocoder) documentContext(cb *model.Codebook) document {
	var doc document
	seen := make(map[string]bool)
	for _, term := range cb.GeoCoverage {
		if strings.EqualFold(term.Value, model.GlobalCoverage) {
			doc.global = true
		}
		if term.Value == unitedStates {
			doc.includesUS = true
		}
		if IsUSState(term.Value) && !seen[term.Value] {
			seen[term.Value] = true
			doc.states = append(doc.states, term.Value)
		}
	}
	doc.assumeUS = !doc.global &&
		((doc.includesUS && len(doc.states) > 0) || len(doc.states) >= g.opts.USStateThreshold)
	return doc
}

// Resolve sets the identifier of every coverage term that can be resolved.
// Terms without a match are logged and left unset. Provider or storage
// failures for one term never stop the others; they are returned combined.
func (g *Geocoder) Resolve(ctx context.Context, cb *model.Codebook) error {
	if len(cb.GeoUnit) > 0 {
		g.logger.Debug("geographic unit", zap.String("record", cb.ID), zap.Strings("geo_unit", cb.GeoUnit))
	}

	doc := g.documentContext(cb)

	var errs error
	for i := range cb.GeoCoverage {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		term := &cb.GeoCoverage[i]
		if err := g.resolveTerm(ctx, term, doc); err != nil {
			g.logger.Error("failed to resolve coverage term",
				zap.String("record", cb.ID),
				zap.String("term", term.Value),
				zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%q: %w", term.Value, err))
		}
	}
	return errs
}

// ResolveAll resolves records one after another, in order
func (g *Geocoder) ResolveAll(ctx context.Context, records []*model.Codebook) error {
	var errs error
	for _, cb := range records {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if err := g.Resolve(ctx, cb); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("record %s: %w", cb.ID, err))
		}
	}
	return errs
}

func (g *Geocoder) resolveTerm(ctx context.Context, term *model.GeographicCoverage, doc document) error {
	if term.Value == model.GlobalCoverage {
		return nil
	}
	assumeUS := doc.assumeUS

	g.logger.Info("geographic coverage", zap.String("term", term.Value))

	if cont, ok := g.continents[term.Value]; ok {
		term.SetID(model.Identifier(cont.GeonamesID))
		return g.ensureContinent(ctx, cont)
	}

	var query geonames.Query
	name, qualifier := splitQualifier(term.Value)
	if qualifier != "" {
		if IsUSState(qualifier) {
			assumeUS = true
		} else if qualifier == stateQualifier && assumeUS {
			query.FeatureCode = featureState
		}
	}

	if alt, ok := AlternateName(name); ok {
		name = alt
	} else if alt, ok := AlternateName(term.Value); ok {
		name = alt
	}

	var (
		loc *model.Location
		err error
	)
	if !assumeUS {
		loc, err = g.lookupCountry(ctx, name)
		if loc == nil && err != nil {
			return err
		}
	}
	if loc == nil {
		loc, err = g.lookupLocation(ctx, name, assumeUS)
		if err != nil {
			return err
		}
	}

	if loc == nil {
		if assumeUS && name != puertoRico {
			query.CountryBias = countryUS
		}
		switch {
		case assumeUS && IsUSState(name) && qualifier != stateQualifier:
			query.AdminCode1, _ = USStateCode(name)
		case IsUSState(qualifier):
			query.AdminCode1, _ = USStateCode(qualifier)
		case g.opts.SingleStateBias && doc.includesUS && len(doc.states) == 1 &&
			name != unitedStates && !doc.hasState(name):
			// qualified values never enter doc.states, so "New York (state)"
			// beside one other state is biased toward that other state
			query.AdminCode1, _ = USStateCode(doc.states[0])
		}

		var res *geonames.Result
		res, err = g.lookupName(ctx, name, query)
		if err != nil {
			return err
		}
		if res == nil {
			g.logger.Warn("no geonames result", zap.String("term", term.Value), zap.String("name", name))
			return nil
		}
		g.logger.Debug("geonames result", zap.Stringer("result", res))

		loc, err = g.LocationFromGeoname(ctx, res)
		if loc == nil {
			return err
		}
	}

	// a failed state back-fill still leaves the place itself resolved
	term.SetID(loc.Identifier())
	g.logger.Info("set geonames id",
		zap.String("term", term.Value),
		zap.String("id", loc.Identifier()),
		zap.String("name", loc.Name),
		zap.String("country", loc.Country()),
		zap.String("continent", loc.Continent()))
	return err
}

// splitQualifier separates "Name (Qualifier)"; qualifier is "" when the
// value has no parenthetical
func splitQualifier(value string) (string, string) {
	m := qualifiedName.FindStringSubmatch(value)
	if m == nil {
		return value, ""
	}
	return m[1], m[2]
}

// ensureContinent caches a continent location the first time it is seen
func (g *Geocoder) ensureContinent(ctx context.Context, cont model.GeonamesContinent) error {
	existing, err := g.locations.GetByGeonamesID(ctx, cont.GeonamesID)
	if err != nil {
		return fmt.Errorf("continent lookup: %w", err)
	}
	if existing != nil {
		return nil
	}
	found, err := g.locations.Exists(ctx, repository.LocationQuery{
		Name:         cont.Name,
		FeatureCodes: []string{featureContinent},
	})
	if err != nil {
		return fmt.Errorf("continent lookup: %w", err)
	}
	if found {
		return nil
	}

	res, err := g.provider.Geocode(ctx, geonames.Query{NameEquals: cont.Name, FeatureCode: featureContinent})
	if err != nil {
		return err
	}
	if res == nil {
		g.logger.Warn("no geonames result for continent", zap.String("continent", cont.Name))
		return nil
	}
	_, err = g.LocationFromGeoname(ctx, res)
	return err
}

// lookupCountry resolves names present in the reference country table
func (g *Geocoder) lookupCountry(ctx context.Context, name string) (*model.Location, error) {
	country, err := g.countries.GetCountryByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("country lookup: %w", err)
	}
	if country == nil {
		return nil, nil
	}

	g.logger.Debug("country match",
		zap.String("name", name),
		zap.Int("geonames_id", country.GeonamesID))

	loc, err := g.locations.GetByGeonamesID(ctx, country.GeonamesID)
	if err != nil {
		return nil, fmt.Errorf("location lookup: %w", err)
	}
	if loc != nil {
		return loc, nil
	}

	res, err := g.provider.GetByID(ctx, country.GeonamesID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	return g.LocationFromGeoname(ctx, res)
}

// lookupLocation returns the cached location for name when exactly one row matches
func (g *Geocoder) lookupLocation(ctx context.Context, name string, assumeUS bool) (*model.Location, error) {
	q := repository.LocationQuery{Name: name, Limit: 2}
	if assumeUS && name != puertoRico {
		q.CountryCode = countryUS
	}
	if !assumeUS && name == georgia {
		q.ExcludeCountryCode = countryUS
	}

	locs, err := g.locations.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("location lookup: %w", err)
	}
	if len(locs) != 1 {
		return nil, nil
	}
	g.logger.Debug("location match", zap.String("name", name), zap.Stringer("location", &locs[0]))
	return &locs[0], nil
}

type searchTier struct {
	exact   bool
	classes []string
}

var searchTiers = []searchTier{
	{exact: true, classes: []string{geonames.FeatureClassAdmin}},
	{exact: true, classes: []string{geonames.FeatureClassAdmin, geonames.FeatureClassPlaces}},
	{exact: false, classes: []string{geonames.FeatureClassAdmin}},
	{exact: false, classes: []string{geonames.FeatureClassAdmin, geonames.FeatureClassPlaces}},
}

// lookupName geocodes with progressively looser queries and returns the
// first match, or nil when every tier comes back empty
func (g *Geocoder) lookupName(ctx context.Context, name string, base geonames.Query) (*geonames.Result, error) {
	for _, tier := range searchTiers {
		q := base
		if tier.exact {
			q.NameEquals = name
		} else {
			q.Name = name
		}
		q.FeatureClass = tier.classes

		res, err := g.provider.Geocode(ctx, q)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}
