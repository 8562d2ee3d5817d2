package geocoder

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/alexivanou/ddigeo/internal/database"
	"github.com/alexivanou/ddigeo/internal/geonames"
	"github.com/alexivanou/ddigeo/internal/model"
	"github.com/alexivanou/ddigeo/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Geocode(ctx context.Context, q geonames.Query) (*geonames.Result, error) {
	args := m.Called(ctx, q)
	res, _ := args.Get(0).(*geonames.Result)
	return res, args.Error(1)
}

func (m *mockProvider) GetByID(ctx context.Context, geonameID int) (*geonames.Result, error) {
	args := m.Called(ctx, geonameID)
	res, _ := args.Get(0).(*geonames.Result)
	return res, args.Error(1)
}

type fixture struct {
	geocoder *Geocoder
	provider *mockProvider
	repos    *repository.Container
	db       *sqlx.DB
}

var (
	adminOnly    = []string{geonames.FeatureClassAdmin}
	adminPlaces  = []string{geonames.FeatureClassAdmin, geonames.FeatureClassPlaces}
	israel       = geonames.NewResult(294640, "Israel", "PCLI", 31.5, 34.75, "IL", "00")
	georgiaState = geonames.NewResult(4197000, "Georgia", "ADM1", 32.75042, -83.50018, "US", "GA")
	congo        = geonames.NewResult(203312, "Democratic Republic of the Congo", "PCLI", -2.5, 23.5, "CD", "00")
)

func setupGeocoder(t *testing.T, opts Options) *fixture {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: fmt.Sprintf("geocoder_%d", rng.Int())}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, cfg))

	repos := repository.NewRepositories(db, config.DBTypeMemory)
	ctx := context.Background()

	require.NoError(t, repos.Country.BulkInsertCountries(ctx, []model.GeonamesCountry{
		{Name: "United States", Code: "US", NumericCode: 840, Continent: "NA", GeonamesID: 6252001},
		{Name: "Georgia", Code: "GE", NumericCode: 268, Continent: "AS", GeonamesID: 614540},
		{Name: "Democratic Republic of the Congo", Code: "CD", NumericCode: 180, Continent: "AF", GeonamesID: 203312},
		{Name: "Japan", Code: "JP", NumericCode: 392, Continent: "AS", GeonamesID: 1861060},
		{Name: "Union of Soviet Socialist Republics", Code: "SU", NumericCode: 810, Continent: "EU", GeonamesID: 8354411},
	}))
	require.NoError(t, repos.Continent.BulkInsertContinents(ctx, []model.GeonamesContinent{
		{Name: "Africa", Code: "AF", GeonamesID: 6255146},
		{Name: "Europe", Code: "EU", GeonamesID: 6255148},
		{Name: "North America", Code: "NA", GeonamesID: 6255149},
	}))

	provider := &mockProvider{}
	g, err := New(ctx, Deps{
		Provider:   provider,
		Locations:  repos.Location,
		Countries:  repos.Country,
		Continents: repos.Continent,
	}, opts)
	require.NoError(t, err)

	return &fixture{geocoder: g, provider: provider, repos: repos, db: db}
}

func (f *fixture) cache(t *testing.T, locs ...*model.Location) {
	for _, loc := range locs {
		require.NoError(t, f.repos.Location.Insert(context.Background(), loc))
	}
}

func (f *fixture) countLocations(t *testing.T) int {
	var n int
	require.NoError(t, f.db.Get(&n, "SELECT COUNT(*) FROM locations"))
	return n
}

func location(name string, id int, country, fcode, continent, state string) *model.Location {
	return &model.Location{
		Name:          name,
		GeonamesID:    id,
		CountryCode:   model.StringPtr(country),
		FeatureCode:   fcode,
		ContinentCode: model.StringPtr(continent),
		StateCode:     model.StringPtr(state),
	}
}

func record(values ...string) *model.Codebook {
	cb := &model.Codebook{ID: "test"}
	for _, v := range values {
		cb.GeoCoverage = append(cb.GeoCoverage, model.GeographicCoverage{Value: v})
	}
	return cb
}

func clearIDs(cb *model.Codebook) {
	for i := range cb.GeoCoverage {
		cb.GeoCoverage[i].ClearID()
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(context.Background(), Deps{}, DefaultOptions())
	assert.Error(t, err)
}

func TestResolve_IdempotentWithCache(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())
	ctx := context.Background()

	f.provider.On("Geocode", mock.Anything, geonames.Query{NameEquals: "Israel", FeatureClass: adminOnly}).
		Return(israel, nil)

	cb := record("Israel", "Global")
	require.NoError(t, f.geocoder.Resolve(ctx, cb))

	assert.Equal(t, []string{"geonames:294640", ""}, cb.Identifiers())
	assert.Nil(t, cb.GeoCoverage[1].ID, "global coverage is never coded")
	f.provider.AssertNumberOfCalls(t, "Geocode", 1)

	loc, err := f.repos.Location.GetByGeonamesID(ctx, 294640)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "IL", loc.Country())
	assert.Nil(t, loc.StateCode, "00 admin code means no state")

	clearIDs(cb)
	require.NoError(t, f.geocoder.Resolve(ctx, cb))
	assert.Equal(t, []string{"geonames:294640", ""}, cb.Identifiers())
	f.provider.AssertNumberOfCalls(t, "Geocode", 1)
	assert.Equal(t, 1, f.countLocations(t))
}

func TestResolve_CacheReuseAcrossRecords(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())
	ctx := context.Background()

	f.provider.On("Geocode", mock.Anything, geonames.Query{NameEquals: "Israel", FeatureClass: adminOnly}).
		Return(israel, nil)
	f.provider.On("Geocode", mock.Anything, geonames.Query{NameEquals: "State of Israel", FeatureClass: adminOnly}).
		Return(israel, nil)

	first := record("Israel")
	second := record("Israel")
	require.NoError(t, f.geocoder.ResolveAll(ctx, []*model.Codebook{first, second}))
	assert.Equal(t, first.Identifiers(), second.Identifiers())
	f.provider.AssertNumberOfCalls(t, "Geocode", 1)

	// different name, same geonames id: one call, existing row reused
	third := record("State of Israel")
	require.NoError(t, f.geocoder.Resolve(ctx, third))
	assert.Equal(t, "geonames:294640", third.GeoCoverage[0].Identifier())
	f.provider.AssertNumberOfCalls(t, "Geocode", 2)
	assert.Equal(t, 1, f.countLocations(t))
}

func TestResolve_Continent(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())
	ctx := context.Background()

	africa := geonames.NewResult(6255146, "Africa", "CONT", 7.1881, 21.09375, "", "")
	f.provider.On("Geocode", mock.Anything, geonames.Query{NameEquals: "Africa", FeatureCode: "CONT"}).
		Return(africa, nil)

	cb := record("Africa", "Global")
	require.NoError(t, f.geocoder.Resolve(ctx, cb))
	assert.Equal(t, "geonames:6255146", cb.GeoCoverage[0].Identifier())
	f.provider.AssertNumberOfCalls(t, "Geocode", 1)

	loc, err := f.repos.Location.GetByGeonamesID(ctx, 6255146)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "AF", loc.Continent())
	assert.Nil(t, loc.CountryCode)

	// continent row exists now, so no confirmatory call
	clearIDs(cb)
	require.NoError(t, f.geocoder.Resolve(ctx, cb))
	assert.Equal(t, "geonames:6255146", cb.GeoCoverage[0].Identifier())
	f.provider.AssertNumberOfCalls(t, "Geocode", 1)
}

func TestResolve_ContinentAlreadyCached(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())
	f.cache(t, location("Europe", 6255148, "", "CONT", "EU", ""))

	cb := record("Europe")
	require.NoError(t, f.geocoder.Resolve(context.Background(), cb))
	assert.Equal(t, "geonames:6255148", cb.GeoCoverage[0].Identifier())
	f.provider.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestResolve_GlobalIsSkipped(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())

	cb := record("Global")
	require.NoError(t, f.geocoder.Resolve(context.Background(), cb))
	assert.Nil(t, cb.GeoCoverage[0].ID)
	f.provider.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	f.provider.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestResolve_GeorgiaWithUSContext(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())
	ctx := context.Background()

	f.cache(t,
		location("United States", 6252001, "US", "PCLI", "NA", ""),
		location("California", 5332921, "US", "ADM1", "NA", "CA"),
		location("Alaska", 5879092, "US", "ADM1", "NA", "AK"),
		location("Georgia", 614540, "GE", "PCLI", "AS", ""),
		location("Puerto Rico", 4566966, "PR", "PCLD", "NA", ""),
	)
	f.provider.On("Geocode", mock.Anything, geonames.Query{
		NameEquals: "Georgia", FeatureClass: adminOnly, CountryBias: "US", AdminCode1: "GA",
	}).Return(georgiaState, nil)

	cb := record("United States", "California", "Alaska", "Georgia")
	require.NoError(t, f.geocoder.Resolve(ctx, cb))
	assert.Equal(t, []string{
		"geonames:6252001", "geonames:5332921", "geonames:5879092", "geonames:4197000",
	}, cb.Identifiers())
	f.provider.AssertNumberOfCalls(t, "Geocode", 1)
	f.provider.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)

	// three states without "United States"; Puerto Rico keeps its own country code
	cb = record("California", "Alaska", "Georgia", "Puerto Rico")
	require.NoError(t, f.geocoder.Resolve(ctx, cb))
	assert.Equal(t, []string{
		"geonames:5332921", "geonames:5879092", "geonames:4197000", "geonames:4566966",
	}, cb.Identifiers())
	f.provider.AssertNumberOfCalls(t, "Geocode", 1)
}

func TestResolve_GeorgiaWithoutUSContext(t *testing.T) {
	t.Run("country table", func(t *testing.T) {
		f := setupGeocoder(t, DefaultOptions())
		f.provider.On("GetByID", mock.Anything, 614540).
			Return(geonames.NewResult(614540, "Georgia", "PCLI", 42, 43.5, "GE", "00"), nil)

		cb := record("Romania", "Georgia")
		f.provider.On("Geocode", mock.Anything, mock.Anything).Return(nil, nil)
		require.NoError(t, f.geocoder.Resolve(context.Background(), cb))

		assert.Equal(t, "geonames:614540", cb.GeoCoverage[1].Identifier())
		f.provider.AssertNumberOfCalls(t, "GetByID", 1)
		for _, call := range f.provider.Calls {
			if q, ok := call.Arguments.Get(1).(geonames.Query); ok {
				assert.NotEqual(t, "Georgia", q.NameEquals+q.Name, "Georgia should not reach the geocoder")
			}
		}
	})

	t.Run("cache excludes US", func(t *testing.T) {
		f := setupGeocoder(t, DefaultOptions())
		_, err := f.db.Exec("DELETE FROM geonames_countries WHERE code = 'GE'")
		require.NoError(t, err)
		f.cache(t,
			location("Georgia", 4197000, "US", "ADM1", "NA", "GA"),
			location("Georgia", 614540, "GE", "PCLI", "AS", ""),
		)

		cb := record("Georgia")
		require.NoError(t, f.geocoder.Resolve(context.Background(), cb))
		assert.Equal(t, "geonames:614540", cb.GeoCoverage[0].Identifier())
		f.provider.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	})
}

func TestResolve_ParentheticalQualifiers(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())
	ctx := context.Background()

	portland := geonames.NewResult(4975802, "Portland", "PPL", 43.66147, -70.25533, "US", "ME")
	hiroshima := geonames.NewResult(1862413, "Hiroshima", "ADM1", 34.5, 132.75, "JP", "34")

	f.provider.On("Geocode", mock.Anything, geonames.Query{
		NameEquals: "Portland", FeatureClass: adminOnly, CountryBias: "US", AdminCode1: "ME",
	}).Return(nil, nil)
	f.provider.On("Geocode", mock.Anything, geonames.Query{
		NameEquals: "Portland", FeatureClass: adminPlaces, CountryBias: "US", AdminCode1: "ME",
	}).Return(portland, nil)
	f.provider.On("Geocode", mock.Anything, geonames.Query{
		NameEquals: "Hiroshima", FeatureClass: adminOnly,
	}).Return(hiroshima, nil)

	cb := record("Portland (Maine)", "Hiroshima (prefecture)")
	require.NoError(t, f.geocoder.Resolve(ctx, cb))
	assert.Equal(t, []string{"geonames:4975802", "geonames:1862413"}, cb.Identifiers())
	f.provider.AssertNumberOfCalls(t, "Geocode", 3)

	loc, err := f.repos.Location.GetByGeonamesID(ctx, 1862413)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "AS", loc.Continent())
	assert.Equal(t, "34", loc.State())
}

func TestResolve_StateQualifier(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())

	f.cache(t,
		location("California", 5332921, "US", "ADM1", "NA", "CA"),
		location("Texas", 4736286, "US", "ADM1", "NA", "TX"),
		location("Ohio", 5165418, "US", "ADM1", "NA", "OH"),
	)
	newYork := geonames.NewResult(5128638, "New York", "ADM1", 43.00035, -75.4999, "US", "NY")
	f.provider.On("Geocode", mock.Anything, geonames.Query{
		NameEquals: "New York", FeatureClass: adminOnly, FeatureCode: "ADM1", CountryBias: "US",
	}).Return(newYork, nil)

	cb := record("California", "Texas", "Ohio", "New York (state)")
	require.NoError(t, f.geocoder.Resolve(context.Background(), cb))
	assert.Equal(t, "geonames:5128638", cb.GeoCoverage[3].Identifier())
	f.provider.AssertNumberOfCalls(t, "Geocode", 1)
}

func TestResolve_SingleStateBias(t *testing.T) {
	tests := []struct {
		name      string
		bias      bool
		adminCode string
	}{
		{name: "enabled", bias: true, adminCode: "ME"},
		{name: "disabled", bias: false, adminCode: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupGeocoder(t, Options{USStateThreshold: 3, SingleStateBias: tt.bias})
			f.cache(t,
				location("United States", 6252001, "US", "PCLI", "NA", ""),
				location("Maine", 4971068, "US", "ADM1", "NA", "ME"),
			)
			portland := geonames.NewResult(4975802, "Portland", "PPL", 43.66147, -70.25533, "US", "ME")
			f.provider.On("Geocode", mock.Anything, geonames.Query{
				NameEquals: "Portland", FeatureClass: adminOnly, CountryBias: "US", AdminCode1: tt.adminCode,
			}).Return(portland, nil)

			cb := record("United States", "Maine", "Portland")
			require.NoError(t, f.geocoder.Resolve(context.Background(), cb))
			assert.Equal(t, "geonames:4975802", cb.GeoCoverage[2].Identifier())
			f.provider.AssertNumberOfCalls(t, "Geocode", 1)
		})
	}
}

func TestResolve_AlternateNames(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())
	f.provider.On("GetByID", mock.Anything, 203312).Return(congo, nil)

	zaire := record("Zaire")
	drc := record("Democratic Republic of the Congo")
	require.NoError(t, f.geocoder.ResolveAll(context.Background(), []*model.Codebook{zaire, drc}))

	assert.Equal(t, "geonames:203312", zaire.GeoCoverage[0].Identifier())
	assert.Equal(t, zaire.Identifiers(), drc.Identifiers())
	f.provider.AssertNumberOfCalls(t, "GetByID", 1)
	f.provider.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	assert.Equal(t, 1, f.countLocations(t))
}

func TestResolve_GracefulFailure(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())

	f.provider.On("Geocode", mock.Anything, geonames.Query{NameEquals: "Israel", FeatureClass: adminOnly}).
		Return(israel, nil)
	for _, q := range []geonames.Query{
		{NameEquals: "Xyzzy", FeatureClass: adminOnly},
		{NameEquals: "Xyzzy", FeatureClass: adminPlaces},
		{Name: "Xyzzy", FeatureClass: adminOnly},
		{Name: "Xyzzy", FeatureClass: adminPlaces},
	} {
		f.provider.On("Geocode", mock.Anything, q).Return(nil, nil).Once()
	}

	cb := record("Xyzzy", "Israel")
	require.NoError(t, f.geocoder.Resolve(context.Background(), cb))
	assert.Nil(t, cb.GeoCoverage[0].ID)
	assert.Equal(t, "geonames:294640", cb.GeoCoverage[1].Identifier())
	f.provider.AssertNumberOfCalls(t, "Geocode", 5)
	f.provider.AssertExpectations(t)
}

func TestResolve_ProviderErrorDoesNotStopSiblings(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())

	f.provider.On("Geocode", mock.Anything, geonames.Query{NameEquals: "Broken", FeatureClass: adminOnly}).
		Return(nil, errors.New("connection reset"))
	f.provider.On("Geocode", mock.Anything, geonames.Query{NameEquals: "Israel", FeatureClass: adminOnly}).
		Return(israel, nil)

	cb := record("Broken", "Israel")
	err := f.geocoder.Resolve(context.Background(), cb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Nil(t, cb.GeoCoverage[0].ID)
	assert.Equal(t, "geonames:294640", cb.GeoCoverage[1].Identifier())
}

func TestResolve_AmbiguousCacheDefersToGeocoder(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())
	f.cache(t,
		location("Springfield", 4409896, "US", "PPLA2", "NA", "MO"),
		location("Springfield", 2150163, "AU", "PPL", "OC", "04"),
	)
	springfield := geonames.NewResult(5754005, "Springfield", "PPL", 44.04624, -123.02203, "US", "OR")
	f.provider.On("Geocode", mock.Anything, geonames.Query{NameEquals: "Springfield", FeatureClass: adminOnly}).
		Return(springfield, nil)

	cb := record("Springfield")
	require.NoError(t, f.geocoder.Resolve(context.Background(), cb))
	assert.Equal(t, "geonames:5754005", cb.GeoCoverage[0].Identifier())
	f.provider.AssertNumberOfCalls(t, "Geocode", 1)
	assert.Equal(t, 3, f.countLocations(t))
}

func TestResolve_StateBackfillErrorKeepsPlace(t *testing.T) {
	f := setupGeocoder(t, DefaultOptions())
	portland := geonames.NewResult(5746545, "Portland", "PPLA2", 45.52345, -122.67621, "US", "OR")
	f.provider.On("Geocode", mock.Anything, geonames.Query{NameEquals: "Portland", FeatureClass: adminOnly}).
		Return(portland, nil)
	f.provider.On("Geocode", mock.Anything, geonames.Query{Country: "US", FeatureCode: "ADM1", AdminCode1: "OR"}).
		Return(nil, errors.New("timeout"))

	cb := record("Portland", "Israel")
	f.provider.On("Geocode", mock.Anything, geonames.Query{NameEquals: "Israel", FeatureClass: adminOnly}).
		Return(israel, nil)

	err := f.geocoder.Resolve(context.Background(), cb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Equal(t, []string{"geonames:5746545", "geonames:294640"}, cb.Identifiers())
	assert.Equal(t, 2, f.countLocations(t))
}

func TestDocumentContext(t *testing.T) {
	g := &Geocoder{opts: DefaultOptions()}

	tests := []struct {
		name       string
		values     []string
		includesUS bool
		states     []string
		assumeUS   bool
	}{
		{name: "us and one state", values: []string{"United States", "Maine"}, includesUS: true, states: []string{"Maine"}, assumeUS: true},
		{name: "us only", values: []string{"United States", "Canada"}, includesUS: true},
		{name: "three states", values: []string{"Ohio", "Texas", "Utah"}, states: []string{"Ohio", "Texas", "Utah"}, assumeUS: true},
		{name: "repeated state counts once", values: []string{"Ohio", "Ohio", "Utah"}, states: []string{"Ohio", "Utah"}},
		{name: "global wins", values: []string{"global", "Ohio", "Texas", "Utah"}, states: []string{"Ohio", "Texas", "Utah"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := g.documentContext(record(tt.values...))
			assert.Equal(t, tt.includesUS, doc.includesUS)
			assert.Equal(t, tt.states, doc.states)
			assert.Equal(t, tt.assumeUS, doc.assumeUS)
		})
	}

	g.opts.USStateThreshold = 2
	assert.True(t, g.documentContext(record("Ohio", "Utah")).assumeUS)
}

func TestSplitQualifier(t *testing.T) {
	tests := []struct {
		value, name, qualifier string
	}{
		{"Portland (Maine)", "Portland", "Maine"},
		{"Hiroshima (prefecture)", "Hiroshima", "prefecture"},
		{"New York (state)", "New York", "state"},
		{"New York", "New York", ""},
		{"St. Martin (French part)", "St. Martin (French part)", ""},
		{"portland (Maine)", "portland (Maine)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			name, qualifier := splitQualifier(tt.value)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.qualifier, qualifier)
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.GeocoderConfig{USStateThreshold: 0, SingleStateBias: false})
	assert.Equal(t, 3, opts.USStateThreshold)
	assert.False(t, opts.SingleStateBias)
}
