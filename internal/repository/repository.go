package repository

import (
	"context"

	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/alexivanou/ddigeo/internal/model"
	"github.com/jmoiron/sqlx"
)

// LocationRepository defines operations for the resolved location cache.
// Single-row getters return (nil, nil) when nothing matches.
type LocationRepository interface {
	GetByGeonamesID(ctx context.Context, geonamesID int) (*model.Location, error)
	Find(ctx context.Context, q LocationQuery) ([]model.Location, error)
	Exists(ctx context.Context, q LocationQuery) (bool, error)
	// Insert appends a location; an existing row with the same geonames id
	// wins and is copied into loc
	Insert(ctx context.Context, loc *model.Location) error
	ListContinentCodes(ctx context.Context) ([]string, error)
	ListCountryCodes(ctx context.Context, continentCode string) ([]string, error)
}

// CountryRepository defines operations for reference countries
type CountryRepository interface {
	GetCountryByName(ctx context.Context, name string) (*model.GeonamesCountry, error)
	GetCountryByCode(ctx context.Context, code string) (*model.GeonamesCountry, error)
	GetCountryByGeonamesID(ctx context.Context, geonamesID int) (*model.GeonamesCountry, error)
	ListCountries(ctx context.Context, codes []string) ([]model.GeonamesCountry, error)
	BulkInsertCountries(ctx context.Context, countries []model.GeonamesCountry) error
}

// ContinentRepository defines operations for reference continents
type ContinentRepository interface {
	ListContinents(ctx context.Context) ([]model.GeonamesContinent, error)
	GetContinentByCode(ctx context.Context, code string) (*model.GeonamesContinent, error)
	GetContinentByGeonamesID(ctx context.Context, geonamesID int) (*model.GeonamesContinent, error)
	BulkInsertContinents(ctx context.Context, continents []model.GeonamesContinent) error
}

// StateCodeRepository defines operations for US state codes
type StateCodeRepository interface {
	ListStateCodes(ctx context.Context) ([]model.StateCode, error)
	GetStateCodeByName(ctx context.Context, name string) (*model.StateCode, error)
	BulkInsertStateCodes(ctx context.Context, states []model.StateCode) error
}

// Container holds all repositories
type Container struct {
	Location  LocationRepository
	Country   CountryRepository
	Continent ContinentRepository
	StateCode StateCodeRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			Location:  &pgLocationRepository{db: db},
			Country:   &pgCountryRepository{db: db},
			Continent: &pgContinentRepository{db: db},
			StateCode: &pgStateCodeRepository{db: db},
		}
	}

	// Default to SQLite
	return &Container{
		Location:  &sqliteLocationRepository{db: db},
		Country:   &sqliteCountryRepository{db: db},
		Continent: &sqliteContinentRepository{db: db},
		StateCode: &sqliteStateCodeRepository{db: db},
	}
}

// Helper to check if the reference tables are empty (used by main)
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	// Using a safe query that works on both
	query := "SELECT COUNT(*) FROM geonames_countries"
	err := db.GetContext(ctx, &count, query)
	if err != nil {
		// Simplify error handling for non-existent tables
		return true, nil
	}
	return count == 0, nil
}

func chunks[T any](items []T, size int, fn func(batch []T) error) error {
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		if err := fn(items[i:end]); err != nil {
			return err
		}
	}
	return nil
}
