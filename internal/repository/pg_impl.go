package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexivanou/ddigeo/internal/model"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

type pgLocationRepository struct {
	db *sqlx.DB
}

func (r *pgLocationRepository) GetByGeonamesID(ctx context.Context, geonamesID int) (*model.Location, error) {
	var loc model.Location
	q := `SELECT ` + locationColumns + ` FROM locations WHERE geonames_id = $1`
	if err := r.db.GetContext(ctx, &loc, q, geonamesID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *pgLocationRepository) Find(ctx context.Context, lq LocationQuery) ([]model.Location, error) {
	q, args, err := lq.build(locationColumns)
	if err != nil {
		return nil, err
	}
	var locations []model.Location
	if err := r.db.SelectContext(ctx, &locations, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *pgLocationRepository) Exists(ctx context.Context, lq LocationQuery) (bool, error) {
	lq.Limit = 1
	lq.OrderByName = false
	q, args, err := lq.build("1")
	if err != nil {
		return false, err
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (`+r.db.Rebind(q)+`)`, args...); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *pgLocationRepository) Insert(ctx context.Context, loc *model.Location) error {
	q := `
		INSERT INTO locations (name, geonames_id, latitude, longitude, country_code, feature_code, continent_code, state_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (geonames_id) DO NOTHING
		RETURNING id`
	var id int
	err := r.db.GetContext(ctx, &id, q,
		loc.Name, loc.GeonamesID, loc.Latitude, loc.Longitude,
		loc.CountryCode, loc.FeatureCode, loc.ContinentCode, loc.StateCode)
	if err == nil {
		loc.ID = id
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	existing, err := r.GetByGeonamesID(ctx, loc.GeonamesID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("location %d neither inserted nor found", loc.GeonamesID)
	}
	*loc = *existing
	return nil
}

func (r *pgLocationRepository) ListContinentCodes(ctx context.Context) ([]string, error) {
	q := `SELECT DISTINCT continent_code FROM locations WHERE continent_code IS NOT NULL ORDER BY continent_code`
	var codes []string
	if err := r.db.SelectContext(ctx, &codes, q); err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *pgLocationRepository) ListCountryCodes(ctx context.Context, continentCode string) ([]string, error) {
	q := `
		SELECT DISTINCT country_code FROM locations
		WHERE continent_code = $1 AND country_code IS NOT NULL
		ORDER BY country_code`
	var codes []string
	if err := r.db.SelectContext(ctx, &codes, q, continentCode); err != nil {
		return nil, err
	}
	return codes, nil
}

type pgCountryRepository struct {
	db *sqlx.DB
}

func (r *pgCountryRepository) getOne(ctx context.Context, where string, arg interface{}) (*model.GeonamesCountry, error) {
	var country model.GeonamesCountry
	q := `SELECT ` + countryColumns + ` FROM geonames_countries WHERE ` + where + ` ORDER BY id LIMIT 1`
	if err := r.db.GetContext(ctx, &country, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &country, nil
}

func (r *pgCountryRepository) GetCountryByName(ctx context.Context, name string) (*model.GeonamesCountry, error) {
	return r.getOne(ctx, "name = $1", name)
}

func (r *pgCountryRepository) GetCountryByCode(ctx context.Context, code string) (*model.GeonamesCountry, error) {
	return r.getOne(ctx, "code = $1", code)
}

func (r *pgCountryRepository) GetCountryByGeonamesID(ctx context.Context, geonamesID int) (*model.GeonamesCountry, error) {
	return r.getOne(ctx, "geonames_id = $1", geonamesID)
}

func (r *pgCountryRepository) ListCountries(ctx context.Context, codes []string) ([]model.GeonamesCountry, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`SELECT `+countryColumns+` FROM geonames_countries WHERE code IN (?) ORDER BY name`, codes)
	if err != nil {
		return nil, err
	}
	var countries []model.GeonamesCountry
	if err := r.db.SelectContext(ctx, &countries, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *pgCountryRepository) BulkInsertCountries(ctx context.Context, countries []model.GeonamesCountry) error {
	// Chunking to stay under the 65535 parameter limit
	return chunks(countries, 2000, func(batch []model.GeonamesCountry) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO geonames_countries (name, code, numeric_code, continent, geonames_id)
		VALUES (:name, :code, :numeric_code, :continent, :geonames_id)
		ON CONFLICT (code) DO NOTHING`,
			batch)
		return err
	})
}

type pgContinentRepository struct {
	db *sqlx.DB
}

func (r *pgContinentRepository) getOne(ctx context.Context, where string, arg interface{}) (*model.GeonamesContinent, error) {
	var continent model.GeonamesContinent
	q := `SELECT ` + continentColumns + ` FROM geonames_continents WHERE ` + where + ` LIMIT 1`
	if err := r.db.GetContext(ctx, &continent, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &continent, nil
}

func (r *pgContinentRepository) ListContinents(ctx context.Context) ([]model.GeonamesContinent, error) {
	var continents []model.GeonamesContinent
	if err := r.db.SelectContext(ctx, &continents, `SELECT `+continentColumns+` FROM geonames_continents ORDER BY name`); err != nil {
		return nil, err
	}
	return continents, nil
}

func (r *pgContinentRepository) GetContinentByCode(ctx context.Context, code string) (*model.GeonamesContinent, error) {
	return r.getOne(ctx, "code = $1", code)
}

func (r *pgContinentRepository) GetContinentByGeonamesID(ctx context.Context, geonamesID int) (*model.GeonamesContinent, error) {
	return r.getOne(ctx, "geonames_id = $1", geonamesID)
}

func (r *pgContinentRepository) BulkInsertContinents(ctx context.Context, continents []model.GeonamesContinent) error {
	if len(continents) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO geonames_continents (name, code, geonames_id)
		VALUES (:name, :code, :geonames_id)
		ON CONFLICT (code) DO NOTHING`,
		continents)
	return err
}

type pgStateCodeRepository struct {
	db *sqlx.DB
}

func (r *pgStateCodeRepository) ListStateCodes(ctx context.Context) ([]model.StateCode, error) {
	var states []model.StateCode
	if err := r.db.SelectContext(ctx, &states, `SELECT id, name, code, fips FROM state_codes ORDER BY name`); err != nil {
		return nil, err
	}
	return states, nil
}

func (r *pgStateCodeRepository) GetStateCodeByName(ctx context.Context, name string) (*model.StateCode, error) {
	var state model.StateCode
	if err := r.db.GetContext(ctx, &state, `SELECT id, name, code, fips FROM state_codes WHERE name = $1 LIMIT 1`, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *pgStateCodeRepository) BulkInsertStateCodes(ctx context.Context, states []model.StateCode) error {
	if len(states) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO state_codes (name, code, fips)
		VALUES (:name, :code, :fips)`,
		states)
	return err
}
