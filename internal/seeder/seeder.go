package seeder

import (
	"context"
	"fmt"

	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/alexivanou/ddigeo/internal/model"
	"github.com/alexivanou/ddigeo/internal/repository"
	"go.uber.org/zap"
)

// Result counts the reference rows written by Seed
type Result struct {
	Continents int
	Countries  int
	StateCodes int
}

// Seeder loads the reference tables the geocoder and browse pages rely on
type Seeder struct {
	parser    *Parser
	repos     *repository.Container
	batchSize int
	logger    *zap.Logger
}

// New creates a seeder. The target tables are expected to be empty.
func New(repos *repository.Container, cfg config.SeederConfig, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Seeder{
		parser:    NewParser(cfg),
		repos:     repos,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Seed parses countryInfo.txt and writes continents, countries and state codes
func (s *Seeder) Seed(ctx context.Context) (*Result, error) {
	s.logger.Info("Parsing countries...")
	countries, err := s.parser.ParseCountries()
	if err != nil {
		return nil, fmt.Errorf("failed to parse countries: %w", err)
	}

	continents := Continents()
	s.logger.Info("Inserting continents...", zap.Int("count", len(continents)))
	if err := s.repos.Continent.BulkInsertContinents(ctx, continents); err != nil {
		return nil, fmt.Errorf("failed to insert continents: %w", err)
	}

	s.logger.Info("Inserting countries...", zap.Int("count", len(countries)))
	inserted := 0
	for i := 0; i < len(countries); i += s.batchSize {
		end := i + s.batchSize
		if end > len(countries) {
			end = len(countries)
		}
		if err := s.insertCountries(ctx, countries[i:end]); err != nil {
			return nil, err
		}
		inserted += end - i
		s.logger.Debug("country batch inserted", zap.Int("total", inserted))
	}

	states := StateCodes()
	s.logger.Info("Inserting state codes...", zap.Int("count", len(states)))
	if err := s.repos.StateCode.BulkInsertStateCodes(ctx, states); err != nil {
		return nil, fmt.Errorf("failed to insert state codes: %w", err)
	}

	return &Result{
		Continents: len(continents),
		Countries:  inserted,
		StateCodes: len(states),
	}, nil
}

func (s *Seeder) insertCountries(ctx context.Context, batch []model.GeonamesCountry) error {
	if err := s.repos.Country.BulkInsertCountries(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert countries batch: %w", err)
	}
	return nil
}
