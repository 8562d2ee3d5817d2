package main

import (
	"context"
	"log"

	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/alexivanou/ddigeo/internal/database"
	"github.com/alexivanou/ddigeo/internal/repository"
	"github.com/alexivanou/ddigeo/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// Ensure the schema exists before importing
	if err := database.Migrate(db, cfg.DB); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	empty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Fatal("Failed to check reference tables", zap.Error(err))
	}
	if !empty {
		logger.Info("Reference tables already populated, clearing them")
		if _, err := db.ExecContext(ctx, "DELETE FROM state_codes"); err != nil {
			logger.Fatal("Failed to clear state codes", zap.Error(err))
		}
		if _, err := db.ExecContext(ctx, "DELETE FROM geonames_countries"); err != nil {
			logger.Fatal("Failed to clear countries", zap.Error(err))
		}
		if _, err := db.ExecContext(ctx, "DELETE FROM geonames_continents"); err != nil {
			logger.Fatal("Failed to clear continents", zap.Error(err))
		}
	}

	logger.Info("Starting reference data import...", zap.String("data_dir", cfg.Seeder.DataDir))

	repos := repository.NewRepositories(db, cfg.DB.Type)
	res, err := seeder.New(repos, cfg.Seeder, logger).Seed(ctx)
	if err != nil {
		logger.Fatal("Failed to seed reference data", zap.Error(err))
	}

	logger.Info("Data import completed successfully!",
		zap.Int("continents", res.Continents),
		zap.Int("countries", res.Countries),
		zap.Int("state_codes", res.StateCodes),
	)
}
