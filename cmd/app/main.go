package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/ddigeo/internal/api"
	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/alexivanou/ddigeo/internal/database"
	"github.com/alexivanou/ddigeo/internal/geocoder"
	"github.com/alexivanou/ddigeo/internal/geonames"
	"github.com/alexivanou/ddigeo/internal/repository"
	"github.com/alexivanou/ddigeo/internal/seeder"
	"github.com/alexivanou/ddigeo/internal/service"
	"github.com/alexivanou/ddigeo/internal/stats"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	repos := repository.NewRepositories(db, cfg.DB.Type)

	ctx := context.Background()
	if err := database.Migrate(db, cfg.DB); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Warn("Failed to check if database is empty", zap.Error(err))
	} else if isEmpty {
		logger.Info("Database is empty, auto-seeding reference data...")
		res, err := seeder.New(repos, cfg.Seeder, logger).Seed(ctx)
		if err != nil {
			logger.Fatal("Failed to auto-seed database", zap.Error(err))
		}
		logger.Info("Database seeded successfully",
			zap.Int("continents", res.Continents),
			zap.Int("countries", res.Countries),
			zap.Int("state_codes", res.StateCodes))
	}

	var gc service.CodebookGeocoder
	if cfg.Geonames.Username == "" {
		logger.Warn("GEONAMES_USERNAME not set, geocoding disabled")
	} else {
		g, err := geocoder.New(ctx, geocoder.Deps{
			Provider:   geonames.NewClient(cfg.Geonames, logger),
			Locations:  repos.Location,
			Countries:  repos.Country,
			Continents: repos.Continent,
			Logger:     logger,
		}, geocoder.OptionsFromConfig(cfg.Geocoder))
		if err != nil {
			logger.Fatal("Failed to create geocoder", zap.Error(err))
		}
		gc = g
	}

	svc := service.NewService(repos, gc)
	statsCollector := stats.NewCollector(db, cfg.DB)
	router := api.NewRouter(svc, statsCollector)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
