package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/alexivanou/ddigeo/internal/database"
	"github.com/alexivanou/ddigeo/internal/geocoder"
	"github.com/alexivanou/ddigeo/internal/geonames"
	"github.com/alexivanou/ddigeo/internal/loader"
	"github.com/alexivanou/ddigeo/internal/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type flags struct {
	dryRun    bool
	outputDir string
	debug     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := command().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// command creates the root command
func command() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "geocode [file or directory...]",
		Short: "Resolve geographic coverage of codebook records",
		Long: "Reads codebook records from JSON files (one record or an array per file), " +
			"resolves their geographic coverage terms against GeoNames and writes the records back.",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, args)
		},
	}

	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "Resolve records without writing them")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "Write resolved files to this directory instead of in place")
	cmd.Flags().BoolVarP(&f.debug, "debug", "d", false, "Enable debug output")

	return cmd
}

func run(ctx context.Context, f *flags, paths []string) error {
	logCfg := zap.NewDevelopmentConfig()
	if !f.debug {
		logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Geonames.Username == "" {
		return fmt.Errorf("GEONAMES_USERNAME is required")
	}

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	empty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		return err
	}
	if empty {
		logger.Warn("Reference tables are empty; run the seeder first for country and continent matching")
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)
	gc, err := geocoder.New(ctx, geocoder.Deps{
		Provider:   geonames.NewClient(cfg.Geonames, logger),
		Locations:  repos.Location,
		Countries:  repos.Country,
		Continents: repos.Continent,
		Logger:     logger,
	}, geocoder.OptionsFromConfig(cfg.Geocoder))
	if err != nil {
		return err
	}

	summary, err := loader.New(gc, loader.Options{
		DryRun:    f.dryRun,
		OutputDir: f.outputDir,
	}, logger).Run(ctx, paths)
	if summary != nil {
		logger.Info("Geocoding completed",
			zap.Int("files", summary.Files),
			zap.Int("records", summary.Records),
			zap.Int("resolved", summary.Resolved),
			zap.Int("unresolved", summary.Unresolved),
			zap.Int("written", summary.Written),
			zap.Bool("dry_run", f.dryRun))
	}
	if err != nil {
		logger.Error("Geocoding finished with errors", zap.Error(err))
		return err
	}
	return nil
}
