package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/alexivanou/ddigeo/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver for database/sql
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Connect creates a database connection based on configuration using sqlx
func Connect(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	var driverName string
	dsn := cfg.DSN()

	if cfg.IsSQLite() {
		driverName = "sqlite3"
	} else {
		driverName = "pgx"
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Specific settings for SQLite to enable Foreign Keys
	if cfg.IsSQLite() {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return db, nil
}

// NewMigrator builds a migrate instance over the embedded migrations for the
// configured database type, reusing the already open connection.
// The returned instance must not be closed while db is still in use: closing
// it closes the underlying connection pool.
func NewMigrator(db *sqlx.DB, cfg config.DBConfig) (*migrate.Migrate, error) {
	sourceDir := "postgres"
	if cfg.IsSQLite() {
		sourceDir = "sqlite"
	}

	source, err := iofs.New(migrations.FS, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}

	var (
		driver     database.Driver
		driverName string
	)
	if cfg.IsSQLite() {
		driverName = "sqlite3"
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	} else {
		driverName = "postgres"
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s migration driver: %w", driverName, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies all pending up migrations
func Migrate(db *sqlx.DB, cfg config.DBConfig) error {
	m, err := NewMigrator(db, cfg)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}
