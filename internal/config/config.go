package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB       DBConfig
	Server   ServerConfig
	Seeder   SeederConfig
	Geonames GeonamesConfig
	Geocoder GeocoderConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
	DBTypeSQLite     DBType = "sqlite"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Path is the sqlite file used when Type is DBTypeSQLite
	Path string
}

// SeederConfig holds settings for reference data import
type SeederConfig struct {
	DataDir   string
	BatchSize int
}

// GeonamesConfig holds settings for the GeoNames web service client
type GeonamesConfig struct {
	Username string
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// GeocoderConfig holds the tunable disambiguation heuristics.
// USStateThreshold is the number of distinct US state names that makes a
// record "assume US" even without an explicit "United States" term.
type GeocoderConfig struct {
	USStateThreshold int
	SingleStateBias  bool
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	switch c.Type {
	case DBTypeMemory:
		// SQLite in-memory database
		if c.Name != "" && c.Name != "ddigeo" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	case DBTypeSQLite:
		return fmt.Sprintf("file:%s?cache=shared&_foreign_keys=on", c.Path)
	}
	// PostgreSQL connection string
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// IsSQLite returns true for both the in-memory and the file backed sqlite database
func (c DBConfig) IsSQLite() bool {
	return c.Type == DBTypeMemory || c.Type == DBTypeSQLite
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory && dbType != DBTypeSQLite {
		dbType = DBTypeMemory
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "ddigeo"),
			Password: getEnv("DB_PASSWORD", "ddigeo_password"),
			Name:     getEnv("DB_NAME", "ddigeo"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "ddigeo.db"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Seeder: SeederConfig{
			DataDir:   getEnv("SEEDER_DATA_DIR", "data"),
			BatchSize: getEnvAsInt("SEEDER_BATCH_SIZE", 500),
		},
		Geonames: GeonamesConfig{
			Username: getEnv("GEONAMES_USERNAME", ""),
			BaseURL:  getEnv("GEONAMES_BASE_URL", "http://api.geonames.org"),
			Timeout:  time.Duration(getEnvAsInt("GEONAMES_TIMEOUT", 10)) * time.Second,
			CacheTTL: time.Duration(getEnvAsInt("GEONAMES_CACHE_TTL", 60)) * time.Minute,
		},
		Geocoder: GeocoderConfig{
			USStateThreshold: getEnvAsInt("GEOCODER_US_STATE_THRESHOLD", 3),
			SingleStateBias:  getEnvAsBool("GEOCODER_SINGLE_STATE_BIAS", true),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
