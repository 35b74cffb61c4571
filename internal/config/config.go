package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port           string        `mapstructure:"PORT"`
	DatabaseDriver string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	TokenTTL       time.Duration `mapstructure:"TOKEN_TTL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// StorePollInterval is how often writes made by other processes are
	// picked up. Zero disables polling.
	StorePollInterval time.Duration `mapstructure:"STORE_POLL_INTERVAL"`
	StoreMaxRetries   int           `mapstructure:"STORE_MAX_RETRIES"`

	SeedDemoUsers bool `mapstructure:"SEED_DEMO_USERS"`

	ArchiveBucket          string `mapstructure:"ARCHIVE_BUCKET"`
	ArchiveEndpoint        string `mapstructure:"ARCHIVE_ENDPOINT"`
	ArchiveRegion          string `mapstructure:"ARCHIVE_REGION"`
	ArchiveAccessKeyID     string `mapstructure:"ARCHIVE_ACCESS_KEY_ID"`
	ArchiveSecretAccessKey string `mapstructure:"ARCHIVE_SECRET_ACCESS_KEY"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var defaults = map[string]any{
	"PORT":                      "8080",
	"DATABASE_DRIVER":           DriverMemory,
	"DATABASE_URL":              "",
	"JWT_SECRET":                "",
	"TOKEN_TTL":                 "168h",
	"LOG_LEVEL":                 "info",
	"LOG_FORMAT":                "json",
	"STORE_POLL_INTERVAL":       "2s",
	"STORE_MAX_RETRIES":         5,
	"SEED_DEMO_USERS":           true,
	"ARCHIVE_BUCKET":            "",
	"ARCHIVE_ENDPOINT":          "",
	"ARCHIVE_REGION":            "auto",
	"ARCHIVE_ACCESS_KEY_ID":     "",
	"ARCHIVE_SECRET_ACCESS_KEY": "",
}

// LoadConfig loads the configuration from a .env file in path and
// environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// Defaults double as the key list AutomaticEnv needs for Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.StorePollInterval < 0 {
		return errors.New("STORE_POLL_INTERVAL must not be negative")
	}
	return nil
}

// ArchiveEnabled reports whether finished matches are uploaded.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveBucket != ""
}
