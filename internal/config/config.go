package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	AdminKey        string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	SourceKind      string        `mapstructure:"SOURCE_KIND"`
	SheetCSVURL     string        `mapstructure:"SHEET_CSV_URL"`
	Worksheet       string        `mapstructure:"WORKSHEET"`
	SourceFile      string        `mapstructure:"SOURCE_FILE"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	SourceTable     string        `mapstructure:"SOURCE_TABLE"`
	Timezone        string        `mapstructure:"TIMEZONE"`
	CacheTTL        time.Duration `mapstructure:"CACHE_TTL"`
	RefreshInterval time.Duration `mapstructure:"REFRESH_INTERVAL"`
	FetchMaxTries   uint          `mapstructure:"FETCH_MAX_TRIES"`
	FetchTimeout    time.Duration `mapstructure:"FETCH_TIMEOUT"`
}

func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile reads path if it exists; environment variables always win.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("SOURCE_KIND", "sheets")
	v.SetDefault("SHEET_CSV_URL", "")
	v.SetDefault("WORKSHEET", "Interactions")
	v.SetDefault("SOURCE_FILE", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SOURCE_TABLE", "srr_interactions")
	v.SetDefault("TIMEZONE", "America/Los_Angeles")
	v.SetDefault("CACHE_TTL", "120s")
	v.SetDefault("REFRESH_INTERVAL", "120s")
	v.SetDefault("FETCH_MAX_TRIES", 3)
	v.SetDefault("FETCH_TIMEOUT", "20s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.SourceKind = strings.ToLower(strings.TrimSpace(cfg.SourceKind))
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.SourceKind {
	case "sheets":
		if c.SheetCSVURL == "" {
			return fmt.Errorf("SHEET_CSV_URL is required for source kind sheets")
		}
	case "file":
		if c.SourceFile == "" {
			return fmt.Errorf("SOURCE_FILE is required for source kind file")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for source kind postgres")
		}
		if c.SourceTable == "" {
			return fmt.Errorf("SOURCE_TABLE is required for source kind postgres")
		}
	default:
		return fmt.Errorf("unsupported SOURCE_KIND %q", c.SourceKind)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive")
	}
	return nil
}

// FetchBudget bounds one load of the source: every try at FETCH_TIMEOUT plus
// one more for the waits between them.
func (c Config) FetchBudget() time.Duration {
	if c.FetchTimeout <= 0 {
		return 0
	}
	return c.FetchTimeout * time.Duration(max(c.FetchMaxTries, 1)+1)
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
