// Package config loads server settings from .env, the environment and flags,
// in that order of increasing precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Database  DatabaseConfig
	App       AppConfig
	RateLimit RateLimitConfig
	Payroll   PayrollConfig
}

type DatabaseConfig struct {
	Driver string // sqlite | postgres
	Path   string // sqlite file
	URL    string // postgres DSN
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

// RateLimitConfig is the per-client token bucket for the API.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type PayrollConfig struct {
	// CloseInterval is how often the scheduler tries to close the previous month. 0 disables it.
	CloseInterval time.Duration
}

// Load reads an optional .env file, then the environment, then parses args
// as flag overrides. args excludes the program name.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := &Config{}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("PAYROLL_CLOSE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_CLOSE_INTERVAL: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver: getEnv("DB_DRIVER", DriverSQLite),
		Path:   getEnv("DB_PATH", "attendance.db"),
		URL:    getEnv("DATABASE_URL", ""),
	}
	config.App = AppConfig{
		Port:        port,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"*"}),
	}
	config.RateLimit = RateLimitConfig{RPS: rps, Burst: burst}
	config.Payroll = PayrollConfig{CloseInterval: interval}

	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	fset.IntVar(&config.App.Port, "port", config.App.Port, "HTTP server port")
	fset.StringVar(&config.Database.Driver, "driver", config.Database.Driver, "Store driver (sqlite|postgres)")
	fset.StringVar(&config.Database.Path, "db", config.Database.Path, "SQLite database path")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.App.Port)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.Payroll.CloseInterval < 0 {
		return fmt.Errorf("PAYROLL_CLOSE_INTERVAL must not be negative")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) IsProduction() bool { return c.App.Env == "production" }

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
