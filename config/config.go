/*
Package config loads server configuration from the environment.

SOURCES (in order of precedence):
  1. Command-line flags (-port, -db), applied by cmd/server
  2. Process environment
  3. Optional .env file in the working directory
  4. Defaults below

VARIABLES:
  PORT                   HTTP port (8080)
  DB_PATH                SQLite database path (loans.db), ":memory:" allowed
  ENVIRONMENT            development | production (development)
  LOG_LEVEL              debug | info | warn | error (info)
  ALLOWED_ORIGINS        comma-separated CORS origins
  OTEL_ENDPOINT          OTLP/HTTP collector host:port, empty disables export
  OTEL_SERVICE_NAME      service name on exported spans (loan-advisor)
  MAX_PRINCIPAL          largest accepted principal (1e9)
  RATE_CEILING_PERCENT   upper bound of the rate solver (100)
  MAX_MORATORIUM_MONTHS  longest accepted moratorium (60)
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hrsagar28/loan-calculator-app/loan"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all server settings.
type Config struct {
	Port        int
	DBPath      string
	Environment string
	LogLevel    string

	AllowedOrigins []string

	OTELEndpoint    string
	OTELServiceName string

	MaxPrincipal        float64
	RateCeilingPercent  float64
	MaxMoratoriumMonths int
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvAsInt("PORT", 8080),
		DBPath:      getEnv("DB_PATH", "loans.db"),
		Environment: strings.ToLower(getEnv("ENVIRONMENT", EnvDevelopment)),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:8080",
		}),
		OTELEndpoint:        getEnv("OTEL_ENDPOINT", ""),
		OTELServiceName:     getEnv("OTEL_SERVICE_NAME", "loan-advisor"),
		MaxPrincipal:        getEnvAsFloat("MAX_PRINCIPAL", 1e9),
		RateCeilingPercent:  getEnvAsFloat("RATE_CEILING_PERCENT", 100),
		MaxMoratoriumMonths: getEnvAsInt("MAX_MORATORIUM_MONTHS", 60),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("invalid ENVIRONMENT %q: must be %q or %q", c.Environment, EnvDevelopment, EnvProduction)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if c.MaxPrincipal <= 0 {
		return fmt.Errorf("MAX_PRINCIPAL must be positive")
	}
	if c.RateCeilingPercent <= 0 {
		return fmt.Errorf("RATE_CEILING_PERCENT must be positive")
	}
	// Zero would fall back to the engine default, not disable moratoriums.
	if c.MaxMoratoriumMonths <= 0 {
		return fmt.Errorf("MAX_MORATORIUM_MONTHS must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Limits returns the engine limits, starting from loan.DefaultLimits.
func (c *Config) Limits() loan.Limits {
	limits := loan.DefaultLimits()
	limits.MaxPrincipal = c.MaxPrincipal
	limits.RateCeilingPercent = c.RateCeilingPercent
	limits.MaxMoratoriumMonths = c.MaxMoratoriumMonths
	return limits
}

// NewLogger builds a zap logger: JSON in production, console otherwise.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	zc := zap.NewDevelopmentConfig()
	if c.IsProduction() {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// =============================================================================
// ENV HELPERS
// =============================================================================

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
