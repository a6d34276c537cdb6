// Package config loads service settings from the environment. Callers are
// expected to have run godotenv.Load beforehand so a local .env file is
// honored.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Pricing  PricingConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type DatabaseConfig struct {
	Driver string // postgres or sqlite
	URL    string
	Debug  bool
}

type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TokenTTL time.Duration
}

type PricingConfig struct {
	IVARate decimal.Decimal
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("ENVIRONMENT", "development"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			ReadTimeout:    getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			URL:    os.Getenv("DATABASE_URL"),
			Debug:  getBool("DB_DEBUG", false),
		},
		Auth: AuthConfig{
			Secret:   os.Getenv("JWT_SECRET"),
			Issuer:   getEnv("JWT_ISSUER", "protecciones"),
			Audience: getEnv("JWT_AUDIENCE", "protecciones-api"),
			TokenTTL: getDuration("JWT_TTL", 12*time.Hour),
		},
	}

	iva, err := decimal.NewFromString(getEnv("IVA_RATE", "0.16"))
	if err != nil {
		return nil, fmt.Errorf("invalid IVA_RATE: %w", err)
	}
	cfg.Pricing.IVARate = iva

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings needed by every command.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (expected postgres or sqlite)", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL not set in environment or .env file")
	}
	if c.Pricing.IVARate.IsNegative() {
		return fmt.Errorf("IVA_RATE must not be negative")
	}
	return nil
}

// RequireAuth checks the settings needed to verify or issue tokens.
func (c *Config) RequireAuth() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("JWT_SECRET not set in environment or .env file")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
