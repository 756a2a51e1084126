package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string        `env:"PORT" envDefault:"8080" validate:"required,numeric"`
	StorageDriver string        `env:"STORAGE_DRIVER" envDefault:"postgres" validate:"oneof=postgres memory"`
	DatabaseURL   string        `env:"DATABASE_URL" validate:"required_if=StorageDriver postgres"`
	JWTSecret     string        `env:"JWT_SECRET" validate:"required"`
	JWTIssuer     string        `env:"JWT_ISSUER"`
	JWTExpiry     time.Duration `env:"JWT_EXPIRY" envDefault:"168h" validate:"gt=0"`
	ClientOrigins []string      `env:"CLIENT_ORIGIN" envSeparator:"," envDefault:"http://localhost:3000"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10" validate:"min=4,max=31"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.ClientOrigins = cleanOrigins(cfg.ClientOrigins)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func cleanOrigins(in []string) []string {
	var out []string
	for _, part := range in {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
