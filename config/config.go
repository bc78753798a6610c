// Package config holds the explicit application configuration, validated
// once at startup. Services receive this struct at construction; nothing
// reads environment variables ad hoc per operation.
package config

import (
	"errors"
	"fmt"
	"os"
)

// Environments recognized by logger selection.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ErrInvalidConfig is returned when validation fails at startup.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configurable values for the service.
type Config struct {
	Env            string
	Addr           string
	DBPath         string
	AllowedOrigins []string
}

// Load builds a Config from environment variables with sensible defaults,
// then validates it. Flag values, when set, should be applied by the caller
// before Validate.
func Load() (*Config, error) {
	cfg := &Config{
		Env:    getEnv("ENV", EnvDevelopment),
		Addr:   getEnv("ADDR", ":8080"),
		DBPath: getEnv("DB_PATH", "timetracker.db"),
		AllowedOrigins: []string{
			getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration once; failures are typed and fatal.
func (c *Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("%w: unknown env %q", ErrInvalidConfig, c.Env)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: listen address not specified", ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: database path not specified", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
