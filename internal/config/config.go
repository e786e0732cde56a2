// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	LogLevel    string
	OTelEnabled bool

	// API server settings.
	APIPort     string
	CORSOrigins []string

	// OIDC bearer auth. Disabled when OIDCIssuer is empty.
	OIDCIssuer   string
	OIDCAudience string

	// Per-client request rate limit.
	RateLimitRPS   float64
	RateLimitBurst int

	// ScenarioDir is loaded on top of the built-in scenarios when set.
	ScenarioDir string
	// Workers > 1 decomposes scenario segments concurrently.
	Workers int
}

// OIDCEnabled reports whether bearer auth is configured.
func (c Config) OIDCEnabled() bool {
	return c.OIDCIssuer != ""
}

// LoadFromEnv reads configuration from environment variables with sensible defaults.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		LogLevel:     envOr("LMDI_LOG_LEVEL", "info"),
		APIPort:      envOr("LMDI_API_PORT", "8080"),
		CORSOrigins:  parseCORSOrigins(os.Getenv("LMDI_CORS_ORIGINS")),
		OIDCIssuer:   os.Getenv("LMDI_OIDC_ISSUER"),
		OIDCAudience: os.Getenv("LMDI_OIDC_AUDIENCE"),
		ScenarioDir:  os.Getenv("LMDI_SCENARIO_DIR"),
	}

	var err error
	if cfg.OTelEnabled, err = envBool("LMDI_OTEL_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = envFloat("LMDI_RATE_LIMIT_RPS", 20); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = envInt("LMDI_RATE_LIMIT_BURST", 40); err != nil {
		return Config{}, err
	}
	if cfg.Workers, err = envInt("LMDI_WORKERS", 1); err != nil {
		return Config{}, err
	}

	if cfg.RateLimitRPS <= 0 {
		return Config{}, fmt.Errorf("config: LMDI_RATE_LIMIT_RPS must be positive, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst < 1 {
		return Config{}, fmt.Errorf("config: LMDI_RATE_LIMIT_BURST must be at least 1, got %d", cfg.RateLimitBurst)
	}
	if cfg.Workers < 1 {
		return Config{}, fmt.Errorf("config: LMDI_WORKERS must be at least 1, got %d", cfg.Workers)
	}
	if cfg.OIDCEnabled() && cfg.OIDCAudience == "" {
		return Config{}, fmt.Errorf("config: LMDI_OIDC_AUDIENCE required when LMDI_OIDC_ISSUER is set")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func parseCORSOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(o); t != "" {
			origins = append(origins, t)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
