// Package config loads and validates application configuration from
// environment variables. In development a .env file in the working directory
// is read first; real environment variables always win.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the front-end server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// Env names the deployment environment: "development" or "production".
	// Production marks auth cookies Secure. Defaults to "development".
	Env string

	// DatabaseURL is the Postgres connection string for cart storage. Required.
	DatabaseURL string

	// BackendAPIURL is the base URL of the booking platform API. Required.
	BackendAPIURL string

	// RedisAddr is the Redis host:port for the response cache.
	// Empty disables caching.
	RedisAddr string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:3000"].
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	// Missing .env is the normal case outside local dev.
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BackendAPIURL = strings.TrimRight(os.Getenv("BACKEND_API_URL"), "/")
	if cfg.BackendAPIURL == "" {
		missing = append(missing, "BACKEND_API_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// Production reports whether the server runs with production hardening.
func (c Config) Production() bool {
	return c.Env == "production"
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
