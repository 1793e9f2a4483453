// Package config provides environment-driven configuration for logscope.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Top-endpoints aggregate modes accepted by TOP_ENDPOINTS_SCOPE.
const (
	TopScopeActor  = "actor"
	TopScopeTenant = "tenant"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL       Secret
	Port              string
	ListenHost        string
	CORSOrigins       []string
	LogLevel          string
	LogFormat         string
	DefaultPageSize   int
	MaxPageSize       int
	TopEndpointsLimit int
	TopEndpointsScope string
	ExportLimit       int
	QueryTimeout      time.Duration
	AutoMigrate       bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       Secret(envOrDefault("DATABASE_URL", "")),
		Port:              envOrDefault("PORT", "3040"),
		ListenHost:        envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "json"),
		TopEndpointsScope: envOrDefault("TOP_ENDPOINTS_SCOPE", TopScopeActor),
		AutoMigrate:       envOrDefault("AUTO_MIGRATE", "true") == "true",
	}

	var err error

	if cfg.DefaultPageSize, err = envInt("DEFAULT_PAGE_SIZE", 100, 1, 1000); err != nil {
		return nil, err
	}

	if cfg.MaxPageSize, err = envInt("MAX_PAGE_SIZE", 1000, 1, 10000); err != nil {
		return nil, err
	}

	if cfg.TopEndpointsLimit, err = envInt("TOP_ENDPOINTS_LIMIT", 5, 1, 100); err != nil {
		return nil, err
	}

	if cfg.ExportLimit, err = envInt("EXPORT_LIMIT", 1000, 1, 100000); err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(envOrDefault("QUERY_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("QUERY_TIMEOUT must be a positive duration")
	}
	cfg.QueryTimeout = timeout

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// TopEndpointsTenantWide reports whether the top-endpoints aggregate drops
// the actor filter.
func (c *Config) TopEndpointsTenantWide() bool {
	return c.TopEndpointsScope == TopScopeTenant
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback, minVal, maxVal int) (int, error) {
	n, err := strconv.Atoi(envOrDefault(key, strconv.Itoa(fallback)))
	if err != nil || n < minVal || n > maxVal {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, minVal, maxVal)
	}

	return n, nil
}
