// Package config provides environment-driven configuration for stockpilot.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"strings"
)

// Secret wraps a sensitive string to prevent accidental logging or
// marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all application configuration values.
type Config struct {
	Port        string
	ListenHost  string
	CORSOrigins []string
	LogLevel    string

	StorageBackend string
	DataDir        string
	DatabaseURL    Secret

	RulesPath            string
	ClassifierOutputPath string

	OpenAIKey    Secret
	PlannerModel string

	AutopilotEnabled bool
	RestaurantID     string
	AuditQueueSize   int
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 envOrDefault("PORT", "4040"),
		ListenHost:           envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:             envOrDefault("LOG_LEVEL", "info"),
		StorageBackend:       envOrDefault("STORAGE_BACKEND", BackendFile),
		DataDir:              envOrDefault("DATA_DIR", "./data"),
		DatabaseURL:          Secret(envOrDefault("DATABASE_URL", "")),
		RulesPath:            envOrDefault("RULES_PATH", "rules.yaml"),
		ClassifierOutputPath: envOrDefault("CLASSIFIER_OUTPUT_PATH", "classifier_output.jsonl"),
		OpenAIKey:            Secret(envOrDefault("OPENAI_API_KEY", "")),
		PlannerModel:         envOrDefault("PLANNER_MODEL", "gpt-4o-mini"),
		AutopilotEnabled:     envOrDefault("AUTOPILOT_ENABLED", "false") == "true",
		RestaurantID:         envOrDefault("RESTAURANT_ID", "main"),
	}

	queueSize, err := strconv.Atoi(envOrDefault("AUDIT_QUEUE_SIZE", "1000"))
	if err != nil || queueSize < 1 {
		return nil, fmt.Errorf("AUDIT_QUEUE_SIZE must be a positive integer")
	}
	cfg.AuditQueueSize = queueSize

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
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

// PlannerEnabled reports whether an LLM proposer should be constructed.
func (c *Config) PlannerEnabled() bool {
	return c.OpenAIKey.Value() != ""
}

func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}

	switch c.StorageBackend {
	case BackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the file backend")
		}
	case BackendPostgres:
		if err := c.validateDatabase(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q",
			BackendFile, BackendPostgres, c.StorageBackend)
	}

	for _, o := range c.CORSOrigins {
		if o == "" {
			return fmt.Errorf("CORS_ORIGINS contains an empty origin")
		}
	}

	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid logrus level", c.LogLevel)
	}

	return nil
}

func (c *Config) validateDatabase() error {
	if c.DatabaseURL.Value() == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres backend")
	}

	dbURL, err := url.Parse(c.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}

	if dbURL.Scheme != "postgres" && dbURL.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL scheme must be postgres or postgresql, got %q", dbURL.Scheme)
	}

	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
