package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	IdentityStore IdentityStoreConfig
	AuditDB       AuditDBConfig
	Observability ObservabilityConfig
	RateLimit     RateLimitConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// IdentityStoreConfig holds connection settings for the external identity
// store. ServiceKey is the privileged admin credential; without it the
// provisioning endpoint reports a configuration error.
type IdentityStoreConfig struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// AdminConfigured reports whether the admin surface can be used.
func (c IdentityStoreConfig) AdminConfigured() bool {
	return c.BaseURL != "" && c.ServiceKey != ""
}

// AuditDBConfig holds the optional Postgres audit trail configuration.
// Audit events always go to the log; the database copy is opt-in.
type AuditDBConfig struct {
	Enabled         bool
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	OTELEnabled    bool
	ServiceName    string
	ServiceVersion string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  parseDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: parseDuration("SERVER_WRITE_TIMEOUT", "15s"),
			IdleTimeout:  parseDuration("SERVER_IDLE_TIMEOUT", "60s"),
		},
		IdentityStore: IdentityStoreConfig{
			BaseURL:    getEnv("IDENTITY_STORE_URL", ""),
			ServiceKey: getEnv("IDENTITY_STORE_SERVICE_KEY", ""),
			Timeout:    parseDuration("IDENTITY_STORE_TIMEOUT", "10s"),
		},
		AuditDB: AuditDBConfig{
			Enabled:         parseBool("AUDIT_DB_ENABLED", false),
			Host:            getEnv("AUDIT_DB_HOST", "localhost"),
			Port:            getEnv("AUDIT_DB_PORT", "5432"),
			User:            getEnv("AUDIT_DB_USER", "hackgate"),
			Password:        getEnv("AUDIT_DB_PASSWORD", ""),
			Database:        getEnv("AUDIT_DB_NAME", "hackgate"),
			SSLMode:         getEnv("AUDIT_DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt("AUDIT_DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    parseInt("AUDIT_DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: parseDuration("AUDIT_DB_CONN_MAX_LIFETIME", "5m"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			OTELEnabled:    parseBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "hackgate"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: float64(parseInt("RATELIMIT_RPS", 10)),
			Burst:             parseInt("RATELIMIT_BURST", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
//
// Note: a missing identity-store service key is deliberately NOT fatal here.
// The guard works without it, and the provisioning endpoint reports the
// misconfiguration per request as a configuration error.
func (c *Config) Validate() error {
	if c.AuditDB.Enabled && c.AuditDB.Password == "" {
		return fmt.Errorf("AUDIT_DB_PASSWORD is required when AUDIT_DB_ENABLED is set")
	}
	if c.IdentityStore.ServiceKey != "" && c.IdentityStore.BaseURL == "" {
		return fmt.Errorf("IDENTITY_STORE_URL is required when IDENTITY_STORE_SERVICE_KEY is set")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	d, err := time.ParseDuration(value)
	if err != nil {
		// Fallback to default
		d, _ = time.ParseDuration(defaultValue)
	}
	return d
}
