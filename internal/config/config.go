package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lorrc/triage-desk/internal/core/domain"
)

// Override storage drivers
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Ticket feed configuration
	Feed FeedConfig

	// Override storage configuration
	Store StoreConfig

	// Category taxonomy file
	Taxonomy TaxonomyConfig

	// Operator session configuration
	Triage TriageConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Cross-origin configuration for the browser client
	CORS CORSConfig

	// Logging configuration
	Logging LoggingConfig

	// Prometheus endpoint
	Metrics MetricsConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// FeedConfig locates the ticket feed. URL wins over Path when both are set.
type FeedConfig struct {
	Path    string
	URL     string
	Timeout time.Duration
}

// StoreConfig holds override storage configuration
type StoreConfig struct {
	Driver string
	Key    string
	Dir    string // file driver

	// postgres driver
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrateOnStart  bool

	// redis driver
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisDialTimeout time.Duration
}

// TaxonomyConfig points at an optional YAML taxonomy file
type TaxonomyConfig struct {
	Path string
}

// TriageConfig holds operator session settings
type TriageConfig struct {
	ReplySender string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	WriteRPS          float64 // Stricter limit for mutations and reloads
	WriteBurst        int
}

// CORSConfig holds allowed origins for the browser client
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// MetricsConfig holds Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the configuration from the process environment without
// validating it.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Feed: FeedConfig{
			Path:    getEnvOrDefault("FEED_PATH", "data/tickets.json"),
			URL:     os.Getenv("FEED_URL"),
			Timeout: getDurationOrDefault("FEED_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Driver:           strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreFile)),
			Key:              getEnvOrDefault("STORE_KEY", domain.Defaults.StorageKey),
			Dir:              getEnvOrDefault("STORE_DIR", "data/overrides"),
			DatabaseURL:      os.Getenv("DATABASE_URL"),
			MaxOpenConns:     getIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getIntOrDefault("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime:  getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime:  getDurationOrDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			MigrateOnStart:   getBoolOrDefault("DB_MIGRATE_ON_START", true),
			RedisAddr:        os.Getenv("REDIS_ADDR"),
			RedisPassword:    os.Getenv("REDIS_PASSWORD"),
			RedisDB:          getIntOrDefault("REDIS_DB", 0),
			RedisDialTimeout: getDurationOrDefault("REDIS_DIAL_TIMEOUT", 5*time.Second),
		},
		Taxonomy: TaxonomyConfig{
			Path: os.Getenv("TAXONOMY_PATH"),
		},
		Triage: TriageConfig{
			ReplySender: getEnvOrDefault("TRIAGE_REPLY_SENDER", domain.Defaults.ReplySender),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
			WriteRPS:          getFloatOrDefault("RATE_LIMIT_WRITE_RPS", 2),
			WriteBurst:        getIntOrDefault("RATE_LIMIT_WRITE_BURST", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{}),
			MaxAge:         getIntOrDefault("CORS_MAX_AGE", 300),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolOrDefault("METRICS_ENABLED", true),
			Path:    getEnvOrDefault("METRICS_PATH", "/metrics"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "triage-desk"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	if c.Feed.Path == "" && c.Feed.URL == "" {
		errs = append(errs, "FEED_PATH or FEED_URL is required")
	}
	if c.Feed.URL != "" && !strings.HasPrefix(c.Feed.URL, "http://") && !strings.HasPrefix(c.Feed.URL, "https://") {
		errs = append(errs, "FEED_URL must be an http or https URL")
	}
	if c.Feed.Timeout <= 0 {
		errs = append(errs, "FEED_TIMEOUT must be positive")
	}

	if c.Store.Key == "" {
		errs = append(errs, "STORE_KEY is required")
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreFile:
		if c.Store.Dir == "" {
			errs = append(errs, "STORE_DIR is required for the file driver")
		}
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres driver")
		}
		if c.Store.MaxIdleConns > c.Store.MaxOpenConns {
			errs = append(errs, "DB_MAX_IDLE_CONNS cannot be greater than DB_MAX_OPEN_CONNS")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR is required for the redis driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be one of %s, %s, %s, %s",
			StoreMemory, StoreFile, StorePostgres, StoreRedis))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.WriteRPS <= 0 {
			errs = append(errs, "rate limits must be positive when RATE_LIMIT_ENABLED is set")
		}
		if c.RateLimit.BurstSize < 1 || c.RateLimit.WriteBurst < 1 {
			errs = append(errs, "rate limit bursts must be at least 1")
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, "METRICS_PATH must start with /")
	}

	if c.App.Environment == "production" {
		if len(c.CORS.AllowedOrigins) == 0 {
			errs = append(errs, "CORS_ALLOWED_ORIGINS must be set in production")
		}
		if c.Store.Driver == StoreMemory {
			errs = append(errs, "the memory store driver loses overrides on restart and is not allowed in production")
		}
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// FeedSource describes where tickets are read from.
func (c *Config) FeedSource() string {
	if c.Feed.URL != "" {
		return c.Feed.URL
	}
	return c.Feed.Path
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	store := c.Store.Driver
	switch c.Store.Driver {
	case StoreFile:
		store += ":" + c.Store.Dir
	case StorePostgres:
		store += ":" + redactURL(c.Store.DatabaseURL)
	case StoreRedis:
		store += ":" + c.Store.RedisAddr
		if c.Store.RedisPassword != "" {
			store += " (password [REDACTED])"
		}
	}
	return fmt.Sprintf(
		"Config{Server: %s, Feed: %s, Store: %s, RateLimit: %v, Environment: %s}",
		c.Server.Port,
		redactURL(c.FeedSource()),
		store,
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

// redactURL hides credentials embedded in a URL
func redactURL(url string) string {
	if url == "" {
		return ""
	}
	scheme := ""
	rest := url
	if idx := strings.Index(url, "://"); idx >= 0 {
		scheme, rest = url[:idx+3], url[idx+3:]
	}
	if idx := strings.LastIndex(rest, "@"); idx >= 0 {
		return scheme + "[REDACTED]" + rest[idx:]
	}
	return url
}
