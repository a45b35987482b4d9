package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// KV backends.
const (
	KVMemory = "memory"
	KVRedis  = "redis"
)

// Config holds all configuration for the storefront engine daemon.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend API
	APIBaseURL string        `env:"STOREFRONT_API_BASE_URL" envDefault:"http://localhost:5186/api/v1"`
	APITimeout time.Duration `env:"STOREFRONT_API_TIMEOUT" envDefault:"8s"`
	APIRetries int           `env:"STOREFRONT_API_RETRIES" envDefault:"2"`

	// Local persistence
	KVBackend   string        `env:"KV_BACKEND" envDefault:"memory"`
	KVKeyPrefix string        `env:"KV_KEY_PREFIX" envDefault:"storefront"`
	KVTTL       time.Duration `env:"KV_TTL" envDefault:"168h"`
	RedisAddr   string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass   string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB     int           `env:"REDIS_DB" envDefault:"0"`

	// Listing
	SearchDebounce time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"650ms"`
	SearchPageSize int           `env:"SEARCH_PAGE_SIZE" envDefault:"20"`

	// Sync
	SyncPushInterval time.Duration `env:"SYNC_PUSH_INTERVAL" envDefault:"2s"`
	SyncUserID       string        `env:"SYNC_USER_ID" envDefault:""`
	AuthTokenSecret  string        `env:"AUTH_TOKEN_SECRET" envDefault:"dev-secret-change-me"`
	AuthTokenTTL     time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"1h"`
	HealthInterval   time.Duration `env:"HEALTH_CHECK_INTERVAL" envDefault:"30s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"storefront-engine"`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Health and metrics
	MetricsPort int `env:"METRICS_PORT" envDefault:"9102"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom is Load over an explicit variable set.
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, vars); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %q", c.APIBaseURL)
	}
	if c.KVBackend != KVMemory && c.KVBackend != KVRedis {
		return fmt.Errorf("unknown KV backend: %q", c.KVBackend)
	}
	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.MetricsPort)
	}
	if c.SearchPageSize < 1 || c.SearchPageSize > 100 {
		return fmt.Errorf("invalid search page size: %d", c.SearchPageSize)
	}
	if c.APIRetries < 0 {
		return fmt.Errorf("invalid API retries: %d", c.APIRetries)
	}
	for name, d := range map[string]time.Duration{
		"STOREFRONT_API_TIMEOUT": c.APITimeout,
		"SEARCH_DEBOUNCE":        c.SearchDebounce,
		"SYNC_PUSH_INTERVAL":     c.SyncPushInterval,
		"AUTH_TOKEN_TTL":         c.AuthTokenTTL,
		"HEALTH_CHECK_INTERVAL":  c.HealthInterval,
		"SHUTDOWN_TIMEOUT":       c.ShutdownTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		return fmt.Errorf("invalid OTel sample rate: %v", c.OTelSampleRate)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when Kafka is enabled")
	}
	return nil
}
