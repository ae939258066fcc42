package config

import (
	"fmt"

	pkgconfig "github.com/hatbazar/storefront/pkg/config"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8004"`

	// Base URL used when building shareable reseller links.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"https://hatbazar.com.bd"`

	// Durable cart storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass      string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	PostgresDSN    string `env:"POSTGRES_DSN" envDefault:""`

	// Cart TTL in hours (default: 7 days). Abandoned carts expire after it.
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`

	// Catalog service
	CatalogBaseURL string `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8001"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"true"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
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

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.StorageBackend {
	case BackendRedis, BackendMemory:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown storage backend: %q", c.StorageBackend)
	}

	if c.CartTTL < 1 {
		return fmt.Errorf("cart TTL must be at least 1 hour, got %d", c.CartTTL)
	}

	return nil
}
