// Package config loads application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the full application configuration.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	AppPort  string `envconfig:"APP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Pricing  PricingConfig
	Metrics  MetricsConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string        `envconfig:"DATABASE_URL" required:"true"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"5"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" required:"true"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"comercio"`
	TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

// RedisConfig holds the optional availability cache settings.
// An empty Addr disables Redis and falls back to the no-op cache.
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR" default:""`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	StockTTL time.Duration `envconfig:"STOCK_CACHE_TTL" default:"5m"`
}

// PricingConfig selects the sale price policy. When Rule is set it is
// compiled as a CEL expression; otherwise a fixed markup applies.
type PricingConfig struct {
	Rule       string  `envconfig:"PRICING_RULE" default:""`
	MarkupRate float64 `envconfig:"PRICING_MARKUP_RATE" default:"0.30"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Prefix  string `envconfig:"METRICS_PREFIX" default:"comercio"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process configuration: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
