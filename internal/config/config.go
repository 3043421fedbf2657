package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port              int    `env:"PORT" envDefault:"8080"`
	DatabaseURL       string `env:"DATABASE_URL,required"`
	RedisURL          string `env:"REDIS_URL,required"`
	AMQPURL           string `env:"AMQP_URL"`
	ScanQueue         string `env:"SCAN_QUEUE_NAME" envDefault:"scan-events"`
	PublicBaseURL     string `env:"PUBLIC_BASE_URL" envDefault:""`
	DeniedPageURL     string `env:"DENIED_PAGE_URL" envDefault:"/unavailable"`
	ResolveRatePerMin int    `env:"RESOLVE_RATE_PER_MINUTE" envDefault:"120"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ShortURL returns the public URL a generated code is reachable at.
func (c *Config) ShortURL(code string) string {
	base := strings.TrimSuffix(c.PublicBaseURL, "/")
	return fmt.Sprintf("%s/%s", base, code)
}

func (c *Config) Validate(isProduction bool) error {
	if c.DeniedPageURL == "" {
		return fmt.Errorf("DENIED_PAGE_URL must not be empty")
	}
	if _, err := url.Parse(c.DeniedPageURL); err != nil {
		return fmt.Errorf("DENIED_PAGE_URL is not a valid URL: %w", err)
	}
	if c.ResolveRatePerMin <= 0 {
		return fmt.Errorf("RESOLVE_RATE_PER_MINUTE must be positive")
	}

	if isProduction {
		if c.PublicBaseURL == "" {
			log.Warn().Msg("PUBLIC_BASE_URL is empty in production: shortUrl fields in API responses will be relative")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if c.AMQPURL == "" {
			log.Warn().Msg("AMQP_URL is empty in production: scan events will not reach the analytics pipeline")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
