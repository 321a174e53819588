// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the environment configuration of the persistence
// service and the operator console.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// validLogLevels are the accepted OCMS_LOG_LEVEL values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// ContentConfig configures the persistence service.
type ContentConfig struct {
	DBPath         string        `env:"OCMS_DB_PATH" envDefault:"./data/ocms-content.db"`
	ServerHost     string        `env:"OCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort     int           `env:"OCMS_SERVER_PORT" envDefault:"8081"`
	Env            string        `env:"OCMS_ENV" envDefault:"development"`
	LogLevel       string        `env:"OCMS_LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"OCMS_REQUEST_TIMEOUT" envDefault:"30s"`

	// Seed creates the demo collections on startup.
	Seed bool `env:"OCMS_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the service is running in development mode.
func (c ContentConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c ContentConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// ConsoleConfig configures the operator console.
type ConsoleConfig struct {
	APIURL      string        `env:"OCMS_API_URL,required"`
	LogLevel    string        `env:"OCMS_LOG_LEVEL" envDefault:"warn"`
	HTTPTimeout time.Duration `env:"OCMS_HTTP_TIMEOUT" envDefault:"15s"`
	RateLimit   float64       `env:"OCMS_RATE_LIMIT" envDefault:"10"` // requests per second, 0 = unlimited

	// Schema cache
	RedisURL    string        `env:"OCMS_REDIS_URL"`
	CachePrefix string        `env:"OCMS_CACHE_PREFIX" envDefault:"ocms:"`
	CacheTTL    time.Duration `env:"OCMS_CACHE_TTL" envDefault:"5m"`

	Capabilities     []string `env:"OCMS_CAPABILITIES" envSeparator:"," envDefault:"content.edit,content.delete"`
	TitleFields      []string `env:"OCMS_TITLE_FIELDS" envSeparator:"," envDefault:"title,name,heading"`
	DefaultPublished bool     `env:"OCMS_DEFAULT_PUBLISHED" envDefault:"true"`
}

// UseRedisCache returns true if Redis caching is configured.
func (c ConsoleConfig) UseRedisCache() bool {
	return c.RedisURL != ""
}

// LoadContent parses and validates the persistence service configuration.
func LoadContent() (*ContentConfig, error) {
	cfg := &ContentConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("OCMS_DB_PATH must not be empty")
	}
	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("OCMS_SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("OCMS_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}
	if err := checkLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConsole parses and validates the console configuration.
func LoadConsole() (*ConsoleConfig, error) {
	cfg := &ConsoleConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("OCMS_API_URL must be an http(s) URL, got %q", cfg.APIURL)
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("OCMS_HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("OCMS_RATE_LIMIT must not be negative, got %g", cfg.RateLimit)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("OCMS_CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}
	if err := checkLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	cfg.Capabilities = compact(cfg.Capabilities)
	cfg.TitleFields = compact(cfg.TitleFields)
	return cfg, nil
}

func checkLogLevel(level string) error {
	for _, l := range validLogLevels {
		if strings.EqualFold(level, l) {
			return nil
		}
	}
	return fmt.Errorf("OCMS_LOG_LEVEL must be one of %s, got %q", strings.Join(validLogLevels, ", "), level)
}

// compact trims entries and drops empty ones.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
