package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/gnolang/tagscan/fetch"
	"github.com/gnolang/tagscan/internal/logging"
	"github.com/gnolang/tagscan/token"
)

// Prefix is prepended to every environment variable, e.g. TAGSCAN_LOG_LEVEL.
const Prefix = "TAGSCAN"

// Config holds all application configuration. The sections are embedded so
// that their variables share the plain TAGSCAN_ prefix.
type Config struct {
	LogConfig
	MatchConfig
	HTTPConfig
	Workers int `envconfig:"WORKERS"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MatchConfig holds the default matching options.
type MatchConfig struct {
	ElementOrder     token.ElementOrder `envconfig:"ELEMENT_ORDER" default:"comments"`
	AttributesStrict bool               `envconfig:"ATTRIBUTES_STRICT" default:"false"`
	IgnoreCase       bool               `envconfig:"IGNORE_CASE" default:"true"`
	TrimText         bool               `envconfig:"TRIM_TEXT" default:"true"`
}

// HTTPConfig holds settings for fetching documents.
type HTTPConfig struct {
	Timeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	Retries   int           `envconfig:"HTTP_RETRIES" default:"3"`
	UserAgent string        `envconfig:"HTTP_USER_AGENT" default:"tagscan/1.0"`
	MaxBody   int64         `envconfig:"HTTP_MAX_BODY" default:"10485760"`
	RateLimit float64       `envconfig:"HTTP_RATE_LIMIT" default:"0"`
}

// Load reads the configuration from TAGSCAN_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	opts := token.DefaultOptions()
	return &Config{
		LogConfig: LogConfig{
			Level:       "info",
			Development: false,
		},
		MatchConfig: MatchConfig{
			ElementOrder:     opts.ElementOrder,
			AttributesStrict: opts.AttributesStrict,
			IgnoreCase:       opts.IgnoreCase,
			TrimText:         opts.TrimText,
		},
		HTTPConfig: HTTPConfig{
			Timeout:   30 * time.Second,
			Retries:   3,
			UserAgent: "tagscan/1.0",
			MaxBody:   10 << 20,
		},
		Workers: runtime.NumCPU(),
	}
}

// SearchOptions returns the matching options described by c.
func (c *Config) SearchOptions() token.Options {
	opts := token.DefaultOptions()
	opts.ElementOrder = c.MatchConfig.ElementOrder
	opts.AttributesStrict = c.MatchConfig.AttributesStrict
	opts.IgnoreCase = c.MatchConfig.IgnoreCase
	opts.TrimText = c.MatchConfig.TrimText
	return opts
}

// LoggerConfig returns the logger settings described by c.
func (c *Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogConfig.Level
	cfg.Development = c.LogConfig.Development
	return cfg
}

// FetchConfig returns the HTTP client settings described by c.
func (c *Config) FetchConfig() fetch.Config {
	return fetch.Config{
		Timeout:   c.HTTPConfig.Timeout,
		Retries:   c.HTTPConfig.Retries,
		UserAgent: c.HTTPConfig.UserAgent,
		MaxBody:   c.HTTPConfig.MaxBody,
		RateLimit: c.HTTPConfig.RateLimit,
	}
}
