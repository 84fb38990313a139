// Package config loads the server configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RateLimitConfig controls the request throttles around the draw.
type RateLimitConfig struct {
	// PerMinute caps attempts per source address in a one-minute sliding
	// window.
	PerMinute int `yaml:"per_minute"`
	// ByIdentifier additionally throttles by hashed phone number when true.
	ByIdentifier bool `yaml:"by_identifier"`
	// IdentifierPerDay caps attempts per identifier per 24h window when
	// ByIdentifier is set.
	IdentifierPerDay int `yaml:"identifier_per_day"`
}

// Config is the full server configuration.
type Config struct {
	ListenAddr     string          `yaml:"listen_addr"`
	DatabaseURL    string          `yaml:"database_url"`
	RedisURL       string          `yaml:"redis_url"`
	AdminSecret    string          `yaml:"admin_secret"`
	WinRatePercent float64         `yaml:"win_rate_percent"`
	RedirectURL    string          `yaml:"redirect_url"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	CORSOrigins    []string        `yaml:"cors_origins"`
}

// Default returns the configuration used when no file or overrides are
// present. The database and Redis URLs stay empty on purpose: without them
// the server runs on in-memory storage and the local limiter.
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		WinRatePercent: 5,
		RedirectURL:    "https://instagram.com/rakkencoffee",
		RateLimit: RateLimitConfig{
			PerMinute:        10,
			IdentifierPerDay: 1,
		},
		CORSOrigins: []string{"*"},
	}
}

// Load reads the config file at path (when non-empty), then applies
// environment overrides, then validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("ADMIN_SECRET"); v != "" {
		c.AdminSecret = v
	}
	if v := os.Getenv("WIN_RATE_PERCENT"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			c.WinRatePercent = rate
		}
	}
	if v := os.Getenv("REDIRECT_URL"); v != "" {
		c.RedirectURL = v
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimit.PerMinute = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_BY_IDENTIFIER"); v != "" {
		c.RateLimit.ByIdentifier = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = strings.Split(v, ",")
	}
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("rate_limit.per_minute must be positive")
	}
	return nil
}
