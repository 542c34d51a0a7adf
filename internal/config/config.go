// Package config defines service configuration and its defaults.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Environment variables that control loading.
const (
	EnvPrefix     = "SALESTRACK_"
	EnvConfigFile = "SALESTRACK_CONFIG"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorageDriver selects the key-value backend: sqlite or memory.
	StorageDriver string `koanf:"storage_driver"`

	// StoragePath is the sqlite database file.
	StoragePath string `koanf:"storage_path"`

	// StorageKey is the single key holding the serialized representative list.
	StorageKey string `koanf:"storage_key"`

	// Timezone names the location used for "today" and "this month".
	// "Local" uses the process time zone.
	Timezone string `koanf:"timezone"`

	// DedupeSize bounds the idempotency key cache for deal submissions.
	DedupeSize int `koanf:"dedupe_size"`

	// MetricsIntervalMS controls how often system gauges are refreshed.
	MetricsIntervalMS int `koanf:"metrics_interval_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		StorageDriver:     "sqlite",
		StoragePath:       "salestrack.db",
		StorageKey:        "salesReps",
		Timezone:          "Local",
		DedupeSize:        10_000,
		MetricsIntervalMS: 10_000,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// MetricsInterval returns MetricsIntervalMS as a duration.
func (c *Config) MetricsInterval() time.Duration {
	return time.Duration(c.MetricsIntervalMS) * time.Millisecond
}

// Validate checks the fields the service cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		return fmt.Errorf("%w: storage_key must not be empty", ErrInvalidConfig)
	}
	switch c.StorageDriver {
	case "sqlite":
		if strings.TrimSpace(c.StoragePath) == "" {
			return fmt.Errorf("%w: storage_path must not be empty for sqlite", ErrInvalidConfig)
		}
	case "memory":
	default:
		return fmt.Errorf("%w: unknown storage_driver %q", ErrInvalidConfig, c.StorageDriver)
	}
	if c.MetricsIntervalMS <= 0 {
		return fmt.Errorf("%w: metrics_interval_ms must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
