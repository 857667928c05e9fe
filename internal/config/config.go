// Package config loads the connection pool's runtime configuration from
// environment variables (with optional .env support), the same way the
// teacher application's config package does for its own subsystems.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"sqlxpool/internal/driver"
	"sqlxpool/internal/logging"
)

// PoolConfig is the environment-driven configuration for one pool
// instance. Field names mirror spec.md's constructor parameters exactly.
type PoolConfig struct {
	URI           string        `json:"uri"`
	Backend       driver.Name   `json:"backend"`
	MinSize       int           `json:"min_size"`
	MaxSize       int           `json:"max_size"`
	ConnTimeout   time.Duration `json:"conn_timeout"`
	KeepAlive     time.Duration `json:"keep_alive"`
	CheckInterval time.Duration `json:"check_interval"`
}

// DefaultPoolConfig returns the spec's documented constructor defaults:
// conn_timeout=30s, keep_alive=900s, check_interval=5s.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Backend:       driver.SQLite,
		MinSize:       2,
		MaxSize:       2,
		ConnTimeout:   30 * time.Second,
		KeepAlive:     900 * time.Second,
		CheckInterval: 5 * time.Second,
	}
}

// LoadPoolConfig loads a .env file if present, overlays POOL_* environment
// variables onto the defaults, validates, and returns the result.
func LoadPoolConfig() (*PoolConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: error loading .env file: %w", err)
	}

	cfg := DefaultPoolConfig()
	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid pool configuration: %w", err)
	}

	return cfg, nil
}

func loadFromEnv(cfg *PoolConfig) {
	cfg.URI = getStringEnvWithDefault("POOL_URI", cfg.URI)
	cfg.Backend = driver.Name(getStringEnvWithDefault("POOL_DRIVER", string(cfg.Backend)))
	cfg.MinSize = getIntEnvWithDefault("POOL_MIN_SIZE", cfg.MinSize)
	cfg.MaxSize = getIntEnvWithDefault("POOL_MAX_SIZE", cfg.MaxSize)

	if v := os.Getenv("POOL_CONN_TIMEOUT_SECONDS"); v != "" {
		if seconds, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ConnTimeout = time.Duration(seconds * float64(time.Second))
		}
	}
	if v := os.Getenv("POOL_KEEP_ALIVE_SECONDS"); v != "" {
		if seconds, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.KeepAlive = time.Duration(seconds * float64(time.Second))
		}
	}
	if v := os.Getenv("POOL_CHECK_INTERVAL_SECONDS"); v != "" {
		if seconds, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.CheckInterval = time.Duration(seconds * float64(time.Second))
		}
	}
}

func getStringEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate applies the same sizing policy as pool.New, so a config built
// here is guaranteed to be accepted by the constructor, and warns (rather
// than fails) on a keep_alive under 60 seconds, exactly as spec.md's Pool
// constructor does.
func (c *PoolConfig) Validate() error {
	if c.URI == "" {
		return errors.New("uri must be set")
	}
	if _, err := driver.Lookup(c.Backend); err != nil {
		return err
	}
	if c.MinSize <= 0 {
		return errors.New("min_size must be greater than 0")
	}
	if c.MaxSize != 0 && c.MaxSize < c.MinSize {
		return errors.New("max_size must be greater than or equal to min_size")
	}
	if c.ConnTimeout <= 0 {
		return errors.New("conn_timeout must be greater than 0")
	}
	if c.KeepAlive <= 0 {
		return errors.New("keep_alive must be greater than 0")
	}
	if c.CheckInterval <= 0 {
		return errors.New("check_interval must be greater than 0")
	}

	if c.KeepAlive < 60*time.Second {
		logging.ConfigLogger.Warn("keep_alive is less than 60 seconds, this is not recommended",
			"keep_alive_seconds", c.KeepAlive.Seconds())
	}

	return nil
}
