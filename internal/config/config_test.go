package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlxpool/internal/driver"
)

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()

	assert.Equal(t, driver.SQLite, cfg.Backend)
	assert.Equal(t, 2, cfg.MinSize)
	assert.Equal(t, 2, cfg.MaxSize)
	assert.Equal(t, 30*time.Second, cfg.ConnTimeout)
	assert.Equal(t, 900*time.Second, cfg.KeepAlive)
	assert.Equal(t, 5*time.Second, cfg.CheckInterval)
}

func TestPoolConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  func() *PoolConfig
		wantErr string
	}{
		{
			name: "valid config",
			config: func() *PoolConfig {
				cfg := DefaultPoolConfig()
				cfg.URI = "file:test.db"
				return cfg
			},
		},
		{
			name: "missing uri",
			config: func() *PoolConfig {
				cfg := DefaultPoolConfig()
				return cfg
			},
			wantErr: "uri must be set",
		},
		{
			name: "unknown backend",
			config: func() *PoolConfig {
				cfg := DefaultPoolConfig()
				cfg.URI = "file:test.db"
				cfg.Backend = driver.Name("oracle")
				return cfg
			},
			wantErr: "unknown",
		},
		{
			name: "min_size not positive",
			config: func() *PoolConfig {
				cfg := DefaultPoolConfig()
				cfg.URI = "file:test.db"
				cfg.MinSize = 0
				return cfg
			},
			wantErr: "min_size",
		},
		{
			name: "max_size below min_size",
			config: func() *PoolConfig {
				cfg := DefaultPoolConfig()
				cfg.URI = "file:test.db"
				cfg.MinSize = 3
				cfg.MaxSize = 1
				return cfg
			},
			wantErr: "max_size",
		},
		{
			name: "conn_timeout not positive",
			config: func() *PoolConfig {
				cfg := DefaultPoolConfig()
				cfg.URI = "file:test.db"
				cfg.ConnTimeout = 0
				return cfg
			},
			wantErr: "conn_timeout",
		},
		{
			name: "keep_alive not positive",
			config: func() *PoolConfig {
				cfg := DefaultPoolConfig()
				cfg.URI = "file:test.db"
				cfg.KeepAlive = 0
				return cfg
			},
			wantErr: "keep_alive",
		},
		{
			name: "check_interval not positive",
			config: func() *PoolConfig {
				cfg := DefaultPoolConfig()
				cfg.URI = "file:test.db"
				cfg.CheckInterval = 0
				return cfg
			},
			wantErr: "check_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config().Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadPoolConfig_FromEnv(t *testing.T) {
	t.Setenv("POOL_URI", "file:env-test.db")
	t.Setenv("POOL_DRIVER", "sqlite")
	t.Setenv("POOL_MIN_SIZE", "3")
	t.Setenv("POOL_MAX_SIZE", "6")
	t.Setenv("POOL_CONN_TIMEOUT_SECONDS", "15")
	t.Setenv("POOL_KEEP_ALIVE_SECONDS", "120")
	t.Setenv("POOL_CHECK_INTERVAL_SECONDS", "2.5")

	cfg, err := LoadPoolConfig()
	require.NoError(t, err)

	assert.Equal(t, "file:env-test.db", cfg.URI)
	assert.Equal(t, driver.SQLite, cfg.Backend)
	assert.Equal(t, 3, cfg.MinSize)
	assert.Equal(t, 6, cfg.MaxSize)
	assert.Equal(t, 15*time.Second, cfg.ConnTimeout)
	assert.Equal(t, 120*time.Second, cfg.KeepAlive)
	assert.Equal(t, 2500*time.Millisecond, cfg.CheckInterval)
}

func TestLoadPoolConfig_RejectsInvalidEnv(t *testing.T) {
	t.Setenv("POOL_URI", "")
	_, err := LoadPoolConfig()
	require.Error(t, err)
}

func TestGetIntEnvWithDefault_IgnoresUnparsableValue(t *testing.T) {
	const key = "POOL_TEST_NOT_AN_INT"
	require.NoError(t, os.Setenv(key, "not-an-int"))
	defer os.Unsetenv(key)

	got := getIntEnvWithDefault(key, 7)
	assert.Equal(t, 7, got)
}
