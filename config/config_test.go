package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Trace.Enabled)
	assert.EqualValues(t, 50, cfg.Limit.RPS)
	assert.Equal(t, 100, cfg.Limit.Burst)
}

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "warbler.db", cfg.Database.DSN)
	assert.Equal(t, "warbler-dev-secret", cfg.Session.Secret)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WARBLER_SERVER_PORT", "9090")
	t.Setenv("WARBLER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}
