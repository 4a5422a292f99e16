package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"SERVER_ADDR", "UPSTREAM_URL", "UPSTREAM_TIMEOUT", "REDIS_ADDR", "REDIS_PASSWORD",
	"REDIS_DB", "REDIS_CHANNEL", "LOG_LEVEL", "LOG_FORMAT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT",
}

// clearEnv unsets config keys for the test and restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.ServerAddr)
	assert.Equal(t, DefaultUpstreamURL, cfg.UpstreamURL)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 45*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "predictions:updated", cfg.RedisChannel)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("UPSTREAM_URL", "https://flows.example.com/webhook/forecast")
	t.Setenv("UPSTREAM_TIMEOUT", "10")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("WRITE_TIMEOUT", "1m")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "https://flows.example.com/webhook/forecast", cfg.UpstreamURL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, time.Minute, cfg.WriteTimeout)
	assert.True(t, cfg.RedisEnabled())
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_ADDR=:7070\nLOG_LEVEL=debug\n"), 0o600))

	// process environment wins over the file
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ServerAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_DB", "one")
	t.Setenv("READ_TIMEOUT", "soon")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
}

func TestValidate(t *testing.T) {
	base := Config{
		UpstreamURL:     "http://localhost:5678/webhook/x",
		UpstreamTimeout: 30 * time.Second,
		WriteTimeout:    45 * time.Second,
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.UpstreamURL = "localhost:5678"
	assert.Error(t, bad.Validate())

	bad = base
	bad.UpstreamURL = "ftp://files.example.com/x"
	assert.Error(t, bad.Validate())

	bad = base
	bad.UpstreamTimeout = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.WriteTimeout = 20 * time.Second
	assert.Error(t, bad.Validate())
}
