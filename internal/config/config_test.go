package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "websession.yaml", `
endpoint: https://example.com/api/session
timeout: 2s
poll_interval: 1m
redis:
  url: redis://localhost:6379/0
server:
  ttl: 90s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/session", cfg.Endpoint)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "websession:", cfg.Redis.Prefix, "unset keys keep their defaults")
	assert.Equal(t, 90*time.Second, cfg.Server.TTL)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "websession.json", `{"endpoint": "http://127.0.0.1:9000/session", "log_level": "debug"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/session", cfg.Endpoint)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "websession.yaml", "poll_interval: 1m\n")
	t.Setenv("WEBSESSION_POLL_INTERVAL", "5s")
	t.Setenv("WEBSESSION_REDIS_PREFIX", "tabs:")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, "tabs:", cfg.Redis.Prefix)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Missing File", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("Unknown Key", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "endpiont: http://localhost/session\n")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("Relative Endpoint", func(t *testing.T) {
		path := writeFile(t, "rel.yaml", "endpoint: /session\n")
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}
