package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, float64(5), cfg.WinRatePercent)
	assert.Equal(t, 10, cfg.RateLimit.PerMinute)
	assert.False(t, cfg.RateLimit.ByIdentifier)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9090"
admin_secret: file-secret
win_rate_percent: 12.5
rate_limit:
  per_minute: 3
  by_identifier: true
  identifier_per_day: 2
cors_origins:
  - https://rakken.example
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "file-secret", cfg.AdminSecret)
	assert.Equal(t, 12.5, cfg.WinRatePercent)
	assert.Equal(t, 3, cfg.RateLimit.PerMinute)
	assert.True(t, cfg.RateLimit.ByIdentifier)
	assert.Equal(t, 2, cfg.RateLimit.IdentifierPerDay)
	assert.Equal(t, []string{"https://rakken.example"}, cfg.CORSOrigins)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admin_secret: file-secret\n"), 0o600))

	t.Setenv("ADMIN_SECRET", "env-secret")
	t.Setenv("WIN_RATE_PERCENT", "7.5")
	t.Setenv("RATE_LIMIT_BY_IDENTIFIER", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.AdminSecret)
	assert.Equal(t, 7.5, cfg.WinRatePercent)
	assert.True(t, cfg.RateLimit.ByIdentifier)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate_limit:\n  per_minute: 0\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
