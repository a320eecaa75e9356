package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "PROVIDER_CHAIN", "FETCH_TIMEOUT", "RETRY_MAX_ATTEMPTS", "RETRY_BASE_DELAY", "CONFIG_FILE", "APP_ENV", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8001", cfg.Port)
	assert.Equal(t, []string{"duckduckgo_html", "duckduckgo_instant"}, cfg.ProviderChain)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 10*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "9000")
	t.Setenv("PROVIDER_CHAIN", " wikipedia, ,duckduckgo_instant ")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("RETRY_BASE_DELAY", "250ms")
	t.Setenv("FETCH_RATE_PER_SEC", "2.5")
	t.Setenv("RETRY_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"wikipedia", "duckduckgo_instant"}, cfg.ProviderChain)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 2.5, cfg.FetchRatePerSec)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadRejectsZeroAttempts(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadConfigFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "searchproxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "8123"
provider_chain: [wikipedia, duckduckgo_html]
endpoints:
  wikipedia: http://localhost:9999/w/api.php
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "")
	t.Setenv("PROVIDER_CHAIN", "")
	t.Setenv("DDG_HTML_URL", "http://localhost:9998/html/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8123", cfg.Port)
	assert.Equal(t, []string{"wikipedia", "duckduckgo_html"}, cfg.ProviderChain)
	assert.Equal(t, "http://localhost:9999/w/api.php", cfg.Endpoints.Wikipedia)
	assert.Equal(t, "http://localhost:9998/html/", cfg.Endpoints.DuckDuckGoHTML)
}

func TestLoadConfigFileErrors(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	_, err = Load()
	assert.Error(t, err)
}
