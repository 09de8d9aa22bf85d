package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every env var that Load() reads.
var allConfigKeys = []string{
	"PLUXEE_BASE_URL",
	"PLUXEE_APPLICATION_ID",
	"PLUXEE_SITE_URL",
	"PLUXEE_COOKIE_URLS",
	"PLUXEE_DEFAULT_LANG",
	"PLUXEE_PROFILE_DIR",
	"PLUXEE_STORE",
	"PLUXEE_DB_PATH",
	"PLUXEE_SECRET_KEY",
	"PLUXEE_LOGIN_TIMEOUT",
	"PLUXEE_LOGIN_POLL_INTERVAL",
	"PLUXEE_HTTP_TIMEOUT",
	"PLUXEE_BROWSER_HEADLESS",
	"PLUXEE_BROWSER_PATH",
	"MCP_TRANSPORT",
	"PLUXEE_LISTEN_ADDR",
	"PLUXEE_LOG_LEVEL",
}

const validKey = "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"

// isolateConfigEnv unsets every config variable so tests don't inherit values
// from the host environment. t.Cleanup restores the original values.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://api.consumers.pluxee.co.il", cfg.BaseURL)
	assert.Equal(t, "E5D5FEF5-A05E-4C64-AEBA-BA0CECA0E402", cfg.ApplicationID)
	assert.Equal(t, "https://consumers.pluxee.co.il/", cfg.SiteURL)
	assert.Equal(t, []string{"https://api.consumers.pluxee.co.il", "https://consumers.pluxee.co.il"}, cfg.CookieURLs)
	assert.Equal(t, "he", cfg.DefaultLang)
	assert.Equal(t, filepath.Join(home, ".pluxee-profile"), cfg.ProfileDir)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, 180*time.Second, cfg.LoginTimeout)
	assert.Equal(t, time.Second, cfg.LoginPollInterval)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.BrowserHeadless)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Nil(t, cfg.SecretKey)
}

func TestLoad_Overrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PLUXEE_BASE_URL", "http://127.0.0.1:9999")
	t.Setenv("PLUXEE_COOKIE_URLS", " https://a.example , ,https://b.example")
	t.Setenv("PLUXEE_PROFILE_DIR", "/var/lib/pluxee")
	t.Setenv("PLUXEE_LOGIN_TIMEOUT", "2m")
	t.Setenv("PLUXEE_BROWSER_HEADLESS", "true")
	t.Setenv("MCP_TRANSPORT", "http")
	t.Setenv("PLUXEE_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("PLUXEE_LOG_LEVEL", "debug")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.BaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CookieURLs)
	assert.Equal(t, "/var/lib/pluxee", cfg.ProfileDir)
	assert.Equal(t, 2*time.Minute, cfg.LoginTimeout)
	assert.True(t, cfg.BrowserHeadless)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_ProfileDirTildeExpansion(t *testing.T) {
	isolateConfigEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PLUXEE_PROFILE_DIR", "~/custom")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "custom"), cfg.ProfileDir)
}

func TestLoad_SQLiteStore(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PLUXEE_PROFILE_DIR", "/data")
	t.Setenv("PLUXEE_STORE", "sqlite")
	t.Setenv("PLUXEE_SECRET_KEY", validKey)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Len(t, cfg.SecretKey, 32)
	assert.Equal(t, "/data/pluxee.db", cfg.DBPath)
}

func TestLoad_SQLiteStoreRequiresKey(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PLUXEE_PROFILE_DIR", "/data")
	t.Setenv("PLUXEE_STORE", "sqlite")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLUXEE_SECRET_KEY")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantVar string
	}{
		{name: "secret key too short", env: map[string]string{"PLUXEE_SECRET_KEY": "deadbeef"}, wantVar: "PLUXEE_SECRET_KEY"},
		{name: "secret key not hex", env: map[string]string{"PLUXEE_SECRET_KEY": "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"}, wantVar: "PLUXEE_SECRET_KEY"},
		{name: "unknown store", env: map[string]string{"PLUXEE_STORE": "redis"}, wantVar: "PLUXEE_STORE"},
		{name: "unknown transport", env: map[string]string{"MCP_TRANSPORT": "sse"}, wantVar: "MCP_TRANSPORT"},
		{name: "relative base url", env: map[string]string{"PLUXEE_BASE_URL": "api.example"}, wantVar: "PLUXEE_BASE_URL"},
		{name: "zero login timeout", env: map[string]string{"PLUXEE_LOGIN_TIMEOUT": "0s"}, wantVar: "PLUXEE_LOGIN_TIMEOUT"},
		{name: "bad log level", env: map[string]string{"PLUXEE_LOG_LEVEL": "loud"}, wantVar: "PLUXEE_LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("PLUXEE_PROFILE_DIR", "/data")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantVar)
		})
	}
}

func TestLoad_MalformedDuration(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PLUXEE_PROFILE_DIR", "/data")
	t.Setenv("PLUXEE_HTTP_TIMEOUT", "soon")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}
