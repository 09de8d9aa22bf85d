// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Persisted tier backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Tool transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	BaseURL       string   `env:"PLUXEE_BASE_URL" envDefault:"https://api.consumers.pluxee.co.il"`
	ApplicationID string   `env:"PLUXEE_APPLICATION_ID" envDefault:"E5D5FEF5-A05E-4C64-AEBA-BA0CECA0E402"`
	SiteURL       string   `env:"PLUXEE_SITE_URL" envDefault:"https://consumers.pluxee.co.il/"`
	CookieURLs    []string `env:"PLUXEE_COOKIE_URLS" envDefault:"https://api.consumers.pluxee.co.il,https://consumers.pluxee.co.il" envSeparator:","`
	DefaultLang   string   `env:"PLUXEE_DEFAULT_LANG" envDefault:"he"`

	ProfileDir string `env:"PLUXEE_PROFILE_DIR"`
	Store      string `env:"PLUXEE_STORE" envDefault:"file"`
	DBPath     string `env:"PLUXEE_DB_PATH"`
	// SecretKeyHex is the 64-hex-char AES-256 key; SecretKey holds its decoded bytes.
	SecretKeyHex string `env:"PLUXEE_SECRET_KEY"`
	SecretKey    []byte

	LoginTimeout      time.Duration `env:"PLUXEE_LOGIN_TIMEOUT" envDefault:"180s"`
	LoginPollInterval time.Duration `env:"PLUXEE_LOGIN_POLL_INTERVAL" envDefault:"1s"`
	HTTPTimeout       time.Duration `env:"PLUXEE_HTTP_TIMEOUT" envDefault:"30s"`
	BrowserHeadless   bool          `env:"PLUXEE_BROWSER_HEADLESS" envDefault:"false"`
	BrowserPath       string        `env:"PLUXEE_BROWSER_PATH"`

	Transport    string `env:"MCP_TRANSPORT" envDefault:"stdio"`
	ListenAddr   string `env:"PLUXEE_LISTEN_ADDR" envDefault:"127.0.0.1:8080"`
	LogLevelName string `env:"PLUXEE_LOG_LEVEL" envDefault:"info"`
	LogLevel     slog.Level
}

// Load reads a .env file from the working directory when one exists, then
// parses and validates the environment. Variables already set in the process
// environment win over the .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("PLUXEE_BASE_URL must be an absolute URL, got %q", c.BaseURL)
	}
	if u, err := url.Parse(c.SiteURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("PLUXEE_SITE_URL must be an absolute URL, got %q", c.SiteURL)
	}

	urls := make([]string, 0, len(c.CookieURLs))
	for _, u := range c.CookieURLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	c.CookieURLs = urls

	if c.LoginTimeout <= 0 {
		return fmt.Errorf("PLUXEE_LOGIN_TIMEOUT must be positive, got %s", c.LoginTimeout)
	}
	if c.LoginPollInterval <= 0 {
		return fmt.Errorf("PLUXEE_LOGIN_POLL_INTERVAL must be positive, got %s", c.LoginPollInterval)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("PLUXEE_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}

	if err := c.LogLevel.UnmarshalText([]byte(c.LogLevelName)); err != nil {
		return fmt.Errorf("PLUXEE_LOG_LEVEL has invalid level %q: %w", c.LogLevelName, err)
	}

	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("MCP_TRANSPORT must be %q or %q, got %q", TransportStdio, TransportHTTP, c.Transport)
	}

	profileDir, err := expandHome(c.ProfileDir)
	if err != nil {
		return fmt.Errorf("PLUXEE_PROFILE_DIR: %w", err)
	}
	c.ProfileDir = profileDir

	if c.SecretKeyHex != "" {
		key, err := hex.DecodeString(c.SecretKeyHex)
		if err != nil {
			return fmt.Errorf("PLUXEE_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("PLUXEE_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", len(key))
		}
		c.SecretKey = key
	}

	switch c.Store {
	case StoreFile:
	case StoreSQLite:
		if c.SecretKey == nil {
			return errors.New("PLUXEE_STORE=sqlite requires PLUXEE_SECRET_KEY")
		}
		if c.DBPath == "" {
			c.DBPath = filepath.Join(c.ProfileDir, "pluxee.db")
		}
	default:
		return fmt.Errorf("PLUXEE_STORE must be %q or %q, got %q", StoreFile, StoreSQLite, c.Store)
	}

	return nil
}

// expandHome resolves an empty value to ~/.pluxee-profile and expands a
// leading "~/".
func expandHome(dir string) (string, error) {
	if dir != "" && dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	switch {
	case dir == "":
		return filepath.Join(home, ".pluxee-profile"), nil
	case dir == "~":
		return home, nil
	default:
		return filepath.Join(home, dir[2:]), nil
	}
}
