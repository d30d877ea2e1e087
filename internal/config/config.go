// Package config loads the application configuration from an optional YAML
// file, applying defaults and environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all application settings.
type Config struct {
	Storage struct {
		Backend string `yaml:"backend"` // "file" or "sqlite"
		Path    string `yaml:"path"`
	} `yaml:"storage"`

	Market struct {
		BaseURL        string `yaml:"base_url"`
		Currency       string `yaml:"currency"`
		CacheTTLSec    int    `yaml:"cache_ttl_seconds"`
		RequestTimeout int    `yaml:"request_timeout_seconds"`
	} `yaml:"market"`
}

// Default returns the configuration used when no file is present: a JSON file
// store under the user's home directory and USD quotes from the public
// CoinGecko API.
func Default() *Config {
	cfg := &Config{}
	cfg.Storage.Backend = BackendFile
	cfg.Storage.Path = defaultStoragePath()
	cfg.Market.Currency = "usd"
	cfg.Market.CacheTTLSec = 30
	cfg.Market.RequestTimeout = 10
	return cfg
}

// Load reads the configuration from path. A missing file is not an error:
// defaults are returned. Environment variables CRYPTOFOLIO_STORAGE_PATH,
// CRYPTOFOLIO_CURRENCY and CRYPTOFOLIO_API_URL override the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	if v := os.Getenv("CRYPTOFOLIO_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("CRYPTOFOLIO_CURRENCY"); v != "" {
		cfg.Market.Currency = v
	}
	if v := os.Getenv("CRYPTOFOLIO_API_URL"); v != "" {
		cfg.Market.BaseURL = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q (expected %q or %q)", c.Storage.Backend, BackendFile, BackendSQLite)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path must not be empty")
	}
	if c.Market.Currency == "" {
		return fmt.Errorf("market currency must not be empty")
	}
	return nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "portfolio.json"
	}
	return filepath.Join(home, ".cryptofolio", "portfolio.json")
}
