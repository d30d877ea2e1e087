package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "usd", cfg.Market.Currency)
	assert.Equal(t, 30, cfg.Market.CacheTTLSec)
	assert.NotEmpty(t, cfg.Storage.Path)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  backend: sqlite
  path: /tmp/folio.db
market:
  currency: eur
  cache_ttl_seconds: 60
`), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/folio.db", cfg.Storage.Path)
	assert.Equal(t, "eur", cfg.Market.Currency)
	assert.Equal(t, 60, cfg.Market.CacheTTLSec)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10, cfg.Market.RequestTimeout)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("market:\n  currency: eur\n"), 0o644))
	t.Setenv("CRYPTOFOLIO_CURRENCY", "gbp")
	t.Setenv("CRYPTOFOLIO_STORAGE_PATH", "/tmp/override.json")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "gbp", cfg.Market.Currency)
	assert.Equal(t, "/tmp/override.json", cfg.Storage.Path)
}

func TestLoad_UnknownBackendRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: redis\n"), 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoad_MalformedYAMLRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [not: valid"), 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}
