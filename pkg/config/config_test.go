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
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "none", cfg.LSI.Approximation)
	assert.Equal(t, 4, cfg.LSI.DenoiseScale)
	assert.False(t, cfg.LSI.CaseSensitive)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 9000
store:
  driver: memory
lsi:
  approximation: fixed-k
  approximationValue: 2
  sortTerms: ascending
search:
  defaultLimit: 5
  maxResults: 20
  rebuildTimeout: 30s
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("LSI_SERVER_PORT", "9100")
	t.Setenv("LSI_CASE_SENSITIVE", "true")
	t.Setenv("LSI_CORS_ORIGINS", "http://localhost:3000,https://search.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "fixed-k", cfg.LSI.Approximation)
	assert.Equal(t, 2.0, cfg.LSI.ApproximationValue)
	assert.True(t, cfg.LSI.CaseSensitive)
	assert.Equal(t, 30*time.Second, cfg.Search.RebuildTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "https://search.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 4, cfg.LSI.DenoiseScale)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LSI_STORE_DRIVER", "sqlite")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
