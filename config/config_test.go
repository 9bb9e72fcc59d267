package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2025, cfg.Import.FallbackYear)
	assert.InDelta(t, 100000.0, cfg.Import.DefaultBalance, 1e-9)
	assert.Equal(t, "./tradebook.sqlite", cfg.Storage.DBPath)
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
import:
  fallback_year: 2024
  default_balance: 50000
metrics:
  initial_capital: 200000
storage:
  db_path: /tmp/journal.sqlite
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2024, cfg.Import.FallbackYear)
	assert.InDelta(t, 50000.0, cfg.Import.DefaultBalance, 1e-9)
	assert.InDelta(t, 200000.0, cfg.Metrics.InitialCapital, 1e-9)
	assert.Equal(t, "/tmp/journal.sqlite", cfg.Storage.DBPath)
}

func TestLoadFromFileJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"import": {"fallback_year": 2023, "default_balance": 1000},
	          "storage": {"db_path": "./x.sqlite"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2023, cfg.Import.FallbackYear)
}

func TestLoadFromFilePartialKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metrics:\n  initial_capital: 5000\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.InDelta(t, 5000.0, cfg.Metrics.InitialCapital, 1e-9)
	assert.Equal(t, 2025, cfg.Import.FallbackYear, "unset sections fall back to defaults")
}

func TestLoadFromFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Import.FallbackYear = 99
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Import.DefaultBalance = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Storage.DBPath = ""
	assert.Error(t, cfg.Validate())
}

func TestSaveToFileRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Import.FallbackYear = 2022

	path := filepath.Join(t.TempDir(), "out.yml")
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2022, loaded.Import.FallbackYear)
}
