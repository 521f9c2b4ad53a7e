package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, int32(2), cfg.Store.MinConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 5.0, cfg.Grid.RPS, 0.001)
	assert.InDelta(t, 5000, cfg.Sanity.MinBurnRate, 0.001)
	assert.InDelta(t, 2.0, cfg.Sanity.BurnToARRMax, 0.001)
	assert.InDelta(t, 1000, cfg.Sanity.MinARR, 0.001)
	assert.InDelta(t, 0.5, cfg.Sanity.ValuationToARRMin, 0.001)
	assert.InDelta(t, 10000, cfg.Sanity.HeadcountMax, 0.001)
	assert.InDelta(t, 120, cfg.Sanity.RunwayMaxMonths, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/suggest
grid:
  base_url: https://grid.internal
  rps: 2.5
sanity:
  min_burn_rate: 1000
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/suggest", cfg.Store.DatabaseURL)
	assert.Equal(t, "https://grid.internal", cfg.Grid.BaseURL)
	assert.InDelta(t, 2.5, cfg.Grid.RPS, 0.001)
	assert.InDelta(t, 1000, cfg.Sanity.MinBurnRate, 0.001)
	// Unset sanity keys keep their defaults.
	assert.InDelta(t, 2.0, cfg.Sanity.BurnToARRMax, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level"})
	assert.Error(t, err)
}
