package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.yaml")
	yaml := `
arr:
  paths: ["custom.arr"]
  threshold: 0.10
headcount:
  threshold: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	reg, err := ApplyOverrides(DefaultMetrics(), path)
	require.NoError(t, err)

	arr := reg.ByKey("arr")
	require.NotNil(t, arr)
	assert.Equal(t, []string{"custom.arr"}, arr.Paths)
	assert.InDelta(t, 0.10, arr.Threshold, 0.001)

	// Untouched metrics keep their defaults.
	burn := reg.ByKey("burnRate")
	require.NotNil(t, burn)
	assert.InDelta(t, 0.05, burn.Threshold, 0.001)
}

func TestApplyOverridesEmptyPathIsNoop(t *testing.T) {
	reg := DefaultMetrics()
	got, err := ApplyOverrides(reg, "")
	require.NoError(t, err)
	assert.Same(t, reg, got)
}

func TestApplyOverridesMissingFile(t *testing.T) {
	_, err := ApplyOverrides(DefaultMetrics(), "/nonexistent/metrics.yaml")
	assert.Error(t, err)
}

func TestDefaultMetricsRegistry(t *testing.T) {
	reg := DefaultMetrics()

	assert.NotNil(t, reg.ByKey("arr"))
	assert.NotNil(t, reg.ByKey("runway"))
	assert.Nil(t, reg.ByKey("unknown"))

	high := reg.HighImpactSet()
	assert.True(t, high["arr"])
	assert.True(t, high["burnRate"])
	assert.False(t, high["headcount"])
}
