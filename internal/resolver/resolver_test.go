package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/suggest-cli/internal/model"
)

func TestResolveWalksPathsInOrder(t *testing.T) {
	sections := map[string]map[string]any{
		"financials": {"arr": 1200000.0},
		"metrics":    {"arr": 999.0},
	}

	v, path, ok := Resolve(
		[]string{"financials.arr", "metrics.arr"},
		sections,
		model.BoundedNumber(0, 1e12),
	)
	require.True(t, ok)
	assert.Equal(t, "financials.arr", path)
	assert.InDelta(t, 1200000.0, v.(float64), 0.001)
}

func TestResolveFallsThroughInvalidValues(t *testing.T) {
	sections := map[string]map[string]any{
		"financials": {"arr": "not a number"},
		"metrics":    {"arr": "$900,000"},
	}

	v, path, ok := Resolve(
		[]string{"financials.arr", "metrics.arr"},
		sections,
		model.BoundedNumber(0, 1e12),
	)
	require.True(t, ok)
	assert.Equal(t, "metrics.arr", path)
	assert.InDelta(t, 900000.0, v.(float64), 0.001)
}

func TestResolveNoMatch(t *testing.T) {
	sections := map[string]map[string]any{
		"team": {"headcount": nil},
	}

	_, _, ok := Resolve([]string{"team.headcount", "kpis.fte_count"}, sections, model.BoundedNumber(0, 1e5))
	assert.False(t, ok)

	_, _, ok = Resolve([]string{"financials.arr"}, nil, model.BoundedNumber(0, 1e12))
	assert.False(t, ok)

	_, _, ok = Resolve([]string{"financials.arr"}, map[string]map[string]any{"financials": {"arr": 1.0}}, nil)
	assert.False(t, ok)
}

func TestResolveDottedKeys(t *testing.T) {
	// Only the first dot is structural.
	sections := map[string]map[string]any{
		"kpis": {"net.burn": 50000.0},
	}
	v, path, ok := Resolve([]string{"kpis.net.burn"}, sections, model.BoundedNumber(0, 1e12))
	require.True(t, ok)
	assert.Equal(t, "kpis.net.burn", path)
	assert.InDelta(t, 50000.0, v.(float64), 0.001)
}
