package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayloadBareValue(t *testing.T) {
	p, ok := ParsePayload(1200000.0)
	require.True(t, ok)
	v, ok := p.Resolve(nil)
	require.True(t, ok)
	assert.InDelta(t, 1200000.0, v.(float64), 0.001)
}

func TestParsePayloadWrappedValue(t *testing.T) {
	for _, key := range []string{"value", "fair_value", "amount", "suggested_value"} {
		p, ok := ParsePayload(map[string]any{key: 42.0})
		require.True(t, ok, key)
		v, ok := p.Resolve(nil)
		require.True(t, ok, key)
		assert.InDelta(t, 42.0, v.(float64), 0.001)
	}
}

func TestParsePayloadDelta(t *testing.T) {
	p, ok := ParsePayload(map[string]any{"delta": 50000.0})
	require.True(t, ok)

	v, ok := p.Resolve(100000.0)
	require.True(t, ok)
	assert.InDelta(t, 150000.0, v.(float64), 0.001)
}

func TestDeltaWithoutCurrentValueDrops(t *testing.T) {
	p, ok := ParsePayload(map[string]any{"delta": 50000.0})
	require.True(t, ok)

	_, ok = p.Resolve(nil)
	assert.False(t, ok)
	_, ok = p.Resolve("n/a")
	assert.False(t, ok)
}

func TestParsePayloadUnusable(t *testing.T) {
	_, ok := ParsePayload(nil)
	assert.False(t, ok)
	_, ok = ParsePayload("")
	assert.False(t, ok)
	_, ok = ParsePayload(map[string]any{"unrelated": 1.0})
	assert.False(t, ok)
	_, ok = ParsePayload(map[string]any{"delta": 0.0})
	assert.False(t, ok)
	_, ok = ParsePayload(map[string]any{"value": ""})
	assert.False(t, ok)
}

func TestParsePayloadNegativeDelta(t *testing.T) {
	p, ok := ParsePayload(map[string]any{"delta": -20000.0})
	require.True(t, ok)

	v, ok := p.Resolve(100000.0)
	require.True(t, ok)
	assert.InDelta(t, 80000.0, v.(float64), 0.001)
}
