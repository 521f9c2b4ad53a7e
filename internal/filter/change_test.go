package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsChangedEmptyCurrent(t *testing.T) {
	assert.True(t, IsChanged(nil, 100.0, 0.01))
	assert.True(t, IsChanged("", "Series B", 0))
	assert.True(t, IsChanged(map[string]any{}, 100.0, 0.01))
}

func TestIsChangedRelativeThreshold(t *testing.T) {
	// 1% of 100 is exactly 1; the delta must exceed it.
	assert.False(t, IsChanged(100.0, 101.0, 0.01))
	assert.True(t, IsChanged(100.0, 101.01, 0.01))
	assert.True(t, IsChanged(100.0, 98.0, 0.01))

	// Large base: 1% of 1.2M.
	assert.False(t, IsChanged(1200000.0, 1210000.0, 0.01))
	assert.True(t, IsChanged(1200000.0, 1250000.0, 0.01))
}

func TestIsChangedSmallBaseClampsToOne(t *testing.T) {
	// |current| < 1 clamps the base so tiny fractions do not make every
	// epsilon look like a change.
	assert.False(t, IsChanged(0.5, 0.505, 0.01))
	assert.True(t, IsChanged(0.5, 0.52, 0.01))
}

func TestIsChangedZeroThresholdIsAbsolute(t *testing.T) {
	// Integral metrics use a flat delta of one.
	assert.False(t, IsChanged(12.0, 12.5, 0))
	assert.True(t, IsChanged(12.0, 13.0, 0))
	assert.True(t, IsChanged(12.0, 11.0, 0))
}

func TestIsChangedStrings(t *testing.T) {
	assert.False(t, IsChanged("Series B", "series b", 0))
	assert.False(t, IsChanged("Series  B ", "Series B", 0))
	assert.True(t, IsChanged("Series A", "Series B", 0))
}

func TestIsChangedMixedTypes(t *testing.T) {
	// Numeric string vs number goes through the numeric path.
	assert.False(t, IsChanged("100", 100.5, 0))
	assert.True(t, IsChanged("100", 150.0, 0))
}
