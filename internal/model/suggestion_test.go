package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestionIDDeterministic(t *testing.T) {
	a := SuggestionID("fund-1", "row-1", "arr", ProvenanceDocument, 1200000.0)
	b := SuggestionID("fund-1", "row-1", "arr", ProvenanceDocument, 1200000.0)
	assert.Equal(t, a, b)
	assert.Regexp(t, `^sug_[0-9a-f]{16}$`, a)

	c := SuggestionID("fund-1", "row-1", "arr", ProvenanceService, 1200000.0)
	assert.NotEqual(t, a, c, "provenance is part of the identity")
}

func TestClassifyChange(t *testing.T) {
	assert.Equal(t, ChangeNew, ClassifyChange(nil, 100.0))
	assert.Equal(t, ChangeNew, ClassifyChange("", 100.0))
	assert.Equal(t, ChangeIncrease, ClassifyChange(100.0, 150.0))
	assert.Equal(t, ChangeDecrease, ClassifyChange(150.0, 100.0))
	assert.Equal(t, ChangeUpdate, ClassifyChange("Series A", "Series B"))
}

func TestIsEmptyValue(t *testing.T) {
	assert.True(t, IsEmptyValue(nil))
	assert.True(t, IsEmptyValue(""))
	assert.True(t, IsEmptyValue("   "))
	assert.True(t, IsEmptyValue(map[string]any{}))
	assert.True(t, IsEmptyValue(map[string]any{"value": nil, "note": "  "}))

	assert.False(t, IsEmptyValue(0.0))
	assert.False(t, IsEmptyValue("x"))
	assert.False(t, IsEmptyValue(map[string]any{"value": 42}))
}
