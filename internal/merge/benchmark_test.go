package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/suggest-cli/internal/model"
)

func TestBenchmarksFillEmptyRow(t *testing.T) {
	// Entirely empty row at seed stage: every benchmark fires.
	out := Benchmarks("fund-1", "row-1", "seed", map[string]any{}, model.DefaultMetrics(), testNow)

	require.Len(t, out, 3)
	byKey := map[string]model.Suggestion{}
	for _, s := range out {
		byKey[s.ColumnID] = s
		assert.Equal(t, model.ProvenanceService, s.Provenance)
		assert.Equal(t, BenchmarkSource, s.SourceRef)
		assert.InDelta(t, 0.35, s.Confidence, 0.001)
		assert.Equal(t, model.ChangeNew, s.ChangeType)
	}
	assert.InDelta(t, 0.65, byKey["grossMargin"].SuggestedValue.(float64), 0.001)
	assert.InDelta(t, 150.0, byKey["revenueGrowthAnnual"].SuggestedValue.(float64), 0.001)
	assert.InDelta(t, 15.0, byKey["runway"].SuggestedValue.(float64), 0.001)
}

func TestBenchmarksSkipPopulatedCells(t *testing.T) {
	rowValues := map[string]any{"grossMargin": 0.8}
	out := Benchmarks("fund-1", "row-1", "series-a", rowValues, model.DefaultMetrics(), testNow)

	for _, s := range out {
		assert.NotEqual(t, "grossMargin", s.ColumnID)
	}
}

func TestBenchmarksNeedEmptySiblings(t *testing.T) {
	// Mostly populated row: only runway is empty besides two others, so
	// the sibling requirement fails.
	reg := model.DefaultMetrics()
	rowValues := map[string]any{}
	for _, m := range reg.Metrics {
		rowValues[m.Key] = 1.0
	}
	delete(rowValues, "runway")
	delete(rowValues, "notes")
	delete(rowValues, "customers")

	out := Benchmarks("fund-1", "row-1", "seed", rowValues, reg, testNow)
	assert.Empty(t, out)
}

func TestBenchmarksUnknownStage(t *testing.T) {
	out := Benchmarks("fund-1", "row-1", "late-stage", map[string]any{}, model.DefaultMetrics(), testNow)
	assert.Empty(t, out)
}
