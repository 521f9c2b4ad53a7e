package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/suggest-cli/internal/model"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFromServiceAbsolutePayload(t *testing.T) {
	sc := model.ServiceCandidate{
		ID:            "cand-1",
		RowID:         "row-1",
		ColumnID:      "valuation",
		Payload:       map[string]any{"fair_value": 12000000.0},
		SourceService: "valuation-model",
		Reasoning:     "DCF on trailing revenue",
	}

	s, ok := FromService("fund-1", sc, 10000000.0, testNow)
	require.True(t, ok)

	assert.Equal(t, "cand-1", s.ID)
	assert.InDelta(t, 12000000.0, s.SuggestedValue.(float64), 0.001)
	assert.Equal(t, "DCF on trailing revenue", s.Reasoning)
	assert.Equal(t, model.ProvenanceService, s.Provenance)
	assert.Equal(t, "valuation-model", s.SourceRef)
	assert.Equal(t, model.ChangeIncrease, s.ChangeType)
	assert.InDelta(t, 0.6, s.Confidence, 0.001)
	assert.False(t, s.Correction)
}

func TestFromServiceDeltaAgainstSnapshot(t *testing.T) {
	sc := model.ServiceCandidate{
		RowID:    "row-1",
		ColumnID: "cashInBank",
		Payload:  map[string]any{"delta": -300000.0},
	}

	s, ok := FromService("fund-1", sc, 2000000.0, testNow)
	require.True(t, ok)
	assert.InDelta(t, 1700000.0, s.SuggestedValue.(float64), 0.001)
	assert.Equal(t, model.ChangeDecrease, s.ChangeType)
}

func TestFromServiceDeltaWithEmptyCellDrops(t *testing.T) {
	sc := model.ServiceCandidate{
		RowID:    "row-1",
		ColumnID: "cashInBank",
		Payload:  map[string]any{"delta": 100000.0},
	}

	_, ok := FromService("fund-1", sc, nil, testNow)
	assert.False(t, ok)
}

func TestFromServiceMintsDeterministicID(t *testing.T) {
	sc := model.ServiceCandidate{
		RowID:    "row-1",
		ColumnID: "arr",
		Payload:  900000.0,
	}

	a, ok := FromService("fund-1", sc, nil, testNow)
	require.True(t, ok)
	b, ok := FromService("fund-1", sc, nil, testNow)
	require.True(t, ok)
	assert.Equal(t, a.ID, b.ID)
}

func TestFromServiceConfidenceHint(t *testing.T) {
	sc := model.ServiceCandidate{
		RowID:    "row-1",
		ColumnID: "arr",
		Payload:  900000.0,
		Metadata: map[string]any{"confidence": 0.9},
	}
	s, ok := FromService("fund-1", sc, nil, testNow)
	require.True(t, ok)
	assert.InDelta(t, 0.9, s.Confidence, 0.001)

	// Out-of-range hints fall back to the default.
	sc.Metadata = map[string]any{"confidence": 3.0}
	s, ok = FromService("fund-1", sc, nil, testNow)
	require.True(t, ok)
	assert.InDelta(t, 0.6, s.Confidence, 0.001)
}

func TestFromServiceCorrectionFlag(t *testing.T) {
	sc := model.ServiceCandidate{
		RowID:    "row-1",
		ColumnID: "arr",
		Payload:  900000.0,
		Metadata: map[string]any{"correction": true},
	}
	s, ok := FromService("fund-1", sc, nil, testNow)
	require.True(t, ok)
	assert.True(t, s.Correction)
}

func TestFromServiceDefaultReasoning(t *testing.T) {
	sc := model.ServiceCandidate{
		RowID:         "row-1",
		ColumnID:      "arr",
		Payload:       900000.0,
		SourceService: "forecaster",
	}
	s, ok := FromService("fund-1", sc, nil, testNow)
	require.True(t, ok)
	assert.Equal(t, "forecaster computed value", s.Reasoning)
}
