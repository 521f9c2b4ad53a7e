package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/suggest-cli/internal/model"
)

var now = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestScoreFreshSuggestion(t *testing.T) {
	s := model.Suggestion{Confidence: 0.6, CreatedAt: now}
	got := Score(s, Options{Now: now})
	// Full recency boost at zero age.
	assert.InDelta(t, 0.75, got, 0.001)
}

func TestScoreRecencyDecays(t *testing.T) {
	s := model.Suggestion{Confidence: 0.6, CreatedAt: now.Add(-15 * 24 * time.Hour)}
	got := Score(s, Options{Now: now})
	// Half the window gone, half the boost left.
	assert.InDelta(t, 0.675, got, 0.001)

	old := model.Suggestion{Confidence: 0.6, CreatedAt: now.Add(-60 * 24 * time.Hour)}
	got = Score(old, Options{Now: now})
	assert.InDelta(t, 0.6, got, 0.001)
}

func TestScoreBoosts(t *testing.T) {
	opts := Options{Now: now, HighImpact: map[string]bool{"arr": true}}

	s := model.Suggestion{
		Confidence: 0.6,
		ColumnID:   "arr",
		Correction: true,
		Provenance: model.ProvenanceService,
		CreatedAt:  now,
	}
	got := Score(s, opts)
	// 0.6 + 0.15 + 0.10 + 0.20 + 0.05
	assert.InDelta(t, 1.10, got, 0.001)
}

func TestRankSortsDescending(t *testing.T) {
	in := []model.Suggestion{
		{ID: "low", Confidence: 0.4, CreatedAt: now},
		{ID: "high", Confidence: 0.9, CreatedAt: now},
		{ID: "mid", Confidence: 0.6, CreatedAt: now},
	}
	out := Rank(in, Options{Now: now})

	require.Len(t, out, 3)
	assert.Equal(t, "high", out[0].ID)
	assert.Equal(t, "mid", out[1].ID)
	assert.Equal(t, "low", out[2].ID)

	// Input is untouched.
	assert.Equal(t, "low", in[0].ID)
	assert.Zero(t, in[0].Score)
}

func TestRankTiesPreserveInputOrder(t *testing.T) {
	in := []model.Suggestion{
		{ID: "a", Confidence: 0.6, CreatedAt: now},
		{ID: "b", Confidence: 0.6, CreatedAt: now},
		{ID: "c", Confidence: 0.6, CreatedAt: now},
	}
	out := Rank(in, Options{Now: now})
	assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestRankWithoutCreatedAtSkipsRecency(t *testing.T) {
	s := model.Suggestion{Confidence: 0.7}
	got := Score(s, Options{Now: now})
	assert.InDelta(t, 0.7, got, 0.001)
}
