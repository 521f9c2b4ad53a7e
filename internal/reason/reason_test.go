package reason

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/suggest-cli/internal/model"
)

func metric(key string) *model.Metric {
	return model.DefaultMetrics().ByKey(key)
}

func TestConfidenceBase(t *testing.T) {
	c := Confidence(Inputs{})
	assert.InDelta(t, 0.5, c, 0.001)
}

func TestConfidenceExplicitBonus(t *testing.T) {
	c := Confidence(Inputs{Explicit: true})
	assert.InDelta(t, 0.75, c, 0.001)
}

func TestConfidenceCautionPenalty(t *testing.T) {
	ctx := model.ContextText{Risks: "churn is a growing concern"}
	c := Confidence(Inputs{Context: ctx})
	assert.InDelta(t, 0.35, c, 0.001)
}

func TestConfidenceExtrapolatedCut(t *testing.T) {
	c := Confidence(Inputs{Extrapolated: true})
	assert.InDelta(t, 0.4, c, 0.001)
}

func TestConfidenceOffsetsAreIndependent(t *testing.T) {
	ctx := model.ContextText{Challenges: "hiring has been difficult"}
	c := Confidence(Inputs{Explicit: true, Extrapolated: true, Context: ctx})
	// 0.5 + 0.25 - 0.15 - 0.10
	assert.InDelta(t, 0.5, c, 0.001)
}

func TestConfidenceClampsToFloor(t *testing.T) {
	ctx := model.ContextText{Risks: "risk of missing payroll amid the slowdown"}
	c := Confidence(Inputs{Extrapolated: true, Context: ctx})
	assert.InDelta(t, ConfidenceFloor, c, 0.001)
}

func TestClampBounds(t *testing.T) {
	assert.InDelta(t, ConfidenceFloor, Clamp(0.1), 0.001)
	assert.InDelta(t, ConfidenceCeil, Clamp(0.99), 0.001)
	assert.InDelta(t, 0.6, Clamp(0.6), 0.001)
}

func TestBuildTextExplanationVerbatim(t *testing.T) {
	got := BuildText(Inputs{
		Metric:         metric("arr"),
		SuggestedValue: 1300000.0,
		CurrentValue:   1200000.0,
		Explanation:    "ARR stated on page 2 of the board deck",
	})
	assert.Equal(t, "ARR stated on page 2 of the board deck (was $1,200,000)", got)
}

func TestBuildTextExplanationNoCurrent(t *testing.T) {
	got := BuildText(Inputs{
		Metric:         metric("arr"),
		SuggestedValue: 1300000.0,
		Explanation:    "ARR stated on page 2",
	})
	assert.Equal(t, "ARR stated on page 2", got)
}

func TestBuildTextSignalWithChange(t *testing.T) {
	got := BuildText(Inputs{
		Metric:         metric("arr"),
		SuggestedValue: 1200000.0,
		CurrentValue:   1000000.0,
		Context:        model.ContextText{Achievements: "Record quarter closed with strong expansion"},
	})
	assert.Equal(t, `"Record quarter closed with strong expansion" → ARR $1,200,000 (+20%) (was $1,000,000).`, got)
}

func TestBuildTextSignalPriority(t *testing.T) {
	ctx := model.ContextText{
		Risks:        "Churn ticked up in Q3",
		Achievements: "Record quarter",
	}
	got := BuildText(Inputs{
		Metric:         metric("arr"),
		SuggestedValue: 900000.0,
		Context:        ctx,
	})
	assert.Contains(t, got, `"Churn ticked up in Q3"`)
}

func TestBuildTextDocumentFallback(t *testing.T) {
	got := BuildText(Inputs{
		Metric:         metric("headcount"),
		SuggestedValue: 42.0,
		DocumentName:   "Q3 Board Deck",
	})
	assert.Equal(t, "Q3 Board Deck: 42.", got)
}

func TestBuildTextCallerSignalOverride(t *testing.T) {
	got := BuildText(Inputs{
		Metric:         metric("cashInBank"),
		SuggestedValue: 7000000.0,
		CurrentValue:   2000000.0,
		Context:        model.ContextText{Updates: "we raised $5M from Acme Ventures"},
		Signal:         "raised $5M",
	})
	assert.Contains(t, got, `"raised $5M"`)
	assert.Contains(t, got, "$7,000,000")
	assert.Contains(t, got, "(was $2,000,000)")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "$1,200,000", FormatValue(metric("arr"), 1200000.0))
	assert.Equal(t, "65%", FormatValue(metric("grossMargin"), 0.65))
	assert.Equal(t, "150%", FormatValue(metric("revenueGrowthAnnual"), 150.0))
	assert.Equal(t, "14", FormatValue(metric("runway"), 14.0))
	assert.Equal(t, "Series B", FormatValue(nil, "Series B"))
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("é", 10)

	out := truncate(s, 5)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("é", 4)+"…", out)

	assert.Equal(t, s, truncate(s, 10))
}
