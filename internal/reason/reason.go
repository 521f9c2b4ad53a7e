// Package reason produces the human-readable justification and confidence
// score attached to each suggestion.
package reason

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/suggest-cli/internal/model"
)

const (
	baseConfidence  = 0.5
	explicitBonus   = 0.25
	cautionPenalty  = 0.15
	extrapolatedCut = 0.10

	// ConfidenceFloor and ConfidenceCeil bound every generated confidence.
	ConfidenceFloor = 0.35
	ConfidenceCeil  = 0.95

	maxSignalLen = 120
)

// Inputs carries everything the builder needs for one suggestion.
type Inputs struct {
	Metric         *model.Metric
	SuggestedValue any
	CurrentValue   any
	// Explanation is an upstream per-metric explanation string; used
	// verbatim when present.
	Explanation  string
	DocumentName string
	Context      model.ContextText
	Explicit     bool
	Extrapolated bool
	// Signal overrides context extraction when the caller already has the
	// quote to attribute (inference rules pass the matched phrase here).
	Signal string
}

// BuildText assembles the reasoning string. Priority: upstream explanation
// verbatim, then the strongest context signal, then a document-name
// fallback.
func BuildText(in Inputs) string {
	if expl := strings.TrimSpace(in.Explanation); expl != "" {
		if !model.IsEmptyValue(in.CurrentValue) {
			return fmt.Sprintf("%s (was %s)", expl, FormatValue(in.Metric, in.CurrentValue))
		}
		return expl
	}

	signal := in.Signal
	if signal == "" {
		signal = pickSignal(in.Context)
	}
	signal = truncate(strings.TrimSpace(signal), maxSignalLen)

	label := "value"
	if in.Metric != nil {
		label = in.Metric.Label
	}
	newVal := FormatValue(in.Metric, in.SuggestedValue)

	if signal != "" {
		if !model.IsEmptyValue(in.CurrentValue) {
			if pct, ok := pctChange(in.CurrentValue, in.SuggestedValue); ok {
				return fmt.Sprintf("%q → %s %s (%s) (was %s).",
					signal, label, newVal, pct, FormatValue(in.Metric, in.CurrentValue))
			}
			return fmt.Sprintf("%q → %s %s (was %s).",
				signal, label, newVal, FormatValue(in.Metric, in.CurrentValue))
		}
		return fmt.Sprintf("%q → %s %s.", signal, label, newVal)
	}

	if !model.IsEmptyValue(in.CurrentValue) {
		return fmt.Sprintf("%s: %s %s (was %s).",
			in.DocumentName, label, newVal, FormatValue(in.Metric, in.CurrentValue))
	}
	return fmt.Sprintf("%s: %s.", in.DocumentName, newVal)
}

// Confidence computes the additive confidence model. The offsets are
// independent; order never matters, and the result always clamps to
// [0.35, 0.95].
func Confidence(in Inputs) float64 {
	c := baseConfidence
	if in.Explicit {
		c += explicitBonus
	}
	if hasCaution(in.Context) {
		c -= cautionPenalty
	}
	if in.Extrapolated {
		c -= extrapolatedCut
	}
	return Clamp(c)
}

// Clamp bounds a confidence to [ConfidenceFloor, ConfidenceCeil].
func Clamp(c float64) float64 {
	if c < ConfidenceFloor {
		return ConfidenceFloor
	}
	if c > ConfidenceCeil {
		return ConfidenceCeil
	}
	return c
}

// pickSignal chooses the single most relevant context line, preferring
// cautionary language over positive language over the generic latest
// update.
func pickSignal(c model.ContextText) string {
	for _, s := range []string{c.Risks, c.Challenges, c.Achievements, c.Updates, c.LatestUpdate} {
		if strings.TrimSpace(s) != "" {
			return firstSentence(s)
		}
	}
	return ""
}

var cautionWords = []string{
	"risk", "challenge", "concern", "headwind", "churn", "difficult",
	"warning", "shortfall", "miss", "slowdown",
}

// hasCaution scans the whole surrounding context for cautionary language,
// not just the dedicated risks field.
func hasCaution(c model.ContextText) bool {
	blob := c.Blob()
	if blob == "" {
		return false
	}
	for _, w := range cautionWords {
		if strings.Contains(blob, w) {
			return true
		}
	}
	return false
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	for _, sep := range []string{". ", "; ", "\n"} {
		if idx := strings.Index(s, sep); idx > 0 {
			return s[:idx]
		}
	}
	return strings.TrimSuffix(s, ".")
}

// truncate caps s at n runes, never splitting a multi-byte rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
