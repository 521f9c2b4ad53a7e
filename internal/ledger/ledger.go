// Package ledger filters candidates against recorded reviewer decisions
// and deduplicates survivors. This is where idempotent suppression and
// non-resurrection live: decisions are keyed to the cell and provenance,
// never to the regenerated candidate id.
package ledger

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/suggest-cli/internal/model"
)

// valueTolerance is the relative tolerance under which a document value
// and a service value count as the same number.
const valueTolerance = 0.01

// Filter applies the decision sets and dedup rules to one run's candidates.
type Filter struct {
	accepted model.DecisionSet
	rejected model.DecisionSet
}

// New creates a filter over the two decision sets. Nil sets are treated as
// empty (the degraded mode after a failed fetch).
func New(accepted, rejected model.DecisionSet) *Filter {
	if accepted == nil {
		accepted = model.DecisionSet{}
	}
	if rejected == nil {
		rejected = model.DecisionSet{}
	}
	return &Filter{accepted: accepted, rejected: rejected}
}

// Apply runs the full ledger pass: decision exclusion at all three key
// forms, per-source dedup keeping the highest-confidence candidate,
// cross-source value-equivalence dedup, and a final drop of unusable
// values. Input order is preserved for survivors so ranking ties stay
// stable.
func (f *Filter) Apply(candidates []model.Suggestion) []model.Suggestion {
	// Step 1: exclude anything already decided, under any key form.
	open := make([]model.Suggestion, 0, len(candidates))
	for _, c := range candidates {
		keys := model.KeysFor(c)
		if f.accepted.ContainsAny(keys) || f.rejected.ContainsAny(keys) {
			zap.L().Debug("ledger: candidate suppressed by prior decision",
				zap.String("key", keys.SourceCell),
			)
			continue
		}
		open = append(open, c)
	}

	// Step 2: per-source dedup, highest confidence wins, ties keep the
	// first seen.
	bySource := make(map[string]int, len(open))
	perSource := make([]model.Suggestion, 0, len(open))
	for _, c := range open {
		key := model.SourceCellKey(c.RowID, c.ColumnID, c.Provenance)
		if idx, ok := bySource[key]; ok {
			if c.Confidence > perSource[idx].Confidence {
				perSource[idx] = c
			}
			continue
		}
		bySource[key] = len(perSource)
		perSource = append(perSource, c)
	}

	// Step 3: cross-source value-equivalence dedup. When a document and a
	// service survivor agree on the value, only the more confident one
	// stays; when they differ both survive so the reviewer can act on each.
	drop := make(map[int]bool)
	byCell := make(map[string]int, len(perSource))
	for i, c := range perSource {
		cell := model.CellKey(c.RowID, c.ColumnID)
		j, ok := byCell[cell]
		if !ok {
			byCell[cell] = i
			continue
		}
		other := perSource[j]
		if other.Provenance == c.Provenance {
			continue
		}
		if ValuesEquivalent(other.SuggestedValue, c.SuggestedValue) {
			if c.Confidence > other.Confidence {
				drop[j] = true
				byCell[cell] = i
			} else {
				drop[i] = true
			}
		}
	}

	// Step 4: drop unusable values.
	out := make([]model.Suggestion, 0, len(perSource))
	for i, c := range perSource {
		if drop[i] {
			continue
		}
		if model.IsEmptyValue(c.SuggestedValue) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ValuesEquivalent reports whether two suggested values agree: numbers
// within a 1% relative tolerance of the larger magnitude, strings by exact
// case-insensitive equality.
func ValuesEquivalent(a, b any) bool {
	fa, aOK := model.ToFloat(a)
	fb, bOK := model.ToFloat(b)
	if aOK && bOK {
		larger := math.Max(math.Abs(fa), math.Abs(fb))
		if larger == 0 {
			return true
		}
		return math.Abs(fa-fb) <= valueTolerance*larger
	}

	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr && bStr {
		return strings.EqualFold(strings.TrimSpace(sa), strings.TrimSpace(sb))
	}
	return false
}
