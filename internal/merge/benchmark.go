package merge

import (
	"fmt"
	"time"

	"github.com/sells-group/suggest-cli/internal/model"
)

// minEmptySiblings is how many other cells in a row must also be empty
// before a benchmark fills one. A single missing field is usually a real
// gap in one document, not an unseeded row; guessing there is noise.
const minEmptySiblings = 3

// benchmarkConfidence is fixed at the floor: a stage benchmark is the
// weakest kind of evidence the engine ever surfaces.
const benchmarkConfidence = 0.35

// BenchmarkSource tags heuristic candidates so they are distinguishable
// from queued service entries.
const BenchmarkSource = "benchmark"

// stageBenchmarks maps a fund-reported company stage to typical metric
// values used only to seed empty rows.
var stageBenchmarks = map[string]map[string]float64{
	"pre-seed": {"grossMargin": 0.60, "revenueGrowthAnnual": 200, "runway": 12},
	"seed":     {"grossMargin": 0.65, "revenueGrowthAnnual": 150, "runway": 15},
	"series-a": {"grossMargin": 0.70, "revenueGrowthAnnual": 100, "runway": 18},
	"series-b": {"grossMargin": 0.72, "revenueGrowthAnnual": 70, "runway": 20},
	"growth":   {"grossMargin": 0.75, "revenueGrowthAnnual": 40, "runway": 24},
}

// Benchmarks produces stage-based fallback candidates for a row. A
// candidate is emitted only when the target cell is empty and at least
// minEmptySiblings sibling cells are also empty.
func Benchmarks(scopeID, rowID, stage string, rowValues map[string]any, metrics *model.MetricRegistry, now time.Time) []model.Suggestion {
	bench, ok := stageBenchmarks[stage]
	if !ok {
		return nil
	}

	empty := 0
	for _, m := range metrics.Metrics {
		if model.IsEmptyValue(rowValues[m.Key]) {
			empty++
		}
	}

	var out []model.Suggestion
	for _, m := range metrics.Metrics {
		value, ok := bench[m.Key]
		if !ok {
			continue
		}
		if !model.IsEmptyValue(rowValues[m.Key]) {
			continue
		}
		// The target cell counts itself among the empties.
		if empty-1 < minEmptySiblings {
			continue
		}
		out = append(out, model.Suggestion{
			ID:             model.SuggestionID(scopeID, rowID, m.Key, model.ProvenanceService, value),
			RowID:          rowID,
			ColumnID:       m.Key,
			SuggestedValue: value,
			Reasoning:      fmt.Sprintf("Typical %s for a %s company.", m.Label, stage),
			Confidence:     benchmarkConfidence,
			Provenance:     model.ProvenanceService,
			SourceRef:      BenchmarkSource,
			ChangeType:     model.ChangeNew,
			CreatedAt:      now,
		})
	}
	return out
}
