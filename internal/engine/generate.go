package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/suggest-cli/internal/filter"
	"github.com/sells-group/suggest-cli/internal/inference"
	"github.com/sells-group/suggest-cli/internal/insight"
	"github.com/sells-group/suggest-cli/internal/model"
	"github.com/sells-group/suggest-cli/internal/reason"
	"github.com/sells-group/suggest-cli/internal/resolver"
	"github.com/sells-group/suggest-cli/pkg/grid"
)

// generate walks every document and emits direct extraction candidates,
// inference-rule candidates for cells no direct extraction covered, and
// per-document insights.
func (e *Engine) generate(fundID string, docs []model.Document, snap *grid.Snapshot, now time.Time) ([]model.Suggestion, []model.Insight) {
	var suggestions []model.Suggestion
	var insights []model.Insight

	for _, doc := range docs {
		rowValues := e.rowValues(snap, doc.RowID)
		rowCtx := filter.RowContextFrom(rowValues)

		// covered marks columns a direct extraction resolved for this
		// document, whether or not it cleared the change filter. A stated
		// value always outranks an inferred one for the same cell.
		covered := make(map[string]bool)

		for i := range e.metrics.Metrics {
			m := &e.metrics.Metrics[i]
			value, path, ok := resolver.Resolve(m.Paths, doc.Sections, m.Validate)
			if !ok {
				continue
			}

			if pass, why := e.policy.Check(m.Key, value, rowCtx); !pass {
				zap.L().Debug("candidate failed sanity check",
					zap.String("row_id", doc.RowID),
					zap.String("metric", m.Key),
					zap.String("reason", why))
				continue
			}
			covered[m.Key] = true

			current, _ := snap.Value(model.CellKey(doc.RowID, m.Key))
			if !filter.IsChanged(current, value, m.Threshold) {
				continue
			}

			in := reason.Inputs{
				Metric:         m,
				SuggestedValue: value,
				CurrentValue:   current,
				Explanation:    doc.Explanations[m.Key],
				DocumentName:   doc.Name,
				Context:        doc.Context,
				Explicit:       model.ExplicitPath(path),
				Extrapolated:   model.ExtrapolatedPath(path),
			}
			suggestions = append(suggestions, model.Suggestion{
				ID:             model.SuggestionID(fundID, doc.RowID, m.Key, model.ProvenanceDocument, value),
				RowID:          doc.RowID,
				ColumnID:       m.Key,
				SuggestedValue: value,
				CurrentValue:   current,
				Reasoning:      reason.BuildText(in),
				Confidence:     reason.Confidence(in),
				Provenance:     model.ProvenanceDocument,
				SourceRef:      doc.ID,
				ChangeType:     model.ClassifyChange(current, value),
				CreatedAt:      now,
			})
		}

		suggestions = append(suggestions,
			e.inferred(fundID, doc, rowValues, rowCtx, covered, snap, now)...)

		insights = append(insights, insight.Extract(doc)...)
	}

	return suggestions, insights
}

// inferred runs the text-pattern rules against a document's context and
// keeps what no direct extraction already covered.
func (e *Engine) inferred(fundID string, doc model.Document, rowValues map[string]any, rowCtx filter.RowContext, covered map[string]bool, snap *grid.Snapshot, now time.Time) []model.Suggestion {
	derived := inference.Run(doc.Context, inference.RowValuesFrom(rowValues))
	if len(derived) == 0 {
		return nil
	}

	var out []model.Suggestion
	for _, d := range derived {
		if covered[d.MetricKey] {
			continue
		}
		m := e.metrics.ByKey(d.MetricKey)
		if m == nil {
			continue
		}
		if pass, why := e.policy.Check(m.Key, d.Value, rowCtx); !pass {
			zap.L().Debug("inferred candidate failed sanity check",
				zap.String("row_id", doc.RowID),
				zap.String("metric", m.Key),
				zap.String("reason", why))
			continue
		}
		current, _ := snap.Value(model.CellKey(doc.RowID, m.Key))
		if !filter.IsChanged(current, d.Value, m.Threshold) {
			continue
		}

		text := reason.BuildText(reason.Inputs{
			Metric:         m,
			SuggestedValue: d.Value,
			CurrentValue:   current,
			DocumentName:   doc.Name,
			Context:        doc.Context,
			Signal:         d.Quote,
		})
		out = append(out, model.Suggestion{
			ID:             model.SuggestionID(fundID, doc.RowID, m.Key, model.ProvenanceDocument, d.Value),
			RowID:          doc.RowID,
			ColumnID:       m.Key,
			SuggestedValue: d.Value,
			CurrentValue:   current,
			Reasoning:      text,
			Confidence:     d.Confidence,
			Provenance:     model.ProvenanceDocument,
			SourceRef:      doc.ID,
			ChangeType:     model.ClassifyChange(current, d.Value),
			CreatedAt:      now,
		})
	}
	return out
}
