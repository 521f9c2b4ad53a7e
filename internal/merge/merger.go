// Package merge unifies candidates from documents, external services, and
// static heuristics into one annotated list.
package merge

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/suggest-cli/internal/model"
	"github.com/sells-group/suggest-cli/internal/reason"
)

// FromService normalizes one queued service candidate against the current
// cell value. Returns false when the payload carries nothing usable (a
// delta with no current value, an empty wrapper object).
func FromService(scopeID string, sc model.ServiceCandidate, current any, now time.Time) (*model.Suggestion, bool) {
	payload, ok := ParsePayload(sc.Payload)
	if !ok {
		zap.L().Debug("merge: unusable service payload",
			zap.String("row", sc.RowID),
			zap.String("column", sc.ColumnID),
			zap.String("service", sc.SourceService),
		)
		return nil, false
	}

	value, ok := payload.Resolve(current)
	if !ok {
		zap.L().Debug("merge: delta payload with no current value, dropped",
			zap.String("row", sc.RowID),
			zap.String("column", sc.ColumnID),
		)
		return nil, false
	}

	id := sc.ID
	if id == "" {
		id = model.SuggestionID(scopeID, sc.RowID, sc.ColumnID, model.ProvenanceService, value)
	}

	reasoning := sc.Reasoning
	if reasoning == "" {
		reasoning = sc.SourceService + " computed value"
	}

	confidence := reason.Clamp(serviceConfidence(sc))

	createdAt := sc.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return &model.Suggestion{
		ID:             id,
		RowID:          sc.RowID,
		ColumnID:       sc.ColumnID,
		SuggestedValue: value,
		CurrentValue:   current,
		Reasoning:      reasoning,
		Confidence:     confidence,
		Provenance:     model.ProvenanceService,
		SourceRef:      sc.SourceService,
		ChangeType:     model.ClassifyChange(current, value),
		Correction:     sc.Correction(),
		CreatedAt:      createdAt,
	}, true
}

// serviceConfidence reads an optional confidence hint from the payload
// metadata, defaulting to a solid-but-not-explicit level.
func serviceConfidence(sc model.ServiceCandidate) float64 {
	if raw, ok := sc.Metadata["confidence"]; ok {
		if f, ok := model.ToFloat(raw); ok && f > 0 && f <= 1 {
			return f
		}
	}
	return 0.6
}
