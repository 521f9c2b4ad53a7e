package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Provenance identifies which kind of source produced a suggestion.
type Provenance string

const (
	ProvenanceDocument Provenance = "document"
	ProvenanceService  Provenance = "service"
)

// ChangeType describes how a suggested value relates to the current cell value.
type ChangeType string

const (
	ChangeNew      ChangeType = "new"
	ChangeUpdate   ChangeType = "update"
	ChangeIncrease ChangeType = "increase"
	ChangeDecrease ChangeType = "decrease"
)

// Suggestion is a proposed new value for one grid cell. Suggestions are
// regenerated on every reconciliation run and never persisted; decision
// tracking keys off the cell, not the suggestion id.
type Suggestion struct {
	ID             string     `json:"id"`
	RowID          string     `json:"row_id"`
	ColumnID       string     `json:"column_id"`
	SuggestedValue any        `json:"suggested_value"`
	CurrentValue   any        `json:"current_value,omitempty"`
	Reasoning      string     `json:"reasoning"`
	Confidence     float64    `json:"confidence"`
	Provenance     Provenance `json:"provenance"`
	SourceRef      string     `json:"source_ref"`
	ChangeType     ChangeType `json:"change_type"`
	Correction     bool       `json:"correction,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	Score          float64    `json:"score"`
}

// SuggestionID derives a deterministic id from the suggestion's identity
// fields so the same candidate minted on two runs hashes the same way.
func SuggestionID(scopeID, rowID, columnID string, prov Provenance, value any) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%v", scopeID, rowID, columnID, prov, value)))
	return "sug_" + hex.EncodeToString(sum[:8])
}

// ClassifyChange returns the change type for a current/suggested pair.
func ClassifyChange(current, suggested any) ChangeType {
	if IsEmptyValue(current) {
		return ChangeNew
	}
	cur, curOK := ToFloat(current)
	next, nextOK := ToFloat(suggested)
	if curOK && nextOK {
		if next > cur {
			return ChangeIncrease
		}
		if next < cur {
			return ChangeDecrease
		}
	}
	return ChangeUpdate
}

// IsEmptyValue reports whether a cell value counts as absent: nil, an empty
// or whitespace-only string, or an object with no usable inner field.
func IsEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return trimmed(t) == ""
	case map[string]any:
		for _, inner := range t {
			if !IsEmptyValue(inner) {
				return false
			}
		}
		return true
	}
	return false
}
