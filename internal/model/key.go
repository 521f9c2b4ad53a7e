package model

import "fmt"

// CellKey is the bare "row::column" address. Legacy decisions were recorded
// at this granularity and block both provenances for the cell.
func CellKey(rowID, columnID string) string {
	return fmt.Sprintf("%s::%s", rowID, columnID)
}

// SourceCellKey is "row::column::provenance", the true identity of a
// suggestion for dedup and decision tracking.
func SourceCellKey(rowID, columnID string, prov Provenance) string {
	return fmt.Sprintf("%s::%s::%s", rowID, columnID, prov)
}

// DecisionKeys holds the three lookup forms a recorded decision can take.
// Decisions are written at every form so a candidate whose id was re-minted
// on a later run is still recognized.
type DecisionKeys struct {
	RawID      string
	SourceCell string
	LegacyCell string
}

// KeysFor computes the decision key forms for a suggestion.
func KeysFor(s Suggestion) DecisionKeys {
	return DecisionKeys{
		RawID:      s.ID,
		SourceCell: SourceCellKey(s.RowID, s.ColumnID, s.Provenance),
		LegacyCell: CellKey(s.RowID, s.ColumnID),
	}
}

// All returns the key forms as a slice, skipping empty entries.
func (k DecisionKeys) All() []string {
	keys := make([]string, 0, 3)
	for _, key := range []string{k.RawID, k.SourceCell, k.LegacyCell} {
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// WriteKeys returns the forms a new decision is recorded at: the raw id
// and the source-aware cell key. The bare cell key is a read-side lookup
// for decisions recorded before provenance existed; writing it would tie
// the decision to the other provenance's future candidates too.
func (k DecisionKeys) WriteKeys() []string {
	keys := make([]string, 0, 2)
	for _, key := range []string{k.RawID, k.SourceCell} {
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// DecisionSet is one of the two persisted decision sets (accepted or
// rejected) for a scope, loaded as a membership set.
type DecisionSet map[string]struct{}

// NewDecisionSet builds a set from raw keys.
func NewDecisionSet(keys ...string) DecisionSet {
	s := make(DecisionSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts a key into the set.
func (d DecisionSet) Add(key string) {
	d[key] = struct{}{}
}

// Contains reports membership of a single key.
func (d DecisionSet) Contains(key string) bool {
	_, ok := d[key]
	return ok
}

// ContainsAny reports whether any of the lookup forms is present.
func (d DecisionSet) ContainsAny(k DecisionKeys) bool {
	return d.Contains(k.RawID) || d.Contains(k.SourceCell) || d.Contains(k.LegacyCell)
}
