package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellKeys(t *testing.T) {
	assert.Equal(t, "row-1::arr", CellKey("row-1", "arr"))
	assert.Equal(t, "row-1::arr::document", SourceCellKey("row-1", "arr", ProvenanceDocument))
	assert.Equal(t, "row-1::arr::service", SourceCellKey("row-1", "arr", ProvenanceService))
}

func TestKeysFor(t *testing.T) {
	s := Suggestion{ID: "sug_abc", RowID: "row-1", ColumnID: "arr", Provenance: ProvenanceDocument}
	keys := KeysFor(s)

	assert.Equal(t, "sug_abc", keys.RawID)
	assert.Equal(t, "row-1::arr::document", keys.SourceCell)
	assert.Equal(t, "row-1::arr", keys.LegacyCell)
	assert.Len(t, keys.All(), 3)
}

func TestKeysForOmitsEmptyID(t *testing.T) {
	s := Suggestion{RowID: "row-1", ColumnID: "arr", Provenance: ProvenanceService}
	all := KeysFor(s).All()
	assert.Len(t, all, 2)
	assert.NotContains(t, all, "")
}

func TestWriteKeysNeverIncludeBareCellKey(t *testing.T) {
	s := Suggestion{ID: "sug_abc", RowID: "row-1", ColumnID: "arr", Provenance: ProvenanceDocument}
	keys := KeysFor(s).WriteKeys()

	assert.ElementsMatch(t, []string{"sug_abc", "row-1::arr::document"}, keys)
	assert.NotContains(t, keys, "row-1::arr")

	// Without an id only the source-aware key remains.
	anon := Suggestion{RowID: "row-1", ColumnID: "arr", Provenance: ProvenanceService}
	assert.Equal(t, []string{"row-1::arr::service"}, KeysFor(anon).WriteKeys())
}

func TestDecisionSetContainsAny(t *testing.T) {
	set := NewDecisionSet("row-1::arr::document")

	matched := Suggestion{ID: "sug_new", RowID: "row-1", ColumnID: "arr", Provenance: ProvenanceDocument}
	assert.True(t, set.ContainsAny(KeysFor(matched)))

	// Same cell, other provenance: the source-aware key does not match,
	// and neither does a legacy bare key that was never recorded.
	other := Suggestion{ID: "sug_other", RowID: "row-1", ColumnID: "arr", Provenance: ProvenanceService}
	assert.False(t, set.ContainsAny(KeysFor(other)))
}

func TestDecisionSetLegacyKeySuppressesBothSources(t *testing.T) {
	// Decisions recorded before provenance-aware keys existed used the
	// bare cell key; they must keep suppressing every source.
	set := NewDecisionSet("row-1::arr")

	doc := Suggestion{RowID: "row-1", ColumnID: "arr", Provenance: ProvenanceDocument}
	svc := Suggestion{RowID: "row-1", ColumnID: "arr", Provenance: ProvenanceService}
	assert.True(t, set.ContainsAny(KeysFor(doc)))
	assert.True(t, set.ContainsAny(KeysFor(svc)))
}
