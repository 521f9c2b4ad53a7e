package model

import (
	"strings"
	"time"
)

// Document is the extracted structured payload of one uploaded document,
// produced by the upstream parser. The reconciliation engine never reads
// the raw file, only this tree plus the free-text context around it.
type Document struct {
	ID        string                    `json:"id"`
	RowID     string                    `json:"row_id"` // portfolio company the document is about
	Name      string                    `json:"name"`
	Sections  map[string]map[string]any `json:"sections"`
	Context   ContextText               `json:"context"`
	CreatedAt time.Time                 `json:"created_at"`

	// Explanations carries per-metric explanation strings the extractor
	// produced alongside the values. Used verbatim when present.
	Explanations map[string]string `json:"explanations,omitempty"`
}

// ContextText holds the free-text fields surrounding the structured data.
type ContextText struct {
	Summary      string `json:"summary,omitempty"`
	Risks        string `json:"risks,omitempty"`
	Challenges   string `json:"challenges,omitempty"`
	Achievements string `json:"achievements,omitempty"`
	Updates      string `json:"updates,omitempty"`
	LatestUpdate string `json:"latest_update,omitempty"`
}

// Blob returns a lower-cased serialization of all context fields, the form
// the inference rules and caution detection scan.
func (c ContextText) Blob() string {
	parts := []string{c.Summary, c.Risks, c.Challenges, c.Achievements, c.Updates, c.LatestUpdate}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if trimmed(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.ToLower(strings.Join(nonEmpty, "\n"))
}

// ServiceCandidate is one entry in the queue of externally-computed
// suggestions. The payload may be a bare value, an object wrapping the
// value under a known key, or a {"delta": n} object meaning "add this to
// the current value".
type ServiceCandidate struct {
	ID            string         `json:"id"`
	RowID         string         `json:"row_id"`
	ColumnID      string         `json:"column_id"`
	Payload       any            `json:"payload"`
	SourceService string         `json:"source_service"`
	Reasoning     string         `json:"reasoning,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Correction reports whether the service flagged this candidate as fixing
// a previously wrong value.
func (c ServiceCandidate) Correction() bool {
	v, ok := c.Metadata["correction"]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Insight is a per-document display item (red flag, achievement, risk,
// implication) surfaced alongside the ranked suggestions. Insights are not
// tied to any cell and never pass through the decision ledger.
type Insight struct {
	DocumentID string `json:"document_id"`
	Kind       string `json:"kind"`
	Text       string `json:"text"`
}

const (
	InsightRedFlag     = "red_flag"
	InsightAchievement = "achievement"
	InsightRisk        = "risk"
	InsightImplication = "implication"
)

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
