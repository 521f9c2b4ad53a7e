package store

import (
	"context"

	"github.com/sells-group/suggest-cli/internal/model"
)

// Verdict is the reviewer's decision on a suggestion.
type Verdict string

const (
	VerdictAccepted Verdict = "accepted"
	VerdictRejected Verdict = "rejected"
)

// Store defines the persistence interface for the reconciliation engine:
// the decision ledger, the service-candidate queue, and extracted
// documents.
type Store interface {
	// Decisions. RecordDecisions upserts every key form atomically; writes
	// are idempotent so racing reviewers converge.
	RecordDecisions(ctx context.Context, scopeID string, verdict Verdict, keys []string) error
	GetDecisions(ctx context.Context, scopeID string) (accepted, rejected model.DecisionSet, err error)

	// Service candidate queue. Upsert is keyed (scope, row, column).
	UpsertServiceCandidate(ctx context.Context, scopeID string, c model.ServiceCandidate) error
	ListServiceCandidates(ctx context.Context, scopeID string) ([]model.ServiceCandidate, error)
	// PurgeServiceCandidates removes every queue entry for a cell and
	// returns how many were deleted.
	PurgeServiceCandidates(ctx context.Context, scopeID, rowID, columnID string) (int, error)

	// Extracted documents.
	SaveDocument(ctx context.Context, scopeID string, d model.Document) error
	ImportDocuments(ctx context.Context, scopeID string, docs []model.Document) (int, error)
	ListDocuments(ctx context.Context, scopeID string) ([]model.Document, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
