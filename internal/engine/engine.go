// Package engine orchestrates one reconciliation pass: fetch everything
// concurrently, generate candidates from every source, filter them through
// the decision ledger, and rank what survives.
package engine

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/suggest-cli/internal/filter"
	"github.com/sells-group/suggest-cli/internal/ledger"
	"github.com/sells-group/suggest-cli/internal/merge"
	"github.com/sells-group/suggest-cli/internal/model"
	"github.com/sells-group/suggest-cli/internal/rank"
	"github.com/sells-group/suggest-cli/internal/store"
	"github.com/sells-group/suggest-cli/pkg/grid"
)

// Engine wires the stores, the grid client, and the candidate pipeline.
type Engine struct {
	store   store.Store
	grid    grid.Client
	metrics *model.MetricRegistry
	policy  filter.Policy
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPolicy overrides the shipped sanity policy.
func WithPolicy(p filter.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// New builds an Engine. The store may be nil; operations that need it
// return ErrNoStore.
func New(st store.Store, gc grid.Client, metrics *model.MetricRegistry, opts ...Option) *Engine {
	e := &Engine{
		store:   st,
		grid:    gc,
		metrics: metrics,
		policy:  filter.DefaultPolicy(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	if e.metrics == nil {
		e.metrics = model.DefaultMetrics()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is one reconciliation pass's output: ranked suggestions plus the
// per-document insights extracted along the way.
type Result struct {
	FundID      string             `json:"fund_id"`
	Suggestions []model.Suggestion `json:"suggestions"`
	Insights    []model.Insight    `json:"insights"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Reconcile runs one full pass for a fund. Ledger and snapshot fetch
// failures degrade rather than abort: a run with no decision history shows
// everything, and a run with no snapshot treats every cell as empty.
func (e *Engine) Reconcile(ctx context.Context, fundID string) (*Result, error) {
	if fundID == "" {
		return nil, ErrMissingFund
	}
	if e.store == nil {
		return nil, ErrNoStore
	}

	var (
		snap       *grid.Snapshot
		accepted   model.DecisionSet
		rejected   model.DecisionSet
		docs       []model.Document
		candidates []model.ServiceCandidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := e.grid.Snapshot(gctx, fundID)
		if err != nil {
			zap.L().Warn("snapshot fetch failed, treating grid as empty",
				zap.String("fund_id", fundID), zap.Error(err))
			return nil
		}
		snap = s
		return nil
	})
	g.Go(func() error {
		a, r, err := e.store.GetDecisions(gctx, fundID)
		if err != nil {
			zap.L().Warn("decision fetch failed, running without ledger",
				zap.String("fund_id", fundID), zap.Error(err))
			return nil
		}
		accepted, rejected = a, r
		return nil
	})
	g.Go(func() error {
		d, err := e.store.ListDocuments(gctx, fundID)
		if err != nil {
			zap.L().Warn("document fetch failed, running without documents",
				zap.String("fund_id", fundID), zap.Error(err))
			return nil
		}
		docs = d
		return nil
	})
	g.Go(func() error {
		c, err := e.store.ListServiceCandidates(gctx, fundID)
		if err != nil {
			zap.L().Warn("service queue fetch failed, running without queued candidates",
				zap.String("fund_id", fundID), zap.Error(err))
			return nil
		}
		candidates = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap = orEmpty(snap)
	now := e.now()
	all, insights := e.generate(fundID, docs, snap, now)

	for _, sc := range candidates {
		current, _ := snap.Value(model.CellKey(sc.RowID, sc.ColumnID))
		s, ok := merge.FromService(fundID, sc, current, now)
		if !ok {
			continue
		}
		// Queued service values go through the same gates as document
		// extractions: implausible values and no-op updates never surface.
		rowCtx := filter.RowContextFrom(e.rowValues(snap, sc.RowID))
		if pass, why := e.policy.Check(sc.ColumnID, s.SuggestedValue, rowCtx); !pass {
			zap.L().Debug("service candidate failed sanity check",
				zap.String("row_id", sc.RowID),
				zap.String("metric", sc.ColumnID),
				zap.String("reason", why))
			continue
		}
		var threshold float64
		if m := e.metrics.ByKey(sc.ColumnID); m != nil {
			threshold = m.Threshold
		}
		if !filter.IsChanged(current, s.SuggestedValue, threshold) {
			continue
		}
		all = append(all, *s)
	}

	all = append(all, e.benchmarks(fundID, snap, now)...)

	all = ledger.New(accepted, rejected).Apply(all)
	all = rank.Rank(all, rank.Options{Now: now, HighImpact: e.metrics.HighImpactSet()})

	return &Result{
		FundID:      fundID,
		Suggestions: all,
		Insights:    insights,
		GeneratedAt: now,
	}, nil
}

// orEmpty normalizes a nil snapshot to an empty one.
func orEmpty(s *grid.Snapshot) *grid.Snapshot {
	if s == nil {
		return &grid.Snapshot{Cells: map[string]any{}, Rows: map[string]grid.RowMeta{}}
	}
	return s
}

// benchmarks produces stage-benchmark fills for rows whose grid data is
// mostly empty.
func (e *Engine) benchmarks(fundID string, snap *grid.Snapshot, now time.Time) []model.Suggestion {
	var out []model.Suggestion
	for rowID, meta := range snap.Rows {
		rowValues := e.rowValues(snap, rowID)
		out = append(out, merge.Benchmarks(fundID, rowID, meta.Stage, rowValues, e.metrics, now)...)
	}
	return out
}

// rowValues collects the current cell values for one row keyed by metric.
func (e *Engine) rowValues(snap *grid.Snapshot, rowID string) map[string]any {
	values := make(map[string]any, len(e.metrics.Metrics))
	for _, m := range e.metrics.Metrics {
		if v, ok := snap.Value(model.CellKey(rowID, m.Key)); ok {
			values[m.Key] = v
		}
	}
	return values
}

// Accept applies a suggestion to the grid and records the acceptance. The
// order matters: the grid edit happens first, and only a successful edit
// is recorded, so a failed apply leaves the suggestion live.
func (e *Engine) Accept(ctx context.Context, fundID string, s model.Suggestion) error {
	if fundID == "" {
		return ErrMissingFund
	}
	if e.store == nil {
		return ErrNoStore
	}

	res, err := e.grid.ApplyCellUpdate(ctx, fundID, grid.CellUpdate{
		RowID:    s.RowID,
		ColumnID: s.ColumnID,
		Value:    s.SuggestedValue,
	})
	if err != nil {
		return eris.Wrap(err, "engine: apply cell update")
	}
	if !res.OK {
		return &ApplyError{Status: res.Status, Code: res.Code}
	}

	if err := e.record(ctx, fundID, store.VerdictAccepted, s); err != nil {
		return err
	}
	if s.Provenance == model.ProvenanceService {
		e.purge(ctx, fundID, s)
	}
	return nil
}

// Reject records a rejection without touching the grid.
func (e *Engine) Reject(ctx context.Context, fundID string, s model.Suggestion) error {
	if fundID == "" {
		return ErrMissingFund
	}
	if e.store == nil {
		return ErrNoStore
	}
	if err := e.record(ctx, fundID, store.VerdictRejected, s); err != nil {
		return err
	}
	if s.Provenance == model.ProvenanceService {
		e.purge(ctx, fundID, s)
	}
	return nil
}

// record writes the decision at the raw id and the source-aware cell key,
// so the suggestion stays suppressed even if a later run mints a different
// id. The bare cell key is never written: a decision on a document
// suggestion must not suppress future service suggestions for the cell.
func (e *Engine) record(ctx context.Context, fundID string, verdict store.Verdict, s model.Suggestion) error {
	keys := model.KeysFor(s).WriteKeys()
	if err := e.store.RecordDecisions(ctx, fundID, verdict, keys); err != nil {
		zap.L().Error("decision record failed",
			zap.String("fund_id", fundID),
			zap.Strings("keys", keys),
			zap.Error(err))
		return ErrDecisionNotRecorded
	}
	return nil
}

// purge clears the service queue for a decided cell. Best effort: the
// ledger already suppresses the candidate either way.
func (e *Engine) purge(ctx context.Context, fundID string, s model.Suggestion) {
	n, err := e.store.PurgeServiceCandidates(ctx, fundID, s.RowID, s.ColumnID)
	if err != nil {
		zap.L().Warn("service queue purge failed",
			zap.String("fund_id", fundID),
			zap.String("row_id", s.RowID),
			zap.String("column_id", s.ColumnID),
			zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Debug("purged service candidates",
			zap.String("fund_id", fundID), zap.Int("count", n))
	}
}

// AddServiceCandidate queues an externally-computed candidate for the next
// reconciliation run.
func (e *Engine) AddServiceCandidate(ctx context.Context, fundID string, c model.ServiceCandidate) error {
	if fundID == "" {
		return ErrMissingFund
	}
	if e.store == nil {
		return ErrNoStore
	}
	return e.store.UpsertServiceCandidate(ctx, fundID, c)
}

// ImportDocuments stores a batch of extracted documents for a fund.
func (e *Engine) ImportDocuments(ctx context.Context, fundID string, docs []model.Document) (int, error) {
	if fundID == "" {
		return 0, ErrMissingFund
	}
	if e.store == nil {
		return 0, ErrNoStore
	}
	return e.store.ImportDocuments(ctx, fundID, docs)
}
