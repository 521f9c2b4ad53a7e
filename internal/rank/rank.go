// Package rank orders surviving suggestions by a composite score.
package rank

import (
	"math"
	"sort"
	"time"

	"github.com/sells-group/suggest-cli/internal/model"
)

const (
	recencyWeight    = 0.15
	recencyWindow    = 30 // days
	highImpactBoost  = 0.10
	correctionBoost  = 0.20
	serviceTrustEdge = 0.05
)

// Options parameterize a ranking pass.
type Options struct {
	Now time.Time
	// HighImpact is the set of metric keys that get the importance boost.
	HighImpact map[string]bool
}

// Rank computes each suggestion's composite score and returns a new slice
// sorted descending. Ties preserve input order.
func Rank(suggestions []model.Suggestion, opts Options) []model.Suggestion {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	out := make([]model.Suggestion, len(suggestions))
	copy(out, suggestions)
	for i := range out {
		out[i].Score = Score(out[i], opts)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Score is the additive composite: confidence, recency boost, metric
// importance, correction flag, provenance trust.
func Score(s model.Suggestion, opts Options) float64 {
	score := s.Confidence

	if !s.CreatedAt.IsZero() {
		days := opts.Now.Sub(s.CreatedAt).Hours() / 24
		score += recencyWeight * math.Max(0, 1-days/recencyWindow)
	}
	if opts.HighImpact[s.ColumnID] {
		score += highImpactBoost
	}
	if s.Correction {
		score += correctionBoost
	}
	if s.Provenance == model.ProvenanceService {
		score += serviceTrustEdge
	}
	return score
}
