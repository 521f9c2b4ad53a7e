package engine

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrNoStore means the engine was built without a persistence layer;
	// callers map it to 503.
	ErrNoStore = eris.New("engine: no store configured")

	// ErrMissingFund means the request omitted the fund scope.
	ErrMissingFund = eris.New("engine: fund id required")

	// ErrDecisionNotRecorded means the grid edit went through but the
	// ledger write failed. The cell holds the new value; the suggestion
	// will reappear on the next run until a retry records the decision.
	ErrDecisionNotRecorded = eris.New("engine: decision not recorded")
)

// ApplyError carries the grid's own rejection of a cell update so the API
// layer can pass the upstream status through instead of masking it.
type ApplyError struct {
	Status string
	Code   int
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("engine: grid rejected cell update: %s (%d)", e.Status, e.Code)
}
