package filter

import (
	"fmt"

	"github.com/sells-group/suggest-cli/internal/model"
)

// Policy holds the per-metric plausibility bounds. The cross-metric
// multiples are tuning constants, not hard law; operators can adjust them
// per fund stage via config.
type Policy struct {
	MinBurnRate       float64 `yaml:"min_burn_rate" mapstructure:"min_burn_rate"`
	BurnToARRMax      float64 `yaml:"burn_to_arr_max" mapstructure:"burn_to_arr_max"`
	MinARR            float64 `yaml:"min_arr" mapstructure:"min_arr"`
	ValuationToARRMin float64 `yaml:"valuation_to_arr_min" mapstructure:"valuation_to_arr_min"`
	HeadcountMin      float64 `yaml:"headcount_min" mapstructure:"headcount_min"`
	HeadcountMax      float64 `yaml:"headcount_max" mapstructure:"headcount_max"`
	RunwayMaxMonths   float64 `yaml:"runway_max_months" mapstructure:"runway_max_months"`
}

// DefaultPolicy returns the shipped plausibility bounds.
func DefaultPolicy() Policy {
	return Policy{
		MinBurnRate:       5000,
		BurnToARRMax:      2.0,
		MinARR:            1000,
		ValuationToARRMin: 0.5,
		HeadcountMin:      1,
		HeadcountMax:      10000,
		RunwayMaxMonths:   120,
	}
}

// RowContext carries the current row values a cross-metric check needs.
type RowContext struct {
	ARR    float64
	HasARR bool
}

// RowContextFrom extracts the context from a row's current values.
func RowContextFrom(rowValues map[string]any) RowContext {
	var rc RowContext
	if arr, ok := model.ToFloat(rowValues["arr"]); ok && arr > 0 {
		rc.ARR = arr
		rc.HasARR = true
	}
	return rc
}

// Check applies the plausibility bounds for a metric. A failure drops the
// candidate silently upstream; the warning string is only ever logged.
func (p Policy) Check(metricKey string, value any, row RowContext) (bool, string) {
	f, isNum := model.ToFloat(value)

	switch metricKey {
	case "burnRate":
		if !isNum {
			return false, "burn rate is not numeric"
		}
		if f < p.MinBurnRate {
			return false, fmt.Sprintf("burn rate %.0f below plausible floor %.0f", f, p.MinBurnRate)
		}
		if row.HasARR && f > p.BurnToARRMax*row.ARR {
			return false, fmt.Sprintf("burn rate %.0f exceeds %.1fx ARR", f, p.BurnToARRMax)
		}
	case "arr":
		if !isNum {
			return false, "arr is not numeric"
		}
		if f < p.MinARR {
			return false, fmt.Sprintf("arr %.0f below %.0f, not worth surfacing", f, p.MinARR)
		}
	case "valuation":
		if !isNum {
			return false, "valuation is not numeric"
		}
		if row.HasARR && f < p.ValuationToARRMin*row.ARR {
			return false, fmt.Sprintf("valuation %.0f below %.1fx ARR", f, p.ValuationToARRMin)
		}
	case "headcount":
		if !isNum {
			return false, "headcount is not numeric"
		}
		if f < p.HeadcountMin || f > p.HeadcountMax {
			return false, fmt.Sprintf("headcount %.0f outside [%.0f, %.0f]", f, p.HeadcountMin, p.HeadcountMax)
		}
	case "grossMargin":
		if !isNum {
			return false, "gross margin is not numeric"
		}
		if f < 0 || f > 1 {
			return false, fmt.Sprintf("gross margin %.2f outside [0, 1]", f)
		}
	case "runway":
		if !isNum {
			return false, "runway is not numeric"
		}
		if f <= 0 || f > p.RunwayMaxMonths {
			return false, fmt.Sprintf("runway %.0f outside (0, %.0f]", f, p.RunwayMaxMonths)
		}
	}
	return true, ""
}
