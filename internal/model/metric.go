package model

import "strings"

// Metric is the static configuration for one logical metric column:
// ordered extraction paths, a validator, and per-metric change behavior.
// Loaded once at startup; never mutated.
type Metric struct {
	Key   string
	Label string
	// Paths are "section.key" lookups tried in declared order against a
	// document's extracted tree.
	Paths    []string
	Validate Validator
	// Threshold is the relative change threshold; zero means an absolute
	// delta of at least 1 (month/headcount-like integral metrics).
	Threshold  float64
	HighImpact bool
	// Percentish metrics format as percentages in reasoning strings.
	Percentish bool
	// Money metrics format with a currency prefix.
	Money bool
}

// explicitSections are the tree sections whose values count as explicit
// financial data for the confidence bonus.
var explicitSections = map[string]bool{
	"financials": true,
	"metrics":    true,
	"kpis":       true,
}

// extrapolatedSections hold projected rather than stated values.
var extrapolatedSections = map[string]bool{
	"projections": true,
	"forecast":    true,
	"estimates":   true,
}

// ExplicitPath reports whether a matched extraction path counts as an
// explicit financial field.
func ExplicitPath(path string) bool {
	return explicitSections[pathSection(path)]
}

// ExtrapolatedPath reports whether a matched path holds extrapolated data.
func ExtrapolatedPath(path string) bool {
	return extrapolatedSections[pathSection(path)]
}

func pathSection(path string) string {
	if idx := strings.Index(path, "."); idx > 0 {
		return path[:idx]
	}
	return path
}

// MetricRegistry is an indexed, immutable collection of metrics.
type MetricRegistry struct {
	Metrics []Metric
	byKey   map[string]*Metric
}

// NewMetricRegistry indexes the given metrics by key.
func NewMetricRegistry(metrics []Metric) *MetricRegistry {
	r := &MetricRegistry{
		Metrics: metrics,
		byKey:   make(map[string]*Metric, len(metrics)),
	}
	for i := range r.Metrics {
		r.byKey[r.Metrics[i].Key] = &r.Metrics[i]
	}
	return r
}

// ByKey returns the metric for the given key, or nil.
func (r *MetricRegistry) ByKey(key string) *Metric {
	return r.byKey[key]
}

// HighImpactSet returns the keys of high-impact metrics for ranking.
func (r *MetricRegistry) HighImpactSet() map[string]bool {
	set := make(map[string]bool)
	for _, m := range r.Metrics {
		if m.HighImpact {
			set[m.Key] = true
		}
	}
	return set
}

// DefaultMetrics returns the shipped metric registry.
func DefaultMetrics() *MetricRegistry {
	return NewMetricRegistry([]Metric{
		{
			Key:   "arr",
			Label: "ARR",
			Paths: []string{
				"financials.arr", "metrics.arr", "kpis.annual_recurring_revenue",
				"financials.annual_recurring_revenue", "projections.arr",
			},
			Validate:   BoundedNumber(0, 1e12),
			Threshold:  0.01,
			HighImpact: true,
			Money:      true,
		},
		{
			Key:   "burnRate",
			Label: "Burn Rate",
			Paths: []string{
				"financials.burn_rate", "metrics.burn_rate", "financials.monthly_burn",
				"kpis.net_burn",
			},
			Validate:   BoundedNumber(0, 1e12),
			Threshold:  0.05,
			HighImpact: true,
			Money:      true,
		},
		{
			Key:   "runway",
			Label: "Runway",
			Paths: []string{
				"financials.runway", "metrics.runway_months", "kpis.runway",
				"projections.runway",
			},
			Validate:   BoundedNumber(0, 240),
			Threshold:  0,
			HighImpact: true,
		},
		{
			Key:   "cashInBank",
			Label: "Cash in Bank",
			Paths: []string{
				"financials.cash_in_bank", "financials.cash", "metrics.cash_balance",
				"kpis.cash",
			},
			Validate:  BoundedNumber(0, 1e12),
			Threshold: 0.02,
			Money:     true,
		},
		{
			Key:   "headcount",
			Label: "Headcount",
			Paths: []string{
				"team.headcount", "metrics.headcount", "team.employees",
				"kpis.fte_count",
			},
			Validate:  BoundedNumber(0, 1e5),
			Threshold: 0,
		},
		{
			Key:   "grossMargin",
			Label: "Gross Margin",
			Paths: []string{
				"financials.gross_margin", "metrics.gross_margin", "kpis.gm_pct",
			},
			Validate:   RatioOrPercent(),
			Threshold:  0.02,
			HighImpact: true,
			Percentish: true,
		},
		{
			Key:   "revenueGrowthAnnual",
			Label: "Revenue Growth",
			Paths: []string{
				"financials.revenue_growth", "metrics.yoy_growth", "kpis.growth_rate",
				"projections.revenue_growth",
			},
			Validate:   GrowthRate(1000),
			Threshold:  0.05,
			HighImpact: true,
			Percentish: true,
		},
		{
			Key:   "valuation",
			Label: "Valuation",
			Paths: []string{
				"financials.valuation", "funding.valuation", "funding.post_money",
				"metrics.valuation",
			},
			Validate:   BoundedNumber(0, 1e13),
			Threshold:  0.05,
			HighImpact: true,
			Money:      true,
		},
		{
			Key:   "customers",
			Label: "Customers",
			Paths: []string{
				"metrics.customers", "kpis.customer_count", "sales.active_customers",
			},
			Validate:  BoundedNumber(0, 1e7),
			Threshold: 0,
		},
		{
			Key:   "notes",
			Label: "Notes",
			Paths: []string{
				"summary.notes", "summary.overview",
			},
			Validate:  BoundedString(500),
			Threshold: 0,
		},
	})
}
