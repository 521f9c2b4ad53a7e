// Package inference derives secondary suggestions from text patterns in a
// document's free-text context. Derived candidates always carry lower
// confidence than a direct extraction and never displace one for the same
// cell.
package inference

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/suggest-cli/internal/model"
)

// Derived is one rule-produced candidate value plus the quote that
// triggered it.
type Derived struct {
	MetricKey  string
	Value      float64
	Quote      string
	Confidence float64
}

// RowValues holds the current grid values the rules resolve against.
type RowValues struct {
	ARR        float64
	HasARR     bool
	BurnRate   float64
	HasBurn    bool
	CashInBank float64
	HasCash    bool
	Headcount  float64
	HasHead    bool
}

// RowValuesFrom extracts the rule inputs from a row's current cell values.
func RowValuesFrom(rowValues map[string]any) RowValues {
	var rv RowValues
	if f, ok := model.ToFloat(rowValues["arr"]); ok && f > 0 {
		rv.ARR, rv.HasARR = f, true
	}
	if f, ok := model.ToFloat(rowValues["burnRate"]); ok && f > 0 {
		rv.BurnRate, rv.HasBurn = f, true
	}
	if f, ok := model.ToFloat(rowValues["cashInBank"]); ok && f > 0 {
		rv.CashInBank, rv.HasCash = f, true
	}
	if f, ok := model.ToFloat(rowValues["headcount"]); ok && f > 0 {
		rv.Headcount, rv.HasHead = f, true
	}
	return rv
}

const (
	// perHireCost is the flat loaded monthly cost assumed per new hire.
	perHireCost = 20000
	// defaultChurnPct applies when a top-customer loss states no percentage.
	defaultChurnPct = 0.30
	// runwayMaxMonths caps derived runway; anything longer is noise.
	runwayMaxMonths = 120
)

var (
	hiringRe       = regexp.MustCompile(`(?i)\b(?:hired|welcomed|onboarded|brought on)\s+(\d+)\b`)
	newHiresRe     = regexp.MustCompile(`(?i)\b(\d+)\s+new\s+hires?\b`)
	lostCustomerRe = regexp.MustCompile(`(?i)\blost\s+(?:our\s+|their\s+|its\s+|the\s+)?(?:largest|biggest|top)\s+customer\b`)
	churnPctRe     = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)%\s+of\s+(?:arr|revenue)\s+churned\b`)
	raisedRe       = regexp.MustCompile(`(?i)\braised\s+\$(\d+(?:\.\d+)?)\s*([bmk]|billion|million|thousand)?\b`)
	costCutRe      = regexp.MustCompile(`(?i)\b(?:cut|reduced|lowered)\s+(?:costs?|burn|expenses|spend(?:ing)?)\s+by\s+(\d+(?:\.\d+)?)\s*%`)
)

// Run applies the fixed rule set to a document's free-text context and
// returns at most one derived candidate per metric.
func Run(ctx model.ContextText, row RowValues) []Derived {
	text := rawBlob(ctx)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []Derived
	seen := make(map[string]bool)
	add := func(d Derived) {
		if seen[d.MetricKey] {
			return
		}
		seen[d.MetricKey] = true
		if d.Confidence < 0.35 {
			d.Confidence = 0.35
		}
		if d.Confidence > 0.45 {
			d.Confidence = 0.45
		}
		out = append(out, d)
	}

	// Hiring: each mention adds headcount and, when burn is known, a flat
	// per-hire loaded cost.
	if count, quote := hireCount(text); count > 0 {
		if row.HasHead {
			add(Derived{
				MetricKey:  "headcount",
				Value:      row.Headcount + float64(count),
				Quote:      quote,
				Confidence: 0.40,
			})
		}
		if row.HasBurn {
			add(Derived{
				MetricKey:  "burnRate",
				Value:      row.BurnRate + float64(count)*perHireCost,
				Quote:      quote,
				Confidence: 0.38,
			})
		}
	}

	// Customer loss: explicit churn percentage, or the default haircut for
	// a stated top-customer loss.
	if row.HasARR {
		if m := churnPctRe.FindStringSubmatch(text); m != nil {
			if pct, err := strconv.ParseFloat(m[1], 64); err == nil && pct > 0 && pct < 100 {
				add(Derived{
					MetricKey:  "arr",
					Value:      row.ARR * (1 - pct/100),
					Quote:      m[0],
					Confidence: 0.40,
				})
			}
		} else if m := lostCustomerRe.FindString(text); m != "" {
			add(Derived{
				MetricKey:  "arr",
				Value:      row.ARR * (1 - defaultChurnPct),
				Quote:      m,
				Confidence: 0.38,
			})
		}
	}

	// Fundraise: cash goes up by the raised amount; when burn is known a
	// runway estimate follows.
	if m := raisedRe.FindStringSubmatch(text); m != nil {
		if raised, ok := parseAmount(m[1], m[2]); ok {
			newCash := raised
			if row.HasCash {
				newCash = row.CashInBank + raised
			}
			add(Derived{
				MetricKey:  "cashInBank",
				Value:      newCash,
				Quote:      m[0],
				Confidence: 0.45,
			})
			if row.HasBurn {
				months := math.Round(newCash / row.BurnRate)
				if months > 0 && months <= runwayMaxMonths {
					add(Derived{
						MetricKey:  "runway",
						Value:      months,
						Quote:      m[0],
						Confidence: 0.42,
					})
				}
			}
		}
	}

	// Cost reduction.
	if row.HasBurn {
		if m := costCutRe.FindStringSubmatch(text); m != nil {
			if pct, err := strconv.ParseFloat(m[1], 64); err == nil && pct > 0 && pct < 100 {
				add(Derived{
					MetricKey:  "burnRate",
					Value:      row.BurnRate * (1 - pct/100),
					Quote:      m[0],
					Confidence: 0.40,
				})
			}
		}
	}

	return out
}

// hireCount sums hire mentions across the hiring patterns and returns the
// first matched quote for attribution.
func hireCount(text string) (int, string) {
	total := 0
	quote := ""
	for _, re := range []*regexp.Regexp{hiringRe, newHiresRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n <= 0 || n > 1000 {
				continue
			}
			total += n
			if quote == "" {
				quote = m[0]
			}
		}
	}
	return total, quote
}

// parseAmount converts "5" + "m" style captures into dollars.
func parseAmount(num, unit string) (float64, bool) {
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	switch strings.ToLower(unit) {
	case "b", "billion":
		f *= 1e9
	case "m", "million":
		f *= 1e6
	case "k", "thousand":
		f *= 1e3
	}
	return f, true
}

// rawBlob joins the context fields preserving case so quotes read the way
// the author wrote them. Matching is case-insensitive regardless.
func rawBlob(c model.ContextText) string {
	parts := []string{c.Summary, c.Risks, c.Challenges, c.Achievements, c.Updates, c.LatestUpdate}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}
