// Package filter decides whether a resolved value is worth suggesting:
// different enough from the current grid value, and plausible for its
// metric.
package filter

import (
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/suggest-cli/internal/model"
)

// IsChanged reports whether a candidate value differs enough from the
// current cell value to surface. An absent current value is always a
// change (a "new" suggestion). Strings compare case- and
// whitespace-insensitively. For numbers a zero threshold means an absolute
// delta of at least 1; otherwise the delta must exceed
// threshold * max(1, |current|).
func IsChanged(current, candidate any, threshold float64) bool {
	if model.IsEmptyValue(current) {
		return true
	}

	curNum, curOK := model.ToFloat(current)
	candNum, candOK := model.ToFloat(candidate)
	if curOK && candOK {
		delta := math.Abs(candNum - curNum)
		if threshold == 0 {
			return delta >= 1
		}
		return delta > threshold*math.Max(1, math.Abs(curNum))
	}

	return normalize(current) != normalize(candidate)
}

// normalize collapses whitespace and case so "Series B " equals "series b".
func normalize(v any) string {
	switch t := v.(type) {
	case string:
		return strings.ToLower(strings.Join(strings.Fields(t), " "))
	case nil:
		return ""
	default:
		if f, ok := model.ToFloat(v); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return ""
	}
}
