package reason

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/suggest-cli/internal/model"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatValue renders a metric value the way a reviewer expects to read
// it: money with separators, ratios as percentages, counts as plain
// integers.
func FormatValue(m *model.Metric, v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	f, ok := model.ToFloat(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}

	switch {
	case m != nil && m.Percentish:
		if f <= 1 && f >= -1 {
			return printer.Sprintf("%.0f%%", f*100)
		}
		return printer.Sprintf("%.0f%%", f)
	case m != nil && m.Money:
		return printer.Sprintf("$%.0f", f)
	case f == math.Trunc(f):
		return printer.Sprintf("%.0f", f)
	default:
		return printer.Sprintf("%.2f", f)
	}
}

// pctChange renders a signed percent delta like "+20%" when both values
// are numeric and the current value is nonzero.
func pctChange(current, suggested any) (string, bool) {
	cur, curOK := model.ToFloat(current)
	next, nextOK := model.ToFloat(suggested)
	if !curOK || !nextOK || cur == 0 {
		return "", false
	}
	pct := (next - cur) / math.Abs(cur) * 100
	return printer.Sprintf("%+.0f%%", pct), true
}
