// Package insight extracts per-document display items (red flags,
// achievements, risks, implications) for the side channel next to the
// ranked suggestions.
package insight

import (
	"strings"
	"unicode/utf8"

	"github.com/sells-group/suggest-cli/internal/model"
)

// keyword groups, scanned in order; the first group that matches a
// sentence classifies it.
var (
	redFlagWords = []string{
		"lost largest", "lost biggest", "lost top", "churned", "lawsuit",
		"down round", "running out of", "missed payroll", "resigned",
	}
	achievementWords = []string{
		"raised $", "closed round", "profitability", "profitable",
		"largest customer signed", "record quarter", "major customer",
	}
	riskWords = []string{
		"risk", "concern", "challenge", "headwind", "uncertain", "slowdown",
	}
	implicationWords = []string{
		"runway", "will need", "expect to", "plan to raise", "burn",
	}
)

const maxInsightLen = 200

// Extract scans a document's free-text context and returns classified
// insights. A sentence yields at most one insight; classification order is
// red flag, achievement, risk, implication.
func Extract(doc model.Document) []model.Insight {
	var out []model.Insight
	seen := make(map[string]bool)

	for _, sentence := range sentences(doc.Context) {
		kind := classify(sentence)
		if kind == "" {
			continue
		}
		text := truncate(sentence, maxInsightLen)
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, model.Insight{
			DocumentID: doc.ID,
			Kind:       kind,
			Text:       text,
		})
	}
	return out
}

func classify(sentence string) string {
	lower := strings.ToLower(sentence)
	for _, w := range redFlagWords {
		if strings.Contains(lower, w) {
			return model.InsightRedFlag
		}
	}
	for _, w := range achievementWords {
		if strings.Contains(lower, w) {
			return model.InsightAchievement
		}
	}
	for _, w := range riskWords {
		if strings.Contains(lower, w) {
			return model.InsightRisk
		}
	}
	for _, w := range implicationWords {
		if strings.Contains(lower, w) {
			return model.InsightImplication
		}
	}
	return ""
}

func sentences(c model.ContextText) []string {
	var out []string
	for _, field := range []string{c.Summary, c.Risks, c.Challenges, c.Achievements, c.Updates, c.LatestUpdate} {
		for _, chunk := range strings.FieldsFunc(field, func(r rune) bool {
			return r == '.' || r == '\n' || r == ';'
		}) {
			if s := strings.TrimSpace(chunk); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// truncate caps s at n runes, never splitting a multi-byte rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
