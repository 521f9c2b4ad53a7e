// Package resolver finds metric values in a document's extracted key-path
// tree by walking an ordered list of candidate paths.
package resolver

import (
	"strings"

	"github.com/sells-group/suggest-cli/internal/model"
)

// Resolve walks paths in declared order against the extracted tree and
// returns the first value the validator accepts, along with the path that
// matched. Malformed or missing entries are non-matches; resolution keeps
// walking and never errors.
func Resolve(paths []string, sections map[string]map[string]any, validate model.Validator) (any, string, bool) {
	if len(sections) == 0 || validate == nil {
		return nil, "", false
	}

	for _, path := range paths {
		section, key, ok := splitPath(path)
		if !ok {
			continue
		}
		fields, ok := sections[section]
		if !ok {
			continue
		}
		raw, ok := fields[key]
		if !ok || raw == nil {
			continue
		}
		if v, ok := validate(raw); ok {
			return v, path, true
		}
	}
	return nil, "", false
}

// splitPath splits "section.key" into its two parts. Keys may themselves
// contain dots; only the first separator is structural.
func splitPath(path string) (section, key string, ok bool) {
	idx := strings.Index(path, ".")
	if idx <= 0 || idx == len(path)-1 {
		return "", "", false
	}
	return path[:idx], path[idx+1:], true
}
