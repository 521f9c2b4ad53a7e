package merge

import "github.com/sells-group/suggest-cli/internal/model"

// payloadKind distinguishes the two shapes a service value can take.
type payloadKind int

const (
	payloadAbsolute payloadKind = iota
	payloadDelta
)

// Payload is the tagged form of a service candidate's value: either an
// absolute replacement or a delta to add to the current value. Deltas are
// resolved against the snapshot at merge time, not at generation time, so
// staleness is minimized.
type Payload struct {
	kind  payloadKind
	value any
	delta float64
}

// Absolute wraps a replacement value.
func Absolute(v any) Payload {
	return Payload{kind: payloadAbsolute, value: v}
}

// Delta wraps an increment.
func Delta(d float64) Payload {
	return Payload{kind: payloadDelta, delta: d}
}

// wrapperKeys are the object keys services wrap values under.
var wrapperKeys = []string{"value", "fair_value", "amount", "suggested_value"}

// ParsePayload normalizes the raw queue payload. Returns false when no
// usable value can be found.
func ParsePayload(raw any) (Payload, bool) {
	switch t := raw.(type) {
	case nil:
		return Payload{}, false
	case map[string]any:
		if d, ok := t["delta"]; ok {
			f, ok := model.ToFloat(d)
			if !ok || f == 0 {
				return Payload{}, false
			}
			return Delta(f), true
		}
		for _, k := range wrapperKeys {
			if v, ok := t[k]; ok && !model.IsEmptyValue(v) {
				return Absolute(v), true
			}
		}
		return Payload{}, false
	default:
		if model.IsEmptyValue(raw) {
			return Payload{}, false
		}
		return Absolute(raw), true
	}
}

// Resolve produces the concrete suggested value. A delta without a present
// numeric current value cannot resolve and the candidate is dropped.
func (p Payload) Resolve(current any) (any, bool) {
	switch p.kind {
	case payloadDelta:
		cur, ok := model.ToFloat(current)
		if !ok {
			return nil, false
		}
		return cur + p.delta, true
	default:
		if model.IsEmptyValue(p.value) {
			return nil, false
		}
		return p.value, true
	}
}
