package model

import (
	"math"
	"strconv"
	"strings"
)

// Validator checks a raw extracted value and returns its normalized form.
// Validators are total: malformed input is a non-match, never a panic, so
// an ordered fallback chain can keep walking.
type Validator func(v any) (any, bool)

// ToFloat coerces numbers and numeric strings (commas and a leading $
// stripped) into a float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		cleaned = strings.TrimPrefix(cleaned, "$")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// BoundedNumber accepts a finite number strictly greater than min and at
// most max. Zero bounds fall back to 0 and 1e12.
func BoundedNumber(min, max float64) Validator {
	if max == 0 {
		max = 1e12
	}
	return func(v any) (any, bool) {
		f, ok := ToFloat(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		if f <= min || f > max {
			return nil, false
		}
		return f, true
	}
}

// RatioOrPercent accepts either a 0-1 fraction or a 0-100 percentage.
// Values above 1 are divided by 100; the result must land in [0, 1].
func RatioOrPercent() Validator {
	return func(v any) (any, bool) {
		f, ok := ToFloat(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		if f > 1 {
			f /= 100
		}
		if f < 0 || f > 1 {
			return nil, false
		}
		return f, true
	}
}

// GrowthRate accepts decimal or percentage growth. Values in [-0.5, 2] are
// treated as decimal and scaled to percent; the result must land in
// [-100, maxPct].
func GrowthRate(maxPct float64) Validator {
	return func(v any) (any, bool) {
		f, ok := ToFloat(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		if f >= -0.5 && f <= 2 {
			f *= 100
		}
		if f < -100 || f > maxPct {
			return nil, false
		}
		return f, true
	}
}

// BoundedString accepts a string that is non-empty after trimming and no
// longer than maxLen (default 200).
func BoundedString(maxLen int) Validator {
	if maxLen <= 0 {
		maxLen = 200
	}
	return func(v any) (any, bool) {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		s = strings.TrimSpace(s)
		if s == "" || len(s) > maxLen {
			return nil, false
		}
		return s, true
	}
}
