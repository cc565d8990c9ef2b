package domain

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeProgress converts a stored progress value to a 0..1 fraction.
// Values above 1 are read as percentages. The result is clamped to [0, 1].
func NormalizeProgress(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v > 1 {
		v /= 100
	}
	return math.Max(0, math.Min(1, v))
}

// ParseProgress reads a progress value from loosely typed input: numbers are
// taken as-is, strings may carry a percent sign or a decimal comma.
// It reports false when the value cannot be read as a number.
func ParseProgress(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		return ParseProgress(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(v, "%", ""), ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return ParseProgress(f)
	default:
		return 0, false
	}
}

// RoundProgress rounds a fraction to 4 decimal places.
func RoundProgress(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
