package export

import (
	"encoding/json"
	"math"
	"time"
)

// millisThreshold separates the two units exports use for epoch timestamps.
// Magnitudes at or above it are milliseconds, anything smaller is seconds.
const millisThreshold = 1e12

// maxMillis is the largest instant magnitude accepted, ±100,000,000 days
// from the epoch. Anything beyond it is unknown.
const maxMillis = 8.64e15

// isoLayout matches the millisecond-precision UTC form the exports use elsewhere.
const isoLayout = "2006-01-02T15:04:05.000Z"

// ToInstant converts an export timestamp of unknown unit into a UTC instant.
// Zero, missing, non-finite, non-numeric and out-of-range values yield the
// zero time, which callers treat as unknown.
func ToInstant(v any) time.Time {
	f, ok := toFloat(v)
	if !ok || f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}
	}

	ms := f
	if math.Abs(f) < millisThreshold {
		ms = f * 1000
	}
	if math.Abs(ms) > maxMillis {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms)).UTC()
}

// FormatInstant renders an instant for output documents; unknown renders as "".
func FormatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoLayout)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
