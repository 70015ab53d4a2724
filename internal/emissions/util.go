package emissions

import (
	"math"
	"time"
)

// Round2 rounds a value to 2 decimal places. Applied at every aggregation
// boundary; rounding an already-rounded value is a no-op.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DateOnly truncates a timestamp to midnight UTC of its calendar day. Period
// membership and validity-window checks compare calendar days, not clock
// times.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
