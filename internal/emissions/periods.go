package emissions

import (
	"fmt"
	"time"
)

// Granularity selects the calendar alignment of report periods.
type Granularity string

const (
	GranularityMonthly   Granularity = "monthly"
	GranularityQuarterly Granularity = "quarterly"
	GranularityYearly    Granularity = "yearly"
)

// ParseGranularity parses a user-supplied granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityMonthly, GranularityQuarterly, GranularityYearly:
		return Granularity(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// Period is one calendar-aligned, range-clipped reporting bucket. Start and
// End are inclusive calendar days at midnight UTC.
type Period struct {
	Key   string
	Label string
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar day of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// BucketPeriods tiles the inclusive date range [from, to] with
// calendar-aligned periods of the requested granularity. The first and last
// periods are clipped to the range bounds, so the output is contiguous,
// non-overlapping, covers exactly the input range, and is sorted ascending.
func BucketPeriods(from, to time.Time, granularity Granularity) ([]Period, error) {
	from = DateOnly(from)
	to = DateOnly(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s after %s", ErrInvalidRange, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	var periods []Period
	cursor := from
	for !cursor.After(to) {
		alignedEnd, key, label, err := periodEnd(cursor, granularity)
		if err != nil {
			return nil, err
		}

		end := alignedEnd
		if end.After(to) {
			end = to
		}
		periods = append(periods, Period{Key: key, Label: label, Start: cursor, End: end})
		cursor = end.AddDate(0, 0, 1)
	}
	return periods, nil
}

// periodEnd returns the last calendar day of the period containing day, plus
// the period's key and label.
func periodEnd(day time.Time, granularity Granularity) (time.Time, string, string, error) {
	y, m, _ := day.Date()
	switch granularity {
	case GranularityMonthly:
		// First day of next month, minus one day.
		end := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
		return end, fmt.Sprintf("%04d-%02d", y, m), fmt.Sprintf("%s %d", m.String()[:3], y), nil
	case GranularityQuarterly:
		q := (int(m) - 1) / 3
		end := time.Date(y, time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 3, -1)
		return end, fmt.Sprintf("%04d-Q%d", y, q+1), fmt.Sprintf("Q%d %d", q+1, y), nil
	case GranularityYearly:
		end := time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
		return end, fmt.Sprintf("%04d", y), fmt.Sprintf("%d", y), nil
	default:
		return time.Time{}, "", "", fmt.Errorf("%w: %q", ErrUnknownGranularity, granularity)
	}
}
