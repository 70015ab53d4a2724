package report

import (
	"sort"

	"github.com/rshade/fleetco2/internal/emissions"
)

// TimeSeriesPoint is one period of the theoretical-vs-real series.
type TimeSeriesPoint struct {
	PeriodKey     string
	PeriodLabel   string
	TheoreticalKg float64
	RealKg        float64
	DeltaKg       float64
}

// BuildTimeSeries collapses rows into a chronological theoretical-vs-real
// series, one point per period key, sorted ascending. No cross-period
// averaging is applied.
func BuildTimeSeries(rows []Row) []TimeSeriesPoint {
	type sums struct {
		label         string
		theoreticalKg float64
		realKg        float64
	}
	byPeriod := make(map[string]*sums)
	for _, row := range rows {
		s, ok := byPeriod[row.Period.Key]
		if !ok {
			s = &sums{label: row.Period.Label}
			byPeriod[row.Period.Key] = s
		}
		s.theoreticalKg += row.TheoreticalKg
		s.realKg += row.RealKg
	}

	points := make([]TimeSeriesPoint, 0, len(byPeriod))
	for key, s := range byPeriod {
		theoretical := emissions.Round2(s.theoreticalKg)
		actual := emissions.Round2(s.realKg)
		points = append(points, TimeSeriesPoint{
			PeriodKey:     key,
			PeriodLabel:   s.label,
			TheoreticalKg: theoretical,
			RealKg:        actual,
			DeltaKg:       emissions.Round2(actual - theoretical),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].PeriodKey < points[j].PeriodKey })
	return points
}
