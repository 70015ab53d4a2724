package emissions

const (
	// GramsPerKg converts catalog g/km figures into kg totals.
	GramsPerKg = 1000.0

	// PerformanceGoodThreshold is the deviation (percent, relative to the
	// fleet-average real CO2e/km) at or below which a group is classified as
	// performing well.
	PerformanceGoodThreshold = -10.0

	// PerformancePoorThreshold is the deviation (percent) at or above which a
	// group is classified as performing poorly.
	PerformancePoorThreshold = 10.0
)
