package report

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/fleetco2/internal/emissions"
)

func findGroup(t *testing.T, groups []Aggregation, key string) Aggregation {
	t.Helper()
	for _, g := range groups {
		if g.Key == key {
			return g
		}
	}
	t.Fatalf("no group with key %s", key)
	return Aggregation{}
}

// TestAggregate_FleetTotals verifies the fleet-wide sums and the delta
// semantics of the reference scenario.
func TestAggregate_FleetTotals(t *testing.T) {
	groups, err := Aggregate(buildTestRows(t), DimensionFleet)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	fleet := groups[0]
	assert.Equal(t, "Fleet", fleet.Label)
	assert.Equal(t, 2, fleet.VehicleCount)
	assert.InDelta(t, 1500.0, fleet.TotalKm, 1e-9)
	assert.InDelta(t, 150.00, fleet.TheoreticalKg, 1e-9)
	assert.InDelta(t, 234.80, fleet.RealKg, 1e-9)
	assert.InDelta(t, 84.80, fleet.DeltaKg, 1e-9)
	// 84.80 / 150.00 × 100
	assert.InDelta(t, 56.53, fleet.DeltaPercent, 0.01)
	// 234.8 kg over 1500 km → 156.53 g/km
	assert.InDelta(t, 156.53, fleet.RealGramsPerKm, 0.01)
}

// TestAggregate_VehicleDelta verifies the per-vehicle deltas of the diesel
// scenario: real 132.00 vs theoretical 120.00 → +12.00 / +10.00%.
func TestAggregate_VehicleDelta(t *testing.T) {
	groups, err := Aggregate(buildTestRows(t), DimensionVehicle)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	diesel := findGroup(t, groups, "1")
	assert.Equal(t, "AB-123-CD", diesel.Label)
	assert.InDelta(t, 12.00, diesel.DeltaKg, 1e-9)
	assert.InDelta(t, 10.00, diesel.DeltaPercent, 1e-9)
	assert.InDelta(t, 125.0, diesel.WltpGramsPerKm, 1e-9)
	assert.InDelta(t, 118.0, diesel.NedcGramsPerKm, 1e-9)
}

// TestAggregate_CarlistFanOut verifies a vehicle in two carlists contributes
// its full emissions to both groups, not a split.
func TestAggregate_CarlistFanOut(t *testing.T) {
	groups, err := Aggregate(buildTestRows(t), DimensionCarlist)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	city := findGroup(t, groups, "10")
	highway := findGroup(t, groups, "20")

	// Highway holds vehicle 1 only; city holds both.
	assert.InDelta(t, 132.00, highway.RealKg, 1e-9)
	assert.InDelta(t, 234.80, city.RealKg, 1e-9)
	assert.Equal(t, 1, highway.VehicleCount)
	assert.Equal(t, 2, city.VehicleCount)

	// Sorted by label: City before Highway.
	assert.Equal(t, "City", groups[0].Label)
	assert.Equal(t, "Highway", groups[1].Label)
}

// TestAggregate_ScopeBreakdowns verifies per-scope merging with per-gas
// totals.
func TestAggregate_ScopeBreakdowns(t *testing.T) {
	groups, err := Aggregate(buildTestRows(t), DimensionFleet)
	require.NoError(t, err)
	fleet := groups[0]

	require.Len(t, fleet.Scopes, 2)
	assert.Equal(t, emissions.ScopeCombustion, fleet.Scopes[0].Scope)
	assert.InDelta(t, 184.80, fleet.Scopes[0].RealKg, 1e-9) // 132.00 + 52.80
	assert.Equal(t, emissions.ScopeElectricity, fleet.Scopes[1].Scope)
	assert.InDelta(t, 50.00, fleet.Scopes[1].RealKg, 1e-9)

	assert.InDelta(t, 234.80, fleet.PerGas[emissions.GasCO2], 1e-9)
}

// TestAggregate_PeriodDimension verifies period grouping keys and ascending
// label-sorted output.
func TestAggregate_PeriodDimension(t *testing.T) {
	groups, err := Aggregate(buildTestRows(t), DimensionPeriod)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	jan := findGroup(t, groups, "2025-01")
	assert.InDelta(t, 234.80, jan.RealKg, 1e-9)
	assert.Zero(t, findGroup(t, groups, "2025-02").RealKg)
}

// TestAggregate_PerformanceClassification verifies deviation against the
// fleet average: vehicle 1 at 132 g/km is good, vehicle 2 at 205.6 g/km is
// poor (average 156.53).
func TestAggregate_PerformanceClassification(t *testing.T) {
	groups, err := Aggregate(buildTestRows(t), DimensionVehicle)
	require.NoError(t, err)

	diesel := findGroup(t, groups, "1")
	hybrid := findGroup(t, groups, "2")

	assert.Equal(t, PerformanceGood, diesel.Performance)
	assert.Negative(t, diesel.DeviationPercent)
	assert.Equal(t, PerformancePoor, hybrid.Performance)
	assert.Positive(t, hybrid.DeviationPercent)
}

// TestAggregate_FuelTypeDimension verifies hybrid shares split by macro fuel
// type: the electricity group carries only the scope-2 emissions, with
// distance attributed to the combustion group.
func TestAggregate_FuelTypeDimension(t *testing.T) {
	groups, err := Aggregate(buildTestRows(t), DimensionFuelType)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	diesel := findGroup(t, groups, "Diesel")
	electricity := findGroup(t, groups, "Electricity")

	assert.InDelta(t, 184.80, diesel.RealKg, 1e-9)
	assert.InDelta(t, 50.00, electricity.RealKg, 1e-9)
	assert.InDelta(t, 1500.0, diesel.TotalKm, 1e-9)
	assert.Zero(t, electricity.TotalKm)
}

// TestAggregate_ZeroDenominators verifies every ratio guards division by
// zero: no activity means zeros, never NaN.
func TestAggregate_ZeroDenominators(t *testing.T) {
	snap := testSnapshot()
	snap.FuelRecords = nil
	snap.Odometer = nil

	rows, err := NewRowBuilder(zerolog.Nop()).Build(snap, testRequest())
	require.NoError(t, err)

	groups, err := Aggregate(rows, DimensionFleet)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	fleet := groups[0]
	assert.Zero(t, fleet.RealKg)
	assert.Zero(t, fleet.DeltaPercent)
	assert.Zero(t, fleet.RealGramsPerKm)
	assert.Zero(t, fleet.DeviationPercent)
	assert.Equal(t, PerformanceNeutral, fleet.Performance)
}

// TestFuelTypeBreakdown verifies percentage shares sum to 100 when the total
// is positive and carry the macro type colors.
func TestFuelTypeBreakdown(t *testing.T) {
	entries := FuelTypeBreakdown(buildTestRows(t))
	require.Len(t, entries, 2)

	// Sorted by share descending.
	assert.Equal(t, "Diesel", entries[0].FuelType)
	assert.Equal(t, "#8884d8", entries[0].Color)
	assert.InDelta(t, 184.80, entries[0].RealKg, 1e-9)

	var totalPercent float64
	for _, e := range entries {
		totalPercent += e.Percent
	}
	assert.InDelta(t, 100.0, totalPercent, 0.02)
}

// TestFuelTypeBreakdown_ZeroTotal verifies all-zero percentages when nothing
// was emitted.
func TestFuelTypeBreakdown_ZeroTotal(t *testing.T) {
	snap := testSnapshot()
	snap.FuelRecords = nil
	snap.Odometer = nil

	rows, err := NewRowBuilder(zerolog.Nop()).Build(snap, testRequest())
	require.NoError(t, err)

	for _, e := range FuelTypeBreakdown(rows) {
		assert.Zero(t, e.Percent)
	}
}

// TestParseDimension verifies round-tripping every variant and the unknown
// error.
func TestParseDimension(t *testing.T) {
	for _, d := range []Dimension{DimensionFleet, DimensionVehicle, DimensionCarlist, DimensionFuelType, DimensionPeriod} {
		parsed, err := ParseDimension(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}

	_, err := ParseDimension("region")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownDimension)
}
