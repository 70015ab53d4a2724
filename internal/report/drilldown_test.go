package report

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFleetDrillDown verifies the root level: fleet totals with one item per
// carlist and contribution shares relative to the fleet total. Because of
// carlist fan-out, contributions may sum past 100%.
func TestFleetDrillDown(t *testing.T) {
	result, err := FleetDrillDown(buildTestRows(t))
	require.NoError(t, err)

	assert.Equal(t, DrillLevelFleet, result.Level)
	assert.InDelta(t, 234.80, result.RealKg, 1e-9)
	require.Len(t, result.Items, 2)

	city := result.Items[0]
	assert.Equal(t, "City", city.Label)
	// City holds both vehicles, so its share is the whole fleet.
	assert.InDelta(t, 100.00, city.ContributionPercent, 1e-9)
	assert.Equal(t, 2, city.ChildCount)

	highway := result.Items[1]
	assert.Equal(t, "Highway", highway.Label)
	// 132.00 / 234.80 × 100
	assert.InDelta(t, 56.22, highway.ContributionPercent, 0.01)
	assert.Equal(t, 1, highway.ChildCount)
}

// TestCarlistDrillDown verifies the middle level: one carlist's vehicles with
// shares of the carlist total and no further children.
func TestCarlistDrillDown(t *testing.T) {
	result, err := CarlistDrillDown(buildTestRows(t), carlistCityID)
	require.NoError(t, err)

	assert.Equal(t, DrillLevelCarlist, result.Level)
	assert.Equal(t, "10", result.ParentKey)
	assert.InDelta(t, 234.80, result.RealKg, 1e-9)
	require.Len(t, result.Items, 2)

	var shares float64
	for _, item := range result.Items {
		shares += item.ContributionPercent
		assert.Zero(t, item.ChildCount)
	}
	// No fan-out at vehicle level: shares partition the carlist total.
	assert.InDelta(t, 100.0, shares, 0.02)
}

// TestCarlistDrillDown_NotFound verifies drilling into a carlist with no
// member rows fails with a sentinel error.
func TestCarlistDrillDown_NotFound(t *testing.T) {
	_, err := CarlistDrillDown(buildTestRows(t), 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCarlistNotFound)
}

// TestFleetDrillDown_ZeroTotal verifies contribution percentages stay 0 when
// the parent total is 0.
func TestFleetDrillDown_ZeroTotal(t *testing.T) {
	snap := testSnapshot()
	snap.FuelRecords = nil
	snap.Odometer = nil

	rows, err := NewRowBuilder(zerolog.Nop()).Build(snap, testRequest())
	require.NoError(t, err)

	result, err := FleetDrillDown(rows)
	require.NoError(t, err)
	assert.Zero(t, result.RealKg)
	for _, item := range result.Items {
		assert.Zero(t, item.ContributionPercent)
	}
}
