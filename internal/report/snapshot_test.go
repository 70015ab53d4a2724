package report

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/fleetco2/internal/emissions"
	"github.com/rshade/fleetco2/internal/store"
)

func memoryStoreFromSnapshot(snap *Snapshot) *store.MemoryStore {
	return &store.MemoryStore{
		VehicleRows:    snap.Vehicles,
		FuelRows:       snap.FuelRecords,
		OdometerRows:   snap.Odometer,
		MembershipRows: snap.Memberships,
		Tables:         snap.Tables,
		TargetRows:     snap.Targets,
	}
}

// TestLoadSnapshot verifies the concurrent bulk load assembles a complete
// snapshot scoped to the request range.
func TestLoadSnapshot(t *testing.T) {
	st := memoryStoreFromSnapshot(testSnapshot())
	// One fuel record outside the range must be filtered out.
	st.FuelRows = append(st.FuelRows, emissions.FuelRecord{
		VehicleID: 1, Date: day(2024, time.June, 1), FuelCode: "D1", QuantityLiters: 999,
	})

	snap, err := LoadSnapshot(context.Background(), st, testRequest())
	require.NoError(t, err)

	assert.Len(t, snap.Vehicles, 3)
	assert.Len(t, snap.FuelRecords, 3)
	assert.Len(t, snap.Odometer, 4)
	assert.Len(t, snap.Memberships, 3)
	assert.Len(t, snap.Tables.Mappings, 3)
}

// TestLoadSnapshot_InvalidRange verifies an inverted range fails before any
// read.
func TestLoadSnapshot_InvalidRange(t *testing.T) {
	req := testRequest()
	req.From, req.To = req.To, req.From

	_, err := LoadSnapshot(context.Background(), memoryStoreFromSnapshot(testSnapshot()), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, emissions.ErrInvalidRange)
}

// failingStore fails one read to exercise error propagation.
type failingStore struct {
	*store.MemoryStore
}

func (f *failingStore) FuelRecords(context.Context, time.Time, time.Time) ([]emissions.FuelRecord, error) {
	return nil, assert.AnError
}

// TestLoadSnapshot_StoreFailure verifies a failing bulk read fails the whole
// request.
func TestLoadSnapshot_StoreFailure(t *testing.T) {
	st := &failingStore{MemoryStore: memoryStoreFromSnapshot(testSnapshot())}

	_, err := LoadSnapshot(context.Background(), st, testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestRequest_Reference verifies the factor reference date defaults to the
// range midpoint and honors an explicit override.
func TestRequest_Reference(t *testing.T) {
	req := testRequest()
	assert.Equal(t, day(2025, time.February, 14), req.Reference())

	req.ReferenceDate = day(2025, time.March, 1)
	assert.Equal(t, day(2025, time.March, 1), req.Reference())
}

// TestEngine_EndToEnd runs every engine operation against the in-memory
// store.
func TestEngine_EndToEnd(t *testing.T) {
	snap := testSnapshot()
	snap.Targets = []emissions.EmissionTarget{{
		ID: 1, Scope: emissions.TargetScopeFleet, TargetKg: 1000,
		Period:    emissions.TargetPeriodAnnual,
		StartDate: day(2025, time.January, 1), EndDate: day(2026, time.January, 1),
	}}
	engine := NewEngine(memoryStoreFromSnapshot(snap), zerolog.Nop())
	ctx := context.Background()
	req := testRequest()

	groups, err := engine.Aggregations(ctx, req, DimensionCarlist)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	points, err := engine.TimeSeries(ctx, req)
	require.NoError(t, err)
	assert.Len(t, points, 3)

	breakdown, err := engine.Breakdown(ctx, req)
	require.NoError(t, err)
	assert.Len(t, breakdown, 2)

	progress, err := engine.TargetProgressAll(ctx, req, day(2025, time.April, 1))
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, TargetOnTrack, progress[0].Status)

	root, err := engine.DrillDown(ctx, req, 0)
	require.NoError(t, err)
	assert.Equal(t, DrillLevelFleet, root.Level)

	level, err := engine.DrillDown(ctx, req, carlistCityID)
	require.NoError(t, err)
	assert.Equal(t, DrillLevelCarlist, level.Level)
	assert.Len(t, level.Items, 2)
}
