package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rshade/fleetco2/internal/store"
)

// Engine runs report requests against a store. Each request loads its own
// snapshot; concurrent requests share nothing mutable.
type Engine struct {
	store  store.Store
	logger zerolog.Logger // immutable (copy-on-write)
}

// NewEngine creates a report engine.
func NewEngine(st store.Store, logger zerolog.Logger) *Engine {
	return &Engine{store: st, logger: logger}
}

// Aggregations loads a snapshot and aggregates it along the requested
// dimension.
func (e *Engine) Aggregations(ctx context.Context, req Request, dimension Dimension) ([]Aggregation, error) {
	start := time.Now()
	requestID := uuid.New().String()

	rows, err := e.buildRows(ctx, req, requestID)
	if err != nil {
		e.logFailure(requestID, "Aggregations", err)
		return nil, err
	}
	results, err := Aggregate(rows, dimension)
	if err != nil {
		e.logFailure(requestID, "Aggregations", err)
		return nil, err
	}

	e.logger.Info().
		Str("request_id", requestID).
		Str("operation", "Aggregations").
		Str("dimension", dimension.String()).
		Int("rows", len(rows)).
		Int("groups", len(results)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("report computed")
	return results, nil
}

// Breakdown loads a snapshot and computes the fuel-type breakdown.
func (e *Engine) Breakdown(ctx context.Context, req Request) ([]BreakdownEntry, error) {
	requestID := uuid.New().String()
	rows, err := e.buildRows(ctx, req, requestID)
	if err != nil {
		e.logFailure(requestID, "Breakdown", err)
		return nil, err
	}
	return FuelTypeBreakdown(rows), nil
}

// TimeSeries loads a snapshot and builds the per-period series.
func (e *Engine) TimeSeries(ctx context.Context, req Request) ([]TimeSeriesPoint, error) {
	requestID := uuid.New().String()
	rows, err := e.buildRows(ctx, req, requestID)
	if err != nil {
		e.logFailure(requestID, "TimeSeries", err)
		return nil, err
	}
	return BuildTimeSeries(rows), nil
}

// TargetProgressAll loads a snapshot and evaluates every stored target as of
// the given date.
func (e *Engine) TargetProgressAll(ctx context.Context, req Request, asOf time.Time) ([]TargetProgress, error) {
	requestID := uuid.New().String()
	snap, err := LoadSnapshot(ctx, e.store, req)
	if err != nil {
		e.logFailure(requestID, "TargetProgressAll", err)
		return nil, err
	}
	rows, err := NewRowBuilder(e.logger).Build(snap, req)
	if err != nil {
		e.logFailure(requestID, "TargetProgressAll", err)
		return nil, err
	}
	return EvaluateTargets(snap, rows, asOf), nil
}

// DrillDown loads a snapshot and navigates one level: the fleet root when
// carlistID is 0, otherwise the given carlist's vehicle level.
func (e *Engine) DrillDown(ctx context.Context, req Request, carlistID int64) (DrillDownResult, error) {
	requestID := uuid.New().String()
	rows, err := e.buildRows(ctx, req, requestID)
	if err != nil {
		e.logFailure(requestID, "DrillDown", err)
		return DrillDownResult{}, err
	}
	if carlistID == 0 {
		return FleetDrillDown(rows)
	}
	return CarlistDrillDown(rows, carlistID)
}

func (e *Engine) buildRows(ctx context.Context, req Request, requestID string) ([]Row, error) {
	snap, err := LoadSnapshot(ctx, e.store, req)
	if err != nil {
		return nil, err
	}
	logger := e.logger.With().Str("request_id", requestID).Logger()
	return NewRowBuilder(logger).Build(snap, req)
}

func (e *Engine) logFailure(requestID, operation string, err error) {
	e.logger.Error().
		Str("request_id", requestID).
		Str("operation", operation).
		Err(err).
		Msg("request failed")
}
