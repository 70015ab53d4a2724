// Package store provides read-only data access for report requests. Every
// method is a bulk read: the engine fetches each concern once per request,
// never per vehicle.
package store

import (
	"context"
	"time"

	"github.com/rshade/fleetco2/internal/emissions"
)

// Store supplies the immutable inputs of one report request. Implementations
// must be safe for concurrent use; the engine issues the reads in parallel.
type Store interface {
	// Vehicles returns all fleet vehicles with their catalog engines.
	Vehicles(ctx context.Context) ([]emissions.Vehicle, error)

	// FuelRecords returns fuel records with dates inside [from, to].
	FuelRecords(ctx context.Context, from, to time.Time) ([]emissions.FuelRecord, error)

	// OdometerReadings returns odometer readings with dates inside [from, to].
	OdometerReadings(ctx context.Context, from, to time.Time) ([]emissions.OdometerReading, error)

	// CarlistMemberships returns every (vehicle, carlist) membership pair.
	CarlistMemberships(ctx context.Context) ([]emissions.CarlistMembership, error)

	// ReferenceTables returns the factor reference tables (macro fuel types,
	// fuel code mappings, gas factors, GWP values).
	ReferenceTables(ctx context.Context) (emissions.ReferenceTables, error)

	// Targets returns all emission reduction targets.
	Targets(ctx context.Context) ([]emissions.EmissionTarget, error)
}
