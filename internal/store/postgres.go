package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rshade/fleetco2/internal/emissions"
)

// PostgresStore is a Store backed by a pgx connection pool. Every method is a
// single bulk query with the date range pushed into SQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and verifies the connection.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(pingCtx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Vehicles implements Store. Engines are fetched in the same query and
// grouped in memory to avoid a per-vehicle round trip.
func (s *PostgresStore) Vehicles(ctx context.Context) ([]emissions.Vehicle, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.id, v.license_plate, v.make, v.model, v.is_hybrid,
		       e.fuel_code, e.co2_grams_per_km, e.co2_grams_per_km_wltp, e.co2_grams_per_km_nedc
		FROM vehicles v
		JOIN catalog_vehicle_engines e ON e.catalog_vehicle_id = v.catalog_vehicle_id
		ORDER BY v.id`)
	if err != nil {
		return nil, fmt.Errorf("querying vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []emissions.Vehicle
	byID := make(map[int64]int)
	for rows.Next() {
		var (
			v                  emissions.Vehicle
			engine             emissions.CatalogEngine
			gPerKm, wltp, nedc *float64
		)
		if err := rows.Scan(&v.ID, &v.LicensePlate, &v.Make, &v.Model, &v.IsHybrid,
			&engine.FuelCode, &gPerKm, &wltp, &nedc); err != nil {
			return nil, fmt.Errorf("scanning vehicle: %w", err)
		}
		engine.CO2GramsPerKm = optional(gPerKm)
		engine.CO2GramsPerKmWltp = optional(wltp)
		engine.CO2GramsPerKmNedc = optional(nedc)

		if i, ok := byID[v.ID]; ok {
			vehicles[i].Engines = append(vehicles[i].Engines, engine)
			continue
		}
		v.Engines = []emissions.CatalogEngine{engine}
		byID[v.ID] = len(vehicles)
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// FuelRecords implements Store.
func (s *PostgresStore) FuelRecords(ctx context.Context, from, to time.Time) ([]emissions.FuelRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT vehicle_id, date, fuel_code, quantity_liters, quantity_kwh, odometer_km
		FROM fuel_records
		WHERE date >= $1 AND date <= $2
		ORDER BY date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying fuel records: %w", err)
	}
	defer rows.Close()

	var records []emissions.FuelRecord
	for rows.Next() {
		var (
			r        emissions.FuelRecord
			kwh, odo *float64
		)
		if err := rows.Scan(&r.VehicleID, &r.Date, &r.FuelCode, &r.QuantityLiters, &kwh, &odo); err != nil {
			return nil, fmt.Errorf("scanning fuel record: %w", err)
		}
		r.QuantityKwh = optional(kwh)
		r.OdometerKm = optional(odo)
		records = append(records, r)
	}
	return records, rows.Err()
}

// OdometerReadings implements Store.
func (s *PostgresStore) OdometerReadings(ctx context.Context, from, to time.Time) ([]emissions.OdometerReading, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT vehicle_id, date, km
		FROM odometer_readings
		WHERE date >= $1 AND date <= $2
		ORDER BY date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying odometer readings: %w", err)
	}
	defer rows.Close()

	readings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (emissions.OdometerReading, error) {
		var r emissions.OdometerReading
		err := row.Scan(&r.VehicleID, &r.Date, &r.Km)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning odometer readings: %w", err)
	}
	return readings, nil
}

// CarlistMemberships implements Store.
func (s *PostgresStore) CarlistMemberships(ctx context.Context) ([]emissions.CarlistMembership, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT cv.vehicle_id, cv.carlist_id, c.name
		FROM carlist_vehicles cv
		JOIN carlists c ON c.id = cv.carlist_id`)
	if err != nil {
		return nil, fmt.Errorf("querying carlist memberships: %w", err)
	}
	defer rows.Close()

	memberships, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (emissions.CarlistMembership, error) {
		var m emissions.CarlistMembership
		err := row.Scan(&m.VehicleID, &m.CarlistID, &m.CarlistName)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning carlist memberships: %w", err)
	}
	return memberships, nil
}

// ReferenceTables implements Store with one query per reference table.
func (s *PostgresStore) ReferenceTables(ctx context.Context) (emissions.ReferenceTables, error) {
	var tables emissions.ReferenceTables

	rows, err := s.pool.Query(ctx, `SELECT id, name, scope, color FROM macro_fuel_types`)
	if err != nil {
		return tables, fmt.Errorf("querying macro fuel types: %w", err)
	}
	tables.MacroTypes, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (emissions.MacroFuelType, error) {
		var mt emissions.MacroFuelType
		err := row.Scan(&mt.ID, &mt.Name, &mt.Scope, &mt.Color)
		return mt, err
	})
	if err != nil {
		return tables, fmt.Errorf("scanning macro fuel types: %w", err)
	}

	rows, err = s.pool.Query(ctx, `SELECT fuel_code, macro_type_id FROM fuel_type_macro_mappings`)
	if err != nil {
		return tables, fmt.Errorf("querying fuel type mappings: %w", err)
	}
	tables.Mappings, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (emissions.FuelTypeMapping, error) {
		var m emissions.FuelTypeMapping
		err := row.Scan(&m.FuelCode, &m.MacroTypeID)
		return m, err
	})
	if err != nil {
		return tables, fmt.Errorf("scanning fuel type mappings: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT macro_type_id, gas, value, valid_from, valid_to
		FROM gas_emission_factors`)
	if err != nil {
		return tables, fmt.Errorf("querying gas factors: %w", err)
	}
	tables.GasFactors, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (emissions.GasFactor, error) {
		var (
			f       emissions.GasFactor
			validTo *time.Time
		)
		if err := row.Scan(&f.MacroTypeID, &f.Gas, &f.Value, &f.ValidFrom, &validTo); err != nil {
			return f, err
		}
		if validTo != nil {
			f.ValidTo = *validTo
		}
		return f, nil
	})
	if err != nil {
		return tables, fmt.Errorf("scanning gas factors: %w", err)
	}

	rows, err = s.pool.Query(ctx, `SELECT gas, value, valid_from, valid_to FROM gwp_values`)
	if err != nil {
		return tables, fmt.Errorf("querying GWP values: %w", err)
	}
	tables.GWPValues, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (emissions.GWPValue, error) {
		var (
			g       emissions.GWPValue
			validTo *time.Time
		)
		if err := row.Scan(&g.Gas, &g.Value, &g.ValidFrom, &validTo); err != nil {
			return g, err
		}
		if validTo != nil {
			g.ValidTo = *validTo
		}
		return g, nil
	})
	if err != nil {
		return tables, fmt.Errorf("scanning GWP values: %w", err)
	}

	return tables, nil
}

// Targets implements Store.
func (s *PostgresStore) Targets(ctx context.Context) ([]emissions.EmissionTarget, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, scope, COALESCE(carlist_id, 0), target_kg, period, start_date, end_date, COALESCE(description, '')
		FROM emission_targets`)
	if err != nil {
		return nil, fmt.Errorf("querying emission targets: %w", err)
	}
	defer rows.Close()

	targets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (emissions.EmissionTarget, error) {
		var t emissions.EmissionTarget
		err := row.Scan(&t.ID, &t.Scope, &t.CarlistID, &t.TargetKg, &t.Period, &t.StartDate, &t.EndDate, &t.Description)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning emission targets: %w", err)
	}
	return targets, nil
}
