package report

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rshade/fleetco2/internal/emissions"
)

// CarlistRef identifies one carlist a row's vehicle belongs to.
type CarlistRef struct {
	ID   int64
	Name string
}

// ContextTotal is the per-context share of a row's real emissions: the macro
// fuel type, its scope, and the CO2e attributed to it.
type ContextTotal struct {
	MacroType emissions.MacroFuelType
	RealKg    float64
	PerGas    map[emissions.Gas]float64
}

// Row is the joined unit of aggregation: one vehicle in one period, with its
// activity, resolved contexts, and computed emissions.
type Row struct {
	VehicleID    int64
	VehicleLabel string
	Period       emissions.Period

	Km     float64
	Liters float64
	Kwh    float64

	FuelCode string
	Carlists []CarlistRef

	GramsPerKm emissions.OptionalFloat
	WltpGramsPerKm emissions.OptionalFloat
	NedcGramsPerKm emissions.OptionalFloat

	TheoreticalKg float64
	RealKg        float64

	// ContextTotals holds one entry per resolved emission context (two for
	// hybrids, one per scope).
	ContextTotals []ContextTotal
}

// PerGas merges the row's per-gas totals across contexts.
func (r Row) PerGas() map[emissions.Gas]float64 {
	merged := make(map[emissions.Gas]float64)
	for _, ct := range r.ContextTotals {
		for gas, kg := range ct.PerGas {
			merged[gas] += kg
		}
	}
	return merged
}

// RowBuilder joins a snapshot into rows. Fuel codes are resolved once per
// vehicle, not per period.
type RowBuilder struct {
	logger zerolog.Logger
}

// NewRowBuilder creates a row builder logging skip-policy decisions to the
// given logger.
func NewRowBuilder(logger zerolog.Logger) *RowBuilder {
	return &RowBuilder{logger: logger}
}

// Build produces one row per (vehicle, period). Vehicles whose fuel code
// resolves to no emission context are skipped entirely with a warning, never
// an error; their consumption is absent from all totals.
func (b *RowBuilder) Build(snap *Snapshot, req Request) ([]Row, error) {
	periods, err := emissions.BucketPeriods(req.From, req.To, req.Granularity)
	if err != nil {
		return nil, fmt.Errorf("bucketing periods: %w", err)
	}

	resolver := emissions.NewFactorResolver(snap.Tables)
	contextsByCode := resolver.ResolveAll(req.Reference())

	fuelByVehicle := make(map[int64][]emissions.FuelRecord)
	for _, r := range snap.FuelRecords {
		fuelByVehicle[r.VehicleID] = append(fuelByVehicle[r.VehicleID], r)
	}
	odoByVehicle := make(map[int64][]emissions.OdometerReading)
	for _, r := range snap.Odometer {
		odoByVehicle[r.VehicleID] = append(odoByVehicle[r.VehicleID], r)
	}
	carlistsByVehicle := make(map[int64][]CarlistRef)
	for _, m := range snap.Memberships {
		carlistsByVehicle[m.VehicleID] = append(carlistsByVehicle[m.VehicleID], CarlistRef{ID: m.CarlistID, Name: m.CarlistName})
	}

	var rows []Row
	for _, vehicle := range snap.Vehicles {
		if req.CarlistID != 0 && !belongsTo(carlistsByVehicle[vehicle.ID], req.CarlistID) {
			continue
		}

		fuelCode := vehicle.EffectiveFuelCode()
		contexts := contextsByCode[fuelCode]
		if len(contexts) == 0 {
			b.logger.Warn().
				Int64("vehicle_id", vehicle.ID).
				Str("license_plate", vehicle.LicensePlate).
				Str("fuel_code", fuelCode).
				Msg("vehicle skipped: fuel code resolves to no emission context")
			continue
		}

		gPerKm := vehicle.EffectiveGramsPerKm()
		wltp := vehicle.EffectiveWltpGramsPerKm()
		nedc := vehicle.EffectiveNedcGramsPerKm()

		for _, period := range periods {
			row := Row{
				VehicleID:      vehicle.ID,
				VehicleLabel:   vehicle.Label(),
				Period:         period,
				FuelCode:       fuelCode,
				Carlists:       carlistsByVehicle[vehicle.ID],
				GramsPerKm:     gPerKm,
				WltpGramsPerKm: wltp,
				NedcGramsPerKm: nedc,
			}

			var odometerKm []float64
			for _, reading := range odoByVehicle[vehicle.ID] {
				if period.Contains(reading.Date) {
					odometerKm = append(odometerKm, reading.Km)
				}
			}
			row.Km = emissions.DistanceKm(odometerKm)

			for _, record := range fuelByVehicle[vehicle.ID] {
				if !period.Contains(record.Date) {
					continue
				}
				row.Liters += record.QuantityLiters
				row.Kwh += record.QuantityKwh.Or(0)
			}

			row.TheoreticalKg = emissions.EstimateTheoreticalKg(gPerKm.Or(0), row.Km)

			var realKg float64
			for _, ctx := range contexts {
				quantity := row.Liters
				if ctx.MacroType.Scope == emissions.ScopeElectricity {
					quantity = row.Kwh
				}
				result := emissions.CalculateScoped(quantity, ctx)
				row.ContextTotals = append(row.ContextTotals, ContextTotal{
					MacroType: ctx.MacroType,
					RealKg:    result.TotalKgCO2e,
					PerGas:    result.PerGas,
				})
				realKg += result.TotalKgCO2e
			}
			row.RealKg = emissions.Round2(realKg)

			rows = append(rows, row)
		}
	}
	return rows, nil
}

func belongsTo(carlists []CarlistRef, carlistID int64) bool {
	for _, c := range carlists {
		if c.ID == carlistID {
			return true
		}
	}
	return false
}
