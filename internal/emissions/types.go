// Package emissions provides CO2-equivalent emission calculation for vehicle
// fleets: time-versioned factor resolution, scoped (combustion/electricity)
// gas arithmetic, theoretical catalog-based estimation, and calendar period
// bucketing.
package emissions

import "time"

// Gas identifies a Kyoto-protocol greenhouse gas.
type Gas string

// Kyoto gases tracked by emission factor and GWP tables.
const (
	GasCO2 Gas = "CO2"
	GasCH4 Gas = "CH4"
	GasN2O Gas = "N2O"
	GasHFC Gas = "HFC"
	GasPFC Gas = "PFC"
	GasSF6 Gas = "SF6"
	GasNF3 Gas = "NF3"
)

// Gases returns every tracked Kyoto gas in canonical order.
func Gases() []Gas {
	return []Gas{GasCO2, GasCH4, GasN2O, GasHFC, GasPFC, GasSF6, GasNF3}
}

// Scope is the regulatory emission scope of a macro fuel type.
type Scope int

const (
	// ScopeCombustion (scope 1) covers direct emissions from fuel burned in
	// the vehicle. Quantities for this scope are litres.
	ScopeCombustion Scope = 1

	// ScopeElectricity (scope 2) covers indirect emissions from purchased
	// energy used for charging. Quantities for this scope are kWh.
	ScopeElectricity Scope = 2
)

// OptionalFloat is a float value that may be absent (kWh quantities, WLTP/NEDC
// catalog figures, open-ended validity dates). The zero value is "absent".
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Some returns a present OptionalFloat.
func Some(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// Or returns the value if present, otherwise def.
func (o OptionalFloat) Or(def float64) float64 {
	if o.Valid {
		return o.Value
	}
	return def
}

// MacroFuelType is a reporting-level grouping of vehicle fuel codes
// (e.g. "Diesel", "Electricity") carrying one scope and one display color.
type MacroFuelType struct {
	ID    int64
	Name  string
	Scope Scope

	// Color is the dashboard display color (hex string), carried through to
	// breakdown outputs.
	Color string
}

// FuelTypeMapping maps a vehicle fuel code to a macro fuel type. A hybrid
// vehicle's fuel code carries two mappings, one per scope.
type FuelTypeMapping struct {
	FuelCode    string
	MacroTypeID int64
}

// GasFactor is a time-versioned emission factor for one gas of one macro fuel
// type, in kg of gas per unit of quantity (litre for scope 1, kWh for scope 2).
type GasFactor struct {
	MacroTypeID int64
	Gas         Gas
	Value       float64
	ValidFrom   time.Time

	// ValidTo is the inclusive end of the validity window; absent means
	// open-ended.
	ValidTo time.Time
}

// GWPValue is a time-versioned Global Warming Potential multiplier for one
// gas, converting a mass of that gas into CO2-equivalent mass.
type GWPValue struct {
	Gas       Gas
	Value     float64
	ValidFrom time.Time
	ValidTo   time.Time
}

// ReferenceTables is the point-in-time snapshot of factor reference data a
// FactorResolver is built from. Loaded once per report request.
type ReferenceTables struct {
	MacroTypes []MacroFuelType
	Mappings   []FuelTypeMapping
	GasFactors []GasFactor
	GWPValues  []GWPValue
}

// EmissionContext is the resolved calculation unit for one fuel code at one
// reference date: the macro fuel type plus the factor and GWP values effective
// on that date. Ephemeral, never persisted.
type EmissionContext struct {
	MacroType  MacroFuelType
	GasFactors map[Gas]float64
	GWPValues  map[Gas]float64
}

// CatalogEngine is one engine of a catalog vehicle. Hybrid vehicles carry at
// least two (thermal + electric).
type CatalogEngine struct {
	FuelCode          string
	CO2GramsPerKm     OptionalFloat
	CO2GramsPerKmWltp OptionalFloat
	CO2GramsPerKmNedc OptionalFloat
}

// Vehicle is a fleet vehicle with its catalog engine data.
type Vehicle struct {
	ID           int64
	LicensePlate string
	Make         string
	Model        string
	IsHybrid     bool
	Engines      []CatalogEngine
}

// Label returns the display label for aggregation output: the license plate,
// falling back to make/model when the plate is empty.
func (v Vehicle) Label() string {
	if v.LicensePlate != "" {
		return v.LicensePlate
	}
	return v.Make + " " + v.Model
}

// EffectiveFuelCode returns the fuel code used for factor resolution,
// preferring the first engine that has one. A hybrid's code resolves to two
// emission contexts via its two macro-type mappings.
func (v Vehicle) EffectiveFuelCode() string {
	for _, e := range v.Engines {
		if e.FuelCode != "" {
			return e.FuelCode
		}
	}
	return ""
}

// EffectiveGramsPerKm returns the catalog g/km figure used for theoretical
// estimation. For hybrids it is the mean of the engines' figures; engines
// without a figure are skipped.
func (v Vehicle) EffectiveGramsPerKm() OptionalFloat {
	return meanEngineFigure(v.Engines, func(e CatalogEngine) OptionalFloat { return e.CO2GramsPerKm })
}

// EffectiveWltpGramsPerKm returns the combined WLTP figure across engines.
func (v Vehicle) EffectiveWltpGramsPerKm() OptionalFloat {
	return meanEngineFigure(v.Engines, func(e CatalogEngine) OptionalFloat { return e.CO2GramsPerKmWltp })
}

// EffectiveNedcGramsPerKm returns the combined NEDC figure across engines.
func (v Vehicle) EffectiveNedcGramsPerKm() OptionalFloat {
	return meanEngineFigure(v.Engines, func(e CatalogEngine) OptionalFloat { return e.CO2GramsPerKmNedc })
}

func meanEngineFigure(engines []CatalogEngine, pick func(CatalogEngine) OptionalFloat) OptionalFloat {
	var sum float64
	var n int
	for _, e := range engines {
		if f := pick(e); f.Valid {
			sum += f.Value
			n++
		}
	}
	if n == 0 {
		return OptionalFloat{}
	}
	return Some(sum / float64(n))
}

// FuelRecord is one fuel or charging transaction. Created by the external
// import/entry pipeline; consumed read-only.
type FuelRecord struct {
	VehicleID      int64
	Date           time.Time
	FuelCode       string
	QuantityLiters float64
	QuantityKwh    OptionalFloat
	OdometerKm     OptionalFloat
}

// OdometerReading is one odometer observation for a vehicle.
type OdometerReading struct {
	VehicleID int64
	Date      time.Time
	Km        float64
}

// CarlistMembership links a vehicle to a named carlist. A vehicle may belong
// to zero, one, or many carlists.
type CarlistMembership struct {
	VehicleID   int64
	CarlistID   int64
	CarlistName string
}

// TargetScope selects what an emission target measures.
type TargetScope string

const (
	// TargetScopeFleet measures the whole fleet.
	TargetScopeFleet TargetScope = "fleet"

	// TargetScopeCarlist measures one carlist's vehicles.
	TargetScopeCarlist TargetScope = "carlist"
)

// TargetPeriod is the reporting cadence of an emission target.
type TargetPeriod string

const (
	TargetPeriodAnnual  TargetPeriod = "annual"
	TargetPeriodMonthly TargetPeriod = "monthly"
)

// EmissionTarget is a reduction target created externally and consumed
// read-only by progress tracking.
type EmissionTarget struct {
	ID          int64
	Scope       TargetScope
	CarlistID   int64 // set when Scope is TargetScopeCarlist
	TargetKg    float64
	Period      TargetPeriod
	StartDate   time.Time
	EndDate     time.Time
	Description string
}
