package emissions

import (
	"sort"
	"time"
)

// factorKey indexes gas factors by macro type and gas.
type factorKey struct {
	macroTypeID int64
	gas         Gas
}

// FactorResolver resolves vehicle fuel codes into emission contexts for a
// reference date. Built once per request from a point-in-time snapshot of the
// reference tables; validity windows are kept sorted by ValidFrom so a
// point-in-time query is a binary search rather than a table scan.
type FactorResolver struct {
	macroByID map[int64]MacroFuelType
	mappings  map[string][]int64
	fuelCodes []string
	factorIdx map[factorKey][]GasFactor
	gwpIdx    map[Gas][]GWPValue
}

// NewFactorResolver builds a resolver from reference tables.
func NewFactorResolver(tables ReferenceTables) *FactorResolver {
	r := &FactorResolver{
		macroByID: make(map[int64]MacroFuelType, len(tables.MacroTypes)),
		mappings:  make(map[string][]int64, len(tables.Mappings)),
		factorIdx: make(map[factorKey][]GasFactor),
		gwpIdx:    make(map[Gas][]GWPValue),
	}
	for _, mt := range tables.MacroTypes {
		r.macroByID[mt.ID] = mt
	}
	for _, m := range tables.Mappings {
		if _, seen := r.mappings[m.FuelCode]; !seen {
			r.fuelCodes = append(r.fuelCodes, m.FuelCode)
		}
		r.mappings[m.FuelCode] = append(r.mappings[m.FuelCode], m.MacroTypeID)
	}
	sort.Strings(r.fuelCodes)

	for _, f := range tables.GasFactors {
		key := factorKey{macroTypeID: f.MacroTypeID, gas: f.Gas}
		r.factorIdx[key] = append(r.factorIdx[key], f)
	}
	for key := range r.factorIdx {
		windows := r.factorIdx[key]
		sort.Slice(windows, func(i, j int) bool { return windows[i].ValidFrom.Before(windows[j].ValidFrom) })
	}

	for _, g := range tables.GWPValues {
		r.gwpIdx[g.Gas] = append(r.gwpIdx[g.Gas], g)
	}
	for gas := range r.gwpIdx {
		windows := r.gwpIdx[gas]
		sort.Slice(windows, func(i, j int) bool { return windows[i].ValidFrom.Before(windows[j].ValidFrom) })
	}
	return r
}

// ResolveAll resolves every known fuel code at once for the given reference
// date. One call per distinct reference date bounds resolution cost at
// O(distinct fuel codes) instead of O(vehicles × periods). Fuel codes with no
// mapping are absent from the result; the caller applies the skip policy.
func (r *FactorResolver) ResolveAll(referenceDate time.Time) map[string][]EmissionContext {
	resolved := make(map[string][]EmissionContext, len(r.fuelCodes))
	for _, code := range r.fuelCodes {
		if contexts := r.Resolve(code, referenceDate); len(contexts) > 0 {
			resolved[code] = contexts
		}
	}
	return resolved
}

// Resolve returns the emission contexts effective on referenceDate for one
// fuel code: one context per macro-type mapping (two for hybrid codes, one
// per scope). A mapping whose macro type has no effective gas factor on the
// date is dropped with a warning.
func (r *FactorResolver) Resolve(fuelCode string, referenceDate time.Time) []EmissionContext {
	macroIDs, ok := r.mappings[fuelCode]
	if !ok {
		return nil
	}
	day := DateOnly(referenceDate)

	contexts := make([]EmissionContext, 0, len(macroIDs))
	for _, id := range macroIDs {
		macro, ok := r.macroByID[id]
		if !ok {
			pkgLogger.Warn().
				Str("fuel_code", fuelCode).
				Int64("macro_type_id", id).
				Msg("fuel code mapping references unknown macro fuel type")
			continue
		}

		gasFactors := make(map[Gas]float64)
		gwpValues := make(map[Gas]float64)
		for _, gas := range Gases() {
			if factor, ok := r.factorAt(id, gas, day); ok {
				gasFactors[gas] = factor
				gwpValues[gas] = r.gwpAt(gas, day)
			}
		}
		if len(gasFactors) == 0 {
			pkgLogger.Warn().
				Str("fuel_code", fuelCode).
				Str("macro_type", macro.Name).
				Time("reference_date", day).
				Msg("no emission factor effective on reference date")
			continue
		}
		contexts = append(contexts, EmissionContext{MacroType: macro, GasFactors: gasFactors, GWPValues: gwpValues})
	}
	return contexts
}

// factorAt returns the gas factor effective on day, if any. At most one
// window contains any given date.
func (r *FactorResolver) factorAt(macroTypeID int64, gas Gas, day time.Time) (float64, bool) {
	windows := r.factorIdx[factorKey{macroTypeID: macroTypeID, gas: gas}]
	i := lastStartingAtOrBefore(len(windows), day, func(i int) time.Time { return windows[i].ValidFrom })
	if i < 0 {
		return 0, false
	}
	w := windows[i]
	if !w.ValidTo.IsZero() && day.After(DateOnly(w.ValidTo)) {
		return 0, false
	}
	return w.Value, true
}

// gwpAt returns the GWP effective on day, or 0 when no window contains it.
func (r *FactorResolver) gwpAt(gas Gas, day time.Time) float64 {
	windows := r.gwpIdx[gas]
	i := lastStartingAtOrBefore(len(windows), day, func(i int) time.Time { return windows[i].ValidFrom })
	if i < 0 {
		return 0
	}
	w := windows[i]
	if !w.ValidTo.IsZero() && day.After(DateOnly(w.ValidTo)) {
		return 0
	}
	return w.Value
}

// lastStartingAtOrBefore returns the index of the last window whose start is
// at or before day, or -1. Windows must be sorted by start ascending.
func lastStartingAtOrBefore(n int, day time.Time, startAt func(int) time.Time) int {
	return sort.Search(n, func(i int) bool { return startAt(i).After(day) }) - 1
}
