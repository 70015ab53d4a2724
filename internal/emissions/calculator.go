package emissions

// ScopedResult is the outcome of applying one emission context to a quantity:
// CO2-equivalent kilograms per gas plus the rounded total.
type ScopedResult struct {
	PerGas     map[Gas]float64
	TotalKgCO2e float64
}

// CalculateScoped computes real CO2e for a quantity under one emission
// context.
//
// The calculation per gas:
//  1. Mass of gas (kg) = quantity × gas factor (kg gas per litre or kWh)
//  2. CO2e (kg) = mass of gas × GWP of the gas
//  3. Total CO2e = Σ per-gas CO2e, rounded to 2 decimals
//
// The quantity must already match the context's scope: litres for
// ScopeCombustion, kWh for ScopeElectricity. Absent factor or GWP entries
// contribute zero. Deterministic, no I/O.
func CalculateScoped(quantity float64, ctx EmissionContext) ScopedResult {
	perGas := make(map[Gas]float64, len(ctx.GasFactors))
	var total float64
	for _, gas := range Gases() {
		factor, ok := ctx.GasFactors[gas]
		if !ok {
			continue
		}
		kg := quantity * factor * ctx.GWPValues[gas]
		perGas[gas] = Round2(kg)
		total += kg
	}
	return ScopedResult{PerGas: perGas, TotalKgCO2e: Round2(total)}
}

// EstimateTheoreticalKg computes the theoretical CO2e for a travelled
// distance from the catalog-rated g/km figure:
//
//	kgCO2e = gramsPerKm × km / 1000
//
// rounded to 2 decimals. Independent of actual fuel consumed.
func EstimateTheoreticalKg(gramsPerKm, km float64) float64 {
	return Round2(gramsPerKm * km / GramsPerKg)
}

// DistanceKm derives travelled distance from odometer readings within a
// period: max reading − min reading. Fewer than two readings means the
// distance cannot be derived and is treated as 0, not an error.
func DistanceKm(readingsKm []float64) float64 {
	if len(readingsKm) < 2 {
		return 0
	}
	minKm, maxKm := readingsKm[0], readingsKm[0]
	for _, km := range readingsKm[1:] {
		if km < minKm {
			minKm = km
		}
		if km > maxKm {
			maxKm = km
		}
	}
	return maxKm - minKm
}
