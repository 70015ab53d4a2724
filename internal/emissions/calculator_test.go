package emissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dieselContext(co2PerLiter float64) EmissionContext {
	return EmissionContext{
		MacroType:  MacroFuelType{ID: 1, Name: "Diesel", Scope: ScopeCombustion},
		GasFactors: map[Gas]float64{GasCO2: co2PerLiter},
		GWPValues:  map[Gas]float64{GasCO2: 1},
	}
}

// TestCalculateScoped_DieselScenario verifies the reference scenario: 50 L of
// diesel at 2.64 kgCO2/L and GWP(CO2)=1 yields 132.00 kgCO2e.
func TestCalculateScoped_DieselScenario(t *testing.T) {
	result := CalculateScoped(50, dieselContext(2.64))

	assert.InDelta(t, 132.00, result.TotalKgCO2e, 1e-9)
	assert.InDelta(t, 132.00, result.PerGas[GasCO2], 1e-9)
}

// TestCalculateScoped_MultiGas verifies per-gas GWP weighting and summation.
func TestCalculateScoped_MultiGas(t *testing.T) {
	ctx := EmissionContext{
		MacroType: MacroFuelType{ID: 1, Name: "Diesel", Scope: ScopeCombustion},
		GasFactors: map[Gas]float64{
			GasCO2: 2.5,
			GasCH4: 0.0001,
			GasN2O: 0.0002,
		},
		GWPValues: map[Gas]float64{
			GasCO2: 1,
			GasCH4: 28,
			GasN2O: 265,
		},
	}

	result := CalculateScoped(100, ctx)

	// CO2: 100×2.5×1 = 250; CH4: 100×0.0001×28 = 0.28; N2O: 100×0.0002×265 = 5.3
	assert.InDelta(t, 250.00, result.PerGas[GasCO2], 1e-9)
	assert.InDelta(t, 0.28, result.PerGas[GasCH4], 1e-9)
	assert.InDelta(t, 5.30, result.PerGas[GasN2O], 1e-9)
	assert.InDelta(t, 255.58, result.TotalKgCO2e, 1e-9)
}

// TestCalculateScoped_MissingGWP verifies a gas with a factor but no GWP
// contributes zero instead of failing.
func TestCalculateScoped_MissingGWP(t *testing.T) {
	ctx := EmissionContext{
		MacroType:  MacroFuelType{ID: 1, Name: "Diesel", Scope: ScopeCombustion},
		GasFactors: map[Gas]float64{GasCO2: 2.64, GasCH4: 0.001},
		GWPValues:  map[Gas]float64{GasCO2: 1},
	}

	result := CalculateScoped(10, ctx)

	assert.InDelta(t, 26.40, result.TotalKgCO2e, 1e-9)
	assert.Zero(t, result.PerGas[GasCH4])
}

// TestCalculateScoped_ZeroQuantity verifies zero fuel yields zero emissions.
func TestCalculateScoped_ZeroQuantity(t *testing.T) {
	result := CalculateScoped(0, dieselContext(2.64))
	assert.Zero(t, result.TotalKgCO2e)
}

// TestEstimateTheoreticalKg verifies the catalog-based estimate.
func TestEstimateTheoreticalKg(t *testing.T) {
	tests := []struct {
		name       string
		gramsPerKm float64
		km         float64
		want       float64
	}{
		{name: "reference scenario 120 g/km over 1000 km", gramsPerKm: 120, km: 1000, want: 120.00},
		{name: "zero distance", gramsPerKm: 120, km: 0, want: 0},
		{name: "zero figure", gramsPerKm: 0, km: 500, want: 0},
		{name: "rounds to 2 decimals", gramsPerKm: 123.456, km: 10, want: 1.23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EstimateTheoreticalKg(tt.gramsPerKm, tt.km), 1e-9)
		})
	}
}

// TestDistanceKm verifies distance derivation from odometer readings.
func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name     string
		readings []float64
		want     float64
	}{
		{name: "two readings", readings: []float64{10000, 11000}, want: 1000},
		{name: "unordered readings", readings: []float64{10500, 10000, 11000}, want: 1000},
		{name: "single reading is insufficient", readings: []float64{10000}, want: 0},
		{name: "no readings", readings: nil, want: 0},
		{name: "identical readings", readings: []float64{10000, 10000}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceKm(tt.readings), 1e-9)
		})
	}
}

// TestRound2_Idempotent verifies rounding an already-rounded value is a no-op.
func TestRound2_Idempotent(t *testing.T) {
	values := []float64{132.00, 12.34, 0, -7.89, 0.005, 1234.567}
	for _, v := range values {
		once := Round2(v)
		require.Equal(t, once, Round2(once))
	}
}
