package report

import (
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rshade/fleetco2/internal/emissions"
)

// Dimension selects the grouping axis of an aggregation. It is a closed set;
// every switch over it handles all variants.
type Dimension int

const (
	// DimensionFleet groups every row into one fleet-wide total.
	DimensionFleet Dimension = iota

	// DimensionVehicle groups rows by vehicle.
	DimensionVehicle

	// DimensionCarlist groups rows by carlist membership. A row with N
	// memberships contributes fully to N groups (deliberate fan-out, not a
	// partition).
	DimensionCarlist

	// DimensionFuelType groups per-context shares by macro fuel type.
	DimensionFuelType

	// DimensionPeriod groups rows by period key.
	DimensionPeriod
)

// String implements fmt.Stringer.
func (d Dimension) String() string {
	switch d {
	case DimensionFleet:
		return "fleet"
	case DimensionVehicle:
		return "vehicle"
	case DimensionCarlist:
		return "carlist"
	case DimensionFuelType:
		return "fueltype"
	case DimensionPeriod:
		return "period"
	default:
		return "unknown"
	}
}

// ErrUnknownDimension indicates an unrecognized aggregation dimension.
const ErrUnknownDimension = constError("unknown aggregation dimension")

// ParseDimension parses a user-supplied dimension name.
func ParseDimension(s string) (Dimension, error) {
	for _, d := range []Dimension{DimensionFleet, DimensionVehicle, DimensionCarlist, DimensionFuelType, DimensionPeriod} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// PerformanceLevel classifies a group's real CO2e/km against the fleet
// average.
type PerformanceLevel string

const (
	PerformanceGood    PerformanceLevel = "good"
	PerformanceNeutral PerformanceLevel = "neutral"
	PerformancePoor    PerformanceLevel = "poor"
)

// classifyPerformance maps a deviation (percent relative to the fleet
// average) to a performance level.
//
// Thresholds:
//   - good: deviation ≤ −10%
//   - poor: deviation ≥ +10%
//   - neutral: in between
func classifyPerformance(deviationPercent float64) PerformanceLevel {
	switch {
	case deviationPercent <= emissions.PerformanceGoodThreshold:
		return PerformanceGood
	case deviationPercent >= emissions.PerformancePoorThreshold:
		return PerformancePoor
	default:
		return PerformanceNeutral
	}
}

// ScopeBreakdown is one scope's share of a group's real emissions with its
// per-gas totals.
type ScopeBreakdown struct {
	Scope  emissions.Scope
	RealKg float64
	PerGas map[emissions.Gas]float64
}

// Aggregation is one group of an aggregated report.
type Aggregation struct {
	Key   string
	Label string

	VehicleCount int
	TotalKm      float64

	TheoreticalKg float64
	RealKg        float64
	DeltaKg       float64
	DeltaPercent  float64

	// RealGramsPerKm is the group's real CO2e per km in grams (0 when the
	// group travelled 0 km).
	RealGramsPerKm float64

	// WltpGramsPerKm and NedcGramsPerKm are distance-weighted catalog display
	// figures across member rows carrying one.
	WltpGramsPerKm float64
	NedcGramsPerKm float64

	Scopes []ScopeBreakdown
	PerGas map[emissions.Gas]float64

	// DeviationPercent is the group's real CO2e/km deviation from the
	// fleet-wide average across all groups of this aggregation.
	DeviationPercent float64
	Performance      PerformanceLevel
}

// contribution is one row's share of one group. Full-row dimensions
// contribute the whole row; the fuel-type dimension contributes a single
// context's share, attributing distance and theoretical emissions to the
// combustion context only so hybrid activity is not double counted.
type contribution struct {
	vehicleID     int64
	km            float64
	theoreticalKg float64
	contexts      []ContextTotal
	wltp          emissions.OptionalFloat
	nedc          emissions.OptionalFloat
}

type groupTarget struct {
	key   string
	label string
	contribution
}

// groupAccumulator sums contributions for one group key.
type groupAccumulator struct {
	label         string
	vehicles      map[int64]struct{}
	km            float64
	theoreticalKg float64
	realKg        float64
	scopes        map[emissions.Scope]*ScopeBreakdown
	perGas        map[emissions.Gas]float64
	wltpWeighted  float64
	wltpKm        float64
	nedcWeighted  float64
	nedcKm        float64
}

// Aggregate groups rows along the requested dimension. For each group it sums
// theoretical and real emissions, merges scope and gas breakdowns, derives
// deltas and per-km intensity, then classifies every group's deviation from
// the fleet-wide average intensity. Results are sorted by label with a
// locale-aware collator.
func Aggregate(rows []Row, dimension Dimension) ([]Aggregation, error) {
	// Explicit multimap: group key → member contributions. Carlist fan-out is
	// visible here as one row producing several targets.
	groups := make(map[string]*groupAccumulator)
	order := make([]string, 0)

	for i := range rows {
		targets, err := groupTargets(&rows[i], dimension)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			acc, ok := groups[t.key]
			if !ok {
				acc = &groupAccumulator{
					label:    t.label,
					vehicles: make(map[int64]struct{}),
					scopes:   make(map[emissions.Scope]*ScopeBreakdown),
					perGas:   make(map[emissions.Gas]float64),
				}
				groups[t.key] = acc
				order = append(order, t.key)
			}
			acc.add(t.contribution)
		}
	}

	results := make([]Aggregation, 0, len(groups))
	var fleetRealKg, fleetKm float64
	for _, key := range order {
		acc := groups[key]
		results = append(results, acc.finish(key))
		fleetRealKg += acc.realKg
		fleetKm += acc.km
	}

	// Fleet-wide average intensity across all groups, then per-group
	// deviation and classification.
	var fleetAvg float64
	if fleetKm > 0 {
		fleetAvg = fleetRealKg / fleetKm * emissions.GramsPerKg
	}
	for i := range results {
		var deviation float64
		if fleetAvg > 0 {
			deviation = (results[i].RealGramsPerKm - fleetAvg) / fleetAvg * 100
		}
		results[i].DeviationPercent = emissions.Round2(deviation)
		results[i].Performance = classifyPerformance(deviation)
	}

	collator := collate.New(language.Und)
	sort.SliceStable(results, func(i, j int) bool {
		return collator.CompareString(results[i].Label, results[j].Label) < 0
	})
	return results, nil
}

// groupTargets returns the groups one row contributes to, with its share of
// each.
func groupTargets(row *Row, dimension Dimension) ([]groupTarget, error) {
	full := contribution{
		vehicleID:     row.VehicleID,
		km:            row.Km,
		theoreticalKg: row.TheoreticalKg,
		contexts:      row.ContextTotals,
		wltp:          row.WltpGramsPerKm,
		nedc:          row.NedcGramsPerKm,
	}

	switch dimension {
	case DimensionFleet:
		return []groupTarget{{key: "fleet", label: "Fleet", contribution: full}}, nil

	case DimensionVehicle:
		return []groupTarget{{key: strconv.FormatInt(row.VehicleID, 10), label: row.VehicleLabel, contribution: full}}, nil

	case DimensionCarlist:
		targets := make([]groupTarget, 0, len(row.Carlists))
		for _, cl := range row.Carlists {
			targets = append(targets, groupTarget{key: strconv.FormatInt(cl.ID, 10), label: cl.Name, contribution: full})
		}
		return targets, nil

	case DimensionFuelType:
		targets := make([]groupTarget, 0, len(row.ContextTotals))
		for _, ct := range row.ContextTotals {
			share := contribution{
				vehicleID: row.VehicleID,
				contexts:  []ContextTotal{ct},
				wltp:      row.WltpGramsPerKm,
				nedc:      row.NedcGramsPerKm,
			}
			// Distance and theoretical emissions belong to the combustion
			// context; an electricity-only vehicle has a single scope-2
			// context and keeps them.
			if ct.MacroType.Scope == emissions.ScopeCombustion || len(row.ContextTotals) == 1 {
				share.km = row.Km
				share.theoreticalKg = row.TheoreticalKg
			}
			targets = append(targets, groupTarget{key: ct.MacroType.Name, label: ct.MacroType.Name, contribution: share})
		}
		return targets, nil

	case DimensionPeriod:
		return []groupTarget{{key: row.Period.Key, label: row.Period.Label, contribution: full}}, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownDimension, dimension)
	}
}

func (a *groupAccumulator) add(c contribution) {
	a.vehicles[c.vehicleID] = struct{}{}
	a.km += c.km
	a.theoreticalKg += c.theoreticalKg

	for _, ct := range c.contexts {
		a.realKg += ct.RealKg
		sb, ok := a.scopes[ct.MacroType.Scope]
		if !ok {
			sb = &ScopeBreakdown{Scope: ct.MacroType.Scope, PerGas: make(map[emissions.Gas]float64)}
			a.scopes[ct.MacroType.Scope] = sb
		}
		sb.RealKg += ct.RealKg
		for gas, kg := range ct.PerGas {
			sb.PerGas[gas] += kg
			a.perGas[gas] += kg
		}
	}

	if c.wltp.Valid && c.km > 0 {
		a.wltpWeighted += c.wltp.Value * c.km
		a.wltpKm += c.km
	}
	if c.nedc.Valid && c.km > 0 {
		a.nedcWeighted += c.nedc.Value * c.km
		a.nedcKm += c.km
	}
}

func (a *groupAccumulator) finish(key string) Aggregation {
	agg := Aggregation{
		Key:           key,
		Label:         a.label,
		VehicleCount:  len(a.vehicles),
		TotalKm:       emissions.Round2(a.km),
		TheoreticalKg: emissions.Round2(a.theoreticalKg),
		RealKg:        emissions.Round2(a.realKg),
		PerGas:        make(map[emissions.Gas]float64, len(a.perGas)),
	}

	agg.DeltaKg = emissions.Round2(agg.RealKg - agg.TheoreticalKg)
	if agg.TheoreticalKg > 0 {
		agg.DeltaPercent = emissions.Round2(agg.DeltaKg / agg.TheoreticalKg * 100)
	}
	if a.km > 0 {
		agg.RealGramsPerKm = emissions.Round2(a.realKg / a.km * emissions.GramsPerKg)
	}
	if a.wltpKm > 0 {
		agg.WltpGramsPerKm = emissions.Round2(a.wltpWeighted / a.wltpKm)
	}
	if a.nedcKm > 0 {
		agg.NedcGramsPerKm = emissions.Round2(a.nedcWeighted / a.nedcKm)
	}

	for gas, kg := range a.perGas {
		agg.PerGas[gas] = emissions.Round2(kg)
	}
	for _, scope := range []emissions.Scope{emissions.ScopeCombustion, emissions.ScopeElectricity} {
		sb, ok := a.scopes[scope]
		if !ok {
			continue
		}
		out := ScopeBreakdown{Scope: scope, RealKg: emissions.Round2(sb.RealKg), PerGas: make(map[emissions.Gas]float64, len(sb.PerGas))}
		for gas, kg := range sb.PerGas {
			out.PerGas[gas] = emissions.Round2(kg)
		}
		agg.Scopes = append(agg.Scopes, out)
	}
	return agg
}

// BreakdownEntry is one macro fuel type's share of real emissions.
type BreakdownEntry struct {
	FuelType string
	Color    string
	RealKg   float64

	// Percent is the share of the grand total. Shares sum to 100 (modulo
	// rounding) when the total is positive, and are all 0 when it is 0.
	Percent float64
}

// FuelTypeBreakdown computes the per-macro-fuel-type breakdown of real
// emissions across rows, sorted by descending share.
func FuelTypeBreakdown(rows []Row) []BreakdownEntry {
	type bucket struct {
		color  string
		realKg float64
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0)
	var total float64

	for _, row := range rows {
		for _, ct := range row.ContextTotals {
			b, ok := buckets[ct.MacroType.Name]
			if !ok {
				b = &bucket{color: ct.MacroType.Color}
				buckets[ct.MacroType.Name] = b
				order = append(order, ct.MacroType.Name)
			}
			b.realKg += ct.RealKg
			total += ct.RealKg
		}
	}

	entries := make([]BreakdownEntry, 0, len(buckets))
	for _, name := range order {
		b := buckets[name]
		entry := BreakdownEntry{FuelType: name, Color: b.color, RealKg: emissions.Round2(b.realKg)}
		if total > 0 {
			entry.Percent = emissions.Round2(b.realKg / total * 100)
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].RealKg > entries[j].RealKg })
	return entries
}
