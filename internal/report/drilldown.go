package report

import (
	"fmt"

	"github.com/rshade/fleetco2/internal/emissions"
)

// DrillLevel is one of the three fixed drill-down levels.
type DrillLevel string

const (
	DrillLevelFleet   DrillLevel = "fleet"
	DrillLevelCarlist DrillLevel = "carlist"
	DrillLevelVehicle DrillLevel = "vehicle"
)

// DrillDownItem wraps one aggregation group with its share of the parent
// total and the number of navigable children beneath it.
type DrillDownItem struct {
	Aggregation

	// ContributionPercent is the item's real emissions as a share of the
	// parent level's real total (0 when the parent total is 0).
	ContributionPercent float64

	// ChildCount is the number of items the next level down would show.
	ChildCount int
}

// DrillDownResult is one level of the fleet → carlist → vehicle hierarchy.
type DrillDownResult struct {
	Level      DrillLevel
	ParentKey  string
	TotalKm    float64
	RealKg     float64
	TheoreticalKg float64
	Items      []DrillDownItem
}

// FleetDrillDown builds the root level: the fleet total with one item per
// carlist. Vehicles outside every carlist appear in the fleet totals but in
// no child item.
func FleetDrillDown(rows []Row) (DrillDownResult, error) {
	fleet, err := Aggregate(rows, DimensionFleet)
	if err != nil {
		return DrillDownResult{}, err
	}
	result := DrillDownResult{Level: DrillLevelFleet, ParentKey: "fleet"}
	if len(fleet) > 0 {
		result.TotalKm = fleet[0].TotalKm
		result.RealKg = fleet[0].RealKg
		result.TheoreticalKg = fleet[0].TheoreticalKg
	}

	carlists, err := Aggregate(rows, DimensionCarlist)
	if err != nil {
		return DrillDownResult{}, err
	}
	result.Items = wrapItems(carlists, result.RealKg, func(a Aggregation) int { return a.VehicleCount })
	return result, nil
}

// CarlistDrillDown builds the middle level: one carlist's total with one item
// per member vehicle. Vehicles are leaves, so child counts are 0.
func CarlistDrillDown(rows []Row, carlistID int64) (DrillDownResult, error) {
	scoped := filterByCarlist(rows, carlistID)
	if len(scoped) == 0 {
		return DrillDownResult{}, fmt.Errorf("%w: %d", ErrCarlistNotFound, carlistID)
	}

	carlist, err := Aggregate(scoped, DimensionFleet)
	if err != nil {
		return DrillDownResult{}, err
	}
	result := DrillDownResult{Level: DrillLevelCarlist, ParentKey: fmt.Sprintf("%d", carlistID)}
	if len(carlist) > 0 {
		result.TotalKm = carlist[0].TotalKm
		result.RealKg = carlist[0].RealKg
		result.TheoreticalKg = carlist[0].TheoreticalKg
	}

	vehicles, err := Aggregate(scoped, DimensionVehicle)
	if err != nil {
		return DrillDownResult{}, err
	}
	result.Items = wrapItems(vehicles, result.RealKg, func(Aggregation) int { return 0 })
	return result, nil
}

func wrapItems(groups []Aggregation, parentRealKg float64, childCount func(Aggregation) int) []DrillDownItem {
	items := make([]DrillDownItem, 0, len(groups))
	for _, g := range groups {
		item := DrillDownItem{Aggregation: g, ChildCount: childCount(g)}
		if parentRealKg > 0 {
			item.ContributionPercent = emissions.Round2(g.RealKg / parentRealKg * 100)
		}
		items = append(items, item)
	}
	return items
}
