package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rshade/fleetco2/internal/emissions"
)

// MemoryStore is an in-memory Store over pre-loaded slices. Used by tests and
// by the CLI's fixture mode. The zero value is an empty store.
type MemoryStore struct {
	VehicleRows     []emissions.Vehicle
	FuelRows        []emissions.FuelRecord
	OdometerRows    []emissions.OdometerReading
	MembershipRows  []emissions.CarlistMembership
	Tables          emissions.ReferenceTables
	TargetRows      []emissions.EmissionTarget
}

// Vehicles implements Store.
func (s *MemoryStore) Vehicles(_ context.Context) ([]emissions.Vehicle, error) {
	return s.VehicleRows, nil
}

// FuelRecords implements Store, filtering by calendar day.
func (s *MemoryStore) FuelRecords(_ context.Context, from, to time.Time) ([]emissions.FuelRecord, error) {
	var out []emissions.FuelRecord
	for _, r := range s.FuelRows {
		if inRange(r.Date, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// OdometerReadings implements Store, filtering by calendar day.
func (s *MemoryStore) OdometerReadings(_ context.Context, from, to time.Time) ([]emissions.OdometerReading, error) {
	var out []emissions.OdometerReading
	for _, r := range s.OdometerRows {
		if inRange(r.Date, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// CarlistMemberships implements Store.
func (s *MemoryStore) CarlistMemberships(_ context.Context) ([]emissions.CarlistMembership, error) {
	return s.MembershipRows, nil
}

// ReferenceTables implements Store.
func (s *MemoryStore) ReferenceTables(_ context.Context) (emissions.ReferenceTables, error) {
	return s.Tables, nil
}

// Targets implements Store.
func (s *MemoryStore) Targets(_ context.Context) ([]emissions.EmissionTarget, error) {
	return s.TargetRows, nil
}

func inRange(t, from, to time.Time) bool {
	d := emissions.DateOnly(t)
	return !d.Before(emissions.DateOnly(from)) && !d.After(emissions.DateOnly(to))
}

// fixtureDate unmarshals "2006-01-02" JSON strings. An empty string is the
// zero time (open-ended validity, absent dates).
type fixtureDate struct {
	time.Time
}

func (d *fixtureDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("parsing fixture date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// fixtureFile is the on-disk snapshot format consumed by LoadFixture.
type fixtureFile struct {
	Vehicles []struct {
		ID           int64  `json:"id"`
		LicensePlate string `json:"licensePlate"`
		Make         string `json:"make"`
		Model        string `json:"model"`
		IsHybrid     bool   `json:"isHybrid"`
		Engines      []struct {
			FuelCode      string   `json:"fuelCode"`
			Co2GramsPerKm *float64 `json:"co2GramsPerKm"`
			Wltp          *float64 `json:"co2GramsPerKmWltp"`
			Nedc          *float64 `json:"co2GramsPerKmNedc"`
		} `json:"engines"`
	} `json:"vehicles"`
	FuelRecords []struct {
		VehicleID      int64       `json:"vehicleId"`
		Date           fixtureDate `json:"date"`
		FuelCode       string      `json:"fuelCode"`
		QuantityLiters float64     `json:"quantityLiters"`
		QuantityKwh    *float64    `json:"quantityKwh"`
		OdometerKm     *float64    `json:"odometerKm"`
	} `json:"fuelRecords"`
	OdometerReadings []struct {
		VehicleID int64       `json:"vehicleId"`
		Date      fixtureDate `json:"date"`
		Km        float64     `json:"km"`
	} `json:"odometerReadings"`
	Carlists []struct {
		VehicleID   int64  `json:"vehicleId"`
		CarlistID   int64  `json:"carlistId"`
		CarlistName string `json:"carlistName"`
	} `json:"carlists"`
	MacroFuelTypes []struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Scope int    `json:"scope"`
		Color string `json:"color"`
	} `json:"macroFuelTypes"`
	FuelTypeMappings []struct {
		FuelCode    string `json:"fuelCode"`
		MacroTypeID int64  `json:"macroTypeId"`
	} `json:"fuelTypeMappings"`
	GasFactors []struct {
		MacroTypeID int64       `json:"macroTypeId"`
		Gas         string      `json:"gas"`
		Value       float64     `json:"value"`
		ValidFrom   fixtureDate `json:"validFrom"`
		ValidTo     fixtureDate `json:"validTo"`
	} `json:"gasFactors"`
	GWPValues []struct {
		Gas       string      `json:"gas"`
		Value     float64     `json:"value"`
		ValidFrom fixtureDate `json:"validFrom"`
		ValidTo   fixtureDate `json:"validTo"`
	} `json:"gwpValues"`
	Targets []struct {
		ID          int64       `json:"id"`
		Scope       string      `json:"scope"`
		CarlistID   int64       `json:"carlistId"`
		TargetKg    float64     `json:"targetKg"`
		Period      string      `json:"period"`
		StartDate   fixtureDate `json:"startDate"`
		EndDate     fixtureDate `json:"endDate"`
		Description string      `json:"description"`
	} `json:"targets"`
}

// LoadFixture reads a JSON snapshot file into a MemoryStore.
func LoadFixture(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}

	var f fixtureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding fixture %s: %w", path, err)
	}

	s := &MemoryStore{}
	for _, v := range f.Vehicles {
		vehicle := emissions.Vehicle{
			ID:           v.ID,
			LicensePlate: v.LicensePlate,
			Make:         v.Make,
			Model:        v.Model,
			IsHybrid:     v.IsHybrid,
		}
		for _, e := range v.Engines {
			vehicle.Engines = append(vehicle.Engines, emissions.CatalogEngine{
				FuelCode:          e.FuelCode,
				CO2GramsPerKm:     optional(e.Co2GramsPerKm),
				CO2GramsPerKmWltp: optional(e.Wltp),
				CO2GramsPerKmNedc: optional(e.Nedc),
			})
		}
		s.VehicleRows = append(s.VehicleRows, vehicle)
	}
	for _, r := range f.FuelRecords {
		s.FuelRows = append(s.FuelRows, emissions.FuelRecord{
			VehicleID:      r.VehicleID,
			Date:           r.Date.Time,
			FuelCode:       r.FuelCode,
			QuantityLiters: r.QuantityLiters,
			QuantityKwh:    optional(r.QuantityKwh),
			OdometerKm:     optional(r.OdometerKm),
		})
	}
	for _, r := range f.OdometerReadings {
		s.OdometerRows = append(s.OdometerRows, emissions.OdometerReading{VehicleID: r.VehicleID, Date: r.Date.Time, Km: r.Km})
	}
	for _, m := range f.Carlists {
		s.MembershipRows = append(s.MembershipRows, emissions.CarlistMembership{VehicleID: m.VehicleID, CarlistID: m.CarlistID, CarlistName: m.CarlistName})
	}
	for _, mt := range f.MacroFuelTypes {
		s.Tables.MacroTypes = append(s.Tables.MacroTypes, emissions.MacroFuelType{ID: mt.ID, Name: mt.Name, Scope: emissions.Scope(mt.Scope), Color: mt.Color})
	}
	for _, m := range f.FuelTypeMappings {
		s.Tables.Mappings = append(s.Tables.Mappings, emissions.FuelTypeMapping{FuelCode: m.FuelCode, MacroTypeID: m.MacroTypeID})
	}
	for _, g := range f.GasFactors {
		s.Tables.GasFactors = append(s.Tables.GasFactors, emissions.GasFactor{
			MacroTypeID: g.MacroTypeID,
			Gas:         emissions.Gas(g.Gas),
			Value:       g.Value,
			ValidFrom:   g.ValidFrom.Time,
			ValidTo:     g.ValidTo.Time,
		})
	}
	for _, g := range f.GWPValues {
		s.Tables.GWPValues = append(s.Tables.GWPValues, emissions.GWPValue{
			Gas:       emissions.Gas(g.Gas),
			Value:     g.Value,
			ValidFrom: g.ValidFrom.Time,
			ValidTo:   g.ValidTo.Time,
		})
	}
	for _, t := range f.Targets {
		s.TargetRows = append(s.TargetRows, emissions.EmissionTarget{
			ID:          t.ID,
			Scope:       emissions.TargetScope(t.Scope),
			CarlistID:   t.CarlistID,
			TargetKg:    t.TargetKg,
			Period:      emissions.TargetPeriod(t.Period),
			StartDate:   t.StartDate.Time,
			EndDate:     t.EndDate.Time,
			Description: t.Description,
		})
	}
	return s, nil
}

func optional(v *float64) emissions.OptionalFloat {
	if v == nil {
		return emissions.OptionalFloat{}
	}
	return emissions.Some(*v)
}
