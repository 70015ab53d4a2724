package main

import (
	"github.com/spf13/cobra"

	"github.com/rshade/fleetco2/internal/report"
)

func newReportCmd(state *cliState) *cobra.Command {
	var dimension string
	var breakdown bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate emissions along a dimension",
		Example: `  # Per-vehicle aggregation for Q1
  fleetco2 report --dimension vehicle --from 2025-01-01 --to 2025-03-31

  # Per-carlist totals (vehicles in several carlists count in each)
  fleetco2 report --dimension carlist

  # Fuel-type breakdown with percentage shares
  fleetco2 report --breakdown`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if breakdown {
				entries, err := state.engine.Breakdown(cmd.Context(), state.req)
				if err != nil {
					return err
				}
				return printJSON(cmd, entries)
			}

			dim, err := report.ParseDimension(dimension)
			if err != nil {
				return err
			}
			results, err := state.engine.Aggregations(cmd.Context(), state.req, dim)
			if err != nil {
				return err
			}
			return printJSON(cmd, results)
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", "fleet", "grouping dimension: fleet, vehicle, carlist, fueltype, or period")
	cmd.Flags().BoolVar(&breakdown, "breakdown", false, "emit the fuel-type breakdown instead of an aggregation")
	return cmd
}
