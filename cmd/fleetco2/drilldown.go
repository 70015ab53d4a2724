package main

import (
	"github.com/spf13/cobra"
)

func newDrillDownCmd(state *cliState) *cobra.Command {
	var carlistID int64

	cmd := &cobra.Command{
		Use:   "drilldown",
		Short: "Navigate from fleet to carlist to vehicle with contribution shares",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := state.engine.DrillDown(cmd.Context(), state.req, carlistID)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().Int64Var(&carlistID, "carlist", 0, "drill into one carlist's vehicles (0 = fleet root)")
	return cmd
}
