package main

import (
	"github.com/spf13/cobra"
)

func newTimeSeriesCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "timeseries",
		Short: "Theoretical vs. real emissions per period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			points, err := state.engine.TimeSeries(cmd.Context(), state.req)
			if err != nil {
				return err
			}
			return printJSON(cmd, points)
		},
	}
}
