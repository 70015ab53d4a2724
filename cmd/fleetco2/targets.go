package main

import (
	"github.com/spf13/cobra"
)

func newTargetsCmd(state *cliState) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Progress against emission reduction targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asOfDate, err := parseAsOf(asOf)
			if err != nil {
				return err
			}
			progress, err := state.engine.TargetProgressAll(cmd.Context(), state.req, asOfDate)
			if err != nil {
				return err
			}
			return printJSON(cmd, progress)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "evaluation date (YYYY-MM-DD, default: today)")
	return cmd
}
