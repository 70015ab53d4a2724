package main

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/fleetco2/internal/emissions"
	"github.com/rshade/fleetco2/internal/report"
	"github.com/rshade/fleetco2/internal/store"
)

// cliState is the shared state resolved by the root command's
// PersistentPreRunE and consumed by subcommands.
type cliState struct {
	cfg     *Config
	logger  zerolog.Logger
	engine  *report.Engine
	cleanup func()
	req     report.Request
}

func newRootCmd() *cobra.Command {
	state := &cliState{}
	var configPath string

	cmd := &cobra.Command{
		Use:           "fleetco2",
		Short:         "Fleet CO2e emissions reporting",
		Long:          "fleetco2 computes theoretical-vs-real CO2e emissions for a vehicle fleet: aggregations, time series, target progress, and drill-down.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			explicit := cmd.Flags().Changed("config")
			cfg, err := loadConfig(configPath, explicit)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, cfg)
			state.cfg = cfg

			level := zerolog.InfoLevel
			if cfg.Verbose {
				level = zerolog.DebugLevel
			}
			state.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
			emissions.SetLogger(state.logger)

			st, cleanup, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			state.cleanup = cleanup
			state.engine = report.NewEngine(st, state.logger)

			from, to, err := cfg.dateRange()
			if err != nil {
				return err
			}
			granularity, err := emissions.ParseGranularity(cfg.Granularity)
			if err != nil {
				return err
			}
			state.req = report.Request{From: from, To: to, Granularity: granularity}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if state.cleanup != nil {
				state.cleanup()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "fleetco2.yaml", "path to YAML config file")
	cmd.PersistentFlags().String("fixture", "", "path to a JSON snapshot fixture (overrides the database)")
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string (defaults to DATABASE_URL)")
	cmd.PersistentFlags().String("from", "", "range start (YYYY-MM-DD, default: start of current year)")
	cmd.PersistentFlags().String("to", "", "range end (YYYY-MM-DD, default: end of current year)")
	cmd.PersistentFlags().String("granularity", "", "period granularity: monthly, quarterly, or yearly")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newReportCmd(state), newTimeSeriesCmd(state), newTargetsCmd(state), newDrillDownCmd(state))
	return cmd
}

func applyFlagOverrides(cmd *cobra.Command, cfg *Config) {
	if v, _ := cmd.Flags().GetString("fixture"); v != "" {
		cfg.Fixture = v
	}
	if v, _ := cmd.Flags().GetString("database-url"); v != "" {
		cfg.DatabaseURL = v
	}
	if v, _ := cmd.Flags().GetString("from"); v != "" {
		cfg.From = v
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		cfg.To = v
	}
	if v, _ := cmd.Flags().GetString("granularity"); v != "" {
		cfg.Granularity = v
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
}

func openStore(ctx context.Context, cfg *Config) (store.Store, func(), error) {
	if cfg.Fixture != "" {
		st, err := store.LoadFixture(cfg.Fixture)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("no data source: set --fixture, --database-url, or DATABASE_URL")
	}
	st, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return st, st.Close, nil
}

// printJSON writes indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --as-of: %w", err)
	}
	return t, nil
}
