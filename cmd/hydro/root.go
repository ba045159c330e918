package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/banshee-data/hydro.report/internal/config"
	"github.com/banshee-data/hydro.report/internal/monitoring"
	"github.com/banshee-data/hydro.report/internal/version"
)

// NewRootCmd creates the root command for hydro.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hydro",
		Short: "Water body analytics dashboard",
		Long: `hydro serves a dashboard for satellite-derived water body metrics.

Scans are delegated to an external analysis service. When run from a local
host the service is expected at ` + config.DefaultLocalURL + `; otherwise the
deployed service is used. Use "hydro fixture" to run a local stand-in.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			quiet, err := cmd.Flags().GetBool("quiet")
			if err != nil {
				return err
			}
			if quiet {
				monitoring.SetLogger(nil)
			}
			envFile, err := cmd.Flags().GetString("env-file")
			if err != nil {
				return err
			}
			return config.LoadDotEnv(envFile)
		},
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file (.json, .yaml); defaults to "+config.DefaultPath())
	cmd.PersistentFlags().String("env-file", ".env", "Environment file loaded before reading HYDRO_* variables")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress diagnostic logging")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewSummaryCmd())
	cmd.AddCommand(NewFixtureCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration named by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
