package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/hydro.report/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of hydro.`,
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "hydro version %s\n", info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", info.GitSHA)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", info.BuildTime)
		},
	}
}
