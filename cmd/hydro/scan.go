package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/banshee-data/hydro.report/internal/analysis"
	"github.com/banshee-data/hydro.report/internal/config"
	"github.com/banshee-data/hydro.report/internal/units"
)

// NewScanCmd creates the scan subcommand.
func NewScanCmd() *cobra.Command {
	return newScanCmd(nil)
}

func newScanCmd(analyzer analysis.Analyzer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Analyse one water body and print its metrics",
		Example: `  hydro scan --lat 12.5 --lng 76.5
  hydro scan --polygon tank.geojson --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			asJSON, _ := cmd.Flags().GetBool("json")
			progress := cmd.ErrOrStderr()
			if !asJSON {
				progress = cmd.OutOrStdout()
			}
			outcome, err := runScan(ctx, cmd, cfg, analyzer, progress)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(outcome)
			}
			return printMetrics(cmd.OutOrStdout(), cfg, outcome)
		},
	}
	addScanFlags(cmd)
	cmd.Flags().Bool("json", false, "Print the session, result and metrics as JSON")
	return cmd
}

// printMetrics writes the metrics panel as an aligned table.
func printMetrics(w io.Writer, cfg *config.Config, o *scanOutcome) error {
	if o.Metrics == nil {
		return fmt.Errorf("scan %s produced no metrics", o.Session.ID)
	}
	m := o.Metrics
	vu, au := cfg.GetVolumeUnits(), cfg.GetAreaUnits()

	// Group thousands in converted values.
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Location\t%s\n", o.Session.Point)
	p.Fprintf(tw, "Surface area\t%.2f %s\n", units.ConvertArea(m.Area, au), units.Symbol(au))
	p.Fprintf(tw, "Volume\t%.2f %s\n", units.ConvertVolume(m.Volume, vu), units.Symbol(vu))
	p.Fprintf(tw, "Capacity\t%.2f %s\n", units.ConvertVolume(m.Capacity, vu), units.Symbol(vu))
	fmt.Fprintf(tw, "Fill\t%d%% (%s)\n", m.FillPercent, m.FillLevel)
	fmt.Fprintf(tw, "Avg elevation\t%.1f m\n", m.AvgElevation)
	if o.Result != nil && o.Result.Date != "" {
		fmt.Fprintf(tw, "Image date\t%s\n", o.Result.Date)
	}
	for _, t := range o.Layers {
		state := "off"
		if t.On {
			state = "on"
		}
		fmt.Fprintf(tw, "Layer %s\t%s\n", t.Label, state)
	}
	fmt.Fprintf(tw, "Elapsed\t%s\n", elapsed(o.Session))
	return tw.Flush()
}
