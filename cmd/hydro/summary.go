package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/hydro.report/internal/analysis"
	"github.com/banshee-data/hydro.report/internal/charts"
	"github.com/banshee-data/hydro.report/internal/httputil"
	"github.com/banshee-data/hydro.report/internal/narrative"
	"github.com/banshee-data/hydro.report/internal/security"
)

// NewSummaryCmd creates the summary subcommand.
func NewSummaryCmd() *cobra.Command {
	return newSummaryCmd(nil, nil)
}

func newSummaryCmd(analyzer analysis.Analyzer, httpClient httputil.HTTPClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Scan a water body and write a Markdown summary report",
		Long: `summary scans one water body, asks the summary service for a narrative
and renders a Markdown report. Without --out-dir the report is written to
stdout; with it, <name>.md (and <name>.png with --png) are written there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("out-dir")
			withPNG, _ := cmd.Flags().GetBool("png")
			if withPNG && dir == "" {
				return errors.New("--png requires --out-dir")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			outcome, err := runScan(ctx, cmd, cfg, analyzer, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			point := outcome.Session.Point
			in, err := narrative.Gate(outcome.Result, &point)
			if err != nil {
				return err
			}

			remote, _ := cmd.Flags().GetBool("remote")
			client := narrative.NewClient(httpClient, cliBaseURL(cfg, remote))
			now := time.Now()
			report, err := client.Summarize(ctx, in, now)
			switch {
			case errors.Is(err, narrative.ErrNoCandidate):
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			case err != nil:
				return fmt.Errorf("summary failed: %w", err)
			}

			if dir == "" {
				return narrative.RenderMarkdown(cmd.OutOrStdout(), report)
			}

			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = security.ReportBaseName(point, now)
			} else {
				name = security.SanitizeFilename(name)
			}
			mdPath, err := security.ExportPath(dir, name+".md")
			if err != nil {
				return err
			}
			if err := writeFile(mdPath, func(w io.Writer) error {
				return narrative.RenderMarkdown(w, report)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", mdPath)

			if withPNG {
				pngPath, err := security.ExportPath(dir, name+".png")
				if err != nil {
					return err
				}
				if err := writeFile(pngPath, func(w io.Writer) error {
					return charts.RenderPNG(w, outcome.Charts)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", pngPath)
			}
			return nil
		},
	}
	addScanFlags(cmd)
	cmd.Flags().String("out-dir", "", "Directory for the report files (stdout when empty)")
	cmd.Flags().String("name", "", "Report file name stem (defaults to one derived from the location and time)")
	cmd.Flags().Bool("png", false, "Also write the seasonal chart as a PNG (requires --out-dir)")
	return cmd
}

// writeFile creates path and streams render into it.
func writeFile(path string, render func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
