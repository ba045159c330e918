package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/hydro.report/internal/analysis"
	"github.com/banshee-data/hydro.report/internal/charts"
	"github.com/banshee-data/hydro.report/internal/config"
	"github.com/banshee-data/hydro.report/internal/geo"
	"github.com/banshee-data/hydro.report/internal/layers"
	"github.com/banshee-data/hydro.report/internal/scan"
	"github.com/banshee-data/hydro.report/internal/water"
)

// maxPolygonFileSize bounds GeoJSON files passed with --polygon.
const maxPolygonFileSize = 4 * 1024 * 1024

// addScanFlags registers the flags shared by scan and summary.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("lat", 0, "Latitude of the water body")
	cmd.Flags().Float64("lng", 0, "Longitude of the water body")
	cmd.Flags().String("polygon", "", "GeoJSON file with a drawn polygon; its centroid is scanned")
	cmd.Flags().Duration("timeout", 0, "Abort the scan after this long (0 uses the configured scan_timeout)")
	cmd.Flags().Bool("remote", false, "Use the deployed analysis service instead of "+config.DefaultLocalURL)
}

// pointFromFlags reads the scan point from --lat/--lng or --polygon.
func pointFromFlags(cmd *cobra.Command) (water.Point, error) {
	path, _ := cmd.Flags().GetString("polygon")
	latSet := cmd.Flags().Changed("lat")
	lngSet := cmd.Flags().Changed("lng")

	if path != "" {
		if latSet || lngSet {
			return water.Point{}, errors.New("--polygon cannot be combined with --lat/--lng")
		}
		info, err := os.Stat(path)
		if err != nil {
			return water.Point{}, fmt.Errorf("read polygon: %w", err)
		}
		if info.Size() > maxPolygonFileSize {
			return water.Point{}, fmt.Errorf("polygon file too large: %d bytes (max %d)", info.Size(), maxPolygonFileSize)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return water.Point{}, fmt.Errorf("read polygon: %w", err)
		}
		return geo.PointFromGeoJSON(data)
	}

	if !latSet || !lngSet {
		return water.Point{}, errors.New("either --lat and --lng or --polygon is required")
	}
	lat, _ := cmd.Flags().GetFloat64("lat")
	lng, _ := cmd.Flags().GetFloat64("lng")
	p := water.Point{Lat: lat, Lng: lng}
	if err := p.Validate(); err != nil {
		return water.Point{}, err
	}
	return p, nil
}

// cliBaseURL picks the analysis service for one-shot commands. A pinned
// base_url wins; otherwise the CLI runs on a local host unless --remote.
func cliBaseURL(cfg *config.Config, remote bool) string {
	if cfg.BaseURL != nil && *cfg.BaseURL != "" {
		return cfg.GetBaseURL("")
	}
	if remote {
		return cfg.GetDeployedURL()
	}
	return config.DefaultLocalURL
}

// terminalViews prints controller feedback as plain lines and keeps the
// last applied result for the caller.
type terminalViews struct {
	w io.Writer

	metrics *water.Metrics
	charts  charts.Data
	toggles []layers.Toggle
}

func (v *terminalViews) Show() { fmt.Fprintln(v.w, "Scanning…") }
func (v *terminalViews) Hide() {}

func (v *terminalViews) Notify(n scan.Notification) {
	fmt.Fprintf(v.w, "[%s] %s\n", n.Level, n.Message)
}

func (v *terminalViews) SetStatus(scan.StatusText) {}

func (v *terminalViews) Place(p water.Point) {
	fmt.Fprintf(v.w, "Selected %s\n", p)
}

func (v *terminalViews) Clear() {}

func (v *terminalViews) ApplyMetrics(m water.Metrics) { v.metrics = &m }
func (v *terminalViews) ApplyCharts(d charts.Data)    { v.charts = d }

func (v *terminalViews) RebuildLayers(c *layers.Control) {
	v.toggles = c.Toggles()
}

func (v *terminalViews) views() scan.Views {
	return scan.Views{Progress: v, Notifier: v, Status: v, Marker: v, Result: v}
}

// scanOutcome is one finished CLI scan.
type scanOutcome struct {
	Session scan.Session          `json:"session"`
	Result  *water.AnalysisResult `json:"result,omitempty"`
	Metrics *water.Metrics        `json:"metrics,omitempty"`
	Charts  charts.Data           `json:"charts"`
	Layers  []layers.Toggle       `json:"layers"`
}

// runScan performs a single scan against the configured service and blocks
// until it finishes. Cancelling ctx cancels the scan.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, analyzer analysis.Analyzer, out io.Writer) (*scanOutcome, error) {
	p, err := pointFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		timeout = cfg.GetScanTimeout()
	}
	if analyzer == nil {
		remote, _ := cmd.Flags().GetBool("remote")
		analyzer = analysis.NewClient(nil, cliBaseURL(cfg, remote))
	}

	tv := &terminalViews{w: out}
	ctrl, err := scan.NewController(scan.Config{
		Analyzer:    analyzer,
		Views:       tv.views(),
		HideDelay:   0,
		Timeout:     timeout,
		HistorySize: 1,
	})
	if err != nil {
		return nil, err
	}
	defer ctrl.Close()

	id, err := ctrl.BeginScan(ctx, p)
	if err != nil {
		return nil, err
	}
	s, err := ctrl.Wait(context.Background(), id)
	if err != nil {
		return nil, err
	}

	res, _ := ctrl.Result()
	outcome := &scanOutcome{
		Session: s,
		Result:  res,
		Metrics: tv.metrics,
		Charts:  tv.charts,
		Layers:  tv.toggles,
	}
	switch s.Status {
	case scan.StatusCompleted:
		return outcome, nil
	case scan.StatusCancelled:
		return outcome, fmt.Errorf("scan %s cancelled", s.ID)
	default:
		return outcome, fmt.Errorf("scan %s failed: %s", s.ID, s.Error)
	}
}

// elapsed formats a session duration for terminal output.
func elapsed(s scan.Session) string {
	return s.Duration().Round(time.Millisecond).String()
}
