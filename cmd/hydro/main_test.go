package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/hydro.report/internal/config"
	"github.com/banshee-data/hydro.report/internal/testutil"
	"github.com/banshee-data/hydro.report/internal/water"
)

const testFixtures = `{
  "sites": [
    {
      "name": "Demo Reservoir",
      "lat": 12.5,
      "lng": 76.5,
      "radius_km": 3,
      "response": {
        "area": 3.21,
        "volume": 12.8,
        "avg_elevation": 752.4,
        "max_volume": 15.0,
        "date": "2025-11-02",
        "layers": {
          "analytics": "https://t/analytics/{z}/{x}/{y}.png",
          "depth": "https://t/depth/{z}/{x}/{y}.png",
          "summer": "https://t/summer/{z}/{x}/{y}.png"
        },
        "seasonal": {"summer": 2.35, "monsoon": 3.88, "winter": 3.02}
      }
    },
    {
      "name": "Cloud Covered Lake",
      "lat": 12.61,
      "lng": 76.31,
      "radius_km": 1,
      "response": {"area": 0, "volume": 0, "error": "No image found"}
    }
  ]
}`

// newFixtureService starts the fixture endpoints and points HYDRO_BASE_URL
// at them. It returns a config file path to pass with --config.
func newFixtureService(t *testing.T, cfgYAML string) string {
	t.Helper()
	testutil.MuteLogs(t)
	dir := t.TempDir()

	fixturePath := filepath.Join(dir, "fixtures.json")
	require.NoError(t, os.WriteFile(fixturePath, []byte(testFixtures), 0o644))
	handler, err := fixtureHandler(fixturePath)
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv(config.EnvBaseURL, srv.URL)

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))
	return cfgPath
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--quiet", "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "scan", "summary", "fixture", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCmd(t *testing.T) {
	testutil.MuteLogs(t)
	out, _, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hydro version ")
	assert.Contains(t, out, "commit:")
}

func TestScanCmd_PrintsMetrics(t *testing.T) {
	cfgPath := newFixtureService(t, "volume_units: mcm\narea_units: ha\n")

	out, _, err := runCmd(t, "scan", "--config", cfgPath, "--lat", "12.5", "--lng", "76.5")
	require.NoError(t, err)

	assert.Contains(t, out, "Scanning…")
	assert.Contains(t, out, "[success] Analysis complete")
	assert.Contains(t, out, "321.00 ha")
	assert.Contains(t, out, "85% (high)")
	assert.Contains(t, out, "Image date")
	assert.Contains(t, out, "Layer Analytics")
}

func TestScanCmd_JSON(t *testing.T) {
	cfgPath := newFixtureService(t, "{}\n")

	out, _, err := runCmd(t, "scan", "--config", cfgPath, "--lat", "12.5", "--lng", "76.5", "--json")
	require.NoError(t, err)

	var got struct {
		Session struct {
			Status string `json:"status"`
		}
		Metrics water.Metrics
		Layers  []struct {
			Key string `json:"key"`
			On  bool   `json:"on"`
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "completed", got.Session.Status)
	assert.Equal(t, 85, got.Metrics.FillPercent)
	assert.Equal(t, 15.0, got.Metrics.Capacity)
	require.Len(t, got.Layers, 3)

	on := map[string]bool{}
	for _, l := range got.Layers {
		on[l.Key] = l.On
	}
	assert.True(t, on["analytics"])
	assert.True(t, on["depth"])
	assert.False(t, on["summer"])
}

func TestScanCmd_ApplicationError(t *testing.T) {
	cfgPath := newFixtureService(t, "{}\n")

	out, _, err := runCmd(t, "scan", "--config", cfgPath, "--lat", "12.61", "--lng", "76.31")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No image found")
	assert.Contains(t, out, "[error] No image found")
}

func TestScanCmd_Polygon(t *testing.T) {
	cfgPath := newFixtureService(t, "{}\n")
	poly := filepath.Join(t.TempDir(), "tank.geojson")
	require.NoError(t, os.WriteFile(poly, []byte(`{
  "type": "Feature",
  "properties": {},
  "geometry": {"type": "Polygon", "coordinates": [[[76.49, 12.49], [76.51, 12.49], [76.51, 12.51], [76.49, 12.51], [76.49, 12.49]]]}
}`), 0o644))

	out, _, err := runCmd(t, "scan", "--config", cfgPath, "--polygon", poly)
	require.NoError(t, err)
	assert.Contains(t, out, "85% (high)")
}

func TestScanCmd_PointFlags(t *testing.T) {
	cfgPath := newFixtureService(t, "{}\n")
	poly := filepath.Join(t.TempDir(), "p.geojson")
	require.NoError(t, os.WriteFile(poly, []byte(`{"type":"Point","coordinates":[76.5,12.5]}`), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing", nil, "either --lat and --lng or --polygon is required"},
		{"lat only", []string{"--lat", "12.5"}, "either --lat and --lng or --polygon is required"},
		{"out of range", []string{"--lat", "95", "--lng", "76.5"}, "latitude"},
		{"both forms", []string{"--lat", "12.5", "--lng", "76.5", "--polygon", poly}, "cannot be combined"},
		{"missing file", []string{"--polygon", filepath.Join(t.TempDir(), "nope.geojson")}, "read polygon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"scan", "--config", cfgPath}, tt.args...)
			_, _, err := runCmd(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSummaryCmd_Stdout(t *testing.T) {
	cfgPath := newFixtureService(t, "{}\n")

	out, stderr, err := runCmd(t, "summary", "--config", cfgPath, "--lat", "12.5", "--lng", "76.5")
	require.NoError(t, err)
	assert.Contains(t, out, "# Water Body Summary")
	assert.Contains(t, out, "Fixture summary.")
	assert.Contains(t, out, "Summer: 2.35 km²")
	assert.Contains(t, stderr, "Analysis complete")
}

func TestSummaryCmd_WritesFiles(t *testing.T) {
	cfgPath := newFixtureService(t, "{}\n")
	dir := t.TempDir()

	out, _, err := runCmd(t, "summary", "--config", cfgPath, "--lat", "12.5", "--lng", "76.5",
		"--out-dir", dir, "--name", "demo report", "--png")
	require.NoError(t, err)

	md, err := os.ReadFile(filepath.Join(dir, "demo_report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Metrics")
	assert.Contains(t, string(md), "85% (high)")

	png, err := os.ReadFile(filepath.Join(dir, "demo_report.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	assert.Equal(t, 2, strings.Count(out, "Wrote "))
}

func TestSummaryCmd_FailedScan(t *testing.T) {
	cfgPath := newFixtureService(t, "{}\n")

	_, _, err := runCmd(t, "summary", "--config", cfgPath, "--lat", "12.61", "--lng", "76.31")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No image found")
}

func TestSummaryCmd_PNGNeedsOutDir(t *testing.T) {
	cfgPath := newFixtureService(t, "{}\n")

	out, stderr, err := runCmd(t, "summary", "--config", cfgPath, "--lat", "12.5", "--lng", "76.5", "--png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--png requires --out-dir")
	assert.NotContains(t, out, "# Water Body Summary")
	assert.NotContains(t, stderr, "Analysis complete")
}

func TestCLIBaseURL(t *testing.T) {
	pinned := "http://analysis.internal:9000/"
	deployed := "https://deployed.example"

	assert.Equal(t, config.DefaultLocalURL, cliBaseURL(config.Empty(), false))
	assert.Equal(t, config.DefaultDeployedURL, cliBaseURL(config.Empty(), true))
	assert.Equal(t, deployed, cliBaseURL(&config.Config{DeployedURL: &deployed}, true))
	assert.Equal(t, "http://analysis.internal:9000", cliBaseURL(&config.Config{BaseURL: &pinned}, true))
}

func TestListenHost(t *testing.T) {
	tests := map[string]string{
		":8080":                "localhost",
		"0.0.0.0:8080":         "localhost",
		"[::]:8080":            "localhost",
		"dash.example.org:443": "dash.example.org",
		"not-an-address":       "localhost",
	}
	for listen, want := range tests {
		assert.Equal(t, want, listenHost(listen), listen)
	}
}

func TestNewDashboard_InvalidUnits(t *testing.T) {
	bad := "gallons"
	_, err := newDashboard(&config.Config{VolumeUnits: &bad}, "127.0.0.1:0", config.DefaultLocalURL, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid volume units")
}

func TestPrintMetrics_ConvertsUnits(t *testing.T) {
	vu, au := "acre-ft", "mi2"
	cfg := &config.Config{VolumeUnits: &vu, AreaUnits: &au}
	m := water.NewMetrics(&water.AnalysisResult{Area: 3.21, Volume: 12.8, MaxVolume: 15})

	var buf bytes.Buffer
	require.NoError(t, printMetrics(&buf, cfg, &scanOutcome{Metrics: &m}))
	out := buf.String()
	assert.Contains(t, out, "10,377.13 acre-ft")
	assert.Contains(t, out, "12,160.70 acre-ft")
	assert.Contains(t, out, "1.24 mi²")
	assert.NotContains(t, out, "Image date")

	err := printMetrics(&buf, cfg, &scanOutcome{})
	require.Error(t, err)
}
