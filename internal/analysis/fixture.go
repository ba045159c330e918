package analysis

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/banshee-data/hydro.report/internal/httputil"
	"github.com/banshee-data/hydro.report/internal/monitoring"
	"github.com/banshee-data/hydro.report/internal/water"
)

//go:embed fixtures.json
var defaultFixtures []byte

// FixtureSite is one canned water body.
type FixtureSite struct {
	Name     string          `json:"name"`
	Lat      float64         `json:"lat"`
	Lng      float64         `json:"lng"`
	RadiusKM float64         `json:"radius_km"`
	Response json.RawMessage `json:"response"`
}

// Fixtures is the dev-mode stand-in for the analysis service.
type Fixtures struct {
	Sites []FixtureSite `json:"sites"`
	// Default is served when no site covers the point.
	Default json.RawMessage `json:"default,omitempty"`
	// Delay is added before every response, e.g. "1500ms".
	Delay string `json:"delay,omitempty"`

	delay time.Duration
}

var noImage = json.RawMessage(`{"area": 0, "volume": 0, "error": "No image found"}`)

// ParseFixtures decodes and validates a fixture document.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if f.Delay != "" {
		d, err := time.ParseDuration(f.Delay)
		if err != nil {
			return nil, fmt.Errorf("invalid fixture delay %q: %w", f.Delay, err)
		}
		f.delay = d
	}
	for i, s := range f.Sites {
		if err := (water.Point{Lat: s.Lat, Lng: s.Lng}).Validate(); err != nil {
			return nil, fmt.Errorf("fixture site %d (%s): %w", i, s.Name, err)
		}
		if len(s.Response) == 0 {
			return nil, fmt.Errorf("fixture site %d (%s): missing response", i, s.Name)
		}
		var resp water.AnalysisResponse
		if err := json.Unmarshal(s.Response, &resp); err != nil {
			return nil, fmt.Errorf("fixture site %d (%s): %w", i, s.Name, err)
		}
	}
	return &f, nil
}

// LoadFixtures reads fixtures from path, or the embedded demo set when path
// is empty.
func LoadFixtures(path string) (*Fixtures, error) {
	if path == "" {
		return ParseFixtures(defaultFixtures)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// Lookup returns the canned response body for the nearest site covering p.
func (f *Fixtures) Lookup(p water.Point) (json.RawMessage, string) {
	target := orb.Point{p.Lng, p.Lat}
	best := -1
	bestDist := math.Inf(1)
	for i, s := range f.Sites {
		d := geo.Distance(target, orb.Point{s.Lng, s.Lat})
		if d <= s.RadiusKM*1000 && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		return f.Sites[best].Response, f.Sites[best].Name
	}
	if len(f.Default) > 0 {
		return f.Default, "default"
	}
	return noImage, ""
}

// Handler serves POST /api/analyze from the fixtures, validating the
// request the way the analysis service does.
func (f *Fixtures) Handler() http.Handler {
	logf := monitoring.Component("Fixtures")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w)
			return
		}
		var req struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := httputil.DecodeJSONBody(r, &req); err != nil || req.Lat == nil || req.Lng == nil {
			httputil.BadRequest(w, "Missing coordinates")
			return
		}
		p := water.Point{Lat: *req.Lat, Lng: *req.Lng}
		if err := p.Validate(); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}

		if f.delay > 0 {
			t := time.NewTimer(f.delay)
			select {
			case <-r.Context().Done():
				t.Stop()
				return
			case <-t.C:
			}
		}

		body, site := f.Lookup(p)
		logf("Analyzing location %s -> %q", p, site)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}
