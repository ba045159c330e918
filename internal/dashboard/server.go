// Package dashboard serves the water-body dashboard: the single in-memory
// application state as JSON and HTML, rendered charts, layer toggles, and
// the narrative summary.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/banshee-data/hydro.report/internal/monitoring"
	"github.com/banshee-data/hydro.report/internal/narrative"
	"github.com/banshee-data/hydro.report/internal/scan"
	"github.com/banshee-data/hydro.report/internal/timeutil"
	"github.com/banshee-data/hydro.report/internal/units"
)

var logf = monitoring.Component("Dashboard")

// Config configures a Server.
type Config struct {
	Address    string
	Controller *scan.Controller
	State      *State
	// Narrative is the summary client. Summaries are disabled when nil.
	Narrative *narrative.Client
	Templates TemplateProvider
	Clock     timeutil.Clock

	BaseURL     string
	VolumeUnits string
	AreaUnits   string
}

// Server is the dashboard HTTP server.
type Server struct {
	ctrl      *scan.Controller
	state     *State
	narrative *narrative.Client
	templates TemplateProvider
	clock     timeutil.Clock

	baseURL     string
	volumeUnits string
	areaUnits   string

	// scanCtx outlives individual HTTP requests and ends at shutdown.
	scanCtx   context.Context
	stopScans context.CancelFunc

	mu     sync.Mutex
	report *narrative.Report

	server *http.Server
}

// NewServer creates a server. Controller and State are required.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Controller == nil || cfg.State == nil {
		return nil, errors.New("dashboard requires a scan controller and state")
	}
	if cfg.Templates == nil {
		cfg.Templates = NewEmbeddedTemplateProvider(templateFS, "templates")
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.VolumeUnits == "" {
		cfg.VolumeUnits = units.MCM
	}
	if cfg.AreaUnits == "" {
		cfg.AreaUnits = units.KM2
	}
	if !units.IsValidVolume(cfg.VolumeUnits) {
		return nil, fmt.Errorf("invalid volume units %q, want one of %s", cfg.VolumeUnits, units.GetValidVolumeUnitsString())
	}
	if !units.IsValidArea(cfg.AreaUnits) {
		return nil, fmt.Errorf("invalid area units %q, want one of %s", cfg.AreaUnits, units.GetValidAreaUnitsString())
	}

	scanCtx, stop := context.WithCancel(context.Background())
	s := &Server{
		ctrl:        cfg.Controller,
		state:       cfg.State,
		narrative:   cfg.Narrative,
		templates:   cfg.Templates,
		clock:       cfg.Clock,
		baseURL:     cfg.BaseURL,
		volumeUnits: cfg.VolumeUnits,
		areaUnits:   cfg.AreaUnits,
		scanCtx:     scanCtx,
		stopScans:   stop,
	}
	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return LoggingMiddleware(s.ServeMux())
}

// ServeMux registers every dashboard route, including /debug/ admin pages.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/scan", s.handleBeginScan)
	mux.HandleFunc("POST /api/scan/cancel", s.handleCancelScan)
	mux.HandleFunc("GET /api/scan/{id}", s.handleSession)
	mux.HandleFunc("GET /api/layers", s.handleLayers)
	mux.HandleFunc("POST /api/layers/{key}", s.handleSetLayer)
	mux.HandleFunc("GET /charts", s.handleCharts)
	mux.HandleFunc("GET /charts/seasonal.png", s.handleSeasonalPNG)
	mux.HandleFunc("POST /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/summary.md", s.handleSummaryMarkdown)
	mux.HandleFunc("GET /api/version", s.handleVersion)
	s.ctrl.AttachAdminRoutes(mux)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully and
// aborts any scan still in flight.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		logf("Starting HTTP server on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		s.stopScans()
		if err != nil {
			return fmt.Errorf("dashboard server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logf("shutting down HTTP server...")

	s.stopScans()
	s.ctrl.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logf("HTTP server shutdown error: %v", err)
		if err := s.server.Close(); err != nil {
			logf("HTTP server force close error: %v", err)
		}
	}
	logf("HTTP server routine stopped")
	return nil
}
