// Package scan implements the scan lifecycle: one analysis request at a
// time, superseded or cancelled sessions never touching the displayed
// state, and results applied to the metrics, charts and layer views.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/hydro.report/internal/analysis"
	"github.com/banshee-data/hydro.report/internal/charts"
	"github.com/banshee-data/hydro.report/internal/layers"
	"github.com/banshee-data/hydro.report/internal/monitoring"
	"github.com/banshee-data/hydro.report/internal/timeutil"
	"github.com/banshee-data/hydro.report/internal/water"
)

const (
	// DefaultHideDelay keeps the progress overlay up long enough for the
	// success state to be seen.
	DefaultHideDelay   = 500 * time.Millisecond
	DefaultHistorySize = 20
)

// Status line texts.
const (
	TextScanning  = "Scanning…"
	TextComplete  = "Analysis complete"
	TextCancelled = "Scan cancelled"
)

var (
	// ErrUnknownSession is returned by Wait for ids not in the history.
	ErrUnknownSession = errors.New("unknown scan session")
	// ErrNoResult is returned by layer operations before any result.
	ErrNoResult = errors.New("no analysis result")
)

var logf = monitoring.Component("ScanController")

// Config configures a Controller.
type Config struct {
	Analyzer analysis.Analyzer
	Views    Views
	// Group is the shared overlay group. A new one is created when nil.
	Group *layers.OverlayGroup
	Clock timeutil.Clock

	// HideDelay defers hiding the progress overlay after a completed or
	// failed scan. Zero hides immediately.
	HideDelay time.Duration
	// Timeout bounds each request. Zero means no timeout.
	Timeout     time.Duration
	HistorySize int
}

// Snapshot is a point-in-time copy of the application state.
type Snapshot struct {
	Scanning bool                  `json:"scanning"`
	Current  *Session              `json:"current,omitempty"`
	Last     *Session              `json:"last,omitempty"`
	Point    *water.Point          `json:"point,omitempty"`
	Result   *water.AnalysisResult `json:"result,omitempty"`
	Metrics  *water.Metrics        `json:"metrics,omitempty"`
	Layers   []layers.Toggle       `json:"layers"`
	Overlays []layers.Overlay      `json:"overlays"`
	History  []Session             `json:"history"`
}

// Controller owns the application state and serialises scans. At most one
// session is current; only the current session may apply an outcome.
type Controller struct {
	analyzer  analysis.Analyzer
	views     Views
	clock     timeutil.Clock
	hideDelay time.Duration
	timeout   time.Duration

	mu       sync.Mutex
	current  *session
	sessions map[SessionID]*session
	history  history

	group   *layers.OverlayGroup
	control *layers.Control

	point   *water.Point
	result  *water.AnalysisResult
	metrics *water.Metrics

	hideTimer timeutil.Timer
	hideGen   uint64
}

// NewController creates an idle controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("scan controller requires an analyzer")
	}
	if cfg.HideDelay < 0 {
		return nil, fmt.Errorf("hide delay must be non-negative, got %s", cfg.HideDelay)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %s", cfg.Timeout)
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.Group == nil {
		cfg.Group = layers.NewOverlayGroup()
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	return &Controller{
		analyzer:  cfg.Analyzer,
		views:     cfg.Views.withDefaults(),
		clock:     cfg.Clock,
		hideDelay: cfg.HideDelay,
		timeout:   cfg.Timeout,
		sessions:  make(map[SessionID]*session),
		history:   history{size: cfg.HistorySize},
		group:     cfg.Group,
	}, nil
}

// BeginScan starts a scan for p, superseding any active scan, and returns
// the new session's id. ctx bounds the request and should outlive the
// caller's own request scope. The outcome is applied asynchronously.
func (c *Controller) BeginScan(ctx context.Context, p water.Point) (SessionID, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("invalid scan point: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		prev := c.current
		c.current = nil
		prev.Superseded = true
		prev.finish(StatusCancelled, c.clock.Now(), "superseded")
		logf("Session %s superseded", prev.ID)
	}
	c.cancelHideLocked()

	var (
		reqCtx context.Context
		cancel context.CancelFunc
	)
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}

	s := &session{
		Session: Session{
			ID:        SessionID(uuid.New().String()),
			Point:     p,
			Status:    StatusActive,
			StartedAt: c.clock.Now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.current = s
	c.sessions[s.ID] = s
	if evicted := c.history.push(s); evicted != nil {
		delete(c.sessions, evicted.ID)
	}

	c.views.Marker.Place(p)
	c.views.Progress.Show()
	c.views.Status.SetStatus(StatusText{Text: TextScanning})
	logf("Session %s started at %s", s.ID, p)

	go c.run(reqCtx, s)
	return s.ID, nil
}

func (c *Controller) run(ctx context.Context, s *session) {
	res, err := c.analyzer.Analyze(ctx, s.Point)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != s {
		logf("Dropping outcome of stale session %s (%s)", s.ID, s.Status)
		return
	}
	c.current = nil
	now := c.clock.Now()

	switch {
	case err == nil:
		c.applyResultLocked(res)
		pt := s.Point
		c.point = &pt
		s.finish(StatusCompleted, now, "")
		c.views.Status.SetStatus(StatusText{Text: TextComplete})
		c.views.Notifier.Notify(Notification{Level: LevelSuccess, Message: successMessage(c.metrics)})
		logf("Session %s completed in %s", s.ID, s.Duration())
		c.hideProgressLocked(c.hideDelay)

	case errors.Is(err, analysis.ErrCancelled):
		// The parent context went away without CancelScan being called.
		s.finish(StatusCancelled, now, "")
		c.views.Marker.Clear()
		c.views.Status.SetStatus(StatusText{Text: TextCancelled})
		c.views.Notifier.Notify(Notification{Level: LevelInfo, Message: TextCancelled})
		logf("Session %s cancelled", s.ID)
		c.hideProgressLocked(0)

	default:
		reason := analysis.Reason(err)
		if errors.Is(err, analysis.ErrTimeout) {
			reason = fmt.Sprintf("analysis timed out after %s", c.timeout)
		}
		s.finish(StatusFailed, now, reason)
		c.views.Status.SetStatus(StatusText{Text: "Analysis failed: " + reason, Failed: true})
		c.views.Notifier.Notify(Notification{Level: LevelError, Message: reason})
		logf("Session %s failed: %v", s.ID, err)
		c.hideProgressLocked(c.hideDelay)
	}
}

func successMessage(m *water.Metrics) string {
	if m == nil {
		return TextComplete
	}
	return fmt.Sprintf("Analysis complete: %.2f km² surface, %d%% full", m.Area, m.FillPercent)
}

// CancelScan aborts the active scan. It reports whether a scan was active;
// when idle it does nothing. The request's eventual return is ignored.
func (c *Controller) CancelScan() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.current
	if s == nil {
		return false
	}
	c.current = nil
	s.finish(StatusCancelled, c.clock.Now(), "")

	c.views.Marker.Clear()
	c.hideProgressLocked(0)
	c.views.Status.SetStatus(StatusText{Text: TextCancelled})
	c.views.Notifier.Notify(Notification{Level: LevelInfo, Message: TextCancelled})
	logf("Session %s cancelled", s.ID)
	return true
}

// ApplyResult applies r to the metrics, chart and layer views, in that
// order, and returns the derived metrics.
func (c *Controller) ApplyResult(r *water.AnalysisResult) water.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyResultLocked(r)
	return *c.metrics
}

func (c *Controller) applyResultLocked(r *water.AnalysisResult) {
	r = r.Clone()
	m := water.NewMetrics(r)
	c.views.Result.ApplyMetrics(m)
	c.views.Result.ApplyCharts(charts.NewData(r))

	c.control.Close()
	var urls map[water.LayerKey]string
	if r != nil {
		urls = r.Layers
	}
	c.control = layers.NewControl(c.group, urls)
	c.views.Result.RebuildLayers(c.control)

	c.result = r
	c.metrics = &m
}

// hideProgressLocked hides the overlay after d, or now when d is zero. A
// later scan or hide invalidates the pending call.
func (c *Controller) hideProgressLocked(d time.Duration) {
	c.cancelHideLocked()
	if d <= 0 {
		c.views.Progress.Hide()
		return
	}
	gen := c.hideGen
	c.hideTimer = c.clock.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.hideGen || c.current != nil {
			return
		}
		c.hideTimer = nil
		c.views.Progress.Hide()
	})
}

func (c *Controller) cancelHideLocked() {
	c.hideGen++
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
	}
}

// SetLayer turns a layer of the current result on or off.
func (c *Controller) SetLayer(key water.LayerKey, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.control == nil {
		return ErrNoResult
	}
	if err := c.control.Set(key, on); err != nil {
		return err
	}
	c.views.Result.RebuildLayers(c.control)
	return nil
}

// ToggleLayer flips a layer of the current result and returns its state.
func (c *Controller) ToggleLayer(key water.LayerKey) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.control == nil {
		return false, ErrNoResult
	}
	on, err := c.control.Toggle(key)
	if err != nil {
		return false, err
	}
	c.views.Result.RebuildLayers(c.control)
	return on, nil
}

// Scanning reports whether a scan is active.
func (c *Controller) Scanning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Result returns the last applied result and the point it was scanned at.
// Either may be nil.
func (c *Controller) Result() (*water.AnalysisResult, *water.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var p *water.Point
	if c.point != nil {
		pt := *c.point
		p = &pt
	}
	return c.result.Clone(), p
}

// State returns a snapshot of the application state.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Scanning: c.current != nil,
		Result:   c.result.Clone(),
		Layers:   c.control.Toggles(),
		Overlays: c.group.Active(),
		History:  c.history.snapshot(),
	}
	if c.current != nil {
		cur := c.current.Session
		snap.Current = &cur
	}
	if len(snap.History) > 0 {
		last := snap.History[0]
		snap.Last = &last
	}
	if c.point != nil {
		p := *c.point
		snap.Point = &p
	}
	if c.metrics != nil {
		m := *c.metrics
		snap.Metrics = &m
	}
	if snap.Layers == nil {
		snap.Layers = []layers.Toggle{}
	}
	return snap
}

// Session returns the record for id.
func (c *Controller) Session(id SessionID) (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return Session{}, false
	}
	return s.Session, true
}

// Wait blocks until session id reaches a terminal state or ctx is done.
func (c *Controller) Wait(ctx context.Context, id SessionID) (Session, error) {
	c.mu.Lock()
	s, ok := c.sessions[id]
	c.mu.Unlock()
	if !ok {
		return Session{}, ErrUnknownSession
	}

	select {
	case <-s.done:
	case <-ctx.Done():
		return Session{}, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return s.Session, nil
}

// Close cancels any active scan and pending hide without notifying.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.current; s != nil {
		c.current = nil
		s.finish(StatusCancelled, c.clock.Now(), "shutdown")
	}
	c.cancelHideLocked()
}
