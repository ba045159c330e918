package dashboard

import (
	"sync"
	"time"

	"github.com/banshee-data/hydro.report/internal/charts"
	"github.com/banshee-data/hydro.report/internal/layers"
	"github.com/banshee-data/hydro.report/internal/scan"
	"github.com/banshee-data/hydro.report/internal/timeutil"
	"github.com/banshee-data/hydro.report/internal/water"
)

// DefaultNotificationLimit bounds the kept notifications.
const DefaultNotificationLimit = 50

// Toast is a notification with the time it was raised.
type Toast struct {
	scan.Notification
	At time.Time `json:"at"`
}

// View is the rendered state of the dashboard.
type View struct {
	ProgressVisible bool            `json:"progress_visible"`
	Status          scan.StatusText `json:"status"`
	Marker          *water.Point    `json:"marker,omitempty"`
	Metrics         *water.Metrics  `json:"metrics,omitempty"`
	Charts          *charts.Data    `json:"charts,omitempty"`
	Layers          []layers.Toggle `json:"layers"`
	Notifications   []Toast         `json:"notifications"`
	SummaryBusy     bool            `json:"summary_busy"`
}

// State is the browser side of the dashboard held on the server. It
// implements every scan view.
type State struct {
	clock timeutil.Clock
	limit int

	mu            sync.RWMutex
	progress      bool
	status        scan.StatusText
	marker        *water.Point
	metrics       *water.Metrics
	charts        *charts.Data
	layers        []layers.Toggle
	notifications []Toast
	summaryBusy   bool
}

// NewState creates an empty state keeping at most limit notifications.
func NewState(clock timeutil.Clock, limit int) *State {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	return &State{clock: clock, limit: limit, layers: []layers.Toggle{}}
}

// Views returns the scan view bindings backed by s.
func (s *State) Views() scan.Views {
	return scan.Views{Progress: s, Notifier: s, Status: s, Marker: s, Result: s}
}

func (s *State) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = true
}

func (s *State) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = false
}

func (s *State) Notify(n scan.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, Toast{Notification: n, At: s.clock.Now()})
	if over := len(s.notifications) - s.limit; over > 0 {
		s.notifications = append([]Toast(nil), s.notifications[over:]...)
	}
}

func (s *State) SetStatus(st scan.StatusText) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

func (s *State) Place(p water.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = &p
}

func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = nil
}

func (s *State) ApplyMetrics(m water.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = &m
}

func (s *State) ApplyCharts(d charts.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charts = &d
}

func (s *State) RebuildLayers(c *layers.Control) {
	toggles := c.Toggles()
	if toggles == nil {
		toggles = []layers.Toggle{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = toggles
}

// beginSummary marks the summary control busy. It returns false when a
// summary is already being generated.
func (s *State) beginSummary() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summaryBusy {
		return false
	}
	s.summaryBusy = true
	return true
}

func (s *State) endSummary() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaryBusy = false
}

// Charts returns the last applied chart data.
func (s *State) Charts() (charts.Data, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.charts == nil {
		return charts.Data{}, false
	}
	return *s.charts, true
}

// View returns a copy of the rendered state.
func (s *State) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := View{
		ProgressVisible: s.progress,
		Status:          s.status,
		Layers:          append([]layers.Toggle{}, s.layers...),
		Notifications:   append([]Toast{}, s.notifications...),
		SummaryBusy:     s.summaryBusy,
	}
	if s.marker != nil {
		p := *s.marker
		v.Marker = &p
	}
	if s.metrics != nil {
		m := *s.metrics
		v.Metrics = &m
	}
	if s.charts != nil {
		d := *s.charts
		v.Charts = &d
	}
	return v
}
