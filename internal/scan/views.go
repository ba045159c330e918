package scan

import (
	"github.com/banshee-data/hydro.report/internal/charts"
	"github.com/banshee-data/hydro.report/internal/layers"
	"github.com/banshee-data/hydro.report/internal/water"
)

// Level is the severity of a transient notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient toast message.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// StatusText is the persistent status line. Failed selects error styling.
type StatusText struct {
	Text   string `json:"text"`
	Failed bool   `json:"failed"`
}

// Progress is the blocking progress overlay.
type Progress interface {
	Show()
	Hide()
}

// Notifier shows transient notifications.
type Notifier interface {
	Notify(n Notification)
}

// Status sets the persistent status line.
type Status interface {
	SetStatus(s StatusText)
}

// Marker is the transient selection marker on the map.
type Marker interface {
	Place(p water.Point)
	Clear()
}

// ResultView receives the three views updated from one result, in order.
type ResultView interface {
	ApplyMetrics(m water.Metrics)
	ApplyCharts(d charts.Data)
	RebuildLayers(c *layers.Control)
}

// Views bundles the view bindings. Nil members are replaced by no-ops.
// Every view method is called with the controller's lock held and must not
// call back into the controller.
type Views struct {
	Progress Progress
	Notifier Notifier
	Status   Status
	Marker   Marker
	Result   ResultView
}

type nopViews struct{}

func (nopViews) Show()                         {}
func (nopViews) Hide()                         {}
func (nopViews) Notify(Notification)           {}
func (nopViews) SetStatus(StatusText)          {}
func (nopViews) Place(water.Point)             {}
func (nopViews) Clear()                        {}
func (nopViews) ApplyMetrics(water.Metrics)    {}
func (nopViews) ApplyCharts(charts.Data)       {}
func (nopViews) RebuildLayers(*layers.Control) {}

func (v Views) withDefaults() Views {
	if v.Progress == nil {
		v.Progress = nopViews{}
	}
	if v.Notifier == nil {
		v.Notifier = nopViews{}
	}
	if v.Status == nil {
		v.Status = nopViews{}
	}
	if v.Marker == nil {
		v.Marker = nopViews{}
	}
	if v.Result == nil {
		v.Result = nopViews{}
	}
	return v
}
