package dashboard

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/hydro.report/internal/layers"
	"github.com/banshee-data/hydro.report/internal/scan"
	"github.com/banshee-data/hydro.report/internal/timeutil"
	"github.com/banshee-data/hydro.report/internal/water"
)

func TestState_NotificationsBounded(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewState(clock, 3)
	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		s.Notify(scan.Notification{Level: scan.LevelInfo, Message: fmt.Sprint(i)})
	}
	v := s.View()
	require.Len(t, v.Notifications, 3)
	assert.Equal(t, "2", v.Notifications[0].Message)
	assert.Equal(t, "4", v.Notifications[2].Message)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 5, 0, time.UTC), v.Notifications[2].At)
}

func TestState_Defaults(t *testing.T) {
	s := NewState(nil, 0)
	assert.Equal(t, DefaultNotificationLimit, s.limit)
	v := s.View()
	assert.NotNil(t, v.Layers)
	assert.NotNil(t, v.Notifications)
	assert.Nil(t, v.Metrics)
	_, ok := s.Charts()
	assert.False(t, ok)
}

func TestState_Views(t *testing.T) {
	s := NewState(nil, 0)
	views := s.Views()

	views.Marker.Place(water.Point{Lat: 1, Lng: 2})
	views.Progress.Show()
	views.Status.SetStatus(scan.StatusText{Text: "x", Failed: true})
	views.Result.ApplyMetrics(water.NewMetrics(&water.AnalysisResult{Volume: 4.52}))

	group := layers.NewOverlayGroup()
	views.Result.RebuildLayers(layers.NewControl(group, map[water.LayerKey]string{water.LayerDepth: "https://t/d"}))

	v := s.View()
	assert.True(t, v.ProgressVisible)
	assert.Equal(t, &water.Point{Lat: 1, Lng: 2}, v.Marker)
	assert.True(t, v.Status.Failed)
	assert.Equal(t, 67, v.Metrics.FillPercent)
	require.Len(t, v.Layers, 1)
	assert.True(t, v.Layers[0].On)

	views.Marker.Clear()
	views.Progress.Hide()
	views.Result.RebuildLayers(nil)
	v = s.View()
	assert.Nil(t, v.Marker)
	assert.False(t, v.ProgressVisible)
	assert.Empty(t, v.Layers)
}

func TestState_SummaryBusy(t *testing.T) {
	s := NewState(nil, 0)
	assert.True(t, s.beginSummary())
	assert.False(t, s.beginSummary())
	assert.True(t, s.View().SummaryBusy)
	s.endSummary()
	assert.True(t, s.beginSummary())
}

func TestStatusCodeColor(t *testing.T) {
	assert.True(t, strings.Contains(statusCodeColor(200), colorBoldGreen))
	assert.True(t, strings.Contains(statusCodeColor(302), colorYellow))
	assert.True(t, strings.Contains(statusCodeColor(404), colorBoldRed))
	assert.True(t, strings.Contains(statusCodeColor(503), colorBoldRed))
	assert.Equal(t, "101", statusCodeColor(101))
}
