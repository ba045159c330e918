// Package charts builds the seasonal and time-series chart pair shown for
// an analysis result and renders it as an ECharts page or a PNG.
package charts

import (
	"time"

	"github.com/banshee-data/hydro.report/internal/water"
)

// SeasonNames are the seasonal bar labels in display order.
var SeasonNames = []string{"Summer", "Monsoon", "Winter"}

// Data is the render-independent input for both charts.
type Data struct {
	// Seasonal extents in SeasonNames order (km²).
	Seasonal []float64 `json:"seasonal"`
	// EstimatedSeasonal is true when the result carried no seasonal
	// breakdown and the current area stands in for every season.
	EstimatedSeasonal bool `json:"estimated_seasonal"`

	// Months and MonthlyArea form the twelve-month series.
	Months      []string  `json:"months"`
	MonthlyArea []float64 `json:"monthly_area"`

	FillPercent int    `json:"fill_percent"`
	Subtitle    string `json:"subtitle,omitempty"`
}

// seasonOfMonth maps a month to its SeasonNames index: Mar–May summer,
// Jun–Sep monsoon, Oct–Feb winter.
func seasonOfMonth(m time.Month) int {
	switch {
	case m >= time.March && m <= time.May:
		return 0
	case m >= time.June && m <= time.September:
		return 1
	default:
		return 2
	}
}

// NewData derives chart data from a result. A nil result yields empty
// series.
func NewData(r *water.AnalysisResult) Data {
	d := Data{
		Seasonal:    make([]float64, len(SeasonNames)),
		Months:      make([]string, 12),
		MonthlyArea: make([]float64, 12),
	}
	for m := time.January; m <= time.December; m++ {
		d.Months[m-1] = m.String()[:3]
	}
	if r == nil {
		return d
	}

	if r.Seasonal != nil {
		copy(d.Seasonal, r.Seasonal.Values())
	} else {
		d.EstimatedSeasonal = true
		for i := range d.Seasonal {
			d.Seasonal[i] = r.Area
		}
	}
	for m := time.January; m <= time.December; m++ {
		d.MonthlyArea[m-1] = d.Seasonal[seasonOfMonth(m)]
	}
	d.FillPercent = water.FillPercent(r.Volume, r.MaxVolume)
	d.Subtitle = r.Date
	return d
}
