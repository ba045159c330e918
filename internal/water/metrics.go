package water

import "math"

// capacityFallbackFactor estimates capacity from the current volume when the
// analysis service does not report a maximum.
const capacityFallbackFactor = 1.5

// FillLevel is the style bucket for the fill-percentage bar.
type FillLevel string

const (
	FillHigh   FillLevel = "high"
	FillMedium FillLevel = "medium"
	FillLow    FillLevel = "low"
)

// Colour returns the bar colour associated with the level.
func (l FillLevel) Colour() string {
	switch l {
	case FillHigh:
		return "blue"
	case FillMedium:
		return "amber"
	default:
		return "red"
	}
}

// Capacity returns maxVolume when the service reported one, otherwise the
// fallback estimate.
func Capacity(volume, maxVolume float64) float64 {
	if maxVolume > 0 {
		return maxVolume
	}
	return volume * capacityFallbackFactor
}

// FillPercent is a display heuristic: the current volume as a share of
// capacity, rounded and clamped to [0, 100].
func FillPercent(volume, maxVolume float64) int {
	capacity := Capacity(volume, maxVolume)
	if !(capacity > 0) || math.IsInf(capacity, 0) || math.IsNaN(volume) {
		return 0
	}
	pct := math.Round(volume / capacity * 100)
	switch {
	case math.IsNaN(pct) || pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct)
}

// LevelFor buckets a fill percentage.
func LevelFor(pct int) FillLevel {
	switch {
	case pct > 80:
		return FillHigh
	case pct > 40:
		return FillMedium
	default:
		return FillLow
	}
}

// Metrics are the numeric values shown in the metrics panel.
type Metrics struct {
	Area         float64   `json:"area"`
	Volume       float64   `json:"volume"`
	AvgElevation float64   `json:"avg_elevation"`
	Capacity     float64   `json:"capacity"`
	FillPercent  int       `json:"fill_percent"`
	FillLevel    FillLevel `json:"fill_level"`
	FillColour   string    `json:"fill_colour"`
}

// NewMetrics derives the display metrics for a result.
func NewMetrics(r *AnalysisResult) Metrics {
	if r == nil {
		return Metrics{FillLevel: FillLow, FillColour: FillLow.Colour()}
	}
	pct := FillPercent(r.Volume, r.MaxVolume)
	level := LevelFor(pct)
	return Metrics{
		Area:         r.Area,
		Volume:       r.Volume,
		AvgElevation: r.AvgElevation,
		Capacity:     Capacity(r.Volume, r.MaxVolume),
		FillPercent:  pct,
		FillLevel:    level,
		FillColour:   level.Colour(),
	}
}
