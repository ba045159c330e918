package narrative

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/hydro.report/internal/water"
)

// Variability summarises the seasonal surface extents.
type Variability struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	// CV is the coefficient of variation, StdDev/Mean.
	CV      float64 `json:"cv"`
	Wettest string  `json:"wettest"`
	Driest  string  `json:"driest"`
}

var seasonNames = []string{"summer", "monsoon", "winter"}

// SeasonalVariability computes the spread of s. It returns false when s is
// nil.
func SeasonalVariability(s *water.Seasonal) (Variability, bool) {
	if s == nil {
		return Variability{}, false
	}
	values := s.Values()
	mean, std := stat.MeanStdDev(values, nil)
	v := Variability{Mean: mean, StdDev: std}
	if mean > 0 {
		v.CV = std / mean
	}
	hi, lo := 0, 0
	for i, x := range values {
		if x > values[hi] {
			hi = i
		}
		if x < values[lo] {
			lo = i
		}
	}
	v.Wettest, v.Driest = seasonNames[hi], seasonNames[lo]
	return v, true
}

// Input is what a summary is built from.
type Input struct {
	Point  water.Point
	Result *water.AnalysisResult
}

// Gate reports ErrNoLocation unless a location with a nonzero volume has
// been analysed.
func Gate(r *water.AnalysisResult, p *water.Point) (Input, error) {
	if p == nil || r == nil || r.Volume == 0 {
		return Input{}, ErrNoLocation
	}
	return Input{Point: *p, Result: r}, nil
}

// BuildPrompt writes the instruction sent to the text generator.
func BuildPrompt(in Input) string {
	m := water.NewMetrics(in.Result)
	var b strings.Builder
	b.WriteString("You are a hydrologist writing for local water managers. ")
	b.WriteString("In three short paragraphs, describe the state of this water body, ")
	b.WriteString("its seasonal behaviour and one practical recommendation.\n\n")
	fmt.Fprintf(&b, "Location: %.5f, %.5f\n", in.Point.Lat, in.Point.Lng)
	fmt.Fprintf(&b, "Surface area: %.2f km²\n", m.Area)
	fmt.Fprintf(&b, "Current volume: %.2f million m³\n", m.Volume)
	fmt.Fprintf(&b, "Estimated capacity: %.2f million m³ (%d%% full)\n", m.Capacity, m.FillPercent)
	fmt.Fprintf(&b, "Average elevation: %.1f m\n", m.AvgElevation)
	if in.Result.Date != "" {
		fmt.Fprintf(&b, "Image date: %s\n", in.Result.Date)
	}
	if v, ok := SeasonalVariability(in.Result.Seasonal); ok {
		s := in.Result.Seasonal
		fmt.Fprintf(&b, "Seasonal extent (km²): summer %.2f, monsoon %.2f, winter %.2f\n", s.Summer, s.Monsoon, s.Winter)
		fmt.Fprintf(&b, "Seasonal mean %.2f km², standard deviation %.2f km² (CV %.0f%%); largest in %s, smallest in %s\n",
			v.Mean, v.StdDev, v.CV*100, v.Wettest, v.Driest)
	}
	return b.String()
}
