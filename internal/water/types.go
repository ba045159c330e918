// Package water holds the data model shared by the dashboard: the analysis
// request/response shapes returned by the external analysis service and the
// display values derived from them.
package water

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate reports whether the point lies within the WGS84 coordinate range.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("coordinates must be finite, got (%v, %v)", p.Lat, p.Lng)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %.6f out of range [-90, 90]", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude %.6f out of range [-180, 180]", p.Lng)
	}
	return nil
}

func (p Point) String() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng)
}

// AnalysisRequest is the body posted to the analysis endpoint.
type AnalysisRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewAnalysisRequest builds the request payload for a point.
func NewAnalysisRequest(p Point) AnalysisRequest {
	return AnalysisRequest{Lat: p.Lat, Lng: p.Lng}
}

// Seasonal carries surface extents for the three seasons reported by the
// analysis service.
type Seasonal struct {
	Summer  float64 `json:"summer"`
	Monsoon float64 `json:"monsoon"`
	Winter  float64 `json:"winter"`
}

// Values returns the extents in summer, monsoon, winter order.
func (s Seasonal) Values() []float64 {
	return []float64{s.Summer, s.Monsoon, s.Winter}
}

// AnalysisResult is a successful response from the analysis service.
// Area is in km², volumes in million cubic metres, elevation in metres.
type AnalysisResult struct {
	Area         float64             `json:"area"`
	Volume       float64             `json:"volume"`
	AvgElevation float64             `json:"avg_elevation"`
	MaxVolume    float64             `json:"max_volume,omitempty"`
	Layers       map[LayerKey]string `json:"layers,omitempty"`
	Seasonal     *Seasonal           `json:"seasonal,omitempty"`
	Date         string              `json:"date,omitempty"`
}

// LayerURL returns the tile URL for key, or "" when the result does not
// offer that layer.
func (r *AnalysisResult) LayerURL(key LayerKey) string {
	if r == nil || r.Layers == nil {
		return ""
	}
	return r.Layers[key]
}

// Clone returns a deep copy so callers can hold a result without sharing
// the layer map.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	c := *r
	if r.Layers != nil {
		c.Layers = make(map[LayerKey]string, len(r.Layers))
		for k, v := range r.Layers {
			c.Layers[k] = v
		}
	}
	if r.Seasonal != nil {
		s := *r.Seasonal
		c.Seasonal = &s
	}
	return &c
}

// AnalysisResponse is the raw wire shape: a result plus the application
// level error channel.
type AnalysisResponse struct {
	AnalysisResult
	Error string `json:"error,omitempty"`
}

// UnmarshalJSON drops layer keys the dashboard does not know about and
// empty layer URLs.
func (r *AnalysisResponse) UnmarshalJSON(data []byte) error {
	type wire struct {
		Area         float64           `json:"area"`
		Volume       float64           `json:"volume"`
		AvgElevation float64           `json:"avg_elevation"`
		MaxVolume    float64           `json:"max_volume"`
		Layers       map[string]string `json:"layers"`
		Seasonal     *Seasonal         `json:"seasonal"`
		Date         string            `json:"date"`
		Error        string            `json:"error"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = AnalysisResponse{
		AnalysisResult: AnalysisResult{
			Area:         w.Area,
			Volume:       w.Volume,
			AvgElevation: w.AvgElevation,
			MaxVolume:    w.MaxVolume,
			Seasonal:     w.Seasonal,
			Date:         w.Date,
		},
		Error: w.Error,
	}
	if len(w.Layers) > 0 {
		r.Layers = make(map[LayerKey]string, len(w.Layers))
		for k, v := range w.Layers {
			key, ok := ParseLayerKey(k)
			if !ok || v == "" {
				continue
			}
			r.Layers[key] = v
		}
	}
	return nil
}
