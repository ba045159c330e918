package water

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointValidate(t *testing.T) {
	assert.NoError(t, Point{Lat: 12.5, Lng: 76.5}.Validate())
	assert.NoError(t, Point{Lat: -90, Lng: 180}.Validate())
	assert.Error(t, Point{Lat: 91, Lng: 0}.Validate())
	assert.Error(t, Point{Lat: 0, Lng: -180.5}.Validate())
	assert.Error(t, Point{Lat: math.NaN(), Lng: 0}.Validate())
	assert.Error(t, Point{Lat: 0, Lng: math.Inf(1)}.Validate())
}

func TestAnalysisResponse_UnmarshalJSON(t *testing.T) {
	body := `{
		"area": 3.2,
		"volume": 12.8,
		"avg_elevation": 812.5,
		"max_volume": 15,
		"layers": {
			"analytics": "https://tiles.example/a/{z}/{x}/{y}",
			"depth": "https://tiles.example/d/{z}/{x}/{y}",
			"ndvi": "https://tiles.example/n/{z}/{x}/{y}",
			"winter": ""
		},
		"seasonal": {"summer": 2.1, "monsoon": 3.9, "winter": 3.0},
		"date": "2025-11-02"
	}`

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	assert.Empty(t, resp.Error)
	assert.Equal(t, 12.8, resp.Volume)
	assert.Equal(t, 15.0, resp.MaxVolume)
	assert.Equal(t, "2025-11-02", resp.Date)
	require.NotNil(t, resp.Seasonal)
	assert.Equal(t, 3.9, resp.Seasonal.Monsoon)

	want := map[LayerKey]string{
		LayerAnalytics: "https://tiles.example/a/{z}/{x}/{y}",
		LayerDepth:     "https://tiles.example/d/{z}/{x}/{y}",
	}
	if diff := cmp.Diff(want, resp.Layers); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalysisResponse_ErrorField(t *testing.T) {
	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal([]byte(`{"area":0,"volume":0,"error":"No image found"}`), &resp))
	assert.Equal(t, "No image found", resp.Error)
	assert.Nil(t, resp.Layers)
	assert.Nil(t, resp.Seasonal)
}

func TestAnalysisResult_Clone(t *testing.T) {
	orig := &AnalysisResult{
		Volume:   1,
		Layers:   map[LayerKey]string{LayerDepth: "u"},
		Seasonal: &Seasonal{Summer: 1},
	}
	c := orig.Clone()
	c.Layers[LayerDepth] = "changed"
	c.Seasonal.Summer = 9

	assert.Equal(t, "u", orig.LayerURL(LayerDepth))
	assert.Equal(t, 1.0, orig.Seasonal.Summer)
	assert.Nil(t, (*AnalysisResult)(nil).Clone())
	assert.Equal(t, "", (*AnalysisResult)(nil).LayerURL(LayerDepth))
}

func TestLayerKeys(t *testing.T) {
	k, ok := ParseLayerKey("water_mask")
	assert.True(t, ok)
	assert.Equal(t, LayerWaterMask, k)

	_, ok = ParseLayerKey("ndvi")
	assert.False(t, ok)

	var on []LayerKey
	for _, k := range LayerKeys {
		if k.DefaultOn() {
			on = append(on, k)
		}
	}
	assert.Equal(t, []LayerKey{LayerAnalytics, LayerDepth}, on)
	assert.Equal(t, "Bathymetry depth", LayerDepth.Label())
	assert.Equal(t, "other", LayerKey("other").Label())
}
