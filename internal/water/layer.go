package water

// LayerKey names a toggle-able raster overlay supplied by the analysis service.
type LayerKey string

// Known layer keys in display order.
const (
	LayerAnalytics LayerKey = "analytics"
	LayerDepth     LayerKey = "depth"
	LayerWaterMask LayerKey = "water_mask"
	LayerWinter    LayerKey = "winter"
	LayerSummer    LayerKey = "summer"
	LayerMonsoon   LayerKey = "monsoon"
)

// LayerKeys contains every known key in canonical order.
var LayerKeys = []LayerKey{
	LayerAnalytics,
	LayerDepth,
	LayerWaterMask,
	LayerWinter,
	LayerSummer,
	LayerMonsoon,
}

var layerLabels = map[LayerKey]string{
	LayerAnalytics: "Analytics",
	LayerDepth:     "Bathymetry depth",
	LayerWaterMask: "Water mask",
	LayerWinter:    "Winter extent",
	LayerSummer:    "Summer extent",
	LayerMonsoon:   "Monsoon extent",
}

// ParseLayerKey maps a wire name to a known key.
func ParseLayerKey(s string) (LayerKey, bool) {
	k := LayerKey(s)
	if _, ok := layerLabels[k]; ok {
		return k, true
	}
	return "", false
}

// Label is the human readable name shown next to the toggle.
func (k LayerKey) Label() string {
	if l, ok := layerLabels[k]; ok {
		return l
	}
	return string(k)
}

// DefaultOn reports whether a freshly created toggle for k starts active.
// Only the analytics and depth overlays are shown without user action.
func (k LayerKey) DefaultOn() bool {
	return k == LayerAnalytics || k == LayerDepth
}
