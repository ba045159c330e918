// Package layers manages the toggle-able raster overlays offered by an
// analysis result. All overlays render into one shared OverlayGroup; a
// Control guarantees at most one rendered instance per layer key.
package layers

import (
	"sort"
	"sync"

	"github.com/banshee-data/hydro.report/internal/water"
)

// Overlay is one rendered instance of a layer.
type Overlay struct {
	ID  int            `json:"id"`
	Key water.LayerKey `json:"key"`
	URL string         `json:"url"`
}

// OverlayGroup is the shared set of overlays currently rendered on the map.
// It is safe for concurrent use.
type OverlayGroup struct {
	mu     sync.Mutex
	nextID int
	active map[int]Overlay
}

// NewOverlayGroup returns an empty group.
func NewOverlayGroup() *OverlayGroup {
	return &OverlayGroup{active: make(map[int]Overlay)}
}

// Add renders a new overlay instance and returns it.
func (g *OverlayGroup) Add(key water.LayerKey, url string) Overlay {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	o := Overlay{ID: g.nextID, Key: key, URL: url}
	g.active[o.ID] = o
	return o
}

// Remove drops an overlay instance. It reports whether the instance was
// rendered.
func (g *OverlayGroup) Remove(id int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.active[id]; !ok {
		return false
	}
	delete(g.active, id)
	return true
}

// Count returns the number of rendered instances for key.
func (g *OverlayGroup) Count(key water.LayerKey) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, o := range g.active {
		if o.Key == key {
			n++
		}
	}
	return n
}

// Active lists the rendered overlays in the order they were added.
func (g *OverlayGroup) Active() []Overlay {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Overlay, 0, len(g.active))
	for _, o := range g.active {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the total number of rendered overlays.
func (g *OverlayGroup) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}
