package layers

import (
	"fmt"
	"sync"

	"github.com/banshee-data/hydro.report/internal/water"
)

// Toggle is the state of one layer control.
type Toggle struct {
	Key   water.LayerKey `json:"key"`
	Label string         `json:"label"`
	URL   string         `json:"url"`
	On    bool           `json:"on"`
}

// ErrNoToggle is returned when a result offered no layer for the key.
type ErrNoToggle struct {
	Key water.LayerKey
}

func (e *ErrNoToggle) Error() string {
	return fmt.Sprintf("no toggle for layer %q", e.Key)
}

// Control holds one toggle per layer offered by a result and the overlay
// instance each toggle currently renders.
type Control struct {
	mu       sync.Mutex
	group    *OverlayGroup
	toggles  []Toggle
	rendered map[water.LayerKey]int
}

// NewControl creates toggles for every known key present in layerURLs, in
// canonical order. Absent keys get no toggle. Default-on keys are activated
// immediately.
func NewControl(group *OverlayGroup, layerURLs map[water.LayerKey]string) *Control {
	c := &Control{
		group:    group,
		rendered: make(map[water.LayerKey]int),
	}
	for _, key := range water.LayerKeys {
		url, ok := layerURLs[key]
		if !ok || url == "" {
			continue
		}
		c.toggles = append(c.toggles, Toggle{Key: key, Label: key.Label(), URL: url})
	}
	for _, t := range c.toggles {
		if t.Key.DefaultOn() {
			_ = c.Set(t.Key, true)
		}
	}
	return c
}

func (c *Control) index(key water.LayerKey) int {
	for i, t := range c.toggles {
		if t.Key == key {
			return i
		}
	}
	return -1
}

// Set turns a layer on or off. Turning a layer on always removes the
// previous instance before adding a new one, so repeated calls never stack
// overlays.
func (c *Control) Set(key water.LayerKey, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(key)
	if i < 0 {
		return &ErrNoToggle{Key: key}
	}
	c.setLocked(i, on)
	return nil
}

// Toggle flips a layer and returns its new state.
func (c *Control) Toggle(key water.LayerKey) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(key)
	if i < 0 {
		return false, &ErrNoToggle{Key: key}
	}
	next := !c.toggles[i].On
	c.setLocked(i, next)
	return next, nil
}

// setLocked applies state on to toggle i. c.mu must be held.
func (c *Control) setLocked(i int, on bool) {
	key := c.toggles[i].Key
	if id, ok := c.rendered[key]; ok {
		c.group.Remove(id)
		delete(c.rendered, key)
	}
	if on {
		o := c.group.Add(key, c.toggles[i].URL)
		c.rendered[key] = o.ID
	}
	c.toggles[i].On = on
}

// Toggles returns a copy of the toggle states in display order.
func (c *Control) Toggles() []Toggle {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Toggle, len(c.toggles))
	copy(out, c.toggles)
	return out
}

// Has reports whether the control offers a toggle for key.
func (c *Control) Has(key water.LayerKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index(key) >= 0
}

// Close removes every overlay this control rendered from the shared group.
// It is called before a control is replaced by a rebuild.
func (c *Control) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, id := range c.rendered {
		c.group.Remove(id)
		delete(c.rendered, key)
	}
	for i := range c.toggles {
		c.toggles[i].On = false
	}
}
