package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// OverlayID names a toggleable overlay.
type OverlayID string

const (
	OverlayTerrain    OverlayID = "terrain"
	OverlayBoundaries OverlayID = "boundaries"
	OverlayLureRanges OverlayID = "lure_ranges"
	OverlayTargets    OverlayID = "targets"
	OverlayOctree     OverlayID = "octree"
	OverlayFollow     OverlayID = "follow"
)

// Overlay describes one toggle and the key bound to it.
type Overlay struct {
	ID       OverlayID
	Name     string
	Key      int32 // 0 means no key
	KeyLabel string
	Category string
	On       bool // Initial state
}

var categoryTitles = map[string]string{
	"scene":  "Scene",
	"debug":  "Debug",
	"camera": "Camera",
}

// DefaultOverlays is the viewer's overlay set in display order.
var DefaultOverlays = []Overlay{
	{ID: OverlayTerrain, Name: "Terrain", Key: rl.KeyG, KeyLabel: "G", Category: "scene", On: true},
	{ID: OverlayBoundaries, Name: "Height Planes", Key: rl.KeyB, KeyLabel: "B", Category: "scene"},
	{ID: OverlayLureRanges, Name: "Lure Ranges", Key: rl.KeyR, KeyLabel: "R", Category: "scene", On: true},
	{ID: OverlayTargets, Name: "Targets", Key: rl.KeyT, KeyLabel: "T", Category: "debug"},
	{ID: OverlayOctree, Name: "Octree", Key: rl.KeyO, KeyLabel: "O", Category: "debug"},
	{ID: OverlayFollow, Name: "Follow School", Key: rl.KeyF, KeyLabel: "F", Category: "camera"},
}

// OverlayRegistry tracks which overlays are on.
type OverlayRegistry struct {
	overlays []Overlay
	enabled  map[OverlayID]bool
}

// NewOverlayRegistry returns a registry holding DefaultOverlays.
func NewOverlayRegistry() *OverlayRegistry {
	r := &OverlayRegistry{enabled: make(map[OverlayID]bool)}
	for _, o := range DefaultOverlays {
		r.Register(o)
	}
	return r
}

// Register adds o, replacing any overlay with the same ID.
func (r *OverlayRegistry) Register(o Overlay) {
	for i := range r.overlays {
		if r.overlays[i].ID == o.ID {
			r.overlays[i] = o
			r.enabled[o.ID] = o.On
			return
		}
	}
	r.overlays = append(r.overlays, o)
	r.enabled[o.ID] = o.On
}

// All returns the overlays in registration order.
func (r *OverlayRegistry) All() []Overlay {
	return r.overlays
}

// IsEnabled reports whether id is on.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Toggle flips id and returns its new state. Unknown IDs stay off.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.enabled[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// Categories returns each category once, in first-seen order.
func (r *OverlayRegistry) Categories() []string {
	var out []string
	seen := map[string]bool{}
	for _, o := range r.overlays {
		if !seen[o.Category] {
			seen[o.Category] = true
			out = append(out, o.Category)
		}
	}
	return out
}

// InCategory returns the overlays in category c.
func (r *OverlayRegistry) InCategory(c string) []Overlay {
	var out []Overlay
	for _, o := range r.overlays {
		if o.Category == c {
			out = append(out, o)
		}
	}
	return out
}
