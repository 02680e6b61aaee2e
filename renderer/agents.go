package renderer

import (
	"iter"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/camera"
	"github.com/pthm-cable/shoal/flock"
)

// typePalette colors agents by type index, wrapping for larger indices.
var typePalette = []rl.Color{
	{R: 190, G: 210, B: 230, A: 255}, // silver
	{R: 230, G: 120, B: 90, A: 255},  // snapper red
	{R: 240, G: 200, B: 80, A: 255},  // yellow
	{R: 120, G: 200, B: 140, A: 255}, // green
	{R: 170, G: 130, B: 220, A: 255}, // violet
}

// TypeColor returns the display color for an agent type.
func TypeColor(typ uint8) rl.Color {
	return typePalette[int(typ)%len(typePalette)]
}

// AgentRenderer draws agents as cones pointing along their facing.
type AgentRenderer struct {
	Length     float64 // Body length in world units
	ShowTarget bool    // Draw a line towards each agent's steering target
}

// NewAgentRenderer creates a renderer for agents of the given body length.
func NewAgentRenderer(length float64) *AgentRenderer {
	if length <= 0 {
		length = 0.6
	}
	return &AgentRenderer{Length: length}
}

// Draw renders every visible agent. Must be called inside BeginMode3D.
func (r *AgentRenderer) Draw(agents iter.Seq[flock.AgentState], cam *camera.Camera) {
	radius := float32(r.Length * 0.25)
	for a := range agents {
		if !cam.IsVisible(a.Position, r.Length) {
			continue
		}
		head := r3.Add(a.Position, r3.Scale(r.Length*0.5, a.Forward))
		tail := r3.Sub(a.Position, r3.Scale(r.Length*0.5, a.Forward))
		rl.DrawCylinderEx(Vec3(tail), Vec3(head), radius, 0, 5, TypeColor(a.Type))

		if r.ShowTarget {
			tip := r3.Add(a.Position, r3.Scale(r.Length*2, a.Target))
			rl.DrawLine3D(Vec3(a.Position), Vec3(tip), rl.Color{R: 255, G: 200, B: 100, A: 160})
		}
	}
}

// DrawSelected highlights one agent and its neighbor query radius.
func (r *AgentRenderer) DrawSelected(a flock.AgentState, queryRadius float64) {
	rl.DrawSphereWires(Vec3(a.Position), float32(r.Length), 6, 6, rl.Yellow)
	if queryRadius > 0 {
		rl.DrawCubeWiresV(Vec3(a.Position), Vec3(r3.Vec{X: 2 * queryRadius, Y: 2 * queryRadius, Z: 2 * queryRadius}),
			rl.Color{R: 255, G: 255, B: 0, A: 90})
	}
	tip := r3.Add(a.Position, r3.Scale(r.Length*3, a.Target))
	rl.DrawLine3D(Vec3(a.Position), Vec3(tip), rl.Orange)
}
