package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/systems"
)

var (
	colorAttract = rl.Color{R: 90, G: 220, B: 120, A: 255}
	colorRepel   = rl.Color{R: 230, G: 80, B: 80, A: 255}
	colorIdle    = rl.Color{R: 120, G: 120, B: 120, A: 255}
)

// lureColor picks a color from the sign of the active weight.
func lureColor(l *systems.Lure) rl.Color {
	w := l.CurrentWeight()
	switch {
	case !l.Enabled || w == 0:
		return colorIdle
	case w > 0:
		return colorAttract
	default:
		return colorRepel
	}
}

// DrawLures renders each lure as a sphere, its range as a wire sphere and its
// drift target as a line. Must be called inside BeginMode3D.
func DrawLures(lures []*systems.Lure, showRange bool) {
	for _, l := range lures {
		c := lureColor(l)
		pos := Vec3(l.Position)
		rl.DrawSphere(pos, 0.5, c)

		if r := l.CurrentRange(); showRange && r > 0 {
			faint := c
			faint.A = 60
			rl.DrawSphereWires(pos, float32(r), 10, 12, faint)
		}
		if d := l.Drift(); d != nil {
			rl.DrawLine3D(pos, Vec3(d.Target()), rl.Color{R: c.R, G: c.G, B: c.B, A: 100})
		}
	}
}
