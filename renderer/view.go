// Package renderer draws the school, lures, boundaries and debug overlays
// in 3D with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/camera"
)

// Vec3 converts a simulation vector to a raylib one.
func Vec3(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// Camera3D builds the raylib camera for an orbit camera.
func Camera3D(cam *camera.Camera) rl.Camera3D {
	_, _, up := cam.Basis()
	return rl.Camera3D{
		Position:   Vec3(cam.Position()),
		Target:     Vec3(cam.Target),
		Up:         Vec3(up),
		Fovy:       float32(cam.FOV),
		Projection: rl.CameraPerspective,
	}
}

// shade scales a color's RGB channels, keeping alpha.
func shade(c rl.Color, f float32) rl.Color {
	f = max(0, min(f, 1.5))
	scale := func(v uint8) uint8 { return uint8(min(float32(v)*f, 255)) }
	return rl.Color{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}
