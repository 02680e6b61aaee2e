package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// WaterBackground fills the screen with a vertical gradient between deep and
// surface water. The gradient brightens as the camera tilts up.
type WaterBackground struct {
	Surface rl.Color
	Deep    rl.Color
}

// NewWaterBackground creates a water background with the default palette.
func NewWaterBackground() *WaterBackground {
	return &WaterBackground{
		Surface: rl.Color{R: 46, G: 118, B: 150, A: 255},
		Deep:    rl.Color{R: 6, G: 16, B: 32, A: 255},
	}
}

// Draw renders the gradient. pitch is the camera's elevation above the
// target in radians; looking down shows more of the deep color. Must be
// called outside BeginMode3D.
func (w *WaterBackground) Draw(width, height int32, pitch float64) {
	up := float32(min(max(0.5-pitch/3, 0), 1))
	top := lerpColor(w.Deep, w.Surface, up)
	bottom := lerpColor(w.Deep, w.Surface, up*0.3)
	rl.DrawRectangleGradientV(0, 0, width, height, top, bottom)
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	return rl.Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
		A: 255,
	}
}
