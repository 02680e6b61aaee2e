package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Camera input rates
const (
	orbitKeyRate   = 1.5   // Radians per second
	orbitDragRate  = 0.008 // Radians per pixel
	panKeyRate     = 400.0 // Pixels per second
	wheelZoomStep  = 0.1
	keyZoomFactor  = 1.25
	followStrength = 0.05 // Fraction of the gap to the school closed per frame
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < maxStepsPerUpdate {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.tuning.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyK) {
		g.saveSnapshot(nil)
	}

	g.handleOverlayKeys()
	g.handleCameraInput()

	mouse := rl.GetMousePosition()
	if g.overPanel(mouse) {
		return
	}
	g.inspector.HandleInput(mouse.X, mouse.Y, g.camera, g.sim)
}

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.uiOverlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.uiOverlays.Toggle(desc.ID)
		}
	}
}

// overPanel reports whether the mouse is over the tuning panel, which
// handles its own clicks.
func (g *Game) overPanel(mouse rl.Vector2) bool {
	return g.tuning.IsVisible() && rl.CheckCollisionPointRec(mouse, g.tuning.Bounds())
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(float64(w), float64(h))
	g.inspector.Resize(int32(w), int32(h))
	g.placePanels()
}

// handleCameraInput processes orbit, pan and zoom controls. Arrow keys orbit,
// or pan with Shift held; middle mouse drag does the same.
func (g *Game) handleCameraInput() {
	frame := float64(rl.GetFrameTime())
	shift := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)

	var dx, dy float64
	if rl.IsKeyDown(rl.KeyRight) {
		dx++
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		dx--
	}
	if rl.IsKeyDown(rl.KeyUp) {
		dy++
	}
	if rl.IsKeyDown(rl.KeyDown) {
		dy--
	}
	if dx != 0 || dy != 0 {
		if shift {
			g.camera.Pan(-dx*panKeyRate*frame, -dy*panKeyRate*frame)
		} else {
			g.camera.Orbit(dx*orbitKeyRate*frame, dy*orbitKeyRate*frame)
		}
	}

	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		if shift {
			g.camera.Pan(float64(d.X), float64(d.Y))
		} else {
			g.camera.Orbit(-float64(d.X)*orbitDragRate, float64(d.Y)*orbitDragRate)
		}
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(math.Pow(1+wheelZoomStep, float64(wheel)))
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(keyZoomFactor)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(1 / keyZoomFactor)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
