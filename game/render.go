package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/renderer"
	"github.com/pthm-cable/shoal/ui"
)

const legendHeight = 35

const controlsLegend = "[Space] pause  [,/.] speed  [Arrows] orbit  [Shift+Arrows] pan  [Wheel] zoom  [Home] reset  [Tab] tuning  [H] overlays  [P] perf  [K] snapshot"

// Draw renders the scene and the UI.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	g.water.Draw(int32(g.screenWidth), int32(g.screenHeight), g.camera.Pitch)

	rl.BeginMode3D(renderer.Camera3D(g.camera))
	g.drawScene()
	rl.EndMode3D()

	g.drawUI()

	rl.EndDrawing()
}

// drawUI renders the HUD and panels over the scene.
func (g *Game) drawUI() {
	data := ui.HUDData{
		Title:      "Shoal",
		Agents:     g.sim.Len(),
		Tick:       g.tick,
		SimTime:    g.sim.Now(),
		Speed:      g.stepsPerUpdate,
		FPS:        rl.GetFPS(),
		Paused:     g.paused,
		ChunkSize:  g.sim.Scheduler().ChunkSize(),
		ChunkMax:   g.sim.Scheduler().ChunkMax(),
		Passes:     g.sim.Scheduler().Passes(),
		Recomputed: g.sim.Recomputed(),
		Stray:      g.sim.Stray(),
	}
	if g.lastStats != nil {
		data.Polarization = g.lastStats.Polarization
	}
	g.hud.Draw(data)

	g.controls.Draw(g.uiOverlays)
	if w, changed := g.tuning.Draw(g.sim.Params().Weights, g.sim.Lures()); changed {
		g.sim.SetWeights(w)
	}
	g.schoolPanel.Draw(g.lastStats)
	if g.showPerf {
		g.perfPanel.Draw(g.lastPerf)
	}
	g.inspector.Draw(g.sim)

	g.hud.DrawLegend(int32(g.screenHeight), controlsLegend)
}
