package game

import (
	"github.com/pthm-cable/shoal/renderer"
	"github.com/pthm-cable/shoal/ui"
)

// drawScene renders the 3D world. Must be called inside BeginMode3D.
func (g *Game) drawScene() {
	if g.uiOverlays.IsEnabled(ui.OverlayTerrain) {
		g.terrainRenderer.Draw()
	}
	if g.uiOverlays.IsEnabled(ui.OverlayBoundaries) {
		g.drawBoundaries()
	}
	if g.uiOverlays.IsEnabled(ui.OverlayOctree) {
		renderer.DrawOctree(g.sim.Octree().Nodes())
	}

	g.agentRenderer.ShowTarget = g.uiOverlays.IsEnabled(ui.OverlayTargets)
	renderer.DrawLures(g.sim.Lures(), g.uiOverlays.IsEnabled(ui.OverlayLureRanges))
	g.agentRenderer.Draw(g.sim.Agents(), g.camera)

	if e, ok := g.inspector.Selected(); ok {
		if a, ok := g.sim.Agent(e); ok {
			g.agentRenderer.DrawSelected(a, g.cfg.Derived.QueryRadius)
		}
	}
}

// drawBoundaries draws planes for fixed and reference height rules around the
// school's average position.
func (g *Game) drawBoundaries() {
	floor, ceiling := g.sim.Boundaries()
	center := g.sim.AveragePosition()
	size := g.cfg.Flock.SchoolWidth * 2
	renderer.DrawHeightPlane(floor, center, size)
	renderer.DrawHeightPlane(ceiling, center, size)
}
