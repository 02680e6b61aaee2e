package renderer

import (
	"iter"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"
)

// depthColors tints octree nodes by depth.
var depthColors = []rl.Color{
	{R: 80, G: 160, B: 255, A: 110},
	{R: 80, G: 230, B: 200, A: 100},
	{R: 140, G: 240, B: 110, A: 90},
	{R: 240, G: 220, B: 90, A: 80},
	{R: 250, G: 150, B: 80, A: 70},
	{R: 240, G: 90, B: 90, A: 60},
}

// DrawOctree draws the loose bounds of every node. Must be called inside
// BeginMode3D.
func DrawOctree(nodes iter.Seq2[r3.Box, int]) {
	for box, depth := range nodes {
		c := depthColors[min(depth, len(depthColors)-1)]
		rl.DrawBoundingBox(rl.BoundingBox{Min: Vec3(box.Min), Max: Vec3(box.Max)}, c)
	}
}
