package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/systems"
)

// TerrainRenderer renders terrain and mesh boundaries as shaded triangles.
type TerrainRenderer struct {
	base  rl.Color
	tris  [][3]rl.Vector3
	tints []rl.Color
	minY  float64
	maxY  float64
}

// NewTerrainRenderer creates a terrain renderer with a sandy base color.
func NewTerrainRenderer() *TerrainRenderer {
	return &TerrainRenderer{base: rl.Color{R: 170, G: 150, B: 110, A: 255}}
}

// SetTerrain rebuilds the triangle list from a noise terrain grid.
func (r *TerrainRenderer) SetTerrain(t *systems.NoiseTerrain) {
	r.reset()
	if t == nil {
		return
	}
	n := t.Resolution()
	point := func(ix, iz int) r3.Vec {
		x, y, z := t.GridPoint(ix, iz)
		return r3.Vec{X: x, Y: y, Z: z}
	}
	for iz := 0; iz+1 < n; iz++ {
		for ix := 0; ix+1 < n; ix++ {
			a, b := point(ix, iz), point(ix+1, iz)
			c, d := point(ix, iz+1), point(ix+1, iz+1)
			r.add(a, c, b)
			r.add(b, c, d)
		}
	}
	r.shadeAll()
}

// SetMesh rebuilds the triangle list from a mesh.
func (r *TerrainRenderer) SetMesh(m *systems.Mesh) {
	r.reset()
	if m == nil {
		return
	}
	for i := range m.Triangles() {
		a, b, c := m.Triangle(i)
		r.add(a, b, c)
	}
	r.shadeAll()
}

func (r *TerrainRenderer) reset() {
	r.tris = r.tris[:0]
	r.tints = r.tints[:0]
	r.minY, r.maxY = 0, 0
}

func (r *TerrainRenderer) add(a, b, c r3.Vec) {
	if len(r.tris) == 0 {
		r.minY, r.maxY = a.Y, a.Y
	}
	for _, p := range [3]r3.Vec{a, b, c} {
		r.minY = min(r.minY, p.Y)
		r.maxY = max(r.maxY, p.Y)
	}
	r.tris = append(r.tris, [3]rl.Vector3{Vec3(a), Vec3(b), Vec3(c)})
}

// shadeAll colors each triangle by height and slope: darker in the troughs
// and on steep faces.
func (r *TerrainRenderer) shadeAll() {
	span := r.maxY - r.minY
	for _, t := range r.tris {
		a := r3.Vec{X: float64(t[0].X), Y: float64(t[0].Y), Z: float64(t[0].Z)}
		b := r3.Vec{X: float64(t[1].X), Y: float64(t[1].Y), Z: float64(t[1].Z)}
		c := r3.Vec{X: float64(t[2].X), Y: float64(t[2].Y), Z: float64(t[2].Z)}

		height := 0.5
		if span > 0 {
			height = ((a.Y+b.Y+c.Y)/3 - r.minY) / span
		}
		normal := systems.SafeUnit(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
		slope := max(normal.Y, -normal.Y)

		r.tints = append(r.tints, shade(r.base, float32(0.45+0.45*height)*float32(0.6+0.4*slope)))
	}
}

// Draw renders the triangles. Must be called inside BeginMode3D.
func (r *TerrainRenderer) Draw() {
	for i, t := range r.tris {
		// Both windings so the surface shows from above and below
		rl.DrawTriangle3D(t[0], t[1], t[2], r.tints[i])
		rl.DrawTriangle3D(t[0], t[2], t[1], r.tints[i])
	}
}

// Triangles returns how many triangles are loaded.
func (r *TerrainRenderer) Triangles() int {
	return len(r.tris)
}

// DrawHeightPlane draws a translucent square at a fixed or reference
// boundary height. Must be called inside BeginMode3D.
func DrawHeightPlane(b *systems.BoundaryRule, center r3.Vec, size float64) {
	if b == nil || !b.Valid() || b.Terrain != nil || b.Mesh != nil {
		return
	}
	h := b.HeightAt(center)
	c := rl.Color{R: 120, G: 200, B: 255, A: 40}
	if b.Direction() == systems.Floor {
		c = rl.Color{R: 200, G: 160, B: 100, A: 50}
	}
	rl.DrawPlane(Vec3(r3.Vec{X: center.X, Y: h, Z: center.Z}), rl.Vector2{X: float32(size), Y: float32(size)}, c)
}
