package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a triangle soup used as a boundary surface. Only downward vertical
// ray casts are supported, which is all a height boundary needs.
type Mesh struct {
	vertices []r3.Vec
	tris     []meshTri
}

type meshTri struct {
	a, b, c    int
	minX, maxX float64
	minZ, maxZ float64
}

// NewMesh builds a mesh from vertices and a flat list of triangle indices.
// Trailing indices that do not form a full triangle and out-of-range indices
// are ignored.
func NewMesh(vertices []r3.Vec, indices []int) *Mesh {
	m := &Mesh{vertices: vertices}
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if !m.valid(a) || !m.valid(b) || !m.valid(c) {
			continue
		}
		va, vb, vc := vertices[a], vertices[b], vertices[c]
		m.tris = append(m.tris, meshTri{
			a: a, b: b, c: c,
			minX: math.Min(va.X, math.Min(vb.X, vc.X)),
			maxX: math.Max(va.X, math.Max(vb.X, vc.X)),
			minZ: math.Min(va.Z, math.Min(vb.Z, vc.Z)),
			maxZ: math.Max(va.Z, math.Max(vb.Z, vc.Z)),
		})
	}
	return m
}

func (m *Mesh) valid(i int) bool {
	return i >= 0 && i < len(m.vertices)
}

// GridMesh triangulates a square grid of cells×cells quads with edge size,
// centered on the origin, with vertex heights from height(x, z).
func GridMesh(size float64, cells int, height func(x, z float64) float64) *Mesh {
	if cells < 1 {
		cells = 1
	}
	n := cells + 1
	step := size / float64(cells)
	start := -size / 2

	verts := make([]r3.Vec, 0, n*n)
	for iz := 0; iz < n; iz++ {
		for ix := 0; ix < n; ix++ {
			x := start + float64(ix)*step
			z := start + float64(iz)*step
			verts = append(verts, r3.Vec{X: x, Y: height(x, z), Z: z})
		}
	}

	idx := make([]int, 0, cells*cells*6)
	for iz := 0; iz < cells; iz++ {
		for ix := 0; ix < cells; ix++ {
			i0 := iz*n + ix
			i1 := i0 + 1
			i2 := i0 + n
			i3 := i2 + 1
			idx = append(idx, i0, i2, i1, i1, i2, i3)
		}
	}
	return NewMesh(verts, idx)
}

// Triangles returns the number of triangles.
func (m *Mesh) Triangles() int {
	return len(m.tris)
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c r3.Vec) {
	t := m.tris[i]
	return m.vertices[t.a], m.vertices[t.b], m.vertices[t.c]
}

// RaycastDown casts a ray straight down from far above (x, z) and returns the
// height of the first surface hit, which is the highest triangle covering that
// column. ok is false when nothing covers it.
func (m *Mesh) RaycastDown(x, z float64) (y float64, ok bool) {
	y = math.Inf(-1)
	for _, t := range m.tris {
		if x < t.minX || x > t.maxX || z < t.minZ || z > t.maxZ {
			continue
		}
		h, hit := verticalHit(m.vertices[t.a], m.vertices[t.b], m.vertices[t.c], x, z)
		if hit && h > y {
			y = h
			ok = true
		}
	}
	if !ok {
		return 0, false
	}
	return y, true
}

// verticalHit intersects the vertical line through (x, z) with triangle abc
// using barycentric coordinates in the XZ plane.
func verticalHit(a, b, c r3.Vec, x, z float64) (float64, bool) {
	d := (b.Z-c.Z)*(a.X-c.X) + (c.X-b.X)*(a.Z-c.Z)
	if d == 0 {
		// Triangle is vertical or degenerate; a vertical ray grazes it at most
		return 0, false
	}
	const eps = 1e-12
	w1 := ((b.Z-c.Z)*(x-c.X) + (c.X-b.X)*(z-c.Z)) / d
	w2 := ((c.Z-a.Z)*(x-c.X) + (a.X-c.X)*(z-c.Z)) / d
	w3 := 1 - w1 - w2
	if w1 < -eps || w2 < -eps || w3 < -eps {
		return 0, false
	}
	return w1*a.Y + w2*b.Y + w3*c.Y, true
}
