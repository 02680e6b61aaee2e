package systems

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"
)

// Direction selects which side of a boundary surface is out of bounds.
type Direction uint8

const (
	Floor   Direction = iota // Violated below the surface
	Ceiling                  // Violated above the surface
)

func (d Direction) String() string {
	if d == Ceiling {
		return "ceiling"
	}
	return "floor"
}

// farHeight is how far a missing mesh surface is pushed so it never triggers.
const farHeight = 10000

// HeightSource is an object whose current height defines a boundary.
type HeightSource interface {
	Height() float64
}

// HeightField is a surface sampled by horizontal position.
type HeightField interface {
	SampleHeight(x, z float64) float64
}

// BoundaryRule is a floor or ceiling height constraint. Exactly one of Height,
// Reference, Terrain or Mesh must be set; any other combination makes the rule
// a no-op and is reported once.
type BoundaryRule struct {
	Height    *float64
	Reference HeightSource
	Terrain   HeightField
	Mesh      *Mesh
	Padding   float64 // Added to terrain and mesh samples

	dir        Direction
	logger     *slog.Logger
	warned     bool
	missWarned bool
}

// FixedBoundary returns a rule at a constant height.
func FixedBoundary(h float64) *BoundaryRule {
	return &BoundaryRule{Height: &h}
}

// ReferenceBoundary returns a rule following the height of src.
func ReferenceBoundary(src HeightSource) *BoundaryRule {
	return &BoundaryRule{Reference: src}
}

// TerrainBoundary returns a rule following a height field.
func TerrainBoundary(field HeightField, padding float64) *BoundaryRule {
	return &BoundaryRule{Terrain: field, Padding: padding}
}

// MeshBoundary returns a rule following a triangle mesh surface.
func MeshBoundary(m *Mesh, padding float64) *BoundaryRule {
	return &BoundaryRule{Mesh: m, Padding: padding}
}

// Setup fixes the rule's direction and reports a misconfiguration once.
func (b *BoundaryRule) Setup(dir Direction, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	b.dir = dir
	b.logger = logger
	if !b.Valid() && !b.warned {
		b.warned = true
		logger.Warn("boundary_misconfigured",
			"rule", dir.String(),
			"sources", b.sources(),
			"note", "set exactly one of height, reference, terrain, mesh",
		)
	}
}

// Direction returns the side set by Setup.
func (b *BoundaryRule) Direction() Direction {
	return b.dir
}

func (b *BoundaryRule) sources() int {
	n := 0
	if b.Height != nil {
		n++
	}
	if b.Reference != nil {
		n++
	}
	if b.Terrain != nil {
		n++
	}
	if b.Mesh != nil {
		n++
	}
	return n
}

// Valid reports whether exactly one height source is configured.
func (b *BoundaryRule) Valid() bool {
	return b.sources() == 1
}

// HeightAt returns the boundary height under position p.
func (b *BoundaryRule) HeightAt(p r3.Vec) float64 {
	switch {
	case b.Height != nil:
		return *b.Height
	case b.Reference != nil:
		return b.Reference.Height()
	case b.Terrain != nil:
		return b.Terrain.SampleHeight(p.X, p.Z) + b.Padding
	case b.Mesh != nil:
		if y, ok := b.Mesh.RaycastDown(p.X, p.Z); ok {
			return y + b.Padding
		}
		if !b.missWarned && b.logger != nil {
			b.missWarned = true
			b.logger.Warn("boundary_mesh_miss", "rule", b.dir.String(), "x", p.X, "z", p.Z)
		}
		if b.dir == Ceiling {
			return p.Y + farHeight
		}
		return p.Y - farHeight
	}
	return 0
}

// IsViolated reports whether p is on the wrong side of the boundary.
func (b *BoundaryRule) IsViolated(p r3.Vec) bool {
	if b == nil || !b.Valid() {
		return false
	}
	h := b.HeightAt(p)
	if b.dir == Ceiling {
		return p.Y > h
	}
	return p.Y < h
}
