package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// sliceNeighbors is a brute-force NeighborSource over a fixed set of agents.
type sliceNeighbors struct {
	pos []r3.Vec
	fwd []r3.Vec
}

func (s *sliceNeighbors) QueryInto(dst []int, box r3.Box) []int {
	for i, p := range s.pos {
		if Overlaps(box, BoxAround(p, 0.1)) {
			dst = append(dst, i)
		}
	}
	return dst
}

func (s *sliceNeighbors) Position(k int) r3.Vec { return s.pos[k] }
func (s *sliceNeighbors) Forward(k int) r3.Vec  { return s.fwd[k] }

func testParams() SteerParams {
	return SteerParams{
		Weights:           Weights{Self: 5, Repulsion: 1.5, Orientation: 1, Attraction: 1.5},
		RepulsionRadius:   1.5,
		OrientationRadius: 6,
		OutOfBounds:       10,
	}
}

func near(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < 1e-9
}

func hasNaN(v r3.Vec) bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

func TestSteerZeroNeighbors(t *testing.T) {
	src := &sliceNeighbors{
		pos: []r3.Vec{{}, {X: 50}},
		fwd: []r3.Vec{Forward, Forward},
	}
	s := NewSteerer(testParams(), src)

	// Average equals own position, so attraction has no direction either
	dir, terms := s.Evaluate(0, r3.Vec{}, Forward, r3.Vec{}, nil, nil, nil)

	if !IsZero(terms.Repulsion) || !IsZero(terms.Orientation) || !IsZero(terms.Attraction) {
		t.Errorf("expected zero neighbor terms, got %+v", terms)
	}
	if terms.Repulsors != 0 || terms.Aligners != 0 {
		t.Errorf("agent should not count itself: %+v", terms)
	}
	if hasNaN(dir) {
		t.Fatalf("direction is NaN: %v", dir)
	}
	if !near(dir, r3.Vec{Z: 5}) {
		t.Errorf("expected pure self term, got %v", dir)
	}
}

func TestSteerNilNeighborSource(t *testing.T) {
	s := NewSteerer[int](testParams(), nil)
	dir, _ := s.Evaluate(0, r3.Vec{}, Forward, r3.Vec{}, nil, nil, nil)
	if !near(dir, r3.Vec{Z: 5}) {
		t.Errorf("expected pure self term, got %v", dir)
	}
}

func TestSteerRepulsionPointsAway(t *testing.T) {
	src := &sliceNeighbors{
		pos: []r3.Vec{{}, {X: 1}},
		fwd: []r3.Vec{Forward, Forward},
	}
	p := testParams()
	p.Weights = Weights{Repulsion: 1}
	s := NewSteerer(p, src)

	dir, terms := s.Evaluate(0, r3.Vec{}, Forward, r3.Vec{}, nil, nil, nil)
	if terms.Repulsors != 1 {
		t.Fatalf("expected one repulsor, got %d", terms.Repulsors)
	}
	if !near(terms.Repulsion, r3.Vec{X: 1}) {
		t.Errorf("repulsion term should point towards the crowd, got %v", terms.Repulsion)
	}
	if !near(dir, r3.Vec{X: -1}) {
		t.Errorf("result should face away from the neighbor, got %v", dir)
	}
}

func TestSteerOrientationAlignsWithNeighbors(t *testing.T) {
	right := r3.Vec{X: 1}
	src := &sliceNeighbors{
		pos: []r3.Vec{{}, {X: 3}, {X: -3}, {Z: 5.9}, {Z: 6.5}},
		fwd: []r3.Vec{Forward, right, right, right, {X: -1}},
	}
	p := testParams()
	p.Weights = Weights{Orientation: 2}
	s := NewSteerer(p, src)

	dir, terms := s.Evaluate(0, r3.Vec{}, Forward, r3.Vec{}, nil, nil, nil)
	if terms.Aligners != 3 {
		t.Errorf("expected 3 aligners, got %d", terms.Aligners)
	}
	if terms.Repulsors != 0 {
		t.Errorf("expected no repulsors, got %d", terms.Repulsors)
	}
	if !near(dir, r3.Vec{X: 2}) {
		t.Errorf("expected alignment towards +X, got %v", dir)
	}
}

func TestSteerAttractionAndLures(t *testing.T) {
	p := testParams()
	p.Weights = Weights{Attraction: 1}
	p.LureCode = 2
	s := NewSteerer[int](p, &sliceNeighbors{})

	lures := []*Lure{
		NewLure("a", 2, r3.Vec{Y: 10}, LureSetting{Weight: 2, Duration: 1}),
		NewLure("b", 0, r3.Vec{Y: -10}, LureSetting{Weight: 0.5, Duration: 1}),
		NewLure("c", 7, r3.Vec{X: 10}, LureSetting{Weight: 9, Duration: 1}),
	}
	dir, terms := s.Evaluate(0, r3.Vec{}, Forward, r3.Vec{Z: -4}, lures, nil, nil)

	if !near(terms.Attraction, r3.Vec{Z: -1}) {
		t.Errorf("attraction: got %v", terms.Attraction)
	}
	// Matching lures stack; the code 7 lure is ignored
	if !near(terms.Lure, r3.Vec{Y: 1.5}) {
		t.Errorf("lure: got %v", terms.Lure)
	}
	if !near(dir, r3.Vec{Y: 1.5, Z: -1}) {
		t.Errorf("direction: got %v", dir)
	}
}

func TestSteerBoundaryPush(t *testing.T) {
	p := testParams()
	p.Weights = Weights{}
	s := NewSteerer[int](p, &sliceNeighbors{})

	floor := FixedBoundary(0)
	floor.Setup(Floor, quietLogger())
	ceiling := FixedBoundary(10)
	ceiling.Setup(Ceiling, quietLogger())

	below, _ := s.Evaluate(0, r3.Vec{Y: -1}, Forward, r3.Vec{}, nil, floor, ceiling)
	if !near(below, r3.Vec{Y: 10}) {
		t.Errorf("below floor: expected upward push, got %v", below)
	}
	above, _ := s.Evaluate(0, r3.Vec{Y: 11}, Forward, r3.Vec{}, nil, floor, ceiling)
	if !near(above, r3.Vec{Y: -10}) {
		t.Errorf("above ceiling: expected downward push, got %v", above)
	}
	inside, _ := s.Evaluate(0, r3.Vec{Y: 5}, Forward, r3.Vec{}, nil, floor, ceiling)
	if !IsZero(inside) {
		t.Errorf("inside: expected no push, got %v", inside)
	}
}

func TestOutOfBoundsWeight(t *testing.T) {
	w := Weights{Self: 5, Repulsion: 1.5, Orientation: 1, Attraction: 1.5}
	lures := []*Lure{
		NewLure("a", 0, r3.Vec{}, LureSetting{Weight: 1, Duration: 1}),
		NewLure("b", 4, r3.Vec{}, LureSetting{Weight: 100, Duration: 1}),
	}
	if got := OutOfBoundsWeight(w, lures, 3); got != 5 {
		t.Errorf("expected (9+1)/2 = 5, got %v", got)
	}
	if got := OutOfBoundsWeight(Weights{}, []*Lure{NewLure("n", 0, r3.Vec{}, LureSetting{Weight: -4})}, 0); got != 0 {
		t.Errorf("expected clamp to 0, got %v", got)
	}
}
