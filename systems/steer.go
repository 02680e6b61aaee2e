package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Weights scales the individual steering terms.
type Weights struct {
	Self        float64
	Repulsion   float64
	Orientation float64
	Attraction  float64
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Self + w.Repulsion + w.Orientation + w.Attraction
}

// SteerParams holds the tunables shared by every agent of a school.
type SteerParams struct {
	Weights           Weights
	RepulsionRadius   float64
	OrientationRadius float64
	OutOfBounds       float64 // Boundary push, see OutOfBoundsWeight
	LureCode          int
}

// QueryRadius is the half-extent of the neighbor query box.
func (p SteerParams) QueryRadius() float64 {
	return math.Max(p.RepulsionRadius, p.OrientationRadius)
}

// OutOfBoundsWeight returns half the sum of the steering weights and the
// current weights of all lures matching code, never negative. It is large
// enough that a boundary push dominates local steering.
func OutOfBoundsWeight(w Weights, lures []*Lure, code int) float64 {
	sum := w.Sum()
	for _, l := range lures {
		if l != nil && l.Matches(code) {
			sum += l.CurrentWeight()
		}
	}
	return math.Max(sum/2, 0)
}

// NeighborSource finds agents near a point and reads their state.
type NeighborSource[K comparable] interface {
	QueryInto(dst []K, box r3.Box) []K
	Position(k K) r3.Vec
	Forward(k K) r3.Vec
}

// SteerTerms is the breakdown of one steering evaluation, each term already
// weighted. Repulsion points towards the crowd and is subtracted.
type SteerTerms struct {
	Self        r3.Vec
	Repulsion   r3.Vec
	Orientation r3.Vec
	Attraction  r3.Vec
	Lure        r3.Vec
	Boundary    r3.Vec

	Repulsors int // Neighbors inside the repulsion radius
	Aligners  int // Neighbors inside the orientation radius
}

// Direction combines the terms into the unnormalized desired direction.
func (s SteerTerms) Direction() r3.Vec {
	d := r3.Sub(s.Self, s.Repulsion)
	d = r3.Add(d, s.Orientation)
	d = r3.Add(d, s.Attraction)
	d = r3.Add(d, s.Lure)
	return r3.Add(d, s.Boundary)
}

// Steerer evaluates the desired direction of individual agents. It keeps a
// scratch buffer for neighbor queries and is not safe for concurrent use.
type Steerer[K comparable] struct {
	Params    SteerParams
	Neighbors NeighborSource[K]

	scratch []K
}

// NewSteerer creates a steerer reading neighbors from src.
func NewSteerer[K comparable](params SteerParams, src NeighborSource[K]) *Steerer[K] {
	return &Steerer[K]{Params: params, Neighbors: src}
}

// Evaluate computes the desired direction for agent self at pos facing
// forward. average is the school's mean position. Nil boundaries are ignored.
func (s *Steerer[K]) Evaluate(self K, pos, forward, average r3.Vec, lures []*Lure, floor, ceiling *BoundaryRule) (r3.Vec, SteerTerms) {
	p := s.Params
	w := p.Weights
	var terms SteerTerms

	terms.Self = r3.Scale(w.Self, forward)

	// One query sized to the larger radius, partitioned by squared distance
	var repSum, oriSum r3.Vec
	if s.Neighbors != nil {
		repSq := p.RepulsionRadius * p.RepulsionRadius
		oriSq := p.OrientationRadius * p.OrientationRadius
		s.scratch = s.Neighbors.QueryInto(s.scratch[:0], BoxAround(pos, p.QueryRadius()))
		for _, k := range s.scratch {
			if k == self {
				continue
			}
			offset := r3.Sub(s.Neighbors.Position(k), pos)
			d2 := r3.Norm2(offset)
			if d2 < repSq {
				repSum = r3.Add(repSum, offset)
				terms.Repulsors++
			}
			if d2 < oriSq {
				oriSum = r3.Add(oriSum, s.Neighbors.Forward(k))
				terms.Aligners++
			}
		}
	}
	terms.Repulsion = r3.Scale(w.Repulsion, SafeUnit(repSum))
	terms.Orientation = r3.Scale(w.Orientation, SafeUnit(oriSum))
	terms.Attraction = r3.Scale(w.Attraction, SafeUnit(r3.Sub(average, pos)))

	for _, l := range lures {
		if l != nil && l.Matches(p.LureCode) {
			terms.Lure = r3.Add(terms.Lure, l.InfluenceOn(pos))
		}
	}

	switch {
	case floor.IsViolated(pos):
		terms.Boundary = r3.Scale(p.OutOfBounds, Up)
	case ceiling.IsViolated(pos):
		terms.Boundary = r3.Scale(-p.OutOfBounds, Up)
	}

	return terms.Direction(), terms
}
