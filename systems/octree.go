package systems

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r3"
)

// Octree is a loose bounding-volume octree over small boxes keyed by K.
//
// Entries live at the deepest node whose loose bounds fully contain them; an
// entry that straddles child regions stays with the parent. Children are created
// when a leaf overflows and collapsed again when a subtree's entries fit in one
// node. The root region is fixed at construction and never grows: boxes outside
// it are rejected by Insert.
type Octree[K comparable] struct {
	root       *octNode[K]
	minSize    float64
	looseness  float64
	maxEntries int

	// where maps each key to the node holding it, so Remove is O(1) plus pruning.
	where map[K]*octNode[K]
}

// OctreeStats summarizes the tree shape.
type OctreeStats struct {
	Entries  int
	Nodes    int
	MaxDepth int
}

type octEntry[K comparable] struct {
	key K
	box r3.Box
}

type octNode[K comparable] struct {
	center   r3.Vec
	baseLen  float64
	bounds   r3.Box // loose bounds
	entries  []octEntry[K]
	children *[8]*octNode[K]
	parent   *octNode[K]
	depth    int
}

// NewOctree creates an octree whose root cube has edge size centered on center.
// minNodeSize stops subdivision, looseness (1..2) scales each node's bounds and
// maxEntries is the soft per-node capacity before a split.
func NewOctree[K comparable](center r3.Vec, size, minNodeSize, looseness float64, maxEntries int) *Octree[K] {
	if looseness < 1 {
		looseness = 1
	}
	if looseness > 2 {
		looseness = 2
	}
	if minNodeSize > size {
		minNodeSize = size
	}
	if maxEntries < 1 {
		maxEntries = 8
	}
	t := &Octree[K]{
		minSize:    minNodeSize,
		looseness:  looseness,
		maxEntries: maxEntries,
		where:      make(map[K]*octNode[K]),
	}
	t.root = t.newNode(center, size, nil)
	return t
}

func (t *Octree[K]) newNode(center r3.Vec, baseLen float64, parent *octNode[K]) *octNode[K] {
	n := &octNode[K]{
		center:  center,
		baseLen: baseLen,
		bounds:  BoxAround(center, t.looseness*baseLen/2),
		parent:  parent,
	}
	if parent != nil {
		n.depth = parent.depth + 1
	}
	return n
}

// Root returns the loose bounds of the root node.
func (t *Octree[K]) Root() r3.Box {
	return t.root.bounds
}

// Len returns the number of stored entries.
func (t *Octree[K]) Len() int {
	return len(t.where)
}

// Contains reports whether k has an entry.
func (t *Octree[K]) Contains(k K) bool {
	_, ok := t.where[k]
	return ok
}

// Insert stores k with the given bounds, replacing any previous entry for k.
// Returns false, leaving k absent, when box is not inside the root region.
func (t *Octree[K]) Insert(k K, box r3.Box) bool {
	t.Remove(k)
	if !Encloses(t.root.bounds, box) {
		return false
	}

	e := octEntry[K]{key: k, box: box}
	n := t.root
	for {
		if n.children == nil {
			if len(n.entries) < t.maxEntries || n.baseLen/2 < t.minSize {
				t.place(n, e)
				return true
			}
			t.split(n)
		}
		c := n.children[n.octant(BoxCenter(box))]
		if !Encloses(c.bounds, box) {
			t.place(n, e)
			return true
		}
		n = c
	}
}

// Remove deletes k's entry. Removing an absent key is a no-op returning false.
func (t *Octree[K]) Remove(k K) bool {
	n, ok := t.where[k]
	if !ok {
		return false
	}
	delete(t.where, k)

	for i := range n.entries {
		if n.entries[i].key == k {
			last := len(n.entries) - 1
			n.entries[i] = n.entries[last]
			n.entries[last] = octEntry[K]{}
			n.entries = n.entries[:last]
			break
		}
	}

	for ; n != nil; n = n.parent {
		if n.children == nil {
			continue
		}
		if !t.merge(n) {
			break
		}
	}
	return true
}

// Clear removes every entry and collapses the tree to its root.
func (t *Octree[K]) Clear() {
	t.root = t.newNode(t.root.center, t.root.baseLen, nil)
	clear(t.where)
}

// Query yields every key whose stored box overlaps box. The sequence is finite,
// unordered and may be ranged over more than once. The tree must not be
// modified while a range over the sequence is in progress.
func (t *Octree[K]) Query(box r3.Box) iter.Seq[K] {
	return func(yield func(K) bool) {
		t.root.query(box, yield)
	}
}

// QueryInto appends every key whose stored box overlaps box to dst.
// Reuse dst across calls to avoid allocations.
func (t *Octree[K]) QueryInto(dst []K, box r3.Box) []K {
	t.root.query(box, func(k K) bool {
		dst = append(dst, k)
		return true
	})
	return dst
}

// Nodes yields the loose bounds and depth of every node, parents first.
func (t *Octree[K]) Nodes() iter.Seq2[r3.Box, int] {
	return func(yield func(r3.Box, int) bool) {
		t.root.walk(func(n *octNode[K]) bool {
			return yield(n.bounds, n.depth)
		})
	}
}

// Stats returns entry count, node count and maximum depth.
func (t *Octree[K]) Stats() OctreeStats {
	var s OctreeStats
	t.root.walk(func(n *octNode[K]) bool {
		s.Nodes++
		s.Entries += len(n.entries)
		if n.depth > s.MaxDepth {
			s.MaxDepth = n.depth
		}
		return true
	})
	return s
}

func (t *Octree[K]) place(n *octNode[K], e octEntry[K]) {
	n.entries = append(n.entries, e)
	t.where[e.key] = n
}

// split creates the eight children of leaf n and pushes down every entry that
// fits entirely inside one of them.
func (t *Octree[K]) split(n *octNode[K]) {
	quarter := n.baseLen / 4
	half := n.baseLen / 2
	var kids [8]*octNode[K]
	for i := range kids {
		off := r3.Vec{X: -quarter, Y: -quarter, Z: -quarter}
		if i&1 != 0 {
			off.X = quarter
		}
		if i&2 != 0 {
			off.Y = quarter
		}
		if i&4 != 0 {
			off.Z = quarter
		}
		kids[i] = t.newNode(r3.Add(n.center, off), half, n)
	}
	n.children = &kids

	kept := n.entries[:0]
	for _, e := range n.entries {
		c := kids[n.octant(BoxCenter(e.box))]
		if Encloses(c.bounds, e.box) {
			t.place(c, e)
		} else {
			kept = append(kept, e)
		}
	}
	clear(n.entries[len(kept):])
	n.entries = kept
}

// merge folds n's children back into n when they are all leaves and their
// entries fit in a single node. Reports whether a merge happened.
func (t *Octree[K]) merge(n *octNode[K]) bool {
	if n.children == nil {
		return false
	}
	total := len(n.entries)
	for _, c := range n.children {
		if c.children != nil {
			return false
		}
		total += len(c.entries)
	}
	if total > t.maxEntries {
		return false
	}
	for _, c := range n.children {
		for _, e := range c.entries {
			t.place(n, e)
		}
	}
	n.children = nil
	return true
}

// octant returns the child index for point p: bit 0 = +X, bit 1 = +Y, bit 2 = +Z.
func (n *octNode[K]) octant(p r3.Vec) int {
	i := 0
	if p.X >= n.center.X {
		i |= 1
	}
	if p.Y >= n.center.Y {
		i |= 2
	}
	if p.Z >= n.center.Z {
		i |= 4
	}
	return i
}

func (n *octNode[K]) query(box r3.Box, yield func(K) bool) bool {
	if !Overlaps(n.bounds, box) {
		return true
	}
	for _, e := range n.entries {
		if Overlaps(e.box, box) && !yield(e.key) {
			return false
		}
	}
	if n.children != nil {
		for _, c := range n.children {
			if !c.query(box, yield) {
				return false
			}
		}
	}
	return true
}

func (n *octNode[K]) walk(fn func(*octNode[K]) bool) bool {
	if !fn(n) {
		return false
	}
	if n.children != nil {
		for _, c := range n.children {
			if !c.walk(fn) {
				return false
			}
		}
	}
	return true
}
