package systems

import (
	"math/rand"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func newTestOctree() *Octree[int] {
	return NewOctree[int](r3.Vec{}, 100, 0.1, 1, 8)
}

func collect(t *Octree[int], box r3.Box) []int {
	out := slices.Collect(t.Query(box))
	slices.Sort(out)
	return out
}

func TestOctreeEmptyQuery(t *testing.T) {
	tree := newTestOctree()
	if got := collect(tree, BoxAround(r3.Vec{}, 10)); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
	if tree.Len() != 0 {
		t.Errorf("expected empty tree, got %d entries", tree.Len())
	}
}

func TestOctreeInsertQueryExactBounds(t *testing.T) {
	tree := newTestOctree()
	rng := rand.New(rand.NewSource(1))

	boxes := make(map[int]r3.Box)
	for i := 0; i < 500; i++ {
		p := r3.Vec{X: rng.Float64()*90 - 45, Y: rng.Float64()*90 - 45, Z: rng.Float64()*90 - 45}
		b := BoxAround(p, 0.1)
		if !tree.Insert(i, b) {
			t.Fatalf("insert %d at %v failed", i, p)
		}
		boxes[i] = b
	}

	if tree.Len() != 500 {
		t.Fatalf("expected 500 entries, got %d", tree.Len())
	}
	stats := tree.Stats()
	if stats.Entries != 500 {
		t.Errorf("stats count %d entries, want 500", stats.Entries)
	}
	if stats.Nodes <= 1 {
		t.Errorf("expected tree to subdivide, got %d nodes", stats.Nodes)
	}

	for k, b := range boxes {
		if !slices.Contains(collect(tree, b), k) {
			t.Fatalf("query with entry %d's own bounds did not return it", k)
		}
	}
}

func TestOctreeQueryMatchesBruteForce(t *testing.T) {
	tree := newTestOctree()
	rng := rand.New(rand.NewSource(2))

	boxes := make(map[int]r3.Box)
	for i := 0; i < 300; i++ {
		p := r3.Vec{X: rng.Float64()*80 - 40, Y: rng.Float64()*80 - 40, Z: rng.Float64()*80 - 40}
		boxes[i] = BoxAround(p, 0.1)
		tree.Insert(i, boxes[i])
	}

	for q := 0; q < 50; q++ {
		c := r3.Vec{X: rng.Float64()*80 - 40, Y: rng.Float64()*80 - 40, Z: rng.Float64()*80 - 40}
		query := BoxAround(c, 8)

		var want []int
		for k, b := range boxes {
			if Overlaps(b, query) {
				want = append(want, k)
			}
		}
		slices.Sort(want)

		got := collect(tree, query)
		if !slices.Equal(got, want) {
			t.Fatalf("query %d: got %v, want %v", q, got, want)
		}

		// QueryInto agrees with Query
		into := tree.QueryInto(nil, query)
		slices.Sort(into)
		if !slices.Equal(into, want) {
			t.Fatalf("QueryInto %d: got %v, want %v", q, into, want)
		}
	}
}

func TestOctreeQueryRestartable(t *testing.T) {
	tree := newTestOctree()
	for i := 0; i < 20; i++ {
		tree.Insert(i, BoxAround(r3.Vec{X: float64(i)}, 0.1))
	}
	seq := tree.Query(BoxAround(r3.Vec{X: 10}, 20))
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if len(first) != 20 || len(second) != 20 {
		t.Errorf("expected 20 results twice, got %d and %d", len(first), len(second))
	}

	// Early break stops iteration
	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("expected to stop after 3, got %d", n)
	}
}

func TestOctreeRemove(t *testing.T) {
	tree := newTestOctree()
	b := BoxAround(r3.Vec{X: 1, Y: 2, Z: 3}, 0.1)
	tree.Insert(7, b)

	if !tree.Remove(7) {
		t.Fatal("expected remove to report success")
	}
	if got := collect(tree, b); len(got) != 0 {
		t.Errorf("removed key still returned: %v", got)
	}
	if tree.Remove(7) {
		t.Error("second remove should be a no-op")
	}
	if tree.Remove(99) {
		t.Error("removing unknown key should be a no-op")
	}
}

func TestOctreeRejectsOutsideRoot(t *testing.T) {
	tree := newTestOctree()
	if tree.Insert(1, BoxAround(r3.Vec{X: 200}, 0.1)) {
		t.Error("expected insert outside root to fail")
	}
	if tree.Contains(1) {
		t.Error("rejected key should not be stored")
	}
	// Removing a key that never made it in is silent
	if tree.Remove(1) {
		t.Error("expected no-op remove")
	}

	// A key that moves outside loses its entry
	tree.Insert(2, BoxAround(r3.Vec{}, 0.1))
	if tree.Insert(2, BoxAround(r3.Vec{Y: 80}, 0.1)) {
		t.Error("expected reinsert outside root to fail")
	}
	if tree.Contains(2) {
		t.Error("stale entry left behind after failed reinsert")
	}
}

func TestOctreeReinsertReplaces(t *testing.T) {
	tree := newTestOctree()
	tree.Insert(1, BoxAround(r3.Vec{X: -20}, 0.1))
	tree.Insert(1, BoxAround(r3.Vec{X: 20}, 0.1))

	if tree.Len() != 1 {
		t.Fatalf("expected one entry, got %d", tree.Len())
	}
	if got := collect(tree, BoxAround(r3.Vec{X: -20}, 1)); len(got) != 0 {
		t.Errorf("old position still indexed: %v", got)
	}
	if got := collect(tree, BoxAround(r3.Vec{X: 20}, 1)); !slices.Equal(got, []int{1}) {
		t.Errorf("new position not indexed: %v", got)
	}
}

func TestOctreeRoundTripIdempotent(t *testing.T) {
	build := func() *Octree[int] {
		tree := newTestOctree()
		rng := rand.New(rand.NewSource(3))
		for i := 0; i < 200; i++ {
			p := r3.Vec{X: rng.Float64()*60 - 30, Y: rng.Float64()*60 - 30, Z: rng.Float64()*60 - 30}
			tree.Insert(i, BoxAround(p, 0.1))
		}
		return tree
	}

	b := BoxAround(r3.Vec{X: 3, Y: 4, Z: 5}, 0.1)

	once := build()
	once.Insert(1000, b)

	round := build()
	round.Insert(1000, b)
	round.Remove(1000)
	round.Insert(1000, b)

	if once.Stats() != round.Stats() {
		t.Errorf("stats differ: once=%+v round=%+v", once.Stats(), round.Stats())
	}
	all := once.Root()
	if !slices.Equal(collect(once, all), collect(round, all)) {
		t.Error("query results differ after round trip")
	}
	near := BoxAround(r3.Vec{X: 3, Y: 4, Z: 5}, 5)
	if !slices.Equal(collect(once, near), collect(round, near)) {
		t.Error("local query results differ after round trip")
	}
}

func TestOctreePrunesWhenEmptied(t *testing.T) {
	tree := newTestOctree()
	for i := 0; i < 100; i++ {
		tree.Insert(i, BoxAround(r3.Vec{X: float64(i%10) * 4, Y: float64(i/10) * 4, Z: 1}, 0.1))
	}
	if tree.Stats().Nodes == 1 {
		t.Fatal("expected subdivision")
	}
	for i := 0; i < 100; i++ {
		tree.Remove(i)
	}
	s := tree.Stats()
	if s.Nodes != 1 || s.Entries != 0 {
		t.Errorf("expected tree collapsed to empty root, got %+v", s)
	}
}

func TestOctreeCoincidentEntries(t *testing.T) {
	tree := NewOctree[int](r3.Vec{}, 10, 1, 1, 4)
	b := BoxAround(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, 0.1)
	for i := 0; i < 50; i++ {
		if !tree.Insert(i, b) {
			t.Fatalf("insert %d failed", i)
		}
	}
	// Subdivision stops at the minimum node size
	if got := len(collect(tree, b)); got != 50 {
		t.Errorf("expected all 50 coincident entries, got %d", got)
	}
}

func TestOctreeStraddlingEntryStaysAtParent(t *testing.T) {
	tree := NewOctree[int](r3.Vec{}, 16, 0.5, 1, 1)
	// Fill to force a split, then add an entry spanning the center planes
	tree.Insert(1, BoxAround(r3.Vec{X: 4, Y: 4, Z: 4}, 0.1))
	tree.Insert(2, BoxAround(r3.Vec{X: -4, Y: -4, Z: -4}, 0.1))
	tree.Insert(3, BoxAround(r3.Vec{}, 0.5))

	if got := collect(tree, BoxAround(r3.Vec{}, 0.01)); !slices.Equal(got, []int{3}) {
		t.Errorf("expected straddling entry to be found, got %v", got)
	}
	if tree.where[3] != tree.root {
		t.Error("straddling entry should be held by the root")
	}
}

func TestOctreeNodesWalk(t *testing.T) {
	tree := newTestOctree()
	for i := 0; i < 30; i++ {
		tree.Insert(i, BoxAround(r3.Vec{X: float64(i) - 15}, 0.1))
	}
	n := 0
	for box, depth := range tree.Nodes() {
		if depth == 0 && box != tree.Root() {
			t.Errorf("first node should be the root")
		}
		n++
	}
	if n != tree.Stats().Nodes {
		t.Errorf("walk visited %d nodes, stats report %d", n, tree.Stats().Nodes)
	}
}
