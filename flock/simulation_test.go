package flock

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/systems"
)

var identity = quat.Number{Real: 1}

func newTestSim(t *testing.T, edit func(*config.Config)) *Simulation {
	t.Helper()
	cfg := config.Defaults()
	if edit != nil {
		edit(cfg)
	}
	return New(cfg, Options{Logger: quietLogger(), Rand: rand.New(rand.NewSource(3))})
}

func TestSimulationSpawnTypes(t *testing.T) {
	sim := newTestSim(t, nil)
	n := sim.SpawnTypes()

	if n != 300 || sim.Len() != 300 {
		t.Fatalf("expected 300 agents, spawned %d, len %d", n, sim.Len())
	}
	if got := sim.Octree().Len() + sim.Stray(); got != 300 {
		t.Errorf("every agent should be indexed or counted as stray, got %d", got)
	}

	half := sim.cfg.Flock.SchoolWidth / 2
	types := map[uint8]int{}
	for a := range sim.Agents() {
		types[a.Type]++
		p := a.Position
		if math.Abs(p.X) > half || math.Abs(p.Y) > half || math.Abs(p.Z) > half {
			t.Errorf("agent spawned outside school cube: %v", p)
		}
		if math.Abs(r3.Norm(a.Forward)-1) > 1e-9 {
			t.Errorf("forward not unit: %v", a.Forward)
		}
	}
	if types[0] != 250 || types[1] != 50 {
		t.Errorf("unexpected type split: %v", types)
	}
}

func TestSimulationMotionStep(t *testing.T) {
	sim := newTestSim(t, nil)
	e := sim.Spawn(r3.Vec{}, identity, 2)

	sim.Tick(0.1)

	a, ok := sim.Agent(e)
	if !ok {
		t.Fatal("agent missing")
	}
	if math.Abs(a.Position.Z-0.2) > 1e-9 || math.Abs(a.Position.X) > 1e-9 {
		t.Errorf("expected to swim 0.2 along +Z, got %v", a.Position)
	}
}

func TestSimulationInvalidSpawnSpeed(t *testing.T) {
	sim := newTestSim(t, nil)
	e := sim.Spawn(r3.Vec{}, identity, -1)
	a, _ := sim.Agent(e)
	if a.Speed != config.DefaultTypeSpeed {
		t.Errorf("expected default speed, got %v", a.Speed)
	}
}

func TestSimulationRecomputesEveryInterval(t *testing.T) {
	sim := newTestSim(t, nil)
	sim.SpawnTypes()

	const dt = 1.0 / 60
	for i := 0; i < 180; i++ {
		sim.Tick(dt)
	}
	// 3 seconds at a 0.5s interval
	if p := sim.Scheduler().Passes(); p < 4 || p > 6 {
		t.Errorf("expected about 5 completed passes, got %d", p)
	}
	if sim.Now() < 3-1e-9 {
		t.Errorf("clock did not advance: %v", sim.Now())
	}
	for a := range sim.Agents() {
		if systems.IsZero(a.Target) {
			t.Fatalf("agent %v never got a steering target", a.Entity)
		}
	}
}

func TestSimulationRemove(t *testing.T) {
	sim := newTestSim(t, nil)
	var ents []ecs.Entity
	for i := 0; i < 10; i++ {
		ents = append(ents, sim.Spawn(r3.Vec{X: float64(i)}, identity, 1))
	}
	sim.Tick(0.05)

	if !sim.Remove(ents[3]) {
		t.Fatal("expected removal to succeed")
	}
	if sim.Remove(ents[3]) {
		t.Error("second removal should be a no-op")
	}
	if sim.Len() != 9 {
		t.Errorf("expected 9 agents, got %d", sim.Len())
	}
	if sim.Octree().Contains(ents[3]) {
		t.Error("removed agent still indexed")
	}
	for e := range sim.Octree().Query(sim.Octree().Root()) {
		if e == ents[3] {
			t.Error("query returned removed agent")
		}
	}
	for a := range sim.Agents() {
		if a.Entity == ents[3] {
			t.Error("removed agent still listed")
		}
	}

	// Keep ticking to make sure the cursor stayed valid
	for i := 0; i < 60; i++ {
		sim.Tick(0.05)
	}
}

func TestSimulationFloorPushesUp(t *testing.T) {
	sim := newTestSim(t, nil)
	floor := systems.FixedBoundary(0)
	sim.ConfigureBoundaries(floor, nil)
	e := sim.Spawn(r3.Vec{Y: -5}, identity, 1)

	terms, ok := sim.Explain(e)
	if !ok {
		t.Fatal("agent missing")
	}
	want := r3.Scale(sim.Params().OutOfBounds, systems.Up)
	if r3.Norm(r3.Sub(terms.Boundary, want)) > 1e-9 {
		t.Errorf("expected boundary push %v, got %v", want, terms.Boundary)
	}

	sim.Tick(0.01)
	a, _ := sim.Agent(e)
	if a.Target.Y <= 0 {
		t.Errorf("expected upward target below the floor, got %v", a.Target)
	}
}

func TestSimulationOnUpdate(t *testing.T) {
	sim := newTestSim(t, nil)
	for i := 0; i < 4; i++ {
		sim.Spawn(r3.Vec{X: float64(i)}, identity, 1)
	}

	calls := map[ecs.Entity]int{}
	sim.OnUpdate(func(e ecs.Entity, pos, forward r3.Vec) {
		calls[e]++
		if systems.IsZero(forward) {
			t.Errorf("zero forward reported for %v", e)
		}
	})
	sim.Tick(0.1)
	sim.Tick(0.1)

	if len(calls) != 4 {
		t.Fatalf("expected 4 agents reported, got %d", len(calls))
	}
	for e, n := range calls {
		if n != 2 {
			t.Errorf("agent %v reported %d times over 2 ticks", e, n)
		}
	}
}

func TestSimulationRemoveDuringOnUpdate(t *testing.T) {
	sim := newTestSim(t, nil)
	var ids []ecs.Entity
	for i := 0; i < 10; i++ {
		ids = append(ids, sim.Spawn(r3.Vec{X: float64(i)}, identity, 1))
	}

	calls := map[ecs.Entity]int{}
	sim.OnUpdate(func(e ecs.Entity, pos, forward r3.Vec) {
		calls[e]++
		if e == ids[0] {
			sim.Remove(ids[2])
			sim.Remove(ids[9])
		}
		if e == ids[5] {
			sim.Remove(e)
		}
	})
	sim.Tick(1.0 / 60)

	if sim.Len() != 7 {
		t.Fatalf("expected 7 agents left, got %d", sim.Len())
	}
	if calls[ids[2]] != 0 || calls[ids[9]] != 0 {
		t.Error("agents removed before their turn should not be reported")
	}
	if len(calls) != 8 {
		t.Errorf("expected 8 agents reported, got %d", len(calls))
	}
	for e, n := range calls {
		if n != 1 {
			t.Errorf("agent %v reported %d times in one tick", e, n)
		}
	}

	clear(calls)
	sim.Tick(1.0 / 60)
	if len(calls) != 7 {
		t.Errorf("expected 7 agents reported on the next tick, got %d", len(calls))
	}
}

func TestSimulationRemoveWhileRangingAgents(t *testing.T) {
	sim := newTestSim(t, nil)
	for i := 0; i < 6; i++ {
		sim.Spawn(r3.Vec{X: float64(i)}, identity, 1)
	}

	n := 0
	for a := range sim.Agents() {
		n++
		if !sim.Remove(a.Entity) {
			t.Errorf("agent %v yielded but not removable", a.Entity)
		}
	}
	if n != 6 || sim.Len() != 0 {
		t.Errorf("yielded %d agents, %d left", n, sim.Len())
	}
}

func TestSimulationStrayCountsAgents(t *testing.T) {
	sim := newTestSim(t, nil)
	sim.Spawn(r3.Vec{X: 1000}, identity, 1)
	sim.Spawn(r3.Vec{}, identity, 1)

	for range 600 {
		sim.Tick(1.0 / 60)
	}
	if sim.Octree().Len() != 1 {
		t.Fatalf("expected one indexed agent, got %d", sim.Octree().Len())
	}
	if sim.Stray() != 1 {
		t.Errorf("expected 1 stray agent after many passes, got %d", sim.Stray())
	}
}

func TestSpawnTypesStaggersFirstSteering(t *testing.T) {
	sim := newTestSim(t, nil)
	sim.SpawnTypes()

	starts := map[float64]bool{}
	for a := range sim.Agents() {
		_, _, motion, _, _ := sim.Components(a.Entity)
		if motion.IntervalStart < 0 || motion.IntervalStart >= sim.Scheduler().Interval() {
			t.Fatalf("start %v outside the first interval", motion.IntervalStart)
		}
		starts[motion.IntervalStart] = true
	}
	if len(starts) < 2 {
		t.Fatal("expected staggered start times")
	}

	sim.Tick(1.0 / 60)
	deferred := 0
	for a := range sim.Agents() {
		_, head, motion, _, _ := sim.Components(a.Entity)
		if motion.IntervalStart <= sim.Now() {
			continue
		}
		if head.Target != head.Previous {
			t.Errorf("agent %v steered before its start time", a.Entity)
		}
		if a.Slot < sim.Scheduler().Cursor() {
			deferred++
		}
	}
	if deferred == 0 {
		t.Error("expected visited agents to wait for their start time")
	}
}

func TestSimulationSpawnStartsAtNow(t *testing.T) {
	sim := newTestSim(t, nil)
	for range 3 {
		sim.Tick(0.1)
	}
	e := sim.Spawn(r3.Vec{}, identity, 1)
	_, head, motion, _, ok := sim.Components(e)
	if !ok || motion.IntervalStart != sim.Now() {
		t.Errorf("interval start %v, want %v", motion.IntervalStart, sim.Now())
	}
	if head.Previous != head.Forward || head.Target != head.Forward {
		t.Errorf("new agent should hold its spawn heading: %+v", head)
	}
}

func TestSimulationConfigureLuresUpdatesBoundaryWeight(t *testing.T) {
	sim := newTestSim(t, nil)
	base := sim.Params().OutOfBounds

	sim.ConfigureLures([]*systems.Lure{
		systems.NewLure("bait", 0, r3.Vec{}, systems.LureSetting{Weight: 2, Duration: 1}),
	})
	if got := sim.Params().OutOfBounds; math.Abs(got-(base+1)) > 1e-12 {
		t.Errorf("expected %v, got %v", base+1, got)
	}

	sim.SetWeights(systems.Weights{Self: 1})
	if got := sim.Params().OutOfBounds; got != 1.5 {
		t.Errorf("expected (1+2)/2, got %v", got)
	}
}

func TestSimulationEmptyTick(t *testing.T) {
	sim := newTestSim(t, nil)
	for i := 0; i < 10; i++ {
		sim.Tick(0.1)
	}
	if sim.Recomputed() != 0 || sim.Len() != 0 {
		t.Error("empty simulation should do nothing")
	}
	if !systems.IsZero(sim.AveragePosition()) {
		t.Errorf("empty average should be zero, got %v", sim.AveragePosition())
	}
}

func TestSimulationZeroInterval(t *testing.T) {
	sim := newTestSim(t, func(c *config.Config) { c.Flock.Interval = 0 })
	for i := 0; i < 20; i++ {
		sim.Spawn(r3.Vec{X: float64(i)}, identity, 1)
	}
	sim.Tick(0.1)
	if sim.Recomputed() != 20 {
		t.Errorf("expected every agent recomputed each tick, got %d", sim.Recomputed())
	}
	for a := range sim.Agents() {
		if math.IsNaN(a.Position.X) || math.IsNaN(a.Forward.X) {
			t.Fatalf("NaN state with zero interval: %+v", a)
		}
	}
}

func TestSimulationAgentsStopsEarly(t *testing.T) {
	sim := newTestSim(t, nil)
	for i := 0; i < 5; i++ {
		sim.Spawn(r3.Vec{}, identity, 1)
	}
	n := 0
	for range sim.Agents() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("expected iteration to stop at 2, got %d", n)
	}
}

func TestSceneFromDefaults(t *testing.T) {
	cfg := config.Defaults()
	sc := NewScene(cfg, quietLogger())

	if len(sc.Lures) != 2 {
		t.Fatalf("expected 2 lures, got %d", len(sc.Lures))
	}
	shark := sc.Lure("shark")
	if shark == nil || shark.Drift() == nil {
		t.Fatal("expected drifting shark lure")
	}
	if sc.Lure("missing") != nil {
		t.Error("unknown lure should be nil")
	}
	if sc.Floor == nil || sc.Floor.Terrain == nil || sc.Terrain == nil {
		t.Error("expected terrain floor")
	}
	if sc.Ceiling == nil || sc.Ceiling.Height == nil || *sc.Ceiling.Height != 20 {
		t.Error("expected fixed ceiling at 20")
	}

	sim := New(cfg, Options{Logger: quietLogger()})
	sc.Apply(sim)
	if len(sim.Lures()) != 2 {
		t.Error("lures not registered")
	}
	floor, ceiling := sim.Boundaries()
	if floor.Direction() != systems.Floor || ceiling.Direction() != systems.Ceiling {
		t.Error("boundary directions not set")
	}
}

func TestSceneReferenceAndMeshBoundaries(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := config.Defaults()
	cfg.Boundaries.Floor = &config.BoundaryConfig{
		Mesh: &config.MeshConfig{Size: 40, Cells: 8, Base: -10, Amplitude: 2},
	}
	cfg.Boundaries.Ceiling = &config.BoundaryConfig{Reference: "reef"}
	sc := NewScene(cfg, logger)

	if sc.Mesh == nil || sc.Floor.Mesh != sc.Mesh {
		t.Error("expected mesh floor")
	}
	if sc.Ceiling.Reference == nil || sc.Ceiling.Reference.Height() != -5 {
		t.Error("expected ceiling to follow the reef lure")
	}

	cfg.Boundaries.Ceiling = &config.BoundaryConfig{Reference: "nowhere"}
	sc = NewScene(cfg, logger)
	if sc.Ceiling.Valid() {
		t.Error("unknown reference should leave the rule without a source")
	}
	if !strings.Contains(buf.String(), "boundary_reference_unknown") {
		t.Error("expected unknown reference warning")
	}
}
