package flock

import (
	"iter"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/telemetry"
)

// Options configures a Simulation beyond the loaded config.
type Options struct {
	Logger *slog.Logger
	Rand   *rand.Rand                // Spawn positions, orientations and start offsets
	Perf   *telemetry.PerfCollector // Optional per-phase timing
}

// AgentState is a read-only view of one agent.
type AgentState struct {
	Entity   ecs.Entity
	Slot     int
	Type     uint8
	Position r3.Vec
	Forward  r3.Vec
	Target   r3.Vec
	Speed    float64
}

// UpdateFunc receives each agent's new position and facing after a tick.
type UpdateFunc func(e ecs.Entity, pos, forward r3.Vec)

// Simulation is one school: its agents, spatial index, steering and schedule.
// It is single threaded; all methods must be called from the goroutine that
// drives Tick.
type Simulation struct {
	cfg    *config.Config
	logger *slog.Logger
	rng    *rand.Rand
	perf   *telemetry.PerfCollector

	pop   *Population
	tree  *systems.Octree[ecs.Entity]
	sched *Scheduler
	steer *systems.Steerer[ecs.Entity]

	lures          []*systems.Lure
	floor, ceiling *systems.BoundaryRule

	now          float64
	interval     float64
	agentHalf    float64
	average      r3.Vec
	averageTimer float64
	averageDue   bool

	recomputed int // Agents recomputed in the last tick

	onUpdate UpdateFunc
	visit    []ecs.Entity // Handles reported by the current OnUpdate pass
}

// neighborhood answers steering queries from the octree and population.
type neighborhood struct {
	tree *systems.Octree[ecs.Entity]
	*Population
}

func (n neighborhood) QueryInto(dst []ecs.Entity, box r3.Box) []ecs.Entity {
	return n.tree.QueryInto(dst, box)
}

// New creates an empty simulation from cfg.
func New(cfg *config.Config, opts Options) *Simulation {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	pop := NewPopulation()
	tree := systems.NewOctree[ecs.Entity](
		r3.Vec{},
		cfg.Flock.SchoolWidth,
		cfg.Octree.MinNodeSize,
		cfg.Octree.Looseness,
		cfg.Octree.MaxEntries,
	)

	s := &Simulation{
		cfg:        cfg,
		logger:     logger,
		rng:        rng,
		perf:       opts.Perf,
		pop:        pop,
		tree:       tree,
		sched:      NewScheduler(cfg.Flock.Interval, cfg.Scheduler.AssumedFPS, cfg.Scheduler.MinFPS, logger),
		interval:   cfg.Flock.Interval,
		agentHalf:  cfg.Flock.AgentSize / 2,
		averageDue: true,
	}

	params := systems.SteerParams{
		Weights: systems.Weights{
			Self:        cfg.Weights.Self,
			Repulsion:   cfg.Weights.Repulsion,
			Orientation: cfg.Weights.Orientation,
			Attraction:  cfg.Weights.Attraction,
		},
		RepulsionRadius:   cfg.Flock.RadiusOfRepulsion,
		OrientationRadius: cfg.Flock.RadiusOfOrientation,
		LureCode:          cfg.Flock.LureCode,
	}
	params.OutOfBounds = systems.OutOfBoundsWeight(params.Weights, nil, params.LureCode)
	s.steer = systems.NewSteerer[ecs.Entity](params, neighborhood{tree: tree, Population: pop})
	return s
}

// Spawn adds an agent with the given orientation and speed. It steers from
// the next pass that reaches it. Agents spawned outside the octree root are
// kept but have no neighbors until they return.
func (s *Simulation) Spawn(pos r3.Vec, orientation quat.Number, speed float64) ecs.Entity {
	return s.spawn(pos, orientation, speed, 0, s.now)
}

func (s *Simulation) spawn(pos r3.Vec, orientation quat.Number, speed float64, typ uint8, start float64) ecs.Entity {
	if speed <= 0 {
		s.logger.Warn("spawn_speed_invalid", "speed", speed, "default", config.DefaultTypeSpeed)
		speed = config.DefaultTypeSpeed
	}
	e := s.pop.Add(pos, systems.ForwardOf(orientation), speed, start, typ)
	s.tree.Insert(e, systems.BoxAround(pos, s.agentHalf))
	s.averageDue = true
	return e
}

// SpawnTypes populates the school from the configured agent types, placing
// agents uniformly in the school cube with random orientations. Each agent
// holds its spawn heading until a start time drawn from [now, now+interval),
// so the school does not turn in lockstep on its first pass. It returns the
// number of agents spawned.
func (s *Simulation) SpawnTypes() int {
	half := s.cfg.Flock.SchoolWidth / 2
	n := 0
	for i, at := range s.cfg.AgentTypes {
		for range at.Count {
			pos := r3.Vec{
				X: (s.rng.Float64()*2 - 1) * half,
				Y: (s.rng.Float64()*2 - 1) * half,
				Z: (s.rng.Float64()*2 - 1) * half,
			}
			start := s.now
			if s.interval > 0 {
				start += s.rng.Float64() * s.interval
			}
			s.spawn(pos, systems.RandomOrientation(s.rng), at.Speed, uint8(i), start)
			n++
		}
	}
	s.logger.Info("school_spawned", "agents", n, "types", len(s.cfg.AgentTypes))
	return n
}

// Remove deletes an agent. It returns false if e is not a live agent. It may
// be called from an OnUpdate callback or while ranging over Agents.
func (s *Simulation) Remove(e ecs.Entity) bool {
	slot, ok := s.pop.SlotOf(e)
	if !ok {
		return false
	}
	s.tree.Remove(e)
	slot = s.sched.Removed(slot, s.pop.Swap)
	s.pop.RemoveAt(slot)
	s.averageDue = true
	return true
}

// ConfigureLures registers the lures steering responds to and rederives the
// out-of-bounds weight from their current weights.
func (s *Simulation) ConfigureLures(lures []*systems.Lure) {
	s.lures = lures
	p := s.steer.Params
	p.OutOfBounds = systems.OutOfBoundsWeight(p.Weights, lures, p.LureCode)
	s.steer.Params = p
}

// ConfigureBoundaries sets the floor and ceiling. Either may be nil.
func (s *Simulation) ConfigureBoundaries(floor, ceiling *systems.BoundaryRule) {
	if floor != nil {
		floor.Setup(systems.Floor, s.logger)
	}
	if ceiling != nil {
		ceiling.Setup(systems.Ceiling, s.logger)
	}
	s.floor, s.ceiling = floor, ceiling
}

// OnUpdate registers fn to receive every agent's position and facing after
// each tick. Passing nil unregisters it. fn may remove agents; those not yet
// reported in the current tick are skipped.
func (s *Simulation) OnUpdate(fn UpdateFunc) {
	s.onUpdate = fn
}

// Tick advances the simulation by dt seconds.
func (s *Simulation) Tick(dt float64) {
	if s.perf != nil {
		s.perf.StartTick()
		defer s.perf.EndTick()
	}
	s.now += dt

	s.phase(telemetry.PhaseLures)
	for _, l := range s.lures {
		l.Advance(dt)
	}

	s.phase(telemetry.PhaseMotion)
	s.move(dt)

	s.phase(telemetry.PhaseAverage)
	s.averageTimer += dt
	if s.averageDue || s.averageTimer >= s.interval {
		s.recomputeAverage()
	}

	s.phase(telemetry.PhaseRecompute)
	s.recomputed = s.sched.Step(s.now, s.pop.Len(), s.recompute)

	if s.onUpdate != nil {
		s.phase(telemetry.PhaseTelemetry)
		s.visit = s.pop.Entities(s.visit)
		for _, e := range s.visit {
			if !s.pop.Alive(e) {
				continue
			}
			pos, head, _, _ := s.pop.Get(e)
			s.onUpdate(e, pos.Vec, head.Forward)
		}
	}
}

func (s *Simulation) phase(name string) {
	if s.perf != nil {
		s.perf.StartPhase(name)
	}
}

// move interpolates every agent's facing between its previous and target
// directions and advances it along the result.
func (s *Simulation) move(dt float64) {
	for i := range s.pop.Len() {
		pos, head, motion, _ := s.pop.Get(s.pop.At(i))
		t := 1.0
		if s.interval > 0 {
			t = (s.now - motion.IntervalStart) / s.interval
		}
		head.Forward = systems.Slerp(head.Previous, head.Target, t)
		pos.Vec = r3.Add(pos.Vec, r3.Scale(motion.Speed*dt, head.Forward))
	}
}

// recompute refreshes the octree entry of one slot and, once its start time
// has passed, its steering target.
func (s *Simulation) recompute(slot int) {
	e := s.pop.At(slot)
	pos, head, motion, _ := s.pop.Get(e)

	s.tree.Remove(e)
	s.tree.Insert(e, systems.BoxAround(pos.Vec, s.agentHalf))
	if s.now < motion.IntervalStart {
		return
	}

	dir, _ := s.steer.Evaluate(e, pos.Vec, head.Forward, s.average, s.lures, s.floor, s.ceiling)
	head.Previous = head.Forward
	head.Target = dir
	motion.IntervalStart = s.now
}

func (s *Simulation) recomputeAverage() {
	s.averageTimer = 0
	s.averageDue = false
	n := s.pop.Len()
	if n == 0 {
		s.average = r3.Vec{}
		return
	}
	var sum r3.Vec
	for i := range n {
		sum = r3.Add(sum, s.pop.Position(s.pop.At(i)))
	}
	s.average = r3.Scale(1/float64(n), sum)
}

// Agents yields the state of every agent in slot order as of the start of
// iteration. The loop body may remove agents; removed agents that have not
// been yielded yet are skipped.
func (s *Simulation) Agents() iter.Seq[AgentState] {
	return func(yield func(AgentState) bool) {
		for _, e := range s.pop.Entities(nil) {
			if !s.pop.Alive(e) {
				continue
			}
			pos, head, motion, slot := s.pop.Get(e)
			st := AgentState{
				Entity:   e,
				Slot:     slot.Index,
				Type:     slot.Type,
				Position: pos.Vec,
				Forward:  head.Forward,
				Target:   head.Target,
				Speed:    motion.Speed,
			}
			if !yield(st) {
				return
			}
		}
	}
}

// Agent returns the state of e.
func (s *Simulation) Agent(e ecs.Entity) (AgentState, bool) {
	if !s.pop.Alive(e) {
		return AgentState{}, false
	}
	pos, head, motion, slot := s.pop.Get(e)
	return AgentState{
		Entity:   e,
		Slot:     slot.Index,
		Type:     slot.Type,
		Position: pos.Vec,
		Forward:  head.Forward,
		Target:   head.Target,
		Speed:    motion.Speed,
	}, true
}

// Explain re-runs steering for e without changing it and returns the term
// breakdown.
func (s *Simulation) Explain(e ecs.Entity) (systems.SteerTerms, bool) {
	if !s.pop.Alive(e) {
		return systems.SteerTerms{}, false
	}
	pos, head, _, _ := s.pop.Get(e)
	_, terms := s.steer.Evaluate(e, pos.Vec, head.Forward, s.average, s.lures, s.floor, s.ceiling)
	return terms, true
}

// SetWeights replaces the steering weights and rederives the out-of-bounds
// weight.
func (s *Simulation) SetWeights(w systems.Weights) {
	p := s.steer.Params
	p.Weights = w
	p.OutOfBounds = systems.OutOfBoundsWeight(w, s.lures, p.LureCode)
	s.steer.Params = p
}

// Now returns the simulation clock in seconds.
func (s *Simulation) Now() float64 { return s.now }

// Len returns the number of live agents.
func (s *Simulation) Len() int { return s.pop.Len() }

// Octree returns the spatial index.
func (s *Simulation) Octree() *systems.Octree[ecs.Entity] { return s.tree }

// Scheduler returns the recomputation scheduler.
func (s *Simulation) Scheduler() *Scheduler { return s.sched }

// AveragePosition returns the last computed mean agent position.
func (s *Simulation) AveragePosition() r3.Vec { return s.average }

// Lures returns the registered lures.
func (s *Simulation) Lures() []*systems.Lure { return s.lures }

// Boundaries returns the floor and ceiling rules.
func (s *Simulation) Boundaries() (floor, ceiling *systems.BoundaryRule) {
	return s.floor, s.ceiling
}

// Params returns the current steering parameters.
func (s *Simulation) Params() systems.SteerParams { return s.steer.Params }

// Recomputed returns how many agents were recomputed in the last tick.
func (s *Simulation) Recomputed() int { return s.recomputed }

// Stray returns how many agents are outside the octree root and so have no
// index entry.
func (s *Simulation) Stray() int { return s.pop.Len() - s.tree.Len() }

// Components returns copies of e's components.
func (s *Simulation) Components(e ecs.Entity) (components.Position, components.Heading, components.Motion, components.Slot, bool) {
	if !s.pop.Alive(e) {
		return components.Position{}, components.Heading{}, components.Motion{}, components.Slot{}, false
	}
	pos, head, motion, slot := s.pop.Get(e)
	return *pos, *head, *motion, *slot, true
}
