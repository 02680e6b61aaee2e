// Package flock owns the agent population and drives the amortized steering
// schedule.
package flock

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/components"
)

// Population stores agents as ECS entities plus a dense slot table. Slot order
// is what the scheduler walks; removal swaps the last slot into the hole.
type Population struct {
	world  *ecs.World
	mapper *ecs.Map4[
		components.Position,
		components.Heading,
		components.Motion,
		components.Slot,
	]
	posMap  *ecs.Map1[components.Position]
	headMap *ecs.Map1[components.Heading]
	slotMap *ecs.Map1[components.Slot]

	slots []ecs.Entity
}

// NewPopulation creates an empty population in its own world.
func NewPopulation() *Population {
	world := ecs.NewWorld()
	return &Population{
		world: world,
		mapper: ecs.NewMap4[
			components.Position,
			components.Heading,
			components.Motion,
			components.Slot,
		](world),
		posMap:  ecs.NewMap1[components.Position](world),
		headMap: ecs.NewMap1[components.Heading](world),
		slotMap: ecs.NewMap1[components.Slot](world),
	}
}

// Add appends an agent facing forward and returns its handle.
func (p *Population) Add(pos, forward r3.Vec, speed, intervalStart float64, typ uint8) ecs.Entity {
	position := components.Position{Vec: pos}
	heading := components.Heading{Forward: forward, Previous: forward, Target: forward}
	motion := components.Motion{Speed: speed, IntervalStart: intervalStart}
	slot := components.Slot{Index: len(p.slots), Type: typ}

	e := p.mapper.NewEntity(&position, &heading, &motion, &slot)
	p.slots = append(p.slots, e)
	return e
}

// Len returns the number of live agents.
func (p *Population) Len() int {
	return len(p.slots)
}

// At returns the agent in slot i.
func (p *Population) At(i int) ecs.Entity {
	return p.slots[i]
}

// Entities copies the slot table into dst, reusing its storage.
func (p *Population) Entities(dst []ecs.Entity) []ecs.Entity {
	return append(dst[:0], p.slots...)
}

// Alive reports whether e is a live agent of this population.
func (p *Population) Alive(e ecs.Entity) bool {
	return !e.IsZero() && p.world.Alive(e)
}

// Get returns the components of e. e must be alive.
func (p *Population) Get(e ecs.Entity) (*components.Position, *components.Heading, *components.Motion, *components.Slot) {
	return p.mapper.Get(e)
}

// SlotOf returns the slot index of e.
func (p *Population) SlotOf(e ecs.Entity) (int, bool) {
	if !p.Alive(e) {
		return 0, false
	}
	return p.slotMap.Get(e).Index, true
}

// Swap exchanges the agents in slots i and j.
func (p *Population) Swap(i, j int) {
	if i == j {
		return
	}
	p.slots[i], p.slots[j] = p.slots[j], p.slots[i]
	p.slotMap.Get(p.slots[i]).Index = i
	p.slotMap.Get(p.slots[j]).Index = j
}

// RemoveAt deletes the agent in slot i, moving the last agent into its place.
func (p *Population) RemoveAt(i int) ecs.Entity {
	last := len(p.slots) - 1
	p.Swap(i, last)
	e := p.slots[last]
	p.slots = p.slots[:last]
	p.world.RemoveEntity(e)
	return e
}

// Position returns the current position of e.
func (p *Population) Position(e ecs.Entity) r3.Vec {
	return p.posMap.Get(e).Vec
}

// Forward returns the current facing direction of e.
func (p *Population) Forward(e ecs.Entity) r3.Vec {
	return p.headMap.Get(e).Forward
}
