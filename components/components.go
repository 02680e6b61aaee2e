// Package components defines ECS components for flocking agents.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Position is an agent's world position.
type Position struct {
	r3.Vec `inspect:"vec,fmt:%.2f"`
}

// Heading holds the facing direction and the two endpoints it is interpolated
// between. Previous and Target are replaced each time the agent's steering is
// recomputed.
type Heading struct {
	Forward  r3.Vec `inspect:"vec,fmt:%.2f"`
	Previous r3.Vec `inspect:"skip"`
	Target   r3.Vec `inspect:"vec,fmt:%.2f"`
}

// Motion holds the fixed swim speed and the time the current target was set.
type Motion struct {
	Speed         float64 `inspect:"label,fmt:%.1f"`
	IntervalStart float64 `inspect:"label,fmt:%.2fs"`
}

// Slot links an entity to its dense slot in the population table.
type Slot struct {
	Index int   `inspect:"label"`
	Type  uint8 `inspect:"label"`
}
