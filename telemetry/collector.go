package telemetry

import "gonum.org/v1/gonum/spatial/r3"

// Sample is the school state handed to the collector at the end of a window.
type Sample struct {
	Positions   []r3.Vec
	Forwards    []r3.Vec
	Speeds      []float64
	OutOfBounds int

	ChunkSize   int
	ChunkMax    int
	Passes      int // Completed passes so far
	LastPassSec float64

	OctreeNodes int
	OctreeDepth int
	Stray       int
}

// Reset empties the sample's slices, keeping their capacity.
func (s *Sample) Reset() {
	*s = Sample{
		Positions: s.Positions[:0],
		Forwards:  s.Forwards[:0],
		Speeds:    s.Speeds[:0],
	}
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32
	passesAtStart   int

	// Event counters for current window
	spawned    int
	removed    int
	recomputed int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSpawn records n spawned agents.
func (c *Collector) RecordSpawn(n int) {
	c.spawned += n
}

// RecordRemoval records a removed agent.
func (c *Collector) RecordRemoval() {
	c.removed++
}

// RecordRecompute records n steering recomputations.
func (c *Collector) RecordRecompute(n int) {
	c.recomputed += n
}

// StartAt moves the start of the current window to tick, for runs resumed
// from a snapshot.
func (c *Collector) StartAt(tick int32) {
	c.windowStartTick = tick
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s *Sample) WindowStats {
	shape := ComputeShape(s.Positions, s.Forwards, s.Speeds)

	var breach float64
	if n := len(s.Positions); n > 0 {
		breach = float64(s.OutOfBounds) / float64(n)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Agents: len(s.Positions),

		Spawned:    c.spawned,
		Removed:    c.removed,
		Recomputed: c.recomputed,
		Passes:     s.Passes - c.passesAtStart,

		Polarization: shape.Polarization,
		SpreadMean:   shape.SpreadMean,
		SpreadP90:    shape.SpreadP90,
		DepthMean:    shape.DepthMean,
		DepthStd:     shape.DepthStd,
		SpeedMean:    shape.SpeedMean,

		OutOfBounds:    s.OutOfBounds,
		BreachFraction: breach,

		ChunkSize:   s.ChunkSize,
		ChunkMax:    s.ChunkMax,
		LastPassSec: s.LastPassSec,
		OctreeNodes: s.OctreeNodes,
		OctreeDepth: s.OctreeDepth,
		Stray:       s.Stray,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.passesAtStart = s.Passes
	c.spawned = 0
	c.removed = 0
	c.recomputed = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
