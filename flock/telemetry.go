package flock

import (
	"fmt"

	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/telemetry"
)

// Sample fills dst with the current school state for a telemetry window.
func (s *Simulation) Sample(dst *telemetry.Sample) {
	dst.Reset()
	for i := range s.pop.Len() {
		e := s.pop.At(i)
		pos, head, motion, _ := s.pop.Get(e)
		dst.Positions = append(dst.Positions, pos.Vec)
		dst.Forwards = append(dst.Forwards, head.Forward)
		dst.Speeds = append(dst.Speeds, motion.Speed)
		if s.floor.IsViolated(pos.Vec) || s.ceiling.IsViolated(pos.Vec) {
			dst.OutOfBounds++
		}
	}

	dst.ChunkSize = s.sched.ChunkSize()
	dst.ChunkMax = s.sched.ChunkMax()
	dst.Passes = s.sched.Passes()
	dst.LastPassSec = s.sched.LastPass()

	st := s.tree.Stats()
	dst.OctreeNodes = st.Nodes
	dst.OctreeDepth = st.MaxDepth
	dst.Stray = s.Stray()
}

// Snapshot captures every agent and lure.
func (s *Simulation) Snapshot(tick int32, seed int64) *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RNGSeed:     seed,
		SchoolWidth: s.cfg.Flock.SchoolWidth,
		Tick:        tick,
		SimTime:     s.now,
		Agents:      make([]telemetry.AgentSnapshot, 0, s.pop.Len()),
	}
	for i := range s.pop.Len() {
		pos, head, motion, slot := s.pop.Get(s.pop.At(i))
		snap.Agents = append(snap.Agents, telemetry.AgentSnapshot{
			Type:          slot.Type,
			Position:      pos.Vec,
			Forward:       head.Forward,
			Previous:      head.Previous,
			Target:        head.Target,
			Speed:         motion.Speed,
			IntervalStart: motion.IntervalStart,
		})
	}
	for _, l := range s.lures {
		snap.Lures = append(snap.Lures, telemetry.LureSnapshot{
			Name:     l.Name,
			Position: l.Position,
			Index:    l.Index(),
			Elapsed:  l.Elapsed(),
			Weight:   l.CurrentWeight(),
			Enabled:  l.Enabled,
			Drift:    driftSnapshot(l.Drift()),
		})
	}
	return snap
}

func driftSnapshot(d *systems.Drift) *telemetry.DriftSnapshot {
	if d == nil {
		return nil
	}
	st := d.State()
	ds := &telemetry.DriftSnapshot{Previous: st.Previous, Target: st.Target, Timer: st.Timer}
	if wp, ok := d.Source.(*systems.Waypoints); ok {
		ds.Waypoint = wp.Cursor()
	}
	return ds
}

func resumeDrift(d *systems.Drift, ds *telemetry.DriftSnapshot) {
	if d == nil || ds == nil {
		return
	}
	d.Resume(systems.DriftState{Previous: ds.Previous, Target: ds.Target, Timer: ds.Timer})
	if wp, ok := d.Source.(*systems.Waypoints); ok {
		wp.Seek(ds.Waypoint)
	}
}

// Restore repopulates an empty simulation from snap. Lures are matched to
// the registered ones by name; unknown names are skipped.
func (s *Simulation) Restore(snap *telemetry.Snapshot) error {
	if s.pop.Len() > 0 {
		return fmt.Errorf("restore into non-empty simulation (%d agents)", s.pop.Len())
	}
	s.now = snap.SimTime
	for _, a := range snap.Agents {
		e := s.pop.Add(a.Position, a.Forward, a.Speed, a.IntervalStart, a.Type)
		_, head, _, _ := s.pop.Get(e)
		head.Previous = a.Previous
		head.Target = a.Target
		s.tree.Insert(e, systems.BoxAround(a.Position, s.agentHalf))
	}
	for _, ls := range snap.Lures {
		for _, l := range s.lures {
			if l.Name == ls.Name {
				l.Position = ls.Position
				l.Enabled = ls.Enabled
				l.Resume(ls.Index, ls.Elapsed)
				resumeDrift(l.Drift(), ls.Drift)
			}
		}
	}
	s.averageDue = true
	s.logger.Info("snapshot_restored", "agents", len(snap.Agents), "tick", snap.Tick, "sim_time", snap.SimTime)
	return nil
}
