package flock

import (
	"io"
	"log/slog"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerCalibration(t *testing.T) {
	s := NewScheduler(0.5, 30, 15, quietLogger())
	s.Calibrate(100)

	if s.ChunkSize() != 7 {
		t.Errorf("expected initial chunk 7, got %d", s.ChunkSize())
	}
	if s.ChunkMax() != 14 {
		t.Errorf("expected chunk max 14, got %d", s.ChunkMax())
	}
}

func TestSchedulerRecalibratesAfterFirstPass(t *testing.T) {
	s := NewScheduler(0.5, 30, 15, quietLogger())

	// 15 frames of 7 cover 100 agents; completion is seen on frame 16 at t=0.4
	dt := 0.4 / 15
	now := 0.0
	for frame := 0; frame < 15; frame++ {
		s.Step(now, 100, func(int) {})
		now += dt
	}
	if s.Cursor() != 100 {
		t.Fatalf("expected cursor at 100 after 15 frames, got %d", s.Cursor())
	}

	if n := s.Step(0.4, 100, func(int) {}); n != 0 {
		t.Errorf("expected no work while waiting for the interval, got %d", n)
	}
	if s.ChunkSize() != 6 {
		t.Errorf("expected recalibrated chunk 6, got %d", s.ChunkSize())
	}
	if !s.FinishedEarly() {
		t.Error("expected pass to be marked finished early")
	}

	// Recalibration happens once per pass
	s.Step(0.45, 100, func(int) {})
	if s.ChunkSize() != 6 {
		t.Errorf("chunk changed while waiting: %d", s.ChunkSize())
	}
}

func TestSchedulerChunkCappedAtMax(t *testing.T) {
	s := NewScheduler(0.5, 30, 15, quietLogger())
	s.Step(0, 100, func(int) {})

	// A very slow pass would ask for a huge chunk
	now := 0.0
	for s.Cursor() < 100 {
		now += 1
		s.Step(now, 100, func(int) {})
	}
	s.Step(now+1, 100, func(int) {})
	if s.ChunkSize() != s.ChunkMax() {
		t.Errorf("expected chunk capped at %d, got %d", s.ChunkMax(), s.ChunkSize())
	}
}

func TestSchedulerExactlyOncePerInterval(t *testing.T) {
	const n = 53
	s := NewScheduler(0.5, 30, 15, quietLogger())

	counts := make([]int, n)
	var starts []float64
	dt := 1.0 / 60
	now := 0.0

	for frame := 0; frame < 600; frame++ {
		var called []int
		s.Step(now, n, func(slot int) { called = append(called, slot) })

		// A pass always starts at slot 0
		if len(called) > 0 && called[0] == 0 {
			if len(starts) > 0 {
				for i, c := range counts {
					if c != 1 {
						t.Fatalf("pass %d: slot %d recomputed %d times", len(starts), i, c)
					}
				}
			}
			starts = append(starts, s.IntervalStart())
			clear(counts)
		}
		for _, slot := range called {
			counts[slot]++
		}
		now += dt
	}

	if len(starts) < 5 {
		t.Fatalf("expected several passes in 10s, got %d", len(starts))
	}
	for i := 1; i < len(starts); i++ {
		if gap := starts[i] - starts[i-1]; gap < 0.5-1e-9 {
			t.Errorf("pass %d started %.4fs after the previous one", i, gap)
		}
	}
}

func TestSchedulerCursorWaitsForInterval(t *testing.T) {
	s := NewScheduler(1, 30, 15, quietLogger())
	s.Calibrate(10)

	// Chunk is 1; finish the pass quickly
	now := 0.0
	for i := 0; i < 10; i++ {
		s.Step(now, 10, func(int) {})
		now += 0.01
	}
	if s.Cursor() != 10 {
		t.Fatalf("expected finished pass, got cursor %d", s.Cursor())
	}
	for now < 0.99 {
		s.Step(now, 10, func(int) {})
		if s.Cursor() != 10 {
			t.Fatalf("cursor reset at t=%v before interval elapsed", now)
		}
		now += 0.05
	}
	s.Step(1.0, 10, func(int) {})
	if s.Cursor() == 10 || s.IntervalStart() != 1.0 {
		t.Errorf("expected new pass at t=1, cursor=%d start=%v", s.Cursor(), s.IntervalStart())
	}
}

func TestSchedulerZeroInterval(t *testing.T) {
	s := NewScheduler(0, 30, 15, quietLogger())
	calls := 0
	for frame := 0; frame < 3; frame++ {
		if n := s.Step(float64(frame), 20, func(int) { calls++ }); n != 20 {
			t.Errorf("frame %d: expected 20 recomputed, got %d", frame, n)
		}
	}
	if calls != 60 {
		t.Errorf("expected every agent every frame, got %d calls", calls)
	}
	if s.ChunkSize() != 20 {
		t.Errorf("expected chunk = population, got %d", s.ChunkSize())
	}
}

func TestSchedulerEmptyPopulation(t *testing.T) {
	s := NewScheduler(0.5, 30, 15, quietLogger())
	for frame := 0; frame < 10; frame++ {
		if n := s.Step(float64(frame)*0.1, 0, func(int) { t.Fatal("called with empty population") }); n != 0 {
			t.Fatalf("expected no work, got %d", n)
		}
	}
	if s.ChunkSize() != 0 || s.Cursor() != 0 {
		t.Errorf("empty population should leave scheduler untouched")
	}
}

func TestSchedulerRemovedKeepsPendingSlots(t *testing.T) {
	// ids[slot] tracks which agent occupies each slot
	ids := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	swap := func(i, j int) { ids[i], ids[j] = ids[j], ids[i] }
	removeAt := func(i int) {
		last := len(ids) - 1
		swap(i, last)
		ids = ids[:last]
	}

	s := NewScheduler(1, 4, 2, quietLogger())
	s.Calibrate(len(ids))

	seen := map[int]int{}
	s.Step(0, len(ids), func(slot int) { seen[ids[slot]]++ })
	if s.Cursor() != 3 {
		t.Fatalf("expected chunk of 3, got cursor %d", s.Cursor())
	}

	// Remove an already processed agent: the last agent (9) must still be pending
	removeAt(s.Removed(1, swap))
	// Remove a pending agent
	removeAt(s.Removed(5, swap))

	now := 0.1
	for s.Cursor() < len(ids) {
		s.Step(now, len(ids), func(slot int) { seen[ids[slot]]++ })
		now += 0.1
	}

	for _, id := range ids {
		if seen[id] != 1 {
			t.Errorf("agent %d recomputed %d times", id, seen[id])
		}
	}
	if seen[1] != 1 {
		t.Errorf("removed agent 1 should have been processed once before removal")
	}
	if len(ids) != 8 {
		t.Errorf("expected 8 agents left, got %d", len(ids))
	}
}
