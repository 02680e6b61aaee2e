package flock

import (
	"log/slog"
	"math"
)

// Scheduler spreads steering recomputation over the frames of an interval.
// Each pass walks the slot table from cursor 0 in chunks; once every slot is
// done the chunk size is recalibrated from how long the pass actually took,
// and the next pass waits until a full interval has elapsed since the last
// one started.
type Scheduler struct {
	interval   float64
	assumedFPS float64
	minFPS     float64
	logger     *slog.Logger

	intervalStart float64
	chunk         int
	chunkMax      int
	cursor        int
	finishedEarly bool

	calibrated bool
	population int

	lastPass float64
	passes   int
}

// NewScheduler creates an uncalibrated scheduler. It calibrates itself on
// the first Step with a non-empty population.
func NewScheduler(interval, assumedFPS, minFPS float64, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval:   interval,
		assumedFPS: assumedFPS,
		minFPS:     minFPS,
		logger:     logger,
	}
}

// Calibrate sets the initial chunk size from the assumed frame rate and the
// cap from the minimum acceptable frame rate.
func (s *Scheduler) Calibrate(n int) {
	s.calibrated = true
	s.population = n
	if s.interval <= 0 {
		s.chunk, s.chunkMax = n, n
		return
	}
	s.chunk = chunkFor(n, s.assumedFPS, s.interval)
	s.chunkMax = chunkFor(n, s.minFPS, s.interval)
	s.chunk = min(s.chunk, s.chunkMax)
}

func chunkFor(n int, fps, interval float64) int {
	if fps <= 0 {
		return max(n, 1)
	}
	return max(int(math.Ceil(float64(n)/(fps*interval))), 1)
}

// resize keeps the recalibrated chunk size but moves the cap with the
// population.
func (s *Scheduler) resize(n int) {
	s.population = n
	if s.interval <= 0 {
		s.chunk, s.chunkMax = n, n
		return
	}
	s.chunkMax = chunkFor(n, s.minFPS, s.interval)
	s.chunk = min(s.chunk, s.chunkMax)
}

// Step runs one frame of recomputation for a population of n agents at time
// now, calling fn for each slot whose steering is due. It returns the number
// of slots processed.
func (s *Scheduler) Step(now float64, n int, fn func(slot int)) int {
	if n == 0 {
		return 0
	}
	switch {
	case !s.calibrated:
		s.Calibrate(n)
		s.intervalStart = now
	case n != s.population:
		s.resize(n)
	}

	if s.interval <= 0 {
		for i := range n {
			fn(i)
		}
		s.intervalStart = now
		s.cursor = 0
		s.passes++
		return n
	}

	if s.cursor >= n {
		elapsed := now - s.intervalStart
		if !s.finishedEarly {
			s.finishedEarly = true
			s.recalibrate(elapsed)
		}
		if elapsed < s.interval {
			return 0
		}
		s.intervalStart = now
		s.cursor = 0
		s.finishedEarly = false
	}

	end := min(s.cursor+s.chunk, n)
	for i := s.cursor; i < end; i++ {
		fn(i)
	}
	done := end - s.cursor
	s.cursor = end
	return done
}

func (s *Scheduler) recalibrate(actual float64) {
	s.lastPass = actual
	s.passes++
	if actual <= 0 {
		return
	}
	old := s.chunk
	s.chunk = int(math.Ceil(actual / s.interval * float64(s.chunk)))
	s.chunk = max(min(s.chunk, s.chunkMax), 1)
	if s.chunk != old {
		s.logger.Debug("chunk_recalibrated",
			"pass_seconds", actual,
			"old", old,
			"new", s.chunk,
			"max", s.chunkMax,
		)
	}
}

// Removed must be called before slot is swap-removed from the table. When the
// slot was already processed this pass, it is first moved to the end of the
// processed range with swap and the cursor steps back, so the agent that
// later fills the hole is still pending. It returns the slot that should then
// be removed.
func (s *Scheduler) Removed(slot int, swap func(i, j int)) int {
	if slot >= s.cursor {
		return slot
	}
	last := s.cursor - 1
	if slot != last {
		swap(slot, last)
	}
	s.cursor--
	return last
}

// Interval returns the recomputation interval in seconds.
func (s *Scheduler) Interval() float64 { return s.interval }

// ChunkSize returns the number of agents recomputed per frame.
func (s *Scheduler) ChunkSize() int { return s.chunk }

// ChunkMax returns the cap on the chunk size.
func (s *Scheduler) ChunkMax() int { return s.chunkMax }

// Cursor returns the next slot to recompute.
func (s *Scheduler) Cursor() int { return s.cursor }

// IntervalStart returns when the current pass started.
func (s *Scheduler) IntervalStart() float64 { return s.intervalStart }

// FinishedEarly reports whether the current pass is done and waiting for the
// interval to elapse.
func (s *Scheduler) FinishedEarly() bool { return s.finishedEarly }

// LastPass returns the duration of the most recently completed pass.
func (s *Scheduler) LastPass() float64 { return s.lastPass }

// Passes returns the number of completed passes.
func (s *Scheduler) Passes() int { return s.passes }
