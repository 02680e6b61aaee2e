package telemetry

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// Phases of one simulation tick.
const (
	PhaseLures     = "lures"
	PhaseMotion    = "motion"
	PhaseAverage   = "average"
	PhaseRecompute = "recompute"
	PhaseTelemetry = "telemetry"
)

// Phases lists the tick phases in execution order.
var Phases = []string{PhaseLures, PhaseMotion, PhaseAverage, PhaseRecompute, PhaseTelemetry}

type tickSample struct {
	total  time.Duration
	phases map[string]time.Duration
}

// PerfCollector times ticks and their phases over the last N ticks.
// Phases are contiguous: starting one ends the previous.
type PerfCollector struct {
	now func() time.Time

	ring  []tickSample
	next  int
	count int

	tickStart  time.Time
	phase      string
	phaseStart time.Time
	current    map[string]time.Duration

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector averages over the last window ticks; values below 1 mean
// 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{now: time.Now, ring: make([]tickSample, window)}
}

// StartTick begins a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.phase = ""
	p.current = make(map[string]time.Duration, len(Phases))
}

// StartPhase closes the running phase, if any, and opens name.
func (p *PerfCollector) StartPhase(name string) {
	t := p.now()
	p.closePhase(t)
	p.phase, p.phaseStart = name, t
}

func (p *PerfCollector) closePhase(t time.Time) {
	if p.phase != "" {
		p.current[p.phase] += t.Sub(p.phaseStart)
	}
}

// EndTick closes the running phase and stores the tick.
func (p *PerfCollector) EndTick() {
	t := p.now()
	p.closePhase(t)
	p.phase = ""
	p.ring[p.next] = tickSample{total: t.Sub(p.tickStart), phases: p.current}
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// RecordFrame marks a rendered frame; the gap since the previous one sets
// FPS.
func (p *PerfCollector) RecordFrame() {
	t := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = t.Sub(p.lastFrame)
	}
	p.lastFrame = t
}

// PerfStats summarizes the collector's window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // Share of the average tick, 0-100

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats summarizes the stored ticks. The maps are never nil.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	samples := p.ring[:p.count]
	var total time.Duration
	s.MinTickDuration = samples[0].total
	for _, t := range samples {
		total += t.total
		s.MinTickDuration = min(s.MinTickDuration, t.total)
		s.MaxTickDuration = max(s.MaxTickDuration, t.total)
		for name, d := range t.phases {
			s.PhaseAvg[name] += d
		}
	}

	n := time.Duration(p.count)
	s.AvgTickDuration = total / n
	for name := range s.PhaseAvg {
		s.PhaseAvg[name] /= n
		if s.AvgTickDuration > 0 {
			s.PhasePct[name] = 100 * float64(s.PhaseAvg[name]) / float64(s.AvgTickDuration)
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// LogValue groups the summary for structured logging. Phases are emitted in
// a stable order.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, name := range slices.Sorted(maps.Keys(s.PhasePct)) {
		if pct := s.PhasePct[name]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(name+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// Log writes the summary to logger at info level.
func (s PerfStats) Log(logger *slog.Logger) {
	logger.LogAttrs(context.Background(), slog.LevelInfo, "perf", s.LogValue().Group()...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	LuresPct     float64 `csv:"lures_pct"`
	MotionPct    float64 `csv:"motion_pct"`
	AveragePct   float64 `csv:"average_pct"`
	RecomputePct float64 `csv:"recompute_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		LuresPct:     s.PhasePct[PhaseLures],
		MotionPct:    s.PhasePct[PhaseMotion],
		AveragePct:   s.PhasePct[PhaseAverage],
		RecomputePct: s.PhasePct[PhaseRecompute],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
