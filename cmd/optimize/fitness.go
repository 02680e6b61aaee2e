package main

import (
	"io"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/flock"
	"github.com/pthm-cable/shoal/telemetry"
)

// Targets describes the school shape the optimizer aims for.
type Targets struct {
	Polarization float64 // Desired mean heading alignment in [0, 1]
	Spread       float64 // Desired mean distance to the centroid
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	targets     Targets
	logger      *slog.Logger

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 5.0,
		targets:     targets,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for a parameter vector (lower = better). Each seed
// runs in its own goroutine on its own simulation.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			qualities[i] = fe.computeQuality(fe.runSimulation(cfg, seed))
		}()
	}
	wg.Wait()

	quality := stat.Mean(qualities, nil)
	fe.mu.Lock()
	fe.lastQuality = quality
	fe.mu.Unlock()

	return -quality
}

// runSimulation executes a single headless run and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) []telemetry.WindowStats {
	sim := flock.New(cfg, flock.Options{Logger: fe.logger, Rand: rand.New(rand.NewSource(seed))})
	flock.NewScene(cfg, fe.logger).Apply(sim)

	collector := telemetry.NewCollector(fe.statsWindow, cfg.Physics.DT)
	collector.RecordSpawn(sim.SpawnTypes())

	var sample telemetry.Sample
	var windows []telemetry.WindowStats
	for tick := int32(1); tick <= fe.maxTicks; tick++ {
		sim.Tick(cfg.Physics.DT)
		collector.RecordRecompute(sim.Recomputed())
		if collector.ShouldFlush(tick) {
			sim.Sample(&sample)
			windows = append(windows, collector.Flush(tick, &sample))
		}
	}
	return windows
}

// copyConfig returns a copy of the base config whose scalar sections can be
// edited independently. Slices and boundary pointers are shared read-only.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// Quality component weights.
const (
	qualityWeightPolarization = 0.35
	qualityWeightCohesion     = 0.30
	qualityWeightContainment  = 0.20
	qualityWeightStability    = 0.15

	qualityWarmupWindows = 2 // skip first N windows while the school forms
)

// computeQuality scores school shape in [0, 1] from window stats.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var polSum, cohSum, breachSum float64
	spreads := make([]float64, 0, len(valid))
	for _, w := range valid {
		if w.Agents == 0 {
			continue
		}
		polSum += gaussian(w.Polarization, fe.targets.Polarization, 0.2)
		if fe.targets.Spread > 0 {
			cohSum += gaussian(w.SpreadMean/fe.targets.Spread, 1, 0.5)
		}
		breachSum += w.BreachFraction
		spreads = append(spreads, w.SpreadMean)
	}
	n := float64(len(spreads))
	if n == 0 {
		return 0
	}

	stability := 0.0
	if len(spreads) >= 2 {
		c := cv(spreads)
		stability = math.Exp(-c * c)
	}

	quality := qualityWeightPolarization*polSum/n +
		qualityWeightCohesion*cohSum/n +
		qualityWeightContainment*(1-breachSum/n) +
		qualityWeightStability*stability

	return clamp01(quality)
}

// gaussian scores x by its distance from target, 1 at the target.
func gaussian(x, target, width float64) float64 {
	d := (x - target) / width
	return math.Exp(-d * d)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
