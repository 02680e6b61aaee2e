// Package telemetry provides school statistics, bookmarking, snapshots and
// performance tracking.
package telemetry

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Agents int `csv:"agents"`

	// Events during window
	Spawned    int `csv:"spawned"`
	Removed    int `csv:"removed"`
	Recomputed int `csv:"recomputed"`
	Passes     int `csv:"passes"`

	// Shape of the school (sampled at window end)
	Polarization float64 `csv:"polarization"` // |mean heading|, 1 = all aligned
	SpreadMean   float64 `csv:"spread_mean"`  // Mean distance to centroid
	SpreadP90    float64 `csv:"spread_p90"`
	DepthMean    float64 `csv:"depth_mean"`
	DepthStd     float64 `csv:"depth_std"`
	SpeedMean    float64 `csv:"speed_mean"`

	// Boundaries
	OutOfBounds    int     `csv:"out_of_bounds"`
	BreachFraction float64 `csv:"breach_fraction"`

	// Scheduler and index
	ChunkSize   int     `csv:"chunk_size"`
	ChunkMax    int     `csv:"chunk_max"`
	LastPassSec float64 `csv:"last_pass_sec"`
	OctreeNodes int     `csv:"octree_nodes"`
	OctreeDepth int     `csv:"octree_depth"`
	Stray       int     `csv:"stray"`
}

// Shape summarizes where the school is and how it is oriented.
type Shape struct {
	Centroid     r3.Vec
	Polarization float64
	SpreadMean   float64
	SpreadP90    float64
	DepthMean    float64
	DepthStd     float64
	SpeedMean    float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeShape calculates school shape statistics. forwards are expected to
// be unit vectors; speeds may be nil.
func ComputeShape(positions, forwards []r3.Vec, speeds []float64) Shape {
	n := len(positions)
	if n == 0 {
		return Shape{}
	}

	var sum r3.Vec
	depths := make([]float64, n)
	for i, p := range positions {
		sum = r3.Add(sum, p)
		depths[i] = p.Y
	}
	centroid := r3.Scale(1/float64(n), sum)

	dists := make([]float64, n)
	for i, p := range positions {
		dists[i] = r3.Norm(r3.Sub(p, centroid))
	}
	sort.Float64s(dists)

	var heading r3.Vec
	for _, f := range forwards {
		heading = r3.Add(heading, f)
	}
	var polarization float64
	if len(forwards) > 0 {
		polarization = r3.Norm(heading) / float64(len(forwards))
	}

	depthMean, depthStd := stat.MeanStdDev(depths, nil)
	if n < 2 {
		depthStd = 0
	}

	var speedMean float64
	if len(speeds) > 0 {
		speedMean = stat.Mean(speeds, nil)
	}

	return Shape{
		Centroid:     centroid,
		Polarization: math.Min(polarization, 1),
		SpreadMean:   stat.Mean(dists, nil),
		SpreadP90:    Percentile(dists, 0.90),
		DepthMean:    depthMean,
		DepthStd:     depthStd,
		SpeedMean:    speedMean,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("spawned", s.Spawned),
		slog.Int("removed", s.Removed),
		slog.Int("recomputed", s.Recomputed),
		slog.Int("passes", s.Passes),
		slog.Float64("polarization", s.Polarization),
		slog.Float64("spread_mean", s.SpreadMean),
		slog.Float64("spread_p90", s.SpreadP90),
		slog.Float64("depth_mean", s.DepthMean),
		slog.Float64("depth_std", s.DepthStd),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Int("out_of_bounds", s.OutOfBounds),
		slog.Float64("breach_fraction", s.BreachFraction),
		slog.Int("chunk_size", s.ChunkSize),
		slog.Int("chunk_max", s.ChunkMax),
		slog.Float64("last_pass_sec", s.LastPassSec),
		slog.Int("octree_nodes", s.OctreeNodes),
		slog.Int("octree_depth", s.OctreeDepth),
		slog.Int("stray", s.Stray),
	)
}

// Log writes the window summary to logger at info level.
func (s WindowStats) Log(logger *slog.Logger) {
	logger.LogAttrs(context.Background(), slog.LevelInfo, "stats", s.LogValue().Group()...)
}
