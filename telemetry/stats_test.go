package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeShapeAligned(t *testing.T) {
	positions := []r3.Vec{{X: -1, Y: -2}, {X: 1, Y: 2}, {X: 0, Y: 0}}
	forwards := []r3.Vec{{Z: 1}, {Z: 1}, {Z: 1}}
	speeds := []float64{2, 4, 6}

	s := ComputeShape(positions, forwards, speeds)

	if s.Centroid != (r3.Vec{}) {
		t.Errorf("centroid = %v, want origin", s.Centroid)
	}
	if math.Abs(s.Polarization-1) > 1e-9 {
		t.Errorf("polarization = %v, want 1", s.Polarization)
	}
	if math.Abs(s.SpeedMean-4) > 1e-9 {
		t.Errorf("speed mean = %v, want 4", s.SpeedMean)
	}
	if math.Abs(s.DepthMean) > 1e-9 || math.Abs(s.DepthStd-2) > 1e-9 {
		t.Errorf("depth = %v +- %v, want 0 +- 2", s.DepthMean, s.DepthStd)
	}
	wantSpread := 2 * math.Sqrt(5) / 3
	if math.Abs(s.SpreadMean-wantSpread) > 1e-9 {
		t.Errorf("spread mean = %v, want %v", s.SpreadMean, wantSpread)
	}
	if s.SpreadP90 < s.SpreadMean {
		t.Errorf("p90 spread %v below mean %v", s.SpreadP90, s.SpreadMean)
	}
}

func TestComputeShapeOpposed(t *testing.T) {
	s := ComputeShape(
		[]r3.Vec{{}, {X: 1}},
		[]r3.Vec{{X: 1}, {X: -1}},
		[]float64{1, 1},
	)
	if s.Polarization > 1e-9 {
		t.Errorf("opposed headings should cancel, got %v", s.Polarization)
	}
}

func TestComputeShapeEdgeCases(t *testing.T) {
	if s := ComputeShape(nil, nil, nil); s != (Shape{}) {
		t.Errorf("empty input should give zero shape, got %+v", s)
	}
	s := ComputeShape([]r3.Vec{{Y: 3}}, []r3.Vec{{Z: 1}}, []float64{2})
	if s.DepthStd != 0 || s.DepthMean != 3 {
		t.Errorf("single agent: depth %v +- %v", s.DepthMean, s.DepthStd)
	}
}
