package systems

import (
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/shoal/config"
)

// NoiseTerrain is a procedural height field sampled on a square grid centered
// on the origin. Heights between grid points are bilinearly interpolated;
// positions beyond the grid edge are clamped to it.
type NoiseTerrain struct {
	noise      opensimplex.Noise
	cfg        config.TerrainConfig
	resolution int
	size       float64
	step       float64
	min        float64 // World coordinate of grid index 0 on both axes
	heights    []float64
}

// NewNoiseTerrain generates the height grid described by cfg.
func NewNoiseTerrain(cfg config.TerrainConfig) *NoiseTerrain {
	res := cfg.Resolution
	if res < 2 {
		res = 2
	}
	t := &NoiseTerrain{
		noise:      opensimplex.New(cfg.Seed),
		cfg:        cfg,
		resolution: res,
		size:       cfg.Size,
		step:       cfg.Size / float64(res-1),
		min:        -cfg.Size / 2,
		heights:    make([]float64, res*res),
	}

	for iz := 0; iz < res; iz++ {
		for ix := 0; ix < res; ix++ {
			x := t.min + float64(ix)*t.step
			z := t.min + float64(iz)*t.step
			t.heights[iz*res+ix] = cfg.Base + cfg.Amplitude*t.Noise(x, z)
		}
	}
	return t
}

// Noise returns fractal noise in [-1, 1] at a world position.
func (t *NoiseTerrain) Noise(x, z float64) float64 {
	freq := t.cfg.Scale
	if freq == 0 {
		freq = 1
	}
	amp := 1.0
	var sum, norm float64
	for o := 0; o < max(t.cfg.Octaves, 1); o++ {
		sum += amp * t.noise.Eval2(x*freq, z*freq)
		norm += amp
		freq *= t.cfg.Lacunarity
		amp *= t.cfg.Gain
		if amp == 0 {
			break
		}
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// SampleHeight returns the interpolated terrain height under (x, z).
func (t *NoiseTerrain) SampleHeight(x, z float64) float64 {
	fx := (x - t.min) / t.step
	fz := (z - t.min) / t.step
	last := float64(t.resolution - 1)
	fx = math.Max(0, math.Min(fx, last))
	fz = math.Max(0, math.Min(fz, last))

	ix := min(int(fx), t.resolution-2)
	iz := min(int(fz), t.resolution-2)
	tx := fx - float64(ix)
	tz := fz - float64(iz)

	h00 := t.at(ix, iz)
	h10 := t.at(ix+1, iz)
	h01 := t.at(ix, iz+1)
	h11 := t.at(ix+1, iz+1)

	top := h00 + (h10-h00)*tx
	bottom := h01 + (h11-h01)*tx
	return top + (bottom-top)*tz
}

func (t *NoiseTerrain) at(ix, iz int) float64 {
	return t.heights[iz*t.resolution+ix]
}

// Resolution returns the number of samples per edge.
func (t *NoiseTerrain) Resolution() int {
	return t.resolution
}

// Size returns the world edge length covered by the grid.
func (t *NoiseTerrain) Size() float64 {
	return t.size
}

// GridPoint returns the world position of grid sample (ix, iz).
func (t *NoiseTerrain) GridPoint(ix, iz int) (x, y, z float64) {
	return t.min + float64(ix)*t.step, t.at(ix, iz), t.min + float64(iz)*t.step
}
