package flock

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/systems"
)

// Scene holds the lures and boundaries built from config, plus the surfaces
// the viewers draw.
type Scene struct {
	Lures   []*systems.Lure
	Floor   *systems.BoundaryRule
	Ceiling *systems.BoundaryRule
	Terrain *systems.NoiseTerrain // Nil unless a boundary uses terrain or a mesh
	Mesh    *systems.Mesh         // Nil unless a boundary uses a mesh
}

// NewScene builds the scene described by cfg.
func NewScene(cfg *config.Config, logger *slog.Logger) *Scene {
	if logger == nil {
		logger = slog.Default()
	}
	sc := &Scene{}

	for _, lc := range cfg.Lures {
		settings := make([]systems.LureSetting, len(lc.Settings))
		for i, st := range lc.Settings {
			settings[i] = systems.LureSetting{Weight: st.Weight, Range: st.Range, Duration: st.Duration}
		}
		l := systems.NewLure(lc.Name, lc.Code, vec(lc.Position), settings...)
		l.Enabled = !lc.Disabled
		if lc.Drift != nil && len(lc.Drift.Waypoints) > 0 {
			points := make([]r3.Vec, len(lc.Drift.Waypoints))
			for i, p := range lc.Drift.Waypoints {
				points[i] = vec(p)
			}
			l.WithDrift(systems.NewWaypoints(points...), lc.Drift.RefreshInterval)
		}
		sc.Lures = append(sc.Lures, l)
	}

	sc.Floor = sc.boundary(cfg, cfg.Boundaries.Floor, "floor", logger)
	sc.Ceiling = sc.boundary(cfg, cfg.Boundaries.Ceiling, "ceiling", logger)
	return sc
}

func (sc *Scene) boundary(cfg *config.Config, bc *config.BoundaryConfig, which string, logger *slog.Logger) *systems.BoundaryRule {
	if bc == nil {
		return nil
	}
	r := &systems.BoundaryRule{Height: bc.Height, Padding: bc.Padding}
	if bc.Reference != "" {
		if l := sc.Lure(bc.Reference); l != nil {
			r.Reference = l
		} else {
			logger.Warn("boundary_reference_unknown", "rule", which, "reference", bc.Reference)
		}
	}
	if bc.Terrain {
		r.Terrain = sc.terrain(cfg)
	}
	if mc := bc.Mesh; mc != nil {
		if sc.Mesh == nil {
			t := sc.terrain(cfg)
			sc.Mesh = systems.GridMesh(mc.Size, mc.Cells, func(x, z float64) float64 {
				return mc.Base + mc.Amplitude*t.Noise(x, z)
			})
		}
		r.Mesh = sc.Mesh
	}
	return r
}

func (sc *Scene) terrain(cfg *config.Config) *systems.NoiseTerrain {
	if sc.Terrain == nil {
		sc.Terrain = systems.NewNoiseTerrain(cfg.Terrain)
	}
	return sc.Terrain
}

// Lure returns the lure with the given name, or nil.
func (sc *Scene) Lure(name string) *systems.Lure {
	for _, l := range sc.Lures {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Apply registers the scene's lures and boundaries with sim.
func (sc *Scene) Apply(sim *Simulation) {
	sim.ConfigureLures(sc.Lures)
	sim.ConfigureBoundaries(sc.Floor, sc.Ceiling)
}

func vec(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
}
