package main

import (
	"github.com/pthm-cable/shoal/config"
)

// ParamSpec is one tunable config value and its search bounds.
type ParamSpec struct {
	Name    string
	Path    string // Dotted YAML path, for reports
	Min     float64
	Max     float64
	Default float64

	field func(*config.Config) *float64
}

func (s ParamSpec) normalize(v float64) float64   { return (v - s.Min) / (s.Max - s.Min) }
func (s ParamSpec) denormalize(u float64) float64 { return s.Min + u*(s.Max-s.Min) }
func (s ParamSpec) clamp(v float64) float64       { return min(max(v, s.Min), s.Max) }

// weightParam and flockParam build specs for the two config sections the
// optimizer searches.
func weightParam(name string, lo, hi, def float64, f func(*config.WeightsConfig) *float64) ParamSpec {
	return ParamSpec{Name: name, Path: "weights." + name, Min: lo, Max: hi, Default: def,
		field: func(c *config.Config) *float64 { return f(&c.Weights) }}
}

func flockParam(name string, lo, hi, def float64, f func(*config.FlockConfig) *float64) ParamSpec {
	return ParamSpec{Name: name, Path: "flock." + name, Min: lo, Max: hi, Default: def,
		field: func(c *config.Config) *float64 { return f(&c.Flock) }}
}

// ParamVector is the ordered set of searched parameters. Vectors passed to
// its methods are indexed like Specs.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the four steering weights and the repulsion and
// orientation radii.
func NewParamVector() *ParamVector {
	return &ParamVector{Specs: []ParamSpec{
		weightParam("self", 0.5, 10, 5, func(w *config.WeightsConfig) *float64 { return &w.Self }),
		weightParam("repulsion", 0, 6, 1.5, func(w *config.WeightsConfig) *float64 { return &w.Repulsion }),
		weightParam("orientation", 0, 6, 1, func(w *config.WeightsConfig) *float64 { return &w.Orientation }),
		weightParam("attraction", 0, 6, 1.5, func(w *config.WeightsConfig) *float64 { return &w.Attraction }),
		flockParam("radius_of_repulsion", 0.5, 4, 1.5, func(f *config.FlockConfig) *float64 { return &f.RadiusOfRepulsion }),
		flockParam("radius_of_orientation", 2, 15, 6, func(f *config.FlockConfig) *float64 { return &f.RadiusOfOrientation }),
	}}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

func (pv *ParamVector) each(f func(i int, s ParamSpec) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = f(i, s)
	}
	return out
}

// DefaultVector returns every spec's default.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.each(func(_ int, s ParamSpec) float64 { return s.Default })
}

// Normalize maps raw values onto [0, 1] per their bounds.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return s.normalize(raw[i]) })
}

// Denormalize inverts Normalize. Values outside [0, 1] map outside the
// bounds.
func (pv *ParamVector) Denormalize(u []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return s.denormalize(u[i]) })
}

// Clamp limits every value to its bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.each(func(i int, s ParamSpec) float64 { return s.clamp(v[i]) })
}

// ApplyToConfig writes the clamped values into cfg and recomputes its
// derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = v
	}
	cfg.Refresh()
}

// ExtractFromConfig reads the current values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return pv.each(func(_ int, s ParamSpec) float64 { return *s.field(cfg) })
}
