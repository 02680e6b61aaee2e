package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/shoal/config"
)

func TestParamVectorDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Defaults())
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: config default %v, spec default %v", spec.Name, got[i], spec.Default)
		}
	}
}

func TestParamVectorNormalize(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestParamVectorApplyClampsAndDerives(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()

	values := pv.DefaultVector()
	values[0] = 100 // self above max
	values[5] = 12  // radius_of_orientation
	pv.ApplyToConfig(cfg, values)

	if cfg.Weights.Self != pv.Specs[0].Max {
		t.Errorf("expected self clamped to %v, got %v", pv.Specs[0].Max, cfg.Weights.Self)
	}
	if cfg.Flock.RadiusOfOrientation != 12 {
		t.Errorf("expected orientation radius 12, got %v", cfg.Flock.RadiusOfOrientation)
	}
	if cfg.Derived.QueryRadius != 12 {
		t.Errorf("expected derived query radius 12, got %v", cfg.Derived.QueryRadius)
	}
}
