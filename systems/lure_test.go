package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func scheduleLure() *Lure {
	return NewLure("reef", 0, r3.Vec{},
		LureSetting{Weight: 1, Duration: 10},
		LureSetting{Weight: 0, Duration: 5},
		LureSetting{Weight: 0.1, Duration: 50},
	)
}

func TestLureSingleSettingNeverAdvances(t *testing.T) {
	l := NewLure("solo", 0, r3.Vec{}, LureSetting{Weight: 2, Duration: 1})
	for i := 0; i < 1000; i++ {
		l.Advance(0.5)
	}
	if l.Index() != 0 {
		t.Errorf("expected index 0, got %d", l.Index())
	}
	if l.CurrentWeight() != 2 {
		t.Errorf("expected weight 2, got %v", l.CurrentWeight())
	}
}

func TestLureCyclesBackToFirst(t *testing.T) {
	l := scheduleLure()

	const dt = 0.25
	var elapsed float64
	seen := map[int]bool{}
	// Sum of durations is 65s; one extra frame crosses the last boundary
	for elapsed <= 65 {
		l.Advance(dt)
		elapsed += dt
		seen[l.Index()] = true
		if elapsed > 60 && elapsed < 65 && l.Index() != 2 {
			t.Fatalf("t=%v: expected last setting, got %d", elapsed, l.Index())
		}
	}
	if l.Index() != 0 {
		t.Errorf("expected to wrap to setting 0 after 65s, got %d", l.Index())
	}
	for i := 0; i < 3; i++ {
		if !seen[i] {
			t.Errorf("setting %d was never active", i)
		}
	}
}

func TestLureScheduleAtTwelveSeconds(t *testing.T) {
	l := scheduleLure()
	for i := 0; i < 120; i++ {
		l.Advance(0.1)
	}

	if l.Index() != 1 {
		t.Fatalf("expected second setting at t=12, got %d", l.Index())
	}
	if l.CurrentWeight() != 0 {
		t.Errorf("expected weight 0, got %v", l.CurrentWeight())
	}
	if got := l.InfluenceOn(r3.Vec{X: 5}); !IsZero(got) {
		t.Errorf("expected zero influence, got %v", got)
	}
	// 2s into the 5s window
	if math.Abs(l.elapsed-2) > 1e-6 {
		t.Errorf("expected 2s elapsed in window, got %v", l.elapsed)
	}
}

func TestLureLargeStepCrossesSeveralWindows(t *testing.T) {
	l := scheduleLure()
	l.Advance(16)
	if l.Index() != 2 {
		t.Errorf("expected third setting after 16s, got %d", l.Index())
	}
}

func TestLureZeroDurationsTerminate(t *testing.T) {
	l := NewLure("spin", 0, r3.Vec{}, LureSetting{Weight: 1}, LureSetting{Weight: 2})
	l.Advance(1)
	l.Advance(1)
	// Just needs to return
	if l.Index() < 0 || l.Index() > 1 {
		t.Errorf("index out of range: %d", l.Index())
	}
}

func TestLureInfluence(t *testing.T) {
	l := NewLure("bait", 0, r3.Vec{X: 10}, LureSetting{Weight: 3, Range: 5, Duration: 1})

	got := l.InfluenceOn(r3.Vec{X: 7})
	want := r3.Vec{X: 3}
	if r3.Norm(r3.Sub(got, want)) > 1e-12 {
		t.Errorf("in range: got %v, want %v", got, want)
	}

	// Exactly at the range is out of range
	if got := l.InfluenceOn(r3.Vec{X: 5}); !IsZero(got) {
		t.Errorf("at range edge: expected zero, got %v", got)
	}
	if got := l.InfluenceOn(r3.Vec{X: -100}); !IsZero(got) {
		t.Errorf("far away: expected zero, got %v", got)
	}

	// On top of the lure there is no direction
	if got := l.InfluenceOn(r3.Vec{X: 10}); !IsZero(got) {
		t.Errorf("at lure: expected zero, got %v", got)
	}

	l.Enabled = false
	if got := l.InfluenceOn(r3.Vec{X: 7}); !IsZero(got) {
		t.Errorf("disabled: expected zero, got %v", got)
	}
}

func TestLureUnlimitedRangeAndRepulsion(t *testing.T) {
	l := NewLure("shark", 0, r3.Vec{}, LureSetting{Weight: -2, Range: 0, Duration: 1})
	got := l.InfluenceOn(r3.Vec{Z: 1000})
	want := r3.Vec{Z: 2}
	if r3.Norm(r3.Sub(got, want)) > 1e-12 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLureEmptySchedule(t *testing.T) {
	l := NewLure("empty", 0, r3.Vec{})
	l.Advance(10)
	if l.CurrentWeight() != 0 || l.CurrentRange() != 0 {
		t.Error("empty schedule should read as zero")
	}
	if !IsZero(l.InfluenceOn(r3.Vec{X: 1})) {
		t.Error("empty schedule should have no influence")
	}
}

func TestLureMatches(t *testing.T) {
	tests := []struct {
		lure, school int
		want         bool
	}{
		{0, 0, true},
		{0, 3, true},
		{3, 0, true},
		{3, 3, true},
		{3, 4, false},
	}
	for _, tt := range tests {
		l := NewLure("", tt.lure, r3.Vec{})
		if got := l.Matches(tt.school); got != tt.want {
			t.Errorf("lure %d school %d: got %v, want %v", tt.lure, tt.school, got, tt.want)
		}
	}
}

func TestLureDrift(t *testing.T) {
	l := NewLure("roamer", 0, r3.Vec{}, LureSetting{Weight: 1, Duration: 1}).
		WithDrift(NewWaypoints(r3.Vec{X: 10}, r3.Vec{Z: 10}), 2)

	// First refresh picks the first waypoint and restarts the lerp
	l.Advance(2.5)
	if !IsZero(l.Position) {
		t.Fatalf("expected lerp to restart at origin, got %v", l.Position)
	}
	if l.Drift().Target() != (r3.Vec{X: 10}) {
		t.Fatalf("unexpected target %v", l.Drift().Target())
	}

	l.Advance(1)
	if math.Abs(l.Position.X-5) > 1e-12 {
		t.Errorf("expected halfway to target, got %v", l.Position)
	}
	if l.Height() != l.Position.Y {
		t.Error("height should follow position")
	}

	l.Advance(1.5)
	if l.Drift().Target() != (r3.Vec{Z: 10}) {
		t.Errorf("expected second waypoint, got %v", l.Drift().Target())
	}
}

func TestLureResume(t *testing.T) {
	l := NewLure("", 0, r3.Vec{},
		LureSetting{Weight: 1, Duration: 5},
		LureSetting{Weight: 2, Duration: 5},
	)
	l.Resume(1, 4)
	if l.Index() != 1 || l.Elapsed() != 4 {
		t.Fatalf("resume: index %d elapsed %v", l.Index(), l.Elapsed())
	}
	l.Advance(2)
	if l.Index() != 0 || l.Elapsed() != 1 {
		t.Errorf("expected wrap 1s into first setting, got index %d elapsed %v", l.Index(), l.Elapsed())
	}
}

func TestDriftResume(t *testing.T) {
	route := []r3.Vec{{X: 10}, {Z: 10}, {Y: 4}}
	a := NewLure("a", 0, r3.Vec{}).WithDrift(NewWaypoints(route...), 2)
	a.Advance(2.5)
	a.Advance(1)

	b := NewLure("b", 0, r3.Vec{}).WithDrift(NewWaypoints(route...), 2)
	b.Drift().Resume(a.Drift().State())
	b.Drift().Source.(*Waypoints).Seek(a.Drift().Source.(*Waypoints).Cursor())

	for range 5 {
		a.Advance(0.7)
		b.Advance(0.7)
		if a.Position != b.Position {
			t.Fatalf("resumed drift at %v, original at %v", b.Position, a.Position)
		}
	}
}
