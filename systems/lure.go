package systems

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// WildcardCode matches every lure or school.
const WildcardCode = 0

// LureSetting is one step of a lure's cyclic schedule.
type LureSetting struct {
	Weight   float64 // Positive attracts, negative repels
	Range    float64 // 0 = unlimited
	Duration float64 // Seconds spent on this setting
}

// Lure is a point of attraction or repulsion whose weight and range follow a
// cyclic schedule.
type Lure struct {
	Name     string
	Code     int
	Position r3.Vec
	Enabled  bool

	settings []LureSetting
	index    int
	elapsed  float64
	drift    *Drift
}

// NewLure creates an enabled lure at pos.
func NewLure(name string, code int, pos r3.Vec, settings ...LureSetting) *Lure {
	return &Lure{
		Name:     name,
		Code:     code,
		Position: pos,
		Enabled:  true,
		settings: settings,
	}
}

// WithDrift makes the lure wander towards targets from src, picking a new one
// every refresh seconds.
func (l *Lure) WithDrift(src TargetSource, refresh float64) *Lure {
	l.drift = &Drift{
		Source:          src,
		RefreshInterval: refresh,
		previous:        l.Position,
		target:          l.Position,
	}
	return l
}

// Drift returns the attached drift, or nil.
func (l *Lure) Drift() *Drift {
	return l.drift
}

// Elapsed returns the seconds spent in the active setting.
func (l *Lure) Elapsed() float64 {
	return l.elapsed
}

// Resume makes setting i active with elapsed seconds already spent in it.
func (l *Lure) Resume(i int, elapsed float64) {
	l.SetIndex(i)
	l.elapsed = max(elapsed, 0)
}

// Settings returns the schedule.
func (l *Lure) Settings() []LureSetting {
	return l.settings
}

// Index returns the active schedule entry.
func (l *Lure) Index() int {
	return l.index
}

// SetIndex makes setting i active with a fresh window. Out of range values
// wrap.
func (l *Lure) SetIndex(i int) {
	if len(l.settings) == 0 {
		return
	}
	l.index = ((i % len(l.settings)) + len(l.settings)) % len(l.settings)
	l.elapsed = 0
}

// CurrentWeight returns the active setting's weight.
func (l *Lure) CurrentWeight() float64 {
	if len(l.settings) == 0 {
		return 0
	}
	return l.settings[l.index].Weight
}

// CurrentRange returns the active setting's range. 0 means unlimited.
func (l *Lure) CurrentRange() float64 {
	if len(l.settings) == 0 {
		return 0
	}
	return l.settings[l.index].Range
}

// Matches reports whether a school with the given code responds to this lure.
func (l *Lure) Matches(code int) bool {
	return code == WildcardCode || l.Code == WildcardCode || l.Code == code
}

// InRange reports whether p is within the active range of the lure.
func (l *Lure) InRange(p r3.Vec) bool {
	rng := l.CurrentRange()
	if rng == 0 {
		return true
	}
	return r3.Norm2(r3.Sub(l.Position, p)) < rng*rng
}

// InfluenceOn returns the weighted unit vector from p towards the lure, or
// zero when p is out of range or the lure is disabled.
func (l *Lure) InfluenceOn(p r3.Vec) r3.Vec {
	if !l.Enabled || len(l.settings) == 0 || !l.InRange(p) {
		return r3.Vec{}
	}
	return r3.Scale(l.CurrentWeight(), SafeUnit(r3.Sub(l.Position, p)))
}

// Height returns the lure's current height, so a lure can anchor a boundary.
func (l *Lure) Height() float64 {
	return l.Position.Y
}

// Advance moves the schedule and any drift forward by dt seconds. Once the
// active setting's duration is exceeded the next setting starts, counting the
// overshoot into the new window. A single-setting schedule never advances.
func (l *Lure) Advance(dt float64) {
	if l.drift != nil {
		l.Position = l.drift.advance(dt)
	}
	if len(l.settings) < 2 {
		return
	}
	l.elapsed += dt
	// Bounded so an all-zero schedule cannot spin forever
	for range len(l.settings) {
		d := l.settings[l.index].Duration
		if l.elapsed <= d {
			return
		}
		l.elapsed -= max(d, 0)
		l.index = (l.index + 1) % len(l.settings)
	}
	l.elapsed = 0
}

// TargetSource supplies positions for a drifting lure.
type TargetSource interface {
	NextTarget() r3.Vec
}

// Waypoints cycles through a fixed list of positions.
type Waypoints struct {
	points []r3.Vec
	next   int
}

// NewWaypoints creates a cyclic target source.
func NewWaypoints(points ...r3.Vec) *Waypoints {
	return &Waypoints{points: points}
}

// NextTarget returns the next waypoint, wrapping around.
func (w *Waypoints) NextTarget() r3.Vec {
	if len(w.points) == 0 {
		return r3.Vec{}
	}
	p := w.points[w.next]
	w.next = (w.next + 1) % len(w.points)
	return p
}

// Cursor returns the index of the waypoint NextTarget returns next.
func (w *Waypoints) Cursor() int {
	return w.next
}

// Seek makes waypoint i the next one returned. Out of range values wrap.
func (w *Waypoints) Seek(i int) {
	if n := len(w.points); n > 0 {
		w.next = ((i % n) + n) % n
	}
}

// Drift moves a lure smoothly between targets. Every RefreshInterval seconds
// the current target becomes the start point and a new target is drawn.
type Drift struct {
	Source          TargetSource
	RefreshInterval float64

	previous, target r3.Vec
	timer            float64
}

func (d *Drift) advance(dt float64) r3.Vec {
	if d.Source == nil || d.RefreshInterval <= 0 {
		return d.target
	}
	d.timer += dt
	if d.timer > d.RefreshInterval {
		d.previous = d.target
		d.target = d.Source.NextTarget()
		d.timer = 0
	}
	return Lerp(d.previous, d.target, d.timer/d.RefreshInterval)
}

// DriftState is the part of a Drift that changes as it advances.
type DriftState struct {
	Previous, Target r3.Vec
	Timer            float64
}

// State returns the current leg and how far along it the drift is.
func (d *Drift) State() DriftState {
	return DriftState{Previous: d.previous, Target: d.target, Timer: d.timer}
}

// Resume continues a leg captured with State.
func (d *Drift) Resume(st DriftState) {
	d.previous, d.target, d.timer = st.Previous, st.Target, st.Timer
}

// Target returns the position the lure is heading to.
func (d *Drift) Target() r3.Vec {
	return d.target
}
