// Package camera provides an orbit camera for viewing the school in 3D.
package camera

import (
	"iter"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Near is the closest depth that projects onto the screen.
const Near = 0.1

// maxPitch keeps the camera off the poles where the up vector degenerates.
const maxPitch = 1.5

var worldUp = r3.Vec{Y: 1}

// Camera orbits a target point at a distance.
type Camera struct {
	// Target is the point the camera looks at and orbits around
	Target r3.Vec

	// Orbit angles in radians. Yaw 0 looks along -Z from +Z.
	Yaw, Pitch float64

	// Distance from the target
	Distance float64

	// Vertical field of view in degrees
	FOV float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinDistance, MaxDistance float64

	home *Camera // Restored by Reset
}

// New creates a camera framing a school of the given width around the origin.
func New(viewportW, viewportH, schoolWidth float64) *Camera {
	if schoolWidth <= 0 {
		schoolWidth = 1
	}
	c := &Camera{
		Yaw:         math.Pi / 4,
		Pitch:       0.35,
		Distance:    schoolWidth * 1.6,
		FOV:         45,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: 1,
		MaxDistance: schoolWidth * 10,
	}
	home := *c
	c.home = &home
	return c
}

// Position returns the camera's location in world coordinates.
func (c *Camera) Position() r3.Vec {
	cp := math.Cos(c.Pitch)
	offset := r3.Vec{
		X: c.Distance * cp * math.Sin(c.Yaw),
		Y: c.Distance * math.Sin(c.Pitch),
		Z: c.Distance * cp * math.Cos(c.Yaw),
	}
	return r3.Add(c.Target, offset)
}

// Basis returns the camera's forward, right and up unit vectors.
func (c *Camera) Basis() (forward, right, up r3.Vec) {
	forward = r3.Unit(r3.Sub(c.Target, c.Position()))
	right = r3.Unit(r3.Cross(forward, worldUp))
	up = r3.Cross(right, forward)
	return forward, right, up
}

// focal returns the distance in pixels from the eye to the image plane.
func (c *Camera) focal() float64 {
	return (c.ViewportH / 2) / math.Tan(c.FOV*math.Pi/360)
}

// WorldToScreen projects p onto the screen. ok is false when p is behind
// the near plane.
func (c *Camera) WorldToScreen(p r3.Vec) (sx, sy float64, ok bool) {
	forward, right, up := c.Basis()
	v := r3.Sub(p, c.Position())
	z := r3.Dot(v, forward)
	if z < Near {
		return 0, 0, false
	}
	f := c.focal()
	sx = c.ViewportW/2 + r3.Dot(v, right)/z*f
	sy = c.ViewportH/2 - r3.Dot(v, up)/z*f
	return sx, sy, true
}

// ScreenRay returns the ray from the eye through screen point (sx, sy).
// dir is a unit vector.
func (c *Camera) ScreenRay(sx, sy float64) (origin, dir r3.Vec) {
	forward, right, up := c.Basis()
	f := c.focal()
	d := r3.Add(forward, r3.Add(
		r3.Scale((sx-c.ViewportW/2)/f, right),
		r3.Scale(-(sy-c.ViewportH/2)/f, up),
	))
	return c.Position(), r3.Unit(d)
}

// RayDistance returns how far p lies from the ray and how far along the ray
// its closest point is. Points behind the origin measure from the origin.
func RayDistance(origin, dir, p r3.Vec) (dist, along float64) {
	v := r3.Sub(p, origin)
	along = r3.Dot(v, dir)
	if along < 0 {
		return r3.Norm(v), along
	}
	return r3.Norm(r3.Sub(v, r3.Scale(along, dir))), along
}

// IsVisible returns true if a sphere at p with the given radius could be on
// screen (conservative check for culling).
func (c *Camera) IsVisible(p r3.Vec, radius float64) bool {
	forward, right, up := c.Basis()
	v := r3.Sub(p, c.Position())
	z := r3.Dot(v, forward)
	if z < Near-radius {
		return false
	}
	f := c.focal()
	halfW := max(z, Near)*(c.ViewportW/2)/f + radius
	halfH := max(z, Near)*(c.ViewportH/2)/f + radius
	return math.Abs(r3.Dot(v, right)) <= halfW && math.Abs(r3.Dot(v, up)) <= halfH
}

// Orbit rotates the camera around the target by the given angles in radians.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// Pan moves the target by the given delta in screen pixels, measured at the
// target's depth.
func (c *Camera) Pan(dx, dy float64) {
	_, right, up := c.Basis()
	scale := c.Distance / c.focal()
	c.Target = r3.Add(c.Target, r3.Add(
		r3.Scale(-dx*scale, right),
		r3.Scale(dy*scale, up),
	))
}

// ZoomBy divides the distance by factor, so factors above 1 move closer.
func (c *Camera) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.Distance = clamp(c.Distance/factor, c.MinDistance, c.MaxDistance)
}

// Follow moves the target a fraction t of the way towards p.
func (c *Camera) Follow(p r3.Vec, t float64) {
	t = clamp(t, 0, 1)
	c.Target = r3.Add(c.Target, r3.Scale(t, r3.Sub(p, c.Target)))
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Reset returns the camera to its initial orbit, keeping the viewport.
func (c *Camera) Reset() {
	w, h := c.ViewportW, c.ViewportH
	home := c.home
	*c = *home
	c.home = home
	c.ViewportW, c.ViewportH = w, h
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Pick returns the item whose position lies closest to the ray, among those
// within radius of it and in front of the origin. Ties go to the nearer item
// along the ray.
func Pick[T any](origin, dir r3.Vec, items iter.Seq[T], pos func(T) r3.Vec, radius float64) (T, bool) {
	var best T
	found := false
	bestDist, bestAlong := radius, math.Inf(1)
	for it := range items {
		d, along := RayDistance(origin, dir, pos(it))
		if along < 0 || d > bestDist {
			continue
		}
		if d < bestDist || along < bestAlong {
			best, found = it, true
			bestDist, bestAlong = d, along
		}
	}
	return best, found
}
