package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Basis vectors. Forward is the local axis an orientation points along.
var (
	Up      = r3.Vec{Y: 1}
	Forward = r3.Vec{Z: 1}
)

// SafeUnit returns the unit vector of v, or the zero vector when v has no length.
func SafeUnit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// IsZero reports whether v is the zero vector.
func IsZero(v r3.Vec) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Clamp01 clamps v to the [0, 1] range.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Slerp spherically interpolates between the directions of a and b and returns
// a unit vector. t is clamped to [0, 1]. A zero endpoint falls back to the other
// one; opposite directions rotate through an arbitrary perpendicular axis.
func Slerp(a, b r3.Vec, t float64) r3.Vec {
	ua, ub := SafeUnit(a), SafeUnit(b)
	switch {
	case IsZero(ua):
		return ub
	case IsZero(ub):
		return ua
	}
	t = Clamp01(t)

	dot := r3.Dot(ua, ub)
	if dot > 0.9995 {
		// Nearly parallel: nlerp is indistinguishable and avoids dividing by sin(0)
		return SafeUnit(Lerp(ua, ub, t))
	}
	if dot < -0.9995 {
		axis := SafeUnit(r3.Cross(ua, Up))
		if IsZero(axis) {
			axis = SafeUnit(r3.Cross(ua, r3.Vec{X: 1}))
		}
		return RotateAbout(ua, axis, math.Pi*t)
	}

	theta := math.Acos(dot) * t
	rel := SafeUnit(r3.Sub(ub, r3.Scale(dot, ua)))
	return r3.Add(r3.Scale(math.Cos(theta), ua), r3.Scale(math.Sin(theta), rel))
}

// RotateAbout rotates v by angle radians about the unit axis.
func RotateAbout(v, axis r3.Vec, angle float64) r3.Vec {
	return Rotate(AxisAngle(axis, angle), v)
}

// AxisAngle returns the unit quaternion rotating by angle about the unit axis.
func AxisAngle(axis r3.Vec, angle float64) quat.Number {
	s := math.Sin(angle / 2)
	return quat.Number{Real: math.Cos(angle / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// Rotate applies the rotation q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// ForwardOf returns the facing direction of orientation q. A zero quaternion
// is treated as the identity.
func ForwardOf(q quat.Number) r3.Vec {
	n := quat.Abs(q)
	if n == 0 {
		return Forward
	}
	return SafeUnit(Rotate(quat.Scale(1/n, q), Forward))
}

// RandomOrientation returns a uniformly distributed unit quaternion.
func RandomOrientation(rng *rand.Rand) quat.Number {
	u1, u2, u3 := rng.Float64(), rng.Float64(), rng.Float64()
	a, b := math.Sqrt(1-u1), math.Sqrt(u1)
	return quat.Number{
		Real: a * math.Sin(2*math.Pi*u2),
		Imag: a * math.Cos(2*math.Pi*u2),
		Jmag: b * math.Sin(2*math.Pi*u3),
		Kmag: b * math.Cos(2*math.Pi*u3),
	}
}

// BoxAround returns the axis-aligned box centered on c with the given half extent.
func BoxAround(c r3.Vec, half float64) r3.Box {
	h := r3.Vec{X: half, Y: half, Z: half}
	return r3.Box{Min: r3.Sub(c, h), Max: r3.Add(c, h)}
}

// Overlaps reports whether two boxes intersect. Touching faces count as overlap.
func Overlaps(a, b r3.Box) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Encloses reports whether inner lies entirely within outer.
func Encloses(outer, inner r3.Box) bool {
	return inner.Min.X >= outer.Min.X && inner.Max.X <= outer.Max.X &&
		inner.Min.Y >= outer.Min.Y && inner.Max.Y <= outer.Max.Y &&
		inner.Min.Z >= outer.Min.Z && inner.Max.Z <= outer.Max.Z
}

// BoxCenter returns the center of b.
func BoxCenter(b r3.Box) r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}
