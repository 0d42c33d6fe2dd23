package vmath

import "math"

// Vec2 is a 2D float vector. Value semantics, game-loop goroutine only.
type Vec2 struct {
	X, Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2     { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2     { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) Len() float64   { return math.Hypot(v.X, v.Y) }
func (v Vec2) LenSq() float64 { return v.X*v.X + v.Y*v.Y }

// Normalized returns the unit vector, zero-safe.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// ClampLen limits the vector to maxLen while preserving direction.
func (v Vec2) ClampLen(maxLen float64) Vec2 {
	l := v.Len()
	if l <= maxLen || l == 0 {
		return v
	}
	f := maxLen / l
	return Vec2{v.X * f, v.Y * f}
}

// WithLen rescales the vector to the given length, zero-safe.
func (v Vec2) WithLen(length float64) Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	f := length / l
	return Vec2{v.X * f, v.Y * f}
}

// Perp returns the vector rotated 90° counter-clockwise.
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// Rotated rotates the vector by angle radians.
func (v Vec2) Rotated(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// Angle returns the vector heading in radians from the positive X axis.
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Dist returns the Euclidean distance between two points.
func Dist(a, b Vec2) float64 { return a.Sub(b).Len() }

// DistSq returns the squared distance, avoiding the sqrt for pair tests.
func DistSq(a, b Vec2) float64 { return a.Sub(b).LenSq() }

// Finite reports whether both components are finite numbers.
func (v Vec2) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}
