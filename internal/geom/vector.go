package geom

import "math"

// Vec2 is a point or direction in the 2D plane. Values are treated as
// immutable; every operation returns a new Vec2.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product, the signed area of
// the parallelogram spanned by v and other.
func (v Vec2) Cross(other Vec2) float64 {
	return v.X*other.Y - v.Y*other.X
}

func (v Vec2) MagSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Mag() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector with the same direction, or the zero
// vector when v is (near) zero length.
func (v Vec2) Normalize() Vec2 {
	mag := v.Mag()
	if mag < 1e-12 {
		return Vec2{}
	}
	return v.Scale(1.0 / mag)
}

func (v Vec2) Dist(other Vec2) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Limit caps the magnitude of v at max, preserving direction.
func (v Vec2) Limit(max float64) Vec2 {
	magSq := v.MagSq()
	if magSq > max*max && magSq > 0 {
		return v.Scale(max / math.Sqrt(magSq))
	}
	return v
}

// Perp returns v rotated a quarter turn counterclockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// FromAngle returns the unit vector pointing along the given heading.
func FromAngle(angle float64) Vec2 {
	return Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vec2) Vec2 {
	return Vec2{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
