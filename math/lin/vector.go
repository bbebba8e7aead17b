package lin

// Vector performs 3 element vector math needed for the collision core
// and the scene build pipeline.

import "math"

// V3 is a 3 element vector. This can also be used as a point.
type V3 struct {
	X float32
	Y float32
	Z float32
}

// Eq (==) returns true if each element in v has the same value as a.
func (v V3) Eq(a V3) bool { return v.X == a.X && v.Y == a.Y && v.Z == a.Z }

// Aeq (~=) almost-equals returns true if all elements in v are
// essentially the same value as the corresponding elements in a.
func (v V3) Aeq(a V3) bool { return Aeq(v.X, a.X) && Aeq(v.Y, a.Y) && Aeq(v.Z, a.Z) }

// AeqZ (~=) almost equals zero returns true if the square length of v
// is close enough to zero that it makes no difference.
func (v V3) AeqZ() bool { return v.Dot(v) < Epsilon }

// Add (+) returns v+a.
func (v V3) Add(a V3) V3 { return V3{v.X + a.X, v.Y + a.Y, v.Z + a.Z} }

// Sub (-) returns v-a.
func (v V3) Sub(a V3) V3 { return V3{v.X - a.X, v.Y - a.Y, v.Z - a.Z} }

// Neg (-) returns the negative of v.
func (v V3) Neg() V3 { return V3{-v.X, -v.Y, -v.Z} }

// Scale (*) returns v scaled by s.
func (v V3) Scale(s float32) V3 { return V3{v.X * s, v.Y * s, v.Z * s} }

// Mul (*, component-wise) returns v with each element multiplied by
// the corresponding element in a.
func (v V3) Mul(a V3) V3 { return V3{v.X * a.X, v.Y * a.Y, v.Z * a.Z} }

// Div (/, component-wise) returns v with each element divided by the
// corresponding element in a. Division by zero elements in a is not
// guarded; callers are expected to know their scales are non-zero.
func (v V3) Div(a V3) V3 { return V3{v.X / a.X, v.Y / a.Y, v.Z / a.Z} }

// Dot returns the dot product of v and a.
func (v V3) Dot(a V3) float32 { return v.X*a.X + v.Y*a.Y + v.Z*a.Z }

// Cross (x) returns the cross product of v and a.
func (v V3) Cross(a V3) V3 {
	return V3{
		v.Y*a.Z - v.Z*a.Y,
		v.Z*a.X - v.X*a.Z,
		v.X*a.Y - v.Y*a.X,
	}
}

// Len returns the length of v.
func (v V3) Len() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }

// Len2 returns the squared length of v. Cheaper than Len when only
// used for comparison.
func (v V3) Len2() float32 { return v.Dot(v) }

// Unit returns v normalized to length 1. The zero vector is returned
// unchanged.
func (v V3) Unit() V3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Abs returns v with each element's absolute value.
func (v V3) Abs() V3 { return V3{Abs(v.X), Abs(v.Y), Abs(v.Z)} }

// Min returns the component-wise minimum of v and a.
func (v V3) Min(a V3) V3 { return V3{min32(v.X, a.X), min32(v.Y, a.Y), min32(v.Z, a.Z)} }

// Max returns the component-wise maximum of v and a.
func (v V3) Max(a V3) V3 { return V3{max32(v.X, a.X), max32(v.Y, a.Y), max32(v.Z, a.Z)} }

// MinElem returns the smallest of the 3 elements.
func (v V3) MinElem() float32 { return min32(v.X, min32(v.Y, v.Z)) }

// MaxElem returns the largest of the 3 elements.
func (v V3) MaxElem() float32 { return max32(v.X, max32(v.Y, v.Z)) }

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
