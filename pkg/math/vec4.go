package math

import "github.com/chewxy/math32"

// Vec4 is a homogeneous 4-component vector.
type Vec4 struct {
	X, Y, Z, W float32
}

// NullVec4 denotes "no value", for example a ray parallel to a plane.
var NullVec4 = Vec4{math32.Inf(1), math32.Inf(1), math32.Inf(1), math32.Inf(1)}

// IsNull reports whether v is the null vector.
func (v Vec4) IsNull() bool {
	return math32.IsInf(v.X, 1) && math32.IsInf(v.Y, 1) &&
		math32.IsInf(v.Z, 1) && math32.IsInf(v.W, 1)
}

// Vec3 homogenizes v and drops the w component.
func (v Vec4) Vec3() Vec3 {
	h := v.Homogenize()
	return Vec3{h.X, h.Y, h.Z}
}

// XYZ returns the first three components without homogenizing.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Homogenize divides every component by w when v is a location (w != 0).
// Directions (w == 0) are returned unchanged.
func (v Vec4) Homogenize() Vec4 {
	if v.W == 0 || v.W == 1 {
		return v
	}
	inv := 1 / v.W
	return Vec4{v.X * inv, v.Y * inv, v.Z * inv, 1}
}

// Add returns v translated by other.
func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{v.X + other.X, v.Y + other.Y, v.Z + other.Z, v.W + other.W}
}

// Scale returns v * s.
func (v Vec4) Scale(s float32) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Negate returns -v.
func (v Vec4) Negate() Vec4 {
	return Vec4{-v.X, -v.Y, -v.Z, -v.W}
}

// Dot returns the dot product.
func (v Vec4) Dot(other Vec4) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z + v.W*other.W
}

// Length returns the magnitude including w.
func (v Vec4) Length() float32 {
	l2 := v.Dot(v)
	if l2 == 0 || l2 == 1 {
		return l2
	}
	return sqrt(l2)
}

// Normalize returns v scaled to unit length, w included.
func (v Vec4) Normalize() Vec4 {
	l2 := v.Dot(v)
	if l2 == 0 || l2 == 1 {
		return v
	}
	return v.Scale(1 / sqrt(l2))
}

// ApproxEqual reports whether every component differs by no more than tol.
func (v Vec4) ApproxEqual(other Vec4, tol float32) bool {
	return ApproxEqual(v.X, other.X, tol) && ApproxEqual(v.Y, other.Y, tol) &&
		ApproxEqual(v.Z, other.Z, tol) && ApproxEqual(v.W, other.W, tol)
}

// Slerp spherically interpolates from v to other. t of exactly 0 or 1
// returns the corresponding endpoint unchanged.
func (v Vec4) Slerp(other Vec4, t float32) Vec4 {
	switch t {
	case 0:
		return v
	case 1:
		return other
	}
	q := Quat{v.X, v.Y, v.Z, v.W}.Slerp(Quat{other.X, other.Y, other.Z, other.W}, t)
	return Vec4{q.X, q.Y, q.Z, q.W}
}
