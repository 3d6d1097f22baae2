// Package math provides the value types and closed-form operations of the
// scene graph: vectors, quaternions, matrices, planes, rays and volumes.
// All math is right-handed and matrices are column-major.
package math

import "github.com/chewxy/math32"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Common vectors.
var (
	Vec3Zero     = Vec3{0, 0, 0}
	Vec3UnitCube = Vec3{1, 1, 1}
	Vec3UnitX    = Vec3{1, 0, 0}
	Vec3UnitY    = Vec3{0, 1, 0}
	Vec3UnitZ    = Vec3{0, 0, 1}
)

// NullVec3 denotes "no value". It is distinct from the zero vector.
var NullVec3 = Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)}

// IsNull reports whether v is the null vector.
func (v Vec3) IsNull() bool {
	return math32.IsInf(v.X, 1) && math32.IsInf(v.Y, 1) && math32.IsInf(v.Z, 1)
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// ScaleVec multiplies v componentwise by s.
func (v Vec3) ScaleVec(s Vec3) Vec3 {
	return Vec3{v.X * s.X, v.Y * s.Y, v.Z * s.Z}
}

// Negate returns -v.
func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Invert returns (1/x, 1/y, 1/z). The caller ensures no component is zero.
func (v Vec3) Invert() Vec3 {
	return Vec3{1 / v.X, 1 / v.Y, 1 / v.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// LengthSquared returns the squared magnitude.
func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the magnitude. Zero and unit vectors skip the square root.
func (v Vec3) Length() float32 {
	l2 := v.LengthSquared()
	if l2 == 0 || l2 == 1 {
		return l2
	}
	return sqrt(l2)
}

// Normalize returns a unit vector. Zero and unit vectors are returned as is.
func (v Vec3) Normalize() Vec3 {
	l2 := v.LengthSquared()
	if l2 == 0 || l2 == 1 {
		return v
	}
	l := sqrt(l2)
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// Min returns the componentwise minimum of v and other.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{math32.Min(v.X, other.X), math32.Min(v.Y, other.Y), math32.Min(v.Z, other.Z)}
}

// Max returns the componentwise maximum of v and other.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{math32.Max(v.X, other.X), math32.Max(v.Y, other.Y), math32.Max(v.Z, other.Z)}
}

// Lerp interpolates from v to other. t of exactly 0 or 1 returns the
// corresponding endpoint unchanged.
func (v Vec3) Lerp(other Vec3, t float32) Vec3 {
	switch t {
	case 0:
		return v
	case 1:
		return other
	}
	return Vec3{
		v.X + t*(other.X-v.X),
		v.Y + t*(other.Y-v.Y),
		v.Z + t*(other.Z-v.Z),
	}
}

// Equal reports exact equality.
func (v Vec3) Equal(other Vec3) bool {
	return v == other
}

// ApproxEqual reports whether every component differs by no more than tol.
func (v Vec3) ApproxEqual(other Vec3, tol float32) bool {
	return ApproxEqual(v.X, other.X, tol) &&
		ApproxEqual(v.Y, other.Y, tol) &&
		ApproxEqual(v.Z, other.Z, tol)
}

// RotationalDifference returns, per axis, the smallest signed angle in
// degrees that turns subtrahend into v.
func (v Vec3) RotationalDifference(subtrahend Vec3) Vec3 {
	return Vec3{
		CyclicDifference(v.X, subtrahend.X),
		CyclicDifference(v.Y, subtrahend.Y),
		CyclicDifference(v.Z, subtrahend.Z),
	}
}

// ClampScale returns v with every component whose magnitude is below
// ScaleEpsilon replaced by ±ScaleEpsilon.
func (v Vec3) ClampScale() Vec3 {
	return Vec3{
		ClampMagnitude(v.X, ScaleEpsilon),
		ClampMagnitude(v.Y, ScaleEpsilon),
		ClampMagnitude(v.Z, ScaleEpsilon),
	}
}

// Vec4 extends v with the given w.
func (v Vec3) Vec4(w float32) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// Component returns the component at index i (0=X, 1=Y, 2=Z).
func (v Vec3) Component(i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Orthonormalize applies Gram-Schmidt to the basis, starting with the
// vector at index start (0..2) and continuing cyclically. The returned
// vectors are unit length and mutually perpendicular.
func Orthonormalize(basis [3]Vec3, start int) [3]Vec3 {
	i0 := ((start % 3) + 3) % 3
	i1 := (i0 + 1) % 3
	i2 := (i0 + 2) % 3

	var out [3]Vec3
	out[i0] = basis[i0].Normalize()

	b1 := basis[i1]
	b1 = b1.Sub(out[i0].Scale(b1.Dot(out[i0])))
	out[i1] = b1.Normalize()

	b2 := basis[i2]
	b2 = b2.Sub(out[i0].Scale(b2.Dot(out[i0])))
	b2 = b2.Sub(out[i1].Scale(b2.Dot(out[i1])))
	out[i2] = b2.Normalize()

	return out
}
