package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
// Multiplication follows the Hamilton convention, so a.Mul(b) applies b
// first and a second when rotating vectors.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from an axis-angle rotation.
// angle is in radians and follows the right-hand rule about axis.
// A zero axis yields the identity.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	if axis.IsZero() {
		return QuatIdentity()
	}
	axis = axis.Normalize()
	halfAngle := angle / 2
	s := math32.Sin(halfAngle)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math32.Cos(halfAngle),
	}
}

// QuatFromEulerYXZ creates a quaternion that rotates about Y, then X, then Z
// (yaw, pitch, roll) by the given angles in radians. It is equivalent to
// RotationYXZ(x, y, z).
func QuatFromEulerYXZ(x, y, z float32) Quat {
	qy := QuatFromAxisAngle(Vec3UnitY, y)
	qx := QuatFromAxisAngle(Vec3UnitX, x)
	qz := QuatFromAxisAngle(Vec3UnitZ, z)
	return qy.Mul(qx).Mul(qz)
}

// QuatFromMat4 extracts the rotation of the upper-left 3x3 of m, which must
// be orthonormal.
func QuatFromMat4(m Mat4) Quat {
	var q Quat
	trace := m[0] + m[5] + m[10]
	switch {
	case trace > 0:
		s := sqrt(trace+1) * 2
		q.W = 0.25 * s
		q.X = (m[6] - m[9]) / s
		q.Y = (m[8] - m[2]) / s
		q.Z = (m[1] - m[4]) / s
	case m[0] > m[5] && m[0] > m[10]:
		s := sqrt(1+m[0]-m[5]-m[10]) * 2
		q.W = (m[6] - m[9]) / s
		q.X = 0.25 * s
		q.Y = (m[4] + m[1]) / s
		q.Z = (m[8] + m[2]) / s
	case m[5] > m[10]:
		s := sqrt(1+m[5]-m[0]-m[10]) * 2
		q.W = (m[8] - m[2]) / s
		q.X = (m[4] + m[1]) / s
		q.Y = 0.25 * s
		q.Z = (m[9] + m[6]) / s
	default:
		s := sqrt(1+m[10]-m[0]-m[5]) * 2
		q.W = (m[1] - m[4]) / s
		q.X = (m[8] + m[2]) / s
		q.Y = (m[9] + m[6]) / s
		q.Z = 0.25 * s
	}
	return q.Normalize()
}

// Length returns the magnitude of q.
func (q Quat) Length() float32 {
	return sqrt(q.Dot(q))
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	l2 := q.Dot(q)
	if l2 == 1 {
		return q
	}
	if l2 < 1e-8 {
		return QuatIdentity()
	}
	invLen := 1 / sqrt(l2)
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Negate returns -q, which represents the same rotation.
func (q Quat) Negate() Quat {
	return Quat{-q.X, -q.Y, -q.Z, -q.W}
}

// Conjugate returns (-x, -y, -z, w).
func (q Quat) Conjugate() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// Inverse returns the multiplicative inverse of q.
func (q Quat) Inverse() Quat {
	l2 := q.Dot(q)
	if l2 == 0 {
		return QuatIdentity()
	}
	c := q.Conjugate()
	if l2 == 1 {
		return c
	}
	inv := 1 / l2
	return Quat{c.X * inv, c.Y * inv, c.Z * inv, c.W * inv}
}

// ApproxEqual reports whether q and other represent the same rotation within
// tol, treating q and -q as equal.
func (q Quat) ApproxEqual(other Quat, tol float32) bool {
	same := ApproxEqual(q.X, other.X, tol) && ApproxEqual(q.Y, other.Y, tol) &&
		ApproxEqual(q.Z, other.Z, tol) && ApproxEqual(q.W, other.W, tol)
	if same {
		return true
	}
	n := other.Negate()
	return ApproxEqual(q.X, n.X, tol) && ApproxEqual(q.Y, n.Y, tol) &&
		ApproxEqual(q.Z, n.Z, tol) && ApproxEqual(q.W, n.W, tol)
}

// Slerp performs spherical linear interpolation between two quaternions.
// t should be in range [0, 1]; exactly 0 or 1 returns an endpoint unchanged.
func (q Quat) Slerp(other Quat, t float32) Quat {
	switch t {
	case 0:
		return q
	case 1:
		return other
	}

	dot := q.Dot(other)

	// Take the shorter path.
	if dot < 0 {
		other = other.Negate()
		dot = -dot
	}

	// Nearly parallel: lerp avoids dividing by a vanishing sine.
	if dot > 0.9995 {
		return q.Lerp(other, t)
	}

	theta0 := math32.Acos(dot)
	theta := theta0 * t
	sinTheta := math32.Sin(theta)
	sinTheta0 := math32.Sin(theta0)

	s0 := math32.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quat{
		X: q.X*s0 + other.X*s1,
		Y: q.Y*s0 + other.Y*s1,
		Z: q.Z*s0 + other.Z*s1,
		W: q.W*s0 + other.W*s1,
	}
}

// Lerp performs normalized linear interpolation between two quaternions.
func (q Quat) Lerp(other Quat, t float32) Quat {
	return Quat{
		X: q.X + t*(other.X-q.X),
		Y: q.Y + t*(other.Y-q.Y),
		Z: q.Z + t*(other.Z-q.Z),
		W: q.W + t*(other.W-q.W),
	}.Normalize()
}

// Mul multiplies two quaternions (combines rotations).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// RotateVec rotates v by the unit quaternion q using
// v' = v + 2·(q.xyz × ((q.xyz × v) + q.w·v)).
func (q Quat) RotateVec(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Add(v.Scale(q.W))
	return v.Add(u.Cross(t).Scale(2))
}

// ToAxisAngle returns the rotation axis and the angle in radians within
// [0, 2π]. The identity returns a zero axis and a zero angle.
func (q Quat) ToAxisAngle() (Vec3, float32) {
	q = q.Normalize()
	s := sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if s < 1e-7 {
		return Vec3{}, 0
	}
	angle := 2 * math32.Atan2(s, q.W)
	return Vec3{q.X / s, q.Y / s, q.Z / s}, angle
}

// EulerYXZ returns the rotation as angles in radians about X, Y and Z,
// applied in Y-X-Z order.
func (q Quat) EulerYXZ() Vec3 {
	return q.ToMat4().EulerYXZ()
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}
