package math

import "github.com/chewxy/math32"

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective returns a perspective projection matrix.
// fovY is in radians, aspect is width/height.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY/2)
	nf := 1 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// Frustum returns a perspective projection for an off-axis view volume.
func Frustum(left, right, bottom, top, near, far float32) Mat4 {
	rl := 1 / (right - left)
	tb := 1 / (top - bottom)
	fn := 1 / (far - near)

	return Mat4{
		2 * near * rl, 0, 0, 0,
		0, 2 * near * tb, 0, 0,
		(right + left) * rl, (top + bottom) * tb, -(far + near) * fn, -1,
		0, 0, -2 * far * near * fn, 0,
	}
}

// Ortho returns an orthographic projection matrix.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	rl := 1 / (right - left)
	tb := 1 / (top - bottom)
	fn := 1 / (far - near)

	return Mat4{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, -2 * fn, 0,
		-(right + left) * rl, -(top + bottom) * tb, -(far + near) * fn, 1,
	}
}

// LookAt returns a view matrix looking from eye to center with up direction.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Translate returns a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX returns a rotation matrix around the X axis.
// angle is in radians.
func RotateX(angle float32) Mat4 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY returns a rotation matrix around the Y axis.
// angle is in radians.
func RotateY(angle float32) Mat4 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ returns a rotation matrix around the Z axis.
// angle is in radians.
func RotateZ(angle float32) Mat4 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// RotateAxis creates a rotation matrix around an arbitrary axis.
// angle is in radians.
func RotateAxis(axis Vec3, angle float32) Mat4 {
	axis = axis.Normalize()
	c, s := math32.Cos(angle), math32.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z

	return Mat4{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// RotationYXZ returns Ry(y)·Rx(x)·Rz(z): a rotation about Y (yaw), then X
// (pitch), then Z (roll). Angles are in radians.
func RotationYXZ(x, y, z float32) Mat4 {
	cx, sx := math32.Cos(x), math32.Sin(x)
	cy, sy := math32.Cos(y), math32.Sin(y)
	cz, sz := math32.Cos(z), math32.Sin(z)

	return Mat4{
		cy*cz + sx*sy*sz, cx * sz, cy*sx*sz - cz*sy, 0,
		cz*sx*sy - cy*sz, cx * cz, cy*cz*sx + sy*sz, 0,
		cx * sy, -sx, cx * cy, 0,
		0, 0, 0, 1,
	}
}

// EulerYXZ extracts the angles in radians such that
// RotationYXZ(x, y, z) reproduces the rotation part of m.
// At gimbal lock the roll is folded into the yaw.
func (m Mat4) EulerYXZ() Vec3 {
	sx := Clamp(-m[9], -1, 1)
	x := math32.Asin(sx)
	if math32.Abs(sx) < 0.99999 {
		return Vec3{
			X: x,
			Y: math32.Atan2(m[8], m[10]),
			Z: math32.Atan2(m[1], m[5]),
		}
	}
	return Vec3{X: x, Y: math32.Atan2(-m[2], m[0]), Z: 0}
}

// Transformation builds T(location)·R·S(scale) where rot holds the rotation
// in its upper-left 3x3.
func Transformation(location Vec3, rot Mat4, scale Vec3) Mat4 {
	m := rot
	m[0], m[1], m[2], m[3] = m[0]*scale.X, m[1]*scale.X, m[2]*scale.X, 0
	m[4], m[5], m[6], m[7] = m[4]*scale.Y, m[5]*scale.Y, m[6]*scale.Y, 0
	m[8], m[9], m[10], m[11] = m[8]*scale.Z, m[9]*scale.Z, m[10]*scale.Z, 0
	m[12], m[13], m[14], m[15] = location.X, location.Y, location.Z, 1
	return m
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a point by this matrix (w=1), homogenizing the
// result when the matrix is projective.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return m.MulVec4(p.Vec4(1)).Vec3()
}

// TransformDirection transforms a direction vector (ignores translation).
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// MulVec4 multiplies the matrix by a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Column returns column i (0..3).
func (m Mat4) Column(i int) Vec4 {
	return Vec4{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// SetColumn replaces column i (0..3).
func (m *Mat4) SetColumn(i int, v Vec4) {
	m[i*4], m[i*4+1], m[i*4+2], m[i*4+3] = v.X, v.Y, v.Z, v.W
}

// ScaleFactors returns the lengths of the first three columns.
func (m Mat4) ScaleFactors() Vec3 {
	return Vec3{
		m.Column(0).XYZ().Length(),
		m.Column(1).XYZ().Length(),
		m.Column(2).XYZ().Length(),
	}
}

// Transpose returns the transpose of m.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			t[row*4+col] = m[col*4+row]
		}
	}
	return t
}

// Mat3x3 returns the upper-left 3x3 portion of the matrix.
func (m Mat4) Mat3x3() [9]float32 {
	return [9]float32{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// FromMat3x3 creates a Mat4 from a 3x3 rotation matrix.
func FromMat3x3(m3 [9]float32) Mat4 {
	return Mat4{
		m3[0], m3[1], m3[2], 0,
		m3[3], m3[4], m3[5], 0,
		m3[6], m3[7], m3[8], 0,
		0, 0, 0, 1,
	}
}

// RotationPart returns m with translation removed and the bottom row reset.
func (m Mat4) RotationPart() Mat4 {
	return FromMat3x3(m.Mat3x3())
}

// OrthonormalizeRotation re-orthonormalizes the upper-left 3x3 with
// Gram-Schmidt, starting from column start.
func (m Mat4) OrthonormalizeRotation(start int) Mat4 {
	basis := Orthonormalize([3]Vec3{
		m.Column(0).XYZ(), m.Column(1).XYZ(), m.Column(2).XYZ(),
	}, start)
	out := m
	for i, b := range basis {
		out.SetColumn(i, b.Vec4(m[i*4+3]))
	}
	return out
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}

// ApproxEqual reports whether every element differs by no more than tol.
func (m Mat4) ApproxEqual(other Mat4, tol float32) bool {
	for i := range m {
		if !ApproxEqual(m[i], other[i], tol) {
			return false
		}
	}
	return true
}

// InverseRigid inverts a matrix made only of rotation and translation:
// the rotation is transposed and the translation rotated back.
func (m Mat4) InverseRigid() Mat4 {
	inv := m.RotationPart().Transpose()
	t := inv.TransformDirection(m.Translation()).Negate()
	inv[12], inv[13], inv[14] = t.X, t.Y, t.Z
	return inv
}

// Inverse returns the general inverse of the matrix. ok is false, and the
// identity returned, when the matrix is singular.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	// 2x2 sub-determinants of the top two and bottom two rows.
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[9] - m[8]*m[1]
	s2 := m[0]*m[13] - m[12]*m[1]
	s3 := m[4]*m[9] - m[8]*m[5]
	s4 := m[4]*m[13] - m[12]*m[5]
	s5 := m[8]*m[13] - m[12]*m[9]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[6]*m[15] - m[14]*m[7]
	c3 := m[6]*m[11] - m[10]*m[7]
	c2 := m[2]*m[15] - m[14]*m[3]
	c1 := m[2]*m[11] - m[10]*m[3]
	c0 := m[2]*m[7] - m[6]*m[3]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 || math32.IsNaN(det) {
		return Identity(), false
	}
	d := 1 / det

	// Element (row r, col c) lives at index c*4+r.
	inv[0] = (m[5]*c5 - m[9]*c4 + m[13]*c3) * d
	inv[4] = (-m[4]*c5 + m[8]*c4 - m[12]*c3) * d
	inv[8] = (m[7]*s5 - m[11]*s4 + m[15]*s3) * d
	inv[12] = (-m[6]*s5 + m[10]*s4 - m[14]*s3) * d

	inv[1] = (-m[1]*c5 + m[9]*c2 - m[13]*c1) * d
	inv[5] = (m[0]*c5 - m[8]*c2 + m[12]*c1) * d
	inv[9] = (-m[3]*s5 + m[11]*s2 - m[15]*s1) * d
	inv[13] = (m[2]*s5 - m[10]*s2 + m[14]*s1) * d

	inv[2] = (m[1]*c4 - m[5]*c2 + m[13]*c0) * d
	inv[6] = (-m[0]*c4 + m[4]*c2 - m[12]*c0) * d
	inv[10] = (m[3]*s4 - m[7]*s2 + m[15]*s0) * d
	inv[14] = (-m[2]*s4 + m[6]*s2 - m[14]*s0) * d

	inv[3] = (-m[1]*c3 + m[5]*c1 - m[9]*c0) * d
	inv[7] = (m[0]*c3 - m[4]*c1 + m[8]*c0) * d
	inv[11] = (-m[3]*s3 + m[7]*s1 - m[11]*s0) * d
	inv[15] = (m[2]*s3 - m[6]*s1 + m[10]*s0) * d

	return inv, true
}
