// Package rotator keeps a local rotation in four interchangeable forms:
// Euler angles, a quaternion, an axis-angle pair and a rotation matrix.
//
// Exactly one form is authoritative after a setter runs. The others are
// derived the first time they are read, after which the rotator is clean and
// all four agree.
package rotator

import (
	"github.com/Faultbox/retain3d/pkg/math"
)

// State tells which representation is authoritative.
type State uint8

const (
	Clean State = iota
	DirtyByEuler
	DirtyByQuaternion
	DirtyByAxisAngle
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case DirtyByEuler:
		return "dirty-by-euler"
	case DirtyByQuaternion:
		return "dirty-by-quaternion"
	case DirtyByAxisAngle:
		return "dirty-by-axis-angle"
	default:
		return "unknown"
	}
}

// Rotator is the rotation of one node. Angles are in degrees. Euler angles
// apply in Y-X-Z order (yaw, pitch, roll).
//
// The zero value is the identity rotation.
type Rotator struct {
	euler  math.Vec3
	quat   math.Quat
	axis   math.Vec3
	angle  float32
	matrix math.Mat4

	state       State
	matrixStale bool
	init        bool
}

// New returns an identity rotator.
func New() *Rotator {
	r := &Rotator{}
	r.ensure()
	return r
}

func (r *Rotator) ensure() {
	if r.init {
		return
	}
	r.quat = math.QuatIdentity()
	r.matrix = math.Identity()
	r.init = true
}

// State returns which representation is currently authoritative.
func (r *Rotator) State() State {
	return r.state
}

// SetEuler sets the rotation from Euler angles in degrees. Each component is
// stored modulo 360 with its sign kept.
func (r *Rotator) SetEuler(e math.Vec3) {
	r.ensure()
	r.euler = math.Vec3{
		X: math.WrapDegrees360(e.X),
		Y: math.WrapDegrees360(e.Y),
		Z: math.WrapDegrees360(e.Z),
	}
	r.state = DirtyByEuler
	r.matrixStale = true
}

// SetQuaternion sets the rotation from q. q need not be unit length; a zero
// quaternion is taken as the identity.
func (r *Rotator) SetQuaternion(q math.Quat) {
	r.ensure()
	r.quat = q.Normalize()
	r.state = DirtyByQuaternion
	r.matrixStale = true
}

// SetAxisAngle sets the rotation to angle degrees about axis. A zero axis
// means no rotation.
func (r *Rotator) SetAxisAngle(axis math.Vec3, angle float32) {
	r.ensure()
	r.axis = axis.Normalize()
	r.angle = angle
	if axis.IsZero() {
		r.angle = 0
	}
	r.state = DirtyByAxisAngle
	r.matrixStale = true
}

// SetMatrix sets the rotation from the upper-left 3x3 of m. Any scale or
// skew is removed by orthonormalizing first.
func (r *Rotator) SetMatrix(m math.Mat4) {
	r.ensure()
	rot := m.RotationPart().OrthonormalizeRotation(2)
	r.quat = math.QuatFromMat4(rot)
	r.matrix = rot
	r.state = DirtyByQuaternion
	r.matrixStale = false
}

// RotateByEuler turns the current rotation further by delta degrees, applied
// in Y-X-Z order.
func (r *Rotator) RotateByEuler(delta math.Vec3) {
	r.RotateByQuaternion(math.QuatFromEulerYXZ(
		math.DegToRad(delta.X), math.DegToRad(delta.Y), math.DegToRad(delta.Z)))
}

// RotateByQuaternion composes dq onto the current rotation: q = dq * q.
func (r *Rotator) RotateByQuaternion(dq math.Quat) {
	r.SetQuaternion(dq.Normalize().Mul(r.Quaternion()))
}

// RotateByAxisAngle turns the current rotation by angle degrees about axis.
func (r *Rotator) RotateByAxisAngle(axis math.Vec3, angle float32) {
	r.RotateByQuaternion(math.QuatFromAxisAngle(axis, math.DegToRad(angle)))
}

// reconcile derives every representation from the authoritative one.
func (r *Rotator) reconcile() {
	r.ensure()
	switch r.state {
	case DirtyByEuler:
		e := r.euler
		rx, ry, rz := math.DegToRad(e.X), math.DegToRad(e.Y), math.DegToRad(e.Z)
		r.quat = math.QuatFromEulerYXZ(rx, ry, rz)
		r.matrix = math.RotationYXZ(rx, ry, rz)
		r.axis, r.angle = axisAngleOf(r.quat)
	case DirtyByQuaternion:
		r.euler = eulerOf(r.quat)
		r.axis, r.angle = axisAngleOf(r.quat)
	case DirtyByAxisAngle:
		r.quat = math.QuatFromAxisAngle(r.axis, math.DegToRad(r.angle))
		r.euler = eulerOf(r.quat)
		if r.axis.IsZero() || r.angle == 0 {
			r.axis, r.angle = math.Vec3{}, 0
		}
	default:
		return
	}
	if r.matrixStale {
		r.matrix = r.quat.ToMat4()
		r.matrixStale = false
	}
	r.state = Clean
}

func eulerOf(q math.Quat) math.Vec3 {
	e := q.EulerYXZ()
	return math.Vec3{
		X: math.WrapDegrees180(math.RadToDeg(e.X)),
		Y: math.WrapDegrees180(math.RadToDeg(e.Y)),
		Z: math.WrapDegrees180(math.RadToDeg(e.Z)),
	}
}

func axisAngleOf(q math.Quat) (math.Vec3, float32) {
	axis, rad := q.ToAxisAngle()
	return axis, math.RadToDeg(rad)
}

// Euler returns the rotation as Euler angles in degrees. Angles set through
// SetEuler come back as stored; derived angles lie in (-180, 180].
func (r *Rotator) Euler() math.Vec3 {
	r.reconcile()
	return r.euler
}

// Quaternion returns the rotation as a unit quaternion.
func (r *Rotator) Quaternion() math.Quat {
	r.reconcile()
	return r.quat
}

// AxisAngle returns the rotation axis and the angle in degrees, wrapped to
// (-180, 180]. The identity has a zero axis.
func (r *Rotator) AxisAngle() (math.Vec3, float32) {
	r.reconcile()
	return r.axis, math.WrapDegrees180(r.angle)
}

// Matrix returns the rotation matrix.
func (r *Rotator) Matrix() math.Mat4 {
	r.reconcile()
	return r.matrix
}

// ApplyTo returns m * R.
func (r *Rotator) ApplyTo(m math.Mat4) math.Mat4 {
	return m.Mul(r.Matrix())
}

// IsIdentity reports whether the rotation is the identity within 1e-6.
func (r *Rotator) IsIdentity() bool {
	return r.Quaternion().ApproxEqual(math.QuatIdentity(), 1e-6)
}

// Copy returns an independent copy of r.
func (r *Rotator) Copy() *Rotator {
	c := *r
	return &c
}
