package node

import (
	"github.com/Faultbox/retain3d/pkg/math"
)

// Location returns the location in the parent's frame.
func (n *Node) Location() math.Vec3 { return n.location }

// SetLocation moves n within its parent's frame.
func (n *Node) SetLocation(v math.Vec3) {
	n.location = v
	n.MarkTransformDirty()
}

// TranslateBy moves n by delta in its parent's frame.
func (n *Node) TranslateBy(delta math.Vec3) {
	n.SetLocation(n.location.Add(delta))
}

// Rotation returns the Euler angles in degrees, applied Y, X, Z.
func (n *Node) Rotation() math.Vec3 { return n.rotator.Euler() }

// SetRotation sets the Euler angles in degrees. Each is kept modulo ±360.
func (n *Node) SetRotation(euler math.Vec3) {
	n.rotator.SetEuler(euler)
	n.MarkTransformDirty()
}

// RotateBy composes a rotation given by Euler angles in degrees.
func (n *Node) RotateBy(euler math.Vec3) {
	n.rotator.RotateByEuler(euler)
	n.MarkTransformDirty()
}

// Quaternion returns the rotation as a quaternion.
func (n *Node) Quaternion() math.Quat { return n.rotator.Quaternion() }

// SetQuaternion sets the rotation.
func (n *Node) SetQuaternion(q math.Quat) {
	n.rotator.SetQuaternion(q)
	n.MarkTransformDirty()
}

// RotateByQuaternion composes q with the current rotation.
func (n *Node) RotateByQuaternion(q math.Quat) {
	n.rotator.RotateByQuaternion(q)
	n.MarkTransformDirty()
}

// AxisAngle returns the rotation axis and angle in degrees within
// (-180, 180]. The identity yields a zero axis.
func (n *Node) AxisAngle() (math.Vec3, float32) { return n.rotator.AxisAngle() }

// SetAxisAngle sets the rotation to angle degrees about axis.
func (n *Node) SetAxisAngle(axis math.Vec3, angle float32) {
	n.rotator.SetAxisAngle(axis, angle)
	n.MarkTransformDirty()
}

// RotateByAxisAngle composes a rotation of angle degrees about axis.
func (n *Node) RotateByAxisAngle(axis math.Vec3, angle float32) {
	n.rotator.RotateByAxisAngle(axis, angle)
	n.MarkTransformDirty()
}

// RotationMatrix returns the local rotation matrix.
func (n *Node) RotationMatrix() math.Mat4 { return n.rotator.Matrix() }

// SetRotationMatrix sets the rotation from the upper-left 3x3 of m.
func (n *Node) SetRotationMatrix(m math.Mat4) {
	n.rotator.SetMatrix(m)
	n.MarkTransformDirty()
}

// LookAt rotates n so that its forward axis (-Z) points from its location
// toward target. Both are in the parent's frame.
func (n *Node) LookAt(target, up math.Vec3) {
	n.SetForwardDirection(target.Sub(n.location), up)
}

// SetForwardDirection rotates n so that -Z points along dir with +Y as
// close to up as possible. A zero dir is ignored.
func (n *Node) SetForwardDirection(dir, up math.Vec3) {
	if dir.IsZero() {
		return
	}
	f := dir.Normalize()
	r := f.Cross(up)
	if r.LengthSquared() < 1e-12 {
		// up is parallel to dir; any perpendicular will do.
		r = f.Cross(math.Vec3{X: 1})
		if r.LengthSquared() < 1e-12 {
			r = f.Cross(math.Vec3{Z: 1})
		}
	}
	r = r.Normalize()
	u := r.Cross(f)

	m := math.Identity()
	m.SetColumn(0, r.Vec4(0))
	m.SetColumn(1, u.Vec4(0))
	m.SetColumn(2, f.Negate().Vec4(0))
	n.SetRotationMatrix(m)
}

// Scale returns the local scale.
func (n *Node) Scale() math.Vec3 { return n.scale }

// SetScale sets the local scale. Components closer to zero than
// math.ScaleEpsilon are clamped when the transform is built.
func (n *Node) SetScale(s math.Vec3) {
	n.scale = s
	n.MarkTransformDirty()
}

// UniformScale returns the scale when uniform, otherwise the length of the
// scale relative to the unit cube diagonal.
func (n *Node) UniformScale() float32 {
	if n.IsUniformlyScaled() {
		return n.scale.X
	}
	return n.scale.Length() / math.Vec3{X: 1, Y: 1, Z: 1}.Length()
}

// SetUniformScale scales n by s on every axis.
func (n *Node) SetUniformScale(s float32) {
	n.SetScale(math.Vec3{X: s, Y: s, Z: s})
}

// IsUniformlyScaled reports whether every scale component is equal.
func (n *Node) IsUniformlyScaled() bool {
	return n.scale.X == n.scale.Y && n.scale.Y == n.scale.Z
}

// ScaleTolerance returns how far from one a scale may be while n is still
// treated as unscaled when inverting its transform.
func (n *Node) ScaleTolerance() float32 { return n.scaleTolerance }

// SetScaleTolerance sets the tolerance on n and copies it to every current
// descendant. Later changes to a descendant are independent.
func (n *Node) SetScaleTolerance(tol float32) {
	n.Walk(func(c *Node) bool {
		c.scaleTolerance = tol
		c.MarkTransformDirty()
		return true
	})
}

func (n *Node) isUnitScale() bool {
	tol := n.scaleTolerance
	return math.ApproxEqual(n.scale.X, 1, tol) &&
		math.ApproxEqual(n.scale.Y, 1, tol) &&
		math.ApproxEqual(n.scale.Z, 1, tol)
}

// LocalTransformMatrix returns T(location) · R · S(scale).
func (n *Node) LocalTransformMatrix() math.Mat4 {
	return math.Transformation(n.location, n.rotator.Matrix(), n.scale.ClampScale())
}

// MarkTransformDirty marks the global transform of n stale. Descendants
// are marked when n is rebuilt.
func (n *Node) MarkTransformDirty() {
	n.transformDirty = true
}

// IsTransformDirty reports whether the global transform must be rebuilt
// before use, because n or one of its ancestors changed.
func (n *Node) IsTransformDirty() bool {
	return n.DirtiestAncestor() != nil
}

// DirtiestAncestor returns the highest node among n and its ancestors
// whose transform is marked dirty, or nil when none is. Rebuilding from it
// brings n up to date.
func (n *Node) DirtiestAncestor() *Node {
	var top *Node
	for p := n; p != nil; p = p.parent {
		if p.transformDirty {
			top = p
		}
	}
	return top
}

// TransformMatrix returns the global transform G = G(parent) · L. It is
// rebuilt lazily from the dirtiest ancestor down to n.
func (n *Node) TransformMatrix() math.Mat4 {
	if top := n.DirtiestAncestor(); top != nil {
		n.rebuildFrom(top)
	}
	return n.global
}

func (n *Node) rebuildFrom(top *Node) {
	var path []*Node
	for p := n; p != top; p = p.parent {
		path = append(path, p)
	}
	top.rebuild()
	for i := len(path) - 1; i >= 0; i-- {
		path[i].rebuild()
	}
}

// rebuild recomputes G from the parent's G, which must be current, marks
// the children dirty and notifies the transform listeners.
func (n *Node) rebuild() {
	local := n.LocalTransformMatrix()
	rigid := n.isUnitScale()
	if n.parent != nil {
		n.global = n.parent.global.Mul(local)
		rigid = rigid && n.parent.rigid
	} else {
		n.global = local
	}
	n.rigid = rigid
	n.transformDirty = false
	n.inverseDirty = true
	n.globalRotationDirty = true
	for _, c := range n.children {
		c.transformDirty = true
	}
	if n.light != nil {
		n.light.SetGlobalPose(n.global.Translation(), n.globalForward())
	}
	n.notifyTransformed()
}

// BuildTransform rebuilds the global transform of n and of every
// descendant now. Call it after changing local transforms where a
// traversal will not rebuild them.
func (n *Node) BuildTransform() {
	if n.parent != nil {
		n.parent.TransformMatrix()
	}
	n.buildSubtree()
}

func (n *Node) buildSubtree() {
	n.rebuild()
	for _, c := range n.children {
		c.buildSubtree()
	}
}

// InverseTransformMatrix returns G⁻¹. Transforms without scale take the
// rigid path: transposed rotation and negated translation.
func (n *Node) InverseTransformMatrix() math.Mat4 {
	g := n.TransformMatrix()
	if n.inverseDirty {
		if n.rigid {
			n.inverse = g.InverseRigid()
		} else if inv, ok := g.Inverse(); ok {
			n.inverse = inv
		} else {
			n.inverse = math.Identity()
		}
		n.inverseDirty = false
	}
	return n.inverse
}

// GlobalLocation returns the location of n in the root's frame.
func (n *Node) GlobalLocation() math.Vec3 {
	return n.TransformMatrix().Translation()
}

// GlobalRotationMatrix returns the global rotation with scale removed.
func (n *Node) GlobalRotationMatrix() math.Mat4 {
	g := n.TransformMatrix()
	if n.globalRotationDirty {
		n.globalRotation = g.RotationPart()
		if !n.rigid {
			n.globalRotation = n.globalRotation.OrthonormalizeRotation(0)
		}
		n.globalRotationDirty = false
	}
	return n.globalRotation
}

// GlobalScale returns the product of the scales of n and its ancestors.
func (n *Node) GlobalScale() math.Vec3 {
	s := n.scale
	for p := n.parent; p != nil; p = p.parent {
		s = s.ScaleVec(p.scale)
	}
	return s
}

// GlobalForward returns the unit direction of -Z in the root's frame.
func (n *Node) GlobalForward() math.Vec3 {
	n.TransformMatrix()
	return n.globalForward()
}

func (n *Node) globalForward() math.Vec3 {
	return n.global.TransformDirection(math.Vec3{Z: -1}).Normalize()
}

// ToGlobal transforms local point p to the root's frame.
func (n *Node) ToGlobal(p math.Vec3) math.Vec3 {
	return n.TransformMatrix().TransformPoint(p)
}

// ToLocal transforms p from the root's frame to the frame of n.
func (n *Node) ToLocal(p math.Vec3) math.Vec3 {
	return n.InverseTransformMatrix().TransformPoint(p)
}
