package bounds

import "github.com/Faultbox/retain3d/pkg/math"

// Frustum plane indices.
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// Frustum is the six clip planes of a camera, normalized, with normals
// pointing inward.
type Frustum struct {
	Planes [6]math.Plane
}

// NewFrustum extracts the clip planes from a view-projection matrix using
// the Gribb/Hartmann method.
func NewFrustum(viewProj math.Mat4) Frustum {
	row := func(i int) math.Vec4 {
		return math.Vec4{X: viewProj[i], Y: viewProj[4+i], Z: viewProj[8+i], W: viewProj[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	plane := func(v math.Vec4) math.Plane {
		return math.Plane{A: v.X, B: v.Y, C: v.Z, D: v.W}.Normalize()
	}

	var f Frustum
	f.Planes[PlaneLeft] = plane(r3.Add(r0))
	f.Planes[PlaneRight] = plane(r3.Add(r0.Negate()))
	f.Planes[PlaneBottom] = plane(r3.Add(r1))
	f.Planes[PlaneTop] = plane(r3.Add(r1.Negate()))
	f.Planes[PlaneNear] = plane(r3.Add(r2))
	f.Planes[PlaneFar] = plane(r3.Add(r2.Negate()))
	return f
}

// ContainsPoint reports whether p lies inside or on every plane.
func (f Frustum) ContainsPoint(p math.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether any part of s may be inside.
func (f Frustum) IntersectsSphere(s math.Sphere) bool {
	for _, pl := range f.Planes {
		if pl.Distance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// IntersectsBox reports whether any part of b may be inside. For each plane
// the corner furthest along the normal is tested. The null box never
// intersects.
func (f Frustum) IntersectsBox(b math.Box) bool {
	if b.IsNull() {
		return false
	}
	for _, pl := range f.Planes {
		p := b.Max
		if pl.A < 0 {
			p.X = b.Min.X
		}
		if pl.B < 0 {
			p.Y = b.Min.Y
		}
		if pl.C < 0 {
			p.Z = b.Min.Z
		}
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}
