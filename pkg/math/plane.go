package math

import "github.com/chewxy/math32"

// Plane is the set of points p where A*p.X + B*p.Y + C*p.Z + D = 0.
// (A, B, C) is the normal; a normalized plane has a unit normal, making D the
// signed distance of the origin from the plane.
type Plane struct {
	A, B, C, D float32
}

// PlaneFromPoints returns the plane through three points. The normal points
// toward the viewer when the points wind counter-clockwise.
func PlaneFromPoints(p1, p2, p3 Vec3) Plane {
	n := p2.Sub(p1).Cross(p3.Sub(p1)).Normalize()
	return PlaneFromNormalAndPoint(n, p1)
}

// PlaneFromNormalAndPoint returns the plane with normal n through p.
func PlaneFromNormalAndPoint(n, p Vec3) Plane {
	return Plane{n.X, n.Y, n.Z, -n.Dot(p)}
}

// Normal returns (A, B, C).
func (p Plane) Normal() Vec3 {
	return Vec3{p.A, p.B, p.C}
}

// Normalize scales the plane so its normal has unit length.
func (p Plane) Normalize() Plane {
	l := p.Normal().Length()
	if l == 0 || l == 1 {
		return p
	}
	inv := 1 / l
	return Plane{p.A * inv, p.B * inv, p.C * inv, p.D * inv}
}

// Distance returns the signed distance of v from a normalized plane.
// Positive values lie on the side the normal points to.
func (p Plane) Distance(v Vec3) float32 {
	return p.A*v.X + p.B*v.Y + p.C*v.Z + p.D
}

// IntersectRay intersects the plane with ray r. The location is in XYZ and W
// holds the distance along the ray in multiples of its direction, negative
// when the plane is behind the start. A ray parallel to the plane returns
// NullVec4.
func (p Plane) IntersectRay(r Ray) Vec4 {
	n := p.Normal()
	denom := n.Dot(r.Direction)
	if math32.Abs(denom) < 1e-12 {
		return NullVec4
	}
	t := -(n.Dot(r.Start) + p.D) / denom
	return r.At(t).Vec4(t)
}

// IntersectPlanes returns the single point shared by three planes, or
// NullVec3 when two or more of them are parallel.
func IntersectPlanes(p1, p2, p3 Plane) Vec3 {
	n1, n2, n3 := p1.Normal(), p2.Normal(), p3.Normal()
	c23 := n2.Cross(n3)
	det := n1.Dot(c23)
	if math32.Abs(det) < 1e-12 {
		return NullVec3
	}
	c31 := n3.Cross(n1)
	c12 := n1.Cross(n2)
	sum := c23.Scale(p1.D).Add(c31.Scale(p2.D)).Add(c12.Scale(p3.D))
	return sum.Scale(-1 / det)
}
