package math

// Face is a triangle given by its three corner locations, wound
// counter-clockwise when seen from the front.
type Face struct {
	A, B, C Vec3
}

// Normal returns the unit front-facing normal.
func (f Face) Normal() Vec3 {
	return f.B.Sub(f.A).Cross(f.C.Sub(f.A)).Normalize()
}

// Plane returns the plane containing f.
func (f Face) Plane() Plane {
	return PlaneFromPoints(f.A, f.B, f.C)
}

// Centroid returns the average of the corners.
func (f Face) Centroid() Vec3 {
	return f.A.Add(f.B).Add(f.C).Scale(1.0 / 3)
}

// Barycentric returns the weights (u, v, w) of p relative to corners A, B
// and C. The weights sum to one. A degenerate face yields NullVec3.
func (f Face) Barycentric(p Vec3) Vec3 {
	e0 := f.B.Sub(f.A)
	e1 := f.C.Sub(f.A)
	e2 := p.Sub(f.A)

	d00 := e0.Dot(e0)
	d01 := e0.Dot(e1)
	d11 := e1.Dot(e1)
	d20 := e2.Dot(e0)
	d21 := e2.Dot(e1)

	denom := d00*d11 - d01*d01
	if denom == 0 {
		return NullVec3
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return Vec3{1 - v - w, v, w}
}

// FromBarycentric returns the point with the given weights.
func (f Face) FromBarycentric(w Vec3) Vec3 {
	return f.A.Scale(w.X).Add(f.B.Scale(w.Y)).Add(f.C.Scale(w.Z))
}

// Contains reports whether p, assumed to lie in the plane of f, is inside f
// or on its edges.
func (f Face) Contains(p Vec3) bool {
	w := f.Barycentric(p)
	if w.IsNull() {
		return false
	}
	const eps = -1e-6
	return w.X >= eps && w.Y >= eps && w.Z >= eps
}
