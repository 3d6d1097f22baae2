package math

import "github.com/chewxy/math32"

// Ray is a half-line from Start along Direction. Direction need not be unit
// length; distances returned by intersections are then in multiples of it.
type Ray struct {
	Start     Vec3
	Direction Vec3
}

// At returns the point Start + t*Direction.
func (r Ray) At(t float32) Vec3 {
	return r.Start.Add(r.Direction.Scale(t))
}

// Transform returns the ray transformed by m. The direction is transformed
// without translation and is not renormalized, so parameter values along the
// ray are preserved.
func (r Ray) Transform(m Mat4) Ray {
	return Ray{
		Start:     m.TransformPoint(r.Start),
		Direction: m.TransformDirection(r.Direction),
	}
}

// DistanceToPoint returns the shortest distance from p to the ray. Points
// behind the start measure to the start itself.
func (r Ray) DistanceToPoint(p Vec3) float32 {
	d2 := r.Direction.LengthSquared()
	if d2 == 0 {
		return r.Start.Distance(p)
	}
	t := p.Sub(r.Start).Dot(r.Direction) / d2
	if t < 0 {
		t = 0
	}
	return r.At(t).Distance(p)
}

// IntersectPlane is Plane.IntersectRay with the operands swapped.
func (r Ray) IntersectPlane(p Plane) Vec4 {
	return p.IntersectRay(r)
}

// IntersectBox returns where the ray enters b. When the ray starts inside
// the box the exit point is returned instead. NullVec3 means the ray misses
// or the box lies entirely behind the start.
func (r Ray) IntersectBox(b Box) Vec3 {
	if b.IsNull() {
		return NullVec3
	}
	// Slab test.
	tMin := -math32.Inf(1)
	tMax := math32.Inf(1)
	for axis := 0; axis < 3; axis++ {
		s := r.Start.Component(axis)
		d := r.Direction.Component(axis)
		lo, hi := b.Min.Component(axis), b.Max.Component(axis)
		if math32.Abs(d) < 1e-12 {
			if s < lo || s > hi {
				return NullVec3
			}
			continue
		}
		inv := 1 / d
		t1 := (lo - s) * inv
		t2 := (hi - s) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math32.Max(tMin, t1)
		tMax = math32.Min(tMax, t2)
		if tMin > tMax {
			return NullVec3
		}
	}
	if tMax < 0 {
		return NullVec3
	}
	if tMin >= 0 {
		return r.At(tMin)
	}
	return r.At(tMax)
}

// IntersectSphere returns the nearest intersection with s at a non-negative
// ray parameter: the near surface point when the start is outside, the exit
// point when it is inside. NullVec3 means no such intersection.
func (r Ray) IntersectSphere(s Sphere) Vec3 {
	t, ok := r.sphereParam(s)
	if !ok {
		return NullVec3
	}
	return r.At(t)
}

// sphereParam solves (v·v)t² + 2(s·v)t + (s·s - r²) = 0 with the ray start
// expressed relative to the sphere center.
func (r Ray) sphereParam(sp Sphere) (float32, bool) {
	v := r.Direction
	s := r.Start.Sub(sp.Center)
	a := v.Dot(v)
	if a == 0 {
		return 0, false
	}
	b := 2 * s.Dot(v)
	c := s.Dot(s) - sp.Radius*sp.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	root := sqrt(disc)
	t0 := (-b - root) / (2 * a)
	t1 := (-b + root) / (2 * a)
	if t0 >= 0 {
		return t0, true
	}
	if t1 >= 0 {
		return t1, true
	}
	return 0, false
}

// IntersectFace intersects the ray with triangle f. It returns the hit
// location and the ray parameter. Back faces, whose normal points along
// the ray, are accepted only when acceptBackFaces is set; hits behind the
// start only when acceptBehind is set.
func (r Ray) IntersectFace(f Face, acceptBackFaces, acceptBehind bool) (Vec3, float32, bool) {
	n := f.Normal()
	facing := n.Dot(r.Direction)
	if facing == 0 || (facing > 0 && !acceptBackFaces) {
		return NullVec3, 0, false
	}
	hit := f.Plane().IntersectRay(r)
	if hit.IsNull() {
		return NullVec3, 0, false
	}
	if hit.W < 0 && !acceptBehind {
		return NullVec3, 0, false
	}
	loc := hit.XYZ()
	if !f.Contains(loc) {
		return NullVec3, 0, false
	}
	return loc, hit.W, true
}
