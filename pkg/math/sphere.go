package math

// Sphere is a bounding sphere.
type Sphere struct {
	Center Vec3
	Radius float32
}

// SphereFromBox returns the sphere circumscribing b.
func SphereFromBox(b Box) Sphere {
	if b.IsNull() {
		return Sphere{}
	}
	return Sphere{Center: b.Center(), Radius: b.Radius()}
}

// Contains reports whether p lies inside or on s.
func (s Sphere) Contains(p Vec3) bool {
	return p.Sub(s.Center).LengthSquared() <= s.Radius*s.Radius
}

// Pad returns s with its radius grown by amount.
func (s Sphere) Pad(amount float32) Sphere {
	return Sphere{Center: s.Center, Radius: s.Radius + amount}
}

// Union returns the smallest sphere enclosing s and other.
func (s Sphere) Union(other Sphere) Sphere {
	d := other.Center.Sub(s.Center)
	dist := d.Length()
	if dist+other.Radius <= s.Radius {
		return s
	}
	if dist+s.Radius <= other.Radius {
		return other
	}
	r := (dist + s.Radius + other.Radius) / 2
	c := s.Center
	if dist > 0 {
		c = s.Center.Add(d.Scale((r - s.Radius) / dist))
	}
	return Sphere{Center: c, Radius: r}
}

// Transform returns s moved by m. The radius grows by the largest column
// scale of m so the result still encloses the transformed volume.
func (s Sphere) Transform(m Mat4) Sphere {
	sc := m.ScaleFactors()
	k := sc.X
	if sc.Y > k {
		k = sc.Y
	}
	if sc.Z > k {
		k = sc.Z
	}
	return Sphere{Center: m.TransformPoint(s.Center), Radius: s.Radius * k}
}
