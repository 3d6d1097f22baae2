package math

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3
	Max Vec3
}

// NullBox is the empty box. Expanding it by a point yields a box around
// that point alone.
var NullBox = Box{Min: NullVec3, Max: NullVec3}

// NewBox returns the box spanning two corners given in any order.
func NewBox(a, b Vec3) Box {
	return Box{Min: a.Min(b), Max: a.Max(b)}
}

// BoxFromPoints returns the smallest box containing every point.
func BoxFromPoints(points ...Vec3) Box {
	b := NullBox
	for _, p := range points {
		b = b.Expand(p)
	}
	return b
}

// IsNull reports whether b is the empty box.
func (b Box) IsNull() bool {
	return b.Min.IsNull() || b.Max.IsNull()
}

// Expand returns b grown to contain p.
func (b Box) Expand(p Vec3) Box {
	if b.IsNull() {
		return Box{Min: p, Max: p}
	}
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing b and other.
func (b Box) Union(other Box) Box {
	if b.IsNull() {
		return other
	}
	if other.IsNull() {
		return b
	}
	return Box{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Center returns the midpoint.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the edge lengths.
func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Radius returns half the diagonal length.
func (b Box) Radius() float32 {
	if b.IsNull() {
		return 0
	}
	return b.Size().Length() / 2
}

// Contains reports whether p lies inside or on the surface of b.
func (b Box) Contains(p Vec3) bool {
	if b.IsNull() {
		return false
	}
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Pad returns b grown by amount on every side.
func (b Box) Pad(amount float32) Box {
	if b.IsNull() || amount == 0 {
		return b
	}
	d := Vec3{amount, amount, amount}
	return Box{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Scale returns b scaled componentwise about the origin.
func (b Box) Scale(s Vec3) Box {
	if b.IsNull() {
		return b
	}
	return NewBox(b.Min.ScaleVec(s), b.Max.ScaleVec(s))
}

// Translate returns b moved by offset.
func (b Box) Translate(offset Vec3) Box {
	if b.IsNull() {
		return b
	}
	return Box{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

// Corners returns the eight corners of b.
func (b Box) Corners() [8]Vec3 {
	lo, hi := b.Min, b.Max
	return [8]Vec3{
		{lo.X, lo.Y, lo.Z},
		{hi.X, lo.Y, lo.Z},
		{lo.X, hi.Y, lo.Z},
		{hi.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z},
		{hi.X, lo.Y, hi.Z},
		{lo.X, hi.Y, hi.Z},
		{hi.X, hi.Y, hi.Z},
	}
}

// Transform returns the axis-aligned box enclosing all eight corners of b
// transformed by m.
func (b Box) Transform(m Mat4) Box {
	if b.IsNull() {
		return b
	}
	out := NullBox
	for _, c := range b.Corners() {
		out = out.Expand(m.TransformPoint(c))
	}
	return out
}
