// Package bounds implements bounding volumes for frustum culling and
// picking.
package bounds

import (
	"github.com/Faultbox/retain3d/internal/engine/mesh"
	"github.com/Faultbox/retain3d/pkg/math"
)

// Shape selects the volume tested against frustums and rays.
type Shape uint8

const (
	// ShapeNone never culls and always accepts rays.
	ShapeNone Shape = iota
	ShapeBox
	ShapeSphere
)

func (s Shape) String() string {
	return [...]string{"none", "box", "sphere"}[s]
}

// Volume bounds a node's local content. Unless fixed, it is rebuilt from
// the mesh locations whenever they changed since the last build.
type Volume struct {
	shape   Shape
	mesh    *mesh.Mesh
	fixed   bool
	padding float32

	valid   bool
	version uint64
	box     math.Box
	sphere  math.Sphere
}

// NewVolume returns a volume of shape derived from m.
func NewVolume(shape Shape, m *mesh.Mesh) *Volume {
	return &Volume{shape: shape, mesh: m, box: math.NullBox}
}

// NewFixedBox returns a box volume that never rebuilds.
func NewFixedBox(b math.Box) *Volume {
	v := &Volume{shape: ShapeBox}
	v.SetBox(b)
	return v
}

// NewFixedSphere returns a sphere volume that never rebuilds.
func NewFixedSphere(s math.Sphere) *Volume {
	v := &Volume{shape: ShapeSphere, box: math.NullBox}
	v.SetSphere(s)
	return v
}

// Shape returns the tested shape.
func (v *Volume) Shape() Shape { return v.shape }

// SetShape changes the tested shape.
func (v *Volume) SetShape(s Shape) { v.shape = s }

// Mesh returns the mesh the volume is derived from.
func (v *Volume) Mesh() *mesh.Mesh { return v.mesh }

// SetMesh changes the source mesh and marks the volume dirty.
func (v *Volume) SetMesh(m *mesh.Mesh) {
	v.mesh = m
	v.valid = false
}

// Padding returns the distance added around the volume.
func (v *Volume) Padding() float32 { return v.padding }

// SetPadding sets the distance added around the volume on every side.
func (v *Volume) SetPadding(p float32) { v.padding = p }

// IsFixed reports whether the volume ignores mesh changes.
func (v *Volume) IsFixed() bool { return v.fixed }

// SetFixed freezes the volume at its current extent, or lets it follow the
// mesh again.
func (v *Volume) SetFixed(fixed bool) {
	if fixed {
		v.ensure()
	} else {
		v.valid = false
	}
	v.fixed = fixed
}

// SetBox fixes the volume at box b. The sphere becomes the sphere around b.
func (v *Volume) SetBox(b math.Box) {
	v.box = b
	v.sphere = math.SphereFromBox(b)
	v.fixed, v.valid = true, true
}

// SetSphere fixes the volume at sphere s. The box becomes the box around s.
func (v *Volume) SetSphere(s math.Sphere) {
	r := math.Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	v.sphere = s
	v.box = math.Box{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
	v.fixed, v.valid = true, true
}

// MarkDirty forces a rebuild on next access, unless fixed.
func (v *Volume) MarkDirty() {
	if !v.fixed {
		v.valid = false
	}
}

// IsDirty reports whether the next access rebuilds the volume.
func (v *Volume) IsDirty() bool {
	if v.fixed {
		return false
	}
	return !v.valid || (v.mesh != nil && v.version != v.mesh.LocationsVersion())
}

// Rebuild recomputes the volume from the mesh now.
func (v *Volume) Rebuild() {
	v.valid = true
	if v.mesh == nil {
		v.box, v.sphere, v.version = math.NullBox, math.Sphere{}, 0
		return
	}
	v.box = v.mesh.BoundingBox()
	v.sphere = math.Sphere{Center: v.mesh.Centroid(), Radius: v.mesh.Radius()}
	v.version = v.mesh.LocationsVersion()
}

func (v *Volume) ensure() {
	if v.IsDirty() {
		v.Rebuild()
	}
}

// Box returns the padded local box.
func (v *Volume) Box() math.Box {
	v.ensure()
	if v.box.IsNull() {
		return v.box
	}
	return v.box.Pad(v.padding)
}

// Sphere returns the padded local sphere.
func (v *Volume) Sphere() math.Sphere {
	v.ensure()
	return v.sphere.Pad(v.padding)
}

// IsEmpty reports whether the volume encloses nothing.
func (v *Volume) IsEmpty() bool {
	return v.Box().IsNull()
}

// GlobalBox returns the box transformed to the global frame by the node's
// global transform.
func (v *Volume) GlobalBox(global math.Mat4) math.Box {
	return v.Box().Transform(global)
}

// GlobalSphere returns the sphere transformed to the global frame.
func (v *Volume) GlobalSphere(global math.Mat4) math.Sphere {
	return v.Sphere().Transform(global)
}

// IntersectsFrustum reports whether the volume, placed by global, may be
// visible in f. ShapeNone always intersects; an empty volume never does.
func (v *Volume) IntersectsFrustum(f Frustum, global math.Mat4) bool {
	switch v.shape {
	case ShapeNone:
		return true
	case ShapeSphere:
		if v.IsEmpty() {
			return false
		}
		return f.IntersectsSphere(v.GlobalSphere(global))
	default:
		return f.IntersectsBox(v.GlobalBox(global))
	}
}

// IntersectsRay reports whether a global-frame ray hits the volume at or
// in front of its start.
func (v *Volume) IntersectsRay(ray math.Ray, global math.Mat4) bool {
	switch v.shape {
	case ShapeNone:
		return true
	case ShapeSphere:
		if v.IsEmpty() {
			return false
		}
		return !ray.IntersectSphere(v.GlobalSphere(global)).IsNull()
	default:
		return !ray.IntersectBox(v.GlobalBox(global)).IsNull()
	}
}

// Contains reports whether local point p lies inside the volume.
func (v *Volume) Contains(p math.Vec3) bool {
	switch v.shape {
	case ShapeSphere:
		return !v.IsEmpty() && v.Sphere().Contains(p)
	case ShapeBox:
		return v.Box().Contains(p)
	}
	return true
}
