package node

import (
	"errors"

	"github.com/Faultbox/retain3d/internal/engine/bounds"
	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/engine/material"
	"github.com/Faultbox/retain3d/internal/engine/mesh"
	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/pkg/math"
)

// Drawable is the content of a mesh node: a shared mesh, its material,
// the pipeline state it is drawn with and the volume it is culled by.
type Drawable struct {
	node *Node

	mesh         *mesh.Mesh
	material     *material.Material
	ownsMaterial bool
	volume       *bounds.Volume

	// PureColor is drawn when there is no material.
	PureColor   math.Color
	RenderState gpu.RenderState
	// ZOrder orders translucent nodes: higher values draw later, whatever
	// their distance to the camera.
	ZOrder int
}

// NewMeshNode returns a node drawing m, bounded by a sphere around its
// vertices.
func NewMeshNode(name string, m *mesh.Mesh) *Node {
	n := New(name)
	n.drawable = &Drawable{
		node:        n,
		mesh:        m,
		volume:      bounds.NewVolume(bounds.ShapeSphere, m),
		PureColor:   math.ColorWhite,
		RenderState: gpu.DefaultRenderState(),
	}
	return n
}

// Drawable returns the content of n, or nil for a structural node.
func (n *Node) Drawable() *Drawable { return n.drawable }

// Node returns the node carrying d.
func (d *Drawable) Node() *Node { return d.node }

// Mesh returns the mesh, which may be shared with other nodes.
func (d *Drawable) Mesh() *mesh.Mesh { return d.mesh }

// SetMesh replaces the mesh and rebuilds the bounding volume from it.
func (d *Drawable) SetMesh(m *mesh.Mesh) {
	d.mesh = m
	d.volume.SetMesh(m)
}

// Material returns the material, or nil.
func (d *Drawable) Material() *material.Material { return d.material }

// SetMaterial shares m with other users. Copying the node shares it too.
func (d *Drawable) SetMaterial(m *material.Material) {
	d.material, d.ownsMaterial = m, false
}

// SetOwnedMaterial gives d its own material. Copying the node copies it.
func (d *Drawable) SetOwnedMaterial(m *material.Material) {
	d.material, d.ownsMaterial = m, m != nil
}

// OwnsMaterial reports whether the material belongs to d alone.
func (d *Drawable) OwnsMaterial() bool { return d.ownsMaterial }

// BoundingVolume returns the culling and picking volume.
func (d *Drawable) BoundingVolume() *bounds.Volume { return d.volume }

// SetBoundingVolume replaces the volume. Nil means never culled.
func (d *Drawable) SetBoundingVolume(v *bounds.Volume) {
	if v == nil {
		v = bounds.NewVolume(bounds.ShapeNone, d.mesh)
	}
	d.volume = v
}

// BoundingVolumePadding returns the distance the volume is grown by.
func (d *Drawable) BoundingVolumePadding() float32 { return d.volume.Padding() }

// SetBoundingVolumePadding grows the volume by p on every side.
func (d *Drawable) SetBoundingVolumePadding(p float32) { d.volume.SetPadding(p) }

// HasLocalContent reports whether there is anything to draw.
func (d *Drawable) HasLocalContent() bool {
	return d.mesh != nil && d.mesh.VertexCount() > 0
}

// Color returns the diffuse color of the material, or the pure color.
func (d *Drawable) Color() math.Color {
	if d.material != nil {
		return d.material.Diffuse
	}
	return d.PureColor
}

// Opacity returns the alpha the node draws with.
func (d *Drawable) Opacity() float32 { return d.Color().A }

// SetOpacity sets the alpha of the material, or of the pure color. A
// shared material changes for every node using it.
func (d *Drawable) SetOpacity(a float32) {
	if d.material != nil {
		d.material.SetOpacity(a)
		return
	}
	d.PureColor.A = math.Clamp(a, 0, 1)
}

// IsOpaque reports whether the node hides what is behind it.
func (d *Drawable) IsOpaque() bool {
	if d.material != nil {
		return d.material.IsOpaque()
	}
	return d.PureColor.A >= 1
}

// Program returns the material's program, or nil for the pipeline default.
func (d *Drawable) Program() material.Program {
	if d.material == nil {
		return nil
	}
	return d.material.Program
}

// GlobalBoundingBox returns the bounding box in the root's frame.
func (d *Drawable) GlobalBoundingBox() math.Box {
	return d.volume.GlobalBox(d.node.TransformMatrix())
}

// Upload puts the mesh and material on the GPU. Allocation failures fall
// back to client memory and are not returned.
func (d *Drawable) Upload(ctx *gpu.Context) error {
	if d.mesh != nil {
		if err := d.mesh.Upload(ctx); err != nil {
			return err
		}
	}
	if d.material != nil {
		if err := d.material.Upload(ctx); err != nil && !isResource(err) {
			return err
		}
	}
	return nil
}

func isResource(err error) bool {
	return errors.Is(err, errs.ErrResource)
}
