// Package camera provides the camera node and camera controllers.
package camera

import (
	"github.com/Faultbox/retain3d/internal/engine/bounds"
	"github.com/Faultbox/retain3d/internal/engine/node"
	"github.com/Faultbox/retain3d/pkg/math"
)

// Default projection parameters.
const (
	DefaultFieldOfView = 45
	DefaultNearClip    = 1
	DefaultFarClip     = 1000
)

// Camera is a node that views the scene along its -Z axis.
type Camera struct {
	*node.Node

	fieldOfView float32
	orthoHeight float32
	near, far   float32
	viewport    math.Viewport

	projection      math.Mat4
	projectionDirty bool

	frustum       bounds.Frustum
	frustumGlobal math.Mat4
	frustumValid  bool
}

// New returns a perspective camera with the default projection and a
// 1x1 viewport.
func New(name string) *Camera {
	return &Camera{
		Node:            node.New(name),
		fieldOfView:     DefaultFieldOfView,
		near:            DefaultNearClip,
		far:             DefaultFarClip,
		viewport:        math.Viewport{Width: 1, Height: 1},
		projectionDirty: true,
	}
}

// FieldOfView returns the vertical field of view in degrees.
func (c *Camera) FieldOfView() float32 { return c.fieldOfView }

// SetFieldOfView sets the vertical field of view in degrees.
func (c *Camera) SetFieldOfView(deg float32) {
	c.fieldOfView = math.Clamp(deg, 1, 179)
	c.projectionDirty = true
}

// SetOrthographic switches to a parallel projection showing height units
// vertically. Zero switches back to perspective.
func (c *Camera) SetOrthographic(height float32) {
	c.orthoHeight = max(height, 0)
	c.projectionDirty = true
}

// IsOrthographic reports whether the projection is parallel.
func (c *Camera) IsOrthographic() bool { return c.orthoHeight > 0 }

// Clip returns the near and far clip distances.
func (c *Camera) Clip() (near, far float32) { return c.near, c.far }

// SetClip sets the near and far clip distances.
func (c *Camera) SetClip(near, far float32) {
	c.near, c.far = near, far
	c.projectionDirty = true
}

// Viewport returns the viewport.
func (c *Camera) Viewport() math.Viewport { return c.viewport }

// SetViewport sets the viewport and with it the aspect ratio.
func (c *Camera) SetViewport(vp math.Viewport) {
	if vp == c.viewport {
		return
	}
	c.viewport = vp
	c.projectionDirty = true
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math.Mat4 {
	if c.projectionDirty {
		aspect := c.viewport.Aspect()
		if c.IsOrthographic() {
			h := c.orthoHeight / 2
			w := h * aspect
			c.projection = math.Ortho(-w, w, -h, h, c.near, c.far)
		} else {
			c.projection = math.Perspective(math.DegToRad(c.fieldOfView), aspect, c.near, c.far)
		}
		c.projectionDirty = false
		c.frustumValid = false
	}
	return c.projection
}

// ViewMatrix returns the inverse of the camera's global transform.
func (c *Camera) ViewMatrix() math.Mat4 {
	return c.InverseTransformMatrix()
}

// ViewProjectionMatrix returns Projection · View.
func (c *Camera) ViewProjectionMatrix() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Frustum returns the clip planes in the global frame. They are rebuilt
// when the projection or the camera's global transform changed.
func (c *Camera) Frustum() bounds.Frustum {
	proj := c.ProjectionMatrix()
	g := c.TransformMatrix()
	if !c.frustumValid || g != c.frustumGlobal {
		c.frustum = bounds.NewFrustum(proj.Mul(c.ViewMatrix()))
		c.frustumGlobal = g
		c.frustumValid = true
	}
	return c.frustum
}

// ScreenRay returns the global ray through viewport pixel (x, y), with the
// origin at the lower left, starting on the near plane.
func (c *Camera) ScreenRay(x, y float32) math.Ray {
	vp := c.viewport
	ndcX := 2*(x-float32(vp.X))/float32(vp.Width) - 1
	ndcY := 2*(y-float32(vp.Y))/float32(vp.Height) - 1

	inv, ok := c.ViewProjectionMatrix().Inverse()
	if !ok {
		return math.Ray{Start: c.GlobalLocation(), Direction: c.GlobalForward()}
	}
	near := inv.MulVec4(math.Vec4{X: ndcX, Y: ndcY, Z: -1, W: 1}).Homogenize().XYZ()
	far := inv.MulVec4(math.Vec4{X: ndcX, Y: ndcY, Z: 1, W: 1}).Homogenize().XYZ()
	return math.Ray{Start: near, Direction: far.Sub(near).Normalize()}
}

// Project returns the viewport pixel of global point p, with the origin
// at the lower left, and its depth in [0, 1]. Points behind the camera
// yield math.NullVec3.
func (c *Camera) Project(p math.Vec3) math.Vec3 {
	clip := c.ViewProjectionMatrix().MulVec4(p.Vec4(1))
	if clip.W <= 0 {
		return math.NullVec3
	}
	ndc := clip.Homogenize()
	vp := c.viewport
	return math.Vec3{
		X: float32(vp.X) + (ndc.X+1)/2*float32(vp.Width),
		Y: float32(vp.Y) + (ndc.Y+1)/2*float32(vp.Height),
		Z: (ndc.Z + 1) / 2,
	}
}
