package material

import (
	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/engine/lighting"
	"github.com/Faultbox/retain3d/pkg/math"
)

// Environment is what the draw pipeline reports to a Program for one
// node: matrices, surface colors, lights and texture units.
type Environment struct {
	Model      math.Mat4
	View       math.Mat4
	Projection math.Mat4

	// CameraLocation is the camera position in world space.
	CameraLocation math.Vec3

	// Material is nil for nodes drawn with a pure color.
	Material  *Material
	PureColor math.Color

	Lights       *lighting.Buffer
	RenderState  gpu.RenderState
	TextureUnits int
}

// ModelView returns View · Model.
func (e *Environment) ModelView() math.Mat4 {
	return e.View.Mul(e.Model)
}

// ViewProjection returns Projection · View.
func (e *Environment) ViewProjection() math.Mat4 {
	return e.Projection.Mul(e.View)
}

// MVP returns Projection · View · Model.
func (e *Environment) MVP() math.Mat4 {
	return e.Projection.Mul(e.View.Mul(e.Model))
}

// ModelInverse returns the inverse model matrix, or identity when it is
// singular.
func (e *Environment) ModelInverse() math.Mat4 {
	return inverseOrIdentity(e.Model)
}

// ViewInverse returns the camera's global transform.
func (e *Environment) ViewInverse() math.Mat4 {
	return inverseOrIdentity(e.View)
}

// ProjectionInverse returns the inverse projection.
func (e *Environment) ProjectionInverse() math.Mat4 {
	return inverseOrIdentity(e.Projection)
}

// ModelViewInverse returns the inverse model-view matrix.
func (e *Environment) ModelViewInverse() math.Mat4 {
	return inverseOrIdentity(e.ModelView())
}

// MVPInverse returns the inverse model-view-projection matrix.
func (e *Environment) MVPInverse() math.Mat4 {
	return inverseOrIdentity(e.MVP())
}

// ModelTranspose returns the transposed model matrix.
func (e *Environment) ModelTranspose() math.Mat4 { return e.Model.Transpose() }

// ModelViewTranspose returns the transposed model-view matrix.
func (e *Environment) ModelViewTranspose() math.Mat4 { return e.ModelView().Transpose() }

// MVPTranspose returns the transposed model-view-projection matrix.
func (e *Environment) MVPTranspose() math.Mat4 { return e.MVP().Transpose() }

// NormalMatrix transforms normals into eye space: the inverse transpose of
// the model-view rotation and scale, with the translation dropped.
func (e *Environment) NormalMatrix() math.Mat4 {
	mv := e.ModelView()
	inv := inverseOrIdentity(math.FromMat3x3(mv.Mat3x3()))
	return inv.Transpose()
}

// NormalScaling resolves NormalScalingAuto against the model matrix:
// rescaling suffices under uniform scale.
func (e *Environment) NormalScaling() gpu.NormalScaling {
	ns := e.RenderState.NormalScaling
	if ns != gpu.NormalScalingAuto {
		return ns
	}
	s := e.Model.ScaleFactors()
	switch {
	case s.ApproxEqual(math.Vec3{X: 1, Y: 1, Z: 1}, 1e-6):
		return gpu.NormalScalingNone
	case math.ApproxEqual(s.X, s.Y, 1e-6) && math.ApproxEqual(s.Y, s.Z, 1e-6):
		return gpu.NormalScalingRescale
	default:
		return gpu.NormalScalingNormalize
	}
}

// Color returns the diffuse color of the material, or the pure color.
func (e *Environment) Color() math.Color {
	if e.Material != nil {
		return e.Material.Diffuse
	}
	return e.PureColor
}

// Opacity returns the alpha the surface is drawn with.
func (e *Environment) Opacity() float32 {
	return e.Color().A
}

// LightCount returns the number of enabled lights.
func (e *Environment) LightCount() int {
	if e.Lights == nil {
		return 0
	}
	return e.Lights.Len()
}

func inverseOrIdentity(m math.Mat4) math.Mat4 {
	inv, ok := m.Inverse()
	if !ok {
		return math.Identity()
	}
	return inv
}
