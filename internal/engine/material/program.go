package material

import (
	"fmt"

	"github.com/Faultbox/retain3d/internal/engine/gpu"
)

// Program is the drawing context bound once per drawn node per frame. It
// reads what it needs from the environment and pushes it to the GPU.
type Program interface {
	Name() string
	// ID is the GPU program object. Zero means no program.
	ID() uint32
	Bind(ctx *gpu.Context, env *Environment) error
}

// Uniform names used by BasicProgram.
const (
	UniformModel         = "u_model"
	UniformView          = "u_view"
	UniformProjection    = "u_projection"
	UniformMVP           = "u_mvp"
	UniformNormalMatrix  = "u_normalMatrix"
	UniformNormalScaling = "u_normalScaling"
	UniformCamera        = "u_cameraPos"

	UniformAmbient      = "u_ambient"
	UniformDiffuse      = "u_diffuse"
	UniformSpecular     = "u_specular"
	UniformEmission     = "u_emission"
	UniformShininess    = "u_shininess"
	UniformReflectivity = "u_reflectivity"
	UniformOpacity      = "u_opacity"
	UniformLit          = "u_lit"
	UniformSmooth       = "u_smooth"

	UniformLightCount        = "u_lightCount"
	UniformLightPositions    = "u_lightPositions"
	UniformLightColors       = "u_lightColors"
	UniformLightAttenuations = "u_lightAttenuations"

	UniformTextureCount = "u_textureCount"
)

// UniformTexture returns the sampler uniform name of unit.
func UniformTexture(unit int) string {
	return fmt.Sprintf("u_texture%d", unit)
}

// BasicProgram pushes the environment as plain uniforms. Scene-scope
// uniforms (view, projection, camera and lights) are sent once per frame
// per program; the rest once per node.
type BasicProgram struct {
	name string
	id   uint32
}

// NewBasicProgram wraps the GPU program id.
func NewBasicProgram(name string, id uint32) *BasicProgram {
	return &BasicProgram{name: name, id: id}
}

func (p *BasicProgram) Name() string { return p.name }

func (p *BasicProgram) ID() uint32 { return p.id }

// Bind makes p current and pushes env.
func (p *BasicProgram) Bind(ctx *gpu.Context, env *Environment) error {
	if p.id == 0 {
		return fmt.Errorf("program %q is not linked", p.name)
	}
	ctx.UseProgram(p.id)

	if ctx.SceneUniformsDirty(p.id) {
		ctx.SetUniformMat4(UniformView, env.View)
		ctx.SetUniformMat4(UniformProjection, env.Projection)
		ctx.SetUniformVec3(UniformCamera, env.CameraLocation)
		ctx.SetUniformInt(UniformLightCount, int32(env.LightCount()))
		if env.LightCount() > 0 {
			ctx.SetUniformFloats(UniformLightPositions, env.Lights.Positions())
			ctx.SetUniformFloats(UniformLightColors, env.Lights.Diffuse())
			ctx.SetUniformFloats(UniformLightAttenuations, env.Lights.Attenuations())
		}
		ctx.MarkSceneUniformsClean(p.id)
	}

	ctx.SetUniformMat4(UniformModel, env.Model)
	ctx.SetUniformMat4(UniformMVP, env.MVP())
	ctx.SetUniformMat4(UniformNormalMatrix, env.NormalMatrix())
	ctx.SetUniformInt(UniformNormalScaling, int32(env.NormalScaling()))
	ctx.SetUniformInt(UniformSmooth, boolInt(env.RenderState.SmoothShading))

	if m := env.Material; m != nil {
		ctx.SetUniformColor(UniformAmbient, m.Ambient)
		ctx.SetUniformColor(UniformDiffuse, m.Diffuse)
		ctx.SetUniformColor(UniformSpecular, m.Specular)
		ctx.SetUniformColor(UniformEmission, m.Emission)
		ctx.SetUniformFloat(UniformShininess, m.Shininess)
		ctx.SetUniformFloat(UniformReflectivity, m.Reflectivity)
		ctx.SetUniformInt(UniformLit, boolInt(env.LightCount() > 0))
	} else {
		ctx.SetUniformColor(UniformDiffuse, env.PureColor)
		ctx.SetUniformInt(UniformLit, 0)
	}
	ctx.SetUniformFloat(UniformOpacity, env.Opacity())

	ctx.SetUniformInt(UniformTextureCount, int32(env.TextureUnits))
	for unit := 0; unit < env.TextureUnits; unit++ {
		ctx.SetUniformInt(UniformTexture(unit), int32(unit))
	}
	return nil
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
