// Package material describes surface appearance: colors, blending,
// textures and the program that draws with them.
package material

import (
	"slices"

	"github.com/jinzhu/copier"

	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/pkg/math"
)

// DefaultShininess is the specular exponent of a new material.
const DefaultShininess = 0

// Material holds the lighting colors, blend factors, textures and
// program of a surface. Materials may be shared between nodes.
type Material struct {
	Name string

	Ambient  math.Color
	Diffuse  math.Color
	Specular math.Color
	Emission math.Color

	Shininess    float32
	Reflectivity float32

	SourceBlend      gpu.BlendFactor
	DestinationBlend gpu.BlendFactor

	// Textures holds one texture per unit, in unit order.
	Textures []*Texture

	// Program draws surfaces using this material. Nil selects the
	// drawing pipeline's default program.
	Program Program
}

// New returns an opaque material with the fixed-function defaults.
func New(name string) *Material {
	return &Material{
		Name:             name,
		Ambient:          math.Color{R: 0.2, G: 0.2, B: 0.2, A: 1},
		Diffuse:          math.Color{R: 0.8, G: 0.8, B: 0.8, A: 1},
		Specular:         math.ColorBlack,
		Emission:         math.ColorBlack,
		Shininess:        DefaultShininess,
		SourceBlend:      gpu.BlendOne,
		DestinationBlend: gpu.BlendZero,
	}
}

// NewWithColor returns an opaque material whose ambient and diffuse
// colors are c.
func NewWithColor(name string, c math.Color) *Material {
	m := New(name)
	m.Ambient, m.Diffuse = c, c
	m.SetOpacity(c.A)
	return m
}

// Opacity returns the diffuse alpha.
func (m *Material) Opacity() float32 { return m.Diffuse.A }

// SetOpacity sets the alpha of every color. Opacity below one switches an
// opaque material to alpha blending; full opacity switches it back unless
// a texture needs blending.
func (m *Material) SetOpacity(a float32) {
	a = math.Clamp(a, 0, 1)
	m.Ambient.A, m.Diffuse.A, m.Specular.A, m.Emission.A = a, a, a, a
	switch {
	case a < 1 && m.IsOpaque():
		m.SetBlend(gpu.BlendSrcAlpha, gpu.BlendOneMinusSrcAlpha)
	case a == 1 && !m.hasTranslucentTexture() && m.SourceBlend == gpu.BlendSrcAlpha:
		m.SetBlend(gpu.BlendOne, gpu.BlendZero)
	}
}

// SetBlend sets the source and destination blend factors.
func (m *Material) SetBlend(src, dst gpu.BlendFactor) {
	m.SourceBlend, m.DestinationBlend = src, dst
}

// IsOpaque reports whether the material replaces what is behind it.
func (m *Material) IsOpaque() bool {
	return m.SourceBlend == gpu.BlendOne && m.DestinationBlend == gpu.BlendZero
}

func (m *Material) hasTranslucentTexture() bool {
	for _, t := range m.Textures {
		if t != nil && t.IsTranslucent() {
			return true
		}
	}
	return false
}

// AddTexture appends t on the next unit. A translucent texture turns on
// alpha blending.
func (m *Material) AddTexture(t *Texture) {
	m.Textures = append(m.Textures, t)
	if t.IsTranslucent() && m.IsOpaque() {
		m.SetBlend(gpu.BlendSrcAlpha, gpu.BlendOneMinusSrcAlpha)
	}
}

// Texture returns the texture of unit, or nil.
func (m *Material) Texture(unit int) *Texture {
	if unit < 0 || unit >= len(m.Textures) {
		return nil
	}
	return m.Textures[unit]
}

// TextureCount returns the number of texture units in use.
func (m *Material) TextureCount() int {
	return min(len(m.Textures), gpu.MaxTextureUnits)
}

// Apply pushes the blend state and binds the textures, returning the
// number of units bound. Units beyond the material's textures are left
// alone; the mesh draw disables their coordinates.
func (m *Material) Apply(ctx *gpu.Context) int {
	opaque := m.IsOpaque()
	ctx.SetCapability(gpu.Blend, !opaque)
	if !opaque {
		ctx.SetBlendFunc(m.SourceBlend, m.DestinationBlend)
	}
	n := m.TextureCount()
	for unit := 0; unit < n; unit++ {
		var id uint32
		if t := m.Textures[unit]; t != nil {
			id = t.ID()
		}
		ctx.BindTexture(unit, id)
	}
	return n
}

// Upload uploads every texture that is not on the GPU yet.
func (m *Material) Upload(ctx *gpu.Context) error {
	for _, t := range m.Textures {
		if t == nil {
			continue
		}
		if err := t.Upload(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Copy returns a copy that can be changed without affecting m. Textures
// and the program are shared.
func (m *Material) Copy() *Material {
	out := &Material{}
	if err := copier.Copy(out, m); err != nil {
		// copier only fails on mismatched kinds, which two values of one
		// struct type cannot have.
		panic(err)
	}
	out.Textures = slices.Clone(m.Textures)
	out.Program = m.Program
	return out
}
