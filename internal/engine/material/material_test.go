package material

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/engine/lighting"
	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/pkg/math"
)

// tgaHeader returns an 18-byte true-color header.
func tgaHeader(imageType byte, w, h int, bpp byte, topDown bool) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	if topDown {
		hdr[17] = 0x20
	}
	return hdr
}

func TestDecodeTGAUncompressedBottomUp(t *testing.T) {
	data := tgaHeader(tgaUncompressed, 2, 2, 32, false)
	// BGRA, bottom row first.
	data = append(data,
		0, 0, 255, 255, 0, 255, 0, 255, // bottom: red, green
		255, 0, 0, 255, 255, 255, 255, 128, // top: blue, translucent white
	)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 255, 255, 128}, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, img.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, img.RGBAAt(1, 1))
}

func TestDecodeTGARLE(t *testing.T) {
	data := tgaHeader(tgaRLE, 3, 1, 24, true)
	data = append(data,
		0x81, 10, 20, 30, // run of two
		0x00, 1, 2, 3, // one raw pixel
	)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{30, 20, 10, 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{30, 20, 10, 255}, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{3, 2, 1, 255}, img.RGBAAt(2, 0))
}

func TestDecodeTGAErrors(t *testing.T) {
	_, err := DecodeTGA([]byte{1, 2})
	assert.Error(t, err)

	_, err = DecodeTGA(tgaHeader(3, 1, 1, 8, false))
	assert.ErrorContains(t, err, "unsupported image type")

	_, err = DecodeTGA(tgaHeader(tgaUncompressed, 2, 2, 32, false))
	assert.ErrorContains(t, err, "truncated")

	_, err = DecodeTGA(append(tgaHeader(tgaRLE, 4, 1, 24, true), 0x83))
	assert.ErrorContains(t, err, "truncated")
}

func checker() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 255, 255})
	img.SetRGBA(1, 0, color.RGBA{10, 20, 30, 255})
	img.SetRGBA(0, 1, color.RGBA{10, 20, 30, 255})
	img.SetRGBA(1, 1, color.RGBA{250, 4, 251, 255})
	return img
}

func TestDecodeTextureFormats(t *testing.T) {
	var pngData, bmpData bytes.Buffer
	require.NoError(t, png.Encode(&pngData, checker()))
	require.NoError(t, bmp.Encode(&bmpData, checker()))

	for name, data := range map[string][]byte{
		"checker.png": pngData.Bytes(),
		"checker.bmp": bmpData.Bytes(),
	} {
		tex, err := DecodeTexture(name, data)
		require.NoError(t, err, name)
		w, h := tex.Size()
		assert.Equal(t, 2, w, name)
		assert.Equal(t, 2, h, name)
		assert.Equal(t, color.RGBA{10, 20, 30, 255}, tex.Image().RGBAAt(1, 0), name)
		assert.False(t, tex.IsTranslucent(), name)
	}

	_, err := DecodeTexture("junk.png", []byte("not an image"))
	assert.Error(t, err)
}

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprite.tga")
	data := append(tgaHeader(tgaUncompressed, 1, 1, 24, false), 1, 2, 3)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	tex, err := LoadTexture(path)
	require.NoError(t, err)
	assert.Equal(t, "sprite.tga", tex.Name())
	assert.Equal(t, color.RGBA{3, 2, 1, 255}, tex.Image().RGBAAt(0, 0))

	_, err = LoadTexture(filepath.Join(t.TempDir(), "missing.tga"))
	assert.Error(t, err)
}

func TestApplyColorKey(t *testing.T) {
	tex := NewTexture("checker", checker())
	require.False(t, tex.IsTranslucent())

	tex.ApplyColorKey(color.RGBA{255, 0, 255, 255}, 8)

	assert.True(t, tex.IsTranslucent())
	assert.Equal(t, color.RGBA{}, tex.Image().RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, tex.Image().RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, tex.Image().RGBAAt(1, 0))
}

func TestTextureUpload(t *testing.T) {
	rec := gpu.NewRecorder()
	ctx := gpu.NewContext(rec)
	tex := NewTexture("checker", checker())

	require.NoError(t, tex.Upload(ctx))
	id := tex.ID()
	assert.NotZero(t, id)
	assert.Equal(t, 1, rec.TextureCount())

	// Uploading again keeps the texture.
	require.NoError(t, tex.Upload(ctx))
	assert.Equal(t, id, tex.ID())

	tex.ReleaseImage()
	assert.Nil(t, tex.Image())

	tex.Delete(ctx)
	assert.Zero(t, tex.ID())
	assert.Zero(t, rec.TextureCount())
}

func TestTextureUploadFailure(t *testing.T) {
	rec := gpu.NewRecorder()
	rec.FailTextureAllocation = true
	tex := NewTexture("checker", checker())

	err := tex.Upload(gpu.NewContext(rec))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrResource))
	assert.Zero(t, tex.ID())

	// Images are kept until the GPU holds them.
	tex.ReleaseImage()
	assert.NotNil(t, tex.Image())
}

func TestMaterialOpacity(t *testing.T) {
	m := New("stone")
	assert.True(t, m.IsOpaque())
	assert.Equal(t, float32(1), m.Opacity())

	m.SetOpacity(0.5)
	assert.False(t, m.IsOpaque())
	assert.Equal(t, gpu.BlendSrcAlpha, m.SourceBlend)
	assert.Equal(t, gpu.BlendOneMinusSrcAlpha, m.DestinationBlend)
	assert.Equal(t, float32(0.5), m.Ambient.A)
	assert.Equal(t, float32(0.5), m.Emission.A)

	m.SetOpacity(1)
	assert.True(t, m.IsOpaque())

	m.SetOpacity(2)
	assert.Equal(t, float32(1), m.Opacity())
}

func TestMaterialTranslucentTexture(t *testing.T) {
	tex := NewTexture("checker", checker())
	tex.ApplyColorKey(color.RGBA{255, 0, 255, 255}, 0)

	m := New("leaves")
	m.AddTexture(tex)
	assert.False(t, m.IsOpaque())
	assert.Same(t, tex, m.Texture(0))
	assert.Nil(t, m.Texture(1))

	// Full opacity keeps blending for the texture's alpha.
	m.SetOpacity(1)
	assert.False(t, m.IsOpaque())
}

func TestMaterialApply(t *testing.T) {
	rec := gpu.NewRecorder()
	ctx := gpu.NewContext(rec)

	m := NewWithColor("glass", math.Color{R: 0.2, G: 0.4, B: 1, A: 0.25})
	m.AddTexture(NewTexture("a", checker()))
	m.AddTexture(NewTexture("b", checker()))
	require.NoError(t, m.Upload(ctx))

	n := m.Apply(ctx)
	assert.Equal(t, 2, n)
	assert.True(t, rec.Caps[gpu.Blend])
	assert.Equal(t, gpu.BlendSrcAlpha, rec.BlendSrc)
	assert.Equal(t, m.Textures[0].ID(), rec.Texture(0))
	assert.Equal(t, m.Textures[1].ID(), rec.Texture(1))

	opaque := New("stone")
	assert.Zero(t, opaque.Apply(ctx))
	assert.False(t, rec.Caps[gpu.Blend])
}

func TestMaterialCopy(t *testing.T) {
	prog := NewBasicProgram("lit", 7)
	m := New("stone")
	m.Shininess = 16
	m.Program = prog
	m.AddTexture(NewTexture("a", checker()))

	cp := m.Copy()
	require.NotSame(t, m, cp)
	assert.Equal(t, "stone", cp.Name)
	assert.Equal(t, float32(16), cp.Shininess)
	assert.Equal(t, m.Diffuse, cp.Diffuse)
	assert.Same(t, prog, cp.Program)
	assert.Same(t, m.Textures[0], cp.Textures[0])

	cp.Diffuse = math.ColorRed
	cp.Textures[0] = nil
	assert.NotEqual(t, math.ColorRed, m.Diffuse)
	assert.NotNil(t, m.Textures[0])
}

func TestEnvironmentMatrices(t *testing.T) {
	env := &Environment{
		Model:      math.Translate(math.Vec3{X: 1, Y: 2, Z: 3}).Mul(math.Scale(math.Vec3{X: 2, Y: 2, Z: 2})),
		View:       math.Translate(math.Vec3{Z: -10}),
		Projection: math.Perspective(math.DegToRad(60), 1, 1, 100),
	}

	p := math.Vec3{X: 1, Y: -1, Z: 0.5}
	mvp := env.MVP()
	assert.True(t, mvp.ApproxEqual(env.Projection.Mul(env.ModelView()), 1e-5))
	assert.True(t, env.MVPInverse().Mul(mvp).ApproxEqual(math.Identity(), 1e-4))
	assert.True(t, env.ModelInverse().TransformPoint(env.Model.TransformPoint(p)).ApproxEqual(p, 1e-5))
	assert.True(t, env.ViewInverse().Translation().ApproxEqual(math.Vec3{Z: 10}, 1e-5))
	assert.True(t, env.ModelTranspose().Transpose().ApproxEqual(env.Model, 0))

	// Uniform scale 2: normals shrink by half and need rescaling only.
	n := env.NormalMatrix().TransformDirection(math.Vec3{Y: 1})
	assert.InDelta(t, 0.5, n.Y, 1e-5)
	assert.Equal(t, gpu.NormalScalingRescale, env.NormalScaling())

	env.Model = math.Scale(math.Vec3{X: 1, Y: 3, Z: 1})
	assert.Equal(t, gpu.NormalScalingNormalize, env.NormalScaling())
	env.Model = math.Identity()
	assert.Equal(t, gpu.NormalScalingNone, env.NormalScaling())
	env.RenderState.NormalScaling = gpu.NormalScalingNormalize
	assert.Equal(t, gpu.NormalScalingNormalize, env.NormalScaling())
}

func TestEnvironmentColor(t *testing.T) {
	env := &Environment{PureColor: math.Color{R: 1, A: 0.5}}
	assert.Equal(t, float32(0.5), env.Opacity())
	assert.Zero(t, env.LightCount())

	env.Material = NewWithColor("m", math.ColorGreen)
	assert.Equal(t, math.ColorGreen, env.Color())
	assert.Equal(t, float32(1), env.Opacity())
}

func TestBasicProgramSceneUniformsOncePerFrame(t *testing.T) {
	rec := gpu.NewRecorder()
	ctx := gpu.NewContext(rec)
	prog := NewBasicProgram("lit", 3)

	lights := lighting.NewBuffer()
	lights.Add(lighting.NewSun(0, 45))

	env := &Environment{
		Model:        math.Identity(),
		View:         math.Translate(math.Vec3{Z: -5}),
		Projection:   math.Identity(),
		Material:     New("stone"),
		Lights:       lights,
		RenderState:  gpu.DefaultRenderState(),
		TextureUnits: 2,
	}
	require.NoError(t, prog.Bind(ctx, env))
	assert.Equal(t, uint32(3), rec.Program())

	view, ok := rec.Uniform(3, UniformView)
	require.True(t, ok)
	assert.Equal(t, env.View, view)
	count, _ := rec.Uniform(3, UniformLightCount)
	assert.Equal(t, int32(1), count)
	lit, _ := rec.Uniform(3, UniformLit)
	assert.Equal(t, int32(1), lit)
	sampler, _ := rec.Uniform(3, UniformTexture(1))
	assert.Equal(t, int32(1), sampler)

	// A second node in the same frame only gets node uniforms.
	env.View = math.Identity()
	env.Model = math.Translate(math.Vec3{X: 1})
	require.NoError(t, prog.Bind(ctx, env))
	view, _ = rec.Uniform(3, UniformView)
	assert.Equal(t, math.Translate(math.Vec3{Z: -5}), view)
	model, _ := rec.Uniform(3, UniformModel)
	assert.Equal(t, env.Model, model)

	ctx.ResetFrame()
	require.NoError(t, prog.Bind(ctx, env))
	view, _ = rec.Uniform(3, UniformView)
	assert.Equal(t, math.Identity(), view)
}

func TestBasicProgramPureColor(t *testing.T) {
	rec := gpu.NewRecorder()
	ctx := gpu.NewContext(rec)
	prog := NewBasicProgram("flat", 4)

	env := &Environment{Model: math.Identity(), View: math.Identity(), Projection: math.Identity(), PureColor: math.ColorRed}
	require.NoError(t, prog.Bind(ctx, env))
	diffuse, _ := rec.Uniform(4, UniformDiffuse)
	assert.Equal(t, math.ColorRed.Vec4(), diffuse)
	lit, _ := rec.Uniform(4, UniformLit)
	assert.Equal(t, int32(0), lit)

	assert.Error(t, NewBasicProgram("unlinked", 0).Bind(ctx, env))
}
