// Package glbackend implements gpu.Backend on OpenGL 4.1 core.
package glbackend

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/logger"
	"github.com/Faultbox/retain3d/pkg/math"
)

type uniform struct {
	loc int32
	typ uint32
}

// Backend drives the current OpenGL context. Core profiles have no client
// vertex arrays, so client memory is streamed through scratch buffers.
//
// It must be created and used on the goroutine owning the GL context.
type Backend struct {
	vao      uint32
	streams  [gpu.NumSemantics]uint32
	indexBuf uint32

	bound      [2]uint32
	activeUnit uint32
	textures   map[uint32]uint32
	uniforms   map[uint32]map[string]uniform
}

// New initializes the OpenGL bindings and the vertex array object. It must
// be called after the GL context was made current.
func New() (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	b := &Backend{
		textures: make(map[uint32]uint32),
		uniforms: make(map[uint32]map[string]uniform),
	}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.DepthFunc(gl.LEQUAL)
	return b, nil
}

// Close releases the objects created by the backend.
func (b *Backend) Close() {
	for _, id := range b.streams {
		if id != 0 {
			gl.DeleteBuffers(1, &id)
		}
	}
	if b.indexBuf != 0 {
		gl.DeleteBuffers(1, &b.indexBuf)
	}
	gl.BindVertexArray(0)
	gl.DeleteVertexArrays(1, &b.vao)
	logger.Debug("GL backend closed")
}

func (b *Backend) GenBuffer() (uint32, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, fmt.Errorf("glGenBuffers: %s", glError())
	}
	return id, nil
}

func (b *Backend) BindBuffer(target gpu.BufferTarget, id uint32) {
	b.bound[target] = id
	gl.BindBuffer(bufferTarget(target), id)
}

func (b *Backend) BufferData(target gpu.BufferTarget, data []byte, usage gpu.Usage) error {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(bufferTarget(target), len(data), ptr, bufferUsage(usage))
	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		return fmt.Errorf("glBufferData: out of memory")
	} else if code != gl.NO_ERROR {
		return fmt.Errorf("glBufferData: error 0x%x", code)
	}
	return nil
}

func (b *Backend) BufferSubData(target gpu.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(bufferTarget(target), offset, len(data), gl.Ptr(data))
}

func (b *Backend) DeleteBuffer(id uint32) {
	for t, bound := range b.bound {
		if bound == id {
			b.bound[t] = 0
		}
	}
	gl.DeleteBuffers(1, &id)
}

func (b *Backend) EnableVertexAttribute(slot uint32) { gl.EnableVertexAttribArray(slot) }

func (b *Backend) DisableVertexAttribute(slot uint32) { gl.DisableVertexAttribArray(slot) }

func (b *Backend) VertexAttribPointer(slot uint32, size int32, typ gpu.ElementType, normalized bool, stride int32, offset int, data []byte) {
	if data == nil {
		gl.VertexAttribPointerWithOffset(slot, size, elementType(typ), normalized, stride, uintptr(offset))
		return
	}
	if b.streams[slot] == 0 {
		gl.GenBuffers(1, &b.streams[slot])
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.streams[slot])
	gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STREAM_DRAW)
	gl.VertexAttribPointerWithOffset(slot, size, elementType(typ), normalized, stride, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.bound[gpu.ArrayBuffer])
}

func (b *Backend) DrawArrays(mode gpu.DrawMode, first, count int32) {
	gl.DrawArrays(drawMode(mode), first, count)
}

func (b *Backend) DrawElements(mode gpu.DrawMode, count int32, typ gpu.ElementType, offset int, data []byte) {
	if data == nil {
		gl.DrawElementsWithOffset(drawMode(mode), count, elementType(typ), uintptr(offset))
		return
	}
	if b.indexBuf == 0 {
		gl.GenBuffers(1, &b.indexBuf)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.indexBuf)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STREAM_DRAW)
	gl.DrawElementsWithOffset(drawMode(mode), count, elementType(typ), 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.bound[gpu.ElementArrayBuffer])
}

func (b *Backend) CreateTexture(width, height int32, rgba []byte) (uint32, error) {
	var id uint32
	gl.GenTextures(1, &id)
	if id == 0 {
		return 0, fmt.Errorf("glGenTextures: %s", glError())
	}
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	err := gl.GetError()
	gl.BindTexture(gl.TEXTURE_2D, b.textures[b.activeUnit])
	if err != gl.NO_ERROR {
		gl.DeleteTextures(1, &id)
		return 0, fmt.Errorf("glTexImage2D %dx%d: error 0x%x", width, height, err)
	}
	return id, nil
}

func (b *Backend) DeleteTexture(id uint32) {
	for u, t := range b.textures {
		if t == id {
			b.textures[u] = 0
		}
	}
	gl.DeleteTextures(1, &id)
}

func (b *Backend) BindTexture(unit, id uint32) {
	if b.activeUnit != unit {
		gl.ActiveTexture(gl.TEXTURE0 + unit)
		b.activeUnit = unit
	}
	b.textures[unit] = id
	gl.BindTexture(gl.TEXTURE_2D, id)
}

func (b *Backend) UseProgram(id uint32) { gl.UseProgram(id) }

// uniform returns the location and type of name in program. Unknown names
// yield location -1, which GL ignores.
func (b *Backend) uniform(program uint32, name string) uniform {
	m, ok := b.uniforms[program]
	if !ok {
		m = activeUniforms(program)
		b.uniforms[program] = m
	}
	if u, ok := m[name]; ok {
		return u
	}
	return uniform{loc: -1}
}

func activeUniforms(program uint32) map[string]uniform {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	m := make(map[string]uniform, count)
	buf := make([]uint8, maxLen+1)
	for i := range uint32(count) {
		var length, size int32
		var typ uint32
		gl.GetActiveUniform(program, i, maxLen+1, &length, &size, &typ, &buf[0])
		name := strings.TrimSuffix(string(buf[:length]), "[0]")
		m[name] = uniform{loc: gl.GetUniformLocation(program, gl.Str(name+"\x00")), typ: typ}
	}
	logger.Debug("program uniforms", zap.Uint32("program", program), zap.Int("count", len(m)))
	return m
}

func (b *Backend) SetUniformMat4(program uint32, name string, m math.Mat4) {
	if u := b.uniform(program, name); u.loc >= 0 {
		gl.ProgramUniformMatrix4fv(program, u.loc, 1, false, m.Ptr())
	}
}

func (b *Backend) SetUniformVec3(program uint32, name string, v math.Vec3) {
	if u := b.uniform(program, name); u.loc >= 0 {
		gl.ProgramUniform3f(program, u.loc, v.X, v.Y, v.Z)
	}
}

func (b *Backend) SetUniformVec4(program uint32, name string, v math.Vec4) {
	if u := b.uniform(program, name); u.loc >= 0 {
		gl.ProgramUniform4f(program, u.loc, v.X, v.Y, v.Z, v.W)
	}
}

func (b *Backend) SetUniformFloat(program uint32, name string, f float32) {
	if u := b.uniform(program, name); u.loc >= 0 {
		gl.ProgramUniform1f(program, u.loc, f)
	}
}

func (b *Backend) SetUniformInt(program uint32, name string, i int32) {
	if u := b.uniform(program, name); u.loc >= 0 {
		gl.ProgramUniform1i(program, u.loc, i)
	}
}

func (b *Backend) SetUniformFloats(program uint32, name string, v []float32) {
	u := b.uniform(program, name)
	if u.loc < 0 || len(v) == 0 {
		return
	}
	switch u.typ {
	case gl.FLOAT_VEC4:
		gl.ProgramUniform4fv(program, u.loc, int32(len(v)/4), &v[0])
	case gl.FLOAT_VEC3:
		gl.ProgramUniform3fv(program, u.loc, int32(len(v)/3), &v[0])
	case gl.FLOAT_VEC2:
		gl.ProgramUniform2fv(program, u.loc, int32(len(v)/2), &v[0])
	default:
		gl.ProgramUniform1fv(program, u.loc, int32(len(v)), &v[0])
	}
}

func (b *Backend) Viewport(vp math.Viewport) {
	gl.Viewport(vp.X, vp.Y, vp.Width, vp.Height)
}

func (b *Backend) SetCapability(c gpu.Capability, enabled bool) {
	if enabled {
		gl.Enable(capability(c))
	} else {
		gl.Disable(capability(c))
	}
}

func (b *Backend) DepthMask(write bool) { gl.DepthMask(write) }

func (b *Backend) CullFace(f gpu.Face) {
	switch f {
	case gpu.FaceFront:
		gl.CullFace(gl.FRONT)
	case gpu.FaceFrontAndBack:
		gl.CullFace(gl.FRONT_AND_BACK)
	default:
		gl.CullFace(gl.BACK)
	}
}

func (b *Backend) FrontFace(w gpu.Winding) {
	if w == gpu.Clockwise {
		gl.FrontFace(gl.CW)
		return
	}
	gl.FrontFace(gl.CCW)
}

// LineWidth is clamped by core profiles to 1 on most drivers.
func (b *Backend) LineWidth(w float32) { gl.LineWidth(w) }

func (b *Backend) PolygonOffset(factor, units float32) { gl.PolygonOffset(factor, units) }

func (b *Backend) BlendFunc(src, dst gpu.BlendFactor) {
	gl.BlendFunc(blendFactor(src), blendFactor(dst))
}

func (b *Backend) ClearColor(c math.Color) { gl.ClearColor(c.R, c.G, c.B, c.A) }

func (b *Backend) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func glError() string {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Sprintf("error 0x%x", code)
	}
	return "no object returned"
}

// ReadPixels returns the RGBA pixels of vp in the current framebuffer,
// bottom row first.
func (b *Backend) ReadPixels(vp math.Viewport) []byte {
	if vp.IsZero() {
		return nil
	}
	buf := make([]byte, int(vp.Width)*int(vp.Height)*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(vp.X, vp.Y, vp.Width, vp.Height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&buf[0]))
	return buf
}
