package gpu

import "github.com/Faultbox/retain3d/pkg/math"

// Backend is the graphics API, one method per operation.
//
// Where a method takes both an offset and a data slice, a non-nil slice is
// client memory and the offset is ignored; otherwise the offset is into the
// buffer currently bound to the relevant target.
type Backend interface {
	GenBuffer() (uint32, error)
	BindBuffer(target BufferTarget, id uint32)
	BufferData(target BufferTarget, data []byte, usage Usage) error
	BufferSubData(target BufferTarget, offset int, data []byte)
	DeleteBuffer(id uint32)

	EnableVertexAttribute(slot uint32)
	DisableVertexAttribute(slot uint32)
	VertexAttribPointer(slot uint32, size int32, typ ElementType, normalized bool, stride int32, offset int, data []byte)

	DrawArrays(mode DrawMode, first, count int32)
	DrawElements(mode DrawMode, count int32, typ ElementType, offset int, data []byte)

	// CreateTexture creates a 2D texture from tightly packed RGBA8 pixels.
	CreateTexture(width, height int32, rgba []byte) (uint32, error)
	DeleteTexture(id uint32)
	BindTexture(unit, id uint32)

	UseProgram(id uint32)
	SetUniformMat4(program uint32, name string, m math.Mat4)
	SetUniformVec3(program uint32, name string, v math.Vec3)
	SetUniformVec4(program uint32, name string, v math.Vec4)
	SetUniformFloat(program uint32, name string, f float32)
	SetUniformInt(program uint32, name string, i int32)
	// SetUniformFloats sets a float array uniform; the program decides how
	// the values group into vectors.
	SetUniformFloats(program uint32, name string, v []float32)

	Viewport(vp math.Viewport)
	SetCapability(c Capability, enabled bool)
	DepthMask(write bool)
	CullFace(f Face)
	FrontFace(w Winding)
	LineWidth(w float32)
	PolygonOffset(factor, units float32)
	BlendFunc(src, dst BlendFactor)
	ClearColor(c math.Color)
	Clear(color, depth bool)
}
