package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Faultbox/retain3d/pkg/math"
)

// Vertex and index data use the byte order of the host, as the graphics API
// expects.
var nativeEndian = binary.NativeEndian

// ErrOutOfMemory is returned by Recorder when FailBufferAllocation is set.
var ErrOutOfMemory = errors.New("out of GPU memory")

// Attribute is the recorded state of one vertex attribute slot.
type Attribute struct {
	Enabled    bool
	Size       int32
	Type       ElementType
	Normalized bool
	Stride     int32
	Offset     int
	// Buffer is the array buffer the attribute reads from, or 0 for client
	// memory in Data.
	Buffer uint32
	Data   []byte
}

// DrawCall is one recorded draw.
type DrawCall struct {
	Mode      DrawMode
	First     int32
	Count     int32
	Indexed   bool
	IndexType ElementType
	// IndexBuffer is the bound element buffer of an indexed draw from GPU
	// memory; 0 means the indices were client memory.
	IndexBuffer uint32
	Program     uint32
	// Vertices holds the vertex indices the draw reads, resolved through
	// the index data for indexed draws.
	Vertices []uint32
}

// Recorder is an in-memory Backend. It keeps buffer contents for read-back
// and records every draw call. It backs the headless viewer and the tests.
type Recorder struct {
	// FailBufferAllocation makes GenBuffer fail, simulating exhausted GPU
	// memory.
	FailBufferAllocation bool
	// FailTextureAllocation makes CreateTexture fail.
	FailTextureAllocation bool

	buffers  map[uint32][]byte
	nextID   uint32
	bound    [2]uint32
	attribs  map[uint32]*Attribute
	program  uint32
	textures map[uint32]uint32
	images   map[uint32][]byte
	uniforms map[uint32]map[string]any

	Caps      map[Capability]bool
	Depth     bool
	Culled    Face
	Front     Winding
	Line      float32
	Offset    DecalOffset
	BlendSrc  BlendFactor
	BlendDst  BlendFactor
	Cleared   math.Color
	Clears    int
	View      math.Viewport
	Draws     []DrawCall
	BindCalls int
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		buffers:  make(map[uint32][]byte),
		attribs:  make(map[uint32]*Attribute),
		textures: make(map[uint32]uint32),
		images:   make(map[uint32][]byte),
		uniforms: make(map[uint32]map[string]any),
		Caps:     make(map[Capability]bool),
		Depth:    true,
		Line:     1,
	}
}

// ReadBuffer returns a copy of the contents of buffer id.
func (r *Recorder) ReadBuffer(id uint32) ([]byte, bool) {
	b, ok := r.buffers[id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

// BufferCount returns the number of live buffers.
func (r *Recorder) BufferCount() int {
	return len(r.buffers)
}

// Attribute returns the recorded state of slot.
func (r *Recorder) Attribute(slot uint32) Attribute {
	if a, ok := r.attribs[slot]; ok {
		return *a
	}
	return Attribute{}
}

// AttributeBytes returns the bytes of vertex i as the attribute in slot
// currently reads them.
func (r *Recorder) AttributeBytes(slot uint32, i int) ([]byte, error) {
	a, ok := r.attribs[slot]
	if !ok || !a.Enabled {
		return nil, fmt.Errorf("attribute %d not enabled", slot)
	}
	src := a.Data
	if src == nil {
		src = r.buffers[a.Buffer]
	}
	stride := int(a.Stride)
	n := int(a.Size) * a.Type.Size()
	if stride == 0 {
		stride = n
	}
	start := a.Offset + i*stride
	if a.Data != nil {
		start = i * stride
	}
	if start < 0 || start+n > len(src) {
		return nil, fmt.Errorf("vertex %d outside attribute %d data", i, slot)
	}
	return src[start : start+n], nil
}

// Uniform returns the last value set for name on program.
func (r *Recorder) Uniform(program uint32, name string) (any, bool) {
	v, ok := r.uniforms[program][name]
	return v, ok
}

// Texture returns the texture bound to unit.
func (r *Recorder) Texture(unit uint32) uint32 {
	return r.textures[unit]
}

// Program returns the current program.
func (r *Recorder) Program() uint32 {
	return r.program
}

// Reset forgets the recorded draw calls.
func (r *Recorder) Reset() {
	r.Draws = r.Draws[:0]
	r.BindCalls = 0
}

func (r *Recorder) GenBuffer() (uint32, error) {
	if r.FailBufferAllocation {
		return 0, ErrOutOfMemory
	}
	r.nextID++
	r.buffers[r.nextID] = nil
	return r.nextID, nil
}

func (r *Recorder) BindBuffer(target BufferTarget, id uint32) {
	r.bound[target] = id
	r.BindCalls++
}

func (r *Recorder) BufferData(target BufferTarget, data []byte, _ Usage) error {
	id := r.bound[target]
	if _, ok := r.buffers[id]; !ok || id == 0 {
		return fmt.Errorf("no buffer bound to %v", target)
	}
	r.buffers[id] = append([]byte(nil), data...)
	return nil
}

func (r *Recorder) BufferSubData(target BufferTarget, offset int, data []byte) {
	id := r.bound[target]
	buf := r.buffers[id]
	if offset < 0 || offset+len(data) > len(buf) {
		panic(fmt.Sprintf("gpu: sub data [%d, %d) outside buffer %d of %d bytes",
			offset, offset+len(data), id, len(buf)))
	}
	copy(buf[offset:], data)
}

func (r *Recorder) DeleteBuffer(id uint32) {
	delete(r.buffers, id)
	for t, b := range r.bound {
		if b == id {
			r.bound[t] = 0
		}
	}
}

func (r *Recorder) attrib(slot uint32) *Attribute {
	a, ok := r.attribs[slot]
	if !ok {
		a = &Attribute{}
		r.attribs[slot] = a
	}
	return a
}

func (r *Recorder) EnableVertexAttribute(slot uint32) {
	r.attrib(slot).Enabled = true
}

func (r *Recorder) DisableVertexAttribute(slot uint32) {
	r.attrib(slot).Enabled = false
}

func (r *Recorder) VertexAttribPointer(slot uint32, size int32, typ ElementType, normalized bool, stride int32, offset int, data []byte) {
	a := r.attrib(slot)
	a.Size, a.Type, a.Normalized, a.Stride = size, typ, normalized, stride
	a.Offset, a.Data, a.Buffer = offset, data, 0
	if data == nil {
		a.Buffer = r.bound[ArrayBuffer]
	}
}

func (r *Recorder) DrawArrays(mode DrawMode, first, count int32) {
	vs := make([]uint32, count)
	for i := range vs {
		vs[i] = uint32(first) + uint32(i)
	}
	r.Draws = append(r.Draws, DrawCall{
		Mode: mode, First: first, Count: count, Program: r.program, Vertices: vs,
	})
}

func (r *Recorder) DrawElements(mode DrawMode, count int32, typ ElementType, offset int, data []byte) {
	call := DrawCall{Mode: mode, Count: count, Indexed: true, IndexType: typ, Program: r.program}
	src := data
	if data == nil {
		call.IndexBuffer = r.bound[ElementArrayBuffer]
		src = r.buffers[call.IndexBuffer]
	} else {
		offset = 0
	}
	size := typ.Size()
	call.Vertices = make([]uint32, 0, count)
	for i := 0; i < int(count); i++ {
		p := offset + i*size
		if p+size > len(src) {
			panic(fmt.Sprintf("gpu: index %d outside index data of %d bytes", i, len(src)))
		}
		call.Vertices = append(call.Vertices, decodeIndex(src[p:p+size], typ))
	}
	r.Draws = append(r.Draws, call)
}

func decodeIndex(b []byte, typ ElementType) uint32 {
	switch typ {
	case UnsignedByte:
		return uint32(b[0])
	case UnsignedShort:
		return uint32(nativeEndian.Uint16(b))
	default:
		return nativeEndian.Uint32(b)
	}
}

// TextureCount returns the number of live textures.
func (r *Recorder) TextureCount() int {
	return len(r.images)
}

func (r *Recorder) CreateTexture(width, height int32, rgba []byte) (uint32, error) {
	if r.FailTextureAllocation {
		return 0, ErrOutOfMemory
	}
	r.nextID++
	r.images[r.nextID] = append([]byte(nil), rgba[:width*height*4]...)
	return r.nextID, nil
}

func (r *Recorder) DeleteTexture(id uint32) {
	delete(r.images, id)
	for u, t := range r.textures {
		if t == id {
			r.textures[u] = 0
		}
	}
}

func (r *Recorder) BindTexture(unit, id uint32) {
	r.textures[unit] = id
}

func (r *Recorder) UseProgram(id uint32) {
	r.program = id
}

func (r *Recorder) setUniform(program uint32, name string, v any) {
	m, ok := r.uniforms[program]
	if !ok {
		m = make(map[string]any)
		r.uniforms[program] = m
	}
	m[name] = v
}

func (r *Recorder) SetUniformMat4(program uint32, name string, m math.Mat4) {
	r.setUniform(program, name, m)
}

func (r *Recorder) SetUniformVec3(program uint32, name string, v math.Vec3) {
	r.setUniform(program, name, v)
}

func (r *Recorder) SetUniformVec4(program uint32, name string, v math.Vec4) {
	r.setUniform(program, name, v)
}

func (r *Recorder) SetUniformFloat(program uint32, name string, f float32) {
	r.setUniform(program, name, f)
}

func (r *Recorder) SetUniformInt(program uint32, name string, i int32) {
	r.setUniform(program, name, i)
}

func (r *Recorder) SetUniformFloats(program uint32, name string, v []float32) {
	r.setUniform(program, name, append([]float32(nil), v...))
}

func (r *Recorder) Viewport(vp math.Viewport) { r.View = vp }

func (r *Recorder) SetCapability(c Capability, enabled bool) { r.Caps[c] = enabled }

func (r *Recorder) DepthMask(write bool) { r.Depth = write }

func (r *Recorder) CullFace(f Face) { r.Culled = f }

func (r *Recorder) FrontFace(w Winding) { r.Front = w }

func (r *Recorder) LineWidth(w float32) { r.Line = w }

func (r *Recorder) PolygonOffset(factor, units float32) {
	r.Offset = DecalOffset{Factor: factor, Units: units}
}

func (r *Recorder) BlendFunc(src, dst BlendFactor) {
	r.BlendSrc, r.BlendDst = src, dst
}

func (r *Recorder) ClearColor(c math.Color) { r.Cleared = c }

func (r *Recorder) Clear(color, depth bool) {
	if color || depth {
		r.Clears++
	}
}
