package vertex

import (
	"encoding/binary"
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/pkg/math"
)

// Vertex data uses the host byte order, as client-memory attribute pointers
// do.
var byteOrder = binary.NativeEndian

func round(v float32) float32 {
	if v < 0 {
		return -math32.Floor(-v + 0.5)
	}
	return math32.Floor(v + 0.5)
}

func (a *Array) component(p, c int, norm bool) float32 {
	buf := a.Bytes()
	p += c * a.elementType.Size()
	switch a.elementType {
	case gpu.Float:
		return gomath.Float32frombits(byteOrder.Uint32(buf[p:]))
	case gpu.Byte:
		v := float32(int8(buf[p]))
		if norm {
			return math.Clamp(v/127, -1, 1)
		}
		return v
	case gpu.UnsignedByte:
		v := float32(buf[p])
		if norm {
			return v / 255
		}
		return v
	case gpu.Short:
		v := float32(int16(byteOrder.Uint16(buf[p:])))
		if norm {
			return math.Clamp(v/32767, -1, 1)
		}
		return v
	case gpu.UnsignedShort:
		v := float32(byteOrder.Uint16(buf[p:]))
		if norm {
			return v / 65535
		}
		return v
	case gpu.UnsignedInt:
		return float32(byteOrder.Uint32(buf[p:]))
	case gpu.Fixed:
		return float32(int32(byteOrder.Uint32(buf[p:]))) / 65536
	}
	return 0
}

func (a *Array) setComponent(p, c int, v float32, norm bool) {
	buf := a.Bytes()
	p += c * a.elementType.Size()
	switch a.elementType {
	case gpu.Float:
		byteOrder.PutUint32(buf[p:], gomath.Float32bits(v))
	case gpu.Byte:
		if norm {
			v *= 127
		}
		buf[p] = byte(int8(math.Clamp(round(v), -128, 127)))
	case gpu.UnsignedByte:
		if norm {
			v *= 255
		}
		buf[p] = byte(math.Clamp(round(v), 0, 255))
	case gpu.Short:
		if norm {
			v *= 32767
		}
		byteOrder.PutUint16(buf[p:], uint16(int16(math.Clamp(round(v), -32768, 32767))))
	case gpu.UnsignedShort:
		if norm {
			v *= 65535
		}
		byteOrder.PutUint16(buf[p:], uint16(math.Clamp(round(v), 0, 65535)))
	case gpu.UnsignedInt:
		byteOrder.PutUint32(buf[p:], uint32(math32.Max(round(v), 0)))
	case gpu.Fixed:
		byteOrder.PutUint32(buf[p:], uint32(int32(round(v*65536))))
	}
}

// components reads up to n components of vertex i. Components beyond the
// element size read as fill.
func (a *Array) components(op string, i int, fill [4]float32, norm bool) [4]float32 {
	p := a.vertexOffset(op, i)
	out := fill
	for c := 0; c < a.elementSize && c < 4; c++ {
		out[c] = a.component(p, c, norm)
	}
	return out
}

func (a *Array) setComponents(op string, i int, v [4]float32, norm bool) {
	p := a.vertexOffset(op, i)
	for c := 0; c < a.elementSize && c < 4; c++ {
		a.setComponent(p, c, v[c], norm)
	}
	a.version++
}

// Float returns the first component of vertex i.
func (a *Array) Float(i int) float32 {
	return a.components("vertex.Float", i, [4]float32{}, a.normalize)[0]
}

// SetFloat sets the first component of vertex i.
func (a *Array) SetFloat(i int, v float32) {
	a.setComponents("vertex.SetFloat", i, [4]float32{v}, a.normalize)
}

// Vec2 returns the first two components of vertex i.
func (a *Array) Vec2(i int) math.Vec2 {
	c := a.components("vertex.Vec2", i, [4]float32{}, a.normalize)
	return math.Vec2{X: c[0], Y: c[1]}
}

// SetVec2 sets the first two components of vertex i.
func (a *Array) SetVec2(i int, v math.Vec2) {
	a.setComponents("vertex.SetVec2", i, [4]float32{v.X, v.Y}, a.normalize)
}

// Vec3 returns the first three components of vertex i. Missing components
// read as zero.
func (a *Array) Vec3(i int) math.Vec3 {
	c := a.components("vertex.Vec3", i, [4]float32{}, a.normalize)
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}
}

// SetVec3 sets the first three components of vertex i.
func (a *Array) SetVec3(i int, v math.Vec3) {
	a.setComponents("vertex.SetVec3", i, [4]float32{v.X, v.Y, v.Z}, a.normalize)
}

// Vec4 returns vertex i as a homogeneous vector. A missing w reads as 1.
func (a *Array) Vec4(i int) math.Vec4 {
	c := a.components("vertex.Vec4", i, [4]float32{0, 0, 0, 1}, a.normalize)
	return math.Vec4{X: c[0], Y: c[1], Z: c[2], W: c[3]}
}

// SetVec4 sets vertex i from a homogeneous vector.
func (a *Array) SetVec4(i int, v math.Vec4) {
	a.setComponents("vertex.SetVec4", i, [4]float32{v.X, v.Y, v.Z, v.W}, a.normalize)
}

// Color returns vertex i as a color. Byte components are read as
// normalized values regardless of the pipeline flag. A missing alpha reads
// as opaque.
func (a *Array) Color(i int) math.Color {
	c := a.components("vertex.Color", i, [4]float32{0, 0, 0, 1}, a.elementType != gpu.Float)
	return math.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// SetColor sets vertex i from a color.
func (a *Array) SetColor(i int, col math.Color) {
	a.setComponents("vertex.SetColor", i, [4]float32{col.R, col.G, col.B, col.A}, a.elementType != gpu.Float)
}

// Index returns the index stored at position i of an index array.
func (a *Array) Index(i int) int {
	p := a.vertexOffset("vertex.Index", i)
	buf := a.Bytes()
	switch a.elementType {
	case gpu.UnsignedByte:
		return int(buf[p])
	case gpu.UnsignedShort:
		return int(byteOrder.Uint16(buf[p:]))
	default:
		return int(byteOrder.Uint32(buf[p:]))
	}
}

// SetIndex stores v at position i of an index array.
func (a *Array) SetIndex(i, v int) {
	p := a.vertexOffset("vertex.SetIndex", i)
	buf := a.Bytes()
	switch a.elementType {
	case gpu.UnsignedByte:
		if v > 0xff {
			errs.Precondition("vertex.SetIndex", "index %d does not fit %v", v, a.elementType)
		}
		buf[p] = byte(v)
	case gpu.UnsignedShort:
		if v > 0xffff {
			errs.Precondition("vertex.SetIndex", "index %d does not fit %v", v, a.elementType)
		}
		byteOrder.PutUint16(buf[p:], uint16(v))
	default:
		byteOrder.PutUint32(buf[p:], uint32(v))
	}
	a.version++
}

// SetIndices replaces the array's content with indices, allocating as
// needed.
func (a *Array) SetIndices(indices []int) {
	a.Allocate(len(indices))
	for i, v := range indices {
		a.SetIndex(i, v)
	}
}
