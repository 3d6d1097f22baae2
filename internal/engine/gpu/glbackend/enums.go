package glbackend

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/retain3d/internal/engine/gpu"
)

func bufferTarget(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(u gpu.Usage) uint32 {
	switch u {
	case gpu.DynamicDraw:
		return gl.DYNAMIC_DRAW
	case gpu.StreamDraw:
		return gl.STREAM_DRAW
	default:
		return gl.STATIC_DRAW
	}
}

func elementType(t gpu.ElementType) uint32 {
	return [...]uint32{
		gpu.Float:         gl.FLOAT,
		gpu.Byte:          gl.BYTE,
		gpu.UnsignedByte:  gl.UNSIGNED_BYTE,
		gpu.Short:         gl.SHORT,
		gpu.UnsignedShort: gl.UNSIGNED_SHORT,
		gpu.UnsignedInt:   gl.UNSIGNED_INT,
		gpu.Fixed:         gl.FIXED,
	}[t]
}

func drawMode(m gpu.DrawMode) uint32 {
	return [...]uint32{
		gpu.Points:        gl.POINTS,
		gpu.Lines:         gl.LINES,
		gpu.LineStrip:     gl.LINE_STRIP,
		gpu.LineLoop:      gl.LINE_LOOP,
		gpu.Triangles:     gl.TRIANGLES,
		gpu.TriangleStrip: gl.TRIANGLE_STRIP,
		gpu.TriangleFan:   gl.TRIANGLE_FAN,
	}[m]
}

func capability(c gpu.Capability) uint32 {
	return [...]uint32{
		gpu.DepthTest:         gl.DEPTH_TEST,
		gpu.CullFace:          gl.CULL_FACE,
		gpu.Blend:             gl.BLEND,
		gpu.PolygonOffsetFill: gl.POLYGON_OFFSET_FILL,
	}[c]
}

func blendFactor(f gpu.BlendFactor) uint32 {
	return [...]uint32{
		gpu.BlendZero:             gl.ZERO,
		gpu.BlendOne:              gl.ONE,
		gpu.BlendSrcColor:         gl.SRC_COLOR,
		gpu.BlendOneMinusSrcColor: gl.ONE_MINUS_SRC_COLOR,
		gpu.BlendSrcAlpha:         gl.SRC_ALPHA,
		gpu.BlendOneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
		gpu.BlendDstAlpha:         gl.DST_ALPHA,
		gpu.BlendOneMinusDstAlpha: gl.ONE_MINUS_DST_ALPHA,
	}[f]
}
