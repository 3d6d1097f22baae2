// Package gpu describes the graphics API the scene graph draws through.
//
// Backend is the raw interface a concrete API (OpenGL, or the in-memory
// Recorder) implements. Context wraps a Backend with redundant-state
// elimination and per-frame caches, and is passed explicitly through the
// draw pipeline.
package gpu

import "fmt"

// BufferTarget selects vertex or index buffers.
type BufferTarget uint8

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

func (t BufferTarget) String() string {
	if t == ElementArrayBuffer {
		return "element-array"
	}
	return "array"
}

// Usage hints how often buffer contents change.
type Usage uint8

const (
	StaticDraw Usage = iota
	DynamicDraw
	StreamDraw
)

// ElementType is the scalar type of one vertex component.
type ElementType uint8

const (
	Float ElementType = iota
	Byte
	UnsignedByte
	Short
	UnsignedShort
	UnsignedInt
	Fixed
)

// Size returns the size of one component in bytes.
func (t ElementType) Size() int {
	switch t {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	default:
		return 4
	}
}

// IsIndexType reports whether t may be used for index arrays.
func (t ElementType) IsIndexType() bool {
	return t == UnsignedByte || t == UnsignedShort || t == UnsignedInt
}

func (t ElementType) String() string {
	switch t {
	case Float:
		return "float"
	case Byte:
		return "byte"
	case UnsignedByte:
		return "ubyte"
	case Short:
		return "short"
	case UnsignedShort:
		return "ushort"
	case UnsignedInt:
		return "uint"
	case Fixed:
		return "fixed"
	default:
		return fmt.Sprintf("ElementType(%d)", uint8(t))
	}
}

// DrawMode is the primitive topology.
type DrawMode uint8

const (
	Points DrawMode = iota
	Lines
	LineStrip
	LineLoop
	Triangles
	TriangleStrip
	TriangleFan
)

func (m DrawMode) String() string {
	return [...]string{"points", "lines", "line-strip", "line-loop",
		"triangles", "triangle-strip", "triangle-fan"}[m]
}

// Semantic is the role of a vertex attribute.
type Semantic uint8

const (
	Location Semantic = iota
	Normal
	Tangent
	Bitangent
	Color
	PointSize
	BoneWeights
	BoneIndices
	TexCoord0
	TexCoord1
	TexCoord2
	TexCoord3
	TexCoord4
	TexCoord5
	TexCoord6
	TexCoord7
	// Index marks index arrays. It has no attribute slot.
	Index

	NumSemantics
)

// MaxTexCoords is the number of texture coordinate semantics.
const MaxTexCoords = 8

// MaxTextureUnits is the number of texture units tracked by Context.
const MaxTextureUnits = MaxTexCoords

// TexCoord returns the texture coordinate semantic of unit.
func TexCoord(unit int) Semantic {
	if unit < 0 || unit >= MaxTexCoords {
		panic(fmt.Sprintf("gpu: texture unit %d out of range", unit))
	}
	return TexCoord0 + Semantic(unit)
}

// IsTexCoord reports whether s is one of the texture coordinate semantics.
func (s Semantic) IsTexCoord() bool {
	return s >= TexCoord0 && s <= TexCoord7
}

// Slot returns the vertex attribute slot bound to s. Index has none and
// returns -1.
func (s Semantic) Slot() int {
	if s >= Index {
		return -1
	}
	return int(s)
}

func (s Semantic) String() string {
	switch {
	case s.IsTexCoord():
		return fmt.Sprintf("texcoord%d", s-TexCoord0)
	case s == Index:
		return "index"
	case s < TexCoord0:
		return [...]string{"location", "normal", "tangent", "bitangent",
			"color", "point-size", "bone-weights", "bone-indices"}[s]
	default:
		return fmt.Sprintf("Semantic(%d)", uint8(s))
	}
}

// Capability is a switchable pipeline feature.
type Capability uint8

const (
	DepthTest Capability = iota
	CullFace
	Blend
	PolygonOffsetFill

	numCapabilities
)

// Face selects which faces are culled.
type Face uint8

const (
	FaceBack Face = iota
	FaceFront
	FaceFrontAndBack
)

// Winding is the vertex order of front faces.
type Winding uint8

const (
	CounterClockwise Winding = iota
	Clockwise
)

// BlendFactor is a source or destination blend factor.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// NormalScaling tells a program how to keep normals unit length under
// scaled model matrices.
type NormalScaling uint8

const (
	// NormalScalingAuto rescales under uniform scale and normalizes
	// otherwise.
	NormalScalingAuto NormalScaling = iota
	NormalScalingNone
	NormalScalingRescale
	NormalScalingNormalize
)
