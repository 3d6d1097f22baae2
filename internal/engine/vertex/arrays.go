package vertex

import (
	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/pkg/math"
)

// NewLocations returns a float×3 location array.
func NewLocations() *Array {
	return newArray(gpu.Location, gpu.Float, 3)
}

// NewNormals returns a float×3 normal array.
func NewNormals() *Array {
	return newArray(gpu.Normal, gpu.Float, 3)
}

// NewTangents returns a float×3 tangent array.
func NewTangents() *Array {
	return newArray(gpu.Tangent, gpu.Float, 3)
}

// NewBitangents returns a float×3 bitangent array.
func NewBitangents() *Array {
	return newArray(gpu.Bitangent, gpu.Float, 3)
}

// NewColors returns an RGBA color array of component type typ. Integer
// types are normalized by the pipeline.
func NewColors(typ gpu.ElementType) *Array {
	a := newArray(gpu.Color, typ, 4)
	a.normalize = typ != gpu.Float
	return a
}

// NewTexCoords returns a float×2 texture coordinate array for unit.
func NewTexCoords(unit int) *Array {
	return newArray(gpu.TexCoord(unit), gpu.Float, 2)
}

// NewPointSizes returns a float×1 point size array.
func NewPointSizes() *Array {
	return newArray(gpu.PointSize, gpu.Float, 1)
}

// NewBoneWeights returns a float array carrying n weights per vertex.
func NewBoneWeights(n int) *Array {
	if n < 1 || n > 4 {
		errs.Precondition("vertex.NewBoneWeights", "%d bones per vertex outside 1..4", n)
	}
	return newArray(gpu.BoneWeights, gpu.Float, n)
}

// NewBoneIndices returns an array carrying n bone indices per vertex.
func NewBoneIndices(n int, typ gpu.ElementType) *Array {
	if n < 1 || n > 4 {
		errs.Precondition("vertex.NewBoneIndices", "%d bones per vertex outside 1..4", n)
	}
	return newArray(gpu.BoneIndices, typ, n)
}

// NewIndices returns an index array of the given unsigned type.
func NewIndices(typ gpu.ElementType) *Array {
	if !typ.IsIndexType() {
		errs.Precondition("vertex.NewIndices", "%v is not an index type", typ)
	}
	a := newArray(gpu.Index, typ, 1)
	a.target = gpu.ElementArrayBuffer
	return a
}

// FlipVertically replaces every v coordinate with 1-v.
func (a *Array) FlipVertically() {
	for i := 0; i < a.Count(); i++ {
		tc := a.Vec2(i)
		a.SetVec2(i, math.Vec2{X: tc.X, Y: 1 - tc.Y})
	}
}

// FlipHorizontally replaces every u coordinate with 1-u.
func (a *Array) FlipHorizontally() {
	for i := 0; i < a.Count(); i++ {
		tc := a.Vec2(i)
		a.SetVec2(i, math.Vec2{X: 1 - tc.X, Y: tc.Y})
	}
}

// ScaleTexCoords multiplies every coordinate by (su, sv), for example to
// map onto the used part of a padded texture.
func (a *Array) ScaleTexCoords(su, sv float32) {
	for i := 0; i < a.Count(); i++ {
		tc := a.Vec2(i)
		a.SetVec2(i, math.Vec2{X: tc.X * su, Y: tc.Y * sv})
	}
}
