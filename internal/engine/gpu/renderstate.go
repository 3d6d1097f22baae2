package gpu

// DecalOffset is a polygon offset used to draw coplanar geometry on top of
// a surface without z-fighting. The zero value disables it.
type DecalOffset struct {
	Factor float32
	Units  float32
}

// IsZero reports whether the offset is disabled.
func (d DecalOffset) IsZero() bool {
	return d.Factor == 0 && d.Units == 0
}

// RenderState is the per-node pipeline state pushed before a node's mesh is
// drawn.
type RenderState struct {
	DepthTest     bool
	DepthMask     bool
	CullFaces     bool
	CullFace      Face
	FrontFace     Winding
	SmoothShading bool
	NormalScaling NormalScaling
	LineWidth     float32
	Decal         DecalOffset
}

// DefaultRenderState returns depth-tested, depth-writing, back-face culled
// state with smooth shading.
func DefaultRenderState() RenderState {
	return RenderState{
		DepthTest:     true,
		DepthMask:     true,
		CullFaces:     true,
		CullFace:      FaceBack,
		FrontFace:     CounterClockwise,
		SmoothShading: true,
		NormalScaling: NormalScalingAuto,
		LineWidth:     1,
	}
}
