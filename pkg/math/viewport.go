package math

// Viewport is a pixel rectangle with its origin at the lower left.
type Viewport struct {
	X, Y          int32
	Width, Height int32
}

// ContainsPoint reports whether (x, y) falls inside the viewport. The lower
// and left edges are inclusive, the upper and right edges exclusive.
func (v Viewport) ContainsPoint(x, y float32) bool {
	return x >= float32(v.X) && x < float32(v.X+v.Width) &&
		y >= float32(v.Y) && y < float32(v.Y+v.Height)
}

// Aspect returns width / height, or 1 for an empty viewport.
func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// IsZero reports whether the viewport has no area.
func (v Viewport) IsZero() bool {
	return v.Width <= 0 || v.Height <= 0
}
