package math

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Color8 is an 8-bit RGBA color.
type Color8 struct {
	R, G, B, A uint8
}

// Named colors.
var (
	ColorBlack       = Color{0, 0, 0, 1}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorRed         = Color{1, 0, 0, 1}
	ColorGreen       = Color{0, 1, 0, 1}
	ColorBlue        = Color{0, 0, 1, 1}
	ColorGray        = Color{0.5, 0.5, 0.5, 1}
	ColorTransparent = Color{0, 0, 0, 0}
)

// Color8 converts c to 8 bits per channel, clamping out-of-range values.
func (c Color) Color8() Color8 {
	return Color8{toByte(c.R), toByte(c.G), toByte(c.B), toByte(c.A)}
}

// Color converts c to linear floats.
func (c Color8) Color() Color {
	return Color{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

// Vec4 returns the color as (R, G, B, A).
func (c Color) Vec4() Vec4 {
	return Vec4{c.R, c.G, c.B, c.A}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Lerp interpolates between c and other.
func (c Color) Lerp(other Color, t float32) Color {
	return Color{
		Lerp(c.R, other.R, t),
		Lerp(c.G, other.G, t),
		Lerp(c.B, other.B, t),
		Lerp(c.A, other.A, t),
	}
}

// Blend returns c composited over dst using c's alpha.
func (c Color) Blend(dst Color) Color {
	a := c.A
	return Color{
		c.R*a + dst.R*(1-a),
		c.G*a + dst.G*(1-a),
		c.B*a + dst.B*(1-a),
		a + dst.A*(1-a),
	}
}

// Modulate multiplies c componentwise by other.
func (c Color) Modulate(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B, c.A * other.A}
}

// IsOpaque reports whether alpha is 1 or more.
func (c Color) IsOpaque() bool {
	return c.A >= 1
}

func toByte(f float32) uint8 {
	return uint8(Clamp(f, 0, 1)*255 + 0.5)
}
