package lighting

// MaxLights is the number of lights a program is given.
const MaxLights = 8

// Buffer collects the enabled lights of a frame in flat form for uniform
// upload.
type Buffer struct {
	Lights []*Light
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{Lights: make([]*Light, 0, MaxLights)}
}

// Clear removes all lights.
func (b *Buffer) Clear() {
	clear(b.Lights)
	b.Lights = b.Lights[:0]
}

// Add appends an enabled light. It returns false when the light is disabled
// or the buffer is full.
func (b *Buffer) Add(l *Light) bool {
	if !l.Enabled || len(b.Lights) >= MaxLights {
		return false
	}
	b.Lights = append(b.Lights, l)
	return true
}

// Set replaces the content with the enabled lights of ls, truncated to
// MaxLights.
func (b *Buffer) Set(ls []*Light) {
	b.Clear()
	for _, l := range ls {
		b.Add(l)
	}
}

// Len returns the number of lights.
func (b *Buffer) Len() int { return len(b.Lights) }

// Positions returns homogeneous positions as [x0, y0, z0, w0, x1, ...],
// padded to MaxLights.
func (b *Buffer) Positions() []float32 {
	out := make([]float32, MaxLights*4)
	for i, l := range b.Lights {
		p := l.Position
		copy(out[i*4:], []float32{p.X, p.Y, p.Z, p.W})
	}
	return out
}

// Diffuse returns diffuse colors as [r0, g0, b0, r1, ...], padded to
// MaxLights.
func (b *Buffer) Diffuse() []float32 {
	out := make([]float32, MaxLights*3)
	for i, l := range b.Lights {
		c := l.Diffuse
		copy(out[i*3:], []float32{c.R, c.G, c.B})
	}
	return out
}

// Attenuations returns the coefficients as [c0, l0, q0, c1, ...], padded
// to MaxLights.
func (b *Buffer) Attenuations() []float32 {
	out := make([]float32, MaxLights*3)
	for i, l := range b.Lights {
		a := l.Attenuation
		copy(out[i*3:], []float32{a.Constant, a.Linear, a.Quadratic})
	}
	return out
}
