package vertex

import (
	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/errs"
)

// Drawable is the array that issues a mesh's draw calls, together with the
// primitive topology. It is the index array when the mesh has one and the
// location array otherwise.
type Drawable struct {
	*Array

	Mode gpu.DrawMode
	// First is the first vertex (or index) drawn.
	First int
	// StripLengths splits the drawn range into consecutive strips, each
	// drawn with its own call. Empty means a single range.
	StripLengths []int
}

// NewDrawable wraps a for drawing with mode.
func NewDrawable(a *Array, mode gpu.DrawMode) *Drawable {
	return &Drawable{Array: a, Mode: mode}
}

// VertexIndexCount returns the number of vertices (or indices) drawn.
func (d *Drawable) VertexIndexCount() int {
	if len(d.StripLengths) > 0 {
		n := 0
		for _, l := range d.StripLengths {
			n += l
		}
		return n
	}
	return max(d.Count()-d.First, 0)
}

func facesIn(mode gpu.DrawMode, n int) int {
	var f int
	switch mode {
	case gpu.Triangles:
		f = n / 3
	case gpu.TriangleStrip, gpu.TriangleFan:
		f = n - 2
	case gpu.Lines:
		f = n / 2
	case gpu.LineStrip:
		f = n - 1
	case gpu.LineLoop, gpu.Points:
		f = n
	}
	return max(f, 0)
}

// FaceCount returns the number of primitives drawn.
func (d *Drawable) FaceCount() int {
	if len(d.StripLengths) == 0 {
		return facesIn(d.Mode, d.VertexIndexCount())
	}
	f := 0
	for _, l := range d.StripLengths {
		f += facesIn(d.Mode, l)
	}
	return f
}

// FaceIndices returns the vertex indices of face f. Triangles fill all
// three slots; lines repeat their second vertex and points their only one.
// Index arrays are resolved, so the result always addresses vertices.
func (d *Drawable) FaceIndices(f int) [3]int {
	if f < 0 || f >= d.FaceCount() {
		errs.Precondition("vertex.FaceIndices", "face %d outside [0, %d)", f, d.FaceCount())
	}

	start, n, local := d.First, d.VertexIndexCount(), f
	for _, l := range d.StripLengths {
		if fc := facesIn(d.Mode, l); local >= fc {
			local -= fc
			start += l
			continue
		}
		n = l
		break
	}

	var p [3]int
	switch d.Mode {
	case gpu.Triangles:
		b := start + 3*local
		p = [3]int{b, b + 1, b + 2}
	case gpu.TriangleStrip:
		b := start + local
		if local%2 == 0 {
			p = [3]int{b, b + 1, b + 2}
		} else {
			p = [3]int{b + 1, b, b + 2}
		}
	case gpu.TriangleFan:
		p = [3]int{start, start + local + 1, start + local + 2}
	case gpu.Lines:
		b := start + 2*local
		p = [3]int{b, b + 1, b + 1}
	case gpu.LineStrip:
		b := start + local
		p = [3]int{b, b + 1, b + 1}
	case gpu.LineLoop:
		b, e := start+local, start+(local+1)%n
		p = [3]int{b, e, e}
	case gpu.Points:
		b := start + local
		p = [3]int{b, b, b}
	}

	if d.Semantic() == gpu.Index {
		for i := range p {
			p[i] = d.Index(p[i])
		}
	}
	return p
}

// IsTriangles reports whether the topology draws triangles.
func (d *Drawable) IsTriangles() bool {
	return d.Mode == gpu.Triangles || d.Mode == gpu.TriangleStrip || d.Mode == gpu.TriangleFan
}

// Draw issues the draw calls for the whole range, one per strip. The
// attribute arrays must already be bound.
func (d *Drawable) Draw(ctx *gpu.Context) {
	if len(d.StripLengths) == 0 {
		d.drawRange(ctx, d.First, d.VertexIndexCount())
		return
	}
	start := d.First
	for _, l := range d.StripLengths {
		d.drawRange(ctx, start, l)
		start += l
	}
}

func (d *Drawable) drawRange(ctx *gpu.Context, first, count int) {
	if count <= 0 {
		return
	}
	if d.Semantic() != gpu.Index {
		ctx.DrawArrays(d.Mode, int32(first), int32(count))
		return
	}
	stride := d.Stride()
	if id := d.BufferID(); id != 0 {
		ctx.BindBuffer(gpu.ElementArrayBuffer, id)
		ctx.DrawElements(d.Mode, int32(count), d.ElementType(), first*stride, nil)
		return
	}
	buf := d.Bytes()
	if buf == nil {
		errs.Precondition("vertex.Draw", "index array %d has neither GPU nor CPU data", d.ID())
	}
	ctx.BindBuffer(gpu.ElementArrayBuffer, 0)
	ctx.DrawElements(d.Mode, int32(count), d.ElementType(), 0, buf[first*stride:])
}
