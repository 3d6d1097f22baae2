package mesh

import (
	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/pkg/math"
)

var boxSides = [6]struct{ normal, up math.Vec3 }{
	{math.Vec3{X: 1}, math.Vec3{Y: 1}},
	{math.Vec3{X: -1}, math.Vec3{Y: 1}},
	{math.Vec3{Y: 1}, math.Vec3{Z: -1}},
	{math.Vec3{Y: -1}, math.Vec3{Z: 1}},
	{math.Vec3{Z: 1}, math.Vec3{Y: 1}},
	{math.Vec3{Z: -1}, math.Vec3{Y: 1}},
}

// NewBox returns a solid box with per-side normals and tex coords, wound
// counter-clockwise seen from outside.
func NewBox(name string, box math.Box) *Mesh {
	m := NewWithContent(name, ContentLocations|ContentNormals|ContentTexCoords|ContentIndices, true)
	m.Allocate(24)
	m.AllocateIndices(36)

	center := box.Center()
	half := box.Size().Scale(0.5)
	corners := [4]struct{ r, u float32 }{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for s, side := range boxSides {
		right := side.up.Cross(side.normal)
		for c, k := range corners {
			v := s*4 + c
			p := side.normal.Add(right.Scale(k.r)).Add(side.up.Scale(k.u))
			m.SetLocation(v, center.Add(p.ScaleVec(half)))
			m.SetNormal(v, side.normal)
			m.SetTexCoord(0, v, math.Vec2{X: (k.r + 1) / 2, Y: (k.u + 1) / 2})
		}
		b := s * 4
		for i, idx := range [6]int{b, b + 1, b + 2, b, b + 2, b + 3} {
			m.SetIndex(s*6+i, idx)
		}
	}
	return m
}

// NewRectangle returns a rectangle of the given size in the XY plane,
// facing +Z. pivot is the point of the rectangle, in units of its size,
// placed at the origin; (0.5, 0.5) centers it.
func NewRectangle(name string, size, pivot math.Vec2) *Mesh {
	m := NewWithContent(name, ContentLocations|ContentNormals|ContentTexCoords, true)
	m.SetDrawingMode(gpu.TriangleStrip)
	m.Allocate(4)

	uv := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	for i, tc := range uv {
		m.SetLocation(i, math.Vec3{
			X: (tc.X - pivot.X) * size.X,
			Y: (tc.Y - pivot.Y) * size.Y,
		})
		m.SetNormal(i, math.Vec3UnitZ)
		m.SetTexCoord(0, i, tc)
	}
	return m
}

// NewLineStrip returns a line strip through points.
func NewLineStrip(name string, points []math.Vec3) *Mesh {
	return fromPoints(name, points, gpu.LineStrip)
}

// NewLines returns separate line segments, one per pair of points.
func NewLines(name string, points []math.Vec3) *Mesh {
	return fromPoints(name, points, gpu.Lines)
}

// NewPoints returns a point cloud.
func NewPoints(name string, points []math.Vec3) *Mesh {
	return fromPoints(name, points, gpu.Points)
}

func fromPoints(name string, points []math.Vec3, mode gpu.DrawMode) *Mesh {
	m := NewWithContent(name, ContentLocations, false)
	m.SetDrawingMode(mode)
	m.Allocate(len(points))
	for i, p := range points {
		m.SetLocation(i, p)
	}
	return m
}
