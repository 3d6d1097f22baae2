package mesh

import (
	"slices"

	"github.com/chewxy/math32"

	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/engine/vertex"
	"github.com/Faultbox/retain3d/pkg/math"
)

// LocationsVersion returns the content version of the location array.
func (m *Mesh) LocationsVersion() uint64 {
	if loc := m.Locations(); loc != nil {
		return loc.Version()
	}
	return 0
}

// updateGeometry recomputes the cached box, centroid and radius when the
// location array changed. Released locations keep the last values.
func (m *Mesh) updateGeometry() {
	loc := m.Locations()
	if loc == nil {
		m.box, m.centroid, m.radius = math.NullBox, math.Vec3{}, 0
		return
	}
	if m.geometryValid && m.geometryVersion == loc.Version() {
		return
	}
	if !loc.HasCPUData() {
		if !m.geometryValid {
			m.box, m.centroid, m.radius = math.NullBox, math.Vec3{}, 0
		}
		return
	}

	n := loc.Count()
	box := math.NullBox
	for i := 0; i < n; i++ {
		box = box.Expand(loc.Vec3(i))
	}
	var center math.Vec3
	var radius float32
	if !box.IsNull() {
		center = box.Center()
		for i := 0; i < n; i++ {
			radius = max(radius, loc.Vec3(i).Distance(center))
		}
	}

	m.box, m.centroid, m.radius = box, center, radius
	m.geometryVersion = loc.Version()
	m.geometryValid = true
}

// BoundingBox returns the box around every vertex location, or the null
// box for a mesh without vertices.
func (m *Mesh) BoundingBox() math.Box {
	m.updateGeometry()
	return m.box
}

// Centroid returns the center of the bounding box.
func (m *Mesh) Centroid() math.Vec3 {
	m.updateGeometry()
	return m.centroid
}

// Radius returns the largest distance from the centroid to a vertex.
func (m *Mesh) Radius() float32 {
	m.updateGeometry()
	return m.radius
}

// HitOptions controls ray picking.
type HitOptions struct {
	AcceptBackFaces bool
	AcceptBehind    bool
	// MaxHits stops the face walk after that many hits. Zero means no
	// limit.
	MaxHits int
}

// Hit is one ray intersection with a mesh face, in the mesh's space.
type Hit struct {
	Face     int
	Location math.Vec3
	// Distance is the ray parameter of the hit. It is negative for hits
	// behind the ray start.
	Distance float32
}

// IntersectRay intersects ray with every triangle of the mesh, walking
// faces in draw order until opts.MaxHits hits are collected. Hits are
// returned nearest first. Non-triangle meshes never hit.
func (m *Mesh) IntersectRay(ray math.Ray, opts HitOptions) []Hit {
	d := m.Drawable()
	loc := m.Locations()
	if d == nil || !d.IsTriangles() || loc == nil || !loc.HasCPUData() {
		return nil
	}
	if d.Array != loc && !d.HasCPUData() {
		return nil
	}

	var hits []Hit
	for f := 0; f < d.FaceCount(); f++ {
		idx := d.FaceIndices(f)
		face := math.Face{A: loc.Vec3(idx[0]), B: loc.Vec3(idx[1]), C: loc.Vec3(idx[2])}
		p, t, ok := ray.IntersectFace(face, opts.AcceptBackFaces, opts.AcceptBehind)
		if !ok {
			continue
		}
		hits = append(hits, Hit{Face: f, Location: p, Distance: t})
		if opts.MaxHits > 0 && len(hits) >= opts.MaxHits {
			break
		}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return hits
}

// Translate moves every vertex location by offset.
func (m *Mesh) Translate(offset math.Vec3) {
	loc := m.mustArray(gpu.Location)
	for i := 0; i < loc.Count(); i++ {
		loc.SetVec3(i, loc.Vec3(i).Add(offset))
	}
}

// MovePivot moves the vertices so that pivot becomes the origin.
func (m *Mesh) MovePivot(pivot math.Vec3) {
	m.Translate(pivot.Negate())
}

// MovePivotToCenter moves the vertices so that the center of the bounding
// box becomes the origin, and returns the offset applied.
func (m *Mesh) MovePivotToCenter() math.Vec3 {
	c := m.Centroid()
	m.MovePivot(c)
	return c.Negate()
}

// smoothEpsilon is the per-axis distance within which vertex locations
// count as coincident.
const smoothEpsilon float32 = 0.001

type smoothCell [3]int32

func cellOf(p math.Vec3) smoothCell {
	return smoothCell{
		int32(math32.Floor(p.X / smoothEpsilon)),
		int32(math32.Floor(p.Y / smoothEpsilon)),
		int32(math32.Floor(p.Z / smoothEpsilon)),
	}
}

func coincident(a, b math.Vec3) bool {
	return math32.Abs(a.X-b.X) <= smoothEpsilon &&
		math32.Abs(a.Y-b.Y) <= smoothEpsilon &&
		math32.Abs(a.Z-b.Z) <= smoothEpsilon
}

// SmoothNormals averages the normals of vertices sharing a location.
// Locations closer than smoothEpsilon on every axis are shared, chaining
// through intermediate vertices.
func (m *Mesh) SmoothNormals() {
	loc, nrm := m.Locations(), m.Normals()
	if loc == nil || nrm == nil {
		return
	}
	n := loc.Count()
	parent := make([]int, n)
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	// Coincident points lie in the same or an adjacent cell.
	cells := make(map[smoothCell][]int)
	for i := 0; i < n; i++ {
		parent[i] = i
		p := loc.Vec3(i)
		c := cellOf(p)
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for dz := int32(-1); dz <= 1; dz++ {
					for _, j := range cells[smoothCell{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if coincident(p, loc.Vec3(j)) {
							if ri, rj := find(i), find(j); ri != rj {
								parent[ri] = rj
							}
						}
					}
				}
			}
		}
		cells[c] = append(cells[c], i)
	}

	groups := make(map[int][]int)
	for i := 0; i < n; i++ {
		r := find(i)
		groups[r] = append(groups[r], i)
	}
	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		var sum math.Vec3
		for _, i := range idxs {
			sum = sum.Add(nrm.Vec3(i))
		}
		avg := sum.Normalize()
		for _, i := range idxs {
			nrm.SetVec3(i, avg)
		}
	}
}

// GenerateNormals replaces the normals with the area-weighted average of
// the normals of the triangles using each vertex. A normal array is
// created when missing.
func (m *Mesh) GenerateNormals() {
	loc := m.mustArray(gpu.Location)
	if m.Normals() == nil {
		nrm := vertex.NewNormals()
		nrm.Allocate(loc.Count())
		m.arrays[nrm.Semantic()] = nrm
	}
	nrm := m.Normals()
	d := m.Drawable()
	if !d.IsTriangles() {
		return
	}
	sums := make([]math.Vec3, loc.Count())
	for f := 0; f < d.FaceCount(); f++ {
		idx := d.FaceIndices(f)
		a, b, c := loc.Vec3(idx[0]), loc.Vec3(idx[1]), loc.Vec3(idx[2])
		n := b.Sub(a).Cross(c.Sub(a))
		for _, i := range idx {
			sums[i] = sums[i].Add(n)
		}
	}
	for i, s := range sums {
		nrm.SetVec3(i, s.Normalize())
	}
}
