// Package mesh groups vertex arrays into drawable geometry.
package mesh

import (
	"errors"

	"go.uber.org/multierr"

	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/engine/vertex"
	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/pkg/math"
)

// Content selects the vertex aspects a mesh carries. The attribute bits
// follow the order of the gpu semantics.
type Content uint16

const (
	ContentLocations Content = 1 << iota
	ContentNormals
	ContentTangents
	ContentBitangents
	ContentColors
	ContentPointSizes
	ContentBoneWeights
	ContentBoneIndices
	ContentTexCoords
	ContentIndices
)

// Has reports whether every aspect of other is present.
func (c Content) Has(other Content) bool { return c&other == other }

// numAttributes is the number of non tex-coord attribute semantics.
const numAttributes = int(gpu.TexCoord0)

// Mesh holds the vertex arrays of one piece of geometry together with its
// topology. Arrays may be shared between meshes.
type Mesh struct {
	name string

	arrays    [numAttributes]*vertex.Array
	texCoords []*vertex.Array
	indices   *vertex.Array

	interleaved bool

	mode   gpu.DrawMode
	first  int
	strips []int

	geometryVersion uint64
	geometryValid   bool
	box             math.Box
	centroid        math.Vec3
	radius          float32
}

// New returns an empty triangle mesh.
func New(name string) *Mesh {
	return &Mesh{name: name, mode: gpu.Triangles}
}

// NewWithContent returns a mesh with an array for every aspect in content.
// Colors are unsigned bytes, tex coords cover unit 0 and indices are
// unsigned shorts. With interleave set, all vertex aspects share one buffer
// owned by the location array and the stride is the sum of the element
// lengths, rounded up to four bytes.
func NewWithContent(name string, content Content, interleave bool) *Mesh {
	m := New(name)
	if content.Has(ContentLocations) {
		m.arrays[gpu.Location] = vertex.NewLocations()
	}
	if content.Has(ContentNormals) {
		m.arrays[gpu.Normal] = vertex.NewNormals()
	}
	if content.Has(ContentTangents) {
		m.arrays[gpu.Tangent] = vertex.NewTangents()
	}
	if content.Has(ContentBitangents) {
		m.arrays[gpu.Bitangent] = vertex.NewBitangents()
	}
	if content.Has(ContentColors) {
		m.arrays[gpu.Color] = vertex.NewColors(gpu.UnsignedByte)
	}
	if content.Has(ContentPointSizes) {
		m.arrays[gpu.PointSize] = vertex.NewPointSizes()
	}
	if content.Has(ContentBoneWeights) {
		m.arrays[gpu.BoneWeights] = vertex.NewBoneWeights(4)
	}
	if content.Has(ContentBoneIndices) {
		m.arrays[gpu.BoneIndices] = vertex.NewBoneIndices(4, gpu.UnsignedByte)
	}
	if content.Has(ContentTexCoords) {
		m.texCoords = append(m.texCoords, vertex.NewTexCoords(0))
	}
	if content.Has(ContentIndices) {
		m.indices = vertex.NewIndices(gpu.UnsignedShort)
	}
	if interleave {
		// The layout is computed from fresh arrays and cannot fail.
		if err := m.interleave(); err != nil {
			panic(err)
		}
	}
	return m
}

// vertexArrays returns the present vertex aspect arrays in semantic order,
// tex coords last.
func (m *Mesh) vertexArrays() []*vertex.Array {
	out := make([]*vertex.Array, 0, numAttributes+len(m.texCoords))
	for _, a := range m.arrays {
		if a != nil {
			out = append(out, a)
		}
	}
	return append(out, m.texCoords...)
}

func alignUp(n, a int) int {
	return (n + a - 1) / a * a
}

func (m *Mesh) interleave() error {
	arrs := m.vertexArrays()
	if len(arrs) == 0 {
		return nil
	}
	offsets := make([]int, len(arrs))
	stride := 0
	for i, a := range arrs {
		stride = alignUp(stride, a.ElementType().Size())
		offsets[i] = stride
		stride += a.ElementLength()
	}
	stride = alignUp(stride, 4)

	owner := arrs[0]
	if err := owner.SetStride(stride); err != nil {
		return err
	}
	if err := owner.SetElementOffset(offsets[0]); err != nil {
		return err
	}
	for i, a := range arrs[1:] {
		if err := a.InterleaveWith(owner, offsets[i+1]); err != nil {
			return err
		}
	}
	m.interleaved = true
	return nil
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

// SetName renames the mesh.
func (m *Mesh) SetName(name string) { m.name = name }

// IsInterleaved reports whether the vertex aspects share one buffer.
func (m *Mesh) IsInterleaved() bool { return m.interleaved }

// Content returns the aspects present.
func (m *Mesh) Content() Content {
	var c Content
	for sem, a := range m.arrays {
		if a != nil {
			c |= Content(1) << sem
		}
	}
	if len(m.texCoords) > 0 {
		c |= ContentTexCoords
	}
	if m.indices != nil {
		c |= ContentIndices
	}
	return c
}

// VertexArray returns the array of a non tex-coord semantic, or nil.
func (m *Mesh) VertexArray(sem gpu.Semantic) *vertex.Array {
	switch {
	case sem == gpu.Index:
		return m.indices
	case sem.IsTexCoord():
		u := int(sem - gpu.TexCoord0)
		if u < len(m.texCoords) {
			return m.texCoords[u]
		}
		return nil
	case int(sem) < numAttributes:
		return m.arrays[sem]
	}
	return nil
}

// SetVertexArray installs a under its semantic, replacing any previous
// array. Tex coord arrays replace the array of their unit or are appended.
func (m *Mesh) SetVertexArray(a *vertex.Array) {
	sem := a.Semantic()
	switch {
	case sem == gpu.Index:
		m.indices = a
	case sem.IsTexCoord():
		u := int(sem - gpu.TexCoord0)
		if u < len(m.texCoords) {
			m.texCoords[u] = a
		} else {
			m.texCoords = append(m.texCoords, a)
		}
	default:
		m.arrays[sem] = a
	}
	if sem == gpu.Location {
		m.geometryValid = false
	}
}

// Locations returns the location array, or nil.
func (m *Mesh) Locations() *vertex.Array { return m.arrays[gpu.Location] }

// Normals returns the normal array, or nil.
func (m *Mesh) Normals() *vertex.Array { return m.arrays[gpu.Normal] }

// Colors returns the color array, or nil.
func (m *Mesh) Colors() *vertex.Array { return m.arrays[gpu.Color] }

// Indices returns the index array, or nil.
func (m *Mesh) Indices() *vertex.Array { return m.indices }

// AddTexCoords appends a tex coord array. The n-th array added feeds
// texture unit n.
func (m *Mesh) AddTexCoords(a *vertex.Array) {
	m.texCoords = append(m.texCoords, a)
}

// RemoveTexCoords removes a tex coord array.
func (m *Mesh) RemoveTexCoords(a *vertex.Array) {
	for i, tc := range m.texCoords {
		if tc == a {
			m.texCoords = append(m.texCoords[:i], m.texCoords[i+1:]...)
			return
		}
	}
}

// TexCoordCount returns the number of tex coord arrays.
func (m *Mesh) TexCoordCount() int { return len(m.texCoords) }

// TexCoordsForUnit returns the tex coord array feeding texture unit u. When
// u is past the last array, the last array is reused. A mesh without tex
// coords returns nil.
func (m *Mesh) TexCoordsForUnit(u int) *vertex.Array {
	if len(m.texCoords) == 0 || u < 0 {
		return nil
	}
	return m.texCoords[min(u, len(m.texCoords)-1)]
}

// Allocate sizes every vertex aspect for n vertices. Interleaved meshes
// allocate the owning array only.
func (m *Mesh) Allocate(n int) {
	for _, a := range m.vertexArrays() {
		if a.Owner() == nil {
			a.Allocate(n)
		}
	}
	m.geometryValid = false
}

// AllocateIndices sizes the index array for n indices.
func (m *Mesh) AllocateIndices(n int) {
	if m.indices == nil {
		errs.Precondition("mesh.AllocateIndices", "mesh %q has no index array", m.name)
	}
	m.indices.Allocate(n)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	if loc := m.Locations(); loc != nil {
		return loc.Count()
	}
	return 0
}

// DrawingMode returns the primitive topology.
func (m *Mesh) DrawingMode() gpu.DrawMode { return m.mode }

// SetDrawingMode sets the primitive topology.
func (m *Mesh) SetDrawingMode(mode gpu.DrawMode) { m.mode = mode }

// SetFirstVertex sets the first vertex or index drawn.
func (m *Mesh) SetFirstVertex(first int) { m.first = first }

// SetStripLengths splits the draw into strips of the given lengths.
func (m *Mesh) SetStripLengths(lengths []int) {
	m.strips = append(m.strips[:0], lengths...)
}

// StripLengths returns the strip lengths; nil means a single draw call.
func (m *Mesh) StripLengths() []int { return m.strips }

// Drawable returns the array that issues the draw calls together with the
// topology: the index array when present, else the location array. It
// returns nil for a mesh without either.
func (m *Mesh) Drawable() *vertex.Drawable {
	a := m.indices
	if a == nil {
		a = m.Locations()
	}
	if a == nil {
		return nil
	}
	d := vertex.NewDrawable(a, m.mode)
	d.First = m.first
	d.StripLengths = m.strips
	return d
}

// FaceCount returns the number of primitives drawn.
func (m *Mesh) FaceCount() int {
	if d := m.Drawable(); d != nil {
		return d.FaceCount()
	}
	return 0
}

// FaceIndices returns the vertex indices of face f.
func (m *Mesh) FaceIndices(f int) [3]int {
	d := m.Drawable()
	if d == nil {
		errs.Precondition("mesh.FaceIndices", "mesh %q has no geometry", m.name)
	}
	return d.FaceIndices(f)
}

// Face returns the corner locations of face f.
func (m *Mesh) Face(f int) math.Face {
	idx := m.FaceIndices(f)
	loc := m.Locations()
	return math.Face{A: loc.Vec3(idx[0]), B: loc.Vec3(idx[1]), C: loc.Vec3(idx[2])}
}

// Location returns the location of vertex i.
func (m *Mesh) Location(i int) math.Vec3 { return m.mustArray(gpu.Location).Vec3(i) }

// SetLocation sets the location of vertex i.
func (m *Mesh) SetLocation(i int, v math.Vec3) { m.mustArray(gpu.Location).SetVec3(i, v) }

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) math.Vec3 { return m.mustArray(gpu.Normal).Vec3(i) }

// SetNormal sets the normal of vertex i.
func (m *Mesh) SetNormal(i int, n math.Vec3) { m.mustArray(gpu.Normal).SetVec3(i, n) }

// Color returns the color of vertex i.
func (m *Mesh) Color(i int) math.Color { return m.mustArray(gpu.Color).Color(i) }

// SetColor sets the color of vertex i.
func (m *Mesh) SetColor(i int, c math.Color) { m.mustArray(gpu.Color).SetColor(i, c) }

// TexCoord returns the tex coord of vertex i for texture unit.
func (m *Mesh) TexCoord(unit, i int) math.Vec2 {
	return m.mustTexCoords(unit).Vec2(i)
}

// SetTexCoord sets the tex coord of vertex i for texture unit.
func (m *Mesh) SetTexCoord(unit, i int, tc math.Vec2) {
	m.mustTexCoords(unit).SetVec2(i, tc)
}

// Index returns index i.
func (m *Mesh) Index(i int) int { return m.mustArray(gpu.Index).Index(i) }

// SetIndex sets index i.
func (m *Mesh) SetIndex(i, v int) { m.mustArray(gpu.Index).SetIndex(i, v) }

func (m *Mesh) mustArray(sem gpu.Semantic) *vertex.Array {
	a := m.VertexArray(sem)
	if a == nil {
		errs.Precondition("mesh."+sem.String(), "mesh %q has no %v array", m.name, sem)
	}
	return a
}

func (m *Mesh) mustTexCoords(unit int) *vertex.Array {
	a := m.TexCoordsForUnit(unit)
	if a == nil {
		errs.Precondition("mesh.TexCoord", "mesh %q has no tex coords", m.name)
	}
	return a
}

func (m *Mesh) allArrays() []*vertex.Array {
	arrs := m.vertexArrays()
	if m.indices != nil {
		arrs = append(arrs, m.indices)
	}
	return arrs
}

// Upload creates GPU buffers for every array. Arrays whose buffer cannot be
// allocated keep streaming from CPU memory; only other failures are
// returned.
func (m *Mesh) Upload(ctx *gpu.Context) error {
	if loc := m.Locations(); loc != nil && loc.HasCPUData() {
		m.updateGeometry()
	}
	var err error
	for _, a := range m.allArrays() {
		if uerr := a.Upload(ctx); uerr != nil && !errors.Is(uerr, errs.ErrResource) {
			err = multierr.Append(err, uerr)
		}
	}
	return err
}

// IsUploaded reports whether every array is held in a GPU buffer.
func (m *Mesh) IsUploaded() bool {
	arrs := m.allArrays()
	for _, a := range arrs {
		if !a.IsUploaded() {
			return false
		}
	}
	return len(arrs) > 0
}

// UpdateGPURange copies vertices [first, first+count) of every vertex
// aspect to the GPU.
func (m *Mesh) UpdateGPURange(ctx *gpu.Context, first, count int) error {
	var err error
	for _, a := range m.vertexArrays() {
		if a.Owner() == nil {
			err = multierr.Append(err, a.UpdateGPURange(ctx, first, count))
		}
	}
	return err
}

// UpdateIndicesGPURange copies indices [first, first+count) to the GPU.
func (m *Mesh) UpdateIndicesGPURange(ctx *gpu.Context, first, count int) error {
	if m.indices == nil {
		return nil
	}
	return m.indices.UpdateGPURange(ctx, first, count)
}

// ReleaseRedundantData frees the CPU copies the GPU already holds. The
// bounding geometry is computed first so it survives the release.
func (m *Mesh) ReleaseRedundantData() {
	if loc := m.Locations(); loc != nil && loc.HasCPUData() {
		m.updateGeometry()
	}
	for _, a := range m.allArrays() {
		a.ReleaseRedundantData()
	}
}

// DeleteGPUBuffers releases every GPU buffer.
func (m *Mesh) DeleteGPUBuffers(ctx *gpu.Context) {
	for _, a := range m.allArrays() {
		a.DeleteGPUBuffer(ctx)
	}
}

// Draw binds the vertex aspects, binds tex coords for textureUnits units
// and issues the draw calls. Slots of absent aspects are disabled. The
// material or fallback color must already be bound.
func (m *Mesh) Draw(ctx *gpu.Context, textureUnits int) {
	d := m.Drawable()
	if d == nil || m.Locations() == nil {
		return
	}
	var keep uint32
	for _, a := range m.arrays {
		if a != nil {
			a.BindForDraw(ctx)
			keep |= 1 << uint(a.Semantic().Slot())
		}
	}
	for u := 0; u < min(textureUnits, gpu.MaxTexCoords); u++ {
		if tc := m.TexCoordsForUnit(u); tc != nil {
			sem := gpu.TexCoord(u)
			tc.BindAs(ctx, sem)
			keep |= 1 << uint(sem.Slot())
		}
	}
	ctx.DisableAttributesExcept(keep)
	d.Draw(ctx)
}

// Copy returns a mesh sharing this mesh's arrays with its own topology.
func (m *Mesh) Copy() *Mesh {
	c := *m
	c.texCoords = append([]*vertex.Array(nil), m.texCoords...)
	c.strips = append([]int(nil), m.strips...)
	return &c
}
