// Package vertex implements typed, strided views over vertex data.
//
// An Array holds one aspect of every vertex (locations, normals, colors and
// so on) in a byte buffer. Several arrays may interleave their aspects in
// one shared buffer, in which case the first array owns the memory and the
// GPU buffer and the others resolve both through it.
package vertex

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/internal/logger"
	"github.com/Faultbox/retain3d/internal/metrics"
)

var lastID atomic.Uint64

// Array is one vertex aspect over a byte buffer.
type Array struct {
	id       uint64
	semantic gpu.Semantic

	data          []byte
	owned         bool
	released      bool
	count         int
	elementOffset int
	elementSize   int
	elementType   gpu.ElementType
	stride        int
	normalize     bool

	bufferID uint32
	gpuCount int
	// stale marks a GPU buffer sized for gpuCount vertices after the
	// vertex count changed. It is respecified by the next Upload.
	stale        bool
	target       gpu.BufferTarget
	usage        gpu.Usage
	mayBuffer    bool
	mayRelease   bool
	uploadFailed bool

	// owner is set on arrays interleaved into another array's buffer.
	owner *Array

	version uint64
}

func newArray(sem gpu.Semantic, typ gpu.ElementType, size int) *Array {
	return &Array{
		id:          lastID.Add(1),
		semantic:    sem,
		elementType: typ,
		elementSize: size,
		target:      gpu.ArrayBuffer,
		usage:       gpu.StaticDraw,
		mayBuffer:   true,
		mayRelease:  true,
	}
}

// ID returns a process-unique identifier.
func (a *Array) ID() uint64 { return a.id }

// Semantic returns the aspect the array holds.
func (a *Array) Semantic() gpu.Semantic { return a.semantic }

// ElementType returns the component type.
func (a *Array) ElementType() gpu.ElementType { return a.elementType }

// ElementSize returns the number of components per vertex.
func (a *Array) ElementSize() int { return a.elementSize }

// ElementOffset returns the byte offset of this aspect within a vertex.
func (a *Array) ElementOffset() int { return a.elementOffset }

// ElementLength returns the size of one element in bytes.
func (a *Array) ElementLength() int {
	return a.elementType.Size() * a.elementSize
}

// Stride returns the number of bytes between successive vertices. An unset
// stride means tightly packed elements.
func (a *Array) Stride() int {
	if a.stride < a.ElementLength() {
		return a.ElementLength()
	}
	return a.stride
}

// IsInterleaved reports whether vertices carry other data between
// successive elements of this array.
func (a *Array) IsInterleaved() bool {
	return a.Stride() > a.ElementLength()
}

// Owner returns the array whose buffer this one is interleaved into, or nil.
func (a *Array) Owner() *Array { return a.owner }

// Target returns the buffer target.
func (a *Array) Target() gpu.BufferTarget { return a.target }

// Usage returns the buffer usage hint.
func (a *Array) Usage() gpu.Usage { return a.usage }

// SetUsage sets the buffer usage hint used by the next upload.
func (a *Array) SetUsage(u gpu.Usage) { a.usage = u }

// ShouldNormalize reports whether integer components are normalized to
// [0, 1] or [-1, 1] by the pipeline.
func (a *Array) ShouldNormalize() bool { return a.normalize }

// SetShouldNormalize sets the pipeline normalization flag.
func (a *Array) SetShouldNormalize(n bool) { a.normalize = n }

// MayBuffer reports whether Upload may create a GPU buffer.
func (a *Array) MayBuffer() bool { return a.mayBuffer }

// SetMayBuffer controls whether Upload may create a GPU buffer. Arrays that
// may not are streamed from CPU memory on every draw.
func (a *Array) SetMayBuffer(b bool) { a.mayBuffer = b }

// MayReleaseAfterUpload reports whether ReleaseRedundantData frees the CPU
// copy.
func (a *Array) MayReleaseAfterUpload() bool { return a.mayRelease }

// SetMayReleaseAfterUpload controls whether ReleaseRedundantData frees the
// CPU copy once the GPU holds the data.
func (a *Array) SetMayReleaseAfterUpload(b bool) { a.mayRelease = b }

// Version is bumped on every content change. Dependents compare it to
// detect edits without observing every setter.
func (a *Array) Version() uint64 {
	if a.owner != nil {
		return a.owner.version + a.version
	}
	return a.version
}

// MarkChanged bumps the version after the caller edited the data directly.
func (a *Array) MarkChanged() {
	a.version++
	a.uploadFailed = false
}

// SetElementSize sets the number of components per vertex (1..4).
func (a *Array) SetElementSize(n int) error {
	if n < 1 || n > 4 {
		return errs.New(errs.ErrPrecondition, "vertex.SetElementSize", "element size %d outside 1..4", n)
	}
	if a.semantic == gpu.Index && n != 1 {
		return errs.New(errs.ErrPrecondition, "vertex.SetElementSize", "index arrays have one component")
	}
	a.elementSize = n
	return nil
}

// SetElementType sets the component type.
func (a *Array) SetElementType(t gpu.ElementType) error {
	if a.semantic == gpu.Index && !t.IsIndexType() {
		return errs.New(errs.ErrPrecondition, "vertex.SetElementType", "%v is not an index type", t)
	}
	a.elementType = t
	return nil
}

// SetStride sets the bytes between vertices. Zero means tightly packed.
func (a *Array) SetStride(stride int) error {
	if stride != 0 && stride < a.ElementLength() {
		return errs.New(errs.ErrPrecondition, "vertex.SetStride",
			"stride %d shorter than element length %d", stride, a.ElementLength())
	}
	a.stride = stride
	return nil
}

// SetElementOffset sets the byte offset of the element within a vertex.
func (a *Array) SetElementOffset(offset int) error {
	if offset < 0 || offset+a.ElementLength() > a.Stride() {
		return errs.New(errs.ErrPrecondition, "vertex.SetElementOffset",
			"offset %d does not fit stride %d", offset, a.Stride())
	}
	a.elementOffset = offset
	return nil
}

// Count returns the number of vertices.
func (a *Array) Count() int {
	if a.owner != nil {
		return a.owner.count
	}
	return a.count
}

// Bytes returns the CPU buffer, shared with interleaved siblings. It is nil
// when nothing is allocated or the CPU copy was released.
func (a *Array) Bytes() []byte {
	if a.owner != nil {
		return a.owner.data
	}
	return a.data
}

// HasCPUData reports whether the CPU copy is available.
func (a *Array) HasCPUData() bool {
	return a.Bytes() != nil
}

// IsReleased reports whether the CPU copy was freed after upload.
func (a *Array) IsReleased() bool {
	if a.owner != nil {
		return a.owner.released
	}
	return a.released
}

// Allocate sizes the buffer for n vertices. Existing vertices up to the
// smaller of the old and new count keep their bytes. Allocating zero
// vertices releases owned memory. Interleaved arrays allocate through their
// owner.
func (a *Array) Allocate(n int) {
	if a.owner != nil {
		a.owner.Allocate(n)
		return
	}
	if n <= 0 {
		if a.owned {
			a.data = nil
		}
		a.count = 0
		a.owned = false
		a.markResized()
		a.version++
		return
	}
	buf := make([]byte, n*a.Stride())
	if a.data != nil {
		copy(buf, a.data[:min(len(a.data), len(buf))])
	}
	a.data = buf
	a.owned = true
	a.released = false
	a.count = n
	a.markResized()
	a.version++
}

func (a *Array) markResized() {
	if a.bufferID != 0 && a.count != a.gpuCount {
		a.stale = true
	}
}

// SetData points the array at externally owned bytes holding count
// vertices.
func (a *Array) SetData(data []byte, count int) error {
	if a.owner != nil {
		return errs.New(errs.ErrPrecondition, "vertex.SetData", "array is interleaved into array %d", a.owner.id)
	}
	if need := count * a.Stride(); len(data) < need {
		return errs.New(errs.ErrPrecondition, "vertex.SetData",
			"%d bytes cannot hold %d vertices of stride %d", len(data), count, a.Stride())
	}
	a.data = data
	a.owned = false
	a.released = false
	a.count = count
	a.markResized()
	a.version++
	return nil
}

// IsOwned reports whether the array allocated its own buffer.
func (a *Array) IsOwned() bool { return a.owned }

// InterleaveWith places this array's elements at offset bytes within each
// vertex of owner's buffer. Both then share one CPU buffer and, after
// upload, one GPU buffer.
func (a *Array) InterleaveWith(owner *Array, offset int) error {
	for owner.owner != nil {
		owner = owner.owner
	}
	if owner == a {
		return errs.New(errs.ErrInconsistency, "vertex.InterleaveWith", "array cannot interleave with itself")
	}
	if a.owner == nil && a.bufferID != 0 {
		return errs.New(errs.ErrPrecondition, "vertex.InterleaveWith",
			"array %d still owns GPU buffer %d; delete it first", a.id, a.bufferID)
	}
	if offset < 0 || offset+a.ElementLength() > owner.Stride() {
		return errs.New(errs.ErrPrecondition, "vertex.InterleaveWith",
			"element of %d bytes at offset %d does not fit stride %d", a.ElementLength(), offset, owner.Stride())
	}
	a.owner = owner
	a.stride = owner.Stride()
	a.elementOffset = offset
	a.data = nil
	a.owned = false
	a.bufferID = 0
	a.version++
	return nil
}

func (a *Array) vertexOffset(op string, i int) int {
	if a.Bytes() == nil {
		if a.IsReleased() {
			errs.Precondition(op, "CPU data of array %d was released", a.id)
		}
		errs.Precondition(op, "array %d has no CPU data", a.id)
	}
	if i < 0 || i >= a.Count() {
		errs.Precondition(op, "vertex %d outside [0, %d)", i, a.Count())
	}
	return i*a.Stride() + a.elementOffset
}

// AddressOfVertex returns the element bytes of vertex i within the buffer.
func (a *Array) AddressOfVertex(i int) ([]byte, error) {
	if a.Bytes() == nil {
		if a.IsReleased() {
			return nil, errs.New(errs.ErrPrecondition, "vertex.AddressOfVertex", "CPU data of array %d was released", a.id)
		}
		return nil, errs.New(errs.ErrPrecondition, "vertex.AddressOfVertex", "array %d has no CPU data", a.id)
	}
	if i < 0 || i >= a.Count() {
		return nil, errs.New(errs.ErrPrecondition, "vertex.AddressOfVertex", "vertex %d outside [0, %d)", i, a.Count())
	}
	p := i*a.Stride() + a.elementOffset
	return a.Bytes()[p : p+a.ElementLength()], nil
}

// OffsetOfVertex returns the byte offset of vertex i's element in Bytes.
func (a *Array) OffsetOfVertex(i int) int {
	return i*a.Stride() + a.elementOffset
}

// CopyVertices copies count elements from vertex src to vertex dst within
// the array. Overlapping ranges are handled. Only this aspect's bytes move;
// interleaved siblings are untouched.
func (a *Array) CopyVertices(count, src, dst int) {
	if count <= 0 || src == dst {
		return
	}
	a.vertexOffset("vertex.CopyVertices", src+count-1)
	a.vertexOffset("vertex.CopyVertices", dst+count-1)
	a.vertexOffset("vertex.CopyVertices", min(src, dst))

	buf, stride, n := a.Bytes(), a.Stride(), a.ElementLength()
	move := func(i int) {
		s := (src+i)*stride + a.elementOffset
		d := (dst+i)*stride + a.elementOffset
		copy(buf[d:d+n], buf[s:s+n])
	}
	if dst > src {
		for i := count - 1; i >= 0; i-- {
			move(i)
		}
	} else {
		for i := 0; i < count; i++ {
			move(i)
		}
	}
	a.version++
}

// CopyVerticesTo exports count elements starting at vertex src into dst
// starting at vertex dstIndex. Both arrays must have the same element
// layout.
func (a *Array) CopyVerticesTo(dst *Array, count, src, dstIndex int) error {
	if a.elementType != dst.elementType || a.elementSize != dst.elementSize {
		return errs.New(errs.ErrPrecondition, "vertex.CopyVerticesTo",
			"element layout %v×%d differs from %v×%d", a.elementType, a.elementSize, dst.elementType, dst.elementSize)
	}
	if count <= 0 {
		return nil
	}
	if src < 0 || src+count > a.Count() || dstIndex < 0 || dstIndex+count > dst.Count() {
		return errs.New(errs.ErrPrecondition, "vertex.CopyVerticesTo", "vertex range out of bounds")
	}
	if a.Bytes() == nil || dst.Bytes() == nil {
		return errs.New(errs.ErrPrecondition, "vertex.CopyVerticesTo", "CPU data unavailable")
	}
	n := a.ElementLength()
	for i := 0; i < count; i++ {
		s := a.OffsetOfVertex(src + i)
		d := dst.OffsetOfVertex(dstIndex + i)
		copy(dst.Bytes()[d:d+n], a.Bytes()[s:s+n])
	}
	dst.version++
	return nil
}

// CopyVerticesFrom imports count elements of src starting at vertex
// srcIndex into this array starting at vertex dst.
func (a *Array) CopyVerticesFrom(src *Array, count, srcIndex, dst int) error {
	return src.CopyVerticesTo(a, count, srcIndex, dst)
}

// BufferID returns the GPU buffer holding the data, resolving through the
// owner for interleaved arrays. Zero means the array streams from CPU
// memory, which is also the case while a resized buffer awaits Upload.
func (a *Array) BufferID() uint32 {
	if a.owner != nil {
		a.bufferID = a.owner.BufferID()
	}
	if a.stale {
		return 0
	}
	return a.bufferID
}

// IsUploaded reports whether a GPU buffer holds the data.
func (a *Array) IsUploaded() bool {
	return a.BufferID() != 0
}

// Upload copies the whole CPU buffer into a new GPU buffer. A buffer whose
// vertex count changed since it was filled is respecified in place.
// Otherwise Upload does nothing when a buffer already exists, when
// buffering is disabled, or when there is no data. An allocation failure is logged and returned as an
// errs.ErrResource error; the array then keeps streaming from CPU memory.
func (a *Array) Upload(ctx *gpu.Context) error {
	if a.owner != nil {
		err := a.owner.Upload(ctx)
		a.bufferID = a.owner.bufferID
		return err
	}
	if a.stale {
		return a.respecify(ctx)
	}
	if a.bufferID != 0 || !a.mayBuffer || a.uploadFailed || a.count == 0 {
		return nil
	}
	if a.data == nil {
		return errs.New(errs.ErrPrecondition, "vertex.Upload", "array %d has no CPU data", a.id)
	}
	id, err := ctx.UploadBuffer(a.target, a.data[:a.count*a.Stride()], a.usage)
	if err != nil {
		a.uploadFailed = true
		metrics.CountFallback()
		logger.Warn("vertex buffer upload failed, streaming from CPU memory",
			zap.Uint64("array", a.id),
			zap.Stringer("semantic", a.semantic),
			zap.Int("bytes", a.count*a.Stride()),
			zap.Error(err),
		)
		return err
	}
	a.bufferID = id
	a.gpuCount = a.count
	return nil
}

// respecify refills the stale buffer with the current vertices. On failure
// the buffer is deleted and the array streams from CPU memory.
func (a *Array) respecify(ctx *gpu.Context) error {
	if a.count == 0 {
		return nil
	}
	if a.data == nil {
		return errs.New(errs.ErrPrecondition, "vertex.Upload", "array %d has no CPU data", a.id)
	}
	data := a.data[:a.count*a.Stride()]
	if err := ctx.RespecifyBuffer(a.target, a.bufferID, data, a.usage); err != nil {
		ctx.ForgetArray(a.id)
		ctx.DeleteBuffer(a.bufferID)
		a.bufferID, a.gpuCount, a.stale = 0, 0, false
		a.uploadFailed = true
		metrics.CountFallback()
		logger.Warn("vertex buffer resize failed, streaming from CPU memory",
			zap.Uint64("array", a.id),
			zap.Stringer("semantic", a.semantic),
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)
		return err
	}
	logger.Debug("vertex buffer resized",
		zap.Uint64("array", a.id),
		zap.Int("from", a.gpuCount),
		zap.Int("to", a.count),
	)
	a.gpuCount = a.count
	a.stale = false
	return nil
}

// UpdateGPURange copies vertices [first, first+count) from the CPU buffer
// into the existing GPU buffer. Streaming arrays have nothing to update.
func (a *Array) UpdateGPURange(ctx *gpu.Context, first, count int) error {
	if a.owner != nil {
		return a.owner.UpdateGPURange(ctx, first, count)
	}
	if a.bufferID == 0 || count <= 0 {
		return nil
	}
	if a.data == nil {
		return errs.New(errs.ErrPrecondition, "vertex.UpdateGPURange", "array %d has no CPU data", a.id)
	}
	if a.stale {
		if first < 0 || first+count > a.count {
			return errs.New(errs.ErrPrecondition, "vertex.UpdateGPURange",
				"range [%d, %d) outside %d vertices", first, first+count, a.count)
		}
		return a.respecify(ctx)
	}
	if first < 0 || first+count > a.gpuCount || first+count > a.count {
		return errs.New(errs.ErrPrecondition, "vertex.UpdateGPURange",
			"range [%d, %d) outside %d uploaded vertices", first, first+count, min(a.gpuCount, a.count))
	}
	stride := a.Stride()
	ctx.UpdateBuffer(a.target, a.bufferID, first*stride, a.data[first*stride:(first+count)*stride])
	return nil
}

// ReleaseRedundantData frees the CPU copy when the GPU holds the data and
// releasing is allowed. The GPU buffer is kept.
func (a *Array) ReleaseRedundantData() {
	if a.owner != nil || a.bufferID == 0 || a.stale || !a.mayRelease || a.data == nil {
		return
	}
	a.data = nil
	a.owned = false
	a.released = true
	logger.Debug("released CPU vertex data", zap.Uint64("array", a.id), zap.Uint32("buffer", a.bufferID))
}

// DeleteGPUBuffer releases the GPU buffer. Interleaved arrays leave the
// owner's buffer alone.
func (a *Array) DeleteGPUBuffer(ctx *gpu.Context) {
	ctx.ForgetArray(a.id)
	if a.owner != nil {
		a.bufferID = 0
		return
	}
	if a.bufferID == 0 {
		return
	}
	ctx.DeleteBuffer(a.bufferID)
	a.bufferID = 0
	a.gpuCount = 0
	a.stale = false
}

// BindForDraw points the attribute slot of the array's semantic at its
// data.
func (a *Array) BindForDraw(ctx *gpu.Context) {
	a.BindAs(ctx, a.semantic)
}

// BindAs points the attribute slot of sem at this array's data. The bind is
// skipped when the context reports this array already bound for sem in the
// current frame.
func (a *Array) BindAs(ctx *gpu.Context, sem gpu.Semantic) {
	slot := sem.Slot()
	if slot < 0 {
		errs.Precondition("vertex.BindAs", "semantic %v has no attribute slot", sem)
	}
	if ctx.BoundArray(sem) == a.id && ctx.EnabledAttributes()&(1<<uint(slot)) != 0 {
		return
	}
	size, typ, norm, stride := int32(a.elementSize), a.elementType, a.normalize, int32(a.Stride())
	if id := a.BufferID(); id != 0 {
		ctx.BindBuffer(gpu.ArrayBuffer, id)
		ctx.AttributePointer(uint32(slot), size, typ, norm, stride, a.elementOffset, nil)
	} else {
		buf := a.Bytes()
		if buf == nil {
			errs.Precondition("vertex.BindAs", "array %d has neither GPU nor CPU data", a.id)
		}
		ctx.AttributePointer(uint32(slot), size, typ, norm, stride, 0, buf[a.elementOffset:])
	}
	ctx.SetBoundArray(sem, a.id)
}
