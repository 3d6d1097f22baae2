package vertex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/pkg/math"
)

func newContext() (*gpu.Context, *gpu.Recorder) {
	rec := gpu.NewRecorder()
	return gpu.NewContext(rec), rec
}

func interleaved(t *testing.T, n int) (*Array, *Array) {
	t.Helper()
	loc := NewLocations()
	require.NoError(t, loc.SetStride(16))
	loc.Allocate(n)
	col := NewColors(gpu.UnsignedByte)
	require.NoError(t, col.InterleaveWith(loc, 12))
	return loc, col
}

func TestElementLayout(t *testing.T) {
	loc := NewLocations()
	assert.Equal(t, 12, loc.ElementLength())
	assert.Equal(t, 12, loc.Stride())
	assert.False(t, loc.IsInterleaved())

	col := NewColors(gpu.UnsignedByte)
	assert.Equal(t, 4, col.ElementLength())
	assert.True(t, col.ShouldNormalize())

	idx := NewIndices(gpu.UnsignedShort)
	assert.Equal(t, gpu.ElementArrayBuffer, idx.Target())
	assert.Equal(t, -1, idx.Semantic().Slot())
}

func TestSetElementSizeRejectsOutOfRange(t *testing.T) {
	a := NewNormals()
	for _, n := range []int{-1, 0, 5} {
		err := a.SetElementSize(n)
		assert.ErrorIs(t, err, errs.ErrPrecondition, "size %d", n)
	}
	assert.Equal(t, 3, a.ElementSize())
	require.NoError(t, a.SetElementSize(4))
	assert.Equal(t, 16, a.ElementLength())

	err := NewIndices(gpu.UnsignedByte).SetElementSize(2)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestSetStrideShorterThanElement(t *testing.T) {
	a := NewLocations()
	assert.ErrorIs(t, a.SetStride(8), errs.ErrPrecondition)
	require.NoError(t, a.SetStride(0))
	assert.Equal(t, 12, a.Stride())
}

func TestInterleavedAddresses(t *testing.T) {
	loc, col := interleaved(t, 10)

	assert.True(t, loc.IsInterleaved())
	assert.True(t, col.IsInterleaved())
	assert.Equal(t, 16, col.Stride())
	assert.Equal(t, 10, col.Count())
	assert.Same(t, loc, col.Owner())

	for i := 0; i < 10; i++ {
		assert.Equal(t, loc.OffsetOfVertex(i)+12, col.OffsetOfVertex(i))

		la, err := loc.AddressOfVertex(i)
		require.NoError(t, err)
		ca, err := col.AddressOfVertex(i)
		require.NoError(t, err)
		assert.Len(t, la, 12)
		assert.Len(t, ca, 4)
		assert.Same(t, &loc.Bytes()[loc.OffsetOfVertex(i)], &la[0])
		assert.Same(t, &loc.Bytes()[loc.OffsetOfVertex(i)+12], &ca[0])
	}
}

func TestInterleavedWritesDoNotOverlap(t *testing.T) {
	loc, col := interleaved(t, 3)
	for i := 0; i < 3; i++ {
		loc.SetVec3(i, math.Vec3{X: float32(i), Y: 1, Z: -1})
		col.SetColor(i, math.Color{R: 1, G: 0, B: 0, A: 1})
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, math.Vec3{X: float32(i), Y: 1, Z: -1}, loc.Vec3(i))
		assert.Equal(t, math.Color{R: 1, G: 0, B: 0, A: 1}, col.Color(i))
	}
}

func TestInterleaveWithRejectsBadOffset(t *testing.T) {
	loc := NewLocations()
	require.NoError(t, loc.SetStride(16))
	assert.ErrorIs(t, NewNormals().InterleaveWith(loc, 8), errs.ErrPrecondition)
	assert.ErrorIs(t, loc.InterleaveWith(loc, 0), errs.ErrInconsistency)
}

func TestAllocateKeepsPrefix(t *testing.T) {
	a := NewLocations()
	a.Allocate(2)
	a.SetVec3(0, math.Vec3{X: 1, Y: 2, Z: 3})
	a.SetVec3(1, math.Vec3{X: 4, Y: 5, Z: 6})

	a.Allocate(4)
	assert.Equal(t, 4, a.Count())
	assert.Equal(t, math.Vec3{X: 4, Y: 5, Z: 6}, a.Vec3(1))
	assert.Equal(t, math.Vec3{}, a.Vec3(3))

	a.Allocate(0)
	assert.Equal(t, 0, a.Count())
	assert.False(t, a.HasCPUData())
}

func TestSetDataExternal(t *testing.T) {
	a := NewTexCoords(0)
	assert.ErrorIs(t, a.SetData(make([]byte, 15), 2), errs.ErrPrecondition)

	buf := make([]byte, 16)
	require.NoError(t, a.SetData(buf, 2))
	assert.False(t, a.IsOwned())
	a.SetVec2(1, math.Vec2{X: 0.25, Y: 0.75})
	assert.Equal(t, math.Vec2{X: 0.25, Y: 0.75}, a.Vec2(1))
}

func TestColorAccessorsNormalizeBytes(t *testing.T) {
	a := NewColors(gpu.UnsignedByte)
	a.Allocate(1)
	a.SetColor(0, math.Color{R: 1, G: 0.5, B: 0, A: 1})

	buf, err := a.AddressOfVertex(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 128, 0, 255}, buf)

	c := a.Color(0)
	assert.InDelta(t, 1, c.R, 1e-6)
	assert.InDelta(t, 128.0/255, c.G, 1e-6)
	assert.InDelta(t, 1, c.A, 1e-6)
}

func TestVec4DefaultsW(t *testing.T) {
	a := NewLocations()
	a.Allocate(1)
	a.SetVec3(0, math.Vec3{X: 1, Y: 2, Z: 3})
	assert.Equal(t, math.Vec4{X: 1, Y: 2, Z: 3, W: 1}, a.Vec4(0))
}

func TestAccessorOutOfRangePanics(t *testing.T) {
	a := NewLocations()
	a.Allocate(2)
	assert.PanicsWithError(t, "vertex.Vec3: precondition violated: vertex 2 outside [0, 2)", func() {
		a.Vec3(2)
	})
}

func TestCopyVerticesOverlapping(t *testing.T) {
	a := NewPointSizes()
	a.Allocate(5)
	for i := 0; i < 5; i++ {
		a.SetFloat(i, float32(i))
	}

	a.CopyVertices(3, 0, 2)
	got := make([]float32, 5)
	for i := range got {
		got[i] = a.Float(i)
	}
	assert.Equal(t, []float32{0, 1, 0, 1, 2}, got)

	a.CopyVertices(3, 2, 0)
	for i := range got {
		got[i] = a.Float(i)
	}
	assert.Equal(t, []float32{0, 1, 2, 1, 2}, got)
}

func TestCopyVerticesLeavesSiblingsAlone(t *testing.T) {
	loc, col := interleaved(t, 2)
	loc.SetVec3(0, math.Vec3{X: 7})
	col.SetColor(1, math.ColorWhite)

	loc.CopyVertices(1, 0, 1)
	assert.Equal(t, math.Vec3{X: 7}, loc.Vec3(1))
	assert.Equal(t, math.ColorWhite, col.Color(1))
}

func TestCopyVerticesTo(t *testing.T) {
	src := NewNormals()
	src.Allocate(2)
	src.SetVec3(1, math.Vec3{Z: 1})

	dst := NewNormals()
	dst.Allocate(3)
	require.NoError(t, src.CopyVerticesTo(dst, 1, 1, 2))
	assert.Equal(t, math.Vec3{Z: 1}, dst.Vec3(2))

	assert.ErrorIs(t, src.CopyVerticesTo(NewTexCoords(0), 1, 0, 0), errs.ErrPrecondition)
	assert.ErrorIs(t, dst.CopyVerticesFrom(src, 2, 1, 0), errs.ErrPrecondition)
}

func TestVersionTracksEdits(t *testing.T) {
	loc, col := interleaved(t, 1)
	v := col.Version()
	loc.SetVec3(0, math.Vec3{X: 1})
	assert.NotEqual(t, v, col.Version())

	v = loc.Version()
	loc.MarkChanged()
	assert.Greater(t, loc.Version(), v)
}

func TestInterleavedUploadReleaseAndUpdate(t *testing.T) {
	ctx, rec := newContext()
	loc, col := interleaved(t, 100)
	fill := func(scale float32) {
		for i := 0; i < 100; i++ {
			f := float32(i)
			loc.SetVec3(i, math.Vec3{X: f * scale, Y: 2 * f * scale, Z: 3 * f * scale})
			col.SetColor(i, math.Color8{R: uint8(i), G: uint8(i), B: uint8(i), A: 255}.Color())
		}
	}
	fill(1)
	assert.Equal(t, math.Vec3{X: 7, Y: 14, Z: 21}, loc.Vec3(7))
	c, err := col.AddressOfVertex(7)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 7, 7, 255}, c)

	require.NoError(t, loc.Upload(ctx))
	require.NoError(t, col.Upload(ctx))
	id := loc.BufferID()
	require.NotZero(t, id)
	assert.Equal(t, id, col.BufferID())
	assert.Equal(t, 1, rec.BufferCount())

	want := append([]byte(nil), loc.Bytes()...)
	got, ok := rec.ReadBuffer(id)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Len(t, got, 1600)

	// Uploading again is a no-op.
	require.NoError(t, loc.Upload(ctx))
	assert.Equal(t, 1, rec.BufferCount())

	loc.ReleaseRedundantData()
	assert.False(t, loc.HasCPUData())
	assert.False(t, col.HasCPUData())
	assert.True(t, col.IsReleased())
	_, err = col.AddressOfVertex(0)
	assert.ErrorIs(t, err, errs.ErrPrecondition)
	assert.Panics(t, func() { loc.Vec3(0) })

	loc.Allocate(100)
	fill(1)
	require.NoError(t, loc.UpdateGPURange(ctx, 0, 100))
	got, _ = rec.ReadBuffer(id)
	assert.Equal(t, want, got)
	for _, i := range []int{0, 42, 99} {
		v := got[i*16 : i*16+16]
		f := float32(i)
		assert.Equal(t, math.Vec3{X: f, Y: 2 * f, Z: 3 * f}, loc.Vec3(i))
		assert.Equal(t, []byte{uint8(i), uint8(i), uint8(i), 255}, v[12:16], "color of vertex %d", i)
	}

	fill(2)
	require.NoError(t, col.UpdateGPURange(ctx, 10, 5))
	got, _ = rec.ReadBuffer(id)
	assert.Equal(t, loc.Bytes()[160:240], got[160:240])
	assert.Equal(t, want[:160], got[:160])

	assert.ErrorIs(t, loc.UpdateGPURange(ctx, 95, 10), errs.ErrPrecondition)
}

func TestGrowAfterUploadRespecifiesBuffer(t *testing.T) {
	ctx, rec := newContext()
	loc := NewLocations()
	loc.Allocate(10)
	for i := range 10 {
		loc.SetVec3(i, math.Vec3{X: float32(i)})
	}
	require.NoError(t, loc.Upload(ctx))
	id := loc.BufferID()
	require.NotZero(t, id)

	loc.Allocate(20)
	for i := 10; i < 20; i++ {
		loc.SetVec3(i, math.Vec3{X: float32(i)})
	}
	assert.False(t, loc.IsUploaded(), "a resized buffer must not be drawn from")
	loc.ReleaseRedundantData()
	require.True(t, loc.HasCPUData())

	// Drawing before the refill streams from CPU memory.
	loc.BindForDraw(ctx)
	assert.NotNil(t, rec.Attribute(0).Data)

	require.NoError(t, loc.UpdateGPURange(ctx, 0, 20))
	assert.Equal(t, id, loc.BufferID(), "the buffer keeps its id")
	assert.Equal(t, 1, rec.BufferCount())
	got, ok := rec.ReadBuffer(id)
	require.True(t, ok)
	assert.Equal(t, loc.Bytes(), got)
	assert.Len(t, got, 20*12)

	loc.Allocate(5)
	require.NoError(t, loc.Upload(ctx))
	got, _ = rec.ReadBuffer(id)
	assert.Len(t, got, 5*12)
	require.NoError(t, loc.UpdateGPURange(ctx, 0, 5))
	assert.ErrorIs(t, loc.UpdateGPURange(ctx, 0, 6), errs.ErrPrecondition)
}

func TestInterleaveRejectsArrayWithOwnBuffer(t *testing.T) {
	ctx, rec := newContext()
	loc := NewLocations()
	require.NoError(t, loc.SetStride(16))
	loc.Allocate(4)

	col := NewColors(gpu.UnsignedByte)
	col.Allocate(4)
	require.NoError(t, col.Upload(ctx))
	require.Equal(t, 1, rec.BufferCount())

	assert.ErrorIs(t, col.InterleaveWith(loc, 12), errs.ErrPrecondition)

	col.DeleteGPUBuffer(ctx)
	assert.Zero(t, rec.BufferCount())
	require.NoError(t, col.InterleaveWith(loc, 12))
	assert.True(t, col.IsInterleaved())
}

func TestReleaseKeepsDataWithoutBuffer(t *testing.T) {
	a := NewLocations()
	a.Allocate(1)
	a.ReleaseRedundantData()
	assert.True(t, a.HasCPUData())

	ctx, _ := newContext()
	a.SetMayReleaseAfterUpload(false)
	require.NoError(t, a.Upload(ctx))
	a.ReleaseRedundantData()
	assert.True(t, a.HasCPUData())
}

func TestUploadFailureFallsBackToStreaming(t *testing.T) {
	ctx, rec := newContext()
	rec.FailBufferAllocation = true

	loc := NewLocations()
	loc.Allocate(3)
	loc.SetVec3(2, math.Vec3{X: 1, Y: 2, Z: 3})

	err := loc.Upload(ctx)
	assert.ErrorIs(t, err, errs.ErrResource)
	assert.False(t, loc.IsUploaded())

	loc.ReleaseRedundantData()
	require.True(t, loc.HasCPUData())

	loc.BindForDraw(ctx)
	attr := rec.Attribute(0)
	assert.True(t, attr.Enabled)
	assert.NotNil(t, attr.Data)

	raw, err := rec.AttributeBytes(0, 2)
	require.NoError(t, err)
	want, _ := loc.AddressOfVertex(2)
	assert.Equal(t, want, raw)

	// A failed upload is not retried until the data changes.
	rec.FailBufferAllocation = false
	require.NoError(t, loc.Upload(ctx))
	assert.False(t, loc.IsUploaded())
	loc.MarkChanged()
	require.NoError(t, loc.Upload(ctx))
	assert.True(t, loc.IsUploaded())
}

func TestStreamingWhenBufferingDisabled(t *testing.T) {
	ctx, rec := newContext()
	a := NewNormals()
	a.SetMayBuffer(false)
	a.Allocate(1)
	require.NoError(t, a.Upload(ctx))
	assert.False(t, a.IsUploaded())
	assert.Zero(t, rec.BufferCount())
}

func TestBindForDrawSkipsRedundantBinds(t *testing.T) {
	ctx, rec := newContext()
	loc, col := interleaved(t, 4)
	require.NoError(t, loc.Upload(ctx))

	loc.BindForDraw(ctx)
	col.BindForDraw(ctx)
	binds := ctx.Stats().AttributeBinds
	assert.Equal(t, 2, binds)

	loc.BindForDraw(ctx)
	col.BindForDraw(ctx)
	assert.Equal(t, binds, ctx.Stats().AttributeBinds)

	attr := rec.Attribute(uint32(gpu.Color.Slot()))
	assert.Equal(t, loc.BufferID(), attr.Buffer)
	assert.Equal(t, 12, attr.Offset)
	assert.Equal(t, int32(16), attr.Stride)
	assert.True(t, attr.Normalized)

	ctx.ResetFrame()
	loc.BindForDraw(ctx)
	assert.Equal(t, 1, ctx.Stats().AttributeBinds)
}

func TestDeleteGPUBuffer(t *testing.T) {
	ctx, rec := newContext()
	loc, col := interleaved(t, 1)
	require.NoError(t, loc.Upload(ctx))

	col.DeleteGPUBuffer(ctx)
	assert.Equal(t, 1, rec.BufferCount())

	loc.DeleteGPUBuffer(ctx)
	assert.Zero(t, rec.BufferCount())
	assert.False(t, col.IsUploaded())
}

func TestTexCoordHelpers(t *testing.T) {
	a := NewTexCoords(1)
	assert.Equal(t, gpu.TexCoord1, a.Semantic())
	a.Allocate(1)
	a.SetVec2(0, math.Vec2{X: 0.25, Y: 0.5})

	a.FlipVertically()
	assert.Equal(t, math.Vec2{X: 0.25, Y: 0.5}, a.Vec2(0))
	a.FlipHorizontally()
	assert.Equal(t, math.Vec2{X: 0.75, Y: 0.5}, a.Vec2(0))
	a.ScaleTexCoords(2, 0.5)
	assert.Equal(t, math.Vec2{X: 1.5, Y: 0.25}, a.Vec2(0))
}
