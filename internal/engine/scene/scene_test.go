package scene

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/retain3d/internal/config"
	"github.com/Faultbox/retain3d/internal/engine/camera"
	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/engine/lighting"
	"github.com/Faultbox/retain3d/internal/engine/material"
	"github.com/Faultbox/retain3d/internal/engine/mesh"
	"github.com/Faultbox/retain3d/internal/engine/node"
	"github.com/Faultbox/retain3d/internal/engine/visitor"
	"github.com/Faultbox/retain3d/pkg/math"
)

func newTestScene(t *testing.T) (*Scene, *gpu.Recorder) {
	t.Helper()
	rec := gpu.NewRecorder()
	s := New(config.Default().Scene, gpu.NewContext(rec), material.NewBasicProgram("basic", 1))
	s.SetViewport(math.Viewport{Width: 100, Height: 100})
	t.Cleanup(s.Close)
	return s, rec
}

func box(name string, z float32) *node.Node {
	n := node.NewMeshNode(name, mesh.NewBox(name, math.NewBox(
		math.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})))
	n.SetLocation(math.Vec3{Z: z})
	return n
}

func TestNewScene(t *testing.T) {
	s, _ := newTestScene(t)
	require.NotNil(t, s.ActiveCamera())
	assert.Same(t, s.Root(), s.ActiveCamera().Parent())
	assert.Len(t, s.Cameras(), 1)

	other := camera.New("other")
	s.SetActiveCamera(other)
	assert.Same(t, other, s.ActiveCamera())
	assert.Len(t, s.Cameras(), 2)
	assert.Same(t, s.Root(), other.Parent())
}

func TestUpdateClampsDeltaTime(t *testing.T) {
	s, _ := newTestScene(t)
	var seen []float32
	s.Root().AddBehavior(node.BehaviorFuncs{
		Pre: func(_ *node.Node, ctx node.Context) { seen = append(seen, ctx.DeltaTime()) },
	})

	require.NoError(t, s.Update(0.02))
	require.NoError(t, s.Update(5))
	require.NoError(t, s.Update(-1))
	assert.Equal(t, []float32{0.02, 0.1, 0}, seen)
}

func TestTick(t *testing.T) {
	s, _ := newTestScene(t)
	cfg := s.Config()
	cfg.MinUpdateInterval = 0.01
	s.SetConfig(cfg)

	t0 := time.Unix(100, 0)
	dt, ok := s.Tick(t0)
	assert.True(t, ok)
	assert.Zero(t, dt)

	_, ok = s.Tick(t0.Add(5 * time.Millisecond))
	assert.False(t, ok)

	dt, ok = s.Tick(t0.Add(20 * time.Millisecond))
	assert.True(t, ok)
	assert.InDelta(t, 0.02, dt, 1e-6)
}

func TestDrawFrame(t *testing.T) {
	s, rec := newTestScene(t)
	require.NoError(t, s.Add(box("front", -5), nil))
	require.NoError(t, s.Add(box("behind", 5), nil))

	var got visitor.DrawStats
	s.OnDrawn = func(st visitor.DrawStats) { got = st }

	require.NoError(t, s.Frame(time.Unix(1, 0)))
	assert.Equal(t, 1, got.Drawn)
	assert.Equal(t, 1, got.Culled)
	assert.Equal(t, uint64(1), s.Frames())
	assert.Equal(t, 1, rec.Clears)
	assert.Equal(t, math.Viewport{Width: 100, Height: 100}, rec.View)
	assert.NotEmpty(t, rec.Draws)

	s.SetCulling(false)
	st, err := s.Draw()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Drawn)
}

func TestConfigDefaultsReachNodes(t *testing.T) {
	s, _ := newTestScene(t)
	n := box("b", -5)
	require.NoError(t, s.Add(n, nil))

	cfg := s.Config()
	cfg.BoundingVolumePadding = 0.25
	cfg.ScaleTolerance = 0.01
	s.SetConfig(cfg)
	assert.Equal(t, float32(0.25), n.Drawable().BoundingVolumePadding())
	assert.Equal(t, float32(0.01), n.ScaleTolerance())

	late := box("late", -6)
	require.NoError(t, s.Add(late, n))
	assert.Equal(t, float32(0.25), late.Drawable().BoundingVolumePadding())
}

func TestPreloadFollowsConfig(t *testing.T) {
	s, _ := newTestScene(t)
	assert.False(t, s.Meshes.IsPreloading())
	cfg := s.Config()
	cfg.PreloadResources = true
	s.SetConfig(cfg)
	assert.True(t, s.Meshes.IsPreloading())
	assert.True(t, s.Textures.IsPreloading())
}

func TestLights(t *testing.T) {
	s, _ := newTestScene(t)
	sun := node.NewLightNode("sun", lighting.New(lighting.Directional))
	hidden := node.NewLightNode("hidden", lighting.New(lighting.Point))
	hidden.SetVisible(false)
	require.NoError(t, s.Add(sun, nil))
	require.NoError(t, s.Add(hidden, nil))

	ls := s.Lights()
	require.Len(t, ls, 1)
	assert.Same(t, sun.Light(), ls[0])
}

func TestPickAt(t *testing.T) {
	s, _ := newTestScene(t)
	group := node.New("group")
	group.SetTouchEnabled(true)
	var picked *node.Node
	group.SetPickHandler(node.PickHandlerFunc(func(n *node.Node, _ node.PickHit) { picked = n }))
	target := box("target", -5)
	require.NoError(t, s.Add(group, nil))
	require.NoError(t, s.Add(target, group))
	require.NoError(t, s.Add(box("untouchable", -3), nil))
	require.NoError(t, s.Update(0))

	// The untouchable box is nearer but does not take part.
	hit, ok := s.PickAt(50, 50)
	require.True(t, ok)
	assert.Same(t, target, hit.Node)
	assert.Same(t, group, picked)
	// The ray starts on the near plane at z = -1.
	assert.InDelta(t, 3.5, hit.Distance, 1e-3)

	_, ok = s.PickAt(1, 1)
	assert.False(t, ok)
}

func TestPickNearest(t *testing.T) {
	s, _ := newTestScene(t)
	far, near := box("far", -8), box("near", -4)
	far.SetTouchEnabled(true)
	near.SetTouchEnabled(true)
	require.NoError(t, s.Add(far, nil))
	require.NoError(t, s.Add(near, nil))

	hit, ok := s.Pick(math.Ray{Start: math.Vec3{X: 0.1, Y: 0.2}, Direction: math.Vec3{Z: -1}})
	require.True(t, ok)
	assert.Same(t, near, hit.Node)
	assert.InDelta(t, 3.5, hit.Distance, 1e-4)
}

func TestLoopHandsOffFrames(t *testing.T) {
	s, _ := newTestScene(t)
	updates := 0
	s.Root().AddBehavior(node.BehaviorFuncs{
		Pre: func(*node.Node, node.Context) { updates++ },
	})

	ticks := make(chan time.Time, 3)
	t0 := time.Unix(10, 0)
	for i := range 3 {
		ticks <- t0.Add(time.Duration(i) * 16 * time.Millisecond)
	}
	close(ticks)

	require.NoError(t, s.Loop(context.Background(), ticks))
	assert.Equal(t, 3, updates)
	assert.Equal(t, uint64(3), s.Frames())
}

func TestLoopCancel(t *testing.T) {
	s, _ := newTestScene(t)
	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan time.Time)

	s.OnDrawn = func(visitor.DrawStats) { cancel() }
	go func() {
		ticks <- time.Unix(1, 0)
	}()

	err := s.Loop(ctx, ticks)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(1), s.Frames())
}

func TestUploadAndClose(t *testing.T) {
	rec := gpu.NewRecorder()
	s := New(config.Default().Scene, gpu.NewContext(rec), material.NewBasicProgram("basic", 1))
	require.NoError(t, s.Add(box("a", -5), nil))
	require.NoError(t, s.Upload())
	assert.NotZero(t, rec.BufferCount())

	s.Close()
	assert.Zero(t, rec.BufferCount())
}
