// Package scene ties a node tree to its cameras, its resource caches and
// the GPU context, and drives the update and draw phases of each frame.
package scene

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/config"
	"github.com/Faultbox/retain3d/internal/engine/cache"
	"github.com/Faultbox/retain3d/internal/engine/camera"
	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/engine/lighting"
	"github.com/Faultbox/retain3d/internal/engine/material"
	"github.com/Faultbox/retain3d/internal/engine/mesh"
	"github.com/Faultbox/retain3d/internal/engine/node"
	"github.com/Faultbox/retain3d/internal/engine/visitor"
	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/internal/logger"
	"github.com/Faultbox/retain3d/internal/metrics"
	"github.com/Faultbox/retain3d/pkg/math"
)

// Scene is a root node with cameras, drawn through one GPU context.
//
// A Scene is not safe for concurrent use. Loop moves it between the update
// goroutine and the drawing goroutine, one owner at a time.
type Scene struct {
	ID uuid.UUID

	// Background is the color the frame is cleared to.
	Background math.Color
	// OnDrawn runs on the drawing goroutine after every drawn frame, for
	// example to present it.
	OnDrawn func(visitor.DrawStats)

	Meshes    *cache.Cache[mesh.Mesh]
	Materials *cache.Cache[material.Material]
	Textures  *cache.Cache[material.Texture]

	cfg     config.SceneConfig
	ctx     *gpu.Context
	root    *node.Node
	cameras []*camera.Camera
	active  *camera.Camera

	update *visitor.Update
	draw   *visitor.Draw

	lastTick time.Time
	frames   uint64
}

// New returns a scene with a root node and one camera looking down -Z.
// program draws the nodes whose material names none.
func New(cfg config.SceneConfig, ctx *gpu.Context, program material.Program) *Scene {
	s := &Scene{
		ID:         uuid.New(),
		Background: math.Color{R: 0.1, G: 0.1, B: 0.12, A: 1},
		Meshes:     cache.New[mesh.Mesh]("mesh"),
		Materials:  cache.New[material.Material]("material"),
		Textures:   cache.New[material.Texture]("texture"),
		ctx:        ctx,
		root:       node.New("root"),
	}
	cam := camera.New("camera")
	s.update = visitor.NewUpdate(s.root, cam)
	s.draw = visitor.NewDraw(ctx, cam, program)
	if err := s.AddCamera(cam); err != nil {
		errs.Precondition("scene.New", "adding default camera: %v", err)
	}
	s.SetConfig(cfg)
	logger.Info("scene created", zap.Stringer("scene", s.ID))
	return s
}

func (s *Scene) label() string { return s.ID.String() }

// Root returns the root node.
func (s *Scene) Root() *node.Node { return s.root }

// Context returns the GPU context the scene draws through.
func (s *Scene) Context() *gpu.Context { return s.ctx }

// Config returns the scene settings.
func (s *Scene) Config() config.SceneConfig { return s.cfg }

// SetConfig applies new settings. Padding and scale tolerance are pushed
// to every node currently in the tree.
func (s *Scene) SetConfig(cfg config.SceneConfig) {
	s.cfg = cfg
	s.Meshes.SetPreload(cfg.PreloadResources)
	s.Materials.SetPreload(cfg.PreloadResources)
	s.Textures.SetPreload(cfg.PreloadResources)
	s.applyDefaults(s.root)
}

func (s *Scene) applyDefaults(n *node.Node) {
	node.SetBoundingVolumePaddingRecursive(n, s.cfg.BoundingVolumePadding)
	n.SetScaleTolerance(s.cfg.ScaleTolerance)
}

// Add attaches n under parent, or under the root when parent is nil, and
// gives the subtree the scene's padding and scale tolerance.
func (s *Scene) Add(n, parent *node.Node) error {
	if parent == nil {
		parent = s.root
	}
	if err := parent.AddChild(n); err != nil {
		return err
	}
	s.applyDefaults(n)
	return nil
}

// AddCamera registers cam. A camera without a parent is attached to the
// root. The first camera becomes the active one.
func (s *Scene) AddCamera(cam *camera.Camera) error {
	if cam.Parent() == nil && cam.Node != s.root {
		if err := s.root.AddChild(cam.Node); err != nil {
			return err
		}
	}
	for _, c := range s.cameras {
		if c == cam {
			return nil
		}
	}
	s.cameras = append(s.cameras, cam)
	if s.active == nil {
		s.SetActiveCamera(cam)
	}
	return nil
}

// Cameras returns the registered cameras.
func (s *Scene) Cameras() []*camera.Camera { return s.cameras }

// ActiveCamera returns the camera the scene is drawn through.
func (s *Scene) ActiveCamera() *camera.Camera { return s.active }

// SetActiveCamera draws through cam from the next frame. It is registered
// if needed.
func (s *Scene) SetActiveCamera(cam *camera.Camera) {
	s.active = cam
	s.update.SetCamera(cam)
	s.draw.SetCamera(cam)
	if err := s.AddCamera(cam); err != nil {
		logger.Warn("camera not attached", zap.Stringer("camera", cam.Node), zap.Error(err))
	}
}

// SetViewport resizes the viewport of every camera.
func (s *Scene) SetViewport(vp math.Viewport) {
	for _, c := range s.cameras {
		c.SetViewport(vp)
	}
}

// SetCulling enables or disables frustum culling.
func (s *Scene) SetCulling(enabled bool) { s.draw.Culling = enabled }

// Lights returns the enabled lights of visible nodes, in tree order.
func (s *Scene) Lights() []*lighting.Light {
	var ls []*lighting.Light
	s.root.Walk(func(n *node.Node) bool {
		if !n.Visible() {
			return false
		}
		if l := n.Light(); l != nil && l.Enabled {
			ls = append(ls, l)
		}
		return true
	})
	return ls
}

// Update runs the update phase with dt seconds elapsed, clamped to the
// configured maximum.
func (s *Scene) Update(dt float32) error {
	dt = max(dt, 0)
	if maxDT := float32(s.cfg.MaxUpdateInterval); maxDT > 0 {
		dt = min(dt, maxDT)
	}
	start := time.Now()
	err := s.update.Run(dt)
	metrics.ObserveUpdate(s.label(), time.Since(start))
	return err
}

// Draw runs the draw phase. Nodes that fail to draw are logged and
// skipped.
func (s *Scene) Draw() (visitor.DrawStats, error) {
	start := time.Now()
	s.ctx.SetViewport(s.active.Viewport())
	s.ctx.Clear(s.Background)
	err := s.draw.Run(s.root)
	st := s.draw.Stats()
	metrics.ObserveDraw(s.label(), time.Since(start), st.Drawn, st.Culled)
	s.frames++
	if err != nil {
		logger.Warn("frame drawn with errors",
			zap.Stringer("scene", s.ID),
			zap.Uint64("frame", s.frames),
			zap.Error(err),
		)
	}
	if s.OnDrawn != nil {
		s.OnDrawn(st)
	}
	return st, err
}

// Frames returns the number of frames drawn.
func (s *Scene) Frames() uint64 { return s.frames }

// Tick returns the seconds elapsed since the previous tick. The first tick
// yields zero. ok is false when less than the minimum update interval
// has passed; the tick is then ignored.
func (s *Scene) Tick(now time.Time) (dt float32, ok bool) {
	if s.lastTick.IsZero() {
		s.lastTick = now
		return 0, true
	}
	elapsed := now.Sub(s.lastTick)
	if elapsed < s.cfg.MinUpdateDuration() {
		return 0, false
	}
	s.lastTick = now
	return float32(elapsed.Seconds()), true
}

// Frame updates and draws one frame at time now.
func (s *Scene) Frame(now time.Time) error {
	var err error
	if dt, ok := s.Tick(now); ok {
		err = s.Update(dt)
	}
	_, derr := s.Draw()
	return multierr.Append(err, derr)
}

// Upload puts every mesh and material of the tree on the GPU. Buffers
// that cannot be allocated stream from client memory instead.
func (s *Scene) Upload() error {
	var err error
	s.root.ForEachDrawable(func(d *node.Drawable) {
		err = multierr.Append(err, d.Upload(s.ctx))
	})
	return err
}

// Close releases the GPU resources of the tree and empties the caches.
func (s *Scene) Close() {
	s.root.ForEachDrawable(func(d *node.Drawable) {
		if m := d.Mesh(); m != nil {
			m.DeleteGPUBuffers(s.ctx)
		}
		if m := d.Material(); m != nil {
			for _, t := range m.Textures {
				if t != nil {
					t.Delete(s.ctx)
				}
			}
		}
	})
	s.Meshes.Clear()
	s.Materials.Clear()
	s.Textures.Clear()
	metrics.Forget(s.label())
	logger.Info("scene closed", zap.Stringer("scene", s.ID), zap.Uint64("frames", s.frames))
}
