package visitor

import (
	"cmp"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/engine/bounds"
	"github.com/Faultbox/retain3d/internal/engine/camera"
	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/engine/lighting"
	"github.com/Faultbox/retain3d/internal/engine/material"
	"github.com/Faultbox/retain3d/internal/engine/node"
	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/internal/logger"
)

// DrawStats counts the work of one Draw run.
type DrawStats struct {
	Visited   int
	Drawn     int
	Culled    int
	Failed    int
	Lights    int
	DrawCalls int
	Vertices  int
}

type queued struct {
	d    *node.Drawable
	dist float32
}

// Draw renders a tree through a camera. Opaque nodes are drawn in tree
// order, then translucent nodes back to front, so blending sees what is
// behind them.
type Draw struct {
	ctx    *gpu.Context
	camera *camera.Camera

	// DefaultProgram draws nodes whose material has no program, and nodes
	// without a material.
	DefaultProgram material.Program
	// Culling skips nodes whose bounding volume is outside the frustum.
	Culling bool

	lights      *lighting.Buffer
	opaque      []queued
	translucent []queued
	stats       DrawStats
}

// NewDraw returns a draw visitor submitting to ctx.
func NewDraw(ctx *gpu.Context, cam *camera.Camera, program material.Program) *Draw {
	return &Draw{
		ctx:            ctx,
		camera:         cam,
		DefaultProgram: program,
		Culling:        true,
		lights:         lighting.NewBuffer(),
	}
}

// Camera returns the camera drawn through.
func (d *Draw) Camera() *camera.Camera { return d.camera }

// SetCamera changes the camera drawn through.
func (d *Draw) SetCamera(cam *camera.Camera) { d.camera = cam }

// Lights returns the lights collected by the last run.
func (d *Draw) Lights() *lighting.Buffer { return d.lights }

// Stats returns the counters of the last run.
func (d *Draw) Stats() DrawStats { return d.stats }

// Run draws the tree under root. Nodes that fail to draw are skipped and
// their errors returned together; the rest of the frame is still drawn.
func (d *Draw) Run(root *node.Node) error {
	if d.camera == nil {
		return errs.New(errs.ErrPrecondition, "visitor.Draw", "no camera")
	}
	d.ctx.ResetFrame()
	d.ctx.SetViewport(d.camera.Viewport())
	d.stats = DrawStats{}
	d.lights.Clear()
	clear(d.opaque)
	clear(d.translucent)
	d.opaque, d.translucent = d.opaque[:0], d.translucent[:0]

	root.BeginTraversal()
	defer root.EndTraversal()

	d.collect(root, d.camera.Frustum())
	d.stats.Lights = d.lights.Len()

	eye := d.camera.GlobalLocation()
	for i := range d.translucent {
		q := &d.translucent[i]
		q.dist = q.d.Node().GlobalLocation().Distance(eye)
	}
	slices.SortStableFunc(d.translucent, func(a, b queued) int {
		if c := cmp.Compare(a.d.ZOrder, b.d.ZOrder); c != 0 {
			return c
		}
		return cmp.Compare(b.dist, a.dist)
	})

	var err error
	for _, q := range d.opaque {
		err = multierr.Append(err, d.draw(q.d))
	}
	for _, q := range d.translucent {
		err = multierr.Append(err, d.draw(q.d))
	}

	st := d.ctx.Stats()
	d.stats.DrawCalls, d.stats.Vertices = st.DrawCalls, st.Vertices
	return err
}

func (d *Draw) collect(root *node.Node, frustum bounds.Frustum) {
	root.Walk(func(n *node.Node) bool {
		if !n.Visible() {
			return false
		}
		d.stats.Visited++
		g := n.TransformMatrix()
		if l := n.Light(); l != nil {
			d.lights.Add(l)
		}
		dr := n.Drawable()
		if dr == nil || !dr.HasLocalContent() {
			return true
		}
		if d.Culling && !dr.BoundingVolume().IntersectsFrustum(frustum, g) {
			d.stats.Culled++
			return true
		}
		if dr.IsOpaque() {
			d.opaque = append(d.opaque, queued{d: dr})
		} else {
			d.translucent = append(d.translucent, queued{d: dr})
		}
		return true
	})
}

func (d *Draw) draw(dr *node.Drawable) error {
	n := dr.Node()
	prog := dr.Program()
	if prog == nil {
		prog = d.DefaultProgram
	}
	if prog == nil {
		d.stats.Failed++
		return errs.New(errs.ErrInconsistency, "visitor.Draw", "no program for %v", n)
	}

	env := material.Environment{
		Model:          n.TransformMatrix(),
		View:           d.camera.ViewMatrix(),
		Projection:     d.camera.ProjectionMatrix(),
		CameraLocation: d.camera.GlobalLocation(),
		Material:       dr.Material(),
		PureColor:      dr.PureColor,
		Lights:         d.lights,
		RenderState:    dr.RenderState,
	}
	if m := dr.Material(); m != nil {
		env.TextureUnits = m.Apply(d.ctx)
	} else {
		opaque := dr.IsOpaque()
		d.ctx.SetCapability(gpu.Blend, !opaque)
		if !opaque {
			d.ctx.SetBlendFunc(gpu.BlendSrcAlpha, gpu.BlendOneMinusSrcAlpha)
		}
	}
	if err := prog.Bind(d.ctx, &env); err != nil {
		d.stats.Failed++
		logger.Warn("program bind failed", zap.Stringer("node", n), zap.String("program", prog.Name()), zap.Error(err))
		return err
	}
	d.ctx.ApplyRenderState(dr.RenderState)
	dr.Mesh().Draw(d.ctx, env.TextureUnits)
	d.stats.Drawn++
	return nil
}
