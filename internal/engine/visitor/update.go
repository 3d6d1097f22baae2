// Package visitor holds the traversals run over a node tree each frame:
// updating, drawing and rebuilding bounds.
package visitor

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/engine/camera"
	"github.com/Faultbox/retain3d/internal/engine/node"
	"github.com/Faultbox/retain3d/internal/logger"
)

// Update runs the behaviors of a tree and brings its global transforms up
// to date. It is the node.Context handed to the behaviors.
type Update struct {
	root   *node.Node
	camera *camera.Camera
	dt     float32

	removals []*node.Node
	visited  int
}

// NewUpdate returns an update visitor for the tree under root. cam may be
// nil.
func NewUpdate(root *node.Node, cam *camera.Camera) *Update {
	return &Update{root: root, camera: cam}
}

func (u *Update) DeltaTime() float32 { return u.dt }

func (u *Update) Root() *node.Node { return u.root }

// Camera returns the active camera, or nil.
func (u *Update) Camera() *camera.Camera { return u.camera }

// SetCamera changes the active camera.
func (u *Update) SetCamera(cam *camera.Camera) { u.camera = cam }

// RequestRemoval queues n for removal from its parent once the traversal
// completes. Structure changes made directly during the traversal fail.
func (u *Update) RequestRemoval(n *node.Node) {
	u.removals = append(u.removals, n)
}

// Visited returns the number of nodes visited by the last Run.
func (u *Update) Visited() int { return u.visited }

// Run updates the tree with dt seconds elapsed. Each node runs its
// pre-transform hook and turns towards its target when tracking one. Then
// its global transform is rebuilt, its children are updated in order and
// its post-transform hook runs. Queued removals are applied afterwards;
// their errors are returned.
func (u *Update) Run(dt float32) error {
	u.dt = dt
	u.visited = 0

	u.traverse()
	return u.flushRemovals()
}

// traverse visits the tree with the root locked against structure
// changes. The lock is released even when a behavior panics.
func (u *Update) traverse() {
	u.root.BeginTraversal()
	defer u.root.EndTraversal()
	u.visit(u.root)
}

func (u *Update) visit(n *node.Node) {
	u.visited++
	n.PreTransform(u)
	u.track(n)
	n.TransformMatrix()
	for _, c := range n.Children() {
		u.visit(c)
	}
	n.PostTransform(u)
}

func (u *Update) track(n *node.Node) {
	if !n.IsRunning() {
		return
	}
	if n.ShouldAutotargetCamera() && u.camera != nil && n != u.camera.Node && n.Target() != u.camera.Node {
		n.SetTarget(u.camera.Node)
	}
	if n.ShouldTrackTarget() {
		n.TrackTarget()
	}
}

func (u *Update) flushRemovals() error {
	var err error
	for _, n := range u.removals {
		if n.Parent() == nil {
			continue
		}
		if rerr := n.Remove(); rerr != nil {
			logger.Warn("deferred removal failed", zap.Stringer("node", n), zap.Error(rerr))
			err = multierr.Append(err, rerr)
		}
	}
	clear(u.removals)
	u.removals = u.removals[:0]
	return err
}

// BuildTransforms rebuilds the global transform of every node under root
// that is out of date. It returns the number of nodes visited.
func BuildTransforms(root *node.Node) int {
	count := 0
	root.Walk(func(n *node.Node) bool {
		count++
		if n.IsTransformDirty() {
			n.TransformMatrix()
		}
		return true
	})
	return count
}

// RebuildBounds recomputes the bounding volumes under root. With dirtyOnly
// set, only volumes whose mesh changed since their last build are
// recomputed. It returns the number of volumes rebuilt.
func RebuildBounds(root *node.Node, dirtyOnly bool) int {
	count := 0
	root.ForEachDrawable(func(d *node.Drawable) {
		v := d.BoundingVolume()
		if v.IsFixed() || (dirtyOnly && !v.IsDirty()) {
			return
		}
		v.Rebuild()
		count++
	})
	return count
}
