// Package debug provides diagnostic geometry and frame capture.
package debug

import (
	"github.com/Faultbox/retain3d/internal/engine/mesh"
	"github.com/Faultbox/retain3d/internal/engine/node"
	"github.com/Faultbox/retain3d/pkg/math"
)

// BoxLines returns the endpoints of the 12 edges of b, two per edge.
func BoxLines(b math.Box) []math.Vec3 {
	lo, hi := b.Min, b.Max
	c := [8]math.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z}, {X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z}, {X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0}, // bottom
		{4, 5}, {5, 6}, {6, 7}, {7, 4}, // top
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	out := make([]math.Vec3, 0, len(edges)*2)
	for _, e := range edges {
		out = append(out, c[e[0]], c[e[1]])
	}
	return out
}

// Bounds outlines the global bounding boxes of the drawables of a tree.
// Its node must be attached directly under the root so that its lines are
// in the root's frame.
type Bounds struct {
	Node *node.Node
	// Padding grows every outline on all sides.
	Padding float32
}

// NewBounds returns an empty outline node drawn in col.
func NewBounds(col math.Color) *Bounds {
	n := node.NewMeshNode("bounds", mesh.NewLines("bounds", nil))
	n.Drawable().PureColor = col
	n.SetTouchEnabled(false)
	return &Bounds{Node: n}
}

// Rebuild replaces the outlines with the current boxes of the visible
// drawables under root. It returns the number of boxes drawn.
func (b *Bounds) Rebuild(root *node.Node) int {
	var points []math.Vec3
	count := 0
	root.Walk(func(n *node.Node) bool {
		if !n.Visible() || n == b.Node {
			return false
		}
		d := n.Drawable()
		if d == nil || !d.HasLocalContent() {
			return true
		}
		box := d.GlobalBoundingBox()
		if box.IsNull() {
			return true
		}
		if b.Padding != 0 {
			box = box.Pad(b.Padding)
		}
		points = append(points, BoxLines(box)...)
		count++
		return true
	})
	b.Node.Drawable().SetMesh(mesh.NewLines("bounds", points))
	b.Node.SetVisible(count > 0)
	return count
}
