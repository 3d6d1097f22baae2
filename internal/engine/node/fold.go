package node

import (
	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/pkg/math"
)

// ForEach calls fn for n and every descendant in tree order.
func (n *Node) ForEach(fn func(*Node)) {
	n.Walk(func(c *Node) bool {
		fn(c)
		return true
	})
}

// ForEachDrawable calls fn for the content of every drawable node in the
// subtree.
func (n *Node) ForEachDrawable(fn func(*Drawable)) {
	n.ForEach(func(c *Node) {
		if c.drawable != nil {
			fn(c.drawable)
		}
	})
}

// SetVisibleRecursive shows or hides the whole subtree.
func SetVisibleRecursive(n *Node, visible bool) {
	n.ForEach(func(c *Node) { c.visible = visible })
}

// SetPureColorRecursive sets the pure color of every drawable in the
// subtree.
func SetPureColorRecursive(n *Node, col math.Color) {
	n.ForEachDrawable(func(d *Drawable) { d.PureColor = col })
}

// SetOpacityRecursive sets the opacity of every drawable in the subtree.
func SetOpacityRecursive(n *Node, a float32) {
	n.ForEachDrawable(func(d *Drawable) { d.SetOpacity(a) })
}

// SetRenderStateRecursive replaces the render state of every drawable in
// the subtree.
func SetRenderStateRecursive(n *Node, rs gpu.RenderState) {
	n.ForEachDrawable(func(d *Drawable) { d.RenderState = rs })
}

// SetBoundingVolumePaddingRecursive pads every bounding volume in the
// subtree.
func SetBoundingVolumePaddingRecursive(n *Node, p float32) {
	n.ForEachDrawable(func(d *Drawable) { d.SetBoundingVolumePadding(p) })
}

// Box returns the union of the global bounding boxes of the subtree.
func Box(n *Node) math.Box {
	b := math.NullBox
	n.ForEachDrawable(func(d *Drawable) {
		if d.HasLocalContent() {
			b = b.Union(d.GlobalBoundingBox())
		}
	})
	return b
}
