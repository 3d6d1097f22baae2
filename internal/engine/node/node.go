// Package node implements the scene tree: nodes with a local transform,
// an ordered list of owned children and a back reference to the parent.
//
// A node is a pure transform frame unless it carries a capability:
// drawable content (NewMeshNode) or a light (NewLightNode). Visitors
// dispatch on the capability.
package node

import (
	"slices"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/engine/lighting"
	"github.com/Faultbox/retain3d/internal/engine/rotator"
	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/internal/logger"
	"github.com/Faultbox/retain3d/pkg/math"
)

var lastTag atomic.Uint32

// NextTag returns a new process-unique tag.
func NextTag() uint32 {
	return lastTag.Add(1)
}

// Node is one frame of the scene tree.
//
// Nodes are not safe for concurrent use. The frame pipeline confines a
// tree to one goroutine at a time.
type Node struct {
	tag  uint32
	name string

	parent   *Node
	children []*Node

	location       math.Vec3
	rotator        *rotator.Rotator
	scale          math.Vec3
	scaleTolerance float32

	global         math.Mat4
	inverse        math.Mat4
	globalRotation math.Mat4
	rigid          bool

	transformDirty      bool
	inverseDirty        bool
	globalRotationDirty bool

	visible                 bool
	running                 bool
	touchEnabled            bool
	inheritTouchability     bool
	allowTouchWhenInvisible bool
	autoremoveWhenEmpty     bool
	cleanupWhenRemoved      bool
	animationEnabled        bool

	// traversals counts the visitors walking the tree rooted here.
	traversals int

	behaviors   []Behavior
	pickHandler PickHandler

	drawable *Drawable
	light    *lighting.Light

	target                 *Node
	targetLocation         math.Vec3
	hasTargetLocation      bool
	shouldTrackTarget      bool
	shouldAutotargetCamera bool

	listeners      []listenerEntry
	nextListenerID uint64

	// UserData is free for the application.
	UserData any
}

// New returns a visible, running structural node.
func New(name string) *Node {
	return &Node{
		tag:                 NextTag(),
		name:                name,
		rotator:             rotator.New(),
		scale:               math.Vec3{X: 1, Y: 1, Z: 1},
		global:              math.Identity(),
		inverse:             math.Identity(),
		globalRotation:      math.Identity(),
		rigid:               true,
		transformDirty:      true,
		inverseDirty:        true,
		globalRotationDirty: true,
		visible:             true,
		running:             true,
		inheritTouchability: true,
		cleanupWhenRemoved:  true,
		animationEnabled:    true,
	}
}

// NewLightNode returns a node carrying l. The light follows the node's
// global location and forward direction.
func NewLightNode(name string, l *lighting.Light) *Node {
	n := New(name)
	n.light = l
	return n
}

// Tag returns the process-unique tag of n.
func (n *Node) Tag() uint32 { return n.tag }

// Name returns the name of n.
func (n *Node) Name() string { return n.name }

// SetName renames n.
func (n *Node) SetName(name string) { n.name = name }

func (n *Node) String() string {
	if n.name != "" {
		return n.name
	}
	return "node"
}

// Light returns the light carried by n, or nil.
func (n *Node) Light() *lighting.Light { return n.light }

// Parent returns the parent of n, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the children in insertion order. The slice must not be
// modified.
func (n *Node) Children() []*Node { return n.children }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Root returns the topmost ancestor of n, which is n itself for a root.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// IsDescendantOf reports whether a is a proper ancestor of n.
func (n *Node) IsDescendantOf(a *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == a {
			return true
		}
	}
	return false
}

// BeginTraversal marks the tree rooted at n as being walked. Children of
// nodes in the tree cannot be added or removed until the matching
// EndTraversal.
func (n *Node) BeginTraversal() { n.traversals++ }

// EndTraversal ends a traversal started with BeginTraversal.
func (n *Node) EndTraversal() {
	if n.traversals > 0 {
		n.traversals--
	}
}

// IsTraversing reports whether a visitor is walking the tree containing n.
func (n *Node) IsTraversing() bool {
	return n.Root().traversals > 0
}

func (n *Node) checkMutable(op string) error {
	if n.IsTraversing() {
		return errs.New(errs.ErrInconsistency, op,
			"children of %q changed during a traversal; request the removal from the visitor", n)
	}
	return nil
}

// AddChild appends child, first removing it from its current parent. The
// child inherits the running state of n. Adding an ancestor of n, or n
// itself, fails with errs.ErrInconsistency, as does any change while a
// visitor walks either tree.
func (n *Node) AddChild(child *Node) error {
	const op = "node.AddChild"
	if child == nil {
		return errs.New(errs.ErrPrecondition, op, "nil child")
	}
	if child == n || n.IsDescendantOf(child) {
		return errs.New(errs.ErrInconsistency, op, "adding %q under %q would create a cycle", child, n)
	}
	if err := n.checkMutable(op); err != nil {
		return err
	}
	if child.parent == n {
		return nil
	}
	if child.parent != nil {
		if err := child.parent.RemoveChild(child); err != nil {
			return err
		}
	}

	n.children = append(n.children, child)
	child.parent = n
	child.MarkTransformDirty()
	child.SetRunning(n.running)
	logger.Debug("node added", zap.String("node", child.String()), zap.String("parent", n.String()))
	return nil
}

// RemoveChild detaches child from n. Removing a node that is not a child
// of n does nothing. A child that cleans up when removed stops running. If
// n removes itself when empty and child was its last child, n is removed
// from its own parent.
func (n *Node) RemoveChild(child *Node) error {
	const op = "node.RemoveChild"
	if err := n.checkMutable(op); err != nil {
		return err
	}
	i := slices.Index(n.children, child)
	if i < 0 {
		return nil
	}

	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	child.MarkTransformDirty()
	if child.cleanupWhenRemoved {
		child.SetRunning(false)
	}
	logger.Debug("node removed", zap.String("node", child.String()), zap.String("parent", n.String()))

	if n.autoremoveWhenEmpty && len(n.children) == 0 {
		return n.Remove()
	}
	return nil
}

// Remove detaches n from its parent.
func (n *Node) Remove() error {
	if n.parent == nil {
		return nil
	}
	return n.parent.RemoveChild(n)
}

// RemoveAllChildren detaches every child of n.
func (n *Node) RemoveAllChildren() error {
	for len(n.children) > 0 {
		if err := n.RemoveChild(n.children[len(n.children)-1]); err != nil {
			return err
		}
	}
	return nil
}

// Walk calls fn for n and its descendants in tree order: a node before its
// children, children in insertion order. Returning false skips the
// descendants of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// FindByName returns the first node in tree order named name, or nil.
func (n *Node) FindByName(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found == nil && c.name == name {
			found = c
		}
		return found == nil
	})
	return found
}

// FindByTag returns the node in the tree below n with tag, or nil.
func (n *Node) FindByTag(tag uint32) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found == nil && c.tag == tag {
			found = c
		}
		return found == nil
	})
	return found
}

// Visible reports whether n is drawn.
func (n *Node) Visible() bool { return n.visible }

// SetVisible shows or hides n. Descendants are not affected; use
// SetVisibleRecursive for a whole subtree.
func (n *Node) SetVisible(v bool) { n.visible = v }

// IsRunning reports whether the update hooks of n run.
func (n *Node) IsRunning() bool { return n.running }

// SetRunning starts or pauses the update hooks of n and its descendants.
// Global properties remain readable while paused.
func (n *Node) SetRunning(running bool) {
	n.running = running
	for _, c := range n.children {
		c.SetRunning(running)
	}
}

// TouchEnabled reports whether n itself responds to touches.
func (n *Node) TouchEnabled() bool { return n.touchEnabled }

// SetTouchEnabled makes n respond to touches.
func (n *Node) SetTouchEnabled(e bool) { n.touchEnabled = e }

// InheritTouchability reports whether n is touchable when its parent is.
func (n *Node) InheritTouchability() bool { return n.inheritTouchability }

// SetInheritTouchability sets whether n is touchable when its parent is.
func (n *Node) SetInheritTouchability(inherit bool) { n.inheritTouchability = inherit }

// AllowTouchWhenInvisible reports whether n can be touched while hidden.
func (n *Node) AllowTouchWhenInvisible() bool { return n.allowTouchWhenInvisible }

// SetAllowTouchWhenInvisible sets whether n can be touched while hidden.
func (n *Node) SetAllowTouchWhenInvisible(allow bool) { n.allowTouchWhenInvisible = allow }

// IsTouchable reports whether a touch on n is delivered: n must be visible
// or allow invisible touches, and be touch enabled or inherit touchability
// from a touchable parent.
func (n *Node) IsTouchable() bool {
	if !n.visible && !n.allowTouchWhenInvisible {
		return false
	}
	if n.touchEnabled {
		return true
	}
	return n.inheritTouchability && n.parent != nil && n.parent.IsTouchable()
}

// TouchableNode returns the nearest touch-enabled node among n and its
// ancestors, or nil. Picks on n are reported to that node.
func (n *Node) TouchableNode() *Node {
	for p := n; p != nil; p = p.parent {
		if p.touchEnabled {
			return p
		}
	}
	return nil
}

// AutoremoveWhenEmpty reports whether n removes itself when its last child
// is removed.
func (n *Node) AutoremoveWhenEmpty() bool { return n.autoremoveWhenEmpty }

// SetAutoremoveWhenEmpty sets whether n removes itself when its last child
// is removed.
func (n *Node) SetAutoremoveWhenEmpty(auto bool) { n.autoremoveWhenEmpty = auto }

// CleanupWhenRemoved reports whether n stops running when removed.
func (n *Node) CleanupWhenRemoved() bool { return n.cleanupWhenRemoved }

// SetCleanupWhenRemoved sets whether n stops running when removed.
func (n *Node) SetCleanupWhenRemoved(cleanup bool) { n.cleanupWhenRemoved = cleanup }

// AnimationEnabled reports whether behaviors of n that animate run.
func (n *Node) AnimationEnabled() bool { return n.animationEnabled }

// SetAnimationEnabled enables or disables animating behaviors of n.
func (n *Node) SetAnimationEnabled(e bool) { n.animationEnabled = e }

// UseFixedBoundingVolume reports whether the bounding volume ignores
// vertex edits. Structural nodes report false.
func (n *Node) UseFixedBoundingVolume() bool {
	return n.drawable != nil && n.drawable.volume.IsFixed()
}

// SetUseFixedBoundingVolume stops or resumes rebuilding the bounding
// volume from the mesh. Structural nodes ignore it.
func (n *Node) SetUseFixedBoundingVolume(fixed bool) {
	if n.drawable != nil {
		n.drawable.volume.SetFixed(fixed)
	}
}
