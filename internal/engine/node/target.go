package node

import (
	"github.com/Faultbox/retain3d/pkg/math"
)

// Target returns the node n points at, or nil.
func (n *Node) Target() *Node { return n.target }

// SetTarget points n at t once and remembers t. With ShouldTrackTarget set,
// n keeps facing t on every update. A nil t, or n itself, clears the
// target.
func (n *Node) SetTarget(t *Node) {
	if t == n {
		t = nil
	}
	n.target = t
	if t != nil {
		n.hasTargetLocation = false
		n.TrackTarget()
	}
}

// TargetLocation returns the point n faces in the root's frame: the global
// location of the target node when one is set, else the last location
// given to SetTargetLocation. ok is false when n has neither.
func (n *Node) TargetLocation() (loc math.Vec3, ok bool) {
	if n.target != nil {
		return n.target.GlobalLocation(), true
	}
	return n.targetLocation, n.hasTargetLocation
}

// SetTargetLocation points n at the global point p once and clears the
// target node.
func (n *Node) SetTargetLocation(p math.Vec3) {
	n.target = nil
	n.targetLocation = p
	n.hasTargetLocation = true
	n.TrackTarget()
}

// ClearTarget forgets both the target node and the target location.
func (n *Node) ClearTarget() {
	n.target = nil
	n.hasTargetLocation = false
}

// ShouldTrackTarget reports whether update traversals turn n towards its
// target every frame.
func (n *Node) ShouldTrackTarget() bool { return n.shouldTrackTarget }

func (n *Node) SetShouldTrackTarget(track bool) { n.shouldTrackTarget = track }

// ShouldAutotargetCamera reports whether update traversals make the active
// camera the target of n.
func (n *Node) ShouldAutotargetCamera() bool { return n.shouldAutotargetCamera }

// SetShouldAutotargetCamera makes the active camera the target of n on the
// next update. Enabling it also enables tracking.
func (n *Node) SetShouldAutotargetCamera(autotarget bool) {
	n.shouldAutotargetCamera = autotarget
	if autotarget {
		n.shouldTrackTarget = true
	}
}

// TrackTarget rotates n so its forward direction points at the target
// location. It reports false, leaving n unchanged, when there is nothing
// to face or the target sits at the location of n.
func (n *Node) TrackTarget() bool {
	p, ok := n.TargetLocation()
	if !ok {
		return false
	}
	if n.parent != nil {
		p = n.parent.ToLocal(p)
	}
	dir := p.Sub(n.location)
	if dir.LengthSquared() < 1e-12 {
		return false
	}
	n.SetForwardDirection(dir, math.Vec3UnitY)
	return true
}
