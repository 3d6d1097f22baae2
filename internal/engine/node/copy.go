package node

import (
	"slices"
)

// Copy returns a deep copy of n and its subtree. Copies get new tags and
// no parent. Meshes are shared; an owned material is copied while a shared
// one stays shared. Behaviors, the pick handler and the target are shared.
// Transform listeners are not copied.
func (n *Node) Copy() *Node {
	c := &Node{
		tag:                     NextTag(),
		name:                    n.name,
		location:                n.location,
		rotator:                 n.rotator.Copy(),
		scale:                   n.scale,
		scaleTolerance:          n.scaleTolerance,
		global:                  n.global,
		inverse:                 n.inverse,
		globalRotation:          n.globalRotation,
		rigid:                   n.rigid,
		transformDirty:          true,
		inverseDirty:            true,
		globalRotationDirty:     true,
		visible:                 n.visible,
		running:                 n.running,
		touchEnabled:            n.touchEnabled,
		inheritTouchability:     n.inheritTouchability,
		allowTouchWhenInvisible: n.allowTouchWhenInvisible,
		autoremoveWhenEmpty:     n.autoremoveWhenEmpty,
		cleanupWhenRemoved:      n.cleanupWhenRemoved,
		animationEnabled:        n.animationEnabled,
		target:                  n.target,
		targetLocation:          n.targetLocation,
		hasTargetLocation:       n.hasTargetLocation,
		shouldTrackTarget:       n.shouldTrackTarget,
		shouldAutotargetCamera:  n.shouldAutotargetCamera,
		behaviors:               slices.Clone(n.behaviors),
		pickHandler:             n.pickHandler,
		UserData:                n.UserData,
	}
	if n.light != nil {
		l := *n.light
		c.light = &l
	}
	if d := n.drawable; d != nil {
		vol := *d.volume
		cd := *d
		cd.node = c
		cd.volume = &vol
		if d.ownsMaterial && d.material != nil {
			cd.material = d.material.Copy()
		}
		c.drawable = &cd
	}
	for _, child := range n.children {
		cc := child.Copy()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}
