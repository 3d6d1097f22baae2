package node

// Context is what an update traversal hands to behaviors.
type Context interface {
	// DeltaTime is the elapsed time in seconds since the previous update,
	// clamped by the scene.
	DeltaTime() float32
	// Root is the root of the tree being updated.
	Root() *Node
	// RequestRemoval queues n for removal once the traversal completes.
	RequestRemoval(n *Node)
}

// Behavior receives the update hooks of a node.
//
// PreTransform runs before the global transform of the node is rebuilt and
// may change local transforms of any node. PostTransform runs after the
// node's children were updated; global getters are valid, and a local
// change must be followed by BuildTransform on the changed subtree.
type Behavior interface {
	PreTransform(n *Node, ctx Context)
	PostTransform(n *Node, ctx Context)
}

// BehaviorFuncs adapts plain functions to Behavior. Nil functions are
// skipped.
type BehaviorFuncs struct {
	Pre  func(n *Node, ctx Context)
	Post func(n *Node, ctx Context)
}

func (b BehaviorFuncs) PreTransform(n *Node, ctx Context) {
	if b.Pre != nil {
		b.Pre(n, ctx)
	}
}

func (b BehaviorFuncs) PostTransform(n *Node, ctx Context) {
	if b.Post != nil {
		b.Post(n, ctx)
	}
}

// AddBehavior attaches b. Behaviors run in the order they were added.
func (n *Node) AddBehavior(b Behavior) {
	n.behaviors = append(n.behaviors, b)
}

// RemoveBehaviors detaches every behavior.
func (n *Node) RemoveBehaviors() {
	n.behaviors = nil
}

// Behaviors returns the attached behaviors.
func (n *Node) Behaviors() []Behavior { return n.behaviors }

// PreTransform runs the pre-transform hooks of n if it is running.
func (n *Node) PreTransform(ctx Context) {
	if !n.running {
		return
	}
	for _, b := range n.behaviors {
		b.PreTransform(n, ctx)
	}
}

// PostTransform runs the post-transform hooks of n if it is running.
func (n *Node) PostTransform(ctx Context) {
	if !n.running {
		return
	}
	for _, b := range n.behaviors {
		b.PostTransform(n, ctx)
	}
}

// PickHandler is told when a node is picked.
type PickHandler interface {
	Picked(n *Node, hit PickHit)
}

// PickHandlerFunc adapts a function to PickHandler.
type PickHandlerFunc func(n *Node, hit PickHit)

func (f PickHandlerFunc) Picked(n *Node, hit PickHit) { f(n, hit) }

// SetPickHandler sets the handler told about picks on n and on descendants
// that report to n.
func (n *Node) SetPickHandler(h PickHandler) { n.pickHandler = h }

// PickHandler returns the pick handler of n, or nil.
func (n *Node) PickHandler() PickHandler { return n.pickHandler }
