package node

// TransformListener is told when the global transform of a node it was
// added to has been rebuilt.
type TransformListener interface {
	NodeTransformed(n *Node)
}

type listenerEntry struct {
	id uint64
	l  TransformListener
}

// AddTransformListener registers l on n and returns a function removing
// it. Listeners run in registration order from inside the rebuild, so they
// may read global getters of n but must not change its tree.
func (n *Node) AddTransformListener(l TransformListener) (remove func()) {
	n.nextListenerID++
	id := n.nextListenerID
	n.listeners = append(n.listeners, listenerEntry{id: id, l: l})
	return func() {
		for i, e := range n.listeners {
			if e.id == id {
				n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
				return
			}
		}
	}
}

// TransformListenerCount returns the number of listeners registered on n.
func (n *Node) TransformListenerCount() int { return len(n.listeners) }

func (n *Node) notifyTransformed() {
	for _, e := range n.listeners {
		e.l.NodeTransformed(n)
	}
}
