package tree

// IsAncestor reports whether candidate is e or one of e's ancestors, following
// owning-list links upward.
func IsAncestor(candidate, e Entity) bool {
	for e != nil {
		if e == candidate {
			return true
		}
		e = parentOf(e)
	}
	return false
}

func parentOf(e Entity) Entity {
	switch v := e.(type) {
	case *Node:
		if v.list == nil {
			return nil
		}
		return v.list
	case *NodeList:
		return v.owner
	}
	return nil
}

// Depth returns the number of nodes above n, so nodes of the root list have depth 0.
// Detached nodes report -1.
func Depth(n *Node) int {
	if n.list == nil {
		return -1
	}
	depth := 0
	for p, ok := n.Parent().(*Node); ok; p, ok = p.Parent().(*Node) {
		depth++
	}
	return depth
}

// Walk visits the owned nodes of the tree depth-first in pre-order. Returning
// false from fn prunes the subtree below that node.
func Walk(r *Root, fn func(n *Node) bool) {
	if r.children != nil {
		walkList(r.children, fn)
	}
}

func walkList(l *NodeList, fn func(n *Node) bool) {
	for _, e := range l.entries {
		if e.kind != Owned {
			continue
		}
		if fn(e.node) && e.node.children != nil {
			walkList(e.node.children, fn)
		}
	}
}
