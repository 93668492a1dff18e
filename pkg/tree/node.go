package tree

// Node is a tree element. It may own one child NodeList, created on demand.
type Node struct {
	props
	id        ID
	root      *Root
	list      *NodeList
	index     int
	children  *NodeList
	refs      []*NodeList
	destroyed bool
}

// ID returns the node identifier.
func (n *Node) ID() ID { return n.id }

// Kind returns KindNode.
func (n *Node) Kind() Kind { return KindNode }

// Root returns the tree root.
func (n *Node) Root() *Root { return n.root }

// Destroyed reports whether Destroy has run.
func (n *Node) Destroyed() bool { return n.destroyed }

// Index returns the position in the owning list, or -1 when detached.
func (n *Node) Index() int {
	if n.list == nil {
		return -1
	}
	return n.index
}

// ParentList returns the owning list, or nil when detached.
func (n *Node) ParentList() *NodeList { return n.list }

// Parent returns the Root or Node owning the parent list, or nil when detached.
func (n *Node) Parent() Container {
	if n.list == nil {
		return nil
	}
	return n.list.owner
}

// Children returns the child list, or nil when none was created.
func (n *Node) Children() *NodeList { return n.children }

// References returns the lists holding this node by reference.
func (n *Node) References() []*NodeList {
	out := make([]*NodeList, len(n.refs))
	copy(out, n.refs)
	return out
}

// CreateList allocates the child list. Calling it again replaces the list:
// the previous list and its owned nodes are destroyed first.
func (n *Node) CreateList(init Properties) (*NodeList, error) {
	if n.destroyed {
		return nil, ErrDestroyed
	}
	return createList(n, &n.children, init)
}

// Destroy detaches the node from a live owning list (firing removeNode there),
// drops references held by other lists, destroys the child list and fires the
// node destroy hook last. It reports false on every call after the first.
func (n *Node) Destroy() (bool, error) {
	if n.destroyed {
		return false, nil
	}
	n.destroyed = true
	n.root.release(n.id)
	if n.list != nil && !n.list.destroyed {
		if _, err := n.list.RemoveNode(n.index); err != nil {
			return true, err
		}
	}
	for _, ref := range n.References() {
		idx := ref.IndexOf(n)
		if ref.destroyed || idx < 0 {
			n.dropRef(ref)
			continue
		}
		if _, err := ref.RemoveNode(idx); err != nil {
			return true, err
		}
	}
	if n.children != nil {
		if _, err := n.children.Destroy(); err != nil {
			return true, err
		}
	}
	return true, n.root.registry.nodeDestroy.fire(n)
}

func (n *Node) dropRef(l *NodeList) {
	for i, ref := range n.refs {
		if ref == l {
			n.refs = append(n.refs[:i], n.refs[i+1:]...)
			return
		}
	}
}
