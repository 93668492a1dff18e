package tree

import "fmt"

// Attachment tags the edge between a NodeList and one of its entries.
type Attachment int

const (
	// Owned entries are children of the list: the list renumbers and destroys them.
	Owned Attachment = iota
	// Reference entries point at a node owned elsewhere; only the relation is stored.
	Reference
)

func (a Attachment) String() string {
	if a == Reference {
		return "reference"
	}
	return "owned"
}

type entry struct {
	node *Node
	kind Attachment
}

// NodeList is the ordered child sequence owned by a Root or a Node.
// For every owned entry at position i, the node's Index() equals i.
type NodeList struct {
	props
	id        ID
	root      *Root
	owner     Container
	entries   []entry
	destroyed bool
}

func createList(owner Container, slot **NodeList, init Properties) (*NodeList, error) {
	p, err := newProps(init)
	if err != nil {
		return nil, err
	}
	root := owner.Root()
	if old := *slot; old != nil {
		if _, err := old.Destroy(); err != nil {
			return nil, err
		}
	}
	list := &NodeList{props: p, root: root, owner: owner}
	list.id = root.allocate(list)
	*slot = list
	if err := root.registry.listInit.fire(list); err != nil {
		return list, err
	}
	return list, root.registry.createListChain(owner.Kind()).fire(list)
}

// ID returns the list identifier.
func (l *NodeList) ID() ID { return l.id }

// Kind returns KindNodeList.
func (l *NodeList) Kind() Kind { return KindNodeList }

// Root returns the tree root.
func (l *NodeList) Root() *Root { return l.root }

// Owner returns the Root or Node owning the list.
func (l *NodeList) Owner() Container { return l.owner }

// Destroyed reports whether Destroy has run.
func (l *NodeList) Destroyed() bool { return l.destroyed }

// Len returns the number of entries, references included.
func (l *NodeList) Len() int { return len(l.entries) }

// At returns the node at index, or nil when the position is vacant.
func (l *NodeList) At(index int) *Node {
	if index < 0 || index >= len(l.entries) {
		return nil
	}
	return l.entries[index].node
}

// AttachmentAt returns how the entry at index is attached.
func (l *NodeList) AttachmentAt(index int) (Attachment, bool) {
	if index < 0 || index >= len(l.entries) {
		return Owned, false
	}
	return l.entries[index].kind, true
}

// Nodes returns a copy of the entries in order.
func (l *NodeList) Nodes() []*Node {
	out := make([]*Node, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.node
	}
	return out
}

// IndexOf returns the position of node in the list or -1.
func (l *NodeList) IndexOf(node *Node) int {
	for i, e := range l.entries {
		if e.node == node {
			return i
		}
	}
	return -1
}

// AddNode appends a new node built from init.
func (l *NodeList) AddNode(init Properties) (*Node, error) {
	return l.InsertNode(len(l.entries), init)
}

// InsertNode creates a node at index, shifting later entries right. The node
// init hook fires before the list addNode hook.
func (l *NodeList) InsertNode(index int, init Properties) (*Node, error) {
	if l.destroyed {
		return nil, ErrDestroyed
	}
	if index < 0 || index > len(l.entries) {
		return nil, &IndexError{Op: "insert", Index: index, Len: len(l.entries)}
	}
	p, err := newProps(init)
	if err != nil {
		return nil, err
	}
	n := &Node{props: p, root: l.root, list: l}
	n.id = l.root.allocate(n)
	l.insert(index, entry{node: n, kind: Owned})

	reg := l.root.registry
	if err := reg.nodeInit.fire(n); err != nil {
		return n, err
	}
	return n, reg.listAddNode.fire(listNode{list: l, node: n, index: index})
}

// AddReference attaches an existing node of the same tree at index without
// reparenting it. The node keeps its owner and index; destroying this list
// leaves it alive, and destroying the node drops the reference.
func (l *NodeList) AddReference(node *Node, index int) error {
	if l.destroyed {
		return ErrDestroyed
	}
	if node == nil {
		return fmt.Errorf("reference: %w: nil node", ErrDetached)
	}
	if node.root != l.root {
		return fmt.Errorf("reference: %w", ErrForeignEntity)
	}
	if node.destroyed {
		return fmt.Errorf("reference: %w", ErrDestroyed)
	}
	if index < 0 || index > len(l.entries) {
		return &IndexError{Op: "reference", Index: index, Len: len(l.entries)}
	}
	l.insert(index, entry{node: node, kind: Reference})
	node.refs = append(node.refs, l)
	return l.root.registry.listAddNode.fire(listNode{list: l, node: node, index: index})
}

// RemoveNode detaches the entry at index and returns its node without
// destroying it. A vacant position past the end is not an error: it returns
// (nil, nil). Negative positions are rejected.
func (l *NodeList) RemoveNode(index int) (*Node, error) {
	if l.destroyed {
		return nil, ErrDestroyed
	}
	if index < 0 {
		return nil, &IndexError{Op: "remove", Index: index, Len: len(l.entries)}
	}
	if index >= len(l.entries) {
		return nil, nil
	}
	e := l.splice(index)
	if e.kind == Owned {
		e.node.list = nil
		e.node.index = -1
	} else {
		e.node.dropRef(l)
	}
	return e.node, l.root.registry.listRemoveNode.fire(listNode{list: l, node: e.node, index: index})
}

// Destroy fires the list destroy hook, then destroys every owned node.
// Reference entries are dropped without touching their nodes.
func (l *NodeList) Destroy() (bool, error) {
	if l.destroyed {
		return false, nil
	}
	l.destroyed = true
	l.root.release(l.id)
	switch o := l.owner.(type) {
	case *Root:
		if o.children == l {
			o.children = nil
		}
	case *Node:
		if o.children == l {
			o.children = nil
		}
	}
	if err := l.root.registry.listDestroy.fire(l); err != nil {
		return true, err
	}
	entries := l.entries
	l.entries = nil
	for _, e := range entries {
		if e.kind == Reference {
			e.node.dropRef(l)
			continue
		}
		e.node.list = nil
		e.node.index = -1
		if _, err := e.node.Destroy(); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (l *NodeList) insert(index int, e entry) {
	l.entries = append(l.entries, entry{})
	copy(l.entries[index+1:], l.entries[index:])
	l.entries[index] = e
	l.reindex(index)
}

func (l *NodeList) splice(index int) entry {
	e := l.entries[index]
	copy(l.entries[index:], l.entries[index+1:])
	l.entries[len(l.entries)-1] = entry{}
	l.entries = l.entries[:len(l.entries)-1]
	l.reindex(index)
	return e
}

func (l *NodeList) reindex(from int) {
	for i := from; i < len(l.entries); i++ {
		if l.entries[i].kind == Owned {
			l.entries[i].node.index = i
		}
	}
}
