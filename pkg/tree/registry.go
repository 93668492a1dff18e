package tree

// chain is the composed callback for one (kind, hook) pair. Callbacks run in
// registration order and the first error stops the chain.
type chain[T any] struct {
	kind  Kind
	hook  Hook
	names []string
	fns   []func(T) error
}

func (c *chain[T]) add(name string, fn func(T) error) {
	if fn == nil {
		return
	}
	c.names = append(c.names, name)
	c.fns = append(c.fns, fn)
}

func (c *chain[T]) fire(v T) error {
	for i, fn := range c.fns {
		if err := fn(v); err != nil {
			return &HookError{Kind: c.kind, Hook: c.hook, Decorator: c.names[i], Err: err}
		}
	}
	return nil
}

type listNode struct {
	list  *NodeList
	node  *Node
	index int
}

// Registry accumulates decorator callbacks per entity kind and hook.
type Registry struct {
	decorators []Decorator

	rootInit       chain[*Root]
	rootCreateList chain[*NodeList]
	rootMoveNode   chain[Move]
	rootDestroy    chain[*Root]

	nodeInit       chain[*Node]
	nodeCreateList chain[*NodeList]
	nodeDestroy    chain[*Node]

	listInit       chain[*NodeList]
	listAddNode    chain[listNode]
	listRemoveNode chain[listNode]
	listDestroy    chain[*NodeList]
}

// NewRegistry constructs an empty decorator registry.
func NewRegistry() *Registry {
	return &Registry{
		rootInit:       chain[*Root]{kind: KindRoot, hook: HookInit},
		rootCreateList: chain[*NodeList]{kind: KindRoot, hook: HookCreateList},
		rootMoveNode:   chain[Move]{kind: KindRoot, hook: HookMoveNode},
		rootDestroy:    chain[*Root]{kind: KindRoot, hook: HookDestroy},
		nodeInit:       chain[*Node]{kind: KindNode, hook: HookInit},
		nodeCreateList: chain[*NodeList]{kind: KindNode, hook: HookCreateList},
		nodeDestroy:    chain[*Node]{kind: KindNode, hook: HookDestroy},
		listInit:       chain[*NodeList]{kind: KindNodeList, hook: HookInit},
		listAddNode:    chain[listNode]{kind: KindNodeList, hook: HookAddNode},
		listRemoveNode: chain[listNode]{kind: KindNodeList, hook: HookRemoveNode},
		listDestroy:    chain[*NodeList]{kind: KindNodeList, hook: HookDestroy},
	}
}

// Register appends every callback the decorator implements to its chain.
func (r *Registry) Register(d Decorator) error {
	b, err := bind(d)
	if err != nil {
		return err
	}
	r.decorators = append(r.decorators, d)

	r.rootInit.add(b.name, b.rootInit)
	r.rootCreateList.add(b.name, b.rootCreateList)
	r.rootMoveNode.add(b.name, b.rootMoveNode)
	r.rootDestroy.add(b.name, b.rootDestroy)

	r.nodeInit.add(b.name, b.nodeInit)
	r.nodeCreateList.add(b.name, b.nodeCreateList)
	r.nodeDestroy.add(b.name, b.nodeDestroy)

	r.listInit.add(b.name, b.listInit)
	if b.listAddNode != nil {
		fn := b.listAddNode
		r.listAddNode.add(b.name, func(ev listNode) error { return fn(ev.list, ev.node) })
	}
	if b.listRemoveNode != nil {
		fn := b.listRemoveNode
		r.listRemoveNode.add(b.name, func(ev listNode) error { return fn(ev.list, ev.node, ev.index) })
	}
	r.listDestroy.add(b.name, b.listDestroy)
	return nil
}

// Decorators returns a copy of the registered decorators in registration order.
func (r *Registry) Decorators() []Decorator {
	out := make([]Decorator, len(r.decorators))
	copy(out, r.decorators)
	return out
}

// Count reports how many callbacks are registered for the pair. Unknown pairs report zero.
func (r *Registry) Count(kind Kind, hook Hook) int {
	switch kind {
	case KindRoot:
		switch hook {
		case HookInit:
			return len(r.rootInit.fns)
		case HookCreateList:
			return len(r.rootCreateList.fns)
		case HookMoveNode:
			return len(r.rootMoveNode.fns)
		case HookDestroy:
			return len(r.rootDestroy.fns)
		}
	case KindNode:
		switch hook {
		case HookInit:
			return len(r.nodeInit.fns)
		case HookCreateList:
			return len(r.nodeCreateList.fns)
		case HookDestroy:
			return len(r.nodeDestroy.fns)
		}
	case KindNodeList:
		switch hook {
		case HookInit:
			return len(r.listInit.fns)
		case HookAddNode:
			return len(r.listAddNode.fns)
		case HookRemoveNode:
			return len(r.listRemoveNode.fns)
		case HookDestroy:
			return len(r.listDestroy.fns)
		}
	}
	return 0
}

// createListChain returns the createList chain for the kind owning a list.
func (r *Registry) createListChain(owner Kind) *chain[*NodeList] {
	if owner == KindRoot {
		return &r.rootCreateList
	}
	return &r.nodeCreateList
}
