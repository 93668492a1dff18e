package tree

import "fmt"

// ID identifies an entity within one tree. IDs are allocated by the Root and
// never reused; the Root itself is ID 1.
type ID uint64

// Entity is implemented by Root, NodeList and Node.
type Entity interface {
	ID() ID
	Kind() Kind
	Root() *Root
	Destroyed() bool
	Get(key string) (any, bool)
	Set(key string, value any) error
	Props() Properties
	Destroy() (bool, error)
}

// Container is an entity that may own a child NodeList: a Root or a Node.
type Container interface {
	Entity
	Children() *NodeList
	CreateList(props Properties) (*NodeList, error)
}

var (
	_ Container = (*Root)(nil)
	_ Container = (*Node)(nil)
	_ Entity    = (*NodeList)(nil)
)

// Root is the single entry point of a tree instance.
type Root struct {
	props
	registry  *Registry
	children  *NodeList
	destroyed bool
	nextID    ID
	arena     map[ID]Entity
}

// New constructs a tree. Initial properties are mixed onto the Root, the
// decorators are registered in order and the root init hook fires last.
// A malformed decorator or a reserved property key fails construction.
func New(init Properties, decorators ...Decorator) (*Root, error) {
	p, err := newProps(init)
	if err != nil {
		return nil, err
	}
	registry := NewRegistry()
	for i, d := range decorators {
		if err := registry.Register(d); err != nil {
			return nil, fmt.Errorf("decorator %d: %w", i, err)
		}
	}
	r := &Root{props: p, registry: registry, arena: make(map[ID]Entity)}
	r.nextID = 1
	r.arena[r.nextID] = r
	if err := registry.rootInit.fire(r); err != nil {
		return r, err
	}
	return r, nil
}

func (r *Root) allocate(e Entity) ID {
	r.nextID++
	r.arena[r.nextID] = e
	return r.nextID
}

func (r *Root) release(id ID) {
	delete(r.arena, id)
}

// ID returns the root identifier.
func (r *Root) ID() ID { return 1 }

// Kind returns KindRoot.
func (r *Root) Kind() Kind { return KindRoot }

// Root returns the receiver.
func (r *Root) Root() *Root { return r }

// Destroyed reports whether Destroy has run.
func (r *Root) Destroyed() bool { return r.destroyed }

// Children returns the root list, or nil when none was created.
func (r *Root) Children() *NodeList { return r.children }

// Registry exposes the decorator registry of the tree.
func (r *Root) Registry() *Registry { return r.registry }

// Lookup returns the live entity with the given ID.
func (r *Root) Lookup(id ID) (Entity, bool) {
	e, ok := r.arena[id]
	return e, ok
}

// Len reports the number of live entities, the Root included.
func (r *Root) Len() int { return len(r.arena) }

// CreateList allocates the root list. Calling it again replaces the list: the
// previous list is destroyed first, so its decorators observe its teardown and
// callers holding it see a destroyed list.
func (r *Root) CreateList(init Properties) (*NodeList, error) {
	if r.destroyed {
		return nil, ErrDestroyed
	}
	return createList(r, &r.children, init)
}

// MoveNode relocates node into target at index as one atomic operation and
// fires a single root moveNode hook. The move is validated before anything
// changes: foreign or destroyed entities, detached nodes, cycles and bad
// indexes leave the tree untouched.
func (r *Root) MoveNode(node *Node, target *NodeList, index int) error {
	if r.destroyed {
		return ErrDestroyed
	}
	if node == nil || target == nil {
		return fmt.Errorf("move: %w: nil node or target", ErrDetached)
	}
	if node.root != r || target.root != r {
		return fmt.Errorf("move: %w", ErrForeignEntity)
	}
	if node.destroyed || target.destroyed {
		return fmt.Errorf("move: %w", ErrDestroyed)
	}
	from := node.list
	if from == nil {
		return fmt.Errorf("move node %d: %w", node.id, ErrDetached)
	}
	if owner, ok := target.owner.(*Node); ok && IsAncestor(node, owner) {
		return fmt.Errorf("move node %d under %d: %w", node.id, owner.id, ErrCycle)
	}
	limit := len(target.entries)
	if target == from {
		limit--
	}
	if index < 0 || index > limit {
		return &IndexError{Op: "move", Index: index, Len: limit}
	}

	fromIndex := node.index
	from.splice(fromIndex)
	target.insert(index, entry{node: node, kind: Owned})
	node.list = target
	node.index = index

	return r.registry.rootMoveNode.fire(Move{
		Node:      node,
		From:      from,
		FromIndex: fromIndex,
		To:        target,
		ToIndex:   index,
	})
}

// AddDecorator registers a decorator on a live tree and immediately replays
// init and createList hooks for every existing entity, depth-first, in the
// order construction would have produced them. Historical addNode, removeNode
// and moveNode events are not replayed. If the replay fails the decorator
// stays registered.
func (r *Root) AddDecorator(d Decorator) error {
	if r.destroyed {
		return ErrDestroyed
	}
	single := NewRegistry()
	if err := single.Register(d); err != nil {
		return err
	}
	if err := r.registry.Register(d); err != nil {
		return err
	}
	return backfill(single, r)
}

// Destroy destroys the root list and then fires the root destroy hook.
// It reports false on every call after the first.
func (r *Root) Destroy() (bool, error) {
	if r.destroyed {
		return false, nil
	}
	r.destroyed = true
	if r.children != nil {
		if _, err := r.children.Destroy(); err != nil {
			return true, err
		}
	}
	return true, r.registry.rootDestroy.fire(r)
}
