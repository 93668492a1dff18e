package tree

import "fmt"

// Kind names an entity kind a decorator can attach to.
type Kind string

const (
	KindRoot     Kind = "root"
	KindNode     Kind = "node"
	KindNodeList Kind = "nodeList"
)

// Hook names a lifecycle event.
type Hook string

const (
	HookInit       Hook = "init"
	HookCreateList Hook = "createList"
	HookAddNode    Hook = "addNode"
	HookRemoveNode Hook = "removeNode"
	HookMoveNode   Hook = "moveNode"
	HookDestroy    Hook = "destroy"
)

// Decorator is any value implementing one or more of the hook interfaces below,
// or a Hooks value with at least one callback set.
type Decorator any

// Named decorators report a name used in HookError and logs.
type Named interface {
	Name() string
}

// Move describes a single node relocation.
type Move struct {
	Node      *Node
	From      *NodeList
	FromIndex int
	To        *NodeList
	ToIndex   int
}

type (
	RootInitHook       interface{ OnRootInit(*Root) error }
	RootCreateListHook interface{ OnRootCreateList(*NodeList) error }
	RootMoveNodeHook   interface{ OnRootMoveNode(Move) error }
	RootDestroyHook    interface{ OnRootDestroy(*Root) error }

	NodeInitHook       interface{ OnNodeInit(*Node) error }
	NodeCreateListHook interface{ OnNodeCreateList(*NodeList) error }
	NodeDestroyHook    interface{ OnNodeDestroy(*Node) error }

	ListInitHook       interface{ OnListInit(*NodeList) error }
	ListAddNodeHook    interface{ OnListAddNode(*NodeList, *Node) error }
	ListRemoveNodeHook interface {
		OnListRemoveNode(list *NodeList, node *Node, index int) error
	}
	ListDestroyHook interface{ OnListDestroy(*NodeList) error }
)

// Hooks is a function-field decorator for callers that do not want to declare a
// type. Nil fields are skipped at registration.
type Hooks struct {
	DecoratorName string

	RootInit       func(*Root) error
	RootCreateList func(*NodeList) error
	RootMoveNode   func(Move) error
	RootDestroy    func(*Root) error

	NodeInit       func(*Node) error
	NodeCreateList func(*NodeList) error
	NodeDestroy    func(*Node) error

	ListInit       func(*NodeList) error
	ListAddNode    func(*NodeList, *Node) error
	ListRemoveNode func(*NodeList, *Node, int) error
	ListDestroy    func(*NodeList) error
}

// Name implements Named.
func (h *Hooks) Name() string {
	if h.DecoratorName == "" {
		return "hooks"
	}
	return h.DecoratorName
}

// binding is the set of callbacks a decorator contributes, resolved once.
type binding struct {
	name string

	rootInit       func(*Root) error
	rootCreateList func(*NodeList) error
	rootMoveNode   func(Move) error
	rootDestroy    func(*Root) error

	nodeInit       func(*Node) error
	nodeCreateList func(*NodeList) error
	nodeDestroy    func(*Node) error

	listInit       func(*NodeList) error
	listAddNode    func(*NodeList, *Node) error
	listRemoveNode func(*NodeList, *Node, int) error
	listDestroy    func(*NodeList) error
}

func (b *binding) empty() bool {
	return b.rootInit == nil && b.rootCreateList == nil && b.rootMoveNode == nil && b.rootDestroy == nil &&
		b.nodeInit == nil && b.nodeCreateList == nil && b.nodeDestroy == nil &&
		b.listInit == nil && b.listAddNode == nil && b.listRemoveNode == nil && b.listDestroy == nil
}

func bind(d Decorator) (*binding, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil", ErrMalformedDecorator)
	}
	b := &binding{name: decoratorName(d)}
	switch h := d.(type) {
	case *Hooks:
		if h == nil {
			return nil, fmt.Errorf("%w: nil *Hooks", ErrMalformedDecorator)
		}
		bindHooks(b, h)
	case Hooks:
		bindHooks(b, &h)
	default:
		if v, ok := d.(RootInitHook); ok {
			b.rootInit = v.OnRootInit
		}
		if v, ok := d.(RootCreateListHook); ok {
			b.rootCreateList = v.OnRootCreateList
		}
		if v, ok := d.(RootMoveNodeHook); ok {
			b.rootMoveNode = v.OnRootMoveNode
		}
		if v, ok := d.(RootDestroyHook); ok {
			b.rootDestroy = v.OnRootDestroy
		}
		if v, ok := d.(NodeInitHook); ok {
			b.nodeInit = v.OnNodeInit
		}
		if v, ok := d.(NodeCreateListHook); ok {
			b.nodeCreateList = v.OnNodeCreateList
		}
		if v, ok := d.(NodeDestroyHook); ok {
			b.nodeDestroy = v.OnNodeDestroy
		}
		if v, ok := d.(ListInitHook); ok {
			b.listInit = v.OnListInit
		}
		if v, ok := d.(ListAddNodeHook); ok {
			b.listAddNode = v.OnListAddNode
		}
		if v, ok := d.(ListRemoveNodeHook); ok {
			b.listRemoveNode = v.OnListRemoveNode
		}
		if v, ok := d.(ListDestroyHook); ok {
			b.listDestroy = v.OnListDestroy
		}
	}
	if b.empty() {
		return nil, fmt.Errorf("%w: %T implements no hook", ErrMalformedDecorator, d)
	}
	return b, nil
}

func bindHooks(b *binding, h *Hooks) {
	b.rootInit = h.RootInit
	b.rootCreateList = h.RootCreateList
	b.rootMoveNode = h.RootMoveNode
	b.rootDestroy = h.RootDestroy
	b.nodeInit = h.NodeInit
	b.nodeCreateList = h.NodeCreateList
	b.nodeDestroy = h.NodeDestroy
	b.listInit = h.ListInit
	b.listAddNode = h.ListAddNode
	b.listRemoveNode = h.ListRemoveNode
	b.listDestroy = h.ListDestroy
}

func decoratorName(d Decorator) string {
	switch n := d.(type) {
	case *Hooks:
		if n != nil {
			return n.Name()
		}
	case Hooks:
		return n.Name()
	case Named:
		return n.Name()
	}
	return fmt.Sprintf("%T", d)
}
