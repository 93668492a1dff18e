// Package tree provides a generic, ordered, mutable tree whose structural
// mutations are observed by decorators.
//
// A tree has one Root. A Root or a Node may own one NodeList, the ordered
// sequence of its child Nodes. Every structural operation applies the
// mutation first and then fires the composed decorator callbacks for its hook:
//
//	root, err := tree.New(tree.Properties{"title": "doc"}, metrics)
//	list, err := root.CreateList(nil)
//	a, err := list.AddNode(tree.Properties{"label": "a"})
//	err = root.MoveNode(a, other, 0)
//	ok, err := a.Destroy()
//
// # Decorators
//
// A decorator implements any subset of the hook interfaces (RootInitHook,
// ListAddNodeHook, ...) or is a *Hooks value with some callbacks set.
// Callbacks of one hook run in registration order; the first error stops the
// chain and is returned as a *HookError. The structural change that fired the
// hook is not rolled back, so a failing decorator can leave the tree mutated
// while later decorators never saw the event.
//
// Root.AddDecorator registers a decorator on a populated tree and replays the
// init and createList hooks it missed, in construction order.
//
// # Indexing
//
// For every owned entry at position i of a NodeList, Node.Index() == i after
// each operation returns. Entries attached with NodeList.AddReference are
// relations only: they do not renumber or reparent the referenced node.
//
// # Concurrency
//
// Trees are not safe for concurrent use. A host that shares a tree across
// goroutines must guard the whole tree with one lock.
package tree
