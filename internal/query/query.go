// Package query selects tree nodes with expr-lang boolean expressions.
//
// Each node is evaluated against an environment holding its properties as
// top-level variables plus these reserved names, which shadow properties of
// the same name:
//
//	id          node ID
//	index       position in the owning list
//	depth       number of node ancestors
//	childCount  entries in the node's child list
//	props       the property map itself
//	parent      the parent node's property map, nil under the root
//
// Unknown variables evaluate to nil, so `label == "a"` is false rather than an
// error on nodes without a label.
package query

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"decotree/pkg/tree"
)

// ErrNotBool is returned when an expression yields a non-boolean value.
var ErrNotBool = errors.New("query: expression did not return a bool")

// Query is a compiled predicate. It is safe for concurrent use.
type Query struct {
	src string
	prg *vm.Program
}

func envTemplate() map[string]any {
	return map[string]any{
		"id":         0,
		"index":      0,
		"depth":      0,
		"childCount": 0,
		"props":      map[string]any{},
		"parent":     map[string]any{},
	}
}

// Compile parses src into a Query.
func Compile(src string) (*Query, error) {
	prg, err := expr.Compile(src,
		expr.Env(envTemplate()),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile query %q: %w", src, err)
	}
	return &Query{src: src, prg: prg}, nil
}

// MustCompile is Compile for package-level queries; it panics on error.
func MustCompile(src string) *Query {
	q, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *Query) String() string { return q.src }

// Env builds the evaluation environment for n.
func Env(n *tree.Node) map[string]any {
	env := map[string]any{}
	props := n.Props()
	for k, v := range props {
		env[k] = v
	}
	childCount := 0
	if c := n.Children(); c != nil {
		childCount = c.Len()
	}
	var parent map[string]any
	if p, ok := n.Parent().(*tree.Node); ok && p != nil {
		parent = p.Props()
	}
	env["id"] = int(n.ID())
	env["index"] = n.Index()
	env["depth"] = tree.Depth(n)
	env["childCount"] = childCount
	env["props"] = map[string]any(props)
	env["parent"] = parent
	return env
}

// Match evaluates the query against n.
func (q *Query) Match(n *tree.Node) (bool, error) {
	out, err := expr.Run(q.prg, Env(n))
	if err != nil {
		return false, fmt.Errorf("query %q on node %d: %w", q.src, n.ID(), err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q gave %T", ErrNotBool, q.src, out)
	}
	return b, nil
}

// Select returns the owned nodes of root that match, in depth-first
// pre-order. The first evaluation error stops the walk.
func (q *Query) Select(root *tree.Root) ([]*tree.Node, error) {
	var (
		out     []*tree.Node
		walkErr error
	)
	tree.Walk(root, func(n *tree.Node) bool {
		if walkErr != nil {
			return false
		}
		ok, err := q.Match(n)
		if err != nil {
			walkErr = err
			return false
		}
		if ok {
			out = append(out, n)
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}
