package tree

import (
	"fmt"
	"testing"
)

// recorder implements every hook and logs one line per event.
type recorder struct {
	name   string
	events []string
}

func label(e Entity) string {
	if e == nil {
		return "<nil>"
	}
	if v, ok := e.Get("label"); ok {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%s#%d", e.Kind(), e.ID())
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) OnRootInit(root *Root) error { r.add("root.init %s", label(root)); return nil }
func (r *recorder) OnRootCreateList(l *NodeList) error {
	r.add("root.createList %s", label(l))
	return nil
}
func (r *recorder) OnRootMoveNode(m Move) error {
	r.add("root.moveNode %s %s@%d -> %s@%d", label(m.Node), label(m.From), m.FromIndex, label(m.To), m.ToIndex)
	return nil
}
func (r *recorder) OnRootDestroy(root *Root) error { r.add("root.destroy %s", label(root)); return nil }
func (r *recorder) OnNodeInit(n *Node) error       { r.add("node.init %s", label(n)); return nil }
func (r *recorder) OnNodeCreateList(l *NodeList) error {
	r.add("node.createList %s", label(l))
	return nil
}
func (r *recorder) OnNodeDestroy(n *Node) error     { r.add("node.destroy %s", label(n)); return nil }
func (r *recorder) OnListInit(l *NodeList) error    { r.add("list.init %s", label(l)); return nil }
func (r *recorder) OnListDestroy(l *NodeList) error { r.add("list.destroy %s", label(l)); return nil }
func (r *recorder) OnListAddNode(l *NodeList, n *Node) error {
	r.add("list.addNode %s %s", label(l), label(n))
	return nil
}
func (r *recorder) OnListRemoveNode(l *NodeList, n *Node, index int) error {
	r.add("list.removeNode %s %s@%d", label(l), label(n), index)
	return nil
}

func (r *recorder) reset() { r.events = nil }

func mustList(t *testing.T, c Container, lbl string) *NodeList {
	t.Helper()
	l, err := c.CreateList(Properties{"label": lbl})
	if err != nil {
		t.Fatalf("create list %s: %v", lbl, err)
	}
	return l
}

func mustAdd(t *testing.T, l *NodeList, lbl string) *Node {
	t.Helper()
	n, err := l.AddNode(Properties{"label": lbl})
	if err != nil {
		t.Fatalf("add %s: %v", lbl, err)
	}
	return n
}

func labels(l *NodeList) []string {
	out := make([]string, 0, l.Len())
	for _, n := range l.Nodes() {
		out = append(out, label(n))
	}
	return out
}

func assertIndexes(t *testing.T, l *NodeList) {
	t.Helper()
	for i, n := range l.Nodes() {
		if kind, _ := l.AttachmentAt(i); kind != Owned {
			continue
		}
		if n.Index() != i {
			t.Fatalf("list %s: node %s at %d reports index %d", label(l), label(n), i, n.Index())
		}
	}
}
