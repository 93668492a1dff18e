package tree

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewMixesPropertiesAndRunsInitDecoratorsInOrder(t *testing.T) {
	var calls []string
	d1 := &Hooks{RootInit: func(r *Root) error { calls = append(calls, "d1"); return nil }}
	d2 := &Hooks{RootInit: func(r *Root) error { calls = append(calls, "d2"); return nil }}

	root, err := New(Properties{"test": 4}, d1, d2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if v, ok := root.Get("test"); !ok || v != 4 {
		t.Fatalf("expected mixed-in property, got %v %v", v, ok)
	}
	if diff := cmp.Diff([]string{"d1", "d2"}, calls); diff != "" {
		t.Fatalf("init order (-want +got):\n%s", diff)
	}
	if root.Registry().Count(KindRoot, HookInit) != 2 {
		t.Fatalf("expected two root init callbacks")
	}
	if root.Registry().Count(KindNode, HookMoveNode) != 0 {
		t.Fatalf("unknown pair should report zero")
	}
}

func TestNewRejectsConfigurationErrors(t *testing.T) {
	if _, err := New(nil, struct{}{}); !errors.Is(err, ErrMalformedDecorator) {
		t.Fatalf("expected malformed decorator error, got %v", err)
	}
	if _, err := New(nil, nil); !errors.Is(err, ErrMalformedDecorator) {
		t.Fatalf("expected malformed decorator error for nil, got %v", err)
	}
	if _, err := New(nil, &Hooks{}); !errors.Is(err, ErrMalformedDecorator) {
		t.Fatalf("expected malformed decorator error for empty hooks, got %v", err)
	}
	if _, err := New(Properties{ChildrenKey: 1}); !errors.Is(err, ErrReservedProperty) {
		t.Fatalf("expected reserved property error, got %v", err)
	}
}

func TestCreateListReferencesRootAndFiresHooks(t *testing.T) {
	rec := &recorder{}
	root, err := New(Properties{"label": "root"}, rec)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if root.Children() != nil {
		t.Fatalf("expected no children before createList")
	}
	list := mustList(t, root, "top")
	if root.Children() != list || list.Root() != root || list.Owner() != Container(root) {
		t.Fatalf("expected list wired to root")
	}
	want := []string{"root.init root", "list.init top", "root.createList top"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestAddNodeFiresInitThenAddAndReturnsWiredNode(t *testing.T) {
	rec := &recorder{}
	root, _ := New(Properties{"label": "root"}, rec)
	list := mustList(t, root, "top")
	rec.reset()

	a := mustAdd(t, list, "a")
	if a.ParentList() != list || a.Root() != root || a.Parent() != Container(root) {
		t.Fatalf("expected node back-references")
	}
	if a.Children() != nil {
		t.Fatalf("expected no implicit child list")
	}
	want := []string{"node.init a", "list.addNode top a"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestInsertNodeRenumbersLaterSiblings(t *testing.T) {
	root, _ := New(nil)
	list := mustList(t, root, "top")
	mustAdd(t, list, "a")
	mustAdd(t, list, "c")
	b, err := list.InsertNode(1, Properties{"label": "b"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if b.Index() != 1 {
		t.Fatalf("expected b at 1, got %d", b.Index())
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, labels(list)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	assertIndexes(t, list)

	if _, err := list.InsertNode(5, nil); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	var idxErr *IndexError
	if _, err := list.InsertNode(-1, nil); !errors.As(err, &idxErr) || idxErr.Op != "insert" {
		t.Fatalf("expected IndexError, got %v", err)
	}
}

func TestRemoveNodeDetachesWithoutDestroying(t *testing.T) {
	rec := &recorder{}
	root, _ := New(nil, rec)
	list := mustList(t, root, "top")
	a := mustAdd(t, list, "a")
	b := mustAdd(t, list, "b")
	rec.reset()

	removed, err := list.RemoveNode(0)
	if err != nil || removed != a {
		t.Fatalf("expected a removed, got %v %v", removed, err)
	}
	if a.Destroyed() || a.ParentList() != nil || a.Index() != -1 {
		t.Fatalf("expected detached live node")
	}
	if b.Index() != 0 {
		t.Fatalf("expected b renumbered to 0, got %d", b.Index())
	}
	if diff := cmp.Diff([]string{"list.removeNode top a@0"}, rec.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}

	rec.reset()
	if n, err := list.RemoveNode(7); n != nil || err != nil {
		t.Fatalf("expected benign no-op, got %v %v", n, err)
	}
	if len(rec.events) != 0 {
		t.Fatalf("vacant remove must not fire hooks: %v", rec.events)
	}
	if _, err := list.RemoveNode(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected out of range for negative index, got %v", err)
	}
}

func TestIndexInvariantHoldsAcrossRandomEdits(t *testing.T) {
	root, _ := New(nil)
	list := mustList(t, root, "top")
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		if list.Len() == 0 || rng.Intn(3) > 0 {
			if _, err := list.InsertNode(rng.Intn(list.Len()+1), nil); err != nil {
				t.Fatalf("insert: %v", err)
			}
		} else {
			if _, err := list.RemoveNode(rng.Intn(list.Len())); err != nil {
				t.Fatalf("remove: %v", err)
			}
		}
		assertIndexes(t, list)
	}
}

func TestScenarioAddRemoveMove(t *testing.T) {
	rec := &recorder{}
	root, _ := New(Properties{"label": "root"}, rec)
	list := mustList(t, root, "top")
	mustAdd(t, list, "a")
	b := mustAdd(t, list, "b")
	if diff := cmp.Diff([]string{"a", "b"}, labels(list)); diff != "" {
		t.Fatalf("initial (-want +got):\n%s", diff)
	}
	if _, err := list.RemoveNode(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if diff := cmp.Diff([]string{"b"}, labels(list)); diff != "" || b.Index() != 0 {
		t.Fatalf("after remove (-want +got):\n%s index=%d", diff, b.Index())
	}

	holder := mustAdd(t, list, "holder")
	other := mustList(t, holder, "other")
	rec.reset()
	if err := root.MoveNode(b, other, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	if diff := cmp.Diff([]string{"holder"}, labels(list)); diff != "" {
		t.Fatalf("source list (-want +got):\n%s", diff)
	}
	if other.Len() != 1 || other.At(0) != b {
		t.Fatalf("expected target list to hold only b, got %v", labels(other))
	}
	if b.ParentList() != other || b.Parent() != Container(holder) || b.Index() != 0 {
		t.Fatalf("expected b reparented under holder")
	}
	if holder.Index() != 0 {
		t.Fatalf("expected holder renumbered to 0, got %d", holder.Index())
	}
	if diff := cmp.Diff([]string{"root.moveNode b top@0 -> other@0"}, rec.events); diff != "" {
		t.Fatalf("move must fire exactly one hook (-want +got):\n%s", diff)
	}
}

func TestMoveNodeWithinSameList(t *testing.T) {
	root, _ := New(nil)
	list := mustList(t, root, "top")
	for _, l := range []string{"a", "b", "c", "d"} {
		mustAdd(t, list, l)
	}
	a := list.At(0)
	if err := root.MoveNode(a, list, 3); err != nil {
		t.Fatalf("move: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c", "d", "a"}, labels(list)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	assertIndexes(t, list)
	if err := root.MoveNode(a, list, 4); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected out of range within same list, got %v", err)
	}
}

func TestMoveNodeRejectsCycleWithoutMutating(t *testing.T) {
	rec := &recorder{}
	root, _ := New(nil, rec)
	list := mustList(t, root, "top")
	parent := mustAdd(t, list, "parent")
	kids := mustList(t, parent, "kids")
	child := mustAdd(t, kids, "child")
	grand := mustList(t, child, "grand")
	rec.reset()

	if err := root.MoveNode(parent, grand, 0); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
	if err := root.MoveNode(parent, kids, 0); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected cycle error moving under own list, got %v", err)
	}
	if parent.ParentList() != list || parent.Index() != 0 || grand.Len() != 0 || kids.Len() != 1 {
		t.Fatalf("tree changed by rejected move")
	}
	if len(rec.events) != 0 {
		t.Fatalf("rejected move fired hooks: %v", rec.events)
	}
}

func TestMoveNodeValidation(t *testing.T) {
	root, _ := New(nil)
	list := mustList(t, root, "top")
	a := mustAdd(t, list, "a")

	other, _ := New(nil)
	otherList := mustList(t, other, "foreign")
	if err := root.MoveNode(a, otherList, 0); !errors.Is(err, ErrForeignEntity) {
		t.Fatalf("expected foreign entity error, got %v", err)
	}
	if _, err := list.RemoveNode(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := root.MoveNode(a, list, 0); !errors.Is(err, ErrDetached) {
		t.Fatalf("expected detached error, got %v", err)
	}
	b := mustAdd(t, list, "b")
	if err := root.MoveNode(b, list, -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestDestroyIsIdempotentAndOrdered(t *testing.T) {
	rec := &recorder{}
	root, _ := New(Properties{"label": "root"}, rec)
	list := mustList(t, root, "top")
	a := mustAdd(t, list, "a")
	kids := mustList(t, a, "kids")
	mustAdd(t, kids, "x")
	mustAdd(t, list, "b")
	rec.reset()

	ok, err := root.Destroy()
	if !ok || err != nil {
		t.Fatalf("destroy: %v %v", ok, err)
	}
	want := []string{
		"list.destroy top",
		"list.destroy kids",
		"node.destroy x",
		"node.destroy a",
		"node.destroy b",
		"root.destroy root",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Fatalf("destroy order (-want +got):\n%s", diff)
	}
	if !list.Destroyed() || !a.Destroyed() || !kids.Destroyed() {
		t.Fatalf("expected cascade")
	}
	if root.Len() != 1 {
		t.Fatalf("expected only root left in arena, got %d", root.Len())
	}

	rec.reset()
	if ok, err := root.Destroy(); ok || err != nil {
		t.Fatalf("second destroy should be a no-op, got %v %v", ok, err)
	}
	if ok, _ := a.Destroy(); ok {
		t.Fatalf("second node destroy should be a no-op")
	}
	if len(rec.events) != 0 {
		t.Fatalf("second destroy fired hooks: %v", rec.events)
	}
	if _, err := list.AddNode(nil); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected destroyed error, got %v", err)
	}
}

func TestNodeDestroyDetachesBeforeChildren(t *testing.T) {
	rec := &recorder{}
	root, _ := New(nil, rec)
	list := mustList(t, root, "top")
	a := mustAdd(t, list, "a")
	kids := mustList(t, a, "kids")
	mustAdd(t, kids, "x")
	b := mustAdd(t, list, "b")
	rec.reset()

	if ok, err := a.Destroy(); !ok || err != nil {
		t.Fatalf("destroy: %v %v", ok, err)
	}
	want := []string{
		"list.removeNode top a@0",
		"list.destroy kids",
		"node.destroy x",
		"node.destroy a",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
	if b.Index() != 0 || list.Len() != 1 {
		t.Fatalf("expected b renumbered after sibling destroy")
	}
	if a.Children() != nil {
		t.Fatalf("expected destroyed child list to be released")
	}
	if _, ok := root.Lookup(a.ID()); ok {
		t.Fatalf("expected destroyed node removed from arena")
	}
	if e, ok := root.Lookup(b.ID()); !ok || e != Entity(b) {
		t.Fatalf("expected live node in arena")
	}
}

func TestCreateListTwiceReplacesAndDestroysPrevious(t *testing.T) {
	rec := &recorder{}
	root, _ := New(nil, rec)
	first := mustList(t, root, "first")
	x := mustAdd(t, first, "x")
	rec.reset()

	second := mustList(t, root, "second")
	if root.Children() != second {
		t.Fatalf("expected replacement")
	}
	if !first.Destroyed() || !x.Destroyed() {
		t.Fatalf("expected previous list destroyed")
	}
	want := []string{
		"list.destroy first",
		"node.destroy x",
		"list.init second",
		"root.createList second",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestReferenceAttachment(t *testing.T) {
	rec := &recorder{}
	root, _ := New(nil, rec)
	list := mustList(t, root, "top")
	a := mustAdd(t, list, "a")
	holder := mustAdd(t, list, "holder")
	links := mustList(t, holder, "links")
	rec.reset()

	if err := links.AddReference(a, 0); err != nil {
		t.Fatalf("reference: %v", err)
	}
	if kind, ok := links.AttachmentAt(0); !ok || kind != Reference {
		t.Fatalf("expected reference attachment, got %v", kind)
	}
	if a.ParentList() != list || a.Index() != 0 {
		t.Fatalf("reference must not reparent")
	}
	mustAdd(t, links, "own")
	if _, err := links.InsertNode(0, Properties{"label": "first"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if a.Index() != 0 {
		t.Fatalf("reference renumbering must not touch the referenced node, got %d", a.Index())
	}
	assertIndexes(t, links)

	if _, err := links.Destroy(); err != nil {
		t.Fatalf("destroy links: %v", err)
	}
	if a.Destroyed() {
		t.Fatalf("destroying a referencing list must not destroy the node")
	}
	if len(a.References()) != 0 {
		t.Fatalf("expected reference dropped")
	}

	links = mustList(t, holder, "links2")
	if err := links.AddReference(a, 0); err != nil {
		t.Fatalf("reference: %v", err)
	}
	rec.reset()
	if _, err := a.Destroy(); err != nil {
		t.Fatalf("destroy a: %v", err)
	}
	if links.Len() != 0 {
		t.Fatalf("expected reference removed when node destroyed")
	}
	want := []string{"list.removeNode top a@0", "list.removeNode links2 a@0", "node.destroy a"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestHookErrorFailsFastAfterMutation(t *testing.T) {
	boom := errors.New("boom")
	var second bool
	failing := &Hooks{DecoratorName: "failing", ListAddNode: func(*NodeList, *Node) error { return boom }}
	after := &Hooks{ListAddNode: func(*NodeList, *Node) error { second = true; return nil }}
	root, _ := New(nil, failing, after)
	list := mustList(t, root, "top")

	n, err := list.AddNode(nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected decorator error, got %v", err)
	}
	var hookErr *HookError
	if !errors.As(err, &hookErr) || hookErr.Kind != KindNodeList || hookErr.Hook != HookAddNode || hookErr.Decorator != "failing" {
		t.Fatalf("expected HookError describing the hook, got %#v", err)
	}
	if n == nil || list.Len() != 1 {
		t.Fatalf("mutation must stay applied")
	}
	if second {
		t.Fatalf("later decorators must not run after a failure")
	}
}

func TestWalkDepthAndAncestry(t *testing.T) {
	root, _ := New(nil)
	list := mustList(t, root, "top")
	a := mustAdd(t, list, "a")
	aKids := mustList(t, a, "a-kids")
	a1 := mustAdd(t, aKids, "a1")
	mustAdd(t, list, "b")

	var seen []string
	Walk(root, func(n *Node) bool {
		seen = append(seen, label(n))
		return true
	})
	if diff := cmp.Diff([]string{"a", "a1", "b"}, seen); diff != "" {
		t.Fatalf("walk (-want +got):\n%s", diff)
	}
	seen = nil
	Walk(root, func(n *Node) bool {
		seen = append(seen, label(n))
		return false
	})
	if diff := cmp.Diff([]string{"a", "b"}, seen); diff != "" {
		t.Fatalf("pruned walk (-want +got):\n%s", diff)
	}
	if Depth(a) != 0 || Depth(a1) != 1 {
		t.Fatalf("unexpected depths %d %d", Depth(a), Depth(a1))
	}
	if !IsAncestor(a, a1) || !IsAncestor(root, a1) || IsAncestor(a1, a) {
		t.Fatalf("unexpected ancestry")
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog("tree")
	if c.Name != "tree" || !c.HasMethod("move") || c.HasMethod("teleport") {
		t.Fatalf("unexpected catalog %+v", c)
	}
	if len(c.Events) != 4 {
		t.Fatalf("expected four events, got %v", c.Events)
	}
}
