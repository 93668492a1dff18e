package treejson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"decotree/pkg/tree"
)

func sampleTree(t *testing.T) *tree.Root {
	t.Helper()
	root, err := tree.New(tree.Properties{"label": "root", "secret": "x"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	top, err := root.CreateList(nil)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	a, err := top.AddNode(tree.Properties{"label": "a"})
	if err != nil {
		t.Fatalf("add a: %v", err)
	}
	if _, err := a.CreateList(nil); err != nil {
		t.Fatalf("create a list: %v", err)
	}
	if _, err := top.AddNode(tree.Properties{"label": "b", "weight": 2}); err != nil {
		t.Fatalf("add b: %v", err)
	}
	return root
}

func TestToJSONEncodesSelectedProperties(t *testing.T) {
	root := sampleTree(t)
	got, err := ToJSON(root, Identity("label", "weight"))
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	want := Object{
		"label": "root",
		"children": []any{
			Object{"label": "a", "children": []any{}},
			Object{"label": "b", "weight": 2},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("document (-want +got):\n%s", diff)
	}
}

func TestToJSONNodeListAndEncoderError(t *testing.T) {
	root := sampleTree(t)
	got, err := ToJSON(root.Children(), Identity("label"))
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	if n := len(got["children"].([]any)); n != 2 {
		t.Fatalf("expected 2 encoded entries, got %d", n)
	}

	boom := errors.New("boom")
	_, err = ToJSON(root, Encoders{"weight": func(any) (any, error) { return nil, boom }})
	if !errors.Is(err, boom) {
		t.Fatalf("expected encoder error, got %v", err)
	}
}

func TestFromJSONRoundTrip(t *testing.T) {
	doc := Object{"label": "root", "children": []any{Object{"label": "x"}}}
	root, err := FromJSON(doc, nil, IdentityDecoders("label"), nil)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if v, _ := root.Get("label"); v != "root" {
		t.Fatalf("root label = %v", v)
	}
	list := root.Children()
	if list == nil || list.Len() != 1 {
		t.Fatalf("expected one child")
	}
	x := list.At(0)
	if v, _ := x.Get("label"); v != "x" || x.Index() != 0 {
		t.Fatalf("child label %v index %d", v, x.Index())
	}
	back, err := ToJSON(root, Identity("label"))
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	if diff := cmp.Diff(doc, back); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestFromJSONPassOrderAndDecorators(t *testing.T) {
	var events []string
	hooks := &tree.Hooks{
		NodeInit: func(n *tree.Node) error {
			events = append(events, fmt.Sprintf("init %d", n.ID()))
			return nil
		},
		ListAddNode: func(_ *tree.NodeList, n *tree.Node) error {
			events = append(events, fmt.Sprintf("add %d", n.ID()))
			return nil
		},
	}
	before := Decoders{"label": func(v any, e tree.Entity) (any, error) {
		events = append(events, fmt.Sprintf("before %v", v))
		return v, nil
	}}
	after := Decoders{"total": func(v any, e tree.Entity) (any, error) {
		c, ok := e.(tree.Container)
		if !ok || c.Children() == nil {
			return 0, nil
		}
		events = append(events, fmt.Sprintf("after %d", c.Children().Len()))
		return c.Children().Len(), nil
	}}
	doc := Object{
		"label": "r",
		"total": nil,
		"children": []any{
			map[string]any{"label": "a"},
			map[string]any{"label": "b"},
		},
	}
	root, err := FromJSON(doc, []tree.Decorator{hooks}, before, after)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	want := []string{"before r", "init 3", "add 3", "before a", "init 4", "add 4", "before b", "after 2"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
	if v, _ := root.Get("total"); v != 2 {
		t.Fatalf("total = %v", v)
	}
}

func TestFromJSONMalformedChildren(t *testing.T) {
	cases := map[string]Object{
		"scalar":  {"children": "nope"},
		"element": {"children": []any{1}},
		"nested":  {"children": []any{map[string]any{"children": map[string]any{}}}},
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := FromJSON(doc, nil, nil, nil); !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("expected malformed document, got %v", err)
			}
		})
	}
}

func TestFromJSONReservedAndDecoderErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := FromJSON(Object{"label": 1}, nil, Decoders{"label": func(any, tree.Entity) (any, error) { return nil, boom }}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected decoder error, got %v", err)
	}
	if _, err := FromJSON(Object{}, []tree.Decorator{"bad"}, nil, nil); !errors.Is(err, tree.ErrMalformedDecorator) {
		t.Fatalf("expected malformed decorator, got %v", err)
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	root := sampleTree(t)
	data, err := Marshal(root, Identity("label", "weight"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"weight":2`) {
		t.Fatalf("unexpected json %s", data)
	}
	doc, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff([]string{"label", "weight"}, Keys(doc)); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	back, err := FromJSON(doc, nil, IdentityDecoders(Keys(doc)...), nil)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	b := back.Children().At(1)
	if v, _ := b.Get("weight"); v != json.Number("2") {
		t.Fatalf("weight = %#v", v)
	}

	if _, err := Unmarshal([]byte("{\"a\":1}\n\t ")); err != nil {
		t.Fatalf("trailing whitespace: %v", err)
	}
	for _, bad := range []string{"", "[1]", "null", "{", `{"a":1} garbage`, `{"a":1}{}`, `{"a":1} }`} {
		if _, err := Unmarshal([]byte(bad)); !errors.Is(err, ErrMalformedDocument) {
			t.Fatalf("%q: expected malformed document, got %v", bad, err)
		}
	}
}

func ownedCount(root *tree.Root) int {
	n := 0
	tree.Walk(root, func(*tree.Node) bool { n++; return true })
	return n
}

func TestToJSONSkipsReferenceEntries(t *testing.T) {
	root, _ := tree.New(nil)
	top, _ := root.CreateList(nil)
	a, _ := top.AddNode(tree.Properties{"label": "a"})
	b, _ := top.AddNode(tree.Properties{"label": "b"})
	bl, err := b.CreateList(nil)
	if err != nil {
		t.Fatalf("create b list: %v", err)
	}
	if err := bl.AddReference(a, 0); err != nil {
		t.Fatalf("add reference: %v", err)
	}

	doc, err := ToJSON(root, Identity("label"))
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	want := Object{"children": []any{
		Object{"label": "a"},
		Object{"label": "b", "children": []any{}},
	}}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("document (-want +got):\n%s", diff)
	}

	back, err := FromJSON(doc, nil, IdentityDecoders("label"), nil)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if got, orig := ownedCount(back), ownedCount(root); got != orig {
		t.Fatalf("round trip owns %d nodes, original %d", got, orig)
	}

	listDoc, err := ToJSON(bl, Identity("label"))
	if err != nil {
		t.Fatalf("list to json: %v", err)
	}
	if n := len(listDoc["children"].([]any)); n != 0 {
		t.Fatalf("expected reference-only list to encode no entries, got %d", n)
	}
}

func TestToJSONSelfReferenceTerminates(t *testing.T) {
	root, _ := tree.New(nil)
	top, _ := root.CreateList(nil)
	a, _ := top.AddNode(tree.Properties{"label": "a"})
	al, err := a.CreateList(nil)
	if err != nil {
		t.Fatalf("create a list: %v", err)
	}
	if err := al.AddReference(a, 0); err != nil {
		t.Fatalf("self reference: %v", err)
	}
	if _, err := al.AddNode(tree.Properties{"label": "a1"}); err != nil {
		t.Fatalf("add a1: %v", err)
	}

	doc, err := ToJSON(root, Identity("label"))
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	want := Object{"children": []any{
		Object{"label": "a", "children": []any{Object{"label": "a1"}}},
	}}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("document (-want +got):\n%s", diff)
	}
}

func TestHydrateAppendsToExistingContainer(t *testing.T) {
	root, _ := tree.New(tree.Properties{"label": "host"})
	top, _ := root.CreateList(nil)
	if _, err := top.AddNode(tree.Properties{"label": "kept"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	doc := Object{"owner": "ana", "children": []any{Object{"label": "x"}, Object{"label": "y"}}}
	if err := Hydrate(doc, root, IdentityDecoders("label", "owner"), nil); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if root.Children() != top || top.Len() != 3 {
		t.Fatalf("expected children appended to the existing list, len %d", top.Len())
	}
	var labels []string
	for _, n := range top.Nodes() {
		v, _ := n.Get("label")
		labels = append(labels, fmt.Sprint(v))
	}
	if got := strings.Join(labels, ","); got != "kept,x,y" {
		t.Fatalf("labels = %s", got)
	}
	if v, _ := root.Get("owner"); v != "ana" {
		t.Fatalf("owner = %v", v)
	}

	a := top.At(0)
	if err := Hydrate(Object{"children": []any{Object{"label": "sub"}}}, a, IdentityDecoders("label"), nil); err != nil {
		t.Fatalf("hydrate node: %v", err)
	}
	if a.Children() == nil || a.Children().Len() != 1 {
		t.Fatalf("expected a child list to be created on the node")
	}
	if err := Hydrate(Object{"children": 3}, a, nil, nil); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected malformed document, got %v", err)
	}
}

func TestAnyKeyDecoder(t *testing.T) {
	doc := Object{"label": "r", "size": json.Number("3"), "children": []any{Object{"tag": "x"}}}
	upper := func(v any, _ tree.Entity) (any, error) { return strings.ToUpper(fmt.Sprint(v)), nil }
	decs := Decoders{AnyKey: upper, "size": passDecode}
	root, err := FromJSON(doc, nil, decs, nil)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if v, _ := root.Get("label"); v != "R" {
		t.Fatalf("label = %v", v)
	}
	if v, _ := root.Get("size"); v != json.Number("3") {
		t.Fatalf("dedicated decoder not preferred, size = %#v", v)
	}
	if v, _ := root.Children().At(0).Get("tag"); v != "X" {
		t.Fatalf("tag = %v", v)
	}
	if _, ok := root.Get(tree.ChildrenKey); ok {
		t.Fatalf("children must not be decoded as a property")
	}
}
