// Package observability turns tree lifecycle hooks into events and fans them
// out to metrics, journals and loggers.
package observability

import (
	"time"

	"decotree/pkg/tree"
)

// Event is one fired hook.
type Event struct {
	Kind   tree.Kind `json:"kind"`
	Hook   tree.Hook `json:"hook"`
	Entity tree.ID   `json:"entity"`
	// Node is the node added, removed or moved by a list or move hook.
	Node tree.ID `json:"node,omitempty"`
	// Target is the destination list of a move.
	Target tree.ID   `json:"target,omitempty"`
	Index  int       `json:"index"`
	At     time.Time `json:"at"`
}

// Name returns "<kind>.<hook>".
func (e Event) Name() string { return string(e.Kind) + "." + string(e.Hook) }

// Recorder consumes events. Implementations must be safe for concurrent use;
// one recorder may observe many trees.
type Recorder interface {
	Record(Event)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Event)

// Record implements Recorder.
func (f RecorderFunc) Record(e Event) { f(e) }

// Decorator implements every tree hook and forwards an Event to each recorder.
// It never fails a mutation.
type Decorator struct {
	recorders []Recorder
	now       func() time.Time
}

// NewDecorator returns a decorator that feeds the given recorders. Nil
// recorders are skipped.
func NewDecorator(recorders ...Recorder) *Decorator {
	d := &Decorator{now: func() time.Time { return time.Now().UTC() }}
	for _, r := range recorders {
		if r != nil {
			d.recorders = append(d.recorders, r)
		}
	}
	return d
}

// Name implements tree.Named.
func (d *Decorator) Name() string { return "observability" }

func (d *Decorator) emit(e Event) error {
	e.At = d.now()
	for _, r := range d.recorders {
		r.Record(e)
	}
	return nil
}

func (d *Decorator) OnRootInit(r *tree.Root) error {
	return d.emit(Event{Kind: tree.KindRoot, Hook: tree.HookInit, Entity: r.ID(), Index: -1})
}

func (d *Decorator) OnRootCreateList(l *tree.NodeList) error {
	return d.emit(Event{Kind: tree.KindRoot, Hook: tree.HookCreateList, Entity: l.ID(), Index: -1})
}

func (d *Decorator) OnRootMoveNode(m tree.Move) error {
	return d.emit(Event{
		Kind:   tree.KindRoot,
		Hook:   tree.HookMoveNode,
		Entity: m.From.ID(),
		Node:   m.Node.ID(),
		Target: m.To.ID(),
		Index:  m.ToIndex,
	})
}

func (d *Decorator) OnRootDestroy(r *tree.Root) error {
	return d.emit(Event{Kind: tree.KindRoot, Hook: tree.HookDestroy, Entity: r.ID(), Index: -1})
}

func (d *Decorator) OnNodeInit(n *tree.Node) error {
	return d.emit(Event{Kind: tree.KindNode, Hook: tree.HookInit, Entity: n.ID(), Index: n.Index()})
}

func (d *Decorator) OnNodeCreateList(l *tree.NodeList) error {
	return d.emit(Event{Kind: tree.KindNode, Hook: tree.HookCreateList, Entity: l.ID(), Index: -1})
}

func (d *Decorator) OnNodeDestroy(n *tree.Node) error {
	return d.emit(Event{Kind: tree.KindNode, Hook: tree.HookDestroy, Entity: n.ID(), Index: -1})
}

func (d *Decorator) OnListInit(l *tree.NodeList) error {
	return d.emit(Event{Kind: tree.KindNodeList, Hook: tree.HookInit, Entity: l.ID(), Index: -1})
}

func (d *Decorator) OnListAddNode(l *tree.NodeList, n *tree.Node) error {
	return d.emit(Event{Kind: tree.KindNodeList, Hook: tree.HookAddNode, Entity: l.ID(), Node: n.ID(), Index: l.IndexOf(n)})
}

func (d *Decorator) OnListRemoveNode(l *tree.NodeList, n *tree.Node, index int) error {
	return d.emit(Event{Kind: tree.KindNodeList, Hook: tree.HookRemoveNode, Entity: l.ID(), Node: n.ID(), Index: index})
}

func (d *Decorator) OnListDestroy(l *tree.NodeList) error {
	return d.emit(Event{Kind: tree.KindNodeList, Hook: tree.HookDestroy, Entity: l.ID(), Index: -1})
}
