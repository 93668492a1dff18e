// Package treejson converts trees to and from plain nested objects using
// caller-supplied per-property converters.
package treejson

import (
	"errors"
	"fmt"
	"sort"

	"decotree/pkg/tree"
)

// Object is a plain JSON-shaped document. The tree.ChildrenKey entry, when
// present, holds a []any of child Objects.
type Object = map[string]any

// Encoder converts a property value into a JSON-compatible value.
type Encoder func(value any) (any, error)

// Encoders maps property names to encoders. Properties without an encoder are omitted.
type Encoders map[string]Encoder

// Decoder converts a document value back into a property value. target is the
// entity being hydrated, so a decoder can read properties set in earlier passes.
type Decoder func(value any, target tree.Entity) (any, error)

// Decoders maps property names to decoders. A decoder stored under AnyKey
// handles every document key that has no decoder of its own.
type Decoders map[string]Decoder

// AnyKey is the Decoders entry used for keys without a dedicated decoder.
const AnyKey = "*"

// ErrMalformedDocument is returned when a document's children entry is not a
// sequence of objects.
var ErrMalformedDocument = errors.New("treejson: malformed document")

// ToJSON encodes the entity and everything below it. Roots and Nodes encode
// their child list, when one exists, under tree.ChildrenKey; a NodeList
// encodes its own entries there. Only owned entries are encoded: reference
// entries are relations, not children.
func ToJSON(e tree.Entity, encoders Encoders) (Object, error) {
	out := Object{}
	props := e.Props()
	for _, key := range props.Keys() {
		enc, ok := encoders[key]
		if !ok {
			continue
		}
		v, err := enc(props[key])
		if err != nil {
			return nil, fmt.Errorf("encode %s %d property %q: %w", e.Kind(), e.ID(), key, err)
		}
		out[key] = v
	}

	var list *tree.NodeList
	switch v := e.(type) {
	case *tree.NodeList:
		list = v
	case tree.Container:
		list = v.Children()
	}
	if list == nil {
		return out, nil
	}
	children := make([]any, 0, list.Len())
	for i, child := range list.Nodes() {
		if a, _ := list.AttachmentAt(i); a != tree.Owned {
			continue
		}
		obj, err := ToJSON(child, encoders)
		if err != nil {
			return nil, err
		}
		children = append(children, obj)
	}
	out[tree.ChildrenKey] = children
	return out, nil
}

// FromJSON builds a new tree with the given decorators and hydrates it from
// doc. Each level is hydrated in three passes: the before decoders, then one
// AddNode per child payload (recursing into it), then the after decoders.
// Payload keys without a decoder in a pass are ignored by that pass.
func FromJSON(doc Object, decorators []tree.Decorator, before, after Decoders) (*tree.Root, error) {
	root, err := tree.New(nil, decorators...)
	if err != nil {
		return nil, err
	}
	if err := Hydrate(doc, root, before, after); err != nil {
		return root, err
	}
	return root, nil
}

// Hydrate applies doc to an existing container. It creates the child list when
// the document has children and the container has none; otherwise the
// document's children are appended to the existing list.
func Hydrate(doc Object, target tree.Container, before, after Decoders) error {
	return hydrate(doc, target, before, after)
}

func hydrate(doc Object, target tree.Container, before, after Decoders) error {
	if err := applyDecoders(doc, target, before); err != nil {
		return err
	}
	if raw, ok := doc[tree.ChildrenKey]; ok {
		children, err := childObjects(raw)
		if err != nil {
			return fmt.Errorf("%s %d: %w", target.Kind(), target.ID(), err)
		}
		list := target.Children()
		if list == nil {
			if list, err = target.CreateList(nil); err != nil {
				return err
			}
		}
		for _, child := range children {
			node, err := list.AddNode(nil)
			if err != nil {
				return err
			}
			if err := hydrate(child, node, before, after); err != nil {
				return err
			}
		}
	}
	return applyDecoders(doc, target, after)
}

func applyDecoders(doc Object, target tree.Entity, decoders Decoders) error {
	if len(decoders) == 0 {
		return nil
	}
	keys := make([]string, 0, len(doc))
	for k := range doc {
		if k == tree.ChildrenKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		dec, ok := decoders[key]
		if !ok {
			if dec, ok = decoders[AnyKey]; !ok {
				continue
			}
		}
		v, err := dec(doc[key], target)
		if err != nil {
			return fmt.Errorf("decode %s %d property %q: %w", target.Kind(), target.ID(), key, err)
		}
		if err := target.Set(key, v); err != nil {
			return err
		}
	}
	return nil
}

func childObjects(raw any) ([]Object, error) {
	switch v := raw.(type) {
	case []Object:
		return v, nil
	case []any:
		out := make([]Object, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] is %T", ErrMalformedDocument, tree.ChildrenKey, i, item)
			}
			out[i] = obj
		}
		return out, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s is %T", ErrMalformedDocument, tree.ChildrenKey, raw)
}
