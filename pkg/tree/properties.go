package tree

import (
	"fmt"
	"sort"
)

// ChildrenKey is the property name reserved for the structural child sequence.
const ChildrenKey = "children"

// Properties holds caller-supplied values mixed into an entity.
type Properties map[string]any

// Keys returns the property names in ascending order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p Properties) validate() error {
	if _, ok := p[ChildrenKey]; ok {
		return fmt.Errorf("%w: %q", ErrReservedProperty, ChildrenKey)
	}
	return nil
}

func mixin(dst, src Properties) {
	for k, v := range src {
		dst[k] = v
	}
}

// props is embedded by every entity kind.
type props struct {
	values Properties
}

func newProps(init Properties) (props, error) {
	if err := init.validate(); err != nil {
		return props{}, err
	}
	p := props{values: make(Properties, len(init))}
	mixin(p.values, init)
	return p, nil
}

// Get returns the property stored under key.
func (p *props) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Set stores a property. The reserved children key is rejected.
func (p *props) Set(key string, value any) error {
	if key == ChildrenKey {
		return fmt.Errorf("%w: %q", ErrReservedProperty, key)
	}
	p.values[key] = value
	return nil
}

// Delete removes a property.
func (p *props) Delete(key string) {
	delete(p.values, key)
}

// Props returns the live property map. Callers must not store the children key in it.
func (p *props) Props() Properties {
	return p.values
}
