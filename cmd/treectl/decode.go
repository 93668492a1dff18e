package main

import (
	"encoding/json"

	"decotree/pkg/tree"
	"decotree/pkg/treejson"
)

// propertyDecoders copies the named keys, turning JSON numbers into int64 or
// float64 so query expressions can compare them.
func propertyDecoders(keys []string) treejson.Decoders {
	out := make(treejson.Decoders, len(keys))
	for _, k := range keys {
		out[k] = func(v any, _ tree.Entity) (any, error) { return plainValue(v), nil }
	}
	return out
}

// anyPropertyDecoders applies the same conversion to every document key.
func anyPropertyDecoders() treejson.Decoders {
	return treejson.Decoders{treejson.AnyKey: func(v any, _ tree.Entity) (any, error) { return plainValue(v), nil }}
}

func plainValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = plainValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}
