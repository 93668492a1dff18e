package treejson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"decotree/pkg/tree"
)

func passEncode(v any) (any, error)              { return v, nil }
func passDecode(v any, _ tree.Entity) (any, error) { return v, nil }

// Identity builds Encoders that copy the named properties verbatim.
func Identity(keys ...string) Encoders {
	out := make(Encoders, len(keys))
	for _, k := range keys {
		out[k] = passEncode
	}
	return out
}

// IdentityDecoders builds Decoders that copy the named document keys verbatim.
func IdentityDecoders(keys ...string) Decoders {
	out := make(Decoders, len(keys))
	for _, k := range keys {
		out[k] = passDecode
	}
	return out
}

// Keys returns every property name used anywhere in doc, sorted.
func Keys(doc Object) []string {
	seen := map[string]struct{}{}
	collectKeys(doc, seen)
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func collectKeys(doc Object, seen map[string]struct{}) {
	for k, v := range doc {
		if k != tree.ChildrenKey {
			seen[k] = struct{}{}
			continue
		}
		children, err := childObjects(v)
		if err != nil {
			continue
		}
		for _, child := range children {
			collectKeys(child, seen)
		}
	}
}

// Marshal encodes e with ToJSON and renders the result as JSON text.
func Marshal(e tree.Entity, encoders Encoders) ([]byte, error) {
	obj, err := ToJSON(e, encoders)
	if err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

// Unmarshal parses JSON text into an Object. Numbers are kept as json.Number
// so integer identifiers survive the trip.
func Unmarshal(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj Object
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrMalformedDocument)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformedDocument)
	}
	return obj, nil
}
