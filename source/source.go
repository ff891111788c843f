// Package source decodes and encodes the dictionaries a Mapper works on.
//
// Every Format yields map[string]any roots with nested maps normalized to
// map[string]any and lists to []any, which is the shape propmapper expects.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Format converts between bytes and dictionaries.
type Format interface {
	Name() string
	Decode(data []byte) (map[string]any, error)
	Encode(dict map[string]any) ([]byte, error)
}

// ErrNotObject reports a document whose root is not a key/value object.
var ErrNotObject = errors.New("source: document root is not an object")

var formats = map[string]Format{
	"json":     JSON{},
	"yaml":     YAML{},
	"cbor":     CBOR{},
	"protobuf": Protobuf{},
}

var extensions = map[string]string{
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".cbor": "cbor",
	".pb":   "protobuf",
	".bin":  "protobuf",
}

// ByName returns the format registered under name ("json", "yaml", "cbor",
// "protobuf").
func ByName(name string) (Format, error) {
	f, ok := formats[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("source: unknown format %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// ForPath picks the format from a file extension.
func ForPath(path string) (Format, error) {
	name, ok := extensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("source: cannot infer format of %q", path)
	}
	return formats[name], nil
}

// Names lists the known format names, sorted.
func Names() []string {
	out := make([]string, 0, len(formats))
	for n := range formats {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// normalize converts decoder-specific containers (map[any]any,
// map[string]interface{} variants, typed slices) into the canonical shape.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("source: non-string key %v (%T)", k, k)
			}
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[ks] = n
		}
		return out, nil
	case []any:
		for i, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return v, nil
	}
}

func rootObject(v any) (map[string]any, error) {
	n, err := normalize(v)
	if err != nil {
		return nil, err
	}
	m, ok := n.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return m, nil
}
