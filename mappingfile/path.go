package mappingfile

import (
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/reoring/propmapper"
)

// pathDescriptor builds a decode-only computed descriptor that reads a
// JSONPath from the whole input dictionary. A path that selects nothing
// leaves the property unset. The declared validators run on the selected
// value, which is assigned whatever they report.
func (fs FieldSpec) pathDescriptor(t propmapper.TypeID) (*propmapper.Descriptor, error) {
	if !strings.HasPrefix(fs.Path, "$") {
		return nil, invalid(t, fs.Name, "path %q must start with $", fs.Path)
	}
	if fs.Key != "" {
		return nil, invalid(t, fs.Name, "path fields take no key")
	}
	name, path := fs.Name, fs.Path
	var d *propmapper.Descriptor
	d = propmapper.Computed(name, nil, func(dict map[string]any, obj any) error {
		v, err := jsonpath.Get(path, dict)
		if err != nil {
			v = nil
		}
		iss := d.Validate(v)
		if v != nil {
			if err := propmapper.StructAccessor().Set(obj, name, v); err != nil {
				return err
			}
		}
		if len(iss) > 0 {
			return iss
		}
		return nil
	})
	if err := applyValidators(t, d, fs.Validators); err != nil {
		return nil, err
	}
	if root := rootKey(path); root != "" {
		d.Consumes(root)
	}
	return d, nil
}

// rootKey returns the top-level key a path starts with: "meta" for
// "$.meta.id" and "$['meta'].id".
func rootKey(path string) string {
	p := strings.TrimPrefix(path, "$")
	switch {
	case strings.HasPrefix(p, "."):
		p = p[1:]
		if i := strings.IndexAny(p, ".["); i >= 0 {
			p = p[:i]
		}
		if p == "*" || p == "" || strings.HasPrefix(p, ".") {
			return ""
		}
		return p
	case strings.HasPrefix(p, "['"), strings.HasPrefix(p, `["`):
		q := p[1:2]
		rest := p[2:]
		if i := strings.Index(rest, q+"]"); i >= 0 {
			return rest[:i]
		}
	}
	return ""
}
