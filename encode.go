package propmapper

import (
	"reflect"
	"strconv"
)

// encodeFrom builds the dictionary for obj from the encode descriptors of
// tbl, then runs the final encode hook.
func (m *Mapper) encodeFrom(tbl *Table, obj any, cfg exportConfig) (map[string]any, Issues, error) {
	acc := m.accessorFor(tbl)
	out := make(map[string]any, tbl.Len())
	var iss Issues

	for _, d := range tbl.Descriptors() {
		if !d.dir.Has(Encode) {
			continue
		}
		var value any
		switch d.kind {
		case KindComputed:
			v, err := d.produce(obj)
			if err != nil {
				if isStructural(err) {
					return nil, nil, err
				}
				iss = append(iss, failure(d, "transform", nil, err))
				continue
			}
			value = v
		default:
			raw, err := acc.Get(obj, d.field)
			if err != nil {
				return nil, nil, err
			}
			value = raw
			switch d.kind {
			case KindSymmetric, KindAsymmetric:
				v, err := d.encode(raw, d.field)
				if err != nil {
					iss = append(iss, failure(d, "transform", raw, err))
					continue
				}
				value = v
			case KindNested:
				v, nested, err := m.encodeNested(d, raw, cfg)
				if err != nil {
					return nil, nil, err
				}
				iss = append(iss, nested...)
				value = v
			}
		}

		if cfg.validate {
			iss = append(iss, d.Validate(value)...)
		}
		if isNull(value) {
			if cfg.includeNull {
				out[d.key] = nil
			}
			continue
		}
		out[d.key] = value
	}

	if tbl.finalEncoder != nil {
		tbl.finalEncoder(out, obj)
	}
	return out, iss, nil
}

// encodeNested exports a sub-object, or each element of a slice of them,
// through the table of its runtime type.
func (m *Mapper) encodeNested(d *Descriptor, raw any, cfg exportConfig) (any, Issues, error) {
	if isNull(raw) {
		return nil, nil, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		list := make([]any, 0, rv.Len())
		var all Issues
		for i := 0; i < rv.Len(); i++ {
			v, iss, err := m.encodeChild(elemObject(rv.Index(i)), cfg)
			if err != nil {
				return nil, nil, err
			}
			all = append(all, prefixIssues(iss, d.field+"."+strconv.Itoa(i))...)
			list = append(list, v)
		}
		return list, all, nil
	}
	v, iss, err := m.encodeChild(elemObject(rv), cfg)
	if err != nil {
		return nil, nil, err
	}
	return v, prefixIssues(iss, d.field), nil
}

func (m *Mapper) encodeChild(obj any, cfg exportConfig) (any, Issues, error) {
	if isNull(obj) {
		return nil, nil, nil
	}
	tbl, err := m.lookup(TypeIDOf(obj))
	if err != nil {
		return nil, nil, err
	}
	out, iss, err := m.encodeFrom(tbl, obj, cfg)
	if err != nil {
		return nil, nil, err
	}
	return out, iss, nil
}

// elemObject hands struct values to the accessor as pointers.
func elemObject(v reflect.Value) any {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		if v.CanAddr() {
			return v.Addr().Interface()
		}
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return p.Interface()
	}
	return v.Interface()
}
