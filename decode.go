package propmapper

import (
	"errors"
	"strconv"
)

// decodeInto applies every decode descriptor of tbl to obj, then the final
// decode hook. Issues are collected; the error return is reserved for
// structural failures.
func (m *Mapper) decodeInto(tbl *Table, obj any, dict map[string]any) (Issues, error) {
	acc := m.accessorFor(tbl)
	consumed := map[string]struct{}{}
	var iss Issues

	for _, d := range tbl.Descriptors() {
		if !d.dir.Has(Decode) {
			continue
		}
		for _, k := range d.ConsumedKeys() {
			consumed[k] = struct{}{}
		}

		if d.kind == KindComputed {
			if err := d.consume(dict, obj); err != nil {
				if isStructural(err) {
					return nil, err
				}
				if more, ok := AsIssues(err); ok {
					iss = append(iss, more...)
					continue
				}
				iss = append(iss, failure(d, "consumer", nil, err))
			}
			continue
		}

		raw, present := dict[d.key]
		value := raw
		switch d.kind {
		case KindDirect:
		case KindSymmetric, KindAsymmetric:
			if present {
				v, err := d.decode(raw, d.field)
				if err != nil {
					iss = append(iss, failure(d, "transform", raw, err))
					continue
				}
				value = v
			}
		case KindNested:
			if present && raw != nil {
				v, nested, err := m.decodeNested(d, raw)
				if err != nil {
					return nil, err
				}
				iss = append(iss, nested...)
				if v == nil {
					// not a dictionary or list: leave the field untouched
					iss = append(iss, failure(d, "nested", raw, nil))
					iss = append(iss, d.Validate(raw)...)
					continue
				}
				value = v
			}
		}

		iss = append(iss, d.Validate(value)...)
		if !present {
			continue
		}
		if err := acc.Set(obj, d.field, value); err != nil {
			if isStructural(err) {
				return nil, err
			}
			iss = append(iss, failure(d, "type", value, err))
		}
	}

	if tbl.finalDecoder != nil {
		in := dict
		if tbl.finalDecodeOpt == ExcludeAlreadyMappedKeys {
			in = make(map[string]any, len(dict))
			for k, v := range dict {
				if _, ok := consumed[k]; !ok {
					in[k] = v
				}
			}
		}
		tbl.finalDecoder(in, obj)
	}
	return iss, nil
}

// decodeNested builds the nested instance (or list of instances) for raw.
// A nil value with no error means raw has the wrong shape.
func (m *Mapper) decodeNested(d *Descriptor, raw any) (any, Issues, error) {
	switch v := raw.(type) {
	case map[string]any:
		obj, iss, err := m.decodeChild(d.nested, v)
		if err != nil {
			return nil, nil, err
		}
		return obj, prefixIssues(iss, d.field), nil
	case []any:
		out := make([]any, 0, len(v))
		var all Issues
		for i, e := range v {
			em, ok := e.(map[string]any)
			if !ok {
				all = append(all, Issue{
					Field:     d.field + "." + strconv.Itoa(i),
					Key:       d.key,
					Validator: "nested",
					Value:     e,
					Message:   message("nested", nil),
				})
				continue
			}
			obj, iss, err := m.decodeChild(d.nested, em)
			if err != nil {
				return nil, nil, err
			}
			all = append(all, prefixIssues(iss, d.field+"."+strconv.Itoa(i))...)
			out = append(out, obj)
		}
		return out, all, nil
	}
	return nil, nil, nil
}

func (m *Mapper) decodeChild(t TypeID, dict map[string]any) (any, Issues, error) {
	tbl, err := m.lookup(t)
	if err != nil {
		return nil, nil, err
	}
	obj, err := m.instance(t, dict)
	if err != nil {
		return nil, nil, err
	}
	iss, err := m.decodeInto(tbl, obj, dict)
	if err != nil {
		return nil, nil, err
	}
	return obj, iss, nil
}

// isStructural reports errors that must abort mapping.
func isStructural(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code != CodeValidationFailed
}

func failure(d *Descriptor, name string, value any, cause error) Issue {
	var data map[string]any
	if cause != nil {
		data = map[string]any{"cause": cause.Error()}
	}
	return Issue{
		Field:     d.field,
		Key:       d.key,
		Validator: name,
		Value:     value,
		Message:   message(name, data),
		Cause:     cause,
	}
}
