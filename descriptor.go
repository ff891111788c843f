package propmapper

import "fmt"

// Transform converts a value crossing the boundary. field is the descriptor's
// field name, passed for context.
type Transform func(value any, field string) (any, error)

// Producer computes an exported value from the whole object.
type Producer func(obj any) (any, error)

// Consumer receives the whole input dictionary and the target object and
// assigns whatever it needs.
type Consumer func(dict map[string]any, obj any) error

type validator struct {
	name   string
	params map[string]any
	check  func(any) bool
}

// Descriptor is the mapping rule for one field. Kind and direction are fixed
// by the constructor; the builder methods append validators or adjust the key
// and return the same descriptor.
type Descriptor struct {
	field string
	key   string
	kind  Kind
	dir   Direction

	nested   TypeID
	encode   Transform
	decode   Transform
	produce  Producer
	consume  Consumer
	consumes []string

	validators []validator
	err        error // builder error, reported as InvalidMapperFormat on registration
}

// Property maps field to the dictionary key of the same name in both
// directions.
func Property(field string) *Descriptor { return newDescriptor(field, KindDirect, Both) }

// PropertyEncode is Property restricted to export.
func PropertyEncode(field string) *Descriptor { return newDescriptor(field, KindDirect, Encode) }

// PropertyDecode is Property restricted to import.
func PropertyDecode(field string) *Descriptor { return newDescriptor(field, KindDirect, Decode) }

// Nested maps field to a nested dictionary (or list of dictionaries) decoded
// through the table registered for t.
func Nested(field string, t TypeID) *Descriptor {
	d := newDescriptor(field, KindNested, Both)
	d.nested = t
	return d
}

// NestedEncode is Nested restricted to export.
func NestedEncode(field string, t TypeID) *Descriptor {
	d := newDescriptor(field, KindNested, Encode)
	d.nested = t
	return d
}

// NestedDecode is Nested restricted to import.
func NestedDecode(field string, t TypeID) *Descriptor {
	d := newDescriptor(field, KindNested, Decode)
	d.nested = t
	return d
}

// Transformed applies fn in both directions.
func Transformed(field string, fn Transform) *Descriptor {
	d := newDescriptor(field, KindSymmetric, Both)
	d.encode, d.decode = fn, fn
	return d
}

// Asymmetric uses encode on export and decode on import. A nil function
// restricts the descriptor to the other direction.
func Asymmetric(field string, encode, decode Transform) *Descriptor {
	var dir Direction
	if encode != nil {
		dir |= Encode
	}
	if decode != nil {
		dir |= Decode
	}
	d := newDescriptor(field, KindAsymmetric, dir)
	d.encode, d.decode = encode, decode
	return d
}

// Computed exports produce(obj) under key and, on import, hands the whole
// dictionary to consume. Either side may be nil. Use Consumes to declare which
// input keys consume reads so ExcludeAlreadyMappedKeys can skip them.
func Computed(key string, produce Producer, consume Consumer) *Descriptor {
	var dir Direction
	if produce != nil {
		dir |= Encode
	}
	if consume != nil {
		dir |= Decode
	}
	d := newDescriptor(key, KindComputed, dir)
	d.produce, d.consume = produce, consume
	return d
}

func newDescriptor(field string, kind Kind, dir Direction) *Descriptor {
	return &Descriptor{field: field, key: field, kind: kind, dir: dir}
}

// Key overrides the dictionary key (defaults to the field name).
func (d *Descriptor) Key(key string) *Descriptor {
	d.key = key
	return d
}

// Consumes records extra input keys this descriptor reads, beyond its own key.
func (d *Descriptor) Consumes(keys ...string) *Descriptor {
	d.consumes = append(d.consumes, keys...)
	return d
}

// Field returns the property name on the target type.
func (d *Descriptor) Field() string { return d.field }

// DictionaryKey returns the key used on the dictionary side.
func (d *Descriptor) DictionaryKey() string { return d.key }

// Kind returns the descriptor kind.
func (d *Descriptor) Kind() Kind { return d.kind }

// Direction returns the directions the descriptor takes part in.
func (d *Descriptor) Direction() Direction { return d.dir }

// NestedType returns the nested type for KindNested descriptors.
func (d *Descriptor) NestedType() TypeID { return d.nested }

// ConsumedKeys lists the input keys attributed to this descriptor on decode.
func (d *Descriptor) ConsumedKeys() []string {
	out := make([]string, 0, 1+len(d.consumes))
	if d.kind != KindComputed || d.consume == nil || len(d.consumes) == 0 {
		out = append(out, d.key)
	}
	return append(out, d.consumes...)
}

// ValidatorNames lists the attached validators in evaluation order.
func (d *Descriptor) ValidatorNames() []string {
	out := make([]string, len(d.validators))
	for i, v := range d.validators {
		out[i] = v.name
	}
	return out
}

// Validator appends a named predicate. The value fails when fn returns false.
func (d *Descriptor) Validator(name string, fn func(value any) bool) *Descriptor {
	return d.addValidator(name, nil, fn)
}

func (d *Descriptor) addValidator(name string, params map[string]any, fn func(any) bool) *Descriptor {
	if fn == nil {
		d.fail(fmt.Errorf("validator %q has no predicate", name))
		return d
	}
	d.validators = append(d.validators, validator{name: name, params: params, check: fn})
	return d
}

func (d *Descriptor) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// Validate runs every validator in order against value and returns one issue
// per failed predicate. It never stops early.
func (d *Descriptor) Validate(value any) Issues {
	var out Issues
	for _, v := range d.validators {
		if v.check(value) {
			continue
		}
		out = append(out, Issue{
			Field:     d.field,
			Key:       d.key,
			Validator: v.name,
			Value:     value,
			Message:   message(v.name, v.params),
			Params:    v.params,
		})
	}
	return out
}

// check verifies that the payload matches the kind.
func (d *Descriptor) check() error {
	if d.err != nil {
		return d.err
	}
	if d.field == "" {
		return fmt.Errorf("descriptor has no field name")
	}
	if d.key == "" {
		return fmt.Errorf("descriptor %q has an empty dictionary key", d.field)
	}
	if d.dir == 0 || d.dir > Both {
		return fmt.Errorf("descriptor %q has invalid direction %s", d.field, d.dir)
	}
	hasTransforms := d.encode != nil || d.decode != nil
	hasComputed := d.produce != nil || d.consume != nil
	switch d.kind {
	case KindDirect:
		if d.nested != "" || hasTransforms || hasComputed {
			return fmt.Errorf("direct descriptor %q carries a payload", d.field)
		}
	case KindNested:
		if d.nested == "" {
			return fmt.Errorf("nested descriptor %q has no type", d.field)
		}
		if hasTransforms || hasComputed {
			return fmt.Errorf("nested descriptor %q carries transforms", d.field)
		}
	case KindSymmetric, KindAsymmetric:
		if d.nested != "" || hasComputed {
			return fmt.Errorf("%s descriptor %q carries a foreign payload", d.kind, d.field)
		}
		if d.dir.Has(Encode) && d.encode == nil {
			return fmt.Errorf("%s descriptor %q has no encode transform", d.kind, d.field)
		}
		if d.dir.Has(Decode) && d.decode == nil {
			return fmt.Errorf("%s descriptor %q has no decode transform", d.kind, d.field)
		}
	case KindComputed:
		if d.nested != "" || hasTransforms {
			return fmt.Errorf("computed descriptor %q carries a foreign payload", d.field)
		}
		if d.dir.Has(Encode) && d.produce == nil {
			return fmt.Errorf("computed descriptor %q has no producer", d.field)
		}
		if d.dir.Has(Decode) && d.consume == nil {
			return fmt.Errorf("computed descriptor %q has no consumer", d.field)
		}
	default:
		return fmt.Errorf("descriptor %q has unknown kind %s", d.field, d.kind)
	}
	return nil
}
