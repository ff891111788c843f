package propmapper

import (
	js "github.com/reoring/propmapper/jsonschema"
)

// JSONSchema projects the table registered for t into a JSON Schema of the
// dictionary side. Types are inferred from the validators attached; nested
// descriptors recurse, and a type already on the path is emitted as a bare
// object to stop cycles.
func (m *Mapper) JSONSchema(t TypeID) (*js.Schema, error) {
	s, err := m.schemaFor(t, map[TypeID]bool{})
	if err != nil {
		return nil, err
	}
	s.Schema = js.Draft
	s.Title = string(t)
	return s, nil
}

func (m *Mapper) schemaFor(t TypeID, onPath map[TypeID]bool) (*js.Schema, error) {
	tbl, err := m.lookup(t)
	if err != nil {
		return nil, err
	}
	s := &js.Schema{Type: "object", Properties: map[string]*js.Schema{}}
	if onPath[t] {
		return s, nil
	}
	onPath[t] = true
	defer delete(onPath, t)

	for _, d := range tbl.Descriptors() {
		ps := &js.Schema{}
		switch d.dir {
		case Encode:
			ps.ReadOnly = true
		case Decode:
			ps.WriteOnly = true
		}
		if d.kind == KindNested {
			child, err := m.schemaFor(d.nested, onPath)
			if err != nil {
				return nil, err
			}
			ps.AnyOf = []*js.Schema{child, {Type: "array", Items: child}}
		}
		for _, v := range d.validators {
			if v.name == "isRequired" {
				s.Required = append(s.Required, d.key)
			}
			applyConstraint(ps, v)
		}
		s.Properties[d.key] = ps
	}
	if tbl.finalDecoder == nil {
		s.AdditionalProperties = false
	}
	return s, nil
}

func applyConstraint(ps *js.Schema, v validator) {
	intParam := func(k string) *int {
		n, _ := v.params[k].(int)
		return js.Int(n)
	}
	floatParam := func(k string) *float64 {
		f, _ := v.params[k].(float64)
		return js.Float(f)
	}
	switch v.name {
	case "length":
		ps.Type = "string"
		ps.MinLength, ps.MaxLength = intParam("length"), intParam("length")
	case "minLength":
		ps.Type = "string"
		ps.MinLength = intParam("min")
	case "maxLength":
		ps.Type = "string"
		ps.MaxLength = intParam("max")
	case "lengthRange":
		ps.Type = "string"
		ps.MinLength, ps.MaxLength = intParam("min"), intParam("max")
	case "matchesRegEx":
		ps.Type = "string"
		p, _ := v.params["pattern"].(string)
		ps.Pattern = "^(?:" + p + ")$"
	case "oneOf":
		items, _ := v.params["items"].([]any)
		ps.Enum = items
	case "equalTo":
		ps.Const = v.params["value"]
	case "min":
		ps.Type = "number"
		ps.Minimum = floatParam("min")
	case "max":
		ps.Type = "number"
		ps.Maximum = floatParam("max")
	case "range":
		ps.Type = "number"
		ps.Minimum, ps.Maximum = floatParam("min"), floatParam("max")
	}
}
