// Package propmapper maps loosely typed dictionaries (map[string]any, as
// produced by JSON/YAML/CBOR decoders) to typed objects and back.
//
// A Mapper holds one Table per type. A Table lists field Descriptors:
//
//   - Property: copy the value as is
//   - Nested: recurse into another registered type (object or list of objects)
//   - Transformed / Asymmetric: convert through transform functions
//   - Computed: produce a value from the whole object, consume the whole dictionary
//
// Each descriptor carries a validator chain built fluently:
//
//	propmapper.Property("Name").Key("name").IsRequired().MinLength(3)
//
// Decoding never aborts on validation failures: CreateObject returns the
// populated object together with an Issues error. Structural mistakes (an
// unregistered type, a malformed table, an unknown property) are *Error values
// and abort the call.
//
// Typical usage:
//
//	f := propmapper.NewFactory()
//	userT := propmapper.RegisterType[User](f)
//	m := propmapper.New(f)
//	_ = m.AddMappings(userT, propmapper.NewTable(
//		propmapper.Property("Name").Key("name").IsRequired(),
//		propmapper.Nested("Address", propmapper.RegisterType[Address](f)).Key("address"),
//	))
//	u, err := propmapper.Create[User](m, dict)
//	out, err := m.ExportObject(u, propmapper.IncludeNullValue)
package propmapper
