package propmapper

import "reflect"

// GenerateMappingsFromType returns a table mapping every exported field of
// the struct type rt (or pointer to it) directly to a dictionary key of the
// same name. Refine the result with Add or AddMappings.
func GenerateMappingsFromType(rt reflect.Type) *Table {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	tbl := NewTable()
	if rt == nil || rt.Kind() != reflect.Struct {
		return tbl
	}
	for _, sf := range reflect.VisibleFields(rt) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		tbl.Add(Property(sf.Name))
	}
	return tbl
}

// GenerateMappingsFor is GenerateMappingsFromType for T.
func GenerateMappingsFor[T any]() *Table { return GenerateMappingsFromType(reflect.TypeFor[T]()) }

// GenerateMappingsWithKeys returns a table of direct mappings where each key
// is both the field name and the dictionary key.
func GenerateMappingsWithKeys(keys ...string) *Table {
	tbl := NewTable()
	for _, k := range keys {
		tbl.Add(Property(k))
	}
	return tbl
}
