package propmapper

// Record is a dynamic object: a named type whose properties live in a map.
// It lets tables be declared for types that have no Go struct, such as the
// ones loaded by package mappingfile.
type Record struct {
	typ    TypeID
	values map[string]any
	order  []string
}

// NewRecord returns an empty record of type t.
func NewRecord(t TypeID) *Record { return &Record{typ: t, values: map[string]any{}} }

// RecordFactory builds a fresh Record for any requested type.
var RecordFactory ModelFactory = FactoryFunc(func(t TypeID, _ map[string]any) (any, error) {
	return NewRecord(t), nil
})

func (r *Record) MappingType() TypeID {
	if r == nil {
		return ""
	}
	return r.typ
}

func (r *Record) Property(field string) (any, bool) {
	v, ok := r.values[field]
	return v, ok
}

func (r *Record) SetProperty(field string, value any) error {
	if _, ok := r.values[field]; !ok {
		r.order = append(r.order, field)
	}
	r.values[field] = value
	return nil
}

// Fields lists property names in first-assignment order.
func (r *Record) Fields() []string { return append([]string(nil), r.order...) }

// Map returns a plain copy of the record; nested records become maps too.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case *Record:
		if t == nil {
			return nil
		}
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}
