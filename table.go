package propmapper

// Table is the mapping table of one type: descriptors keyed by field name in
// insertion order, plus the optional final hooks and accessor.
type Table struct {
	order  []string
	fields map[string]*Descriptor

	finalDecoder   FinalDecoder
	finalDecodeOpt FinalDecodeOption
	finalEncoder   FinalEncoder
	accessor       Accessor
}

// NewTable returns a table holding ds in order. A later descriptor for the
// same field replaces the earlier one in place.
func NewTable(ds ...*Descriptor) *Table {
	t := &Table{fields: map[string]*Descriptor{}}
	return t.Add(ds...)
}

// Add appends descriptors; an existing field keeps its position and takes the
// new descriptor.
func (t *Table) Add(ds ...*Descriptor) *Table {
	for _, d := range ds {
		if d == nil {
			// kept so check() can reject it
			t.order = append(t.order, "")
			continue
		}
		if _, ok := t.fields[d.field]; !ok {
			t.order = append(t.order, d.field)
		}
		t.fields[d.field] = d
	}
	return t
}

// WithAccessor sets the accessor used for objects of this table's type.
func (t *Table) WithAccessor(a Accessor) *Table {
	t.accessor = a
	return t
}

// Lookup returns the descriptor registered for field.
func (t *Table) Lookup(field string) (*Descriptor, bool) {
	d, ok := t.fields[field]
	return d, ok
}

// Descriptors returns the descriptors in registration order.
func (t *Table) Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(t.order))
	for _, f := range t.order {
		if d, ok := t.fields[f]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Len reports the number of descriptors.
func (t *Table) Len() int { return len(t.fields) }

func (t *Table) clone() *Table {
	c := &Table{
		order:          append([]string(nil), t.order...),
		fields:         make(map[string]*Descriptor, len(t.fields)),
		finalDecoder:   t.finalDecoder,
		finalDecodeOpt: t.finalDecodeOpt,
		finalEncoder:   t.finalEncoder,
		accessor:       t.accessor,
	}
	for k, v := range t.fields {
		c.fields[k] = v
	}
	return c
}

// merge folds o into t; o wins on field collisions and for hooks it sets.
func (t *Table) merge(o *Table) {
	for _, f := range o.order {
		if d, ok := o.fields[f]; ok {
			t.Add(d)
		}
	}
	if o.finalDecoder != nil {
		t.finalDecoder, t.finalDecodeOpt = o.finalDecoder, o.finalDecodeOpt
	}
	if o.finalEncoder != nil {
		t.finalEncoder = o.finalEncoder
	}
	if o.accessor != nil {
		t.accessor = o.accessor
	}
}

// check validates every descriptor and reports the first malformed one.
func (t *Table) check(typ TypeID) error {
	for _, f := range t.order {
		d, ok := t.fields[f]
		if !ok || d == nil {
			return invalidFormat(typ, "", "nil descriptor")
		}
		if err := d.check(); err != nil {
			return &Error{Code: CodeInvalidMapperFormat, Type: typ, Field: d.field, Err: err}
		}
	}
	return nil
}
