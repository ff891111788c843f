package propmapper

import (
	"errors"
	"io"
	"log/slog"
	"sync"
)

// Mapper holds one Table per type and maps dictionaries to objects and back.
//
// A Mapper is safe for concurrent use. Registered tables are never edited in
// place: every change publishes a new copy, so a running Create/Export keeps
// the table it started with. Objects being mapped are not guarded.
type Mapper struct {
	mu       sync.RWMutex
	tables   map[TypeID]*Table
	factory  ModelFactory
	accessor Accessor
	log      *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithAccessor replaces the default accessor for tables without their own.
func WithAccessor(a Accessor) Option {
	return func(m *Mapper) {
		if a != nil {
			m.accessor = a
		}
	}
}

// WithLogger sets the logger used for debug records. Defaults to discard.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mapper) {
		if l != nil {
			m.log = l
		}
	}
}

// New returns a Mapper that allocates objects through factory.
func New(factory ModelFactory, opts ...Option) *Mapper {
	m := &Mapper{
		tables:   map[TypeID]*Table{},
		factory:  factory,
		accessor: StructAccessor(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Logger returns the logger installed with WithLogger.
func (m *Mapper) Logger() *slog.Logger { return m.log }

// AddMappings merges table into the one registered for t, creating it when
// absent. Later descriptors win on field collisions.
func (m *Mapper) AddMappings(t TypeID, table *Table) error {
	if table == nil {
		return invalidFormat(t, "", "nil table")
	}
	if err := table.check(t); err != nil {
		m.log.Debug("propmapper.add.rejected", "type", t, "err", err)
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tables[t]
	if !ok {
		m.tables[t] = table.clone()
	} else {
		c := cur.clone()
		c.merge(table)
		m.tables[t] = c
	}
	m.log.Debug("propmapper.add", "type", t, "fields", table.Len(), "merged", ok)
	return nil
}

// SetMappings replaces the table registered for t.
func (m *Mapper) SetMappings(t TypeID, table *Table) error {
	if table == nil {
		return invalidFormat(t, "", "nil table")
	}
	if err := table.check(t); err != nil {
		m.log.Debug("propmapper.set.rejected", "type", t, "err", err)
		return err
	}
	m.mu.Lock()
	m.tables[t] = table.clone()
	m.mu.Unlock()
	m.log.Debug("propmapper.set", "type", t, "fields", table.Len())
	return nil
}

// AddMappingsFrom merges every table of other into m.
func (m *Mapper) AddMappingsFrom(other *Mapper) {
	if other == nil || other == m {
		return
	}
	other.mu.RLock()
	snapshot := make(map[TypeID]*Table, len(other.tables))
	for t, tbl := range other.tables {
		snapshot[t] = tbl.clone()
	}
	other.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	for t, tbl := range snapshot {
		if cur, ok := m.tables[t]; ok {
			c := cur.clone()
			c.merge(tbl)
			m.tables[t] = c
			continue
		}
		m.tables[t] = tbl
	}
	m.log.Debug("propmapper.import", "types", len(snapshot))
}

// RemoveMappings drops the table for t and reports whether one existed.
func (m *Mapper) RemoveMappings(t TypeID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tables[t]
	delete(m.tables, t)
	if ok {
		m.log.Debug("propmapper.remove", "type", t)
	}
	return ok
}

// Mappings returns a copy of the table registered for t.
func (m *Mapper) Mappings(t TypeID) (*Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tbl, ok := m.tables[t]
	if !ok {
		return nil, false
	}
	return tbl.clone(), true
}

// Types lists the registered types.
func (m *Mapper) Types() []TypeID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TypeID, 0, len(m.tables))
	for t := range m.tables {
		out = append(out, t)
	}
	return out
}

// SetFinalMappingDecoder installs the hook run after all descriptors on
// decode. opt selects whether it sees the whole dictionary or only the keys no
// descriptor consumed.
func (m *Mapper) SetFinalMappingDecoder(t TypeID, hook FinalDecoder, opt FinalDecodeOption) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.editLocked(t)
	tbl.finalDecoder, tbl.finalDecodeOpt = hook, opt
}

// SetFinalMappingEncoder installs the hook run after all descriptors on
// export. It may add or overwrite keys.
func (m *Mapper) SetFinalMappingEncoder(t TypeID, hook FinalEncoder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editLocked(t).finalEncoder = hook
}

// editLocked publishes a fresh copy of the table for t (an empty one when
// absent) and returns it for editing. m.mu must be held.
func (m *Mapper) editLocked(t TypeID) *Table {
	tbl := NewTable()
	if cur, ok := m.tables[t]; ok {
		tbl = cur.clone()
	}
	m.tables[t] = tbl
	return tbl
}

func (m *Mapper) lookup(t TypeID) (*Table, error) {
	m.mu.RLock()
	tbl, ok := m.tables[t]
	m.mu.RUnlock()
	if !ok {
		m.log.Debug("propmapper.lookup.miss", "type", t)
		return nil, &Error{Code: CodeMapperDidNotFound, Type: t}
	}
	return tbl, nil
}

var errNilObject = errors.New("nil object")

// lookupObject resolves the table for obj's runtime type. Nil objects,
// typed nil pointers included, have none.
func (m *Mapper) lookupObject(obj any) (TypeID, *Table, error) {
	if isNull(obj) {
		return "", nil, &Error{Code: CodeMapperDidNotFound, Err: errNilObject}
	}
	t := TypeIDOf(obj)
	tbl, err := m.lookup(t)
	return t, tbl, err
}

func (m *Mapper) accessorFor(tbl *Table) Accessor {
	if tbl.accessor != nil {
		return tbl.accessor
	}
	return m.accessor
}

// CreateObject asks the factory for an instance of t and populates it from
// dict.
//
// A missing table, a factory failure or an unknown property is returned as an
// *Error with a nil object. Validation failures do not abort: the populated
// object is returned together with an Issues error listing every failure.
func (m *Mapper) CreateObject(t TypeID, dict map[string]any) (any, error) {
	tbl, err := m.lookup(t)
	if err != nil {
		return nil, err
	}
	obj, err := m.instance(t, dict)
	if err != nil {
		return nil, err
	}
	iss, err := m.decodeInto(tbl, obj, dict)
	if err != nil {
		return nil, err
	}
	m.log.Debug("propmapper.create", "type", t, "issues", len(iss))
	if len(iss) > 0 {
		return obj, iss
	}
	return obj, nil
}

// Populate decodes dict into an existing object of a registered type. The
// error contract matches CreateObject.
func (m *Mapper) Populate(obj any, dict map[string]any) error {
	_, tbl, err := m.lookupObject(obj)
	if err != nil {
		return err
	}
	iss, err := m.decodeInto(tbl, obj, dict)
	if err != nil {
		return err
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// ExportObject encodes obj through the table registered for its runtime type.
//
// Structural failures return a nil dictionary. With ValidateValues the
// validators run on exported values; their issues come back as an Issues
// error next to the complete dictionary.
func (m *Mapper) ExportObject(obj any, opts ...ExportOption) (map[string]any, error) {
	t, tbl, err := m.lookupObject(obj)
	if err != nil {
		return nil, err
	}
	out, iss, err := m.encodeFrom(tbl, obj, newExportConfig(opts))
	if err != nil {
		return nil, err
	}
	m.log.Debug("propmapper.export", "type", t, "keys", len(out), "issues", len(iss))
	if len(iss) > 0 {
		return out, iss
	}
	return out, nil
}

func (m *Mapper) instance(t TypeID, dict map[string]any) (any, error) {
	if m.factory == nil {
		return nil, invalidFormat(t, "", "no model factory")
	}
	obj, err := m.factory.InstanceForType(t, dict)
	if err != nil {
		return nil, &Error{Code: CodeInvalidMapperFormat, Type: t, Err: err}
	}
	if obj == nil {
		return nil, invalidFormat(t, "", "model factory returned nil")
	}
	return obj, nil
}

// Create is the typed form of CreateObject.
func Create[T any](m *Mapper, dict map[string]any) (*T, error) {
	obj, err := m.CreateObject(TypeOf[T](), dict)
	if obj == nil {
		return nil, err
	}
	v, ok := obj.(*T)
	if !ok {
		return nil, invalidFormat(TypeOf[T](), "", "model factory returned %T", obj)
	}
	return v, err
}

// Export is ExportObject for a typed pointer.
func Export[T any](m *Mapper, obj *T, opts ...ExportOption) (map[string]any, error) {
	return m.ExportObject(obj, opts...)
}

type exportConfig struct {
	includeNull bool
	validate    bool
}

func newExportConfig(opts []ExportOption) exportConfig {
	var c exportConfig
	for _, o := range opts {
		switch o {
		case ExcludeNullValue:
			c.includeNull = false
		case IncludeNullValue:
			c.includeNull = true
		case ValidateValues:
			c.validate = true
		}
	}
	return c
}
