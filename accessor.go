package propmapper

import (
	"fmt"
	"reflect"
	"sync"
)

// Accessor reads and writes a property of an object by field name.
//
// Get and Set return an error matching ErrUnknownProperty when the object has
// no such field; any other Set error means the value could not be converted
// to the field's type and is reported as a validation issue.
type Accessor interface {
	Get(obj any, field string) (any, error)
	Set(obj any, field string, value any) error
}

// PropertyHolder is implemented by objects that store their own properties,
// such as Record. The default accessor defers to it.
type PropertyHolder interface {
	Property(field string) (any, bool)
	SetProperty(field string, value any) error
}

func unknownProperty(obj any, field string) error {
	return &Error{Code: CodeUnknownProperty, Type: TypeIDOf(obj), Field: field}
}

// StructAccessor returns the default accessor. It serves PropertyHolder
// objects directly and pointers to structs through a field index table built
// once per struct type.
func StructAccessor() Accessor { return defaultAccessor }

var defaultAccessor = &structAccessor{}

type structAccessor struct {
	tables sync.Map // reflect.Type -> map[string][]int
}

func (a *structAccessor) fieldIndex(rt reflect.Type) map[string][]int {
	if v, ok := a.tables.Load(rt); ok {
		return v.(map[string][]int)
	}
	idx := map[string][]int{}
	for _, sf := range reflect.VisibleFields(rt) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		idx[sf.Name] = sf.Index
	}
	v, _ := a.tables.LoadOrStore(rt, idx)
	return v.(map[string][]int)
}

func (a *structAccessor) field(obj any, field string, settable bool) (reflect.Value, error) {
	rv := reflect.ValueOf(obj)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil %s", rv.Type())
		}
		rv = rv.Elem()
	} else if settable {
		return reflect.Value{}, fmt.Errorf("%T is not addressable; pass a pointer", obj)
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, unknownProperty(obj, field)
	}
	index, ok := a.fieldIndex(rv.Type())[field]
	if !ok {
		return reflect.Value{}, unknownProperty(obj, field)
	}
	fv, err := rv.FieldByIndexErr(index)
	if err != nil {
		return reflect.Value{}, err
	}
	return fv, nil
}

func (a *structAccessor) Get(obj any, field string) (any, error) {
	if h, ok := obj.(PropertyHolder); ok {
		v, _ := h.Property(field)
		return v, nil
	}
	fv, err := a.field(obj, field, false)
	if err != nil {
		return nil, err
	}
	return fv.Interface(), nil
}

func (a *structAccessor) Set(obj any, field string, value any) error {
	if h, ok := obj.(PropertyHolder); ok {
		return h.SetProperty(field, value)
	}
	fv, err := a.field(obj, field, true)
	if err != nil {
		return err
	}
	return assign(fv, value)
}

// FieldTable is an explicit accessor for one Go type: each field is a pair of
// closures, so no name lookup happens through reflection.
type FieldTable[T any] struct {
	get map[string]func(*T) any
	set map[string]func(*T, any) error
}

// Fields starts an empty FieldTable for T.
func Fields[T any]() *FieldTable[T] {
	return &FieldTable[T]{get: map[string]func(*T) any{}, set: map[string]func(*T, any) error{}}
}

// Field registers the getter and setter of one field. A nil setter makes the
// field read-only for decoding.
func (f *FieldTable[T]) Field(name string, get func(*T) any, set func(*T, any) error) *FieldTable[T] {
	if get != nil {
		f.get[name] = get
	}
	if set != nil {
		f.set[name] = set
	}
	return f
}

func (f *FieldTable[T]) Get(obj any, field string) (any, error) {
	t, ok := obj.(*T)
	if !ok {
		return nil, fmt.Errorf("field table for %s used with %T", TypeOf[T](), obj)
	}
	get, ok := f.get[field]
	if !ok {
		return nil, unknownProperty(obj, field)
	}
	return get(t), nil
}

func (f *FieldTable[T]) Set(obj any, field string, value any) error {
	t, ok := obj.(*T)
	if !ok {
		return fmt.Errorf("field table for %s used with %T", TypeOf[T](), obj)
	}
	set, ok := f.set[field]
	if !ok {
		return unknownProperty(obj, field)
	}
	return set(t, value)
}

// SetAs is a setter helper for FieldTable: it converts value to V with the
// same rules the struct accessor uses and stores it through dst.
func SetAs[V any](dst *V, value any) error {
	return assign(reflect.ValueOf(dst).Elem(), value)
}
