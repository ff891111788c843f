package propmapper

import (
	"fmt"
	"reflect"
)

// TypeID identifies a mapped type. For Go types it is the package path plus
// type name; dynamic objects (Record) carry an arbitrary name.
type TypeID string

// Typed is implemented by objects that report their own mapping type instead
// of being identified by their Go type.
type Typed interface {
	MappingType() TypeID
}

// TypeOf returns the TypeID of T. Pointer types resolve to their element type,
// so TypeOf[*User]() == TypeOf[User]().
func TypeOf[T any]() TypeID { return typeIDOfReflect(reflect.TypeFor[T]()) }

// TypeIDOf returns the runtime TypeID of obj.
// A nil object, including a typed nil pointer, has no TypeID.
func TypeIDOf(obj any) TypeID {
	if isNull(obj) {
		return ""
	}
	if t, ok := obj.(Typed); ok {
		return t.MappingType()
	}
	return typeIDOfReflect(reflect.TypeOf(obj))
}

func typeIDOfReflect(rt reflect.Type) TypeID {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Name() != "" && rt.PkgPath() != "" {
		return TypeID(rt.PkgPath() + "." + rt.Name())
	}
	return TypeID(rt.String())
}

// Direction selects whether a descriptor takes part in encoding, decoding or
// both. Values compose bitwise.
type Direction uint8

const (
	Encode Direction = 1
	Decode Direction = 2
	Both             = Encode | Decode
)

// Has reports whether d includes every bit of o.
func (d Direction) Has(o Direction) bool { return d&o == o }

func (d Direction) String() string {
	switch d {
	case Encode:
		return "encode"
	case Decode:
		return "decode"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Kind tags how a value crosses the object/dictionary boundary.
type Kind uint8

const (
	KindDirect     Kind = iota // value copied as is
	KindNested                 // dictionary recursed into a registered type
	KindSymmetric              // one transform used in both directions
	KindAsymmetric             // separate encode and decode transforms
	KindComputed               // producer/consumer pair over the whole object/dictionary
)

func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindNested:
		return "nested"
	case KindSymmetric:
		return "symmetric"
	case KindAsymmetric:
		return "asymmetric"
	case KindComputed:
		return "computed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ExportOption tunes ExportObject.
type ExportOption int

const (
	ExcludeNullValue ExportOption = iota // omit keys whose value is null (default)
	IncludeNullValue                     // emit null-valued keys with a nil value
	ValidateValues                       // run validators on exported values (advisory)
)

// FinalDecodeOption selects which keys the final decode hook receives.
type FinalDecodeOption int

const (
	IncludeAllKeys           FinalDecodeOption = iota // the whole input dictionary
	ExcludeAlreadyMappedKeys                          // only keys no descriptor consumed
)

// FinalDecoder handles keys not covered by descriptors after decoding.
type FinalDecoder func(dict map[string]any, obj any)

// FinalEncoder may add or overwrite keys after per-field encoding.
type FinalEncoder func(out map[string]any, obj any)
