package source

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Protobuf carries dictionaries as a binary google.protobuf.Struct. Numbers
// come back as float64, the only numeric type Struct has.
type Protobuf struct{}

func (Protobuf) Name() string { return "protobuf" }

func (Protobuf) Decode(data []byte) (map[string]any, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.AsMap(), nil
}

func (Protobuf) Encode(dict map[string]any) ([]byte, error) {
	s, err := ToStruct(dict)
	if err != nil {
		return nil, err
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(s)
}

// ToStruct converts a dictionary into a structpb.Struct, widening the value
// types structpb does not accept directly (json.Number, typed slices and
// maps, unsigned and sized integers).
func ToStruct(dict map[string]any) (*structpb.Struct, error) {
	v, err := structValue(dict)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(v.(map[string]any))
}

// FromStruct is the inverse of ToStruct.
func FromStruct(s *structpb.Struct) map[string]any { return s.AsMap() }

type number interface {
	Float64() (float64, error)
}

func structValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if n, ok := v.(number); ok {
		return n.Float64()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("source: protobuf struct needs string keys, got %s", rv.Type())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			e, err := structValue(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = e
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			e, err := structValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return structValue(rv.Elem().Interface())
	}
	return nil, fmt.Errorf("source: cannot represent %T in a protobuf struct", v)
}
