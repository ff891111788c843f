package propmapper

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// assign stores value into dst, converting between the loose types a parsed
// dictionary carries and the field's static type.
func assign(dst reflect.Value, value any) error {
	if !dst.CanSet() {
		return fmt.Errorf("field of type %s is not settable", dst.Type())
	}
	if isNull(value) {
		dst.SetZero()
		return nil
	}
	src := reflect.ValueOf(value)
	dt := dst.Type()

	if src.Type().AssignableTo(dt) {
		dst.Set(src)
		return nil
	}
	switch dt.Kind() {
	case reflect.Pointer:
		// *T field from T or from a *U convertible element.
		if src.Kind() == reflect.Pointer {
			if src.Type().Elem().AssignableTo(dt.Elem()) {
				nv := reflect.New(dt.Elem())
				nv.Elem().Set(src.Elem())
				dst.Set(nv)
				return nil
			}
			return assign(dst, src.Elem().Interface())
		}
		nv := reflect.New(dt.Elem())
		if err := assign(nv.Elem(), value); err != nil {
			return err
		}
		dst.Set(nv)
		return nil
	case reflect.Struct:
		if src.Kind() == reflect.Pointer && src.Type().Elem().AssignableTo(dt) {
			dst.Set(src.Elem())
			return nil
		}
	case reflect.Interface:
		if src.Type().Implements(dt) {
			dst.Set(src)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt(value)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, dt)
		}
		dst.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt(value)
		if err != nil {
			return err
		}
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d overflows %s", n, dt)
		}
		dst.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		f, ok := numberOf(value)
		if !ok {
			return fmt.Errorf("cannot use %T as %s", value, dt)
		}
		if dst.OverflowFloat(f) {
			return fmt.Errorf("%v overflows %s", f, dt)
		}
		dst.SetFloat(f)
		return nil
	case reflect.String:
		if src.Kind() == reflect.String {
			dst.SetString(src.String())
			return nil
		}
	case reflect.Bool:
		if src.Kind() == reflect.Bool {
			dst.SetBool(src.Bool())
			return nil
		}
	case reflect.Slice:
		if src.Kind() == reflect.Slice || src.Kind() == reflect.Array {
			out := reflect.MakeSlice(dt, src.Len(), src.Len())
			for i := 0; i < src.Len(); i++ {
				if err := assign(out.Index(i), src.Index(i).Interface()); err != nil {
					return fmt.Errorf("index %d: %w", i, err)
				}
			}
			dst.Set(out)
			return nil
		}
	case reflect.Map:
		if src.Kind() == reflect.Map && dt.Key().Kind() == reflect.String && src.Type().Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(dt, src.Len())
			iter := src.MapRange()
			for iter.Next() {
				ev := reflect.New(dt.Elem()).Elem()
				if err := assign(ev, iter.Value().Interface()); err != nil {
					return fmt.Errorf("key %s: %w", iter.Key().String(), err)
				}
				out.SetMapIndex(iter.Key().Convert(dt.Key()), ev)
			}
			dst.Set(out)
			return nil
		}
	}
	if src.Type().ConvertibleTo(dt) && src.Kind() == dt.Kind() {
		dst.Set(src.Convert(dt))
		return nil
	}
	return fmt.Errorf("cannot use %T as %s", value, dt)
}

// toInt accepts integral numbers of any representation.
func toInt(value any) (int64, error) {
	if n, ok := value.(jsonNumber); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot use %q as an integer", n.String())
		}
		return integral(f)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return integral(rv.Float())
	}
	return 0, fmt.Errorf("cannot use %T as an integer", value)
}

func integral(f float64) (int64, error) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int64(f), nil
}
