package codec

import (
	"fmt"
	"strconv"
	"time"

	"github.com/reoring/propmapper"
)

// Duration returns the transforms between duration strings ("1m30s") and
// time.Duration.
func Duration() (encode, decode propmapper.Transform) {
	encode = func(v any, field string) (any, error) {
		switch d := v.(type) {
		case nil:
			return nil, nil
		case time.Duration:
			return d.String(), nil
		}
		return nil, fmt.Errorf("%s: expected time.Duration, got %T", field, v)
	}
	decode = func(v any, field string) (any, error) {
		switch s := v.(type) {
		case nil:
			return nil, nil
		case string:
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", field, err)
			}
			return d, nil
		}
		return nil, fmt.Errorf("%s: expected duration string, got %T", field, v)
	}
	return encode, decode
}

// StringNumber returns the transforms for numbers carried as strings on the
// dictionary side ("12.5") and as float64 on the object side.
func StringNumber() (encode, decode propmapper.Transform) {
	encode = func(v any, field string) (any, error) {
		switch n := v.(type) {
		case nil:
			return nil, nil
		case float64:
			return strconv.FormatFloat(n, 'f', -1, 64), nil
		case float32:
			return strconv.FormatFloat(float64(n), 'f', -1, 32), nil
		case int:
			return strconv.Itoa(n), nil
		case int64:
			return strconv.FormatInt(n, 10), nil
		}
		return nil, fmt.Errorf("%s: expected a number, got %T", field, v)
	}
	decode = func(v any, field string) (any, error) {
		switch s := v.(type) {
		case nil:
			return nil, nil
		case string:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a number", field, s)
			}
			return f, nil
		}
		return nil, fmt.Errorf("%s: expected numeric string, got %T", field, v)
	}
	return encode, decode
}

// Enum returns the transforms between wire symbols and domain values. Values
// must be comparable. Unknown symbols or values fail.
func Enum(symbols map[string]any) (encode, decode propmapper.Transform) {
	reverse := make(map[any]string, len(symbols))
	for k, v := range symbols {
		reverse[v] = k
	}
	encode = func(v any, field string) (any, error) {
		if v == nil {
			return nil, nil
		}
		s, ok := reverse[v]
		if !ok {
			return nil, fmt.Errorf("%s: no symbol for %v", field, v)
		}
		return s, nil
	}
	decode = func(v any, field string) (any, error) {
		if v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected symbol string, got %T", field, v)
		}
		out, ok := symbols[s]
		if !ok {
			return nil, fmt.Errorf("%s: unknown symbol %q", field, s)
		}
		return out, nil
	}
	return encode, decode
}

// ByName resolves the built-in codecs by the names used in mapping files:
// "rfc3339", "duration", "stringNumber".
func ByName(name string) (encode, decode propmapper.Transform, ok bool) {
	switch name {
	case "rfc3339", "time":
		encode, decode = TimeRFC3339()
	case "duration":
		encode, decode = Duration()
	case "stringNumber":
		encode, decode = StringNumber()
	case "identity":
		encode, decode = Identity, Identity
	default:
		return nil, nil, false
	}
	return encode, decode, true
}
