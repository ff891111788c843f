package mappingfile

import (
	"fmt"
	"sort"

	"github.com/reoring/propmapper"
	"github.com/reoring/propmapper/codec"
)

var codecByName = codec.ByName

// applyValidators attaches the declared validators in order. An entry is
// either a bare name ("required") or a single-key map ({minLength: 3}).
func applyValidators(t propmapper.TypeID, d *propmapper.Descriptor, entries []any) error {
	for i, e := range entries {
		name, arg, err := splitEntry(e)
		if err != nil {
			return invalid(t, d.Field(), "validators[%d]: %v", i, err)
		}
		if err := applyValidator(d, name, arg); err != nil {
			return invalid(t, d.Field(), "validators[%d] %s: %v", i, name, err)
		}
	}
	return nil
}

func splitEntry(e any) (string, any, error) {
	switch v := e.(type) {
	case string:
		return v, nil, nil
	case map[string]any:
		if len(v) != 1 {
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return "", nil, fmt.Errorf("expected exactly one validator, got %v", keys)
		}
		for k, a := range v {
			return k, a, nil
		}
	}
	return "", nil, fmt.Errorf("unexpected entry %v (%T)", e, e)
}

func applyValidator(d *propmapper.Descriptor, name string, arg any) error {
	switch name {
	case "required", "isRequired":
		d.IsRequired()
	case "length":
		n, err := intArg(arg)
		if err != nil {
			return err
		}
		d.Length(n)
	case "minLength":
		n, err := intArg(arg)
		if err != nil {
			return err
		}
		d.MinLength(n)
	case "maxLength":
		n, err := intArg(arg)
		if err != nil {
			return err
		}
		d.MaxLength(n)
	case "lengthRange":
		lo, hi, err := pairArg(arg)
		if err != nil {
			return err
		}
		d.LengthRange(int(lo), int(hi))
	case "match", "matches":
		s, ok := arg.(string)
		if !ok {
			return fmt.Errorf("expected a pattern string")
		}
		d.Matches(s)
	case "oneOf":
		items, ok := arg.([]any)
		if !ok {
			return fmt.Errorf("expected a list")
		}
		d.OneOf(items...)
	case "equalTo":
		d.EqualTo(arg)
	case "min":
		f, err := floatArg(arg)
		if err != nil {
			return err
		}
		d.Min(f)
	case "max":
		f, err := floatArg(arg)
		if err != nil {
			return err
		}
		d.Max(f)
	case "range":
		lo, hi, err := pairArg(arg)
		if err != nil {
			return err
		}
		d.Range(lo, hi)
	case "expr":
		s, ok := arg.(string)
		if !ok {
			return fmt.Errorf("expected an expression string")
		}
		d.Expr(s)
	default:
		return fmt.Errorf("unknown validator")
	}
	return nil
}

func floatArg(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("expected a number, got %v", v)
}

func intArg(v any) (int, error) {
	f, err := floatArg(v)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) || f < 0 {
		return 0, fmt.Errorf("expected a non-negative integer, got %v", v)
	}
	return int(f), nil
}

func pairArg(v any) (float64, float64, error) {
	items, ok := v.([]any)
	if !ok || len(items) != 2 {
		return 0, 0, fmt.Errorf("expected [min, max]")
	}
	lo, err := floatArg(items[0])
	if err != nil {
		return 0, 0, err
	}
	hi, err := floatArg(items[1])
	if err != nil {
		return 0, 0, err
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("min %v is greater than max %v", lo, hi)
	}
	return lo, hi, nil
}
