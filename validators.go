package propmapper

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reoring/propmapper/i18n"
)

// IsRequired fails when the value is absent, nil or an empty string.
func (d *Descriptor) IsRequired() *Descriptor {
	return d.addValidator("isRequired", nil, func(v any) bool {
		if isNull(v) {
			return false
		}
		if s, ok := stringOf(v); ok {
			return s != ""
		}
		return true
	})
}

// Length fails unless the string has exactly n characters.
func (d *Descriptor) Length(n int) *Descriptor {
	return d.addValidator("length", map[string]any{"length": n}, func(v any) bool {
		l, ok := textLength(v)
		return ok && l == n
	})
}

// MinLength fails when the string is shorter than min.
func (d *Descriptor) MinLength(min int) *Descriptor {
	return d.addValidator("minLength", map[string]any{"min": min}, func(v any) bool {
		l, ok := textLength(v)
		return ok && l >= min
	})
}

// MaxLength fails when the string is longer than max.
func (d *Descriptor) MaxLength(max int) *Descriptor {
	return d.addValidator("maxLength", map[string]any{"max": max}, func(v any) bool {
		l, ok := textLength(v)
		return ok && l <= max
	})
}

// LengthRange fails when the string length is below min or above max.
func (d *Descriptor) LengthRange(min, max int) *Descriptor {
	return d.addValidator("lengthRange", map[string]any{"min": min, "max": max}, func(v any) bool {
		l, ok := textLength(v)
		return ok && l >= min && l <= max
	})
}

// MatchesRegEx fails unless the whole string matches re.
func (d *Descriptor) MatchesRegEx(re *regexp.Regexp) *Descriptor {
	if re == nil {
		d.fail(fmt.Errorf("descriptor %q: nil regular expression", d.field))
		return d
	}
	full, err := regexp.Compile(`^(?:` + re.String() + `)$`)
	if err != nil {
		d.fail(fmt.Errorf("descriptor %q: %w", d.field, err))
		return d
	}
	return d.addValidator("matchesRegEx", map[string]any{"pattern": re.String()}, func(v any) bool {
		s, ok := stringOf(v)
		return ok && full.MatchString(s)
	})
}

// Matches compiles pattern and attaches MatchesRegEx. A bad pattern is
// reported when the table is registered.
func (d *Descriptor) Matches(pattern string) *Descriptor {
	re, err := regexp.Compile(pattern)
	if err != nil {
		d.fail(fmt.Errorf("descriptor %q: %w", d.field, err))
		return d
	}
	return d.MatchesRegEx(re)
}

// OneOf fails when the value is not equal to any of items.
func (d *Descriptor) OneOf(items ...any) *Descriptor {
	cp := append([]any(nil), items...)
	return d.addValidator("oneOf", map[string]any{"items": cp}, func(v any) bool {
		for _, it := range cp {
			if equalValues(v, it) {
				return true
			}
		}
		return false
	})
}

// EqualTo fails when the value is not equal to want.
func (d *Descriptor) EqualTo(want any) *Descriptor {
	return d.addValidator("equalTo", map[string]any{"value": want}, func(v any) bool {
		return equalValues(v, want)
	})
}

// Min fails when the number is below min (inclusive bound).
func (d *Descriptor) Min(min float64) *Descriptor {
	return d.addValidator("min", map[string]any{"min": min}, func(v any) bool {
		f, ok := numberOf(v)
		return ok && f >= min
	})
}

// Max fails when the number is above max (inclusive bound).
func (d *Descriptor) Max(max float64) *Descriptor {
	return d.addValidator("max", map[string]any{"max": max}, func(v any) bool {
		f, ok := numberOf(v)
		return ok && f <= max
	})
}

// Range fails when the number is outside [min, max].
func (d *Descriptor) Range(min, max float64) *Descriptor {
	return d.addValidator("range", map[string]any{"min": min, "max": max}, func(v any) bool {
		f, ok := numberOf(v)
		return ok && f >= min && f <= max
	})
}

// Expr attaches a boolean expr-lang expression evaluated with the candidate
// bound to `value` and the field name to `field`. Compile errors surface as
// InvalidMapperFormat on registration.
func (d *Descriptor) Expr(source string) *Descriptor {
	prog, err := expr.Compile(source, expr.Env(exprEnv{}), expr.AsBool())
	if err != nil {
		d.fail(fmt.Errorf("descriptor %q: expr %q: %w", d.field, source, err))
		return d
	}
	field := d.field
	return d.addValidator("expr", map[string]any{"expr": source}, func(v any) bool {
		return runExpr(prog, v, field)
	})
}

type exprEnv struct {
	Value any    `expr:"value"`
	Field string `expr:"field"`
}

func runExpr(prog *vm.Program, v any, field string) bool {
	out, err := expr.Run(prog, exprEnv{Value: v, Field: field})
	if err != nil {
		return false
	}
	b, _ := out.(bool)
	return b
}

func message(name string, params map[string]any) string {
	if len(params) == 0 {
		return i18n.T(name, nil)
	}
	data := make(map[string]string, len(params))
	for k, v := range params {
		if items, ok := v.([]any); ok {
			parts := make([]string, len(items))
			for i, it := range items {
				parts[i] = fmt.Sprint(it)
			}
			data[k] = "[" + strings.Join(parts, ", ") + "]"
			continue
		}
		data[k] = fmt.Sprint(v)
	}
	return i18n.T(name, data)
}

// ---- value helpers ----

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func stringOf(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// textLength counts characters; nil counts as the empty string.
func textLength(v any) (int, bool) {
	if v == nil {
		return 0, true
	}
	s, ok := stringOf(v)
	if !ok {
		return 0, false
	}
	return utf8.RuneCountInString(s), true
}

type jsonNumber interface {
	Float64() (float64, error)
	Int64() (int64, error)
	String() string
}

func numberOf(v any) (float64, bool) {
	if n, ok := v.(jsonNumber); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// equalValues compares numbers by value and everything else deeply.
func equalValues(a, b any) bool {
	fa, oka := numberOf(a)
	fb, okb := numberOf(b)
	if oka && okb {
		return fa == fb
	}
	if sa, ok := stringOf(a); ok {
		if sb, ok := stringOf(b); ok {
			return sa == sb
		}
	}
	return reflect.DeepEqual(a, b)
}
