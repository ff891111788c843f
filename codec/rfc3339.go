package codec

import (
	"fmt"
	"time"

	"github.com/reoring/propmapper"
)

// TimeRFC3339 returns the transforms between RFC3339 strings (dictionary
// side) and time.Time (object side). Encoding normalizes to UTC.
func TimeRFC3339() (encode, decode propmapper.Transform) {
	encode = func(v any, field string) (any, error) {
		switch t := v.(type) {
		case nil:
			return nil, nil
		case time.Time:
			if t.IsZero() {
				return nil, nil
			}
			return formatRFC3339Canonical(t), nil
		case *time.Time:
			if t == nil || t.IsZero() {
				return nil, nil
			}
			return formatRFC3339Canonical(*t), nil
		}
		return nil, fmt.Errorf("%s: expected time.Time, got %T", field, v)
	}
	decode = func(v any, field string) (any, error) {
		switch s := v.(type) {
		case nil:
			return nil, nil
		case string:
			t, err := parseRFC3339(s)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid RFC3339 time: %w", field, err)
			}
			return t, nil
		case time.Time:
			return s, nil
		}
		return nil, fmt.Errorf("%s: expected RFC3339 string, got %T", field, v)
	}
	return encode, decode
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
