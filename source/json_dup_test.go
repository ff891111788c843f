package source

import (
	"errors"
	"testing"
)

func TestDetectDuplicateKeys(t *testing.T) {
	cases := []struct {
		in   string
		path string
		key  string
	}{
		{`{"a": 1, "b": {"c": 1}, "d": [1, {"e": 2}]}`, "", ""},
		{`{"a": 1, "a": 2}`, "/", "a"},
		{`{"x": {"y": [0, {"k": 1, "k": 2}]}}`, "/x/y/1", "k"},
		{`{"a/b": {"z": 1, "z": 1}}`, "/a~1b", "z"},
		{`{"a": [{"q": 1}, {"q": 1}], "a": 0}`, "/", "a"},
	}
	for _, c := range cases {
		err := detectDuplicateKeys([]byte(c.in))
		if c.key == "" {
			if err != nil {
				t.Fatalf("%s: unexpected %v", c.in, err)
			}
			continue
		}
		var dup *DuplicateKeyError
		if !errors.As(err, &dup) {
			t.Fatalf("%s: expected duplicate key error, got %v", c.in, err)
		}
		if dup.Path != c.path || dup.Key != c.key {
			t.Fatalf("%s: got %s %q, want %s %q", c.in, dup.Path, dup.Key, c.path, c.key)
		}
	}
}

func TestJSON_RejectDuplicates(t *testing.T) {
	in := []byte(`{"a": 1, "a": 2}`)
	if _, err := (JSON{}).Decode(in); err != nil {
		t.Fatalf("lenient decode failed: %v", err)
	}
	if _, err := (JSON{RejectDuplicates: true}).Decode(in); err == nil {
		t.Fatalf("strict decode should fail")
	}
}
