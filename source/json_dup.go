package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DuplicateKeyError reports an object key that appears twice. Path is the
// JSON Pointer of the object holding the key.
type DuplicateKeyError struct {
	Path string
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("source: duplicate key %q at %s", e.Key, e.Path)
}

type dupFrame struct {
	object    bool
	keys      map[string]struct{}
	expectKey bool
	key       string
	index     int
}

// detectDuplicateKeys scans data token by token and returns the first
// duplicated object key. Syntax errors are left to the decoder.
func detectDuplicateKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var stack []dupFrame

	// valueDone advances the parent after a complete value.
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.object {
			top.expectKey = true
		} else {
			top.index++
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			// io.EOF or a syntax error the decoder will report
			return nil
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, dupFrame{object: true, keys: map[string]struct{}{}, expectKey: true})
			case '[':
				stack = append(stack, dupFrame{})
			default:
				stack = stack[:len(stack)-1]
				valueDone()
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectKey {
				top := &stack[n-1]
				if _, ok := top.keys[v]; ok {
					return &DuplicateKeyError{Path: pointer(stack[:n-1]), Key: v}
				}
				top.keys[v] = struct{}{}
				top.key = v
				top.expectKey = false
				continue
			}
			valueDone()
		default:
			valueDone()
		}
	}
}

func pointer(frames []dupFrame) string {
	if len(frames) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, f := range frames {
		sb.WriteByte('/')
		if f.object {
			sb.WriteString(strings.NewReplacer("~", "~0", "/", "~1").Replace(f.key))
		} else {
			sb.WriteString(strconv.Itoa(f.index))
		}
	}
	return sb.String()
}
