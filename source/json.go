package source

import (
	"bytes"

	gojson "github.com/goccy/go-json"
)

// JSON reads and writes JSON with goccy/go-json. Numbers decode as
// json.Number so integers keep full precision.
type JSON struct {
	// Indent, when non-empty, pretty-prints encoded output.
	Indent string
	// RejectDuplicates fails decoding when an object repeats a key instead
	// of keeping the last value.
	RejectDuplicates bool
}

func (JSON) Name() string { return "json" }

func (j JSON) Decode(data []byte) (map[string]any, error) {
	if j.RejectDuplicates {
		if err := detectDuplicateKeys(data); err != nil {
			return nil, err
		}
	}
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return rootObject(v)
}

func (j JSON) Encode(dict map[string]any) ([]byte, error) {
	if j.Indent != "" {
		return gojson.MarshalIndent(dict, "", j.Indent)
	}
	return gojson.Marshal(dict)
}
