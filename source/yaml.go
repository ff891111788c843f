package source

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// YAML reads the first document of a YAML stream and writes block YAML.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Decode(data []byte) (map[string]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNotObject
		}
		return nil, err
	}
	return rootObject(v)
}

func (YAML) Encode(dict map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(dict); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
