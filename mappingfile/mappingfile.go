// Package mappingfile loads mapping tables declared in YAML.
//
//	version: "1"
//	types:
//	  User:
//	    fields:
//	      - name: firstName
//	        key: first_name
//	        validators: [required, {minLength: 2}]
//	      - name: address
//	        nested: Address
//	      - name: createdAt
//	        codec: rfc3339
//	      - name: requestID
//	        path: $.meta.request.id
//	    finalDecode: {target: extra, option: excludeMapped}
//	    finalEncode: {source: extra}
//
// Type ids are the YAML type names and objects are *propmapper.Record, so the
// target Mapper must be built over propmapper.RecordFactory (see NewMapper).
package mappingfile

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/propmapper"
)

// File is a parsed mapping document.
type File struct {
	Version string              `yaml:"version"`
	Types   map[string]TypeSpec `yaml:"types"`
}

// TypeSpec declares the table for one type.
type TypeSpec struct {
	Fields      []FieldSpec      `yaml:"fields"`
	FinalDecode *FinalDecodeSpec `yaml:"finalDecode"`
	FinalEncode *FinalEncodeSpec `yaml:"finalEncode"`
}

// FieldSpec declares one descriptor.
type FieldSpec struct {
	Name       string `yaml:"name"`
	Key        string `yaml:"key"`
	Direction  string `yaml:"direction"`
	Codec      string `yaml:"codec"`
	Nested     string `yaml:"nested"`
	Path       string `yaml:"path"`
	Validators []any  `yaml:"validators"`
}

// FinalDecodeSpec copies the input dictionary (or its unmapped remainder)
// into the Target property.
type FinalDecodeSpec struct {
	Target string `yaml:"target"`
	Option string `yaml:"option"` // all | excludeMapped
}

// FinalEncodeSpec spreads a map-valued property into the exported dictionary.
// Keys already produced by the table win.
type FinalEncodeSpec struct {
	Source string `yaml:"source"`
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mappingfile: %w", err)
	}
	f, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a mapping document. Structural problems in the declarations
// are reported by Register, where they carry the type and field.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &propmapper.Error{Code: propmapper.CodeInvalidMapperFormat, Err: err}
	}
	switch f.Version {
	case "", "1":
	default:
		return nil, &propmapper.Error{Code: propmapper.CodeInvalidMapperFormat, Err: fmt.Errorf("unsupported version %q", f.Version)}
	}
	if len(f.Types) == 0 {
		return nil, &propmapper.Error{Code: propmapper.CodeInvalidMapperFormat, Err: fmt.Errorf("no types declared")}
	}
	return &f, nil
}

// TypeNames returns the declared type names, sorted.
func (f *File) TypeNames() []string {
	out := make([]string, 0, len(f.Types))
	for n := range f.Types {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Register builds every declared table and adds it to m. Registration stops
// at the first invalid declaration; tables registered before it stay.
func (f *File) Register(m *propmapper.Mapper) error {
	for _, name := range f.TypeNames() {
		spec := f.Types[name]
		t := propmapper.TypeID(name)
		tbl, err := spec.table(t)
		if err != nil {
			return err
		}
		if err := m.AddMappings(t, tbl); err != nil {
			return err
		}
		if fd := spec.FinalDecode; fd != nil {
			opt, err := finalOption(t, fd.Option)
			if err != nil {
				return err
			}
			m.SetFinalMappingDecoder(t, copyInto(t, fd.Target, m.Logger()), opt)
		}
		if fe := spec.FinalEncode; fe != nil && fe.Source != "" {
			m.SetFinalMappingEncoder(t, spreadFrom(fe.Source))
		}
	}
	return nil
}

// NewMapper returns a Record-backed mapper holding every table in f.
func (f *File) NewMapper(opts ...propmapper.Option) (*propmapper.Mapper, error) {
	m := propmapper.New(propmapper.RecordFactory, opts...)
	if err := f.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s TypeSpec) table(t propmapper.TypeID) (*propmapper.Table, error) {
	tbl := propmapper.NewTable()
	seen := map[string]bool{}
	for i, fs := range s.Fields {
		if strings.TrimSpace(fs.Name) == "" {
			return nil, invalid(t, fmt.Sprintf("fields[%d]", i), "name is required")
		}
		if seen[fs.Name] {
			return nil, invalid(t, fs.Name, "declared twice")
		}
		seen[fs.Name] = true
		d, err := fs.descriptor(t)
		if err != nil {
			return nil, err
		}
		tbl.Add(d)
	}
	return tbl, nil
}

func (fs FieldSpec) descriptor(t propmapper.TypeID) (*propmapper.Descriptor, error) {
	dir, err := direction(t, fs.Name, fs.Direction)
	if err != nil {
		return nil, err
	}

	set := 0
	for _, s := range []string{fs.Codec, fs.Nested, fs.Path} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return nil, invalid(t, fs.Name, "codec, nested and path are mutually exclusive")
	}

	var d *propmapper.Descriptor
	switch {
	case fs.Path != "":
		if dir.Has(propmapper.Encode) && fs.Direction != "" {
			return nil, invalid(t, fs.Name, "path fields are decode-only")
		}
		return fs.pathDescriptor(t)
	case fs.Codec != "":
		enc, dec, ok := codecByName(fs.Codec)
		if !ok {
			return nil, invalid(t, fs.Name, "unknown codec %q", fs.Codec)
		}
		if !dir.Has(propmapper.Encode) {
			enc = nil
		}
		if !dir.Has(propmapper.Decode) {
			dec = nil
		}
		d = propmapper.Asymmetric(fs.Name, enc, dec)
	case fs.Nested != "":
		nt := propmapper.TypeID(fs.Nested)
		switch dir {
		case propmapper.Encode:
			d = propmapper.NestedEncode(fs.Name, nt)
		case propmapper.Decode:
			d = propmapper.NestedDecode(fs.Name, nt)
		default:
			d = propmapper.Nested(fs.Name, nt)
		}
	default:
		switch dir {
		case propmapper.Encode:
			d = propmapper.PropertyEncode(fs.Name)
		case propmapper.Decode:
			d = propmapper.PropertyDecode(fs.Name)
		default:
			d = propmapper.Property(fs.Name)
		}
	}
	if fs.Key != "" {
		d.Key(fs.Key)
	}
	if err := applyValidators(t, d, fs.Validators); err != nil {
		return nil, err
	}
	return d, nil
}

func direction(t propmapper.TypeID, field, s string) (propmapper.Direction, error) {
	switch strings.ToLower(s) {
	case "", "both":
		return propmapper.Both, nil
	case "encode":
		return propmapper.Encode, nil
	case "decode":
		return propmapper.Decode, nil
	}
	return 0, invalid(t, field, "unknown direction %q", s)
}

func finalOption(t propmapper.TypeID, s string) (propmapper.FinalDecodeOption, error) {
	switch s {
	case "", "all":
		return propmapper.IncludeAllKeys, nil
	case "excludeMapped":
		return propmapper.ExcludeAlreadyMappedKeys, nil
	}
	return 0, invalid(t, "finalDecode", "unknown option %q", s)
}

// copyInto never fails for Records. Objects without the target property
// (tables registered on a struct-backed Mapper) log and keep going, since
// final hooks cannot report errors.
func copyInto(t propmapper.TypeID, target string, log *slog.Logger) propmapper.FinalDecoder {
	return func(dict map[string]any, obj any) {
		rest := make(map[string]any, len(dict))
		for k, v := range dict {
			rest[k] = v
		}
		if err := propmapper.StructAccessor().Set(obj, target, rest); err != nil {
			log.Warn("mappingfile.final_decode.failed", "type", t, "target", target, "err", err)
		}
	}
}

func spreadFrom(source string) propmapper.FinalEncoder {
	return func(out map[string]any, obj any) {
		v, err := propmapper.StructAccessor().Get(obj, source)
		if err != nil {
			return
		}
		extra, _ := v.(map[string]any)
		for k, e := range extra {
			if _, ok := out[k]; !ok {
				out[k] = e
			}
		}
	}
}

func invalid(t propmapper.TypeID, field, format string, args ...any) error {
	return &propmapper.Error{Code: propmapper.CodeInvalidMapperFormat, Type: t, Field: field, Err: fmt.Errorf(format, args...)}
}
