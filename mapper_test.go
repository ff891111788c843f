package propmapper_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/reoring/propmapper"
)

type Address struct {
	City   string
	Street string
}

type User struct {
	FirstName string
	LastName  string
	Age       int
	Active    bool
	Tags      []string
	Address   *Address
	Previous  []Address
	Extra     map[string]any
}

func newUserMapper(t *testing.T) (*propmapper.Mapper, propmapper.TypeID, propmapper.TypeID) {
	t.Helper()
	f := propmapper.NewFactory()
	userT := propmapper.RegisterType[User](f)
	addrT := propmapper.RegisterType[Address](f)
	m := propmapper.New(f)
	if err := m.AddMappings(addrT, propmapper.NewTable(
		propmapper.Property("City").Key("city").IsRequired(),
		propmapper.Property("Street").Key("street"),
	)); err != nil {
		t.Fatalf("add address: %v", err)
	}
	if err := m.AddMappings(userT, propmapper.NewTable(
		propmapper.Property("FirstName").Key("first_name").IsRequired().MinLength(2),
		propmapper.Property("LastName").Key("last_name"),
		propmapper.Property("Age").Key("age").Min(0),
		propmapper.Property("Active").Key("active"),
		propmapper.Property("Tags").Key("tags"),
		propmapper.Nested("Address", addrT).Key("address"),
		propmapper.Nested("Previous", addrT).Key("previous"),
	)); err != nil {
		t.Fatalf("add user: %v", err)
	}
	return m, userT, addrT
}

func TestCreateObject_NestedDecode(t *testing.T) {
	m, _, _ := newUserMapper(t)
	u, err := propmapper.Create[User](m, map[string]any{
		"first_name": "Ada",
		"age":        float64(36),
		"active":     true,
		"tags":       []any{"a", "b"},
		"address":    map[string]any{"city": "X"},
		"previous":   []any{map[string]any{"city": "Y", "street": "Main"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.FirstName != "Ada" || u.Age != 36 || !u.Active {
		t.Fatalf("scalar fields not populated: %+v", u)
	}
	if len(u.Tags) != 2 || u.Tags[1] != "b" {
		t.Fatalf("tags not converted: %v", u.Tags)
	}
	if u.Address == nil || u.Address.City != "X" {
		t.Fatalf("nested address not decoded: %+v", u.Address)
	}
	if len(u.Previous) != 1 || u.Previous[0].Street != "Main" {
		t.Fatalf("nested list not decoded: %+v", u.Previous)
	}
}

func TestCreateObject_PartialFailureDoesNotBlock(t *testing.T) {
	m, userT, _ := newUserMapper(t)
	obj, err := m.CreateObject(userT, map[string]any{"first_name": "Ada", "age": "not-a-number"})
	if obj == nil {
		t.Fatalf("expected a populated object despite issues")
	}
	iss, ok := propmapper.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected issues, got %v", err)
	}
	if !errors.Is(err, propmapper.ErrValidationFailed) {
		t.Fatalf("issues should match ErrValidationFailed")
	}
	age := iss.ByField("Age")
	if len(age) != 2 || age[0].Validator != "min" || age[1].Validator != "type" {
		t.Fatalf("expected min then type issues for Age, got %v", age)
	}
	if u := obj.(*User); u.FirstName != "Ada" || u.Age != 0 {
		t.Fatalf("unexpected object state: %+v", u)
	}
}

func TestCreateObject_NestedIssuesAreNamespaced(t *testing.T) {
	m, userT, _ := newUserMapper(t)
	_, err := m.CreateObject(userT, map[string]any{
		"first_name": "Ada",
		"address":    map[string]any{"street": "Main"},
		"previous":   []any{map[string]any{"city": "Y"}, map[string]any{}},
	})
	iss, ok := propmapper.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	if len(iss.ByField("Address.City")) != 1 {
		t.Fatalf("expected Address.City issue, got %v", iss)
	}
	if len(iss.ByField("Previous.1.City")) != 1 {
		t.Fatalf("expected Previous.1.City issue, got %v", iss)
	}
}

func TestCreateObject_NestedWrongShapeLeavesFieldUntouched(t *testing.T) {
	m, userT, _ := newUserMapper(t)
	obj, err := m.CreateObject(userT, map[string]any{"first_name": "Ada", "address": "Main St"})
	iss, _ := propmapper.AsIssues(err)
	if len(iss.ByField("Address")) != 1 || iss.ByField("Address")[0].Validator != "nested" {
		t.Fatalf("expected a nested issue, got %v", err)
	}
	if obj.(*User).Address != nil {
		t.Fatalf("address should stay untouched")
	}
}

func TestCreateObject_MissingKeysAreNotAssigned(t *testing.T) {
	m, _, _ := newUserMapper(t)
	u := &User{LastName: "keep"}
	err := m.Populate(u, map[string]any{"first_name": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.LastName != "keep" {
		t.Fatalf("absent key overwrote field: %+v", u)
	}
	if err := m.Populate(u, map[string]any{"first_name": "Ada", "last_name": nil}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.LastName != "" {
		t.Fatalf("explicit null should clear field: %+v", u)
	}
}

func TestCreateObject_UnregisteredType(t *testing.T) {
	m := propmapper.New(propmapper.NewFactory())
	obj, err := m.CreateObject("nope", map[string]any{})
	if obj != nil || !errors.Is(err, propmapper.ErrMapperDidNotFound) {
		t.Fatalf("expected MapperDidNotFound, got obj=%v err=%v", obj, err)
	}
}

func TestCreateObject_UnknownPropertyIsFatal(t *testing.T) {
	f := propmapper.NewFactory()
	userT := propmapper.RegisterType[User](f)
	m := propmapper.New(f)
	if err := m.AddMappings(userT, propmapper.NewTable(propmapper.Property("Nickname"))); err != nil {
		t.Fatal(err)
	}
	obj, err := m.CreateObject(userT, map[string]any{"Nickname": "x"})
	if obj != nil || !errors.Is(err, propmapper.ErrUnknownProperty) {
		t.Fatalf("expected UnknownProperty, got obj=%v err=%v", obj, err)
	}
	var pe *propmapper.Error
	if !errors.As(err, &pe) || pe.Field != "Nickname" {
		t.Fatalf("expected field in error, got %v", err)
	}
}

func TestExportObject_NullOptions(t *testing.T) {
	m, _, _ := newUserMapper(t)
	u := &User{FirstName: "Ada", Age: 3}

	out, err := m.ExportObject(u)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, ok := out["address"]; ok {
		t.Fatalf("nil address should be omitted by default: %v", out)
	}
	if _, ok := out["tags"]; ok {
		t.Fatalf("nil tags should be omitted by default: %v", out)
	}
	if out["last_name"] != "" {
		t.Fatalf("empty strings are not null: %v", out)
	}

	out, err = m.ExportObject(u, propmapper.IncludeNullValue)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	v, ok := out["address"]
	if !ok || v != nil {
		t.Fatalf("expected address key with nil marker, got %v", out)
	}
}

func TestExportObject_UnregisteredType(t *testing.T) {
	m := propmapper.New(propmapper.NewFactory())
	out, err := m.ExportObject(&User{})
	if out != nil || !errors.Is(err, propmapper.ErrMapperDidNotFound) {
		t.Fatalf("expected MapperDidNotFound and no dictionary, got %v %v", out, err)
	}
	if !strings.Contains(err.Error(), "User") {
		t.Fatalf("error should name the type: %v", err)
	}
}

func TestNilObjects(t *testing.T) {
	m := propmapper.New(propmapper.RecordFactory)
	if err := m.AddMappings("Node", propmapper.NewTable(propmapper.Property("name"))); err != nil {
		t.Fatal(err)
	}
	if got := propmapper.TypeIDOf((*propmapper.Record)(nil)); got != "" {
		t.Fatalf("typed nil record should have no type, got %q", got)
	}
	for _, obj := range []any{nil, (*propmapper.Record)(nil), (*User)(nil)} {
		out, err := m.ExportObject(obj)
		if out != nil || !errors.Is(err, propmapper.ErrMapperDidNotFound) {
			t.Fatalf("export %T: expected MapperDidNotFound, got %v %v", obj, out, err)
		}
		if err := m.Populate(obj, map[string]any{"name": "x"}); !errors.Is(err, propmapper.ErrMapperDidNotFound) {
			t.Fatalf("populate %T: expected MapperDidNotFound, got %v", obj, err)
		}
	}
}

func TestExportObject_NestedAndValidation(t *testing.T) {
	m, _, _ := newUserMapper(t)
	u := &User{FirstName: "A", Address: &Address{City: "X"}, Previous: []Address{{City: ""}}}

	out, err := m.ExportObject(u)
	if err != nil {
		t.Fatalf("export without validation should not report issues: %v", err)
	}
	addr, ok := out["address"].(map[string]any)
	if !ok || addr["city"] != "X" {
		t.Fatalf("nested export missing: %v", out)
	}
	prev, ok := out["previous"].([]any)
	if !ok || len(prev) != 1 {
		t.Fatalf("nested list export missing: %v", out)
	}

	out, err = m.ExportObject(u, propmapper.ValidateValues)
	iss, ok := propmapper.AsIssues(err)
	if !ok || out == nil {
		t.Fatalf("expected advisory issues with a dictionary, got %v %v", out, err)
	}
	if len(iss.ByField("FirstName")) != 1 || len(iss.ByField("Previous.0.City")) != 1 {
		t.Fatalf("unexpected issues: %v", iss)
	}
}

func TestRoundTrip_DirectFields(t *testing.T) {
	f := propmapper.NewFactory()
	userT := propmapper.RegisterType[User](f)
	m := propmapper.New(f)
	if err := m.AddMappings(userT, propmapper.GenerateMappingsWithKeys("FirstName", "LastName", "Age", "Active", "Tags")); err != nil {
		t.Fatal(err)
	}
	in := map[string]any{"FirstName": "Ada", "LastName": "L", "Age": float64(36), "Active": true, "Tags": []any{"x"}}

	first, err := propmapper.Create[User](m, in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := m.ExportObject(first)
	if err != nil {
		t.Fatal(err)
	}
	second, err := propmapper.Create[User](m, out)
	if err != nil {
		t.Fatal(err)
	}
	if first.FirstName != second.FirstName || first.LastName != second.LastName ||
		first.Age != second.Age || first.Active != second.Active ||
		len(first.Tags) != len(second.Tags) || first.Tags[0] != second.Tags[0] {
		t.Fatalf("round trip mismatch: %+v vs %+v", first, second)
	}
}

func TestAddMappings_MergePrecedence(t *testing.T) {
	m := propmapper.New(propmapper.RecordFactory)
	direct := propmapper.Property("name")
	upper := propmapper.Transformed("name", func(v any, _ string) (any, error) {
		s, _ := v.(string)
		return strings.ToUpper(s), nil
	})
	if err := m.AddMappings("T", propmapper.NewTable(direct, propmapper.Property("age"))); err != nil {
		t.Fatal(err)
	}
	if err := m.AddMappings("T", propmapper.NewTable(upper)); err != nil {
		t.Fatal(err)
	}
	tbl, ok := m.Mappings("T")
	if !ok {
		t.Fatal("table missing")
	}
	d, _ := tbl.Lookup("name")
	if d != upper {
		t.Fatalf("expected later descriptor to win")
	}
	if tbl.Len() != 2 || tbl.Descriptors()[0] != upper {
		t.Fatalf("merge should keep position and other fields")
	}

	if err := m.SetMappings("T", propmapper.NewTable(direct)); err != nil {
		t.Fatal(err)
	}
	tbl, _ = m.Mappings("T")
	if tbl.Len() != 1 {
		t.Fatalf("set should replace the table, got %d fields", tbl.Len())
	}
}

func TestAddMappings_InvalidFormat(t *testing.T) {
	m := propmapper.New(propmapper.RecordFactory)
	cases := map[string]*propmapper.Table{
		"nil descriptor":   propmapper.NewTable(nil),
		"nested w/o type":  propmapper.NewTable(propmapper.Nested("a", "")),
		"nil transform":    propmapper.NewTable(propmapper.Transformed("a", nil)),
		"bad regex":        propmapper.NewTable(propmapper.Property("a").Matches("(")),
		"bad expr":         propmapper.NewTable(propmapper.Property("a").Expr("value +")),
		"empty key":        propmapper.NewTable(propmapper.Property("a").Key("")),
		"computed nothing": propmapper.NewTable(propmapper.Computed("a", nil, nil)),
	}
	for name, tbl := range cases {
		if err := m.AddMappings("T", tbl); !errors.Is(err, propmapper.ErrInvalidMapperFormat) {
			t.Errorf("%s: expected InvalidMapperFormat, got %v", name, err)
		}
	}
	if _, ok := m.Mappings("T"); ok {
		t.Fatalf("rejected tables must not be registered")
	}
}

func TestAddMappingsFrom_AndRemove(t *testing.T) {
	a := propmapper.New(propmapper.RecordFactory)
	b := propmapper.New(propmapper.RecordFactory)
	_ = a.AddMappings("T", propmapper.GenerateMappingsWithKeys("x"))
	_ = b.AddMappings("T", propmapper.GenerateMappingsWithKeys("y"))
	_ = b.AddMappings("U", propmapper.GenerateMappingsWithKeys("z"))

	a.AddMappingsFrom(b)
	tbl, _ := a.Mappings("T")
	if tbl.Len() != 2 {
		t.Fatalf("expected merged table, got %d fields", tbl.Len())
	}
	if _, ok := a.Mappings("U"); !ok {
		t.Fatalf("expected U imported")
	}
	if !a.RemoveMappings("U") || a.RemoveMappings("U") {
		t.Fatalf("remove should report presence once")
	}
}

func TestFinalHooks(t *testing.T) {
	f := propmapper.NewFactory()
	userT := propmapper.RegisterType[User](f)
	m := propmapper.New(f)
	_ = m.AddMappings(userT, propmapper.NewTable(
		propmapper.Property("FirstName").Key("first"),
		propmapper.Computed("full",
			func(obj any) (any, error) {
				u := obj.(*User)
				return u.FirstName + " " + u.LastName, nil
			},
			func(dict map[string]any, obj any) error {
				parts := strings.SplitN(dict["full"].(string), " ", 2)
				obj.(*User).LastName = parts[1]
				return nil
			},
		).Consumes("full"),
	))

	var seen map[string]any
	m.SetFinalMappingDecoder(userT, func(dict map[string]any, obj any) {
		seen = dict
		obj.(*User).Extra = dict
	}, propmapper.ExcludeAlreadyMappedKeys)
	m.SetFinalMappingEncoder(userT, func(out map[string]any, obj any) {
		out["first"] = "overwritten"
		out["kind"] = "user"
	})

	u, err := propmapper.Create[User](m, map[string]any{"first": "Ada", "full": "Ada Lovelace", "other": 1})
	if err != nil {
		t.Fatal(err)
	}
	if u.LastName != "Lovelace" {
		t.Fatalf("consumer not applied: %+v", u)
	}
	if len(seen) != 1 || seen["other"] != 1 {
		t.Fatalf("final decoder should only see unmapped keys, got %v", seen)
	}

	out, err := m.ExportObject(u)
	if err != nil {
		t.Fatal(err)
	}
	if out["full"] != "Ada Lovelace" || out["first"] != "overwritten" || out["kind"] != "user" {
		t.Fatalf("unexpected export %v", out)
	}

	m.SetFinalMappingDecoder(userT, func(dict map[string]any, obj any) { seen = dict }, propmapper.IncludeAllKeys)
	_, _ = propmapper.Create[User](m, map[string]any{"first": "Ada", "full": "Ada L"})
	if len(seen) != 2 {
		t.Fatalf("IncludeAllKeys should pass every key, got %v", seen)
	}
}

func TestRegistrationDuringMapping(t *testing.T) {
	m, userT, _ := newUserMapper(t)
	dict := map[string]any{"first_name": "Ada", "age": 36, "address": map[string]any{"city": "London"}}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				u, err := propmapper.Create[User](m, dict)
				if err != nil {
					t.Errorf("create: %v", err)
					return
				}
				if _, err := m.ExportObject(u); err != nil {
					t.Errorf("export: %v", err)
					return
				}
			}
		}()
	}
	for j := 0; j < 200; j++ {
		_ = m.AddMappings(userT, propmapper.NewTable(propmapper.Property("LastName").Key("last_name")))
		m.SetFinalMappingDecoder(userT, func(map[string]any, any) {}, propmapper.ExcludeAlreadyMappedKeys)
		m.SetFinalMappingEncoder(userT, func(map[string]any, any) {})
	}
	wg.Wait()

	before, _ := m.Mappings(userT)
	_ = m.AddMappings(userT, propmapper.NewTable(propmapper.Property("Active").Key("on")))
	if d, _ := before.Lookup("Active"); d.DictionaryKey() != "active" {
		t.Fatalf("a published table must not change, got key %q", d.DictionaryKey())
	}
}

func TestDirections(t *testing.T) {
	m := propmapper.New(propmapper.RecordFactory)
	_ = m.AddMappings("T", propmapper.NewTable(
		propmapper.PropertyDecode("in"),
		propmapper.PropertyEncode("out"),
	))
	obj, err := m.CreateObject("T", map[string]any{"in": 1, "out": 2})
	if err != nil {
		t.Fatal(err)
	}
	r := obj.(*propmapper.Record)
	if _, ok := r.Property("out"); ok {
		t.Fatalf("encode-only field must not decode")
	}
	_ = r.SetProperty("out", 3)
	out, _ := m.ExportObject(r)
	if _, ok := out["in"]; ok || out["out"] != 3 {
		t.Fatalf("unexpected export %v", out)
	}
}

func TestAsymmetricTransformErrorIsAnIssue(t *testing.T) {
	m := propmapper.New(propmapper.RecordFactory)
	fail := func(v any, field string) (any, error) { return nil, errors.New("boom") }
	_ = m.AddMappings("T", propmapper.NewTable(propmapper.Asymmetric("a", fail, fail), propmapper.Property("b")))

	obj, err := m.CreateObject("T", map[string]any{"a": 1, "b": 2})
	iss, ok := propmapper.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Validator != "transform" || iss[0].Cause == nil {
		t.Fatalf("expected a transform issue, got %v", err)
	}
	r := obj.(*propmapper.Record)
	if _, ok := r.Property("a"); ok {
		t.Fatalf("failed transform must leave the field untouched")
	}

	out, err := m.ExportObject(r)
	if _, ok := propmapper.AsIssues(err); !ok || out["b"] != 2 {
		t.Fatalf("export should still produce the other keys, got %v %v", out, err)
	}
}

func TestCreate_TypedMismatch(t *testing.T) {
	m := propmapper.New(propmapper.RecordFactory)
	_ = m.AddMappings(propmapper.TypeOf[User](), propmapper.NewTable())
	if _, err := propmapper.Create[User](m, map[string]any{}); !errors.Is(err, propmapper.ErrInvalidMapperFormat) {
		t.Fatalf("expected InvalidMapperFormat for a factory returning the wrong type, got %v", err)
	}
}
