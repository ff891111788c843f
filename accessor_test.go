package propmapper_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/propmapper"
)

type Account struct {
	ID      uint16
	Balance float64
	Limit   *int
	Labels  map[string]string
	Owner   Address
	note    string
}

func TestStructAccessor_Conversions(t *testing.T) {
	acc := propmapper.StructAccessor()
	a := &Account{}

	require.NoError(t, acc.Set(a, "ID", json.Number("42")))
	require.NoError(t, acc.Set(a, "Balance", json.Number("10.25")))
	require.NoError(t, acc.Set(a, "Limit", float64(7)))
	require.NoError(t, acc.Set(a, "Labels", map[string]any{"env": "prod"}))
	require.NoError(t, acc.Set(a, "Owner", &Address{City: "Oslo"}))

	assert.Equal(t, uint16(42), a.ID)
	assert.Equal(t, 10.25, a.Balance)
	require.NotNil(t, a.Limit)
	assert.Equal(t, 7, *a.Limit)
	assert.Equal(t, map[string]string{"env": "prod"}, a.Labels)
	assert.Equal(t, "Oslo", a.Owner.City)

	v, err := acc.Get(a, "Balance")
	require.NoError(t, err)
	assert.Equal(t, 10.25, v)
}

func TestStructAccessor_Errors(t *testing.T) {
	acc := propmapper.StructAccessor()
	a := &Account{}

	assert.Error(t, acc.Set(a, "ID", -1))
	assert.Error(t, acc.Set(a, "ID", 70000))
	assert.Error(t, acc.Set(a, "ID", 1.5))
	assert.Error(t, acc.Set(a, "Balance", "cheap"))

	err := acc.Set(a, "note", "hidden")
	assert.True(t, errors.Is(err, propmapper.ErrUnknownProperty), "unexported fields are unknown: %v", err)
	_, err = acc.Get(a, "Missing")
	assert.True(t, errors.Is(err, propmapper.ErrUnknownProperty))

	assert.Error(t, acc.Set(Account{}, "ID", 1), "non-pointer objects cannot be written")
}

func TestFieldTable_ExplicitAccessor(t *testing.T) {
	fields := propmapper.Fields[Address]().
		Field("city",
			func(a *Address) any { return a.City },
			func(a *Address, v any) error { return propmapper.SetAs(&a.City, v) }).
		Field("street", func(a *Address) any { return a.Street }, nil)

	f := propmapper.NewFactory()
	addrT := propmapper.RegisterType[Address](f)
	m := propmapper.New(f)
	require.NoError(t, m.AddMappings(addrT, propmapper.NewTable(
		propmapper.Property("city"),
		propmapper.PropertyEncode("street"),
	).WithAccessor(fields)))

	a, err := propmapper.Create[Address](m, map[string]any{"city": "Rome", "street": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "Rome", a.City)
	assert.Empty(t, a.Street)

	a.Street = "Via Appia"
	out, err := propmapper.Export(m, a)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"city": "Rome", "street": "Via Appia"}, out)

	_, err = fields.Get(&User{}, "city")
	assert.Error(t, err)
	assert.True(t, errors.Is(fields.Set(a, "street", "x"), propmapper.ErrUnknownProperty))
}

func TestTypeIDs(t *testing.T) {
	assert.Equal(t, propmapper.TypeOf[User](), propmapper.TypeOf[*User]())
	assert.Equal(t, propmapper.TypeOf[User](), propmapper.TypeIDOf(&User{}))
	assert.Equal(t, propmapper.TypeID("Custom"), propmapper.TypeIDOf(propmapper.NewRecord("Custom")))
	assert.Equal(t, propmapper.TypeID(""), propmapper.TypeIDOf(nil))
}

func TestGenerateMappingsFromType(t *testing.T) {
	tbl := propmapper.GenerateMappingsFromType(reflect.TypeOf(&Account{}))
	var names []string
	for _, d := range tbl.Descriptors() {
		names = append(names, d.Field())
		assert.Equal(t, d.Field(), d.DictionaryKey())
		assert.Equal(t, propmapper.KindDirect, d.Kind())
		assert.Equal(t, propmapper.Both, d.Direction())
	}
	assert.Equal(t, []string{"ID", "Balance", "Limit", "Labels", "Owner"}, names)

	assert.Equal(t, 0, propmapper.GenerateMappingsFromType(reflect.TypeOf(3)).Len())
	assert.Equal(t, 5, propmapper.GenerateMappingsFor[Account]().Len())
}
