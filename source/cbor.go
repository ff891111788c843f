package source

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// CBOR reads and writes RFC 8949 CBOR. Maps decode as map[string]any; a map
// with non-string keys is rejected.
type CBOR struct{}

var cborDec = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

var cborEnc = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

func (CBOR) Name() string { return "cbor" }

func (CBOR) Decode(data []byte) (map[string]any, error) {
	var v any
	if err := cborDec.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return rootObject(v)
}

func (CBOR) Encode(dict map[string]any) ([]byte, error) { return cborEnc.Marshal(dict) }
