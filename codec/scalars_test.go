package codec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/propmapper/codec"
)

func TestDuration(t *testing.T) {
	enc, dec := codec.Duration()
	v, err := dec("1m30s", "timeout")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, v)

	s, err := enc(90*time.Second, "timeout")
	require.NoError(t, err)
	assert.Equal(t, "1m30s", s)

	_, err = dec("soon", "timeout")
	assert.Error(t, err)
}

func TestStringNumber(t *testing.T) {
	enc, dec := codec.StringNumber()
	v, err := dec("12.5", "price")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	s, err := enc(12.5, "price")
	require.NoError(t, err)
	assert.Equal(t, "12.5", s)

	_, err = dec("twelve", "price")
	assert.Error(t, err)
}

type status int

func TestEnum(t *testing.T) {
	enc, dec := codec.Enum(map[string]any{"active": status(1), "banned": status(2)})

	v, err := dec("banned", "status")
	require.NoError(t, err)
	assert.Equal(t, status(2), v)

	s, err := enc(status(1), "status")
	require.NoError(t, err)
	assert.Equal(t, "active", s)

	_, err = dec("unknown", "status")
	assert.Error(t, err)
	_, err = enc(status(9), "status")
	assert.Error(t, err)
}

func TestChainAndIdentity(t *testing.T) {
	_, dec := codec.StringNumber()
	double := func(v any, _ string) (any, error) { return v.(float64) * 2, nil }
	fn := codec.Chain(codec.Identity, dec, double)

	v, err := fn("2", "n")
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	_, err = fn("x", "n")
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"rfc3339", "duration", "stringNumber", "identity"} {
		enc, dec, ok := codec.ByName(name)
		assert.True(t, ok, name)
		assert.NotNil(t, enc, name)
		assert.NotNil(t, dec, name)
	}
	_, _, ok := codec.ByName("nope")
	assert.False(t, ok)
}
