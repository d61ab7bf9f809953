package seal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	b, err := New(strings.Repeat("ab", 32))
	require.NoError(t, err)

	sealed, err := b.Seal([]byte(`{"password":"p"}`))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "password")

	out, err := b.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"password":"p"}`, string(out))
}

func TestOpen_Tampered(t *testing.T) {
	b, err := NewRandom()
	require.NoError(t, err)
	sealed, err := b.Seal([]byte("hello"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestOpen_WrongKey(t *testing.T) {
	a, _ := NewRandom()
	b, _ := NewRandom()
	sealed, err := a.Seal([]byte("hello"))
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestOpen_TooShort(t *testing.T) {
	b, _ := NewRandom()
	_, err := b.Open([]byte("short"))
	assert.ErrorIs(t, err, ErrOpen)
}

func TestNew_BadKey(t *testing.T) {
	_, err := New("zz")
	assert.Error(t, err)
	_, err = New("abcd")
	assert.ErrorContains(t, err, "32 bytes")
}
