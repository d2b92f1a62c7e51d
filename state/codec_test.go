package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTrip struct {
	Redirect string `json:"redirect,omitempty"`
	TS       string `json:"ts,omitempty"`
}

func TestNewCodec(t *testing.T) {
	t.Parallel()
	t.Run("empty-key", func(t *testing.T) {
		assert := assert.New(t)
		_, err := NewCodec("")
		assert.True(errors.Is(err, ErrInvalidParameter))
	})
	t.Run("same-key-interchangeable", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		a, err := NewCodec("state-key-1")
		require.NoError(err)
		b, err := NewCodec("state-key-1")
		require.NoError(err)

		blob, err := a.Encode(roundTrip{Redirect: "/dashboard"})
		require.NoError(err)
		var got roundTrip
		require.NoError(b.Decode(blob, &got))
		assert.Equal("/dashboard", got.Redirect)
	})
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	c, err := NewCodec("state-key-1")
	require.NoError(err)

	want := roundTrip{Redirect: "/settings?tab=profile", TS: "MTcyNQ"}
	blob, err := c.Encode(want)
	require.NoError(err)
	assert.NotContains(blob, "settings") // sealed, not merely encoded

	var got roundTrip
	require.NoError(c.Decode(blob, &got))
	assert.Equal(want, got)
}

func TestCodec_Encode(t *testing.T) {
	t.Parallel()
	t.Run("nil-payload", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewCodec("state-key-1")
		require.NoError(err)
		_, err = c.Encode(nil)
		assert.True(errors.Is(err, ErrNilParameter))
	})
	t.Run("fresh-nonce-per-encode", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewCodec("state-key-1")
		require.NoError(err)
		a, err := c.Encode(roundTrip{TS: "MTcyNQ"})
		require.NoError(err)
		b, err := c.Encode(roundTrip{TS: "MTcyNQ"})
		require.NoError(err)
		assert.NotEqual(a, b)
	})
}

func TestCodec_Decode(t *testing.T) {
	t.Parallel()
	newBlob := func(t *testing.T, key string) string {
		t.Helper()
		c, err := NewCodec(key)
		require.NoError(t, err)
		blob, err := c.Encode(roundTrip{Redirect: "/home"})
		require.NoError(t, err)
		return blob
	}

	tests := []struct {
		name string
		blob func(t *testing.T) string
	}{
		{"wrong-key", func(t *testing.T) string {
			return newBlob(t, "some-other-key")
		}},
		{"tampered", func(t *testing.T) string {
			blob := newBlob(t, "state-key-1")
			b := []byte(blob)
			b[len(b)-1] ^= 'x'
			return string(b)
		}},
		{"truncated", func(t *testing.T) string {
			return newBlob(t, "state-key-1")[:8]
		}},
		{"not-base64", func(t *testing.T) string {
			return "%%%not-base64%%%"
		}},
		{"empty", func(t *testing.T) string {
			return ""
		}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			c, err := NewCodec("state-key-1")
			require.NoError(err)
			var got roundTrip
			err = c.Decode(tt.blob(t), &got)
			require.Error(err)
			assert.True(errors.Is(err, ErrStateIntegrity))
		})
	}

	t.Run("nil-target", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewCodec("state-key-1")
		require.NoError(err)
		err = c.Decode(newBlob(t, "state-key-1"), nil)
		assert.True(errors.Is(err, ErrNilParameter))
	})
}
