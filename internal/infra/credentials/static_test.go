package credentials

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticStripsQuotes(t *testing.T) {
	key, ok := NewStatic(` "abc123" `).APIKey()
	require.True(t, ok)
	require.Equal(t, "abc123", key)

	key, ok = NewStatic("'xyz'").APIKey()
	require.True(t, ok)
	require.Equal(t, "xyz", key)
}

func TestStaticEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", `""`, "''"} {
		_, ok := NewStatic(raw).APIKey()
		require.False(t, ok, raw)
	}
}
