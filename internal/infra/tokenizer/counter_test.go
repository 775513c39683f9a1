package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounterWordFallback(t *testing.T) {
	c := &Counter{}
	require.Equal(t, 0, c.Count(""))
	require.Equal(t, 4, c.Count("mood was low today"))

	var nilCounter *Counter
	require.Equal(t, 2, nilCounter.Count("two words"))
}
