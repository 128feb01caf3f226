package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	registry := NewRegistry()
	ch := make(chan []byte, 1)

	registry.Register("user-1", ch)

	found, ok := registry.Lookup("user-1")
	require.True(t, ok)
	assert.Equal(t, (chan []byte)(ch), found)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_LookupMissing(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Lookup("nobody")
	assert.False(t, ok)
}

func TestRegistry_RegisterReplacesExisting(t *testing.T) {
	registry := NewRegistry()
	first := make(chan []byte, 1)
	second := make(chan []byte, 1)

	registry.Register("user-1", first)
	registry.Register("user-1", second)

	found, ok := registry.Lookup("user-1")
	require.True(t, ok)
	assert.Equal(t, (chan []byte)(second), found)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_UnregisterRemovesOwnEntry(t *testing.T) {
	registry := NewRegistry()
	ch := make(chan []byte, 1)

	registry.Register("user-1", ch)
	registry.Unregister("user-1", ch)

	_, ok := registry.Lookup("user-1")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_UnregisterSparesReplacement(t *testing.T) {
	registry := NewRegistry()
	old := make(chan []byte, 1)
	replacement := make(chan []byte, 1)

	registry.Register("user-1", old)
	registry.Register("user-1", replacement)

	// The displaced session cleans up late; the newer entry must survive.
	registry.Unregister("user-1", old)

	found, ok := registry.Lookup("user-1")
	require.True(t, ok)
	assert.Equal(t, (chan []byte)(replacement), found)
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	registry := NewRegistry()
	ch := make(chan []byte, 1)

	registry.Register("user-1", ch)
	registry.Unregister("user-1", ch)
	registry.Unregister("user-1", ch)

	assert.Equal(t, 0, registry.Len())
}
