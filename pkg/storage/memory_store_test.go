package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("a", "3"))

	v, ok, err := s.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Remove("a"))
	require.NoError(t, s.Remove("a"))
	assert.Equal(t, map[string]string{"b": "2"}, s.Snapshot())

	assert.ErrorIs(t, s.Set("", "x"), ErrInvalidKey)
}

func TestMemoryStoreQuota(t *testing.T) {
	s := NewMemoryStore()
	s.MaxValueSize = 4

	require.NoError(t, s.Set("k", "1234"))
	assert.ErrorIs(t, s.Set("k", "12345"), ErrValueTooLarge)

	v, _, _ := s.Get("k")
	assert.Equal(t, "1234", v)
}

func TestMemoryStoreKeyLimit(t *testing.T) {
	s := NewMemoryStore()
	s.MaxKeys = 2

	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))
	assert.ErrorIs(t, s.Set("c", "3"), ErrStoreFull)

	// Overwrites do not count against the limit.
	require.NoError(t, s.Set("a", "10"))

	require.NoError(t, s.Remove("b"))
	require.NoError(t, s.Set("c", "3"))
	assert.Equal(t, map[string]string{"a": "10", "c": "3"}, s.Snapshot())
}

func TestPrefixedStore(t *testing.T) {
	shared := NewMemoryStore()
	alice := NewPrefixedStore(shared, "visitor:alice:")
	bob := NewPrefixedStore(shared, "visitor:bob:")

	require.NoError(t, alice.Set("lang", "it"))
	require.NoError(t, bob.Set("lang", "fr"))
	require.NoError(t, bob.Set("consent", "x"))

	v, ok, err := alice.Get("lang")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "it", v)

	keys, err := bob.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lang", "consent"}, keys)

	require.NoError(t, bob.Remove("lang"))
	_, ok, _ = bob.Get("lang")
	assert.False(t, ok)
	_, ok, _ = alice.Get("lang")
	assert.True(t, ok)

	for k := range shared.Snapshot() {
		assert.True(t, strings.HasPrefix(k, "visitor:"))
	}
}
