package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddOverwrites(t *testing.T) {
	r := NewRegistry(testLogger())

	r.Add("u1", Subscription{Endpoint: "https://push.example/a"})
	r.Add("u1", Subscription{Endpoint: "https://push.example/b"})

	sub, ok := r.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "https://push.example/b", sub.Endpoint)
	assert.Equal(t, 1, r.Count())
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	r := NewRegistry(testLogger())

	r.Add("u1", Subscription{Endpoint: "https://push.example/a"})
	r.Remove("u1")
	r.Remove("u1") // absent key is a no-op

	assert.False(t, r.Has("u1"))
	_, ok := r.Get("u1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

func TestRegistryUserIDs(t *testing.T) {
	r := NewRegistry(testLogger())

	r.Add("u1", Subscription{})
	r.Add("u2", Subscription{})

	ids := r.UserIDs()
	assert.ElementsMatch(t, []string{"u1", "u2"}, ids)
}
