package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New(true)

	etag := c.Set("stats:u1", []byte(`{"overall":90}`), time.Minute)
	data, got, ok := c.Get("stats:u1")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"overall":90}`), data)
	assert.Equal(t, etag, got)
}

func TestCacheExpiry(t *testing.T) {
	c := New(true)

	c.Set("stats:u1", []byte("x"), -time.Second)
	_, _, ok := c.Get("stats:u1")
	assert.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	c := New(true)

	c.Set("stats:u1", []byte("x"), time.Minute)
	c.Invalidate("stats:u1")
	_, _, ok := c.Get("stats:u1")
	assert.False(t, ok)
}

func TestCacheDisabled(t *testing.T) {
	c := New(false)

	etag := c.Set("k", []byte("x"), time.Minute)
	assert.NotEmpty(t, etag) // still usable for conditional responses
	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("payload"))

	assert.True(t, CheckETagMatch(etag, etag))
	assert.True(t, CheckETagMatch("*", etag))
	assert.False(t, CheckETagMatch("", etag))
	assert.False(t, CheckETagMatch(`W/"other"`, etag))
}
