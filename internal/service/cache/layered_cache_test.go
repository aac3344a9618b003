package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	*TTLCache
	gets int
	err  error
}

func (c *countingCache) GetBytes(key string) ([]byte, bool, error) {
	c.gets++
	if c.err != nil {
		return nil, false, c.err
	}
	return c.TTLCache.GetBytes(key)
}

func (c *countingCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	if c.err != nil {
		return c.err
	}
	return c.TTLCache.SetBytes(key, value, ttl)
}

func TestLayeredCacheReadsThrough(t *testing.T) {
	l2 := &countingCache{TTLCache: NewTTLCache()}
	require.NoError(t, l2.TTLCache.SetBytes("rs:NVDA", []byte("99"), time.Minute))

	c := NewLayeredCache(l2, time.Minute)
	for i := 0; i < 3; i++ {
		b, ok, err := c.GetBytes("rs:NVDA")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "99", string(b))
	}
	assert.Equal(t, 1, l2.gets)
}

func TestLayeredCacheWritesThrough(t *testing.T) {
	l2 := &countingCache{TTLCache: NewTTLCache()}
	c := NewLayeredCache(l2, time.Minute)

	require.NoError(t, c.SetBytes("scanner:batch", []byte("{}"), time.Minute))
	b, ok, err := l2.TTLCache.GetBytes("scanner:batch")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", string(b))
}

func TestLayeredCacheL2Failure(t *testing.T) {
	boom := errors.New("redis down")
	l2 := &countingCache{TTLCache: NewTTLCache(), err: boom}
	c := NewLayeredCache(l2, time.Minute)

	assert.ErrorIs(t, c.SetBytes("k", []byte("v"), time.Minute), boom)
	_, ok, err := c.GetBytes("k")
	assert.ErrorIs(t, err, boom)
	assert.False(t, ok)
}
