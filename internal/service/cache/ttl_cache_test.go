package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 10, 14, 15, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes("scanner", []byte("rows"), time.Minute))
	b, ok, err := c.GetBytes("scanner")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "rows", string(b))

	now = now.Add(61 * time.Second)
	_, ok, err = c.GetBytes("scanner")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCacheNoExpiry(t *testing.T) {
	c := NewTTLCache()
	require.NoError(t, c.SetBytes("k", []byte("v"), 0))
	_, ok, _ := c.GetBytes("k")
	assert.True(t, ok)
}

func TestTTLCacheSweep(t *testing.T) {
	now := time.Now()
	c := NewTTLCache()
	c.now = func() time.Time { return now }
	require.NoError(t, c.SetBytes("old", []byte("v"), time.Second))
	now = now.Add(time.Minute)
	for i := 0; i < sweepEvery; i++ {
		require.NoError(t, c.SetBytes("live", []byte("v"), time.Hour))
	}
	assert.Equal(t, 1, c.Len())
}

func TestNewBackend(t *testing.T) {
	cases := []struct {
		name    string
		backend string
		cfg     RedisConfig
		want    BytesCache
		wantErr bool
	}{
		{name: "memory", backend: "memory", want: &TTLCache{}},
		{name: "redis", backend: "redis", cfg: RedisConfig{Addr: "localhost:6379"}, want: &RedisCache{}},
		{name: "redis without addr", backend: "redis", wantErr: true},
		{name: "layered", backend: "layered", cfg: RedisConfig{Addr: "localhost:6379"}, want: &LayeredCache{}},
		{name: "layered without addr", backend: "layered", wantErr: true},
		{name: "unknown", backend: "memcached", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.backend, tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tc.want, c)
		})
	}
}
