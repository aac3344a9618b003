package cache

import (
	"io"
	"time"
)

// LayeredCache is a two-level BytesCache: an in-process L1 in front of a
// shared L2. Writes go through to L2 first. L1 entries live at most l1TTL so a
// replica never serves a batch much older than the shared copy.
type LayeredCache struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

func NewLayeredCache(l2 BytesCache, l1TTL time.Duration) *LayeredCache {
	if l1TTL <= 0 {
		l1TTL = 5 * time.Second
	}
	return &LayeredCache{l1: NewTTLCache(), l2: l2, l1TTL: l1TTL}
}

func (c *LayeredCache) GetBytes(key string) ([]byte, bool, error) {
	if b, ok, _ := c.l1.GetBytes(key); ok {
		return b, true, nil
	}
	b, ok, err := c.l2.GetBytes(key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = c.l1.SetBytes(key, b, c.l1TTL)
	return b, true, nil
}

func (c *LayeredCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	if err := c.l2.SetBytes(key, value, ttl); err != nil {
		return err
	}
	l1 := c.l1TTL
	if ttl > 0 && ttl < l1 {
		l1 = ttl
	}
	return c.l1.SetBytes(key, value, l1)
}

// Close closes L2 when it holds a connection.
func (c *LayeredCache) Close() error {
	if cl, ok := c.l2.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
