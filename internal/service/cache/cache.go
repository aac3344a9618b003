package cache

import (
	"fmt"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}

// New returns the backend named by kind: "memory" (default), "redis", or
// "layered" (memory in front of redis).
func New(kind string, rc RedisConfig) (BytesCache, error) {
	switch kind {
	case "", "memory":
		return NewTTLCache(), nil
	case "redis":
		if rc.Addr == "" {
			return nil, fmt.Errorf("redis cache: addr is required")
		}
		return NewRedisCache(rc), nil
	case "layered":
		if rc.Addr == "" {
			return nil, fmt.Errorf("layered cache: redis addr is required")
		}
		return NewLayeredCache(NewRedisCache(rc), rc.LocalTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", kind)
	}
}
