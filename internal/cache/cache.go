// Package cache holds the latest-run snapshot for fast reads. Redis is used
// when an address is configured; otherwise an in-process map.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a byte-value store with optional expiry
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Name() string
	Close() error
}

type memory struct {
	mu  sync.Mutex
	m   map[string]entry
	now func() time.Time
}

type entry struct {
	b   []byte
	exp time.Time
}

// NewMemory returns an in-process cache
func NewMemory() Cache {
	return &memory{m: make(map[string]entry), now: time.Now}
}

func (c *memory) Name() string { return "memory" }

func (c *memory) Close() error { return nil }

func (c *memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && c.now().After(e.exp) {
		delete(c.m, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.b...), true, nil
}

func (c *memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{b: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = c.now().Add(ttl)
	}
	c.m[key] = e
	return nil
}

// NewAuto picks Redis when addr is set, memory otherwise
func NewAuto(addr string) Cache {
	if addr != "" {
		return NewRedis(RedisOptions{Addr: addr})
	}
	return NewMemory()
}
