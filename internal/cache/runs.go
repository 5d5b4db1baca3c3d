package cache

import (
	"context"
	"time"
)

const latestRunKey = "run:latest"

// RunCache stores encoded run results by id plus a pointer to the latest one
type RunCache struct {
	c   Cache
	ttl time.Duration
}

// NewRunCache wraps c; ttl 0 keeps entries until overwritten
func NewRunCache(c Cache, ttl time.Duration) *RunCache {
	return &RunCache{c: c, ttl: ttl}
}

// Backend names the underlying cache
func (rc *RunCache) Backend() string { return rc.c.Name() }

// Close closes the underlying cache
func (rc *RunCache) Close() error { return rc.c.Close() }

// Put stores a run and marks it latest
func (rc *RunCache) Put(ctx context.Context, runID string, payload []byte) error {
	if err := rc.c.Set(ctx, runKey(runID), payload, rc.ttl); err != nil {
		return err
	}
	return rc.c.Set(ctx, latestRunKey, payload, rc.ttl)
}

// Latest returns the most recently stored run
func (rc *RunCache) Latest(ctx context.Context) ([]byte, bool, error) {
	return rc.c.Get(ctx, latestRunKey)
}

// Get returns one run by id
func (rc *RunCache) Get(ctx context.Context, runID string) ([]byte, bool, error) {
	return rc.c.Get(ctx, runKey(runID))
}

func runKey(id string) string { return "run:" + id }
