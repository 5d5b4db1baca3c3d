package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"
)

// RedisOptions configures the Redis cache
type RedisOptions struct {
	Addr      string
	DB        int
	Prefix    string
	OpTimeout time.Duration
}

type redisCache struct {
	client    *redis.Client
	breaker   *gobreaker.CircuitBreaker
	prefix    string
	opTimeout time.Duration
}

// NewRedis connects lazily; the first command dials
func NewRedis(opts RedisOptions) Cache {
	return newRedisWithClient(redis.NewClient(&redis.Options{Addr: opts.Addr, DB: opts.DB}), opts)
}

func newRedisWithClient(client *redis.Client, opts RedisOptions) *redisCache {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 500 * time.Millisecond
	}
	if opts.Prefix == "" {
		opts.Prefix = "techrun:"
	}
	return &redisCache{
		client:    client,
		breaker:   newBreaker("redis-cache"),
		prefix:    opts.Prefix,
		opTimeout: opts.OpTimeout,
	}
}

// newBreaker trips after 3 consecutive failures or a 5% failure rate over
// at least 20 requests, and probes again after 30s
func newBreaker(name string) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 3 {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
		},
	}
	return gobreaker.NewCircuitBreaker(st)
}

func (r *redisCache) Name() string { return "redis" }

// Close releases the client's connection pool
func (r *redisCache) Close() error { return r.client.Close() }

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	v, err := r.breaker.Execute(func() (interface{}, error) {
		b, err := r.client.Get(ctx, r.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if v == nil {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (r *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.client.Set(ctx, r.prefix+key, val, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
