package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key does not exist or has expired
var ErrCacheMiss = errors.New("cache: key not found")

// Store is the key/value contract shared by sessions, one-time codes,
// the token blacklist and the response cache. A zero ttl means no expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	// MGet returns values in key order; missing keys yield ok=false at their index.
	MGet(ctx context.Context, keys ...string) ([]string, []bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetMulti writes all pairs atomically with the same ttl.
	SetMulti(ctx context.Context, values map[string]string, ttl time.Duration) error
	// SetNX sets key only if it does not exist and reports whether it was set.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Incr increments an integer counter, creating it with ttl when absent.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}
