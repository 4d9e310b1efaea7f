package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GetJSON decodes a cached JSON value into dst. It returns ErrCacheMiss when absent.
func GetJSON(ctx context.Context, s Store, key string, dst any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		// treat corrupt entries as a miss and drop them
		_ = s.Del(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v as JSON and stores it
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw), ttl)
}

// GetOrLoad returns the cached value for key, or calls load and caches its result.
// Load errors are returned as-is and never cached. Store failures fall through to load.
func GetOrLoad[T any](ctx context.Context, s Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	err := GetJSON(ctx, s, key, &cached)
	if err == nil {
		return cached, nil
	}

	v, lerr := load(ctx)
	if lerr != nil {
		var zero T
		return zero, lerr
	}
	if !errors.Is(err, ErrCacheMiss) {
		// store is unhealthy; still serve the fresh value
		return v, nil
	}
	_ = SetJSON(ctx, s, key, v, ttl)
	return v, nil
}
