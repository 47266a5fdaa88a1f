package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aside loads key into dst from Redis, or calls fn to fill dst and stores
// the result for ttl. Redis failures fall through to fn; fn errors are
// returned unchanged and nothing is cached.
func Aside(ctx context.Context, key string, dst interface{}, ttl time.Duration, fn func() error) error {
	if client == nil {
		return fn()
	}

	hit, err := GetJSON(ctx, key, dst)
	if err == nil && hit {
		return nil
	}

	if err := fn(); err != nil {
		return err
	}
	_ = SetJSON(ctx, key, dst, ttl)
	return nil
}

// GetJSON decodes the value at key into dst. It reports false on a miss.
func GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		Invalidate(ctx, key)
		return false, err
	}
	return true, nil
}

// SetJSON stores v at key as JSON.
func SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, raw, ttl).Err()
}
