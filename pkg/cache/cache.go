// Package cache is a thin Redis layer. Every helper degrades to a no-op
// when Redis is unavailable, so cached paths fall through to their source
// instead of failing.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/pkg/metrics"
)

// RDB is nil until Connect succeeds. The queue's Redis driver shares it.
var RDB *redis.Client

var ctx = context.Background()

// Connect dials Redis and pings it once. On failure RDB stays nil and
// every helper no-ops.
func Connect() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	RDB = client
	return nil
}

// Get unmarshals the value under key into dest and reports a hit.
func Get(key string, dest interface{}) bool {
	if RDB == nil {
		return false
	}

	raw, err := RDB.Get(ctx, key).Bytes()
	if err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

// Set stores value under key for ttl, JSON-encoded.
func Set(key string, value interface{}, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return RDB.Set(ctx, key, raw, ttl).Err()
}

// Forget drops keys. Missing keys are not an error.
func Forget(keys ...string) error {
	if RDB == nil || len(keys) == 0 {
		return nil
	}
	return RDB.Del(ctx, keys...).Err()
}

// Incr bumps a counter key, stamping ttl when the key is first created.
// Returns the post-increment count, or 0 when Redis is unavailable;
// callers treat 0 as "throttling disabled".
func Incr(key string, ttl time.Duration) (int64, error) {
	if RDB == nil {
		return 0, nil
	}

	count, err := RDB.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache: incr %s: %w", key, err)
	}
	if count == 1 {
		_ = RDB.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}
