package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICache defines the cache interface (abstract)
type ICache interface {
	// Get fetches a cached value
	Get(ctx context.Context, key string) *redis.StringCmd
	// Set stores a value with an expiration
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	// Del removes keys
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	// Exists checks key presence
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	// Expire sets a key expiration
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	// GetClient returns the underlying redis.Client
	GetClient() *redis.Client
}
