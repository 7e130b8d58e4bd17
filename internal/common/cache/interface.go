package cache

import (
	"context"
	"time"
)

// Cache is everything the service asks of its shared store.
type Cache interface {
	BasicOps
	HashOps
	Ping(ctx context.Context) error
	Close() error
}

// BasicOps covers string keys and counters.
type BasicOps interface {
	// Get returns "" and a nil error for a missing key.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value; ttl 0 means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// TTL is negative when the key has no expiry or does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// HashOps covers hashes written and read as a whole.
type HashOps interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// HMSet writes all fields in one command.
	HMSet(ctx context.Context, key string, fields map[string]interface{}) error
}
