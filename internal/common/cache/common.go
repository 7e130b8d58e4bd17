package cache

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"
)

// NullCacheValue marks a key whose source had nothing, so repeated misses do
// not reach the source.
const NullCacheValue = "$NULL$"

// Codec maps values to their cached string form. Empty reports values that
// should be stored as NullCacheValue.
type Codec[T any] struct {
	Encode func(T) string
	Decode func(string) (T, error)
	Empty  func(T) bool
}

// StringCodec stores strings as-is and treats blank strings as empty.
var StringCodec = Codec[string]{
	Encode: func(v string) string { return v },
	Decode: func(v string) (string, error) { return v, nil },
	Empty:  func(v string) bool { return strings.TrimSpace(v) == "" },
}

// GetOrLoad reads key, falling back to load on a miss or an undecodable
// entry. Loaded values are written back with a jittered ttl. Empty values are
// written as NullCacheValue for emptyTTL, or not at all when emptyTTL <= 0.
// Load errors are returned and nothing is cached.
func GetOrLoad[T any](ctx context.Context, c BasicOps, key string, ttl, emptyTTL time.Duration, codec Codec[T], load func(context.Context) (T, error)) (T, error) {
	var zero T
	if raw, err := c.Get(ctx, key); err == nil && raw != "" {
		if raw == NullCacheValue {
			return zero, nil
		}
		if v, err := codec.Decode(raw); err == nil {
			return v, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return zero, err
	}
	if codec.Empty != nil && codec.Empty(v) {
		if emptyTTL > 0 {
			_ = c.Set(ctx, key, NullCacheValue, emptyTTL)
		}
		return zero, nil
	}
	_ = c.Set(ctx, key, codec.Encode(v), JitterTTL(ttl))
	return v, nil
}

// JitterTTL shortens ttl by up to a tenth so keys written together expire apart.
func JitterTTL(ttl time.Duration) time.Duration {
	spread := int64(ttl / 10)
	if spread <= 0 {
		return ttl
	}
	return ttl - time.Duration(rand.Int64N(spread+1))
}
