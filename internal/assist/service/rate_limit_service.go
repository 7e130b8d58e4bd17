package service

import (
	"context"
	"time"

	"lcbridge/internal/common/cache"
	pkgerrors "lcbridge/pkg/errors"
)

const defaultRateLimitRedisTimeout = time.Second

// RateLimitService counts hits per key in fixed windows stored in Redis.
type RateLimitService struct {
	cache        cache.BasicOps
	window       time.Duration
	redisTimeout time.Duration
}

func NewRateLimitService(cacheClient cache.BasicOps, window time.Duration, redisTimeout time.Duration) *RateLimitService {
	if redisTimeout <= 0 {
		redisTimeout = defaultRateLimitRedisTimeout
	}
	return &RateLimitService{cache: cacheClient, window: window, redisTimeout: redisTimeout}
}

// Allow counts one hit against key. The first hit of a window starts its
// expiry; hits beyond max fail with TooManyRequests until the key expires.
func (s *RateLimitService) Allow(ctx context.Context, key string, max int, window time.Duration) error {
	if s.cache == nil {
		return pkgerrors.New(pkgerrors.ServiceUnavailable).WithMessage("rate limit cache is unavailable")
	}
	if max <= 0 {
		return nil
	}
	if window <= 0 {
		window = s.window
	}

	ctx, cancel := context.WithTimeout(ctx, s.redisTimeout)
	defer cancel()

	count, err := s.cache.Incr(ctx, key)
	if err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.CacheError, "rate limit check failed")
	}
	retryAfter := window
	if count == 1 {
		if err := s.cache.Expire(ctx, key, window); err != nil {
			return pkgerrors.Wrapf(err, pkgerrors.CacheError, "rate limit check failed")
		}
	} else if ttl, err := s.cache.TTL(ctx, key); err == nil {
		// A key left without expiry would block forever.
		if ttl <= 0 {
			_ = s.cache.Expire(ctx, key, window)
		} else {
			retryAfter = ttl
		}
	}

	if int(count) > max {
		seconds := int(retryAfter.Round(time.Second) / time.Second)
		return pkgerrors.Newf(pkgerrors.TooManyRequests, "Too many submissions, retry in %ds.", seconds).
			WithDetail("limit", max).
			WithDetail("retry_after_seconds", seconds)
	}
	return nil
}
