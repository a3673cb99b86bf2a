package ratelimit

import (
	"context"
	"time"
)

type RateLimitConfig struct {
	RequestsPerMinute int
	RequestsPerHour   int
}

// RateLimiter counts requests per key over sliding windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, config RateLimitConfig) (bool, error)
	GetRemaining(ctx context.Context, key string, window time.Duration, limit int) (int64, error)
	Reset(ctx context.Context, key string) error
}
