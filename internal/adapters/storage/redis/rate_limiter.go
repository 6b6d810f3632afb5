package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rp-pay-dashboard/internal/core/ports"
)

// RateLimiterAdapter is a Redis implementation of the RateLimiterRepository port.
type RateLimiterAdapter struct {
	rdb *redis.Client
	now func() time.Time
}

var _ ports.RateLimiterRepository = (*RateLimiterAdapter)(nil)

func NewRateLimiterAdapter(rdb *redis.Client) *RateLimiterAdapter {
	return &RateLimiterAdapter{rdb: rdb, now: time.Now}
}

// IsAllowed implements a sliding window over a sorted set of request timestamps.
func (a *RateLimiterAdapter) IsAllowed(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	key = "ratelimit:" + key
	now := a.now().UnixNano()
	windowStart := now - window.Nanoseconds()

	var card *redis.IntCmd
	_, err := a.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
		card = pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis rate limit pipeline failed: %w", err)
	}

	return card.Val() <= int64(limit), nil
}
