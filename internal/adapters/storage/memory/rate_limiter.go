// Package memory holds in-process stand-ins for the Redis-backed adapters.
package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rp-pay-dashboard/internal/core/ports"
)

// RateLimiter keeps one token bucket per key. Buckets refill at limit per
// window and allow bursts of up to limit.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	window   time.Duration
	lastSeen time.Time
}

var _ ports.RateLimiterRepository = (*RateLimiter)(nil)

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{buckets: make(map[string]*bucket), now: time.Now}
}

func (l *RateLimiter) IsAllowed(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	now := l.now()
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(float64(limit)/window.Seconds()), limit), window: window}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()
	return b.limiter.AllowN(now, 1), nil
}

// Sweep drops buckets untouched for a whole window and reports how many went.
// Such a bucket has refilled completely, so a fresh one behaves the same.
func (l *RateLimiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	dropped := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= b.window {
			delete(l.buckets, key)
			dropped++
		}
	}
	return dropped
}

// Len reports how many keys hold a bucket.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
