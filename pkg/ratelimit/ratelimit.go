// Package ratelimit applies per-key token bucket limits.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/yumina0616/PromptLab-sub000/pkg/errcode"
)

// ErrRateLimited is returned by callers that reject an event Allow refused.
var ErrRateLimited = errcode.New("RATE_LIMITED", "too many requests, slow down")

// Limiter holds one token bucket per key.
type Limiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// PerMinute creates a Limiter allowing perMinute events per key with the given burst.
// A non-positive perMinute disables limiting.
func PerMinute(perMinute, burst int) *Limiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether an event for key may happen now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	l.mu.Unlock()
	return b.Allow()
}
