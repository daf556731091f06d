package ratelimit

import (
	"context"
	"time"
)

// Store keeps the request timestamps behind every sliding window.
type Store interface {
	// Record adds one request under key, forgets those older than window and
	// returns how many remain, the new one included.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, err error)
}

// SlidingWindowLimiter enforces a single sliding window over a named key space.
type SlidingWindowLimiter struct {
	store  Store
	name   string
	limit  int64
	window time.Duration
}

// NewSlidingWindowLimiter creates a limiter allowing limit requests per window.
// Keys are recorded under name so several limiters can share one store.
func NewSlidingWindowLimiter(store Store, name string, limit int64, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store:  store,
		name:   name,
		limit:  limit,
		window: window,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Record(ctx, l.name+":"+key, l.window)
	if err != nil {
		return false, err
	}

	return count <= l.limit, nil
}

// Window returns the length of the sliding window.
func (l *SlidingWindowLimiter) Window() time.Duration {
	return l.window
}
