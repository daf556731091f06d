package store

import (
	"context"
	"sync"
	"time"
)

const sweepEvery = 1024

// RateLimitMemoryStore is an in-process sliding-window implementation of ratelimit.Store.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	windows  map[string]time.Duration
	records  int
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		windows:  make(map[string]time.Duration),
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	valid := prune(s.requests[key], now.Add(-window))
	valid = append(valid, now)
	s.requests[key] = valid
	s.windows[key] = window

	s.records++
	if s.records%sweepEvery == 0 {
		s.sweep(now)
	}

	return int64(len(valid)), nil
}

// Keys returns the number of clients currently tracked.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// sweep drops keys whose whole window has expired.
func (s *RateLimitMemoryStore) sweep(now time.Time) {
	for key, timestamps := range s.requests {
		// timestamps are appended in order, so the last one is the newest
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(now.Add(-s.windows[key])) {
			delete(s.requests, key)
			delete(s.windows, key)
		}
	}
}

func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	valid := timestamps[:0]

	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	return valid
}
