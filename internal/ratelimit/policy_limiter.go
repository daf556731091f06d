package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// LimitExceeded describes the window that rejected a request.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

// RetryAfter is an upper bound on the wait before the window admits the client again.
func (e *LimitExceeded) RetryAfter() time.Duration {
	return e.Config.Window
}

// PolicyLimiter enforces a Policy over resolved scopes.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow records the request in every window of every scope and reports the
// first window that is over its limit. Scopes absent from the policy are skipped.
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (bool, *LimitExceeded, error) {
	for _, scope := range scopes {
		for _, limit := range l.policy.Limits[scope] {
			key := fmt.Sprintf("%s:%s:%d", clientKey, scope, limit.Window.Milliseconds())

			count, err := l.store.Record(ctx, key, limit.Window)
			if err != nil {
				return false, nil, fmt.Errorf("record %s window: %w", scope, err)
			}

			if count > limit.Max {
				return false, &LimitExceeded{Scope: scope, Config: limit, Count: count}, nil
			}
		}
	}

	return true, nil, nil
}

// Store returns the underlying rate limit store.
func (l *PolicyLimiter) Store() Store {
	return l.store
}
