package ratelimit

import "time"

// LimitConfig is one sliding window: at most Max requests per Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps scopes to the windows enforced for them. A scope may carry
// several windows, e.g. a burst limit and an hourly limit.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// PolicyBuilder assembles a Policy.
type PolicyBuilder struct {
	limits map[Scope][]LimitConfig
}

// NewPolicyBuilder returns an empty builder.
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{limits: make(map[Scope][]LimitConfig)}
}

// AddLimit adds a window to scope. Non-positive limits are ignored.
func (b *PolicyBuilder) AddLimit(scope Scope, maxRequests int64, window time.Duration) *PolicyBuilder {
	if maxRequests <= 0 || window <= 0 {
		return b
	}

	b.limits[scope] = append(b.limits[scope], LimitConfig{Window: window, Max: maxRequests})

	return b
}

// Build returns the policy. The builder may keep being used afterwards.
func (b *PolicyBuilder) Build() *Policy {
	limits := make(map[Scope][]LimitConfig, len(b.limits))
	for scope, configs := range b.limits {
		limits[scope] = append([]LimitConfig(nil), configs...)
	}

	return &Policy{Limits: limits}
}

// DefaultPolicy is the service-wide policy: per client, 100 requests per 15
// minutes overall, 30 writes per minute and 20 account requests per 15 minutes.
func DefaultPolicy() *Policy {
	return NewPolicyBuilder().
		AddLimit(ScopeGlobal, 100, 15*time.Minute).
		AddLimit(ScopeWrite, 30, time.Minute).
		AddLimit(ScopeAuth, 20, 15*time.Minute).
		Build()
}
