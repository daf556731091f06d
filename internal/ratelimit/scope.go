package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope categorizes a request for rate limiting purposes.
type Scope string

const (
	// ScopeGlobal applies to every request.
	ScopeGlobal Scope = "global"
	// ScopeRead applies to GET, HEAD and OPTIONS requests.
	ScopeRead Scope = "read"
	// ScopeWrite applies to all other methods.
	ScopeWrite Scope = "write"
	// ScopeAuth applies to account endpoints.
	ScopeAuth Scope = "auth"
)

// MetadataKey is the operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig is per-operation rate limit configuration.
//
// Non-empty Limits replace the policy for the operation and are tracked per
// route template; Scope is then ignored. Otherwise Scope, when set, replaces
// the method-derived scope next to ScopeGlobal.
type EndpointConfig struct {
	Scope    Scope
	Limits   []LimitConfig
	Disabled bool
}

// Metadata returns an operation metadata map carrying cfg.
func (cfg EndpointConfig) Metadata() map[string]any {
	return map[string]any{MetadataKey: cfg}
}

// ScopeResolver determines which scopes apply to a given request.
type ScopeResolver interface {
	Resolve(ctx huma.Context) []Scope
}

// MethodScope classifies an HTTP method as read or write.
func MethodScope(method string) Scope {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ScopeRead
	default:
		return ScopeWrite
	}
}

// OperationScopeResolver prefers the scope configured on the operation and
// falls back to MethodScope.
type OperationScopeResolver struct{}

// NewOperationScopeResolver creates an operation-aware scope resolver.
func NewOperationScopeResolver() *OperationScopeResolver {
	return &OperationScopeResolver{}
}

// Resolve always includes ScopeGlobal first.
func (r *OperationScopeResolver) Resolve(ctx huma.Context) []Scope {
	if cfg := EndpointConfigFor(ctx.Operation()); cfg != nil && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	return []Scope{ScopeGlobal, MethodScope(ctx.Method())}
}

// EndpointConfigFor extracts the EndpointConfig from operation metadata, if present.
func EndpointConfigFor(op *huma.Operation) *EndpointConfig {
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
