package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlinks/internal/ratelimit"
	"go.uber.org/zap"
)

// PolicyRateLimiter applies policy-based rate limiting per client.
//
// Operations may carry a ratelimit.EndpointConfig in their metadata to opt
// out (Disabled), to change the scope, or to replace the policy with their own
// windows (Limits).
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	resolver ratelimit.ScopeResolver,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		cfg := ratelimit.EndpointConfigFor(op)

		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		if cfg != nil && len(cfg.Limits) > 0 {
			policy := ratelimit.NewPolicyBuilder()
			for _, limit := range cfg.Limits {
				policy.AddLimit(ratelimit.Scope("route:"+op.Path), limit.Max, limit.Window)
			}

			custom := ratelimit.NewPolicyLimiter(limiter.Store(), policy.Build())
			enforce(api, ctx, custom, []ratelimit.Scope{ratelimit.Scope("route:" + op.Path)}, logger, next)

			return
		}

		enforce(api, ctx, limiter, resolver.Resolve(ctx), logger, next)
	}
}

func enforce(
	api huma.API,
	ctx huma.Context,
	limiter *ratelimit.PolicyLimiter,
	scopes []ratelimit.Scope,
	logger *zap.Logger,
	next func(huma.Context),
) {
	allowed, exceeded, err := limiter.Allow(ctx.Context(), clientKey(ctx), scopes)
	if err != nil {
		logger.Error("rate limit check failed", zap.String("path", operationPath(ctx)), zap.Error(err))
		_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error")

		return
	}

	if allowed {
		next(ctx)

		return
	}

	logger.Warn("rate limit exceeded",
		zap.String("path", operationPath(ctx)),
		zap.String("method", ctx.Method()),
		zap.String("scope", string(exceeded.Scope)),
		zap.Int64("count", exceeded.Count),
		zap.Int64("max", exceeded.Config.Max),
		zap.Duration("window", exceeded.Config.Window),
		zap.String("client_ip", ClientIP(ctx)),
	)

	ctx.SetHeader("Retry-After", strconv.Itoa(int(exceeded.RetryAfter().Seconds())))
	_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests,
		fmt.Sprintf("rate limit exceeded: %d requests per %s", exceeded.Config.Max, exceeded.Config.Window))
}

// clientKey identifies a client by IP and User-Agent.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(ClientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
