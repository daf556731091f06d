package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlinks/internal/ratelimit"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"

	pingTimeout = 2 * time.Second
)

// Checker defines the interface for checking a dependency.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// RedisChecker adapts redis.Client to Checker.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler reports the health of the link store and Redis.
type Handler struct {
	store Checker
	redis Checker
}

// NewHandler creates a health handler. A nil store checker means an
// in-process store that is always healthy; a nil redis checker means Redis is
// not configured.
func NewHandler(store, redis Checker) *Handler {
	return &Handler{store: store, redis: redis}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status string `enum:"ok,degraded"                json:"status"`
		Store  string `enum:"healthy,unhealthy"          json:"store"`
		Redis  string `enum:"healthy,unhealthy,disabled" json:"redis"`
	}
}

// Check pings every configured dependency; any failure degrades the status.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.Store = statusHealthy
	resp.Body.Redis = statusDisabled

	if h.store != nil {
		resp.Body.Store = ping(ctx, h.store)
	}

	if h.redis != nil {
		resp.Body.Redis = ping(ctx, h.redis)
	}

	if resp.Body.Store == statusUnhealthy || resp.Body.Redis == statusUnhealthy {
		resp.Body.Status = "degraded"
	}

	return resp, nil
}

func ping(ctx context.Context, checker Checker) string {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := checker.Ping(ctx); err != nil {
		return statusUnhealthy
	}

	return statusHealthy
}

// RegisterRoutes registers health check routes. Health checks are not rate limited.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health",
		Tags:        []string{"Health"},
		Metadata:    ratelimit.EndpointConfig{Disabled: true}.Metadata(),
	}, h.Check)
}
