package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlinks/internal/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRefused = errors.New("connection refused")

func up(context.Context) error   { return nil }
func down(context.Context) error { return errRefused }

func TestHandler_Check(t *testing.T) {
	tests := []struct {
		name   string
		store  health.Checker
		redis  health.Checker
		status string
		sStore string
		sRedis string
	}{
		{"in-process store without redis", nil, nil, "ok", "healthy", "disabled"},
		{"all dependencies up", health.CheckerFunc(up), health.CheckerFunc(up), "ok", "healthy", "healthy"},
		{"redis down", health.CheckerFunc(up), health.CheckerFunc(down), "degraded", "healthy", "unhealthy"},
		{"store down", health.CheckerFunc(down), nil, "degraded", "unhealthy", "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := health.NewHandler(tt.store, tt.redis).Check(context.Background(), nil)

			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.Body.Status)
			assert.Equal(t, tt.sStore, resp.Body.Store)
			assert.Equal(t, tt.sRedis, resp.Body.Redis)
		})
	}
}

func TestHandler_PingTimeout(t *testing.T) {
	slow := health.CheckerFunc(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		if !ok {
			return errors.New("no deadline")
		}

		return nil
	})

	resp, err := health.NewHandler(slow, nil).Check(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "healthy", resp.Body.Store)
}

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	health.RegisterRoutes(api, health.NewHandler(nil, health.CheckerFunc(down)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestRedisChecker(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	assert.NoError(t, health.NewRedisChecker(client).Ping(context.Background()))
}
