package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/shortlinks/internal/auth"
	"github.com/serroba/shortlinks/internal/handlers"
	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/middleware"
	"github.com/serroba/shortlinks/internal/ratelimit"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/stats"
	"github.com/serroba/shortlinks/internal/store"
	"github.com/serroba/shortlinks/internal/visits"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	baseURL  = "http://localhost:8888"
	testURL  = "https://example.com/very/long/path"
	password = "Secr3t!"
)

// recorder captures published events.
type recorder[T any] struct {
	mu     sync.Mutex
	events []*T
	err    error
}

func (r *recorder[T]) publish(_ context.Context, event *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return r.err
}

func (r *recorder[T]) all() []*T {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*T(nil), r.events...)
}

type testServer struct {
	router  *chi.Mux
	links   *store.MemoryStore
	visits  *store.VisitMemoryStore
	created *recorder[visits.LinkCreatedEvent]
	visited *recorder[visits.LinkVisitedEvent]
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	linkStore := store.NewMemoryStore()
	visitStore := store.NewVisitMemoryStore()

	gen, err := shortener.NewNanoIDGenerator(shortener.DefaultCodeLength)
	require.NoError(t, err)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	accounts := auth.NewService(store.NewUserMemoryStore(), auth.NewPasswordHasher(bcrypt.MinCost), tokens)
	loginLimiter := ratelimit.NewSlidingWindowLimiter(store.NewRateLimitMemoryStore(), "login", 3, time.Minute)

	srv := &testServer{
		router:  chi.NewMux(),
		links:   linkStore,
		visits:  visitStore,
		created: &recorder[visits.LinkCreatedEvent]{},
		visited: &recorder[visits.LinkVisitedEvent]{},
	}

	config := huma.DefaultConfig("Test", "1.0.0")
	config.Components.SecuritySchemes = handlers.SecuritySchemes()
	api := humachi.New(srv.router, config)
	api.UseMiddleware(middleware.RequestMeta(api))
	api.UseMiddleware(middleware.Authenticate(api, accounts, logger))

	handlers.RegisterRoutes(api,
		handlers.NewLinkHandler(
			shortener.NewService(linkStore, gen),
			baseURL,
			messaging.Publish[visits.LinkCreatedEvent](srv.created.publish),
			messaging.Publish[visits.LinkVisitedEvent](srv.visited.publish),
			logger,
		),
		handlers.NewStatsHandler(stats.NewAggregator(linkStore, visitStore), baseURL, logger),
		handlers.NewAccountHandler(accounts, loginLimiter, logger),
	)

	return srv
}

type request struct {
	method string
	path   string
	body   any
	token  string
	header map[string]string
}

func (s *testServer) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(r.body))
	}

	req := httptest.NewRequest(r.method, r.path, &body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	for k, v := range r.header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

// signup creates an account and returns its token.
func (s *testServer) signup(t *testing.T, username string) string {
	t.Helper()

	w := s.do(t, request{
		method: http.MethodPost,
		path:   "/api/auth/signup",
		body:   map[string]string{"username": username, "password": password},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decode(t, w, &out)

	return out.Token
}

func (s *testServer) shorten(t *testing.T, token string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	return s.do(t, request{method: http.MethodPost, path: "/api/shorten", body: body, token: token})
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
