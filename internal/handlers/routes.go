package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlinks/internal/middleware"
	"github.com/serroba/shortlinks/internal/ratelimit"
)

var bearer = []map[string][]string{{middleware.BearerScheme: {}}}

// SecuritySchemes is the OpenAPI description of bearer authentication.
func SecuritySchemes() map[string]*huma.SecurityScheme {
	return map[string]*huma.SecurityScheme{
		middleware.BearerScheme: {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
}

// RegisterRoutes registers the link, stats and account operations with their
// rate limit configuration.
func RegisterRoutes(api huma.API, links *LinkHandler, stats *StatsHandler, accounts *AccountHandler) {
	registerAccountRoutes(api, accounts)
	registerStatsRoutes(api, stats)
	registerLinkRoutes(api, links)
}

func registerLinkRoutes(api huma.API, links *LinkHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "shorten",
		Method:        http.MethodPost,
		Path:          "/api/shorten",
		Summary:       "Create short link",
		Description:   "Shortens a URL with a random or custom code using the token or hash strategy.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
		Metadata: ratelimit.EndpointConfig{
			Limits: []ratelimit.LimitConfig{
				{Window: time.Minute, Max: 10},
				{Window: time.Hour, Max: 100},
			},
		}.Metadata(),
	}, links.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/api/links",
		Summary:     "List my links",
		Tags:        []string{"Links"},
		Security:    bearer,
	}, links.List)

	huma.Register(api, huma.Operation{
		OperationID: "check-availability",
		Method:      http.MethodGet,
		Path:        "/api/links/availability/{shortCode}",
		Summary:     "Check whether a custom code is free",
		Tags:        []string{"Links"},
	}, links.Availability)

	huma.Register(api, huma.Operation{
		OperationID: "link-qr-code",
		Method:      http.MethodGet,
		Path:        "/api/links/{shortCode}/qr",
		Summary:     "QR code of a short link",
		Tags:        []string{"Links"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "PNG image",
				Content:     map[string]*huma.MediaType{"image/png": {}},
			},
		},
	}, links.QRCode)

	huma.Register(api, huma.Operation{
		OperationID: "delete-link",
		Method:      http.MethodDelete,
		Path:        "/api/links/{shortCode}",
		Summary:     "Delete one of my links",
		Tags:        []string{"Links"},
		Security:    bearer,
	}, links.Delete)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{shortCode}",
		Summary:       "Redirect to the original URL",
		Description:   "Redirects to the original URL and counts the visit.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusFound,
		Metadata: ratelimit.EndpointConfig{
			Limits: []ratelimit.LimitConfig{{Window: time.Minute, Max: 1000}},
		}.Metadata(),
	}, links.Redirect)
}

func registerStatsRoutes(api huma.API, stats *StatsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "stats-summary",
		Method:      http.MethodGet,
		Path:        "/api/stats/summary",
		Summary:     "Totals, recent and most visited links",
		Tags:        []string{"Stats"},
		Security:    bearer,
	}, stats.Summary)

	huma.Register(api, huma.Operation{
		OperationID: "stats-top",
		Method:      http.MethodGet,
		Path:        "/api/stats/top",
		Summary:     "Most visited links",
		Tags:        []string{"Stats"},
		Security:    bearer,
	}, stats.Top)

	huma.Register(api, huma.Operation{
		OperationID: "stats-daily",
		Method:      http.MethodGet,
		Path:        "/api/stats/daily",
		Summary:     "Visits per day",
		Tags:        []string{"Stats"},
		Security:    bearer,
	}, stats.Daily)
}

func registerAccountRoutes(api huma.API, accounts *AccountHandler) {
	authLimit := ratelimit.EndpointConfig{Scope: ratelimit.ScopeAuth}.Metadata()

	huma.Register(api, huma.Operation{
		OperationID:   "signup",
		Method:        http.MethodPost,
		Path:          "/api/auth/signup",
		Summary:       "Create an account",
		Tags:          []string{"Accounts"},
		DefaultStatus: http.StatusCreated,
		Metadata:      authLimit,
	}, accounts.Signup)

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "Log in",
		Tags:        []string{"Accounts"},
		Metadata:    authLimit,
	}, accounts.Login)

	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/api/auth/me",
		Summary:     "The current account",
		Tags:        []string{"Accounts"},
		Security:    bearer,
	}, accounts.Me)
}
