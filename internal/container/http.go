package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shortlinks/internal/auth"
	"github.com/serroba/shortlinks/internal/handlers"
	"github.com/serroba/shortlinks/internal/health"
	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/middleware"
	"github.com/serroba/shortlinks/internal/ratelimit"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/stats"
	"github.com/serroba/shortlinks/internal/visits"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the huma API with every route and
// middleware registered. Invoking huma.API builds the whole server graph.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		config := huma.DefaultConfig("Short Links", "1.0.0")
		config.Components.SecuritySchemes = handlers.SecuritySchemes()
		api := humachi.New(router, config)

		accounts, err := do.Invoke[*auth.Service](i)
		if err != nil {
			return nil, err
		}

		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.PolicyRateLimiter(
				api,
				do.MustInvoke[*ratelimit.PolicyLimiter](i),
				ratelimit.NewOperationScopeResolver(),
				logger,
			),
			middleware.Authenticate(api, accounts, logger),
		)

		links, err := do.Invoke[*shortener.Service](i)
		if err != nil {
			return nil, err
		}

		aggregator, err := do.Invoke[*stats.Aggregator](i)
		if err != nil {
			return nil, err
		}

		baseURL := opts.ShortURLBase()

		handlers.RegisterRoutes(api,
			handlers.NewLinkHandler(
				links,
				baseURL,
				do.MustInvoke[messaging.Publish[visits.LinkCreatedEvent]](i),
				do.MustInvoke[messaging.Publish[visits.LinkVisitedEvent]](i),
				logger,
			),
			handlers.NewStatsHandler(aggregator, baseURL, logger),
			handlers.NewAccountHandler(accounts, do.MustInvoke[ratelimit.Limiter](i), logger),
		)

		var redisChecker health.Checker
		if r := do.MustInvoke[*Redis](i); r.Enabled() {
			redisChecker = health.NewRedisChecker(r.Client)
		}

		health.RegisterRoutes(api, health.NewHandler(do.MustInvoke[health.Checker](i), redisChecker))

		return api, nil
	})
}
