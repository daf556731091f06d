package container

import (
	"time"

	"github.com/samber/do"
	"github.com/serroba/shortlinks/internal/auth"
	"github.com/serroba/shortlinks/internal/ratelimit"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/stats"
	"github.com/serroba/shortlinks/internal/store"
	"github.com/serroba/shortlinks/internal/visits"
)

const (
	loginAttempts = 10
	loginWindow   = 15 * time.Minute
)

// ShortenerPackage provides the link service on top of the selected repository.
func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)

		generator, err := shortener.NewNanoIDGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewService(do.MustInvoke[shortener.Repository](i), generator), nil
	})
}

func AuthPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*auth.TokenService, error) {
		opts := do.MustInvoke[*Options](i)

		return auth.NewTokenService(opts.JWTSecret, time.Duration(opts.TokenTTLMinutes)*time.Minute), nil
	})

	do.Provide(injector, func(i *do.Injector) (*auth.Service, error) {
		users, err := do.Invoke[auth.UserRepository](i)
		if err != nil {
			return nil, err
		}

		return auth.NewService(users, auth.NewPasswordHasher(0), do.MustInvoke[*auth.TokenService](i)), nil
	})
}

// RateLimitPackage keeps request windows in Redis when it is configured so
// every instance shares them, and in memory otherwise.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		if r := do.MustInvoke[*Redis](i); r.Enabled() {
			return store.NewRateLimitRedisStore(r.Client), nil
		}

		return store.NewRateLimitMemoryStore(), nil
	})

	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		return ratelimit.NewPolicyLimiter(do.MustInvoke[ratelimit.Store](i), ratelimit.DefaultPolicy()), nil
	})

	do.Provide(injector, func(i *do.Injector) (ratelimit.Limiter, error) {
		return ratelimit.NewSlidingWindowLimiter(
			do.MustInvoke[ratelimit.Store](i), "login", loginAttempts, loginWindow,
		), nil
	})
}

func StatsPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*stats.Aggregator, error) {
		links, err := do.Invoke[shortener.Repository](i)
		if err != nil {
			return nil, err
		}

		visitStore, err := do.Invoke[visits.Store](i)
		if err != nil {
			return nil, err
		}

		return stats.NewAggregator(links, visitStore), nil
	})
}
