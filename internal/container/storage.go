package container

import (
	"context"
	"time"

	"github.com/samber/do"
	"github.com/serroba/shortlinks/internal/auth"
	"github.com/serroba/shortlinks/internal/health"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/store"
	"github.com/serroba/shortlinks/internal/visits"
)

func SQLitePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*store.SQLiteStore, error) {
		opts := do.MustInvoke[*Options](i)

		return store.OpenSQLiteStore(context.Background(), opts.SQLitePath)
	})
}

// RepositoryPackage selects the link, account and visit stores for the
// configured backend. Links are cached in Redis when it is available.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)

		var repo shortener.Repository

		switch opts.Store {
		case StorePostgres:
			pg, err := do.Invoke[*Postgres](i)
			if err != nil {
				return nil, err
			}

			repo = store.NewPostgresStore(pg.Pool)
		case StoreSQLite:
			sqlite, err := do.Invoke[*store.SQLiteStore](i)
			if err != nil {
				return nil, err
			}

			repo = sqlite
		default:
			repo = store.NewMemoryStore()
		}

		if r := do.MustInvoke[*Redis](i); r.Enabled() {
			ttl := time.Duration(opts.CacheTTLSeconds) * time.Second
			repo = store.NewRedisCacheRepository(repo, r.Client, ttl)
		}

		return repo, nil
	})

	do.Provide(injector, func(i *do.Injector) (auth.UserRepository, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Store {
		case StorePostgres:
			pg, err := do.Invoke[*Postgres](i)
			if err != nil {
				return nil, err
			}

			return store.NewUserPostgresStore(pg.Pool), nil
		case StoreSQLite:
			sqlite, err := do.Invoke[*store.SQLiteStore](i)
			if err != nil {
				return nil, err
			}

			return store.NewUserSQLiteStore(sqlite), nil
		}

		return store.NewUserMemoryStore(), nil
	})

	do.Provide(injector, func(i *do.Injector) (visits.Store, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Store {
		case StorePostgres:
			pg, err := do.Invoke[*Postgres](i)
			if err != nil {
				return nil, err
			}

			return store.NewVisitPostgresStore(pg.Pool), nil
		case StoreSQLite:
			sqlite, err := do.Invoke[*store.SQLiteStore](i)
			if err != nil {
				return nil, err
			}

			return store.NewVisitSQLiteStore(sqlite), nil
		}

		return store.NewVisitMemoryStore(), nil
	})

	do.Provide(injector, func(i *do.Injector) (health.Checker, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Store {
		case StorePostgres:
			pg, err := do.Invoke[*Postgres](i)
			if err != nil {
				return nil, err
			}

			return health.CheckerFunc(pg.Pool.Ping), nil
		case StoreSQLite:
			sqlite, err := do.Invoke[*store.SQLiteStore](i)
			if err != nil {
				return nil, err
			}

			return sqlite, nil
		}

		return health.CheckerFunc(func(context.Context) error { return nil }), nil
	})
}
