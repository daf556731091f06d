package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/store"
	"go.uber.org/zap"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"

	EventsInline = "inline"
	EventsRedis  = "redis"
)

var errInvalidOptions = errors.New("invalid options")

// Options configures the API server. Every field is also read from the
// matching SERVICE_* environment variable.
type Options struct {
	Port            int    `default:"8888"          help:"Port to listen on"                                short:"p"`
	BaseURL         string `default:""              help:"Base URL for short links (default http://localhost:<port>)"`
	CodeLength      int    `default:"8"             help:"Length of generated short codes"                  short:"c"`
	Store           string `default:"memory"        help:"Link store: memory, postgres or sqlite"           short:"s"`
	DatabaseURL     string `default:""              help:"Postgres connection string"`
	SQLitePath      string `default:"shortlinks.db" help:"SQLite database file"`
	RedisAddr       string `default:""              help:"Redis address, empty disables Redis"              short:"r"`
	CacheTTLSeconds int    `default:"3600"          help:"Lifetime of cached links in seconds"`
	Events          string `default:"inline"        help:"Event transport: inline or redis"`
	ConsumerGroup   string `default:"shortlinks"    help:"Redis Streams consumer group"`
	JWTSecret       string `default:""              help:"Secret used to sign access tokens (required)"`
	TokenTTLMinutes int    `default:"60"            help:"Access token lifetime in minutes"`
	LogFormat       string `default:"json"          help:"Log format: json or console"`
	Migrate         bool   `default:"true"          help:"Create database tables on start"`
}

// Validate checks everything the API server needs: the backends and a
// token signing secret.
func (o *Options) Validate() error {
	if err := o.ValidateBackends(); err != nil {
		return err
	}

	if o.JWTSecret == "" || o.JWTSecret == "change-me" {
		return fmt.Errorf("%w: a JWT secret is required (--jwt-secret or SERVICE_JWT_SECRET)", errInvalidOptions)
	}

	return nil
}

// ValidateBackends checks that the selected stores and event transport have
// what they need.
func (o *Options) ValidateBackends() error {
	switch o.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if o.DatabaseURL == "" {
			return fmt.Errorf("%w: postgres store requires a database URL", errInvalidOptions)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", errInvalidOptions, o.Store)
	}

	switch o.Events {
	case EventsInline:
	case EventsRedis:
		if o.RedisAddr == "" {
			return fmt.Errorf("%w: redis events require a redis address", errInvalidOptions)
		}
	default:
		return fmt.Errorf("%w: unknown event transport %q", errInvalidOptions, o.Events)
	}

	if o.CodeLength < 3 || o.CodeLength > 20 {
		return fmt.Errorf("%w: code length must be between 3 and 20", errInvalidOptions)
	}

	return nil
}

// ShortURLBase returns the prefix short codes are appended to.
func (o *Options) ShortURLBase() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// ConsumerOptions configures the standalone event consumer.
type ConsumerOptions struct {
	RedisAddr     string `env:"REDIS_ADDR"     env-default:"localhost:6379"`
	DatabaseURL   string `env:"DATABASE_URL"   env-default:""`
	LogFormat     string `env:"LOG_FORMAT"     env-default:"console"`
	ConsumerGroup string `env:"CONSUMER_GROUP" env-default:"shortlinks"`
}

// Options maps the consumer settings onto the shared server options so both
// binaries build their dependencies from the same packages. Without a
// database the visit projection stays in memory.
func (c *ConsumerOptions) Options() *Options {
	backend := StoreMemory
	if c.DatabaseURL != "" {
		backend = StorePostgres
	}

	return &Options{
		Store:         backend,
		CodeLength:    shortener.DefaultCodeLength,
		DatabaseURL:   c.DatabaseURL,
		RedisAddr:     c.RedisAddr,
		Events:        EventsRedis,
		ConsumerGroup: c.ConsumerGroup,
		LogFormat:     c.LogFormat,
		Migrate:       true,
	}
}

func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "console" {
			return zap.NewDevelopment()
		}

		return zap.NewProduction()
	})
}

// Redis holds the optional Redis client. Client is nil when no address is set.
type Redis struct {
	Client *redis.Client
}

// Enabled reports whether a Redis address was configured.
func (r *Redis) Enabled() bool {
	return r.Client != nil
}

func (r *Redis) Shutdown() error {
	if r.Client == nil {
		return nil
	}

	return r.Client.Close()
}

func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.RedisAddr == "" {
			return &Redis{}, nil
		}

		return &Redis{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// Postgres owns the connection pool shared by the Postgres stores.
type Postgres struct {
	Pool *pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Pool.Close()

	return nil
}

// PostgresPackage connects lazily, so memory and SQLite deployments never
// dial a database.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		if opts.Migrate {
			if err := store.MigratePostgres(ctx, pool); err != nil {
				pool.Close()

				return nil, err
			}
		}

		return &Postgres{Pool: pool}, nil
	})
}
