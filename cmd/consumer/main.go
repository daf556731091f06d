package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/shortlinks/internal/container"
	"github.com/serroba/shortlinks/internal/messaging"
	"go.uber.org/zap"
)

// The consumer reads link events from Redis Streams and projects visits.
func main() {
	_ = godotenv.Load()

	var cfg container.ConsumerOptions
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("read consumer configuration: %v", err)
	}

	opts := cfg.Options()

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.RepositoryPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)

	if err := opts.ValidateBackends(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		logger.Fatal("failed to build consumer group", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("consumer running",
		zap.String("group", cfg.ConsumerGroup),
		zap.String("visit_store", opts.Store),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
