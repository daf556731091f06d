package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable is a topic consumer with a start/stop lifecycle.
type Runnable interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs the consumers that share one subscriber and owns that
// subscriber's lifetime.
type ConsumerGroup struct {
	consumers  []Runnable
	subscriber message.Subscriber
	logger     *zap.Logger
	stopOnce   sync.Once
	stopErr    error
}

func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

func (g *ConsumerGroup) Add(consumer Runnable) {
	g.consumers = append(g.consumers, consumer)
}

func (g *ConsumerGroup) Len() int {
	return len(g.consumers)
}

// Topics lists the topics of the registered consumers in registration order.
func (g *ConsumerGroup) Topics() []string {
	topics := make([]string, len(g.consumers))
	for i, consumer := range g.consumers {
		topics[i] = consumer.Topic()
	}

	return topics
}

// Start starts every consumer. If one fails, those already running are
// stopped and the error names the failing topic.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			for _, started := range g.consumers[:i] {
				_ = started.Shutdown()
			}

			return fmt.Errorf("start %s consumer: %w", consumer.Topic(), err)
		}
	}

	g.logger.Info("consumer group started", zap.Strings("topics", g.Topics()))

	return nil
}

// Shutdown stops every consumer, then closes the subscriber. All failures
// are returned joined. Later calls return the first result.
func (g *ConsumerGroup) Shutdown() error {
	g.stopOnce.Do(func() {
		g.logger.Info("shutting down consumer group")

		errs := make([]error, 0, len(g.consumers)+1)
		for _, consumer := range g.consumers {
			if err := consumer.Shutdown(); err != nil {
				errs = append(errs, fmt.Errorf("stop %s consumer: %w", consumer.Topic(), err))
			}
		}

		if err := g.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}

		g.stopErr = errors.Join(errs...)
	})

	return g.stopErr
}
