package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

const (
	defaultHandlerTimeout = 10 * time.Second
	defaultAttempts       = 3
	defaultRetryDelay     = 100 * time.Millisecond
)

// Handler processes a single event.
type Handler[T any] func(ctx context.Context, event *T) error

// ConsumerOption tunes how a Consumer runs its handler.
type ConsumerOption func(*consumerConfig)

type consumerConfig struct {
	timeout    time.Duration
	attempts   int
	retryDelay time.Duration
}

// WithHandlerTimeout bounds each handler call.
func WithHandlerTimeout(d time.Duration) ConsumerOption {
	return func(c *consumerConfig) { c.timeout = d }
}

// WithRetry sets how many times a failing handler is called for one message
// and the delay before the second call. The delay doubles after every failure.
func WithRetry(attempts int, delay time.Duration) ConsumerOption {
	return func(c *consumerConfig) {
		if attempts > 0 {
			c.attempts = attempts
		}

		c.retryDelay = delay
	}
}

// Consumer subscribes to one topic and feeds decoded events to a typed handler.
//
// A message is acked once handled. Payloads that cannot be decoded and
// events whose handler keeps failing are logged and acked so they never block
// the topic. A message interrupted by shutdown is nacked for redelivery.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger
	config     consumerConfig
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConsumer creates a consumer of T events published on topic.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
	opts ...ConsumerOption,
) *Consumer[T] {
	config := consumerConfig{
		timeout:    defaultHandlerTimeout,
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(&config)
	}

	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
		config:     config,
		done:       make(chan struct{}),
	}
}

func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and processes messages in the background until ctx is
// cancelled or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		c.cancel()
		close(c.done)

		return err
	}

	go func() {
		defer close(c.done)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				c.process(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) {
	logger := c.logger.With(zap.String("message_uuid", msg.UUID))

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		logger.Error("dropping undecodable event", zap.Error(err))
		msg.Ack()

		return
	}

	delay := c.config.retryDelay

	for attempt := 1; ; attempt++ {
		err := c.call(ctx, &event)
		if err == nil {
			msg.Ack()
			logger.Debug("processed event", zap.Int("attempt", attempt))

			return
		}

		if attempt >= c.config.attempts {
			logger.Error("dropping event after failed attempts", zap.Int("attempts", attempt), zap.Error(err))
			msg.Ack()

			return
		}

		logger.Warn("event handler failed, retrying", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			msg.Nack()

			return
		case <-time.After(delay):
		}

		delay *= 2
	}
}

func (c *Consumer[T]) call(ctx context.Context, event *T) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()

	return c.handler(ctx, event)
}

// Shutdown stops the consumer and waits for the message in flight.
// A consumer that was never started has nothing to wait for.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel == nil {
		return nil
	}

	c.cancel()
	<-c.done

	return nil
}
