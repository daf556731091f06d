package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// MetadataTopic records the topic an event was published to.
const MetadataTopic = "topic"

// Publish publishes a typed event.
type Publish[T any] func(ctx context.Context, event *T) error

// NewPublishFunc creates a typed publish function for a specific topic.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(ctx context.Context, event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal %s event: %w", topic, err)
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set(MetadataTopic, topic)
		msg.SetContext(ctx)

		return publisher.Publish(topic, msg)
	}
}

// Discard returns a Publish that drops every event.
func Discard[T any]() Publish[T] {
	return func(context.Context, *T) error { return nil }
}

// ErrPublisherClosed is returned when publishing after Shutdown.
var ErrPublisherClosed = errors.New("publisher closed")

// PublisherGroup owns the transport publisher shared by every typed Publish.
// It is itself a message.Publisher that refuses messages once shut down, so
// requests still in flight during shutdown fail fast instead of reaching a
// closed transport.
type PublisherGroup struct {
	publisher message.Publisher
	mu        sync.RWMutex
	closed    bool
}

func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

func (g *PublisherGroup) Publish(topic string, msgs ...*message.Message) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.closed {
		return ErrPublisherClosed
	}

	return g.publisher.Publish(topic, msgs...)
}

// Close is Shutdown under the message.Publisher name.
func (g *PublisherGroup) Close() error {
	return g.Shutdown()
}

// Shutdown waits for publishes in progress and closes the transport once.
func (g *PublisherGroup) Shutdown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}

	g.closed = true

	return g.publisher.Close()
}
