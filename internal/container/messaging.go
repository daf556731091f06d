package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/samber/do"
	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/visits"
	"go.uber.org/zap"
)

const inlineBuffer = 256

// inlinePubSubPackage provides the in-process channel shared by the
// publishers and consumers of a single server. Both groups register it, so
// the later registration replaces the earlier one before anything is built.
func inlinePubSubPackage(injector *do.Injector) {
	do.Override(injector, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: inlineBuffer,
		}, messaging.NewZapLogger(logger)), nil
	})
}

func PublisherGroupPackage(injector *do.Injector) {
	inlinePubSubPackage(injector)

	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.Events == EventsRedis {
			publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
				Client:     do.MustInvoke[*Redis](i).Client,
				Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
			}, messaging.NewZapLogger(logger))
			if err != nil {
				return nil, fmt.Errorf("create redis publisher: %w", err)
			}

			return messaging.NewPublisherGroup(publisher), nil
		}

		return messaging.NewPublisherGroup(do.MustInvoke[*gochannel.GoChannel](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[visits.LinkCreatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[visits.LinkCreatedEvent](group, visits.TopicLinkCreated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[visits.LinkVisitedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[visits.LinkVisitedEvent](group, visits.TopicLinkVisited), nil
	})
}

// ConsumerGroupPackage wires the visit recorder to both link topics.
func ConsumerGroupPackage(injector *do.Injector) {
	inlinePubSubPackage(injector)

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := newSubscriber(i, opts, logger)
		if err != nil {
			return nil, err
		}

		visitStore, err := do.Invoke[visits.Store](i)
		if err != nil {
			return nil, err
		}

		recorder := visits.NewRecorder(visitStore, visits.NewClassifier(), logger)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer[visits.LinkVisitedEvent](
			subscriber, visits.TopicLinkVisited, recorder.HandleVisited, logger,
		))
		group.Add(messaging.NewConsumer[visits.LinkCreatedEvent](
			subscriber, visits.TopicLinkCreated, recorder.HandleCreated, logger,
		))

		return group, nil
	})
}

func newSubscriber(i *do.Injector, opts *Options, logger *zap.Logger) (message.Subscriber, error) {
	if opts.Events != EventsRedis {
		return do.MustInvoke[*gochannel.GoChannel](i), nil
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        do.MustInvoke[*Redis](i).Client,
		Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
		ConsumerGroup: opts.ConsumerGroup,
	}, messaging.NewZapLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create redis subscriber: %w", err)
	}

	return subscriber, nil
}
