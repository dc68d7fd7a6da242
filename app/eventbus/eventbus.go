package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"

	"github.com/clubkit/census-bot/internal/handlerwrapper"
)

// EventBus is the transport surface handed to routers and publishers.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// metadataRoutingBus wraps a publisher/subscriber pair and resolves an
// empty publish topic from per-message metadata, which is how
// transformation handlers fan out to multiple outcome topics.
type metadataRoutingBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

func (b *metadataRoutingBus) Publish(topic string, messages ...*message.Message) error {
	if topic != "" {
		return b.publisher.Publish(topic, messages...)
	}
	for _, msg := range messages {
		msgTopic := msg.Metadata.Get(handlerwrapper.TopicMetadataKey)
		if msgTopic == "" {
			return fmt.Errorf("message %s has no topic metadata", msg.UUID)
		}
		if err := b.publisher.Publish(msgTopic, msg); err != nil {
			return fmt.Errorf("publish to %s: %w", msgTopic, err)
		}
	}
	return nil
}

func (b *metadataRoutingBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

func (b *metadataRoutingBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		b.logger.Error("Error closing publisher", slog.Any("error", err))
	}
	return b.subscriber.Close()
}

// NewNATSEventBus connects a JetStream-backed bus. Streams are
// auto-provisioned per subject.
func NewNATSEventBus(ctx context.Context, natsURL string, logger *slog.Logger) (EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &wmnats.NATSMarshaler{}
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}
	jsConfig := wmnats.JetStreamConfig{
		AutoProvision: true,
	}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Marshaler:         marshaler,
			JetStream:         jsConfig,
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
		},
		watermillLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:              natsURL,
			NatsOptions:      options,
			Unmarshaler:      marshaler,
			JetStream:        jsConfig,
			SubscribersCount: 1,
		},
		watermillLogger,
	)
	if err != nil {
		if closeErr := publisher.Close(); closeErr != nil {
			logger.Error("Error closing publisher after subscriber failure", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return &metadataRoutingBus{
		publisher:  publisher,
		subscriber: subscriber,
		logger:     logger,
	}, nil
}

// NewInProcessBus returns a gochannel-backed bus for tests and local
// single-process runs.
func NewInProcessBus(logger *slog.Logger) EventBus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
	return &metadataRoutingBus{
		publisher:  pubsub,
		subscriber: pubsub,
		logger:     logger,
	}
}
