package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

const (
	// CorrelationIDKey is the metadata key carrying the correlation id between services.
	CorrelationIDKey = "correlation_id"
	// TopicMetadataKey routes a message published with an empty topic.
	TopicMetadataKey = "topic"
)

// EventBus publishes and subscribes watermill messages.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// Config describes the NATS connection.
type Config struct {
	URL           string
	NKeySeed      string
	JetStream     bool
	QueueGroup    string
	DurablePrefix string
	ClientName    string
}

type bus struct {
	message.Publisher
	message.Subscriber
	logger *slog.Logger
}

// Publish sends msgs to topic. With an empty topic each message goes to the
// topic named in its metadata, which lets router handlers emit to several topics.
func (b *bus) Publish(topic string, msgs ...*message.Message) error {
	if topic != "" {
		return b.Publisher.Publish(topic, msgs...)
	}
	for _, msg := range msgs {
		target := msg.Metadata.Get(TopicMetadataKey)
		if target == "" {
			return fmt.Errorf("message %s has no topic metadata", msg.UUID)
		}
		if err := b.Publisher.Publish(target, msg); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", target, err)
		}
	}
	return nil
}

func (b *bus) Close() error {
	pubErr := b.Publisher.Close()
	subErr := b.Subscriber.Close()
	if pubErr != nil {
		return fmt.Errorf("failed to close publisher: %w", pubErr)
	}
	if subErr != nil {
		return fmt.Errorf("failed to close subscriber: %w", subErr)
	}
	return nil
}

// NewEventBus connects a watermill publisher and subscriber to NATS.
func NewEventBus(cfg Config, logger *slog.Logger) (EventBus, error) {
	natsOptions, err := connectionOptions(cfg)
	if err != nil {
		return nil, err
	}

	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &wmnats.NATSMarshaler{}
	jsConfig := wmnats.JetStreamConfig{
		Disabled:      !cfg.JetStream,
		AutoProvision: cfg.JetStream,
		DurablePrefix: cfg.DurablePrefix,
	}

	publisher, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         cfg.URL,
		Marshaler:   marshaler,
		NatsOptions: natsOptions,
		JetStream:   jsConfig,
	}, wmLogger)
	if err != nil {
		logger.Error("Failed to create Watermill publisher", attr.Error(err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 4,
		CloseTimeout:     30 * time.Second,
		AckWaitTimeout:   30 * time.Second,
		Unmarshaler:      marshaler,
		NatsOptions:      natsOptions,
		JetStream:        jsConfig,
	}, wmLogger)
	if err != nil {
		publisher.Close()
		logger.Error("Failed to create Watermill subscriber", attr.Error(err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	logger.Info("Event bus connected",
		attr.String("nats_url", cfg.URL),
		attr.Bool("jetstream", cfg.JetStream),
	)
	return &bus{Publisher: publisher, Subscriber: subscriber, logger: logger}, nil
}

// NewInMemory returns a bus backed by a watermill go channel. It is used when no
// NATS url is configured and in tests.
func NewInMemory(logger *slog.Logger) EventBus {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
	return &bus{Publisher: pubSub, Subscriber: pubSub, logger: logger}
}

func connectionOptions(cfg Config) ([]nc.Option, error) {
	opts := []nc.Option{
		nc.RetryOnFailedConnect(true),
	}
	if cfg.ClientName != "" {
		opts = append(opts, nc.Name(cfg.ClientName))
	}
	if cfg.NKeySeed != "" {
		kp, err := nkeys.FromSeed([]byte(cfg.NKeySeed))
		if err != nil {
			return nil, fmt.Errorf("invalid nkey seed: %w", err)
		}
		pub, err := kp.PublicKey()
		if err != nil {
			return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
		}
		opts = append(opts, nc.Nkey(pub, func(nonce []byte) ([]byte, error) {
			return kp.Sign(nonce)
		}))
	}
	return opts, nil
}

// NewJSONMessage marshals payload into a message carrying the correlation id of ctx.
func NewJSONMessage(ctx context.Context, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	if id := attr.CorrelationID(ctx); id != "" {
		msg.Metadata.Set(CorrelationIDKey, id)
	}
	return msg, nil
}
