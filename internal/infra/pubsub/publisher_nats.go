package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/observability/tracing"
)

type NATSPublisher struct {
	publisher message.Publisher
}

type NATSPublisherConfig struct {
	URL string
}

// NewNATSPublisherWithStream provisions the reminder event stream and
// returns a publisher bound to it.
func NewNATSPublisherWithStream(ctx context.Context, cfg NATSPublisherConfig) (*NATSPublisher, error) {
	logger := watermill.NewSlogLogger(slog.Default())

	conn, err := nc.Connect(cfg.URL, nc.Timeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer conn.Close()

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	subjects := []string{TopicReminderNotified, TopicMeetingScheduled}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Reminder notifications and scheduled meetings",
		Subjects:    subjects,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		MaxBytes:    100 * 1024 * 1024, // 100MB
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	slog.InfoContext(ctx, "NATS JetStream stream configured",
		slog.String("stream", StreamName),
		slog.Any("subjects", subjects),
	)

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: []nc.Option{nc.Timeout(10 * time.Second)},
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
				TrackMsgId:    true,
			},
			Marshaler: &nats.NATSMarshaler{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	return NewPublisher(publisher), nil
}

// NewPublisher wraps any watermill publisher.
func NewPublisher(publisher message.Publisher) *NATSPublisher {
	return &NATSPublisher{publisher: publisher}
}

func (p *NATSPublisher) PublishReminderNotified(ctx context.Context, event ReminderNotifiedEvent) error {
	msg, err := newMessage(ctx, "reminder.notified", event)
	if err != nil {
		return err
	}

	msg.Metadata.Set("reminder_id", event.ReminderID)
	msg.Metadata.Set("tier", event.Tier)

	if err := p.publish(ctx, TopicReminderNotified, msg); err != nil {
		return err
	}

	slog.DebugContext(ctx, "published reminder notified event",
		slog.String("reminder_id", event.ReminderID),
		slog.String("tier", event.Tier),
		slog.String("message_id", msg.UUID),
	)

	return nil
}

func (p *NATSPublisher) PublishMeetingScheduled(ctx context.Context, event MeetingScheduledEvent) (string, error) {
	msg, err := newMessage(ctx, "meeting.scheduled", event)
	if err != nil {
		return "", err
	}

	if err := p.publish(ctx, TopicMeetingScheduled, msg); err != nil {
		return "", err
	}

	slog.DebugContext(ctx, "published meeting scheduled event",
		slog.String("name", event.Name),
		slog.String("message_id", msg.UUID),
	)

	return msg.UUID, nil
}

func (p *NATSPublisher) Close() error {
	return p.publisher.Close()
}

func (p *NATSPublisher) publish(ctx context.Context, topic string, msg *message.Message) error {
	if err := p.publisher.Publish(topic, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)

		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func newMessage(ctx context.Context, eventType string, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", eventType)

	for k, v := range tracing.Headers(ctx) {
		msg.Metadata.Set(k, v)
	}

	return msg, nil
}
