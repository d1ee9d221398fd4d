package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AyushPithale/social-platform-gateway/internal/core/domain"
	"github.com/AyushPithale/social-platform-gateway/internal/core/port"
	"github.com/AyushPithale/social-platform-gateway/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string    `json:"user_id"`
		Username     string    `json:"username"`
		Email        string    `json:"email,omitempty"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Username:     event.Username,
		Email:        event.Email,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "user.registered", event.RegisteredAt, payload)
}

// PublishPostCreated publishes post.created events.
func (p *EventPublisher) PublishPostCreated(ctx context.Context, event domain.PostCreatedEvent) error {
	payload := struct {
		PostID    string    `json:"post_id"`
		UserID    string    `json:"user_id"`
		Content   string    `json:"content"`
		MediaIDs  []string  `json:"media_ids,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}{
		PostID:    event.PostID,
		UserID:    event.UserID,
		Content:   event.Content,
		MediaIDs:  event.MediaIDs,
		CreatedAt: event.CreatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "post.created", event.CreatedAt, payload)
}

// PublishPostDeleted publishes post.deleted events.
func (p *EventPublisher) PublishPostDeleted(ctx context.Context, event domain.PostDeletedEvent) error {
	payload := struct {
		PostID    string    `json:"post_id"`
		UserID    string    `json:"user_id"`
		MediaIDs  []string  `json:"media_ids,omitempty"`
		DeletedAt time.Time `json:"deleted_at"`
	}{
		PostID:    event.PostID,
		UserID:    event.UserID,
		MediaIDs:  event.MediaIDs,
		DeletedAt: event.DeletedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "post.deleted", event.DeletedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
