package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkoreshkov/saas-backend/internal/domain"
)

const schemaVersion = "1.0"

// Event types published by the service.
const (
	EventUserRegistered      = "user.registered"
	EventPasswordChanged     = "user.password_changed"
	EventSubscriptionChanged = "subscription.changed"
)

// Publisher emits domain events for other services to consume.
// Publishing is best effort; callers log failures and move on.
type Publisher interface {
	UserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	SubscriptionChanged(ctx context.Context, event domain.SubscriptionChangedEvent) error
	Close() error
}

// KafkaPublisher implements Publisher on top of an async Kafka producer.
type KafkaPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewKafkaPublisher creates a Kafka-backed event publisher.
func NewKafkaPublisher(producer *Producer, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: logger}
}

type eventEnvelope struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Payload   any       `json:"payload"`
}

func (p *KafkaPublisher) publish(ctx context.Context, eventID, eventType string, ts time.Time, payload any) error {
	if eventID == "" {
		eventID = uuid.NewString()
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	envelope := eventEnvelope{
		EventID:   eventID,
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UserRegistered publishes a user registration event.
func (p *KafkaPublisher) UserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	return p.publish(ctx, event.EventID, EventUserRegistered, event.RegisteredAt, event)
}

// PasswordChanged publishes a password change event.
func (p *KafkaPublisher) PasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	return p.publish(ctx, event.EventID, EventPasswordChanged, event.ChangedAt, event)
}

// SubscriptionChanged publishes a subscription lifecycle event.
func (p *KafkaPublisher) SubscriptionChanged(ctx context.Context, event domain.SubscriptionChangedEvent) error {
	return p.publish(ctx, event.EventID, EventSubscriptionChanged, event.ChangedAt, event)
}

// Close shuts down the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ Publisher = (*KafkaPublisher)(nil)
