package events

import (
	"context"

	"github.com/mkoreshkov/saas-backend/internal/domain"
)

// NoopPublisher discards all events. Used when no Kafka brokers are
// configured.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that drops every event.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (NoopPublisher) UserRegistered(context.Context, domain.UserRegisteredEvent) error {
	return nil
}

func (NoopPublisher) PasswordChanged(context.Context, domain.PasswordChangedEvent) error {
	return nil
}

func (NoopPublisher) SubscriptionChanged(context.Context, domain.SubscriptionChangedEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

var _ Publisher = NoopPublisher{}
