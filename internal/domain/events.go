package domain

import "time"

// UserRegisteredEvent is published after a successful registration or a
// Google sign-in auto-provision.
type UserRegisteredEvent struct {
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Method       string    `json:"method"` // password, google
	RegisteredAt time.Time `json:"registered_at"`
}

// PasswordChangedEvent is published after a password change or reset.
type PasswordChangedEvent struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	ChangedAt time.Time `json:"changed_at"`
	Source    string    `json:"source"` // change, reset
}

// SubscriptionChangedEvent is published when a team's subscription is
// created or canceled.
type SubscriptionChangedEvent struct {
	EventID        string    `json:"event_id"`
	SubscriptionID string    `json:"subscription_id"`
	TeamID         string    `json:"team_id"`
	PlanID         string    `json:"plan_id"`
	Status         string    `json:"status"`
	ChangedAt      time.Time `json:"changed_at"`
}
