package domain

import "time"

// Notification channels.
const (
	ChannelEmail = "email"
)

// Notification reasons.
const (
	ReasonPasswordReset = "password_reset"
	ReasonEmailConfirm  = "email_confirm"
	ReasonWelcome       = "welcome"
	ReasonSubscription  = "subscription"
)

// Notification is a channel-tagged delivery request. After every dispatch
// attempt an immutable send-log row is written, successful or not.
type Notification struct {
	ID         string    `json:"id" db:"id"`
	Channel    string    `json:"channel" db:"channel"`
	Reason     string    `json:"reason" db:"reason"`
	Title      string    `json:"title" db:"title"`
	Message    string    `json:"message" db:"message"`
	ActionURL  string    `json:"action_url" db:"action_url"`
	Recipients []string  `json:"recipients" db:"recipients"`
	CC         []string  `json:"cc" db:"cc"`
	UserID     *string   `json:"user_id" db:"user_id"`
	TeamID     *string   `json:"team_id" db:"team_id"`
	Success    bool      `json:"success" db:"success"`
	ErrorText  *string   `json:"error_text" db:"error_text"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
