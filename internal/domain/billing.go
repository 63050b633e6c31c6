package domain

import "time"

// Plan is a purchasable subscription tier.
type Plan struct {
	ID              string    `json:"id" db:"id"`
	Code            string    `json:"code" db:"code"`
	Name            string    `json:"name" db:"name"`
	PriceCents      int64     `json:"price_cents" db:"price_cents"`
	Currency        string    `json:"currency" db:"currency"`
	BillingInterval string    `json:"billing_interval" db:"billing_interval"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Billing intervals.
const (
	IntervalMonthly = "monthly"
	IntervalYearly  = "yearly"
)

// Subscription statuses.
const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
	SubscriptionExpired  = "expired"
)

// Subscription binds a team to a plan for a billing period. A team has at
// most one active subscription at a time.
type Subscription struct {
	ID          string     `json:"id" db:"id"`
	TeamID      string     `json:"team_id" db:"team_id"`
	PlanID      string     `json:"plan_id" db:"plan_id"`
	Status      string     `json:"status" db:"status"`
	PeriodStart time.Time  `json:"period_start" db:"period_start"`
	PeriodEnd   time.Time  `json:"period_end" db:"period_end"`
	CanceledAt  *time.Time `json:"canceled_at" db:"canceled_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
