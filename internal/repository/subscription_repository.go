package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkoreshkov/saas-backend/internal/domain"
)

// subscriptionRepository implements SubscriptionRepository interface
type subscriptionRepository struct {
	q querier
}

const subscriptionColumns = `id, team_id, plan_id, status, period_start, period_end, canceled_at, created_at`

// Create creates a new subscription
func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, team_id, plan_id, status, period_start, period_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	_, err := r.q.ExecContext(ctx, query,
		sub.ID,
		sub.TeamID,
		sub.PlanID,
		sub.Status,
		sub.PeriodStart,
		sub.PeriodEnd,
		sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

func scanSubscription(scan func(dest ...any) error) (*domain.Subscription, error) {
	sub := &domain.Subscription{}
	var canceledAt sql.NullTime

	err := scan(
		&sub.ID,
		&sub.TeamID,
		&sub.PlanID,
		&sub.Status,
		&sub.PeriodStart,
		&sub.PeriodEnd,
		&canceledAt,
		&sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if canceledAt.Valid {
		sub.CanceledAt = &canceledAt.Time
	}

	return sub, nil
}

// GetByID retrieves a subscription by ID
func (r *subscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	sub, err := scanSubscription(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("subscription with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subscription by id: %w", err)
	}

	return sub, nil
}

// GetActiveByTeam retrieves the team's active subscription
func (r *subscriptionRepository) GetActiveByTeam(ctx context.Context, teamID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE team_id = $1 AND status = $2`

	sub, err := scanSubscription(r.q.QueryRowContext(ctx, query, teamID, domain.SubscriptionActive).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active subscription for team %s not found: %w", teamID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}

	return sub, nil
}

// ListByTeam retrieves all subscriptions for a team, newest first
func (r *subscriptionRepository) ListByTeam(ctx context.Context, teamID string) ([]*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE team_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	return subs, nil
}

// SetStatus updates a subscription's status
func (r *subscriptionRepository) SetStatus(ctx context.Context, id, status string, canceledAt *time.Time) error {
	query := `UPDATE subscriptions SET status = $2, canceled_at = $3 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, status, canceledAt)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}

	return requireRow(result, fmt.Sprintf("subscription with id %s", id))
}
