package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mkoreshkov/saas-backend/internal/domain"
)

// planRepository implements PlanRepository interface
type planRepository struct {
	q querier
}

const planColumns = `id, code, name, price_cents, currency, billing_interval, is_active, created_at, updated_at`

// Create creates a new plan
func (r *planRepository) Create(ctx context.Context, plan *domain.Plan) error {
	query := `
		INSERT INTO plans (id, code, name, price_cents, currency, billing_interval, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}

	now := time.Now()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	if plan.UpdatedAt.IsZero() {
		plan.UpdatedAt = now
	}

	_, err := r.q.ExecContext(ctx, query,
		plan.ID,
		plan.Code,
		plan.Name,
		plan.PriceCents,
		plan.Currency,
		plan.BillingInterval,
		plan.IsActive,
		plan.CreatedAt,
		plan.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("plan with code %s already exists: %w", plan.Code, ErrDuplicatePlan)
		}
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

func scanPlan(scan func(dest ...any) error) (*domain.Plan, error) {
	plan := &domain.Plan{}
	err := scan(
		&plan.ID,
		&plan.Code,
		&plan.Name,
		&plan.PriceCents,
		&plan.Currency,
		&plan.BillingInterval,
		&plan.IsActive,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// GetByID retrieves a plan by ID
func (r *planRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`

	plan, err := scanPlan(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plan by id: %w", err)
	}

	return plan, nil
}

// GetByCode retrieves a plan by its code
func (r *planRepository) GetByCode(ctx context.Context, code string) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE code = $1`

	plan, err := scanPlan(r.q.QueryRowContext(ctx, query, code).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan with code %s not found: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plan by code: %w", err)
	}

	return plan, nil
}

// List retrieves all plans, optionally only active ones
func (r *planRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY price_cents`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.Plan
	for rows.Next() {
		plan, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}

	return plans, nil
}

// Update updates an existing plan
func (r *planRepository) Update(ctx context.Context, plan *domain.Plan) error {
	query := `
		UPDATE plans
		SET name = $2, price_cents = $3, currency = $4, billing_interval = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		plan.ID,
		plan.Name,
		plan.PriceCents,
		plan.Currency,
		plan.BillingInterval,
		plan.IsActive,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	return requireRow(result, fmt.Sprintf("plan with id %s", plan.ID))
}

// Delete deletes a plan by ID
func (r *planRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM plans WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	return requireRow(result, fmt.Sprintf("plan with id %s", id))
}
