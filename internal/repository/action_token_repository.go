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

// actionTokenRepository implements ActionTokenRepository interface
type actionTokenRepository struct {
	q querier
}

// Create creates a new single-use action token
func (r *actionTokenRepository) Create(ctx context.Context, token *domain.ActionToken) error {
	query := `
		INSERT INTO action_tokens (id, user_id, purpose, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := r.q.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Purpose,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("action token with hash already exists: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create action token: %w", err)
	}

	return nil
}

// GetByHash retrieves an action token by purpose and hash
func (r *actionTokenRepository) GetByHash(ctx context.Context, purpose, tokenHash string) (*domain.ActionToken, error) {
	query := `
		SELECT id, user_id, purpose, token_hash, expires_at, created_at
		FROM action_tokens
		WHERE purpose = $1 AND token_hash = $2
	`

	token := &domain.ActionToken{}
	err := r.q.QueryRowContext(ctx, query, purpose, tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.Purpose,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("action token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get action token: %w", err)
	}

	return token, nil
}

// Delete consumes an action token and reports whether it still existed
func (r *actionTokenRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM action_tokens WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete action token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// DeleteForUser removes all outstanding tokens of one purpose for a user,
// so only the most recently issued token stays valid.
func (r *actionTokenRepository) DeleteForUser(ctx context.Context, userID, purpose string) error {
	query := `DELETE FROM action_tokens WHERE user_id = $1 AND purpose = $2`

	if _, err := r.q.ExecContext(ctx, query, userID, purpose); err != nil {
		return fmt.Errorf("failed to delete action tokens for user: %w", err)
	}

	return nil
}
