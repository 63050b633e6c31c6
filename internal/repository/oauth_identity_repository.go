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

// oauthIdentityRepository implements OAuthIdentityRepository interface
type oauthIdentityRepository struct {
	q querier
}

// Create links an external identity to a user
func (r *oauthIdentityRepository) Create(ctx context.Context, identity *domain.OAuthIdentity) error {
	query := `
		INSERT INTO oauth_identities (id, user_id, provider, provider_user_id, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if identity.ID == "" {
		identity.ID = uuid.New().String()
	}
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now()
	}

	_, err := r.q.ExecContext(ctx, query,
		identity.ID,
		identity.UserID,
		identity.Provider,
		identity.ProviderUserID,
		identity.Email,
		identity.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("oauth identity already exists: %w", ErrDuplicateOAuthIdentity)
		}
		return fmt.Errorf("failed to create oauth identity: %w", err)
	}

	return nil
}

// GetByProvider retrieves an identity link by provider and external user id
func (r *oauthIdentityRepository) GetByProvider(ctx context.Context, provider, providerUserID string) (*domain.OAuthIdentity, error) {
	query := `
		SELECT id, user_id, provider, provider_user_id, email, created_at
		FROM oauth_identities
		WHERE provider = $1 AND provider_user_id = $2
	`

	identity := &domain.OAuthIdentity{}
	var email sql.NullString

	err := r.q.QueryRowContext(ctx, query, provider, providerUserID).Scan(
		&identity.ID,
		&identity.UserID,
		&identity.Provider,
		&identity.ProviderUserID,
		&email,
		&identity.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("oauth identity not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get oauth identity: %w", err)
	}

	if email.Valid {
		identity.Email = &email.String
	}

	return identity, nil
}
