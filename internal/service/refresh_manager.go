package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/repository"
)

// ErrRefreshTokenInvalid marks a refresh token that is unknown, expired,
// already rotated, or issued before the user's credentials changed.
var ErrRefreshTokenInvalid = errors.New("refresh token invalid")

// RefreshManager mints, validates, rotates and revokes opaque refresh
// tokens. The raw value leaves the service exactly once; only its keyed
// hash is persisted, so a database leak does not yield usable tokens.
type RefreshManager struct {
	repos   *repository.Repositories
	hashKey []byte
	expiry  time.Duration
}

// NewRefreshManager creates a new refresh token manager.
func NewRefreshManager(repos *repository.Repositories, hashKey string, expiry time.Duration) *RefreshManager {
	return &RefreshManager{
		repos:   repos,
		hashKey: []byte(hashKey),
		expiry:  expiry,
	}
}

// hashToken computes the keyed hash stored in place of the raw token.
func (m *RefreshManager) hashToken(raw string) string {
	mac := hmac.New(sha256.New, m.hashKey)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// generateRaw produces an unguessable opaque token value.
func generateRaw() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ExpirySeconds returns the refresh token lifetime in seconds.
func (m *RefreshManager) ExpirySeconds() int {
	return int(m.expiry.Seconds())
}

// Create mints a refresh token for the user, snapshotting the user's
// current security stamp, and returns the raw value.
func (m *RefreshManager) Create(ctx context.Context, user *domain.User) (string, error) {
	return m.createWith(ctx, m.repos, user)
}

func (m *RefreshManager) createWith(ctx context.Context, repos *repository.Repositories, user *domain.User) (string, error) {
	raw, err := generateRaw()
	if err != nil {
		return "", err
	}

	token := &domain.RefreshToken{
		UserID:        user.ID,
		TokenHash:     m.hashToken(raw),
		SecurityStamp: user.SecurityStamp,
		ExpiresAt:     time.Now().Add(m.expiry),
	}

	if err := repos.Token.Create(ctx, token); err != nil {
		return "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	return raw, nil
}

// Validate resolves a raw refresh token to its owner. A token that is
// unknown, expired, or carries a stale security stamp yields
// ErrRefreshTokenInvalid; stale tokens are deleted on sight.
func (m *RefreshManager) Validate(ctx context.Context, raw string) (*domain.User, error) {
	tokenHash := m.hashToken(raw)

	token, err := m.repos.Token.GetByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if time.Now().After(token.ExpiresAt) {
		_, _ = m.repos.Token.DeleteByHash(ctx, tokenHash)
		return nil, ErrRefreshTokenInvalid
	}

	user, err := m.repos.User.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive || user.SecurityStamp != token.SecurityStamp {
		_, _ = m.repos.Token.DeleteByHash(ctx, tokenHash)
		return nil, ErrRefreshTokenInvalid
	}

	return user, nil
}

// Rotate atomically consumes a raw refresh token and mints a
// replacement for the same user. Concurrent rotations of the same token
// race on the delete; at most one succeeds, the rest observe
// ErrRefreshTokenInvalid.
func (m *RefreshManager) Rotate(ctx context.Context, raw string) (string, *domain.User, error) {
	tokenHash := m.hashToken(raw)

	var newRaw string
	var user *domain.User

	err := m.repos.Atomic(ctx, func(tx *repository.Repositories) error {
		token, err := tx.Token.GetByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRefreshTokenInvalid
			}
			return fmt.Errorf("failed to get refresh token: %w", err)
		}

		deleted, err := tx.Token.DeleteByHash(ctx, tokenHash)
		if err != nil {
			return fmt.Errorf("failed to consume refresh token: %w", err)
		}
		if !deleted {
			return ErrRefreshTokenInvalid
		}

		if time.Now().After(token.ExpiresAt) {
			return ErrRefreshTokenInvalid
		}

		user, err = tx.User.GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRefreshTokenInvalid
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		if !user.IsActive || user.SecurityStamp != token.SecurityStamp {
			return ErrRefreshTokenInvalid
		}

		newRaw, err = m.createWith(ctx, tx, user)
		return err
	})
	if err != nil {
		return "", nil, err
	}

	return newRaw, user, nil
}

// Revoke deletes a refresh token. Revoking an unknown token is not an
// error; revocation is idempotent.
func (m *RefreshManager) Revoke(ctx context.Context, raw string) error {
	if _, err := m.repos.Token.DeleteByHash(ctx, m.hashToken(raw)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// PurgeExpired removes refresh tokens past their expiry.
func (m *RefreshManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.repos.Token.DeleteExpired(ctx, time.Now())
}
