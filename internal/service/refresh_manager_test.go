package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/repository"
)

func newRefreshFixture(t *testing.T) (*RefreshManager, *repository.Repositories, *domain.User) {
	t.Helper()

	repos := newTestRepos()
	manager := NewRefreshManager(repos, testHashKey, time.Hour)

	user := &domain.User{
		Email:         "owner@example.com",
		FullName:      "Owner",
		SecurityStamp: uuid.NewString(),
		IsActive:      true,
	}
	require.NoError(t, repos.User.Create(context.Background(), user))

	return manager, repos, user
}

func TestRefreshCreateAndValidate(t *testing.T) {
	manager, _, user := newRefreshFixture(t)
	ctx := context.Background()

	raw, err := manager.Create(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	resolved, err := manager.Validate(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestRefreshValidateUnknownToken(t *testing.T) {
	manager, _, _ := newRefreshFixture(t)

	_, err := manager.Validate(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestRefreshRotateConsumesToken(t *testing.T) {
	manager, repos, user := newRefreshFixture(t)
	ctx := context.Background()

	raw, err := manager.Create(ctx, user)
	require.NoError(t, err)

	newRaw, rotatedUser, err := manager.Rotate(ctx, raw)
	require.NoError(t, err)
	assert.NotEqual(t, raw, newRaw)
	assert.Equal(t, user.ID, rotatedUser.ID)

	// Exactly one token remains; the consumed one is gone.
	assert.Equal(t, 1, repos.Token.(*fakeTokenRepo).count())

	_, _, err = manager.Rotate(ctx, raw)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestRefreshRotateRejectsStaleStamp(t *testing.T) {
	manager, repos, user := newRefreshFixture(t)
	ctx := context.Background()

	raw, err := manager.Create(ctx, user)
	require.NoError(t, err)

	// Credential change rotates the stamp out from under the token.
	require.NoError(t, repos.User.UpdatePassword(ctx, user.ID, "new-hash", uuid.NewString()))

	_, _, err = manager.Rotate(ctx, raw)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)

	// The stale token was consumed, not left behind.
	assert.Equal(t, 0, repos.Token.(*fakeTokenRepo).count())
}

func TestRefreshValidateRejectsInactiveUser(t *testing.T) {
	manager, repos, user := newRefreshFixture(t)
	ctx := context.Background()

	raw, err := manager.Create(ctx, user)
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, repos.User.Update(ctx, user))

	_, err = manager.Validate(ctx, raw)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestRefreshRevokeIsIdempotent(t *testing.T) {
	manager, repos, user := newRefreshFixture(t)
	ctx := context.Background()

	raw, err := manager.Create(ctx, user)
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(ctx, raw))
	require.NoError(t, manager.Revoke(ctx, raw))
	assert.Equal(t, 0, repos.Token.(*fakeTokenRepo).count())
}

func TestRefreshPurgeExpired(t *testing.T) {
	repos := newTestRepos()
	manager := NewRefreshManager(repos, testHashKey, -time.Minute)

	user := &domain.User{
		Email:         "expired@example.com",
		SecurityStamp: uuid.NewString(),
		IsActive:      true,
	}
	ctx := context.Background()
	require.NoError(t, repos.User.Create(ctx, user))

	raw, err := manager.Create(ctx, user)
	require.NoError(t, err)

	_, err = manager.Validate(ctx, raw)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)

	_, err = manager.Create(ctx, user)
	require.NoError(t, err)

	purged, err := manager.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, 0, repos.Token.(*fakeTokenRepo).count())
}
