package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoreshkov/saas-backend/internal/domain"
)

func testUser(confirmed bool) *domain.User {
	return &domain.User{
		ID:               "user-1",
		Email:            "user@example.com",
		FullName:         "User One",
		IsEmailConfirmed: confirmed,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, "saas-backend", 15*time.Minute)

	token, err := svc.GenerateAccessToken(testUser(true), []string{domain.RoleUser, domain.RoleAdmin})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "User One", claims.Name)
	assert.Equal(t, []string{domain.RoleUser, domain.RoleAdmin}, claims.Roles)
	assert.True(t, claims.EmailConfirmed)
	assert.Greater(t, claims.Exp, time.Now().Unix())
}

func TestAccessTokenUnconfirmedEmail(t *testing.T) {
	svc := NewTokenService(testSecret, "saas-backend", 15*time.Minute)

	token, err := svc.GenerateAccessToken(testUser(false), nil)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.False(t, claims.EmailConfirmed)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService(testSecret, "saas-backend", 15*time.Minute)
	verifier := NewTokenService("another-secret-key-also-32-characters!!", "saas-backend", 15*time.Minute)

	token, err := issuer.GenerateAccessToken(testUser(true), nil)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestAccessTokenWrongIssuer(t *testing.T) {
	issuer := NewTokenService(testSecret, "someone-else", 15*time.Minute)
	verifier := NewTokenService(testSecret, "saas-backend", 15*time.Minute)

	token, err := issuer.GenerateAccessToken(testUser(true), nil)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	svc := NewTokenService(testSecret, "saas-backend", -time.Minute)

	token, err := svc.GenerateAccessToken(testUser(true), nil)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestAccessTokenGarbage(t *testing.T) {
	svc := NewTokenService(testSecret, "saas-backend", 15*time.Minute)

	_, err := svc.ValidateAccessToken("not.a.jwt")
	assert.Error(t, err)
}
