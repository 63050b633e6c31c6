package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/dto"
	"github.com/mkoreshkov/saas-backend/internal/events"
	"github.com/mkoreshkov/saas-backend/internal/repository"
	"github.com/mkoreshkov/saas-backend/internal/utils"
)

// authService implements AuthService interface
type authService struct {
	repos              *repository.Repositories
	tokenService       *TokenService
	refreshManager     *RefreshManager
	blacklistService   TokenBlacklist
	notifier           NotificationService
	publisher          events.Publisher
	googleVerifier     GoogleVerifier
	logger             *zap.Logger
	bcryptCost         int
	resetTokenExpiry   time.Duration
	confirmTokenExpiry time.Duration
	baseURL            string
	requirePhone       bool
}

// NewAuthService creates a new auth service
func NewAuthService(
	repos *repository.Repositories,
	tokenService *TokenService,
	refreshManager *RefreshManager,
	blacklistService TokenBlacklist,
	notifier NotificationService,
	publisher events.Publisher,
	googleVerifier GoogleVerifier,
	logger *zap.Logger,
	bcryptCost int,
	resetTokenExpiry, confirmTokenExpiry time.Duration,
	baseURL string,
	requirePhone bool,
) AuthService {
	return &authService{
		repos:              repos,
		tokenService:       tokenService,
		refreshManager:     refreshManager,
		blacklistService:   blacklistService,
		notifier:           notifier,
		publisher:          publisher,
		googleVerifier:     googleVerifier,
		logger:             logger,
		bcryptCost:         bcryptCost,
		resetTokenExpiry:   resetTokenExpiry,
		confirmTokenExpiry: confirmTokenExpiry,
		baseURL:            baseURL,
		requirePhone:       requirePhone,
	}
}

// hashActionToken hashes single-use action tokens for storage.
func hashActionToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// summarize builds the user payload for successful results.
func summarize(user *domain.User, roles []string) *domain.UserSummary {
	return &domain.UserSummary{
		ID:               user.ID,
		Email:            user.Email,
		FullName:         user.FullName,
		Roles:            roles,
		IsEmailConfirmed: user.IsEmailConfirmed,
	}
}

// issueTokens mints an access/refresh token pair for the user.
func (s *authService) issueTokens(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	roles, err := s.repos.Role.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}

	accessToken, err := s.tokenService.GenerateAccessToken(user, roles)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.refreshManager.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	return domain.Success(summarize(user, roles), &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenService.AccessTokenExpirySeconds(),
	}), nil
}

// issueActionToken replaces any outstanding token of the same purpose and
// returns the raw single-use value.
func (s *authService) issueActionToken(ctx context.Context, repos *repository.Repositories, userID, purpose string, expiry time.Duration) (string, error) {
	if err := repos.ActionToken.DeleteForUser(ctx, userID, purpose); err != nil {
		return "", err
	}

	raw, err := generateRaw()
	if err != nil {
		return "", err
	}

	token := &domain.ActionToken{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: hashActionToken(raw),
		ExpiresAt: time.Now().Add(expiry),
	}

	if err := repos.ActionToken.Create(ctx, token); err != nil {
		return "", fmt.Errorf("failed to save action token: %w", err)
	}

	return raw, nil
}

// assignDefaultRole grants the base role to a new user.
func (s *authService) assignDefaultRole(ctx context.Context, repos *repository.Repositories, userID string) error {
	role, err := repos.Role.GetByName(ctx, domain.RoleUser)
	if err != nil {
		return fmt.Errorf("failed to get default role: %w", err)
	}
	return repos.Role.Assign(ctx, userID, role.ID)
}

// Register creates a new account and signs the user in.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.AuthResult, error) {
	email := utils.SanitizeEmail(req.Email)

	var fieldErrors []domain.FieldError
	if !utils.ValidateEmail(email) {
		fieldErrors = append(fieldErrors, domain.FieldError{Field: "email", Message: "invalid email format"})
	}
	if !ValidatePassword(req.Password) {
		fieldErrors = append(fieldErrors, domain.FieldError{Field: "password", Message: PasswordPolicyMessage})
	}
	if req.FullName == "" {
		fieldErrors = append(fieldErrors, domain.FieldError{Field: "full_name", Message: "full name is required"})
	}
	if len(fieldErrors) > 0 {
		return domain.Failure(domain.StatusInvalidData, fieldErrors...), nil
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:         email,
		PasswordHash:  passwordHash,
		FullName:      req.FullName,
		SecurityStamp: uuid.NewString(),
		IsActive:      true,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	var confirmToken string
	err = s.repos.Atomic(ctx, func(tx *repository.Repositories) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		if err := s.assignDefaultRole(ctx, tx, user.ID); err != nil {
			return err
		}
		confirmToken, err = s.issueActionToken(ctx, tx, user.ID, domain.ActionEmailConfirm, s.confirmTokenExpiry)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.Failure(domain.StatusInvalidData,
				domain.FieldError{Field: "email", Message: "email is already in use"}), nil
		}
		return nil, err
	}

	confirmURL := fmt.Sprintf("%s/confirm-email?token=%s", s.baseURL, confirmToken)
	if err := s.notifier.SendEmailConfirmation(ctx, user, confirmURL); err != nil {
		s.logger.Error("failed to send confirmation email", zap.String("user_id", user.ID), zap.Error(err))
	}

	if err := s.publisher.UserRegistered(ctx, domain.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		Method:       "password",
		RegisteredAt: time.Now(),
	}); err != nil {
		s.logger.Error("failed to publish registration event", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issueTokens(ctx, user)
}

// Login authenticates a user with email and password.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*domain.AuthResult, error) {
	user, err := s.repos.User.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Failure(domain.StatusUserNotFound), nil
		}
		return nil, err
	}

	if !user.IsActive || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return domain.Failure(domain.StatusInvalidCredentials), nil
	}

	if err := s.repos.User.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issueTokens(ctx, user)
}

// GoogleLogin signs a user in with a Google ID token, linking or
// provisioning the account as needed.
func (s *authService) GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*domain.AuthResult, error) {
	identity, err := s.googleVerifier.Verify(ctx, req.IDToken)
	if err != nil {
		s.logger.Info("google id token rejected", zap.Error(err))
		return domain.Failure(domain.StatusInvalidToken), nil
	}

	if identity.Email == "" || !identity.EmailVerified {
		return domain.Failure(domain.StatusInvalidToken), nil
	}

	user, err := s.resolveGoogleUser(ctx, identity, req.Phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return domain.Failure(domain.StatusRequiresPhone,
			domain.FieldError{Field: "phone", Message: "a phone number is required to create an account"}), nil
	}

	if !user.IsActive {
		return domain.Failure(domain.StatusInvalidCredentials), nil
	}

	if err := s.repos.User.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issueTokens(ctx, user)
}

// resolveGoogleUser finds the local account for a verified Google
// identity, linking by email or provisioning a new account. A nil user
// with nil error means a phone number is required first.
func (s *authService) resolveGoogleUser(ctx context.Context, identity *GoogleIdentity, phone string) (*domain.User, error) {
	link, err := s.repos.OAuth.GetByProvider(ctx, domain.ProviderGoogle, identity.Subject)
	if err == nil {
		return s.repos.User.GetByID(ctx, link.UserID)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	email := utils.SanitizeEmail(identity.Email)

	user, err := s.repos.User.GetByEmail(ctx, email)
	if err == nil {
		// Existing password account with the same verified email; link it.
		if err := s.repos.OAuth.Create(ctx, &domain.OAuthIdentity{
			UserID:         user.ID,
			Provider:       domain.ProviderGoogle,
			ProviderUserID: identity.Subject,
			Email:          &email,
		}); err != nil && !errors.Is(err, repository.ErrDuplicateOAuthIdentity) {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if phone == "" {
		phone = identity.Phone
	}
	if s.requirePhone && phone == "" {
		return nil, nil
	}

	user = &domain.User{
		Email:            email,
		FullName:         identity.Name,
		SecurityStamp:    uuid.NewString(),
		IsActive:         true,
		IsEmailConfirmed: true,
	}
	if phone != "" {
		user.Phone = &phone
	}

	err = s.repos.Atomic(ctx, func(tx *repository.Repositories) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		if err := s.assignDefaultRole(ctx, tx, user.ID); err != nil {
			return err
		}
		return tx.OAuth.Create(ctx, &domain.OAuthIdentity{
			UserID:         user.ID,
			Provider:       domain.ProviderGoogle,
			ProviderUserID: identity.Subject,
			Email:          &email,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.UserRegistered(ctx, domain.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		Method:       "google",
		RegisteredAt: time.Now(),
	}); err != nil {
		s.logger.Error("failed to publish registration event", zap.String("user_id", user.ID), zap.Error(err))
	}

	if err := s.notifier.SendWelcome(ctx, user); err != nil {
		s.logger.Error("failed to send welcome email", zap.String("user_id", user.ID), zap.Error(err))
	}

	return user, nil
}

// RefreshToken rotates a refresh token and mints a new token pair.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if refreshToken == "" {
		return domain.Failure(domain.StatusRefreshTokenMissing), nil
	}

	newRefresh, user, err := s.refreshManager.Rotate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenInvalid) {
			return domain.Failure(domain.StatusRefreshTokenInvalid), nil
		}
		return nil, err
	}

	roles, err := s.repos.Role.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}

	accessToken, err := s.tokenService.GenerateAccessToken(user, roles)
	if err != nil {
		return nil, err
	}

	return domain.Success(summarize(user, roles), &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenService.AccessTokenExpirySeconds(),
	}), nil
}

// RevokeRefreshToken invalidates a refresh token. Revoking a token that
// is already gone still succeeds.
func (s *authService) RevokeRefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if refreshToken == "" {
		return domain.Failure(domain.StatusRefreshTokenMissing), nil
	}

	if err := s.refreshManager.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	return &domain.AuthResult{Status: domain.StatusSuccess}, nil
}

// Logout revokes the session's refresh token and blacklists the access
// token for its remaining lifetime.
func (s *authService) Logout(ctx context.Context, userID, accessToken, refreshToken string) error {
	if refreshToken != "" {
		if err := s.refreshManager.Revoke(ctx, refreshToken); err != nil {
			s.logger.Warn("failed to revoke refresh token on logout", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if accessToken != "" {
		if claims, err := s.tokenService.ValidateAccessToken(accessToken); err == nil {
			remaining := time.Until(time.Unix(claims.Exp, 0))
			if remaining > 0 {
				if err := s.blacklistService.AddToken(ctx, accessToken, remaining); err != nil {
					s.logger.Warn("failed to blacklist access token", zap.String("user_id", userID), zap.Error(err))
				}
			}
		}
	}

	return nil
}

// ChangePassword verifies the current password, applies the new one and
// rotates the security stamp, cutting off every outstanding session. A
// fresh token pair is issued so the current session continues.
func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) (*domain.AuthResult, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Failure(domain.StatusUserNotFound), nil
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return domain.Failure(domain.StatusInvalidCredentials), nil
	}

	if !ValidatePassword(req.NewPassword) {
		return domain.Failure(domain.StatusInvalidData,
			domain.FieldError{Field: "new_password", Message: PasswordPolicyMessage}), nil
	}

	passwordHash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = passwordHash
	user.SecurityStamp = uuid.NewString()

	if err := s.repos.User.UpdatePassword(ctx, user.ID, user.PasswordHash, user.SecurityStamp); err != nil {
		return nil, err
	}

	if err := s.publisher.PasswordChanged(ctx, domain.PasswordChangedEvent{
		UserID:    user.ID,
		ChangedAt: time.Now(),
		Source:    "change",
	}); err != nil {
		s.logger.Error("failed to publish password change event", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issueTokens(ctx, user)
}

// ForgotPassword starts the reset flow. The outcome is identical whether
// or not the email belongs to an account, so addresses cannot be probed.
func (s *authService) ForgotPassword(ctx context.Context, email string) (*domain.AuthResult, error) {
	user, err := s.repos.User.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.AuthResult{Status: domain.StatusSuccess}, nil
		}
		return nil, err
	}

	if !user.IsActive {
		return &domain.AuthResult{Status: domain.StatusSuccess}, nil
	}

	resetToken, err := s.issueActionToken(ctx, s.repos, user.ID, domain.ActionPasswordReset, s.resetTokenExpiry)
	if err != nil {
		return nil, err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, resetToken)
	if err := s.notifier.SendPasswordReset(ctx, user, resetURL); err != nil {
		s.logger.Error("failed to send password reset email", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &domain.AuthResult{Status: domain.StatusSuccess}, nil
}

// ResetPassword completes the reset flow with a single-use token.
func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*domain.AuthResult, error) {
	if !ValidatePassword(req.NewPassword) {
		return domain.Failure(domain.StatusInvalidData,
			domain.FieldError{Field: "new_password", Message: PasswordPolicyMessage}), nil
	}

	token, err := s.repos.ActionToken.GetByHash(ctx, domain.ActionPasswordReset, hashActionToken(req.Token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Failure(domain.StatusInvalidToken), nil
		}
		return nil, err
	}

	if time.Now().After(token.ExpiresAt) {
		_, _ = s.repos.ActionToken.Delete(ctx, token.ID)
		return domain.Failure(domain.StatusInvalidToken), nil
	}

	passwordHash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	consumed := false
	err = s.repos.Atomic(ctx, func(tx *repository.Repositories) error {
		consumed, err = tx.ActionToken.Delete(ctx, token.ID)
		if err != nil || !consumed {
			return err
		}
		return tx.User.UpdatePassword(ctx, token.UserID, passwordHash, uuid.NewString())
	})
	if err != nil {
		return nil, err
	}
	if !consumed {
		// Lost the race against a concurrent reset with the same token.
		return domain.Failure(domain.StatusInvalidToken), nil
	}

	if err := s.publisher.PasswordChanged(ctx, domain.PasswordChangedEvent{
		UserID:    token.UserID,
		ChangedAt: time.Now(),
		Source:    "reset",
	}); err != nil {
		s.logger.Error("failed to publish password change event", zap.String("user_id", token.UserID), zap.Error(err))
	}

	return &domain.AuthResult{Status: domain.StatusSuccess}, nil
}

// ConfirmEmail marks the user's email as confirmed with a single-use
// token.
func (s *authService) ConfirmEmail(ctx context.Context, rawToken string) (*domain.AuthResult, error) {
	token, err := s.repos.ActionToken.GetByHash(ctx, domain.ActionEmailConfirm, hashActionToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Failure(domain.StatusInvalidToken), nil
		}
		return nil, err
	}

	if time.Now().After(token.ExpiresAt) {
		_, _ = s.repos.ActionToken.Delete(ctx, token.ID)
		return domain.Failure(domain.StatusInvalidToken), nil
	}

	consumed := false
	err = s.repos.Atomic(ctx, func(tx *repository.Repositories) error {
		consumed, err = tx.ActionToken.Delete(ctx, token.ID)
		if err != nil || !consumed {
			return err
		}
		return tx.User.ConfirmEmail(ctx, token.UserID)
	})
	if err != nil {
		return nil, err
	}
	if !consumed {
		return domain.Failure(domain.StatusInvalidToken), nil
	}

	return &domain.AuthResult{Status: domain.StatusSuccess}, nil
}

// CurrentUser returns the authenticated user's profile.
func (s *authService) CurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles, err := s.repos.Role.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}

	resp := &dto.UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		FullName:         user.FullName,
		Phone:            user.Phone,
		Roles:            roles,
		IsEmailConfirmed: user.IsEmailConfirmed,
		CreatedAt:        user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		lastLogin := user.LastLoginAt.Format(time.RFC3339)
		resp.LastLoginAt = &lastLogin
	}

	return resp, nil
}

// ValidateToken verifies an access token and checks the blacklist.
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.tokenService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	blacklisted, err := s.blacklistService.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if blacklisted {
		return nil, fmt.Errorf("token has been revoked")
	}

	return claims, nil
}
