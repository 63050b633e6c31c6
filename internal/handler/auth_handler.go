package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/dto"
	"github.com/mkoreshkov/saas-backend/internal/service"
)

const refreshCookiePath = "/api/v1/auth"

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService        service.AuthService
	notifier           service.NotificationService
	logger             *zap.Logger
	refreshTokenCookie string
	refreshExpirySecs  int
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService service.AuthService,
	notifier service.NotificationService,
	logger *zap.Logger,
	refreshTokenCookie string,
	refreshExpirySecs int,
) *AuthHandler {
	return &AuthHandler{
		authService:        authService,
		notifier:           notifier,
		logger:             logger,
		refreshTokenCookie: refreshTokenCookie,
		refreshExpirySecs:  refreshExpirySecs,
	}
}

// respond writes the auth result, managing the refresh token cookie. The
// refresh token travels only in the httpOnly cookie, never in the body.
func (h *AuthHandler) respond(c *gin.Context, result *domain.AuthResult, successCode int) {
	if result.Succeeded() && result.Tokens != nil {
		c.SetCookie(h.refreshTokenCookie, result.Tokens.RefreshToken, h.refreshExpirySecs, refreshCookiePath, "", true, true)
	}

	code := statusCode(result.Status)
	if result.Succeeded() {
		code = successCode
	}

	c.JSON(code, dto.NewAuthResponse(result))
}

// fail reports an unexpected internal failure as the failed outcome.
func (h *AuthHandler) fail(c *gin.Context, op string, err error) {
	h.logger.Error("auth operation failed", zap.String("operation", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewAuthResponse(domain.Failure(domain.StatusFailed)))
}

// refreshTokenFrom reads the refresh token from the request body, falling
// back to the configured cookie.
func (h *AuthHandler) refreshTokenFrom(c *gin.Context, bodyToken string) string {
	if bodyToken != "" {
		return bodyToken
	}
	token, _ := c.Cookie(h.refreshTokenCookie)
	return token
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewAuthResponse(domain.Failure(domain.StatusInvalidData,
			domain.FieldError{Field: "body", Message: err.Error()})))
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, "register", err)
		return
	}

	h.respond(c, result, http.StatusCreated)
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewAuthResponse(domain.Failure(domain.StatusInvalidData,
			domain.FieldError{Field: "body", Message: err.Error()})))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, "login", err)
		return
	}

	h.respond(c, result, http.StatusOK)
}

// GoogleLogin handles sign-in with a Google ID token
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewAuthResponse(domain.Failure(domain.StatusInvalidData,
			domain.FieldError{Field: "body", Message: err.Error()})))
		return
	}

	result, err := h.authService.GoogleLogin(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, "google_login", err)
		return
	}

	h.respond(c, result, http.StatusOK)
}

// Refresh handles token rotation
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.authService.RefreshToken(c.Request.Context(), h.refreshTokenFrom(c, req.RefreshToken))
	if err != nil {
		h.fail(c, "refresh", err)
		return
	}

	if result.Status == domain.StatusRefreshTokenInvalid {
		c.SetCookie(h.refreshTokenCookie, "", -1, refreshCookiePath, "", true, true)
	}

	h.respond(c, result, http.StatusOK)
}

// Revoke handles refresh token revocation
func (h *AuthHandler) Revoke(c *gin.Context) {
	var req dto.RevokeRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.authService.RevokeRefreshToken(c.Request.Context(), h.refreshTokenFrom(c, req.RefreshToken))
	if err != nil {
		h.fail(c, "revoke", err)
		return
	}

	if result.Succeeded() {
		c.SetCookie(h.refreshTokenCookie, "", -1, refreshCookiePath, "", true, true)
	}

	h.respond(c, result, http.StatusOK)
}

// Logout revokes the session's tokens
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	accessToken := c.GetString("access_token")
	refreshToken, _ := c.Cookie(h.refreshTokenCookie)

	if err := h.authService.Logout(c.Request.Context(), userID, accessToken, refreshToken); err != nil {
		h.fail(c, "logout", err)
		return
	}

	c.SetCookie(h.refreshTokenCookie, "", -1, refreshCookiePath, "", true, true)
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Logged out successfully"})
}

// ChangePassword changes the authenticated user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewAuthResponse(domain.Failure(domain.StatusInvalidData,
			domain.FieldError{Field: "body", Message: err.Error()})))
		return
	}

	result, err := h.authService.ChangePassword(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		h.fail(c, "change_password", err)
		return
	}

	h.respond(c, result, http.StatusOK)
}

// ForgotPassword starts the password reset flow
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewAuthResponse(domain.Failure(domain.StatusInvalidData,
			domain.FieldError{Field: "body", Message: err.Error()})))
		return
	}

	result, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, "forgot_password", err)
		return
	}

	h.respond(c, result, http.StatusOK)
}

// ResetPassword completes the password reset flow
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewAuthResponse(domain.Failure(domain.StatusInvalidData,
			domain.FieldError{Field: "body", Message: err.Error()})))
		return
	}

	result, err := h.authService.ResetPassword(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, "reset_password", err)
		return
	}

	h.respond(c, result, http.StatusOK)
}

// ConfirmEmail confirms the user's email address
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	var req dto.ConfirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// The token may also arrive as a query parameter from the mailed link
		req.Token = c.Query("token")
	}
	if req.Token == "" {
		c.JSON(http.StatusBadRequest, dto.NewAuthResponse(domain.Failure(domain.StatusInvalidData,
			domain.FieldError{Field: "token", Message: "token is required"})))
		return
	}

	result, err := h.authService.ConfirmEmail(c.Request.Context(), req.Token)
	if err != nil {
		h.fail(c, "confirm_email", err)
		return
	}

	h.respond(c, result, http.StatusOK)
}

// GetMe returns the authenticated user's profile
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.fail(c, "get_me", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetNotifications returns the user's recent notification log
func (h *AuthHandler) GetNotifications(c *gin.Context) {
	notifications, err := h.notifier.ListForUser(c.Request.Context(), c.GetString("user_id"), 50)
	if err != nil {
		h.fail(c, "get_notifications", err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}
