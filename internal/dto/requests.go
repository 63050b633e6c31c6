package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries the Google ID token obtained by the client
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
	Phone   string `json:"phone"`
}

// RefreshRequest represents a token refresh request; the token may also
// arrive via cookie, in which case the body is empty
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RevokeRequest represents a refresh token revocation request
type RevokeRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents a password change for an
// authenticated user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ForgotPasswordRequest starts the password reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest completes the password reset flow
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ConfirmEmailRequest confirms a user's email address
type ConfirmEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// CreatePlanRequest represents a plan creation request
type CreatePlanRequest struct {
	Code            string `json:"code" binding:"required"`
	Name            string `json:"name" binding:"required"`
	PriceCents      int64  `json:"price_cents" binding:"min=0"`
	Currency        string `json:"currency" binding:"required"`
	BillingInterval string `json:"billing_interval" binding:"required,oneof=monthly yearly"`
}

// UpdatePlanRequest represents a plan update request
type UpdatePlanRequest struct {
	Name            string `json:"name" binding:"required"`
	PriceCents      int64  `json:"price_cents" binding:"min=0"`
	Currency        string `json:"currency" binding:"required"`
	BillingInterval string `json:"billing_interval" binding:"required,oneof=monthly yearly"`
	IsActive        bool   `json:"is_active"`
}

// SubscribeRequest subscribes a team to a plan
type SubscribeRequest struct {
	PlanCode string `json:"plan_code" binding:"required"`
}

// CreateTeamRequest represents a team creation request
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddMemberRequest adds a user to a team
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=owner member"`
}
