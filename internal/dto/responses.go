package dto

import "github.com/mkoreshkov/saas-backend/internal/domain"

// AuthResponse is the body returned by auth endpoints. Status is always
// set; tokens and user only on success, errors only on failure.
type AuthResponse struct {
	Status      domain.AuthStatus   `json:"status"`
	AccessToken string              `json:"access_token,omitempty"`
	TokenType   string              `json:"token_type,omitempty"`
	ExpiresIn   int                 `json:"expires_in,omitempty"`
	User        *domain.UserSummary `json:"user,omitempty"`
	Errors      []domain.FieldError `json:"errors,omitempty"`
}

// NewAuthResponse maps an auth result to the wire response. The refresh
// token is delivered via cookie, never in the body.
func NewAuthResponse(result *domain.AuthResult) *AuthResponse {
	resp := &AuthResponse{
		Status: result.Status,
		User:   result.User,
		Errors: result.Errors,
	}
	if result.Tokens != nil {
		resp.AccessToken = result.Tokens.AccessToken
		resp.TokenType = result.Tokens.TokenType
		resp.ExpiresIn = result.Tokens.ExpiresIn
	}
	return resp
}

// UserResponse represents a user profile response
type UserResponse struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	FullName         string   `json:"full_name"`
	Phone            *string  `json:"phone"`
	Roles            []string `json:"roles"`
	IsEmailConfirmed bool     `json:"is_email_confirmed"`
	CreatedAt        string   `json:"created_at"`
	LastLoginAt      *string  `json:"last_login_at"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
