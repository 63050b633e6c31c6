package domain

// AuthStatus is the closed set of auth operation outcomes. Expected
// failures are expressed through this enumeration, never as errors.
type AuthStatus string

const (
	StatusSuccess             AuthStatus = "success"
	StatusInvalidCredentials  AuthStatus = "invalid_credentials"
	StatusUserNotFound        AuthStatus = "user_not_found"
	StatusInvalidData         AuthStatus = "invalid_data"
	StatusInvalidToken        AuthStatus = "invalid_token"
	StatusRefreshTokenMissing AuthStatus = "refresh_token_missing"
	StatusRefreshTokenInvalid AuthStatus = "refresh_token_invalid"
	StatusRequiresPhone       AuthStatus = "requires_phone"
	StatusFailed              AuthStatus = "failed"
)

// FieldError is a field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// UserSummary is the user payload embedded in successful auth results.
type UserSummary struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	FullName         string   `json:"full_name"`
	Roles            []string `json:"roles"`
	IsEmailConfirmed bool     `json:"is_email_confirmed"`
}

// AuthResult carries the outcome of an auth operation. Exactly one of the
// success payload (User/Tokens) or the failure Errors is populated.
type AuthResult struct {
	Status AuthStatus   `json:"status"`
	User   *UserSummary `json:"user,omitempty"`
	Tokens *TokenPair   `json:"tokens,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Succeeded reports whether the operation completed.
func (r *AuthResult) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

// Failure builds a result for the given status.
func Failure(status AuthStatus, errs ...FieldError) *AuthResult {
	return &AuthResult{Status: status, Errors: errs}
}

// Success builds a successful result.
func Success(user *UserSummary, tokens *TokenPair) *AuthResult {
	return &AuthResult{Status: StatusSuccess, User: user, Tokens: tokens}
}
