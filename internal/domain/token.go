package domain

import "time"

// RefreshToken is the persisted descriptor of a long-lived session token.
// Only the keyed hash of the bearer-visible value is stored; the raw value
// is returned exactly once, at creation or rotation.
type RefreshToken struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	TokenHash     string    `json:"-" db:"token_hash"`
	SecurityStamp string    `json:"-" db:"security_stamp"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Action token purposes.
const (
	ActionPasswordReset = "password_reset"
	ActionEmailConfirm  = "email_confirm"
)

// ActionToken is a single-use token for password reset or email
// confirmation, stored hashed like a refresh token.
type ActionToken struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Purpose   string    `json:"purpose" db:"purpose"`
	TokenHash string    `json:"-" db:"token_hash"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TokenClaims are the verified claims of an access token.
type TokenClaims struct {
	UserID         string   `json:"user_id"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Roles          []string `json:"roles"`
	EmailConfirmed bool     `json:"email_confirmed"`
	Exp            int64    `json:"exp"`
	Iat            int64    `json:"iat"`
}

// IsExpired checks if the token is expired
func (tc TokenClaims) IsExpired() bool {
	return time.Now().Unix() > tc.Exp
}

// TokenPair bundles the access token with the out-of-band refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}
