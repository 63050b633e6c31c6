package domain

import "time"

// User represents a user account. SecurityStamp is an opaque value rotated
// on every credential change; refresh tokens carry a snapshot of it, so a
// stamp rotation invalidates every outstanding session without touching the
// token table.
type User struct {
	ID               string     `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	FullName         string     `json:"full_name" db:"full_name"`
	Phone            *string    `json:"phone" db:"phone"`
	SecurityStamp    string     `json:"-" db:"security_stamp"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	IsEmailConfirmed bool       `json:"is_email_confirmed" db:"is_email_confirmed"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt      *time.Time `json:"last_login_at" db:"last_login_at"`
}

// Role is a named permission bundle assigned to users.
type Role struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Default role names.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// OAuthIdentity links a user to an external identity provider account.
type OAuthIdentity struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Provider       string    `json:"provider" db:"provider"`
	ProviderUserID string    `json:"provider_user_id" db:"provider_user_id"`
	Email          *string   `json:"email" db:"email"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ProviderGoogle is the only external provider currently wired.
const ProviderGoogle = "google"
