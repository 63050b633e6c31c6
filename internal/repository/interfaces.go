package repository

import (
	"context"
	"time"

	"github.com/mkoreshkov/saas-backend/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, userID string) error
	// UpdatePassword writes the new hash and the rotated security stamp in
	// one statement so the two can never diverge.
	UpdatePassword(ctx context.Context, userID, passwordHash, securityStamp string) error
	ConfirmEmail(ctx context.Context, userID string) error
}

// TokenRepository defines methods for refresh token descriptors
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	// DeleteByHash reports whether a row was actually removed; deleting an
	// absent token is not an error.
	DeleteByHash(ctx context.Context, tokenHash string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ActionTokenRepository stores single-use password reset and email
// confirmation tokens.
type ActionTokenRepository interface {
	Create(ctx context.Context, token *domain.ActionToken) error
	GetByHash(ctx context.Context, purpose, tokenHash string) (*domain.ActionToken, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteForUser(ctx context.Context, userID, purpose string) error
}

// RoleRepository defines methods for role lookups and assignments
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	ListForUser(ctx context.Context, userID string) ([]string, error)
	Assign(ctx context.Context, userID, roleID string) error
	Remove(ctx context.Context, userID, roleID string) error
}

// OAuthIdentityRepository defines methods for external identity links
type OAuthIdentityRepository interface {
	Create(ctx context.Context, identity *domain.OAuthIdentity) error
	GetByProvider(ctx context.Context, provider, providerUserID string) (*domain.OAuthIdentity, error)
}

// PlanRepository defines methods for plan CRUD
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) error
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	GetByCode(ctx context.Context, code string) (*domain.Plan, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, id string) error
}

// SubscriptionRepository defines methods for team subscriptions
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	GetActiveByTeam(ctx context.Context, teamID string) (*domain.Subscription, error)
	ListByTeam(ctx context.Context, teamID string) ([]*domain.Subscription, error)
	SetStatus(ctx context.Context, id, status string, canceledAt *time.Time) error
}

// TeamRepository defines methods for teams and memberships
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Team, error)
	AddMember(ctx context.Context, member *domain.TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error)
	GetMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error)
	CountOwners(ctx context.Context, teamID string) (int, error)
}

// NotificationRepository persists the immutable send log
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
}
