package repository

import (
	"context"
	"database/sql"

	"github.com/mkoreshkov/saas-backend/pkg/database"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// every repository can run either standalone or inside a unit of work.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repositories holds all repository interfaces
type Repositories struct {
	User         UserRepository
	Token        TokenRepository
	ActionToken  ActionTokenRepository
	Role         RoleRepository
	OAuth        OAuthIdentityRepository
	Plan         PlanRepository
	Subscription SubscriptionRepository
	Team         TeamRepository
	Notification NotificationRepository

	db *database.Postgres
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	r := bind(db.DB)
	r.db = db
	return r
}

func bind(q querier) *Repositories {
	return &Repositories{
		User:         &userRepository{q: q},
		Token:        &tokenRepository{q: q},
		ActionToken:  &actionTokenRepository{q: q},
		Role:         &roleRepository{q: q},
		OAuth:        &oauthIdentityRepository{q: q},
		Plan:         &planRepository{q: q},
		Subscription: &subscriptionRepository{q: q},
		Team:         &teamRepository{q: q},
		Notification: &notificationRepository{q: q},
	}
}

// Atomic runs fn with every repository bound to a single transaction.
// Either all writes issued inside fn commit, or none do.
func (r *Repositories) Atomic(ctx context.Context, fn func(tx *Repositories) error) error {
	if r.db == nil {
		// Already transaction-bound; nested units of work collapse into
		// the enclosing one.
		return fn(r)
	}

	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		return fn(bind(tx))
	})
}
