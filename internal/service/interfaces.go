package service

import (
	"context"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/dto"
)

// AuthService defines the authentication operations. Expected failures
// are reported through the result's status; a non-nil error means the
// operation itself broke (storage, crypto, downstream service).
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.AuthResult, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*domain.AuthResult, error)
	GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*domain.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	Logout(ctx context.Context, userID, accessToken, refreshToken string) error
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) (*domain.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) (*domain.AuthResult, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*domain.AuthResult, error)
	ConfirmEmail(ctx context.Context, token string) (*domain.AuthResult, error)
	CurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// PlanService manages the plan catalog.
type PlanService interface {
	Create(ctx context.Context, req *dto.CreatePlanRequest) (*domain.Plan, error)
	Get(ctx context.Context, id string) (*domain.Plan, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Plan, error)
	Update(ctx context.Context, id string, req *dto.UpdatePlanRequest) (*domain.Plan, error)
	Delete(ctx context.Context, id string) error
}

// SubscriptionService manages team subscriptions.
type SubscriptionService interface {
	Subscribe(ctx context.Context, teamID, planCode string) (*domain.Subscription, error)
	Cancel(ctx context.Context, teamID string) (*domain.Subscription, error)
	Current(ctx context.Context, teamID string) (*domain.Subscription, error)
	History(ctx context.Context, teamID string) ([]*domain.Subscription, error)
}

// TeamService manages teams and memberships.
type TeamService interface {
	Create(ctx context.Context, ownerID, name string) (*domain.Team, error)
	Get(ctx context.Context, teamID string) (*domain.Team, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Team, error)
	AddMember(ctx context.Context, teamID, userID, role string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error)
	GetMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error)
}
