package service

import (
	"context"
	"errors"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/repository"
)

// ErrLastOwner marks an attempt to remove the only owner of a team.
var ErrLastOwner = errors.New("cannot remove the last owner of a team")

// teamService implements TeamService interface
type teamService struct {
	repos *repository.Repositories
}

// NewTeamService creates a new team service
func NewTeamService(repos *repository.Repositories) TeamService {
	return &teamService{repos: repos}
}

// Create creates a team with the creator as its first owner.
func (s *teamService) Create(ctx context.Context, ownerID, name string) (*domain.Team, error) {
	team := &domain.Team{
		Name:    name,
		OwnerID: ownerID,
	}

	err := s.repos.Atomic(ctx, func(tx *repository.Repositories) error {
		if err := tx.Team.Create(ctx, team); err != nil {
			return err
		}
		return tx.Team.AddMember(ctx, &domain.TeamMember{
			TeamID: team.ID,
			UserID: ownerID,
			Role:   domain.TeamRoleOwner,
		})
	})
	if err != nil {
		return nil, err
	}

	return team, nil
}

// Get retrieves a team by ID.
func (s *teamService) Get(ctx context.Context, teamID string) (*domain.Team, error) {
	return s.repos.Team.GetByID(ctx, teamID)
}

// ListForUser returns the teams the user belongs to.
func (s *teamService) ListForUser(ctx context.Context, userID string) ([]*domain.Team, error) {
	return s.repos.Team.ListForUser(ctx, userID)
}

// AddMember adds a user to a team.
func (s *teamService) AddMember(ctx context.Context, teamID, userID, role string) error {
	return s.repos.Team.AddMember(ctx, &domain.TeamMember{
		TeamID: teamID,
		UserID: userID,
		Role:   role,
	})
}

// RemoveMember removes a user from a team. The last owner cannot leave;
// the check and the delete run in one unit of work.
func (s *teamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	return s.repos.Atomic(ctx, func(tx *repository.Repositories) error {
		member, err := tx.Team.GetMember(ctx, teamID, userID)
		if err != nil {
			return err
		}

		if member.Role == domain.TeamRoleOwner {
			owners, err := tx.Team.CountOwners(ctx, teamID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return ErrLastOwner
			}
		}

		return tx.Team.RemoveMember(ctx, teamID, userID)
	})
}

// ListMembers returns the team's members.
func (s *teamService) ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error) {
	return s.repos.Team.ListMembers(ctx, teamID)
}

// GetMember returns one team membership.
func (s *teamService) GetMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error) {
	return s.repos.Team.GetMember(ctx, teamID, userID)
}
