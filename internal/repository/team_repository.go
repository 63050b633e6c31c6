package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mkoreshkov/saas-backend/internal/domain"
)

// teamRepository implements TeamRepository interface
type teamRepository struct {
	q querier
}

const teamColumns = `id, name, owner_id, created_at, updated_at`

// Create creates a new team
func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	query := `
		INSERT INTO teams (id, name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if team.ID == "" {
		team.ID = uuid.New().String()
	}

	now := time.Now()
	if team.CreatedAt.IsZero() {
		team.CreatedAt = now
	}
	if team.UpdatedAt.IsZero() {
		team.UpdatedAt = now
	}

	_, err := r.q.ExecContext(ctx, query,
		team.ID,
		team.Name,
		team.OwnerID,
		team.CreatedAt,
		team.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("team owner does not exist: %w", ErrNotFound)
		}
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

func scanTeam(scan func(dest ...any) error) (*domain.Team, error) {
	team := &domain.Team{}
	err := scan(
		&team.ID,
		&team.Name,
		&team.OwnerID,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return team, nil
}

// GetByID retrieves a team by ID
func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	team, err := scanTeam(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("team with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get team by id: %w", err)
	}

	return team, nil
}

// ListForUser retrieves all teams the user is a member of
func (r *teamRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Team, error) {
	query := `
		SELECT t.id, t.name, t.owner_id, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members tm ON tm.team_id = t.id
		WHERE tm.user_id = $1
		ORDER BY t.created_at
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for user: %w", err)
	}
	defer rows.Close()

	var teams []*domain.Team
	for rows.Next() {
		team, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}

	return teams, nil
}

// AddMember adds a user to a team with the given role
func (r *teamRepository) AddMember(ctx context.Context, member *domain.TeamMember) error {
	query := `
		INSERT INTO team_members (team_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}

	_, err := r.q.ExecContext(ctx, query,
		member.TeamID,
		member.UserID,
		member.Role,
		member.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return fmt.Errorf("user is already a member of the team: %w", ErrDuplicateMember)
			case "23503":
				return fmt.Errorf("team or user does not exist: %w", ErrNotFound)
			}
		}
		return fmt.Errorf("failed to add team member: %w", err)
	}

	return nil
}

// RemoveMember removes a user from a team
func (r *teamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`

	result, err := r.q.ExecContext(ctx, query, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}

	return requireRow(result, "team membership")
}

// ListMembers retrieves all members of a team
func (r *teamRepository) ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error) {
	query := `
		SELECT team_id, user_id, role, created_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var members []*domain.TeamMember
	for rows.Next() {
		member := &domain.TeamMember{}
		if err := rows.Scan(&member.TeamID, &member.UserID, &member.Role, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team members: %w", err)
	}

	return members, nil
}

// GetMember retrieves one team membership
func (r *teamRepository) GetMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error) {
	query := `SELECT team_id, user_id, role, created_at FROM team_members WHERE team_id = $1 AND user_id = $2`

	member := &domain.TeamMember{}
	err := r.q.QueryRowContext(ctx, query, teamID, userID).Scan(
		&member.TeamID,
		&member.UserID,
		&member.Role,
		&member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("team membership not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get team member: %w", err)
	}

	return member, nil
}

// CountOwners returns the number of owners in a team
func (r *teamRepository) CountOwners(ctx context.Context, teamID string) (int, error) {
	query := `SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND role = $2`

	var count int
	if err := r.q.QueryRowContext(ctx, query, teamID, domain.TeamRoleOwner).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count team owners: %w", err)
	}

	return count, nil
}
