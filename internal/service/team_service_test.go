package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/repository"
)

func TestTeamCreateSeedsOwnerMembership(t *testing.T) {
	repos := newTestRepos()
	svc := NewTeamService(repos)
	ctx := context.Background()

	team, err := svc.Create(ctx, "owner-1", "Acme")
	require.NoError(t, err)
	require.NotEmpty(t, team.ID)
	assert.Equal(t, "owner-1", team.OwnerID)

	member, err := svc.GetMember(ctx, team.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TeamRoleOwner, member.Role)

	teams, err := svc.ListForUser(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, team.ID, teams[0].ID)
}

func TestTeamAddAndRemoveMember(t *testing.T) {
	repos := newTestRepos()
	svc := NewTeamService(repos)
	ctx := context.Background()

	team, err := svc.Create(ctx, "owner-1", "Acme")
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(ctx, team.ID, "member-1", domain.TeamRoleMember))

	err = svc.AddMember(ctx, team.ID, "member-1", domain.TeamRoleMember)
	assert.ErrorIs(t, err, repository.ErrDuplicateMember)

	members, err := svc.ListMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, svc.RemoveMember(ctx, team.ID, "member-1"))

	_, err = svc.GetMember(ctx, team.ID, "member-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTeamLastOwnerCannotLeave(t *testing.T) {
	repos := newTestRepos()
	svc := NewTeamService(repos)
	ctx := context.Background()

	team, err := svc.Create(ctx, "owner-1", "Acme")
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, team.ID, "owner-1")
	assert.ErrorIs(t, err, ErrLastOwner)

	// With a second owner on board the first one may leave.
	require.NoError(t, svc.AddMember(ctx, team.ID, "owner-2", domain.TeamRoleOwner))
	require.NoError(t, svc.RemoveMember(ctx, team.ID, "owner-1"))
}
