package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/dto"
	"github.com/mkoreshkov/saas-backend/internal/repository"
	"github.com/mkoreshkov/saas-backend/internal/service"
)

// TeamHandler handles team and membership requests
type TeamHandler struct {
	teamService service.TeamService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// requireMember ensures the caller belongs to the team and returns the
// membership. Writes the response itself on failure.
func (h *TeamHandler) requireMember(c *gin.Context, teamID string) *domain.TeamMember {
	member, err := h.teamService.GetMember(c.Request.Context(), teamID, c.GetString("user_id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "Forbidden",
				Message: "You are not a member of this team",
			})
			return nil
		}
		writeError(c, err)
		return nil
	}
	return member
}

// requireOwner ensures the caller owns the team.
func (h *TeamHandler) requireOwner(c *gin.Context, teamID string) bool {
	member := h.requireMember(c, teamID)
	if member == nil {
		return false
	}
	if member.Role != domain.TeamRoleOwner {
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error:   "Forbidden",
			Message: "Only team owners can do this",
		})
		return false
	}
	return true
}

// Create handles team creation; the creator becomes the first owner
func (h *TeamHandler) Create(c *gin.Context) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	team, err := h.teamService.Create(c.Request.Context(), c.GetString("user_id"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, team)
}

// Get handles team retrieval for members
func (h *TeamHandler) Get(c *gin.Context) {
	teamID := c.Param("id")
	if h.requireMember(c, teamID) == nil {
		return
	}

	team, err := h.teamService.Get(c.Request.Context(), teamID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, team)
}

// List returns the caller's teams
func (h *TeamHandler) List(c *gin.Context) {
	teams, err := h.teamService.ListForUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, teams)
}

// AddMember adds a user to the team (owners only)
func (h *TeamHandler) AddMember(c *gin.Context) {
	teamID := c.Param("id")
	if !h.requireOwner(c, teamID) {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.teamService.AddMember(c.Request.Context(), teamID, req.UserID, req.Role); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse{Message: "Member added"})
}

// RemoveMember removes a user from the team. Owners can remove anyone;
// members can only remove themselves.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	teamID := c.Param("id")
	targetID := c.Param("userId")

	member := h.requireMember(c, teamID)
	if member == nil {
		return
	}
	if member.Role != domain.TeamRoleOwner && member.UserID != targetID {
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error:   "Forbidden",
			Message: "Only team owners can remove other members",
		})
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), teamID, targetID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Member removed"})
}

// ListMembers returns the team's members (members only)
func (h *TeamHandler) ListMembers(c *gin.Context) {
	teamID := c.Param("id")
	if h.requireMember(c, teamID) == nil {
		return
	}

	members, err := h.teamService.ListMembers(c.Request.Context(), teamID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}
