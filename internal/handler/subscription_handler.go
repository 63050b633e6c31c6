package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoreshkov/saas-backend/internal/dto"
	"github.com/mkoreshkov/saas-backend/internal/service"
)

// SubscriptionHandler handles team subscription requests
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	teamHandler         *TeamHandler
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService service.SubscriptionService, teamHandler *TeamHandler) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		teamHandler:         teamHandler,
	}
}

// Subscribe puts the team on a plan (owners only)
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	teamID := c.Param("id")
	if !h.teamHandler.requireOwner(c, teamID) {
		return
	}

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), teamID, req.PlanCode)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// Cancel ends the team's active subscription (owners only)
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	teamID := c.Param("id")
	if !h.teamHandler.requireOwner(c, teamID) {
		return
	}

	sub, err := h.subscriptionService.Cancel(c.Request.Context(), teamID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// Current returns the team's active subscription (members only)
func (h *SubscriptionHandler) Current(c *gin.Context) {
	teamID := c.Param("id")
	if h.teamHandler.requireMember(c, teamID) == nil {
		return
	}

	sub, err := h.subscriptionService.Current(c.Request.Context(), teamID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// History returns the team's subscription history (members only)
func (h *SubscriptionHandler) History(c *gin.Context) {
	teamID := c.Param("id")
	if h.teamHandler.requireMember(c, teamID) == nil {
		return
	}

	subs, err := h.subscriptionService.History(c.Request.Context(), teamID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, subs)
}
