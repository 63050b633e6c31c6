package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoreshkov/saas-backend/internal/dto"
	"github.com/mkoreshkov/saas-backend/internal/service"
)

// PlanHandler handles plan catalog requests
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// Create handles plan creation (admin only)
func (h *PlanHandler) Create(c *gin.Context) {
	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// Get handles plan retrieval
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.planService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// List handles plan catalog listing. Unauthenticated callers see only
// active plans.
func (h *PlanHandler) List(c *gin.Context) {
	activeOnly := c.Query("all") != "true"

	plans, err := h.planService.List(c.Request.Context(), activeOnly)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// Update handles plan updates (admin only)
func (h *PlanHandler) Update(c *gin.Context) {
	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// Delete handles plan deletion (admin only)
func (h *PlanHandler) Delete(c *gin.Context) {
	if err := h.planService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Plan deleted"})
}
