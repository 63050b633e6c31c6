package service

import (
	"context"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/dto"
	"github.com/mkoreshkov/saas-backend/internal/repository"
)

// planService implements PlanService interface
type planService struct {
	repos *repository.Repositories
}

// NewPlanService creates a new plan service
func NewPlanService(repos *repository.Repositories) PlanService {
	return &planService{repos: repos}
}

// Create adds a plan to the catalog.
func (s *planService) Create(ctx context.Context, req *dto.CreatePlanRequest) (*domain.Plan, error) {
	plan := &domain.Plan{
		Code:            req.Code,
		Name:            req.Name,
		PriceCents:      req.PriceCents,
		Currency:        req.Currency,
		BillingInterval: req.BillingInterval,
		IsActive:        true,
	}

	if err := s.repos.Plan.Create(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// Get retrieves a plan by ID.
func (s *planService) Get(ctx context.Context, id string) (*domain.Plan, error) {
	return s.repos.Plan.GetByID(ctx, id)
}

// List returns the plan catalog.
func (s *planService) List(ctx context.Context, activeOnly bool) ([]*domain.Plan, error) {
	return s.repos.Plan.List(ctx, activeOnly)
}

// Update modifies an existing plan.
func (s *planService) Update(ctx context.Context, id string, req *dto.UpdatePlanRequest) (*domain.Plan, error) {
	plan, err := s.repos.Plan.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	plan.Name = req.Name
	plan.PriceCents = req.PriceCents
	plan.Currency = req.Currency
	plan.BillingInterval = req.BillingInterval
	plan.IsActive = req.IsActive

	if err := s.repos.Plan.Update(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// Delete removes a plan from the catalog.
func (s *planService) Delete(ctx context.Context, id string) error {
	return s.repos.Plan.Delete(ctx, id)
}
