package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/events"
	"github.com/mkoreshkov/saas-backend/internal/repository"
)

// ErrPlanNotAvailable marks an attempt to subscribe to a plan that is
// retired or unknown.
var ErrPlanNotAvailable = errors.New("plan is not available")

// subscriptionService implements SubscriptionService interface
type subscriptionService struct {
	repos     *repository.Repositories
	publisher events.Publisher
	notifier  NotificationService
	logger    *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repos *repository.Repositories, publisher events.Publisher, notifier NotificationService, logger *zap.Logger) SubscriptionService {
	return &subscriptionService{
		repos:     repos,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// periodEnd computes the end of the billing period starting at start.
func periodEnd(start time.Time, interval string) time.Time {
	if interval == domain.IntervalYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// Subscribe puts the team on the given plan. Any previously active
// subscription is canceled in the same unit of work, so the team never
// holds two active subscriptions.
func (s *subscriptionService) Subscribe(ctx context.Context, teamID, planCode string) (*domain.Subscription, error) {
	plan, err := s.repos.Plan.GetByCode(ctx, planCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotAvailable
		}
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanNotAvailable
	}

	team, err := s.repos.Team.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &domain.Subscription{
		TeamID:      teamID,
		PlanID:      plan.ID,
		Status:      domain.SubscriptionActive,
		PeriodStart: now,
		PeriodEnd:   periodEnd(now, plan.BillingInterval),
	}

	err = s.repos.Atomic(ctx, func(tx *repository.Repositories) error {
		current, err := tx.Subscription.GetActiveByTeam(ctx, teamID)
		if err == nil {
			canceledAt := now
			if err := tx.Subscription.SetStatus(ctx, current.ID, domain.SubscriptionCanceled, &canceledAt); err != nil {
				return err
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		return tx.Subscription.Create(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, team, sub, plan.Name)

	return sub, nil
}

// Cancel ends the team's active subscription.
func (s *subscriptionService) Cancel(ctx context.Context, teamID string) (*domain.Subscription, error) {
	sub, err := s.repos.Subscription.GetActiveByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	team, err := s.repos.Team.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.repos.Subscription.SetStatus(ctx, sub.ID, domain.SubscriptionCanceled, &now); err != nil {
		return nil, err
	}

	sub.Status = domain.SubscriptionCanceled
	sub.CanceledAt = &now

	plan, err := s.repos.Plan.GetByID(ctx, sub.PlanID)
	planName := sub.PlanID
	if err == nil {
		planName = plan.Name
	}

	s.announce(ctx, team, sub, planName)

	return sub, nil
}

// announce publishes the change event and notifies the team owner.
// Both are best effort.
func (s *subscriptionService) announce(ctx context.Context, team *domain.Team, sub *domain.Subscription, planName string) {
	if err := s.publisher.SubscriptionChanged(ctx, domain.SubscriptionChangedEvent{
		SubscriptionID: sub.ID,
		TeamID:         sub.TeamID,
		PlanID:         sub.PlanID,
		Status:         sub.Status,
		ChangedAt:      time.Now(),
	}); err != nil {
		s.logger.Error("failed to publish subscription event", zap.String("team_id", sub.TeamID), zap.Error(err))
	}

	owner, err := s.repos.User.GetByID(ctx, team.OwnerID)
	if err != nil {
		s.logger.Warn("failed to resolve team owner for notification", zap.String("team_id", team.ID), zap.Error(err))
		return
	}

	if err := s.notifier.SendSubscriptionChanged(ctx, team, []string{owner.Email}, planName, sub.Status); err != nil {
		s.logger.Error("failed to send subscription notification", zap.String("team_id", team.ID), zap.Error(err))
	}
}

// Current returns the team's active subscription.
func (s *subscriptionService) Current(ctx context.Context, teamID string) (*domain.Subscription, error) {
	return s.repos.Subscription.GetActiveByTeam(ctx, teamID)
}

// History returns all of the team's subscriptions, newest first.
func (s *subscriptionService) History(ctx context.Context, teamID string) ([]*domain.Subscription, error) {
	return s.repos.Subscription.ListByTeam(ctx, teamID)
}
