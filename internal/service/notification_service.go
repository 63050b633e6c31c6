package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/repository"
	"github.com/mkoreshkov/saas-backend/pkg/mailer"
)

// NotificationService dispatches notifications and records every attempt
// in the send log, successful or not.
type NotificationService interface {
	SendPasswordReset(ctx context.Context, user *domain.User, resetURL string) error
	SendEmailConfirmation(ctx context.Context, user *domain.User, confirmURL string) error
	SendWelcome(ctx context.Context, user *domain.User) error
	SendSubscriptionChanged(ctx context.Context, team *domain.Team, recipients []string, planName, status string) error
	ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
}

// notificationService implements NotificationService interface
type notificationService struct {
	mailer           mailer.Mailer
	notificationRepo repository.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(m mailer.Mailer, notificationRepo repository.NotificationRepository, logger *zap.Logger) NotificationService {
	return &notificationService{
		mailer:           m,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// dispatch sends the email and writes the send-log row. The log row is
// written even when delivery fails; the delivery error is returned after
// the log write.
func (s *notificationService) dispatch(ctx context.Context, n *domain.Notification, email mailer.ActionEmail) error {
	var sendErr error

	body, err := mailer.RenderAction(email)
	if err != nil {
		sendErr = err
	} else {
		sendErr = s.mailer.Send(ctx, mailer.Message{
			To:      n.Recipients,
			CC:      n.CC,
			Subject: n.Title,
			Body:    body,
		})
	}

	n.Success = sendErr == nil
	if sendErr != nil {
		text := sendErr.Error()
		n.ErrorText = &text
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("failed to write notification log",
			zap.String("reason", n.Reason),
			zap.Error(err),
		)
		if sendErr == nil {
			return fmt.Errorf("failed to write notification log: %w", err)
		}
	}

	if sendErr != nil {
		return fmt.Errorf("failed to send %s notification: %w", n.Reason, sendErr)
	}

	return nil
}

// SendPasswordReset emails a password reset link to the user.
func (s *notificationService) SendPasswordReset(ctx context.Context, user *domain.User, resetURL string) error {
	n := &domain.Notification{
		Channel:    domain.ChannelEmail,
		Reason:     domain.ReasonPasswordReset,
		Title:      "Reset your password",
		Message:    "We received a request to reset your password. The link below is valid for a limited time and can be used once.",
		ActionURL:  resetURL,
		Recipients: []string{user.Email},
		UserID:     &user.ID,
	}

	return s.dispatch(ctx, n, mailer.ActionEmail{
		Title:       n.Title,
		Name:        user.FullName,
		Message:     n.Message,
		ActionURL:   resetURL,
		ActionLabel: "Reset password",
	})
}

// SendEmailConfirmation emails an address confirmation link to the user.
func (s *notificationService) SendEmailConfirmation(ctx context.Context, user *domain.User, confirmURL string) error {
	n := &domain.Notification{
		Channel:    domain.ChannelEmail,
		Reason:     domain.ReasonEmailConfirm,
		Title:      "Confirm your email address",
		Message:    "Please confirm your email address to finish setting up your account.",
		ActionURL:  confirmURL,
		Recipients: []string{user.Email},
		UserID:     &user.ID,
	}

	return s.dispatch(ctx, n, mailer.ActionEmail{
		Title:       n.Title,
		Name:        user.FullName,
		Message:     n.Message,
		ActionURL:   confirmURL,
		ActionLabel: "Confirm email",
	})
}

// SendWelcome emails a welcome message to a newly registered user.
func (s *notificationService) SendWelcome(ctx context.Context, user *domain.User) error {
	n := &domain.Notification{
		Channel:    domain.ChannelEmail,
		Reason:     domain.ReasonWelcome,
		Title:      "Welcome",
		Message:    "Your account has been created. You can now sign in and set up your team.",
		Recipients: []string{user.Email},
		UserID:     &user.ID,
	}

	return s.dispatch(ctx, n, mailer.ActionEmail{
		Title:   n.Title,
		Name:    user.FullName,
		Message: n.Message,
	})
}

// SendSubscriptionChanged notifies team members about a subscription
// change.
func (s *notificationService) SendSubscriptionChanged(ctx context.Context, team *domain.Team, recipients []string, planName, status string) error {
	n := &domain.Notification{
		Channel:    domain.ChannelEmail,
		Reason:     domain.ReasonSubscription,
		Title:      "Subscription updated",
		Message:    fmt.Sprintf("The subscription of team %q is now %s on plan %s.", team.Name, status, planName),
		Recipients: recipients,
		TeamID:     &team.ID,
	}

	return s.dispatch(ctx, n, mailer.ActionEmail{
		Title:   n.Title,
		Message: n.Message,
	})
}

// ListForUser returns the most recent notifications sent to a user.
func (s *notificationService) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	return s.notificationRepo.ListForUser(ctx, userID, limit)
}
