package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mkoreshkov/saas-backend/internal/domain"
)

// notificationRepository implements NotificationRepository interface
type notificationRepository struct {
	q querier
}

// Create records a notification send attempt
func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, channel, reason, title, message, action_url, recipients, cc, user_id, team_id, success, error_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := r.q.ExecContext(ctx, query,
		n.ID,
		n.Channel,
		n.Reason,
		n.Title,
		n.Message,
		n.ActionURL,
		pq.Array(n.Recipients),
		pq.Array(n.CC),
		n.UserID,
		n.TeamID,
		n.Success,
		n.ErrorText,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListForUser retrieves the most recent notifications addressed to a user
func (r *notificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT id, channel, reason, title, message, action_url, recipients, cc, user_id, team_id, success, error_text, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		var actionURL, errorText, uid, teamID sql.NullString

		err := rows.Scan(
			&n.ID,
			&n.Channel,
			&n.Reason,
			&n.Title,
			&n.Message,
			&actionURL,
			pq.Array(&n.Recipients),
			pq.Array(&n.CC),
			&uid,
			&teamID,
			&n.Success,
			&errorText,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if actionURL.Valid {
			n.ActionURL = actionURL.String
		}
		if errorText.Valid {
			n.ErrorText = &errorText.String
		}
		if uid.Valid {
			n.UserID = &uid.String
		}
		if teamID.Valid {
			n.TeamID = &teamID.String
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}
