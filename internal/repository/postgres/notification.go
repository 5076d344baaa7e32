package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	"github.com/dhinakarr/realtors-app-sub001/internal/repository"
	apperrors "github.com/dhinakarr/realtors-app-sub001/pkg/errors"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, title, message, type, channel, status,
			error_detail, event_id, reference_id, read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.GetDB().ExecContext(ctx, query,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.Channel, n.Status,
		n.ErrorDetail, n.EventID, n.ReferenceID, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Notification, error) {
	query := `
		SELECT id, user_id, title, message, type, channel, status,
		       error_detail, event_id, reference_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	notifications := []*model.Notification{}
	if err := r.GetDB().SelectContext(ctx, &notifications, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	// No "AND read = FALSE" guard: re-marking an already-read row affects one
	// row and stays true, which keeps the call idempotent.
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`

	result, err := r.GetDB().ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("notification", sql.ErrNoRows)
	}
	return nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`

	var count int
	if err := r.GetDB().GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
