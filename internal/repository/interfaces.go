package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Notification, error)
	// MarkRead is idempotent: marking an already-read notification is a no-op.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type DeviceTokenRepository interface {
	// Upsert inserts a new active token row or, when the token string already
	// exists, reactivates it and refreshes its last-used timestamp. Must be
	// atomic so concurrent registrations of the same token cannot race into
	// duplicates.
	Upsert(ctx context.Context, token *model.DeviceToken) error
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*model.DeviceToken, error)
	Deactivate(ctx context.Context, token string) error
}

type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	// FindActiveByRole returns active holders of role ordered by creation
	// time, earliest first, so "first match" resolution is deterministic.
	FindActiveByRole(ctx context.Context, role model.Role) ([]*model.User, error)
}
