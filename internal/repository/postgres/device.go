package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	"github.com/dhinakarr/realtors-app-sub001/internal/repository"
)

type deviceTokenRepository struct {
	BaseRepository
}

func NewDeviceTokenRepository(base BaseRepository) repository.DeviceTokenRepository {
	return &deviceTokenRepository{base}
}

func (r *deviceTokenRepository) Upsert(ctx context.Context, token *model.DeviceToken) error {
	// The unique index on token makes insert-or-reactivate atomic, so two
	// concurrent registrations of the same token cannot create duplicates.
	query := `
		INSERT INTO device_tokens (id, user_id, token, platform, active, last_used_at, created_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    platform = EXCLUDED.platform,
		    active = TRUE,
		    last_used_at = NOW()
	`
	_, err := r.GetDB().ExecContext(ctx, query, token.ID, token.UserID, token.Token, token.Platform)
	if err != nil {
		return fmt.Errorf("failed to upsert device token: %w", err)
	}
	return nil
}

func (r *deviceTokenRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*model.DeviceToken, error) {
	query := `
		SELECT id, user_id, token, platform, active, last_used_at, created_at
		FROM device_tokens
		WHERE user_id = $1 AND active = TRUE
		ORDER BY last_used_at DESC
	`
	tokens := []*model.DeviceToken{}
	if err := r.GetDB().SelectContext(ctx, &tokens, query, userID); err != nil {
		return nil, fmt.Errorf("failed to find active device tokens: %w", err)
	}
	return tokens, nil
}

func (r *deviceTokenRepository) Deactivate(ctx context.Context, token string) error {
	query := `UPDATE device_tokens SET active = FALSE WHERE token = $1`

	if _, err := r.GetDB().ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to deactivate device token: %w", err)
	}
	return nil
}
