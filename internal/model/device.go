package model

import (
	"time"

	"github.com/google/uuid"
)

// DeviceToken is a push registration for one device. One row per unique
// token string: re-registering an existing token reactivates the row and
// refreshes LastUsedAt rather than inserting a duplicate.
type DeviceToken struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Token      string    `db:"token" json:"token"`
	Platform   string    `db:"platform" json:"platform"`
	Active     bool      `db:"active" json:"active"`
	LastUsedAt time.Time `db:"last_used_at" json:"last_used_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
