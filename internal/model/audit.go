package model

import "github.com/google/uuid"

// AuditContext identifies the actor behind a call into the dispatch engine.
// It is passed explicitly through every entry point rather than read from
// ambient request state.
type AuditContext struct {
	ActorID   uuid.UUID
	IP        string
	UserAgent string
}
