package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSaleCreated     EventType = "SALE_CREATED"
	EventPaymentReceived EventType = "PAYMENT_RECEIVED"
	EventSaleCancelled   EventType = "SALE_CANCELLED"
)

// DomainEvent is an immutable record of a completed business state change.
// It is published to the broker by business services and consumed once by
// the dispatch coordinator; it is never persisted by the dispatch engine.
type DomainEvent struct {
	ID         uuid.UUID              `json:"id"`
	Type       EventType              `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

// NewDomainEvent stamps a fresh event with an id and occurrence time.
func NewDomainEvent(eventType EventType, payload map[string]interface{}) *DomainEvent {
	return &DomainEvent{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	}
}

// PayloadString returns a required string field from the event payload.
// The second return is false when the field is absent or not a string.
func (e *DomainEvent) PayloadString(key string) (string, bool) {
	v, ok := e.Payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// PayloadFloat returns a required numeric field from the event payload.
// JSON decoding yields float64 for all numbers.
func (e *DomainEvent) PayloadFloat(key string) (float64, bool) {
	v, ok := e.Payload[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
