package model

import (
	"time"

	"github.com/google/uuid"
)

type Channel string

const (
	ChannelPush  Channel = "PUSH"
	ChannelEmail Channel = "EMAIL"
)

type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// ChannelMessage carries the content of a notification for one delivery
// channel. Data holds channel-specific structure: the email template name
// and context for EMAIL, the client deep-link payload for PUSH.
type ChannelMessage struct {
	Channel Channel
	Title   string
	Body    string
	Data    map[string]string
}

// DispatchInstruction is the per-recipient unit of work produced by a
// message builder: one stakeholder, one correlation to the originating
// event, and every channel message to deliver to that stakeholder. It is
// a transient work item, immutable after construction, never persisted.
type DispatchInstruction struct {
	Stakeholder Role
	Recipient   Recipient
	EventID     uuid.UUID
	EventType   EventType
	ReferenceID string
	Messages    []ChannelMessage
}

// Message returns the channel message for the given channel, if present.
func (i *DispatchInstruction) Message(ch Channel) (ChannelMessage, bool) {
	for _, m := range i.Messages {
		if m.Channel == ch {
			return m, true
		}
	}
	return ChannelMessage{}, false
}

// Channels lists the channels this instruction carries, in message order.
func (i *DispatchInstruction) Channels() []Channel {
	chs := make([]Channel, 0, len(i.Messages))
	for _, m := range i.Messages {
		chs = append(chs, m.Channel)
	}
	return chs
}

// Notification is the persisted record of a delivery attempt, and at the
// same time the user-facing inbox entry. Read only ever flips false→true.
type Notification struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	UserID      uuid.UUID      `db:"user_id" json:"user_id"`
	Title       string         `db:"title" json:"title"`
	Message     string         `db:"message" json:"message"`
	Type        string         `db:"type" json:"type"`
	Channel     Channel        `db:"channel" json:"channel"`
	Status      DeliveryStatus `db:"status" json:"status"`
	ErrorDetail string         `db:"error_detail" json:"error_detail,omitempty"`
	EventID     *uuid.UUID     `db:"event_id" json:"event_id,omitempty"`
	ReferenceID string         `db:"reference_id" json:"reference_id,omitempty"`
	Read        bool           `db:"read" json:"read"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
