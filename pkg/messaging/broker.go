package messaging

import (
	"context"
)

// Broker is the event bus between business services and the dispatch
// coordinator. Publishing must be cheap and must never block on downstream
// delivery work.
type Broker interface {
	Publish(ctx context.Context, topic string, message interface{}) error
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
	Close() error
}
