package event

import (
	"context"
	"fmt"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	"github.com/dhinakarr/realtors-app-sub001/internal/service/dispatch"
	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
	"github.com/dhinakarr/realtors-app-sub001/pkg/messaging"
)

// Emitter is the business side's entry into the dispatch engine: it
// publishes domain events to the broker and returns immediately. Building
// and delivery happen on the coordinator's side of the bus, so the
// triggering business transaction never waits on a notification.
type Emitter struct {
	broker messaging.Broker
	logger *logger.Logger
}

func NewEmitter(broker messaging.Broker, log *logger.Logger) *Emitter {
	return &Emitter{broker: broker, logger: log}
}

// Emit publishes a fresh domain event. The audit context travels as an
// explicit argument, never as ambient state.
func (e *Emitter) Emit(ctx context.Context, audit model.AuditContext, eventType model.EventType, payload map[string]interface{}) error {
	event := model.NewDomainEvent(eventType, payload)

	if err := e.broker.Publish(ctx, dispatch.EventsTopic, event); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}

	e.logger.Info("domain event emitted",
		"event_id", event.ID.String(),
		"event_type", string(eventType),
		"actor_id", audit.ActorID.String(),
		"actor_ip", audit.IP,
	)
	return nil
}
