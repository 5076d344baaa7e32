package dispatch

import (
	"context"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	apperrors "github.com/dhinakarr/realtors-app-sub001/pkg/errors"
)

// Registry maps event types to their message builders. It is constructed
// once during process initialization and treated as immutable afterwards,
// so lookups need no synchronization.
type Registry struct {
	builders map[model.EventType]Builder
}

func NewRegistry(builders map[model.EventType]Builder) *Registry {
	owned := make(map[model.EventType]Builder, len(builders))
	for t, b := range builders {
		owned[t] = b
	}
	return &Registry{builders: owned}
}

// DefaultRegistry wires the builders for every event type the engine
// handles.
func DefaultRegistry(resolver *RecipientResolver) *Registry {
	return NewRegistry(map[model.EventType]Builder{
		model.EventSaleCreated:     NewSaleCreatedBuilder(resolver),
		model.EventPaymentReceived: NewPaymentReceivedBuilder(resolver),
		model.EventSaleCancelled:   NewSaleCancelledBuilder(resolver),
	})
}

// Build dispatches to the builder registered for the event's type.
func (r *Registry) Build(ctx context.Context, event *model.DomainEvent) ([]*model.DispatchInstruction, error) {
	builder, ok := r.builders[event.Type]
	if !ok {
		return nil, apperrors.UnknownEventType(string(event.Type))
	}
	return builder.Build(ctx, event)
}
