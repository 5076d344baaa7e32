package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
	"github.com/dhinakarr/realtors-app-sub001/pkg/messaging"
	"github.com/dhinakarr/realtors-app-sub001/pkg/metrics"
	"github.com/dhinakarr/realtors-app-sub001/pkg/worker"
)

// EventsTopic is the broker topic business services publish domain events
// to and the coordinator consumes from.
const EventsTopic = "events.notifications"

// Coordinator consumes domain events, invokes the builder registry, and
// fans every (instruction, channel) pair out onto the dispatch pool. Each
// pair is an independent unit of work: one channel failing never blocks a
// sibling channel or a sibling instruction, and nothing here ever blocks
// the business operation that raised the event.
type Coordinator struct {
	registry *Registry
	senders  map[model.Channel]Sender
	pool     *worker.Pool
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewCoordinator(
	registry *Registry,
	senders []Sender,
	pool *worker.Pool,
	m *metrics.Metrics,
	log *logger.Logger,
) *Coordinator {
	// Sender lookup is built once at startup and immutable afterwards.
	byChannel := make(map[model.Channel]Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	return &Coordinator{
		registry: registry,
		senders:  byChannel,
		pool:     pool,
		metrics:  m,
		logger:   log,
	}
}

// Run subscribes to the event topic and dispatches until ctx is cancelled
// or the broker closes the subscription.
func (c *Coordinator) Run(ctx context.Context, broker messaging.Broker) error {
	msgs, err := broker.Subscribe(ctx, EventsTopic)
	if err != nil {
		return err
	}

	c.logger.Info("dispatch coordinator started", "topic", EventsTopic)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("dispatch coordinator stopping")
			return nil
		case payload, ok := <-msgs:
			if !ok {
				c.logger.Info("event subscription closed")
				return nil
			}
			var event model.DomainEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				c.logger.Error(err, "failed to decode domain event")
				continue
			}
			c.Dispatch(ctx, &event)
		}
	}
}

// Dispatch builds instructions for one event and submits every channel send
// to the pool. Build failures are configuration defects: they are logged
// for operators and the event is abandoned with no partial fan-out of the
// failed build. Submission is fire-and-forget; completion and errors are
// observed only through the outcome recorder.
func (c *Coordinator) Dispatch(ctx context.Context, event *model.DomainEvent) {
	c.metrics.EventsReceived.WithLabelValues(string(event.Type)).Inc()

	instructions, err := c.registry.Build(ctx, event)
	if err != nil {
		c.metrics.BuildFailures.WithLabelValues(string(event.Type)).Inc()
		c.logger.Error(err, "failed to build dispatch instructions",
			"event_id", event.ID.String(),
			"event_type", string(event.Type),
		)
		return
	}

	c.metrics.InstructionsBuilt.Add(float64(len(instructions)))

	for _, instr := range instructions {
		if len(instr.Messages) == 0 {
			c.logger.Error(nil, "instruction carries no channel messages",
				"event_id", event.ID.String(),
				"user_id", instr.Recipient.UserID.String(),
			)
			continue
		}
		c.Submit(instr)
	}
}

// Submit fans one instruction's channel messages out onto the pool. It is
// also the entry point for the direct, non-event-driven notify path.
func (c *Coordinator) Submit(instr *model.DispatchInstruction) {
	for _, ch := range instr.Channels() {
		sender, ok := c.senders[ch]
		if !ok {
			c.logger.Warn("no sender for channel",
				"channel", string(ch),
				"event_type", string(instr.EventType),
			)
			continue
		}
		c.submitSend(sender, ch, instr)
	}
	c.metrics.DispatchQueueDepth.Set(float64(c.pool.Depth()))
}

func (c *Coordinator) submitSend(sender Sender, ch model.Channel, instr *model.DispatchInstruction) {
	submitted := c.pool.TrySubmit(func(ctx context.Context) {
		start := time.Now()
		if err := sender.Send(ctx, instr); err != nil {
			// Last-resort signal only: the sender already recorded the
			// outcome. Sibling sends proceed regardless.
			c.logger.Error(err, "channel delivery failed",
				"channel", string(ch),
				"user_id", instr.Recipient.UserID.String(),
				"event_type", string(instr.EventType),
			)
		}
		c.metrics.DeliveryLatency.WithLabelValues(string(ch)).Observe(time.Since(start).Seconds())
	})
	if !submitted {
		// Queue saturation is backpressure: drop and account for it rather
		// than grow without bound.
		c.metrics.SendsDropped.Inc()
		c.logger.Warn("dispatch queue full, send dropped",
			"channel", string(ch),
			"user_id", instr.Recipient.UserID.String(),
			"event_type", string(instr.EventType),
		)
	}
}
