package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	"github.com/dhinakarr/realtors-app-sub001/internal/repository"
	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
	"github.com/dhinakarr/realtors-app-sub001/pkg/metrics"
)

// Recorder is the single writer for delivery bookkeeping: notification rows
// per channel attempt, and the device token lifecycle for push targets.
type Recorder struct {
	notifications repository.NotificationRepository
	devices       repository.DeviceTokenRepository
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

func NewRecorder(
	notifications repository.NotificationRepository,
	devices repository.DeviceTokenRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) *Recorder {
	return &Recorder{
		notifications: notifications,
		devices:       devices,
		metrics:       m,
		logger:        log,
	}
}

// RecordSuccess persists a sent notification row for one channel attempt.
func (r *Recorder) RecordSuccess(ctx context.Context, instr *model.DispatchInstruction, ch model.Channel) error {
	r.metrics.SendsTotal.WithLabelValues(string(ch), "sent").Inc()
	return r.record(ctx, instr, ch, model.DeliveryStatusSent, "")
}

// RecordFailure persists a failed notification row carrying the provider's
// error detail. The failure stops here: callers log it and move on.
func (r *Recorder) RecordFailure(ctx context.Context, instr *model.DispatchInstruction, ch model.Channel, errDetail string) error {
	r.metrics.SendsTotal.WithLabelValues(string(ch), "failed").Inc()
	return r.record(ctx, instr, ch, model.DeliveryStatusFailed, errDetail)
}

// RecordSkip notes a no-target condition (e.g. no active device token).
// Skips are not failures and leave no notification row.
func (r *Recorder) RecordSkip(ctx context.Context, instr *model.DispatchInstruction, ch model.Channel, reason string) {
	r.metrics.SendsSkipped.WithLabelValues(string(ch)).Inc()
	r.logger.Info("delivery skipped",
		"channel", string(ch),
		"user_id", instr.Recipient.UserID.String(),
		"event_type", string(instr.EventType),
		"reason", reason,
	)
}

func (r *Recorder) record(ctx context.Context, instr *model.DispatchInstruction, ch model.Channel, status model.DeliveryStatus, errDetail string) error {
	msg, ok := instr.Message(ch)
	if !ok {
		return fmt.Errorf("instruction has no %s message to record", ch)
	}

	eventID := instr.EventID
	n := &model.Notification{
		ID:          uuid.New(),
		UserID:      instr.Recipient.UserID,
		Title:       msg.Title,
		Message:     msg.Body,
		Type:        string(instr.EventType),
		Channel:     ch,
		Status:      status,
		ErrorDetail: errDetail,
		EventID:     &eventID,
		ReferenceID: instr.ReferenceID,
		Read:        false,
		CreatedAt:   time.Now(),
	}

	if err := r.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to record %s outcome: %w", status, err)
	}
	return nil
}

// RegisterDevice registers a push token for a user. Registration is
// idempotent by token string: a repeat registration reactivates the existing
// row and refreshes its last-used timestamp.
func (r *Recorder) RegisterDevice(ctx context.Context, audit model.AuditContext, userID uuid.UUID, token, platform string) error {
	if token == "" {
		return fmt.Errorf("device token is required")
	}

	dt := &model.DeviceToken{
		ID:       uuid.New(),
		UserID:   userID,
		Token:    token,
		Platform: platform,
	}
	if err := r.devices.Upsert(ctx, dt); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}

	r.metrics.DeviceRegistrations.Inc()
	r.logger.Info("device registered",
		"user_id", userID.String(),
		"platform", platform,
		"actor_id", audit.ActorID.String(),
		"actor_ip", audit.IP,
	)
	return nil
}

// ActiveTokens returns the user's active push tokens, most recently used
// first.
func (r *Recorder) ActiveTokens(ctx context.Context, userID uuid.UUID) ([]*model.DeviceToken, error) {
	return r.devices.FindActiveByUser(ctx, userID)
}

// DeactivateToken marks a token inactive after the provider reported it as
// no longer registered.
func (r *Recorder) DeactivateToken(ctx context.Context, token string) error {
	if err := r.devices.Deactivate(ctx, token); err != nil {
		return fmt.Errorf("failed to deactivate token: %w", err)
	}
	r.metrics.DeviceDeactivations.Inc()
	return nil
}
