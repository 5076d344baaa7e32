package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	"github.com/dhinakarr/realtors-app-sub001/internal/repository"
	"github.com/dhinakarr/realtors-app-sub001/internal/service/dispatch"
	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
	"github.com/dhinakarr/realtors-app-sub001/pkg/worker"
)

const defaultListLimit = 50

// Service is the outward surface of the notification subsystem: the
// read-side inbox operations, device registration, and the direct
// (non-event-driven) notify path used by simpler flows.
type Service interface {
	Notify(ctx context.Context, audit model.AuditContext, userID uuid.UUID, title, message, typ, referenceID string) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	RegisterDevice(ctx context.Context, audit model.AuditContext, userID uuid.UUID, token, platform string) error
	UnregisterDevice(ctx context.Context, token string) error
}

type service struct {
	repo     repository.NotificationRepository
	recorder *dispatch.Recorder
	provider dispatch.PushProvider
	pool     *worker.Pool
	logger   *logger.Logger
}

func NewService(
	repo repository.NotificationRepository,
	recorder *dispatch.Recorder,
	provider dispatch.PushProvider,
	pool *worker.Pool,
	log *logger.Logger,
) Service {
	return &service{
		repo:     repo,
		recorder: recorder,
		provider: provider,
		pool:     pool,
		logger:   log,
	}
}

// Notify persists an inbox entry for the user and fires a best-effort push
// on the dispatch pool. The caller returns immediately; a push failure is
// logged, never surfaced.
func (s *service) Notify(ctx context.Context, audit model.AuditContext, userID uuid.UUID, title, message, typ, referenceID string) error {
	if title == "" || message == "" {
		return fmt.Errorf("title and message are required")
	}

	n := &model.Notification{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Message:     message,
		Type:        typ,
		Channel:     model.ChannelPush,
		Status:      model.DeliveryStatusSent,
		ReferenceID: referenceID,
		Read:        false,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	s.logger.Info("direct notification created",
		"user_id", userID.String(),
		"type", typ,
		"actor_id", audit.ActorID.String(),
	)

	if !s.pool.TrySubmit(func(ctx context.Context) {
		s.pushBestEffort(ctx, userID, title, message, referenceID)
	}) {
		s.logger.Warn("dispatch queue full, direct push skipped",
			"user_id", userID.String())
	}
	return nil
}

func (s *service) pushBestEffort(ctx context.Context, userID uuid.UUID, title, message, referenceID string) {
	tokens, err := s.recorder.ActiveTokens(ctx, userID)
	if err != nil {
		s.logger.Error(err, "failed to resolve device tokens", "user_id", userID.String())
		return
	}
	if len(tokens) == 0 {
		return
	}

	data := map[string]string{"userId": userID.String()}
	if referenceID != "" {
		data["referenceId"] = referenceID
	}

	token := tokens[0]
	if _, err := s.provider.Send(ctx, token.Token, title, message, data); err != nil {
		if s.provider.IsTokenInvalid(err) {
			if deErr := s.recorder.DeactivateToken(ctx, token.Token); deErr != nil {
				s.logger.Error(deErr, "failed to deactivate invalid token")
			}
		}
		s.logger.Error(err, "direct push failed", "user_id", userID.String())
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *service) RegisterDevice(ctx context.Context, audit model.AuditContext, userID uuid.UUID, token, platform string) error {
	return s.recorder.RegisterDevice(ctx, audit, userID, token, platform)
}

func (s *service) UnregisterDevice(ctx context.Context, token string) error {
	return s.recorder.DeactivateToken(ctx, token)
}
