package dispatch

import (
	"context"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	apperrors "github.com/dhinakarr/realtors-app-sub001/pkg/errors"
	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
)

// PushSender delivers the PUSH message of an instruction to the recipient's
// most recently active device. A user without active tokens is a skip, not
// a failure: most users never install the mobile client.
type PushSender struct {
	provider PushProvider
	recorder *Recorder
	logger   *logger.Logger
}

func NewPushSender(provider PushProvider, recorder *Recorder, log *logger.Logger) *PushSender {
	return &PushSender{
		provider: provider,
		recorder: recorder,
		logger:   log,
	}
}

func (s *PushSender) Channel() model.Channel {
	return model.ChannelPush
}

func (s *PushSender) Send(ctx context.Context, instr *model.DispatchInstruction) error {
	msg, ok := instr.Message(model.ChannelPush)
	if !ok {
		return apperrors.ChannelMessageMissing(string(model.ChannelPush))
	}

	tokens, err := s.recorder.ActiveTokens(ctx, instr.Recipient.UserID)
	if err != nil {
		if recErr := s.recorder.RecordFailure(ctx, instr, model.ChannelPush, err.Error()); recErr != nil {
			s.logger.Error(recErr, "failed to record push failure")
		}
		return apperrors.DeliveryFailed(string(model.ChannelPush), err)
	}
	if len(tokens) == 0 {
		s.recorder.RecordSkip(ctx, instr, model.ChannelPush, "no active device token")
		return nil
	}

	// One token only: multi-device fan-out would show the same notification
	// on every device. Tokens arrive most-recently-used first.
	token := tokens[0]

	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	data["userId"] = instr.Recipient.UserID.String()

	if _, err := s.provider.Send(ctx, token.Token, msg.Title, msg.Body, data); err != nil {
		if s.provider.IsTokenInvalid(err) {
			if deErr := s.recorder.DeactivateToken(ctx, token.Token); deErr != nil {
				s.logger.Error(deErr, "failed to deactivate invalid token")
			}
		}
		if recErr := s.recorder.RecordFailure(ctx, instr, model.ChannelPush, err.Error()); recErr != nil {
			s.logger.Error(recErr, "failed to record push failure")
		}
		return apperrors.DeliveryFailed(string(model.ChannelPush), err)
	}

	if err := s.recorder.RecordSuccess(ctx, instr, model.ChannelPush); err != nil {
		s.logger.Error(err, "failed to record push success",
			"user_id", instr.Recipient.UserID.String())
	}
	return nil
}
