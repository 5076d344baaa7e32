package dispatch

import (
	"context"

	"github.com/dhinakarr/realtors-app-sub001/internal/email"
	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	apperrors "github.com/dhinakarr/realtors-app-sub001/pkg/errors"
	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
)

// templateKey names the entry in a ChannelMessage's data map that selects
// the HTML template for the email body.
const templateKey = "template"

// EmailSender renders the EMAIL message of an instruction into HTML and
// hands it to the SMTP transport. An instruction without an EMAIL message
// is a programming invariant violation, not a runtime condition.
type EmailSender struct {
	renderer  Renderer
	transport email.Transport
	recorder  *Recorder
	logger    *logger.Logger
}

func NewEmailSender(renderer Renderer, transport email.Transport, recorder *Recorder, log *logger.Logger) *EmailSender {
	return &EmailSender{
		renderer:  renderer,
		transport: transport,
		recorder:  recorder,
		logger:    log,
	}
}

func (s *EmailSender) Channel() model.Channel {
	return model.ChannelEmail
}

func (s *EmailSender) Send(ctx context.Context, instr *model.DispatchInstruction) error {
	msg, ok := instr.Message(model.ChannelEmail)
	if !ok {
		return apperrors.ChannelMessageMissing(string(model.ChannelEmail))
	}

	templateName := msg.Data[templateKey]
	if templateName == "" {
		return apperrors.ChannelMessageMissing("email template")
	}

	if instr.Recipient.Email == "" {
		s.recorder.RecordSkip(ctx, instr, model.ChannelEmail, "recipient has no email address")
		return nil
	}

	html, err := s.renderer.Render(templateName, msg.Data)
	if err != nil {
		if recErr := s.recorder.RecordFailure(ctx, instr, model.ChannelEmail, err.Error()); recErr != nil {
			s.logger.Error(recErr, "failed to record email failure")
		}
		return apperrors.DeliveryFailed(string(model.ChannelEmail), err)
	}

	if err := s.transport.SendHTML(instr.Recipient.Email, msg.Title, html); err != nil {
		if recErr := s.recorder.RecordFailure(ctx, instr, model.ChannelEmail, err.Error()); recErr != nil {
			s.logger.Error(recErr, "failed to record email failure")
		}
		return apperrors.DeliveryFailed(string(model.ChannelEmail), err)
	}

	if err := s.recorder.RecordSuccess(ctx, instr, model.ChannelEmail); err != nil {
		s.logger.Error(err, "failed to record email success",
			"user_id", instr.Recipient.UserID.String())
	}
	return nil
}
