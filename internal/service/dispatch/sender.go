package dispatch

import (
	"context"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
)

// Sender delivers one channel's message from an instruction. Send reports
// its outcome through the Recorder; a returned error is a last-resort signal
// for the coordinator to log and must never abort sibling sends.
type Sender interface {
	Channel() model.Channel
	Send(ctx context.Context, instr *model.DispatchInstruction) error
}

// PushProvider is the narrow surface of the push delivery API. pkg/fcm
// satisfies it; tests substitute a fake.
type PushProvider interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) (string, error)
	IsTokenInvalid(err error) bool
}

// Renderer turns a named template plus context map into an HTML body.
type Renderer interface {
	Render(name string, data map[string]string) (string, error)
}
