package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	apperrors "github.com/dhinakarr/realtors-app-sub001/pkg/errors"
	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
)

func TestPushSenderSkipsWhenNoActiveTokens(t *testing.T) {
	notifications := newFakeNotificationRepo()
	rec := newTestRecorder(notifications, newFakeDeviceRepo())
	provider := &fakePushProvider{}
	sender := NewPushSender(provider, rec, logger.Nop())

	err := sender.Send(context.Background(), testInstruction(uuid.New()))

	require.NoError(t, err)
	assert.Zero(t, provider.callCount())
	assert.Zero(t, notifications.count())
}

func TestPushSenderDeliversToMostRecentToken(t *testing.T) {
	devices := newFakeDeviceRepo()
	notifications := newFakeNotificationRepo()
	rec := newTestRecorder(notifications, devices)
	provider := &fakePushProvider{}
	sender := NewPushSender(provider, rec, logger.Nop())

	userID := uuid.New()
	audit := model.AuditContext{ActorID: userID}
	require.NoError(t, rec.RegisterDevice(context.Background(), audit, userID, "tok-old", "android"))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, rec.RegisterDevice(context.Background(), audit, userID, "tok-new", "android"))

	require.NoError(t, sender.Send(context.Background(), testInstruction(userID)))

	// one device only, no multi-device fan-out
	require.Equal(t, 1, provider.callCount())
	call := provider.call(0)
	assert.Equal(t, "tok-new", call.token)
	assert.Equal(t, "Plot booked", call.title)
	assert.Equal(t, userID.String(), call.data["userId"])

	assert.Len(t, notifications.byStatus(model.DeliveryStatusSent), 1)
}

func TestPushSenderRecordsProviderFailure(t *testing.T) {
	devices := newFakeDeviceRepo()
	notifications := newFakeNotificationRepo()
	rec := newTestRecorder(notifications, devices)
	provider := &fakePushProvider{
		failOn: func(int, string) error { return errors.New("fcm unavailable") },
	}
	sender := NewPushSender(provider, rec, logger.Nop())

	userID := uuid.New()
	require.NoError(t, rec.RegisterDevice(context.Background(), model.AuditContext{}, userID, "tok-1", "ios"))

	err := sender.Send(context.Background(), testInstruction(userID))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrDeliveryFailed, apperrors.CodeOf(err))
	failed := notifications.byStatus(model.DeliveryStatusFailed)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].ErrorDetail, "fcm unavailable")
	// generic provider failure must not deactivate the token
	assert.Equal(t, 1, devices.activeCount())
}

func TestPushSenderDeactivatesUnregisteredToken(t *testing.T) {
	devices := newFakeDeviceRepo()
	notifications := newFakeNotificationRepo()
	rec := newTestRecorder(notifications, devices)
	provider := &fakePushProvider{
		failOn: func(int, string) error { return errUnregisteredToken },
	}
	sender := NewPushSender(provider, rec, logger.Nop())

	userID := uuid.New()
	require.NoError(t, rec.RegisterDevice(context.Background(), model.AuditContext{}, userID, "tok-stale", "ios"))

	err := sender.Send(context.Background(), testInstruction(userID))

	require.Error(t, err)
	assert.Zero(t, devices.activeCount())
	assert.Len(t, notifications.byStatus(model.DeliveryStatusFailed), 1)
}

func TestPushSenderFailsOnMissingPushMessage(t *testing.T) {
	rec := newTestRecorder(newFakeNotificationRepo(), newFakeDeviceRepo())
	sender := NewPushSender(&fakePushProvider{}, rec, logger.Nop())

	instr := testInstruction(uuid.New())
	instr.Messages = instr.Messages[1:] // email only

	err := sender.Send(context.Background(), instr)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrChannelMessageMissing, apperrors.CodeOf(err))
}

func TestEmailSenderRendersAndDelivers(t *testing.T) {
	notifications := newFakeNotificationRepo()
	rec := newTestRecorder(notifications, newFakeDeviceRepo())
	transport := &fakeTransport{}
	sender := NewEmailSender(&stubRenderer{}, transport, rec, logger.Nop())

	instr := testInstruction(uuid.New())
	require.NoError(t, sender.Send(context.Background(), instr))

	require.Equal(t, 1, transport.callCount())
	call := transport.call(0)
	assert.Equal(t, "ramesh@example.com", call.to)
	assert.Equal(t, "Plot 12A booked", call.subject)
	assert.Contains(t, call.html, "sale_created")
	assert.Len(t, notifications.byStatus(model.DeliveryStatusSent), 1)
}

func TestEmailSenderFailsOnMissingEmailMessage(t *testing.T) {
	rec := newTestRecorder(newFakeNotificationRepo(), newFakeDeviceRepo())
	sender := NewEmailSender(&stubRenderer{}, &fakeTransport{}, rec, logger.Nop())

	instr := testInstruction(uuid.New())
	instr.Messages = instr.Messages[:1] // push only

	err := sender.Send(context.Background(), instr)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrChannelMessageMissing, apperrors.CodeOf(err))
}

func TestEmailSenderRecordsTransportFailure(t *testing.T) {
	notifications := newFakeNotificationRepo()
	rec := newTestRecorder(notifications, newFakeDeviceRepo())
	transport := &fakeTransport{failErr: errors.New("connection refused")}
	sender := NewEmailSender(&stubRenderer{}, transport, rec, logger.Nop())

	err := sender.Send(context.Background(), testInstruction(uuid.New()))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrDeliveryFailed, apperrors.CodeOf(err))
	failed := notifications.byStatus(model.DeliveryStatusFailed)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].ErrorDetail, "connection refused")
}

func TestEmailSenderRecordsRenderFailure(t *testing.T) {
	notifications := newFakeNotificationRepo()
	rec := newTestRecorder(notifications, newFakeDeviceRepo())
	transport := &fakeTransport{}
	sender := NewEmailSender(&stubRenderer{failErr: errors.New("template broken")}, transport, rec, logger.Nop())

	err := sender.Send(context.Background(), testInstruction(uuid.New()))

	require.Error(t, err)
	assert.Zero(t, transport.callCount())
	assert.Len(t, notifications.byStatus(model.DeliveryStatusFailed), 1)
}

func TestEmailSenderSkipsRecipientWithoutAddress(t *testing.T) {
	notifications := newFakeNotificationRepo()
	rec := newTestRecorder(notifications, newFakeDeviceRepo())
	transport := &fakeTransport{}
	sender := NewEmailSender(&stubRenderer{}, transport, rec, logger.Nop())

	instr := testInstruction(uuid.New())
	instr.Recipient.Email = ""

	require.NoError(t, sender.Send(context.Background(), instr))
	assert.Zero(t, transport.callCount())
	assert.Zero(t, notifications.count())
}
