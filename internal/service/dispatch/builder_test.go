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
)

func saleCreatedEvent(customerID, agentID uuid.UUID, saleDate time.Time) *model.DomainEvent {
	return model.NewDomainEvent(model.EventSaleCreated, map[string]interface{}{
		"customer_id":   customerID.String(),
		"agent_id":      agentID.String(),
		"customer_name": "Ramesh Kumar",
		"plot_number":   "12A",
		"sale_id":       "SALE-1001",
		"amount":        2500000.0,
		"sale_date":     saleDate.Format(time.RFC3339),
	})
}

func TestSaleCreatedBuildsInstructionPerStakeholder(t *testing.T) {
	users := newFakeUserRepo()
	customerID := users.addUser("Ramesh Kumar", "ramesh@example.com", time.Now())
	agentID := users.addUser("Asha Verma", "asha@example.com", time.Now())
	users.addUser("Finance One", "finance@example.com", time.Now(), model.RoleFinance)
	users.addUser("The MD", "md@example.com", time.Now(), model.RoleMD)

	saleDate := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	event := saleCreatedEvent(customerID, agentID, saleDate)

	registry := DefaultRegistry(NewRecipientResolver(users))
	instructions, err := registry.Build(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, instructions, 4)

	roles := map[model.Role]bool{}
	for _, instr := range instructions {
		roles[instr.Stakeholder] = true
		require.NotEmpty(t, instr.Messages)
		assert.Equal(t, event.ID, instr.EventID)
		assert.Equal(t, model.EventSaleCreated, instr.EventType)
		assert.Equal(t, "SALE-1001", instr.ReferenceID)

		push, ok := instr.Message(model.ChannelPush)
		require.True(t, ok)
		assert.Contains(t, push.Title, "Plot booked")

		emailMsg, ok := instr.Message(model.ChannelEmail)
		require.True(t, ok)
		assert.Equal(t, "SALE_CREATED", emailMsg.Data["eventType"])
		assert.Equal(t, "sale_created", emailMsg.Data["template"])
		assert.Equal(t, "Ramesh Kumar", emailMsg.Data["customerName"])
		assert.Equal(t, "12A", emailMsg.Data["plotNumber"])
		assert.Equal(t, "2026-03-11", emailMsg.Data["validTill"])
	}
	assert.True(t, roles[model.RoleCustomer])
	assert.True(t, roles[model.RoleAgent])
	assert.True(t, roles[model.RoleFinance])
	assert.True(t, roles[model.RoleMD])
}

func TestSaleCreatedSharesPushCopyAcrossStakeholders(t *testing.T) {
	users := newFakeUserRepo()
	customerID := users.addUser("Ramesh Kumar", "ramesh@example.com", time.Now())
	agentID := users.addUser("Asha Verma", "asha@example.com", time.Now())
	users.addUser("Finance One", "finance@example.com", time.Now(), model.RoleFinance)
	users.addUser("The MD", "md@example.com", time.Now(), model.RoleMD)

	registry := DefaultRegistry(NewRecipientResolver(users))
	instructions, err := registry.Build(context.Background(), saleCreatedEvent(customerID, agentID, time.Now()))
	require.NoError(t, err)

	first, _ := instructions[0].Message(model.ChannelPush)
	for _, instr := range instructions[1:] {
		push, _ := instr.Message(model.ChannelPush)
		assert.Equal(t, first.Title, push.Title)
		assert.Equal(t, first.Body, push.Body)
	}
}

func TestSaleCreatedFailsWithoutFinanceRoleHolder(t *testing.T) {
	users := newFakeUserRepo()
	customerID := users.addUser("Ramesh Kumar", "ramesh@example.com", time.Now())
	agentID := users.addUser("Asha Verma", "asha@example.com", time.Now())
	users.addUser("The MD", "md@example.com", time.Now(), model.RoleMD)

	registry := DefaultRegistry(NewRecipientResolver(users))
	instructions, err := registry.Build(context.Background(), saleCreatedEvent(customerID, agentID, time.Now()))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNoRoleHolder, apperrors.CodeOf(err))
	assert.Nil(t, instructions)
}

func TestSaleCreatedFailsOnMissingPayloadField(t *testing.T) {
	users := newFakeUserRepo()
	customerID := users.addUser("Ramesh Kumar", "ramesh@example.com", time.Now())
	agentID := users.addUser("Asha Verma", "asha@example.com", time.Now())
	users.addUser("Finance One", "finance@example.com", time.Now(), model.RoleFinance)
	users.addUser("The MD", "md@example.com", time.Now(), model.RoleMD)

	event := saleCreatedEvent(customerID, agentID, time.Now())
	delete(event.Payload, "plot_number")

	registry := DefaultRegistry(NewRecipientResolver(users))
	instructions, err := registry.Build(context.Background(), event)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrEventPayload, apperrors.CodeOf(err))
	assert.Nil(t, instructions)
}

func TestRegistryRejectsUnknownEventType(t *testing.T) {
	registry := NewRegistry(map[model.EventType]Builder{})
	event := model.NewDomainEvent("PLOT_SURVEYED", nil)

	_, err := registry.Build(context.Background(), event)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnknownEventType, apperrors.CodeOf(err))
}

func TestFirstRoleHolderIsEarliestCreated(t *testing.T) {
	users := newFakeUserRepo()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	users.addUser("Finance Later", "later@example.com", base.Add(time.Hour), model.RoleFinance)
	earliest := users.addUser("Finance Earliest", "earliest@example.com", base, model.RoleFinance)

	resolver := NewRecipientResolver(users)
	rec, err := resolver.FirstWithRole(context.Background(), model.RoleFinance)
	require.NoError(t, err)
	assert.Equal(t, earliest, rec.UserID)
}

func TestPaymentReceivedBuildsThreeInstructions(t *testing.T) {
	users := newFakeUserRepo()
	customerID := users.addUser("Ramesh Kumar", "ramesh@example.com", time.Now())
	agentID := users.addUser("Asha Verma", "asha@example.com", time.Now())
	users.addUser("Finance One", "finance@example.com", time.Now(), model.RoleFinance)

	event := model.NewDomainEvent(model.EventPaymentReceived, map[string]interface{}{
		"customer_id":   customerID.String(),
		"agent_id":      agentID.String(),
		"customer_name": "Ramesh Kumar",
		"plot_number":   "12A",
		"sale_id":       "SALE-1001",
		"amount":        500000.0,
		"payment_date":  time.Now().Format(time.RFC3339),
	})

	registry := DefaultRegistry(NewRecipientResolver(users))
	instructions, err := registry.Build(context.Background(), event)
	require.NoError(t, err)
	assert.Len(t, instructions, 3)
	for _, instr := range instructions {
		emailMsg, ok := instr.Message(model.ChannelEmail)
		require.True(t, ok)
		assert.Equal(t, "payment_received", emailMsg.Data["template"])
	}
}

func TestResolverFailureSurfacesError(t *testing.T) {
	users := newFakeUserRepo()
	agentID := users.addUser("Asha Verma", "asha@example.com", time.Now())
	users.addUser("Finance One", "finance@example.com", time.Now(), model.RoleFinance)
	users.addUser("The MD", "md@example.com", time.Now(), model.RoleMD)

	// customer id that does not exist
	event := saleCreatedEvent(uuid.New(), agentID, time.Now())

	registry := DefaultRegistry(NewRecipientResolver(users))
	instructions, err := registry.Build(context.Background(), event)
	require.Error(t, err)
	assert.Nil(t, instructions)
	assert.False(t, errors.Is(err, context.Canceled))
}
