package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	apperrors "github.com/dhinakarr/realtors-app-sub001/pkg/errors"
)

const (
	// bookingValidityDays is how long a fresh booking stays open for the
	// customer to complete formalities.
	bookingValidityDays = 10

	dateLayout = "2006-01-02"
)

// SaleCreatedBuilder notifies all four stakeholders of a new plot booking:
// the customer, the handling agent, and the first active FINANCE and MD
// role holders.
type SaleCreatedBuilder struct {
	resolver *RecipientResolver
}

func NewSaleCreatedBuilder(resolver *RecipientResolver) *SaleCreatedBuilder {
	return &SaleCreatedBuilder{resolver: resolver}
}

func (b *SaleCreatedBuilder) Build(ctx context.Context, event *model.DomainEvent) ([]*model.DispatchInstruction, error) {
	customerID, err := payloadUUID(event, "customer_id")
	if err != nil {
		return nil, err
	}
	agentID, err := payloadUUID(event, "agent_id")
	if err != nil {
		return nil, err
	}
	customerName, err := payloadString(event, "customer_name")
	if err != nil {
		return nil, err
	}
	plotNumber, err := payloadString(event, "plot_number")
	if err != nil {
		return nil, err
	}
	saleID, err := payloadString(event, "sale_id")
	if err != nil {
		return nil, err
	}
	amount, ok := event.PayloadFloat("amount")
	if !ok {
		return nil, apperrors.EventPayload(string(event.Type), "amount")
	}
	saleDate, err := payloadDate(event, "sale_date")
	if err != nil {
		return nil, err
	}

	// Resolve every stakeholder before emitting anything so a staffing gap
	// aborts the whole build.
	customer, err := b.resolver.Recipient(ctx, customerID)
	if err != nil {
		return nil, err
	}
	agent, err := b.resolver.Recipient(ctx, agentID)
	if err != nil {
		return nil, err
	}
	finance, err := b.resolver.FirstWithRole(ctx, model.RoleFinance)
	if err != nil {
		return nil, err
	}
	md, err := b.resolver.FirstWithRole(ctx, model.RoleMD)
	if err != nil {
		return nil, err
	}

	validTill := saleDate.AddDate(0, 0, bookingValidityDays)

	push := model.ChannelMessage{
		Channel: model.ChannelPush,
		Title:   "Plot booked",
		Body:    fmt.Sprintf("Plot %s booked for %s", plotNumber, customerName),
	}
	emailMsg := model.ChannelMessage{
		Channel: model.ChannelEmail,
		Title:   fmt.Sprintf("Plot %s booked", plotNumber),
		Body:    push.Body,
		Data: map[string]string{
			"eventType":    string(event.Type),
			templateKey:    "sale_created",
			"customerName": customerName,
			"plotNumber":   plotNumber,
			"amount":       strconv.FormatFloat(amount, 'f', 2, 64),
			"saleDate":     saleDate.Format(dateLayout),
			"validTill":    validTill.Format(dateLayout),
		},
	}

	stakeholders := []struct {
		role model.Role
		rec  model.Recipient
	}{
		{model.RoleCustomer, customer},
		{model.RoleAgent, agent},
		{model.RoleFinance, finance},
		{model.RoleMD, md},
	}

	instructions := make([]*model.DispatchInstruction, 0, len(stakeholders))
	for _, s := range stakeholders {
		instructions = append(instructions, &model.DispatchInstruction{
			Stakeholder: s.role,
			Recipient:   s.rec,
			EventID:     event.ID,
			EventType:   event.Type,
			ReferenceID: saleID,
			Messages:    []model.ChannelMessage{push, emailMsg},
		})
	}
	return instructions, nil
}

// PaymentReceivedBuilder notifies the customer, the handling agent, and the
// first active FINANCE role holder of a payment against a booking.
type PaymentReceivedBuilder struct {
	resolver *RecipientResolver
}

func NewPaymentReceivedBuilder(resolver *RecipientResolver) *PaymentReceivedBuilder {
	return &PaymentReceivedBuilder{resolver: resolver}
}

func (b *PaymentReceivedBuilder) Build(ctx context.Context, event *model.DomainEvent) ([]*model.DispatchInstruction, error) {
	customerID, err := payloadUUID(event, "customer_id")
	if err != nil {
		return nil, err
	}
	agentID, err := payloadUUID(event, "agent_id")
	if err != nil {
		return nil, err
	}
	customerName, err := payloadString(event, "customer_name")
	if err != nil {
		return nil, err
	}
	plotNumber, err := payloadString(event, "plot_number")
	if err != nil {
		return nil, err
	}
	saleID, err := payloadString(event, "sale_id")
	if err != nil {
		return nil, err
	}
	amount, ok := event.PayloadFloat("amount")
	if !ok {
		return nil, apperrors.EventPayload(string(event.Type), "amount")
	}
	paymentDate, err := payloadDate(event, "payment_date")
	if err != nil {
		return nil, err
	}

	customer, err := b.resolver.Recipient(ctx, customerID)
	if err != nil {
		return nil, err
	}
	agent, err := b.resolver.Recipient(ctx, agentID)
	if err != nil {
		return nil, err
	}
	finance, err := b.resolver.FirstWithRole(ctx, model.RoleFinance)
	if err != nil {
		return nil, err
	}

	amountStr := strconv.FormatFloat(amount, 'f', 2, 64)
	push := model.ChannelMessage{
		Channel: model.ChannelPush,
		Title:   "Payment received",
		Body:    fmt.Sprintf("Payment of %s received for plot %s", amountStr, plotNumber),
	}
	emailMsg := model.ChannelMessage{
		Channel: model.ChannelEmail,
		Title:   fmt.Sprintf("Payment received for plot %s", plotNumber),
		Body:    push.Body,
		Data: map[string]string{
			"eventType":    string(event.Type),
			templateKey:    "payment_received",
			"customerName": customerName,
			"plotNumber":   plotNumber,
			"amount":       amountStr,
			"paymentDate":  paymentDate.Format(dateLayout),
		},
	}

	stakeholders := []struct {
		role model.Role
		rec  model.Recipient
	}{
		{model.RoleCustomer, customer},
		{model.RoleAgent, agent},
		{model.RoleFinance, finance},
	}

	instructions := make([]*model.DispatchInstruction, 0, len(stakeholders))
	for _, s := range stakeholders {
		instructions = append(instructions, &model.DispatchInstruction{
			Stakeholder: s.role,
			Recipient:   s.rec,
			EventID:     event.ID,
			EventType:   event.Type,
			ReferenceID: saleID,
			Messages:    []model.ChannelMessage{push, emailMsg},
		})
	}
	return instructions, nil
}

// SaleCancelledBuilder notifies the customer, the handling agent, and the
// first active MD role holder of a cancelled booking.
type SaleCancelledBuilder struct {
	resolver *RecipientResolver
}

func NewSaleCancelledBuilder(resolver *RecipientResolver) *SaleCancelledBuilder {
	return &SaleCancelledBuilder{resolver: resolver}
}

func (b *SaleCancelledBuilder) Build(ctx context.Context, event *model.DomainEvent) ([]*model.DispatchInstruction, error) {
	customerID, err := payloadUUID(event, "customer_id")
	if err != nil {
		return nil, err
	}
	agentID, err := payloadUUID(event, "agent_id")
	if err != nil {
		return nil, err
	}
	customerName, err := payloadString(event, "customer_name")
	if err != nil {
		return nil, err
	}
	plotNumber, err := payloadString(event, "plot_number")
	if err != nil {
		return nil, err
	}
	saleID, err := payloadString(event, "sale_id")
	if err != nil {
		return nil, err
	}
	cancelDate, err := payloadDate(event, "cancel_date")
	if err != nil {
		return nil, err
	}

	customer, err := b.resolver.Recipient(ctx, customerID)
	if err != nil {
		return nil, err
	}
	agent, err := b.resolver.Recipient(ctx, agentID)
	if err != nil {
		return nil, err
	}
	md, err := b.resolver.FirstWithRole(ctx, model.RoleMD)
	if err != nil {
		return nil, err
	}

	push := model.ChannelMessage{
		Channel: model.ChannelPush,
		Title:   "Booking cancelled",
		Body:    fmt.Sprintf("Booking for plot %s cancelled", plotNumber),
	}
	emailMsg := model.ChannelMessage{
		Channel: model.ChannelEmail,
		Title:   fmt.Sprintf("Booking for plot %s cancelled", plotNumber),
		Body:    push.Body,
		Data: map[string]string{
			"eventType":    string(event.Type),
			templateKey:    "sale_cancelled",
			"customerName": customerName,
			"plotNumber":   plotNumber,
			"cancelDate":   cancelDate.Format(dateLayout),
		},
	}

	stakeholders := []struct {
		role model.Role
		rec  model.Recipient
	}{
		{model.RoleCustomer, customer},
		{model.RoleAgent, agent},
		{model.RoleMD, md},
	}

	instructions := make([]*model.DispatchInstruction, 0, len(stakeholders))
	for _, s := range stakeholders {
		instructions = append(instructions, &model.DispatchInstruction{
			Stakeholder: s.role,
			Recipient:   s.rec,
			EventID:     event.ID,
			EventType:   event.Type,
			ReferenceID: saleID,
			Messages:    []model.ChannelMessage{push, emailMsg},
		})
	}
	return instructions, nil
}

func payloadString(event *model.DomainEvent, key string) (string, error) {
	s, ok := event.PayloadString(key)
	if !ok || s == "" {
		return "", apperrors.EventPayload(string(event.Type), key)
	}
	return s, nil
}

func payloadUUID(event *model.DomainEvent, key string) (uuid.UUID, error) {
	s, err := payloadString(event, key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperrors.EventPayload(string(event.Type), key)
	}
	return id, nil
}

func payloadDate(event *model.DomainEvent, key string) (time.Time, error) {
	s, err := payloadString(event, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperrors.EventPayload(string(event.Type), key)
	}
	return t, nil
}
