package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/internal/mailer"
	"github.com/safariconnector/backend/pkg/db/models"
	"github.com/safariconnector/backend/pkg/enums"
	"github.com/safariconnector/backend/pkg/logger"
	"github.com/safariconnector/backend/pkg/outbox"
	"github.com/safariconnector/backend/pkg/outbox/idempotency"
)

const domainNotificationConsumer = "domain-notifications"

// Consumer watches domain events and fans them out as in-app notifications,
// plus email for payment reminders.
type Consumer struct {
	repo         Repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	mail         mailer.Sender
	logg         *logger.Logger
}

// NewConsumer builds the domain notification consumer.
func NewConsumer(repo Repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, mail mailer.Sender, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		mail:         mail,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, domainNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventEnquiryCreated:
		return c.handleEnquiryCreated(ctx, data, logCtx)
	case enums.EventQuoteIssued:
		return c.handleQuoteIssued(ctx, data, logCtx)
	case enums.EventQuoteDecided:
		return c.handleQuoteDecided(ctx, data, logCtx)
	case enums.EventBookingCreated:
		return c.handleBookingCreated(ctx, data, logCtx)
	case enums.EventBookingPaymentSubmitted:
		return c.handlePaymentSubmitted(ctx, data, logCtx)
	case enums.EventPaymentVerified:
		return c.handlePaymentVerified(ctx, data, logCtx)
	case enums.EventBookingConfirmed:
		return c.handleBookingConfirmed(ctx, data, logCtx)
	case enums.EventBookingPaymentNudge:
		return c.handlePaymentNudge(ctx, data, logCtx)
	case enums.EventBookingExpired:
		return c.handleBookingExpired(ctx, data, logCtx)
	case enums.EventDisbursementCreated:
		return c.handleDisbursementCreated(ctx, data, logCtx)
	default:
		c.logg.Info(logCtx, "event type not handled")
		return nil
	}
}

func (c *Consumer) handleEnquiryCreated(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload enquiryCreatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse enquiry payload: %w", err)
	}
	if payload.OperatorID == nil {
		c.logg.Info(logCtx, "enquiry not routed to an operator, skipping alert")
		return nil
	}
	link := fmt.Sprintf("/operator/enquiries/%s", payload.EnquiryID)
	err := c.notifyOperatorUsers(ctx, *payload.OperatorID, models.Notification{
		Type:    enums.NotificationTypeEnquiryAlert,
		Title:   "New enquiry received",
		Message: fmt.Sprintf("A traveller enquiry from %s is waiting for a quote.", payload.TravellerEmail),
		Link:    stringPtr(link),
	})
	if err != nil {
		return err
	}
	c.logg.Info(logCtx, "operator notified of new enquiry")
	return nil
}

func (c *Consumer) handleQuoteIssued(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload quoteIssuedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse quote payload: %w", err)
	}
	travellerID, _, err := c.repo.EnquiryRecipient(ctx, payload.EnquiryID)
	if err != nil {
		return fmt.Errorf("resolve enquiry recipient: %w", err)
	}
	if travellerID == nil {
		c.logg.Info(logCtx, "enquiry has no linked traveller account")
		return nil
	}
	link := fmt.Sprintf("/quotes/%s", payload.QuoteID)
	notification := &models.Notification{
		UserID:  *travellerID,
		Type:    enums.NotificationTypeQuoteAlert,
		Title:   "You have a new quote",
		Message: fmt.Sprintf("An operator quoted %s %s for your safari enquiry.", payload.Currency, payload.TotalPrice.StringFixed(2)),
		Link:    stringPtr(link),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "traveller notified of new quote")
	return nil
}

func (c *Consumer) handleQuoteDecided(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload quoteDecidedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse quote payload: %w", err)
	}
	// Acceptance produces a booking_created event which carries the operator
	// notification, so only declines are surfaced here.
	if payload.Decision != enums.QuoteDecisionDecline {
		return nil
	}
	operatorID, err := c.repo.EnquiryOperatorID(ctx, payload.EnquiryID)
	if err != nil {
		return fmt.Errorf("resolve enquiry operator: %w", err)
	}
	if operatorID == nil {
		c.logg.Info(logCtx, "enquiry not routed to an operator, skipping alert")
		return nil
	}
	link := fmt.Sprintf("/operator/enquiries/%s", payload.EnquiryID)
	err = c.notifyOperatorUsers(ctx, *operatorID, models.Notification{
		Type:    enums.NotificationTypeQuoteAlert,
		Title:   "Quote declined",
		Message: "The traveller declined your quote.",
		Link:    stringPtr(link),
	})
	if err != nil {
		return err
	}
	c.logg.Info(logCtx, "operator notified of declined quote")
	return nil
}

func (c *Consumer) handleBookingCreated(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload bookingCreatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse booking payload: %w", err)
	}
	link := fmt.Sprintf("/operator/bookings/%s", payload.BookingID)
	err := c.notifyOperatorUsers(ctx, payload.OperatorID, models.Notification{
		Type:    enums.NotificationTypeBookingAlert,
		Title:   "Quote accepted",
		Message: fmt.Sprintf("Booking %s was created and is awaiting the traveller's payment.", payload.Reference),
		Link:    stringPtr(link),
	})
	if err != nil {
		return err
	}
	c.logg.Info(logCtx, "operator notified of new booking")
	return nil
}

func (c *Consumer) handlePaymentSubmitted(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload paymentSubmittedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payment payload: %w", err)
	}
	adminLink := fmt.Sprintf("/admin/payments/%s", payload.BookingID)
	if err := c.notifyAdminUsers(ctx, models.Notification{
		Type:    enums.NotificationTypePaymentAlert,
		Title:   "Payment proof submitted",
		Message: "A traveller submitted proof of payment for verification.",
		Link:    stringPtr(adminLink),
	}); err != nil {
		return err
	}
	operatorLink := fmt.Sprintf("/operator/bookings/%s", payload.BookingID)
	err := c.notifyOperatorUsers(ctx, payload.OperatorID, models.Notification{
		Type:    enums.NotificationTypePaymentAlert,
		Title:   "Payment proof submitted",
		Message: "The traveller submitted proof of payment. Verification is in progress.",
		Link:    stringPtr(operatorLink),
	})
	if err != nil {
		return err
	}
	c.logg.Info(logCtx, "payment submission fanned out")
	return nil
}

func (c *Consumer) handlePaymentVerified(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload paymentVerifiedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payment payload: %w", err)
	}
	travellerLink := fmt.Sprintf("/bookings/%s", payload.BookingID)
	notification := &models.Notification{
		UserID:  payload.TravellerID,
		Type:    enums.NotificationTypePaymentAlert,
		Title:   "Payment verified",
		Message: "Your payment has been verified. The operator will confirm your booking shortly.",
		Link:    stringPtr(travellerLink),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	operatorLink := fmt.Sprintf("/operator/bookings/%s", payload.BookingID)
	err := c.notifyOperatorUsers(ctx, payload.OperatorID, models.Notification{
		Type:    enums.NotificationTypePaymentAlert,
		Title:   "Payment verified",
		Message: "Payment for a booking was verified. You can confirm the booking.",
		Link:    stringPtr(operatorLink),
	})
	if err != nil {
		return err
	}
	c.logg.Info(logCtx, "payment verification fanned out")
	return nil
}

func (c *Consumer) handleBookingConfirmed(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload bookingConfirmedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse booking payload: %w", err)
	}
	link := fmt.Sprintf("/bookings/%s", payload.BookingID)
	notification := &models.Notification{
		UserID:  payload.TravellerID,
		Type:    enums.NotificationTypeBookingAlert,
		Title:   "Booking confirmed",
		Message: fmt.Sprintf("Your safari booking %s is confirmed. Get ready for your trip!", payload.Reference),
		Link:    stringPtr(link),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "traveller notified of confirmation")
	return nil
}

func (c *Consumer) handlePaymentNudge(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload paymentNudgePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse nudge payload: %w", err)
	}
	link := fmt.Sprintf("/bookings/%s", payload.BookingID)
	notification := &models.Notification{
		UserID:  payload.TravellerID,
		Type:    enums.NotificationTypePaymentAlert,
		Title:   "Payment reminder",
		Message: fmt.Sprintf("Booking %s is still awaiting payment. Submit your proof of transfer to secure your trip.", payload.Reference),
		Link:    stringPtr(link),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}

	email, err := c.repo.UserEmail(ctx, payload.TravellerID)
	if err != nil {
		c.logg.Error(logCtx, "failed to resolve traveller email", err)
		return nil
	}
	subject := fmt.Sprintf("Payment reminder for booking %s", payload.Reference)
	body := fmt.Sprintf(
		"Hello,\n\nYour safari booking %s is still awaiting payment. Please make the bank transfer and upload your proof of payment to keep your booking.\n\nSafari Connector",
		payload.Reference,
	)
	if err := c.mail.Send(ctx, email, subject, body); err != nil {
		c.logg.Error(logCtx, "failed to send reminder email", err)
		return nil
	}
	c.logg.Info(logCtx, "payment reminder delivered")
	return nil
}

func (c *Consumer) handleBookingExpired(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload bookingExpiredPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse booking payload: %w", err)
	}
	travellerLink := fmt.Sprintf("/bookings/%s", payload.BookingID)
	notification := &models.Notification{
		UserID:  payload.TravellerID,
		Type:    enums.NotificationTypeBookingAlert,
		Title:   "Booking expired",
		Message: "Your booking expired because payment was not received in time.",
		Link:    stringPtr(travellerLink),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	operatorLink := fmt.Sprintf("/operator/bookings/%s", payload.BookingID)
	err := c.notifyOperatorUsers(ctx, payload.OperatorID, models.Notification{
		Type:    enums.NotificationTypeBookingAlert,
		Title:   "Booking expired",
		Message: "A booking expired without payment and was released.",
		Link:    stringPtr(operatorLink),
	})
	if err != nil {
		return err
	}
	c.logg.Info(logCtx, "booking expiry fanned out")
	return nil
}

func (c *Consumer) handleDisbursementCreated(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload disbursementCreatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse disbursement payload: %w", err)
	}
	link := fmt.Sprintf("/operator/disbursements/%s", payload.DisbursementID)
	err := c.notifyOperatorUsers(ctx, payload.OperatorID, models.Notification{
		Type:    enums.NotificationTypePayoutAlert,
		Title:   "Payout initiated",
		Message: fmt.Sprintf("A payout of %s %s is on its way to your account.", payload.Currency, payload.NetAmount.StringFixed(2)),
		Link:    stringPtr(link),
	})
	if err != nil {
		return err
	}
	c.logg.Info(logCtx, "operator notified of payout")
	return nil
}

func (c *Consumer) notifyOperatorUsers(ctx context.Context, operatorID uuid.UUID, template models.Notification) error {
	if operatorID == uuid.Nil {
		return fmt.Errorf("operator id missing")
	}
	userIDs, err := c.repo.OperatorUserIDs(ctx, operatorID)
	if err != nil {
		return fmt.Errorf("resolve operator users: %w", err)
	}
	for _, userID := range userIDs {
		notification := template
		notification.UserID = userID
		if err := c.repo.Create(ctx, &notification); err != nil {
			return err
		}
	}
	return nil
}

func (c *Consumer) notifyAdminUsers(ctx context.Context, template models.Notification) error {
	userIDs, err := c.repo.AdminUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("resolve admin users: %w", err)
	}
	for _, userID := range userIDs {
		notification := template
		notification.UserID = userID
		if err := c.repo.Create(ctx, &notification); err != nil {
			return err
		}
	}
	return nil
}

func stringPtr(value string) *string {
	return &value
}

type enquiryCreatedPayload struct {
	EnquiryID      uuid.UUID  `json:"enquiry_id"`
	OperatorID     *uuid.UUID `json:"operator_id,omitempty"`
	TripID         *uuid.UUID `json:"trip_id,omitempty"`
	TravellerEmail string     `json:"traveller_email"`
}

type quoteIssuedPayload struct {
	QuoteID    uuid.UUID       `json:"quote_id"`
	EnquiryID  uuid.UUID       `json:"enquiry_id"`
	OperatorID uuid.UUID       `json:"operator_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Currency   enums.Currency  `json:"currency"`
}

type quoteDecidedPayload struct {
	QuoteID   uuid.UUID           `json:"quote_id"`
	EnquiryID uuid.UUID           `json:"enquiry_id"`
	Decision  enums.QuoteDecision `json:"decision"`
	BookingID *uuid.UUID          `json:"booking_id,omitempty"`
}

type bookingCreatedPayload struct {
	BookingID  uuid.UUID `json:"booking_id"`
	OperatorID uuid.UUID `json:"operator_id"`
	Reference  string    `json:"reference"`
}

type paymentSubmittedPayload struct {
	BookingID  uuid.UUID `json:"booking_id"`
	OperatorID uuid.UUID `json:"operator_id"`
}

type paymentVerifiedPayload struct {
	BookingID   uuid.UUID `json:"booking_id"`
	OperatorID  uuid.UUID `json:"operator_id"`
	TravellerID uuid.UUID `json:"traveller_id"`
}

type bookingConfirmedPayload struct {
	BookingID   uuid.UUID `json:"booking_id"`
	TravellerID uuid.UUID `json:"traveller_id"`
	Reference   string    `json:"reference"`
}

type paymentNudgePayload struct {
	BookingID   uuid.UUID `json:"booking_id"`
	TravellerID uuid.UUID `json:"traveller_id"`
	Reference   string    `json:"reference"`
}

type bookingExpiredPayload struct {
	BookingID   uuid.UUID `json:"booking_id"`
	TravellerID uuid.UUID `json:"traveller_id"`
	OperatorID  uuid.UUID `json:"operator_id"`
}

type disbursementCreatedPayload struct {
	DisbursementID uuid.UUID       `json:"disbursement_id"`
	OperatorID     uuid.UUID       `json:"operator_id"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	Currency       enums.Currency  `json:"currency"`
}
