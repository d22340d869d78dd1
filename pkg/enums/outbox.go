package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateEnquiry      OutboxAggregateType = "enquiry"
	AggregateQuote        OutboxAggregateType = "quote"
	AggregateBooking      OutboxAggregateType = "booking"
	AggregateDisbursement OutboxAggregateType = "disbursement"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateEnquiry,
	AggregateQuote,
	AggregateBooking,
	AggregateDisbursement,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventEnquiryCreated          OutboxEventType = "enquiry_created"
	EventQuoteIssued             OutboxEventType = "quote_issued"
	EventQuoteDecided            OutboxEventType = "quote_decided"
	EventBookingCreated          OutboxEventType = "booking_created"
	EventBookingPaymentSubmitted OutboxEventType = "booking_payment_submitted"
	EventPaymentVerified         OutboxEventType = "payment_verified"
	EventBookingConfirmed        OutboxEventType = "booking_confirmed"
	EventBookingPaymentNudge     OutboxEventType = "booking_payment_nudge"
	EventBookingExpired          OutboxEventType = "booking_expired"
	EventDisbursementCreated     OutboxEventType = "disbursement_created"
	EventNotificationRequested   OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventEnquiryCreated,
	EventQuoteIssued,
	EventQuoteDecided,
	EventBookingCreated,
	EventBookingPaymentSubmitted,
	EventPaymentVerified,
	EventBookingConfirmed,
	EventBookingPaymentNudge,
	EventBookingExpired,
	EventDisbursementCreated,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
