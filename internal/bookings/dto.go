package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/pkg/enums"
)

// CreateDirectInput books a published trip without the enquiry/quote flow.
type CreateDirectInput struct {
	TripID   uuid.UUID
	DateFrom time.Time
	DateTo   time.Time
	Pax      int
}

// SubmitPaymentProofInput captures the traveller's transfer evidence.
type SubmitPaymentProofInput struct {
	BookingID  uuid.UUID
	PaymentRef string
	Note       *string
}

// VerifyPaymentInput captures the admin verification decision.
type VerifyPaymentInput struct {
	BookingID uuid.UUID
	Level     enums.PaymentLevel
}

// ListFilters describe the inputs supported by booking listings.
type ListFilters struct {
	Status *enums.BookingStatus
}

// BookingSummary exposes the fields returned in booking listings.
type BookingSummary struct {
	ID                 uuid.UUID                 `json:"id"`
	Reference          string                    `json:"reference"`
	QuoteID            *uuid.UUID                `json:"quote_id,omitempty"`
	EnquiryID          *uuid.UUID                `json:"enquiry_id,omitempty"`
	TripID             *uuid.UUID                `json:"trip_id,omitempty"`
	OperatorID         uuid.UUID                 `json:"operator_id"`
	Status             enums.BookingStatus       `json:"status"`
	PaymentStatus      enums.PaymentStatus       `json:"payment_status"`
	DisbursementStatus *enums.DisbursementStatus `json:"disbursement_status,omitempty"`
	DateFrom           *time.Time                `json:"date_from,omitempty"`
	DateTo             *time.Time                `json:"date_to,omitempty"`
	Pax                int                       `json:"pax"`
	TotalAmount        decimal.Decimal           `json:"total_amount"`
	Currency           enums.Currency            `json:"currency"`
	CreatedAt          time.Time                 `json:"created_at"`
}

// BookingList wraps the paginated bookings plus the next page cursor.
type BookingList struct {
	Bookings   []BookingSummary `json:"bookings"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// BookingCreatedEvent is emitted when a quote acceptance or a direct trip
// booking produces a booking.
type BookingCreatedEvent struct {
	BookingID   uuid.UUID       `json:"booking_id"`
	QuoteID     *uuid.UUID      `json:"quote_id,omitempty"`
	EnquiryID   *uuid.UUID      `json:"enquiry_id,omitempty"`
	TripID      *uuid.UUID      `json:"trip_id,omitempty"`
	TravellerID uuid.UUID       `json:"traveller_id"`
	OperatorID  uuid.UUID       `json:"operator_id"`
	Reference   string          `json:"reference"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    enums.Currency  `json:"currency"`
}

// PaymentSubmittedEvent is emitted when a traveller submits proof of payment.
type PaymentSubmittedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	OperatorID uuid.UUID `json:"operator_id"`
	PaymentRef string    `json:"payment_ref"`
}

// PaymentVerifiedEvent is emitted when an admin verifies a payment proof.
type PaymentVerifiedEvent struct {
	BookingID     uuid.UUID           `json:"booking_id"`
	OperatorID    uuid.UUID           `json:"operator_id"`
	TravellerID   uuid.UUID           `json:"traveller_id"`
	Level         enums.PaymentLevel  `json:"level"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
}

// BookingConfirmedEvent is emitted when an operator confirms a verified booking.
type BookingConfirmedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	OperatorID  uuid.UUID `json:"operator_id"`
	TravellerID uuid.UUID `json:"traveller_id"`
	Reference   string    `json:"reference"`
}

// BookingExpiredEvent is emitted when the payment window lapses.
type BookingExpiredEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	TravellerID uuid.UUID `json:"traveller_id"`
	OperatorID  uuid.UUID `json:"operator_id"`
}

// PaymentNudgeEvent is emitted when a payment reminder is due.
type PaymentNudgeEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	TravellerID uuid.UUID `json:"traveller_id"`
	Reference   string    `json:"reference"`
}
