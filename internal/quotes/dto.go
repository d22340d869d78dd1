package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/pkg/enums"
)

// IssueQuoteInput captures the operator's priced offer against an enquiry.
// Re-issuing while the previous quote is still out replaces it.
type IssueQuoteInput struct {
	EnquiryID  uuid.UUID
	TripID     *uuid.UUID
	TotalPrice decimal.Decimal
	Currency   enums.Currency
	Itinerary  string
	Inclusions []string
	Exclusions []string
	ValidUntil *time.Time
}

// DecisionInput captures the traveller's answer to a quote.
type DecisionInput struct {
	QuoteID  uuid.UUID
	Decision enums.QuoteDecision
}

// DecisionResult reports the decided quote and, on acceptance, the booking it produced.
type DecisionResult struct {
	Quote   *QuoteSummary `json:"quote"`
	Booking *BookingRef   `json:"booking,omitempty"`
}

// BookingRef is the minimal booking reference returned from an acceptance.
type BookingRef struct {
	ID        uuid.UUID `json:"id"`
	Reference string    `json:"reference"`
}

// QuoteSummary exposes the fields returned in quote listings.
type QuoteSummary struct {
	ID         uuid.UUID         `json:"id"`
	EnquiryID  uuid.UUID         `json:"enquiry_id"`
	OperatorID uuid.UUID         `json:"operator_id"`
	TripID     *uuid.UUID        `json:"trip_id,omitempty"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Currency   enums.Currency    `json:"currency"`
	Itinerary  string            `json:"itinerary"`
	Inclusions []string          `json:"inclusions"`
	Exclusions []string          `json:"exclusions"`
	ValidUntil *time.Time        `json:"valid_until,omitempty"`
	Status     enums.QuoteStatus `json:"status"`
	DecidedAt  *time.Time        `json:"decided_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// QuoteList wraps the paginated quotes plus the next page cursor.
type QuoteList struct {
	Quotes     []QuoteSummary `json:"quotes"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// QuoteIssuedEvent is emitted when an operator sends a quote.
type QuoteIssuedEvent struct {
	QuoteID    uuid.UUID       `json:"quote_id"`
	EnquiryID  uuid.UUID       `json:"enquiry_id"`
	OperatorID uuid.UUID       `json:"operator_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Currency   enums.Currency  `json:"currency"`
}

// QuoteDecidedEvent is emitted when a traveller accepts or declines.
type QuoteDecidedEvent struct {
	QuoteID   uuid.UUID           `json:"quote_id"`
	EnquiryID uuid.UUID           `json:"enquiry_id"`
	Decision  enums.QuoteDecision `json:"decision"`
	BookingID *uuid.UUID          `json:"booking_id,omitempty"`
}
