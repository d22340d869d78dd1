package disbursements

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/pkg/enums"
)

// CreateInput captures the admin request to pay out a verified booking.
type CreateInput struct {
	BookingID uuid.UUID
	Method    string
	Notes     *string
	Reference *string
}

// DisbursementSummary exposes the fields returned in payout listings.
type DisbursementSummary struct {
	ID                uuid.UUID                `json:"id"`
	BookingID         uuid.UUID                `json:"booking_id"`
	OperatorID        uuid.UUID                `json:"operator_id"`
	GrossAmount       decimal.Decimal          `json:"gross_amount"`
	CommissionPercent decimal.Decimal          `json:"commission_percent"`
	CommissionAmount  decimal.Decimal          `json:"commission_amount"`
	NetAmount         decimal.Decimal          `json:"net_amount"`
	Currency          enums.Currency           `json:"currency"`
	Status            enums.DisbursementStatus `json:"status"`
	Method            string                   `json:"method"`
	Notes             *string                  `json:"notes,omitempty"`
	Reference         *string                  `json:"reference,omitempty"`
	PaidAt            *time.Time               `json:"paid_at,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
}

// DisbursementList wraps the paginated payouts plus the next page cursor.
type DisbursementList struct {
	Disbursements []DisbursementSummary `json:"disbursements"`
	NextCursor    string                `json:"next_cursor,omitempty"`
}

// DisbursementCreatedEvent is emitted when a payout is recorded.
type DisbursementCreatedEvent struct {
	DisbursementID uuid.UUID       `json:"disbursement_id"`
	BookingID      uuid.UUID       `json:"booking_id"`
	OperatorID     uuid.UUID       `json:"operator_id"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	Currency       enums.Currency  `json:"currency"`
}
