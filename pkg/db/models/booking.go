package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/pkg/enums"
	"github.com/safariconnector/backend/pkg/types"
)

// Booking is the confirmed-intent record produced by accepting a quote or by
// booking a published trip directly. The unique index on quote_id makes
// acceptance idempotent: a quote can only ever yield one booking.
type Booking struct {
	ID                 uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID            *uuid.UUID                `gorm:"column:quote_id;type:uuid;uniqueIndex:idx_bookings_quote_id"`
	EnquiryID          *uuid.UUID                `gorm:"column:enquiry_id;type:uuid;index"`
	TripID             *uuid.UUID                `gorm:"column:trip_id;type:uuid;index"`
	TravellerID        uuid.UUID                 `gorm:"column:traveller_id;type:uuid;not null;index"`
	OperatorID         uuid.UUID                 `gorm:"column:operator_id;type:uuid;not null;index"`
	Reference          string                    `gorm:"column:reference;type:text;not null;uniqueIndex"`
	Status             enums.BookingStatus       `gorm:"column:status;type:booking_status;not null;default:'awaiting_payment'"`
	PaymentStatus      enums.PaymentStatus       `gorm:"column:payment_status;type:payment_status;not null;default:'unpaid'"`
	DateFrom           *time.Time                `gorm:"column:date_from;type:date"`
	DateTo             *time.Time                `gorm:"column:date_to;type:date"`
	Pax                int                       `gorm:"column:pax;not null;default:1"`
	TotalAmount        decimal.Decimal           `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency           enums.Currency            `gorm:"column:currency;type:text;not null"`
	CommissionPercent  decimal.Decimal           `gorm:"column:commission_percent;type:numeric(5,2);not null;default:10"`
	PaymentRef         *string                   `gorm:"column:payment_ref"`
	PaymentNote        *string                   `gorm:"column:payment_note"`
	PaymentSubmittedAt *time.Time                `gorm:"column:payment_submitted_at"`
	PaymentVerifiedAt  *time.Time                `gorm:"column:payment_verified_at"`
	VerifiedBy         *uuid.UUID                `gorm:"column:verified_by;type:uuid"`
	DisbursementStatus *enums.DisbursementStatus `gorm:"column:disbursement_status;type:disbursement_status"`
	Meta               types.JSONMap             `gorm:"column:meta;type:jsonb"`
	ConfirmedAt        *time.Time                `gorm:"column:confirmed_at"`
	CancelledAt        *time.Time                `gorm:"column:cancelled_at"`
	ExpiredAt          *time.Time                `gorm:"column:expired_at"`
	NudgedAt           *time.Time                `gorm:"column:nudged_at"`
	Quote              *Quote                    `gorm:"foreignKey:QuoteID"`
	Trip               *Trip                     `gorm:"foreignKey:TripID"`
	CreatedAt          time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
