package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/pkg/enums"
)

// Disbursement records the payout of verified booking funds to an operator,
// net of the platform commission.
type Disbursement struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID         uuid.UUID                `gorm:"column:booking_id;type:uuid;not null;uniqueIndex:idx_disbursements_booking_id"`
	OperatorID        uuid.UUID                `gorm:"column:operator_id;type:uuid;not null;index"`
	GrossAmount       decimal.Decimal          `gorm:"column:gross_amount;type:numeric(12,2);not null"`
	CommissionPercent decimal.Decimal          `gorm:"column:commission_percent;type:numeric(5,2);not null"`
	CommissionAmount  decimal.Decimal          `gorm:"column:commission_amount;type:numeric(12,2);not null"`
	NetAmount         decimal.Decimal          `gorm:"column:net_amount;type:numeric(12,2);not null"`
	Currency          enums.Currency           `gorm:"column:currency;type:text;not null"`
	Status            enums.DisbursementStatus `gorm:"column:status;type:disbursement_status;not null;default:'processing'"`
	Method            string                   `gorm:"column:method;type:text;not null"`
	Notes             *string                  `gorm:"column:notes"`
	Reference         *string                  `gorm:"column:reference"`
	PaidAt            *time.Time               `gorm:"column:paid_at"`
	CreatedBy         uuid.UUID                `gorm:"column:created_by;type:uuid;not null"`
	Booking           *Booking                 `gorm:"foreignKey:BookingID"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
