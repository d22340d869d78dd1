package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/pkg/enums"
)

// Quote is an operator's priced offer against an enquiry.
type Quote struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EnquiryID  uuid.UUID         `gorm:"column:enquiry_id;type:uuid;not null;index"`
	OperatorID uuid.UUID         `gorm:"column:operator_id;type:uuid;not null;index"`
	TripID     *uuid.UUID        `gorm:"column:trip_id;type:uuid"`
	TotalPrice decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null"`
	Currency   enums.Currency    `gorm:"column:currency;type:text;not null;default:'USD'"`
	Itinerary  string            `gorm:"column:itinerary;type:text;not null"`
	Inclusions pq.StringArray    `gorm:"column:inclusions;type:text[];not null;default:ARRAY[]::text[]"`
	Exclusions pq.StringArray    `gorm:"column:exclusions;type:text[];not null;default:ARRAY[]::text[]"`
	ValidUntil *time.Time        `gorm:"column:valid_until"`
	Status     enums.QuoteStatus `gorm:"column:status;type:quote_status;not null;default:'sent'"`
	DecidedAt  *time.Time        `gorm:"column:decided_at"`
	Enquiry    *Enquiry          `gorm:"foreignKey:EnquiryID"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
