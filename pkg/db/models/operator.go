package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Operator represents a tour operator selling safaris on the platform.
type Operator struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string          `gorm:"column:name;type:text;not null"`
	Slug              string          `gorm:"column:slug;type:text;not null;uniqueIndex"`
	ContactEmail      string          `gorm:"column:contact_email;type:text;not null"`
	ContactPhone      *string         `gorm:"column:contact_phone"`
	Country           string          `gorm:"column:country;type:text;not null"`
	Regions           pq.StringArray  `gorm:"column:regions;type:text[];not null;default:ARRAY[]::text[]"`
	CommissionPercent decimal.Decimal `gorm:"column:commission_percent;type:numeric(5,2);not null;default:10"`
	PayoutAccount     *string         `gorm:"column:payout_account"`
	IsActive          bool            `gorm:"column:is_active;not null;default:true"`
	Trips             []Trip          `gorm:"foreignKey:OperatorID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
