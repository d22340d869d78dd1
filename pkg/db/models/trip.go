package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/pkg/enums"
)

// Trip is a published safari itinerary offered by an operator.
type Trip struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OperatorID   uuid.UUID       `gorm:"column:operator_id;type:uuid;not null;index"`
	Title        string          `gorm:"column:title;type:text;not null"`
	Slug         string          `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Summary      string          `gorm:"column:summary;type:text;not null"`
	Description  *string         `gorm:"column:description"`
	DurationDays int             `gorm:"column:duration_days;not null"`
	MaxGroupSize int             `gorm:"column:max_group_size;not null;default:8"`
	Destinations pq.StringArray  `gorm:"column:destinations;type:text[];not null;default:ARRAY[]::text[]"`
	Highlights   pq.StringArray  `gorm:"column:highlights;type:text[];not null;default:ARRAY[]::text[]"`
	PriceFrom    decimal.Decimal `gorm:"column:price_from;type:numeric(12,2);not null"`
	Currency     enums.Currency  `gorm:"column:currency;type:text;not null;default:'USD'"`
	IsPublished  bool            `gorm:"column:is_published;not null;default:false"`
	Operator     *Operator       `gorm:"foreignKey:OperatorID"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
