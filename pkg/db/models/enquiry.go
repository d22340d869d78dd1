package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/safariconnector/backend/pkg/enums"
	"github.com/safariconnector/backend/pkg/types"
)

// Enquiry is a traveller's request for a safari. OperatorID is nil for
// general enquiries not yet routed to a specific operator.
type Enquiry struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TravellerID    *uuid.UUID          `gorm:"column:traveller_id;type:uuid;index"`
	OperatorID     *uuid.UUID          `gorm:"column:operator_id;type:uuid;index"`
	TripID         *uuid.UUID          `gorm:"column:trip_id;type:uuid"`
	TravellerName  string              `gorm:"column:traveller_name;type:text;not null"`
	TravellerEmail string              `gorm:"column:traveller_email;type:text;not null"`
	TravellerPhone *string             `gorm:"column:traveller_phone"`
	PartySize      int                 `gorm:"column:party_size;not null;default:2"`
	TravelDateFrom *time.Time          `gorm:"column:travel_date_from"`
	TravelDateTo   *time.Time          `gorm:"column:travel_date_to"`
	Message        string              `gorm:"column:message;type:text;not null"`
	Source         enums.EnquirySource `gorm:"column:source;type:enquiry_source;not null;default:'manual'"`
	Status         enums.EnquiryStatus `gorm:"column:status;type:enquiry_status;not null;default:'new'"`
	Context        *types.JSONMap      `gorm:"column:context;type:jsonb;serializer:json"`
	Quotes         []Quote             `gorm:"foreignKey:EnquiryID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
