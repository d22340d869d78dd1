package enquiries

import (
	"time"

	"github.com/google/uuid"

	"github.com/safariconnector/backend/pkg/enums"
	"github.com/safariconnector/backend/pkg/types"
)

// CreateEnquiryInput captures the public intake form. OperatorID may be nil
// for a general enquiry; when TripID is set the trip's operator is adopted.
type CreateEnquiryInput struct {
	OperatorID     *uuid.UUID
	TripID         *uuid.UUID
	TravellerID    *uuid.UUID
	TravellerName  string
	TravellerEmail string
	TravellerPhone *string
	PartySize      int
	TravelDateFrom *time.Time
	TravelDateTo   *time.Time
	Message        string
	Source         enums.EnquirySource
	Context        *types.JSONMap
}

// ListFilters describe the inputs supported by the operator enquiry list.
type ListFilters struct {
	Status *enums.EnquiryStatus
}

// EnquirySummary exposes the fields returned in enquiry listings.
type EnquirySummary struct {
	ID             uuid.UUID           `json:"id"`
	TripID         *uuid.UUID          `json:"trip_id,omitempty"`
	TravellerName  string              `json:"traveller_name"`
	TravellerEmail string              `json:"traveller_email"`
	PartySize      int                 `json:"party_size"`
	TravelDateFrom *time.Time          `json:"travel_date_from,omitempty"`
	TravelDateTo   *time.Time          `json:"travel_date_to,omitempty"`
	Message        string              `json:"message"`
	Source         enums.EnquirySource `json:"source"`
	Status         enums.EnquiryStatus `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
}

// EnquiryList wraps the paginated enquiries plus the next page cursor.
type EnquiryList struct {
	Enquiries  []EnquirySummary `json:"enquiries"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// EnquiryCreatedEvent is emitted when an enquiry is recorded.
type EnquiryCreatedEvent struct {
	EnquiryID      uuid.UUID           `json:"enquiry_id"`
	OperatorID     *uuid.UUID          `json:"operator_id,omitempty"`
	TripID         *uuid.UUID          `json:"trip_id,omitempty"`
	TravellerEmail string              `json:"traveller_email"`
	Source         enums.EnquirySource `json:"source"`
}
