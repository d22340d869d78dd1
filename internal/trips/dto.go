package trips

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/pkg/enums"
)

// CreateTripInput captures the fields an operator provides when publishing a trip.
type CreateTripInput struct {
	Title        string
	Summary      string
	Description  *string
	DurationDays int
	MaxGroupSize int
	Destinations []string
	Highlights   []string
	PriceFrom    decimal.Decimal
	Currency     enums.Currency
	IsPublished  bool
}

// UpdateTripInput carries the mutable subset of a trip. Nil fields are left unchanged.
type UpdateTripInput struct {
	Title        *string
	Summary      *string
	Description  *string
	DurationDays *int
	MaxGroupSize *int
	Destinations []string
	Highlights   []string
	PriceFrom    *decimal.Decimal
	Currency     *enums.Currency
	IsPublished  *bool
}

// TripSummary exposes the fields returned in trip listings.
type TripSummary struct {
	ID           uuid.UUID       `json:"id"`
	OperatorID   uuid.UUID       `json:"operator_id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Summary      string          `json:"summary"`
	DurationDays int             `json:"duration_days"`
	MaxGroupSize int             `json:"max_group_size"`
	Destinations []string        `json:"destinations"`
	Highlights   []string        `json:"highlights"`
	PriceFrom    decimal.Decimal `json:"price_from"`
	Currency     enums.Currency  `json:"currency"`
	IsPublished  bool            `json:"is_published"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TripList wraps the paginated trips plus the next page cursor.
type TripList struct {
	Trips      []TripSummary `json:"trips"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
