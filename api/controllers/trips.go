package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/api/middleware"
	"github.com/safariconnector/backend/api/responses"
	"github.com/safariconnector/backend/api/validators"
	"github.com/safariconnector/backend/internal/trips"
	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/logger"
)

type createTripRequest struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Summary      string          `json:"summary" validate:"required,max=1000"`
	Description  *string         `json:"description,omitempty"`
	DurationDays int             `json:"duration_days" validate:"required,min=1"`
	MaxGroupSize int             `json:"max_group_size" validate:"required,min=1"`
	Destinations []string        `json:"destinations,omitempty"`
	Highlights   []string        `json:"highlights,omitempty"`
	PriceFrom    decimal.Decimal `json:"price_from" validate:"required"`
	Currency     string          `json:"currency" validate:"required"`
	IsPublished  bool            `json:"is_published"`
}

type updateTripRequest struct {
	Title        *string          `json:"title,omitempty"`
	Summary      *string          `json:"summary,omitempty"`
	Description  *string          `json:"description,omitempty"`
	DurationDays *int             `json:"duration_days,omitempty"`
	MaxGroupSize *int             `json:"max_group_size,omitempty"`
	Destinations []string         `json:"destinations,omitempty"`
	Highlights   []string         `json:"highlights,omitempty"`
	PriceFrom    *decimal.Decimal `json:"price_from,omitempty"`
	Currency     *string          `json:"currency,omitempty"`
	IsPublished  *bool            `json:"is_published,omitempty"`
}

// ListPublishedTrips is the public catalogue listing.
func ListPublishedTrips(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		params, err := parseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.ListPublished(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// GetTripBySlug returns a single published trip by its slug.
func GetTripBySlug(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		trip, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trip)
	}
}

// CreateTrip lets an operator publish a new trip.
func CreateTrip(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		var body createTripRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		currency := enums.Currency(strings.ToUpper(strings.TrimSpace(body.Currency)))
		if !currency.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		trip, err := svc.Create(r.Context(), actor, trips.CreateTripInput{
			Title:        validators.SanitizeString(body.Title, 200),
			Summary:      validators.SanitizeString(body.Summary, 1000),
			Description:  body.Description,
			DurationDays: body.DurationDays,
			MaxGroupSize: body.MaxGroupSize,
			Destinations: body.Destinations,
			Highlights:   body.Highlights,
			PriceFrom:    body.PriceFrom,
			Currency:     currency,
			IsPublished:  body.IsPublished,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, trip)
	}
}

// UpdateTrip applies a partial update to an operator's trip.
func UpdateTrip(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trip id"))
			return
		}

		var body updateTripRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := trips.UpdateTripInput{
			Title:        body.Title,
			Summary:      body.Summary,
			Description:  body.Description,
			DurationDays: body.DurationDays,
			MaxGroupSize: body.MaxGroupSize,
			Destinations: body.Destinations,
			Highlights:   body.Highlights,
			PriceFrom:    body.PriceFrom,
			IsPublished:  body.IsPublished,
		}
		if body.Currency != nil {
			currency := enums.Currency(strings.ToUpper(strings.TrimSpace(*body.Currency)))
			if !currency.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency"))
				return
			}
			input.Currency = &currency
		}

		actor := middleware.ActorFromContext(r.Context())
		trip, err := svc.Update(r.Context(), actor, tripID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trip)
	}
}

// ListOperatorTrips returns the operator's own trips, published or not.
func ListOperatorTrips(svc trips.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trips service unavailable"))
			return
		}

		params, err := parseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		resp, err := svc.ListForOperator(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
