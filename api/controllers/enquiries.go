package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/safariconnector/backend/api/middleware"
	"github.com/safariconnector/backend/api/responses"
	"github.com/safariconnector/backend/api/validators"
	"github.com/safariconnector/backend/internal/enquiries"
	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/logger"
	"github.com/safariconnector/backend/pkg/types"
)

const dateLayout = "2006-01-02"

type createEnquiryRequest struct {
	OperatorID     *uuid.UUID     `json:"operator_id,omitempty"`
	TripID         *uuid.UUID     `json:"trip_id,omitempty"`
	TravellerName  string         `json:"traveller_name" validate:"required,max=200"`
	TravellerEmail string         `json:"traveller_email" validate:"required,email"`
	TravellerPhone *string        `json:"traveller_phone,omitempty"`
	PartySize      int            `json:"party_size" validate:"required,min=1"`
	TravelDateFrom *string        `json:"travel_date_from,omitempty"`
	TravelDateTo   *string        `json:"travel_date_to,omitempty"`
	Message        string         `json:"message" validate:"required,max=4000"`
	Source         string         `json:"source,omitempty"`
	Context        *types.JSONMap `json:"context,omitempty"`
}

func parseDate(value *string, field string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(*value))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must use YYYY-MM-DD").WithDetails(map[string]any{"field": field})
	}
	return &parsed, nil
}

// CreateEnquiry is the public intake endpoint for safari enquiries.
func CreateEnquiry(svc enquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enquiries service unavailable"))
			return
		}

		var body createEnquiryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		source := enums.EnquirySourceManual
		if strings.TrimSpace(body.Source) != "" {
			parsed, err := enums.ParseEnquirySource(body.Source)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source"))
				return
			}
			source = parsed
		}

		dateFrom, err := parseDate(body.TravelDateFrom, "travel_date_from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dateTo, err := parseDate(body.TravelDateTo, "travel_date_to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := enquiries.CreateEnquiryInput{
			OperatorID:     body.OperatorID,
			TripID:         body.TripID,
			TravellerName:  validators.SanitizeString(body.TravellerName, 200),
			TravellerEmail: strings.ToLower(strings.TrimSpace(body.TravellerEmail)),
			TravellerPhone: body.TravellerPhone,
			PartySize:      body.PartySize,
			TravelDateFrom: dateFrom,
			TravelDateTo:   dateTo,
			Message:        validators.SanitizeString(body.Message, 4000),
			Source:         source,
			Context:        body.Context,
		}

		actor := middleware.ActorFromContext(r.Context())
		if actor.UserID != uuid.Nil {
			input.TravellerID = &actor.UserID
		}

		enquiry, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, enquiry)
	}
}

// ListOperatorEnquiries returns the inbox for the authenticated operator.
func ListOperatorEnquiries(svc enquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enquiries service unavailable"))
			return
		}

		params, err := parseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters enquiries.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseEnquiryStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}

		actor := middleware.ActorFromContext(r.Context())
		resp, err := svc.ListForOperator(r.Context(), actor, filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// GetEnquiry returns a single enquiry visible to the actor.
func GetEnquiry(svc enquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enquiries service unavailable"))
			return
		}

		enquiryID, err := uuid.Parse(chi.URLParam(r, "enquiryID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid enquiry id"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		enquiry, err := svc.Get(r.Context(), actor, enquiryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, enquiry)
	}
}

// CloseEnquiry shuts an enquiry without a quote.
func CloseEnquiry(svc enquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enquiries service unavailable"))
			return
		}

		enquiryID, err := uuid.Parse(chi.URLParam(r, "enquiryID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid enquiry id"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if err := svc.Close(r.Context(), actor, enquiryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "closed"})
	}
}
