package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safariconnector/backend/api/middleware"
	"github.com/safariconnector/backend/api/responses"
	"github.com/safariconnector/backend/api/validators"
	"github.com/safariconnector/backend/internal/quotes"
	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/logger"
)

type issueQuoteRequest struct {
	EnquiryID  uuid.UUID       `json:"enquiry_id" validate:"required"`
	TripID     *uuid.UUID      `json:"trip_id,omitempty"`
	TotalPrice decimal.Decimal `json:"total_price" validate:"required"`
	Currency   string          `json:"currency" validate:"required"`
	Itinerary  string          `json:"itinerary" validate:"required,max=10000"`
	Inclusions []string        `json:"inclusions,omitempty" validate:"omitempty,max=50,dive,max=500"`
	Exclusions []string        `json:"exclusions,omitempty" validate:"omitempty,max=50,dive,max=500"`
	ValidUntil *time.Time      `json:"valid_until,omitempty"`
}

type quoteDecisionRequest struct {
	Decision string `json:"decision" validate:"required"`
}

// IssueQuote lets an operator send a priced offer against an enquiry.
func IssueQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		var body issueQuoteRequest
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
		quote, err := svc.Issue(r.Context(), actor, quotes.IssueQuoteInput{
			EnquiryID:  body.EnquiryID,
			TripID:     body.TripID,
			TotalPrice: body.TotalPrice,
			Currency:   currency,
			Itinerary:  validators.SanitizeString(body.Itinerary, 10000),
			Inclusions: body.Inclusions,
			Exclusions: body.Exclusions,
			ValidUntil: body.ValidUntil,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

// DecideQuote records the traveller's accept or decline. Acceptance returns
// the booking it produced.
func DecideQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		quoteID, err := uuid.Parse(chi.URLParam(r, "quoteID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote id"))
			return
		}

		var body quoteDecisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision := enums.QuoteDecision(strings.ToLower(strings.TrimSpace(body.Decision)))
		if !decision.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "decision must be accept or decline"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		result, err := svc.Decide(r.Context(), actor, quotes.DecisionInput{
			QuoteID:  quoteID,
			Decision: decision,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListTravellerQuotes returns the quotes issued to the authenticated traveller.
func ListTravellerQuotes(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quotes service unavailable"))
			return
		}

		params, err := parseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		resp, err := svc.ListForTraveller(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
