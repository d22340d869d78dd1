package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/safariconnector/backend/api/middleware"
	"github.com/safariconnector/backend/api/responses"
	"github.com/safariconnector/backend/api/validators"
	"github.com/safariconnector/backend/internal/disbursements"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/logger"
)

type createDisbursementRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
	Method    string    `json:"method" validate:"required,max=100"`
	Notes     *string   `json:"notes,omitempty"`
	Reference *string   `json:"reference,omitempty"`
}

type markPaidRequest struct {
	Reference *string `json:"reference,omitempty"`
}

// CreateDisbursement records a payout for a settled booking.
func CreateDisbursement(svc disbursements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disbursements service unavailable"))
			return
		}

		var body createDisbursementRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		disbursement, err := svc.Create(r.Context(), actor, disbursements.CreateInput{
			BookingID: body.BookingID,
			Method:    validators.SanitizeString(body.Method, 100),
			Notes:     body.Notes,
			Reference: body.Reference,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, disbursement)
	}
}

// MarkDisbursementPaid settles a processing payout.
func MarkDisbursementPaid(svc disbursements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disbursements service unavailable"))
			return
		}

		disbursementID, err := uuid.Parse(chi.URLParam(r, "disbursementID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid disbursement id"))
			return
		}

		var body markPaidRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		disbursement, err := svc.MarkPaid(r.Context(), actor, disbursementID, body.Reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, disbursement)
	}
}

// ListDisbursements is the admin view across all operators.
func ListDisbursements(svc disbursements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disbursements service unavailable"))
			return
		}

		params, err := parseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		resp, err := svc.ListAll(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// ListOperatorDisbursements returns the operator's own payouts.
func ListOperatorDisbursements(svc disbursements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disbursements service unavailable"))
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
