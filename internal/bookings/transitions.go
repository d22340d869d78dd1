package bookings

import (
	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
)

// transitions is the single source of truth for the booking lifecycle.
// Any move not listed here is rejected with a state conflict.
var transitions = map[enums.BookingStatus][]enums.BookingStatus{
	enums.BookingStatusAwaitingPayment: {
		enums.BookingStatusPaymentSubmitted,
		enums.BookingStatusCancelled,
		enums.BookingStatusExpired,
	},
	enums.BookingStatusPaymentSubmitted: {
		enums.BookingStatusPaymentVerified,
		enums.BookingStatusCancelled,
	},
	enums.BookingStatusPaymentVerified: {
		enums.BookingStatusConfirmed,
		enums.BookingStatusCancelled,
	},
	enums.BookingStatusConfirmed: {},
	enums.BookingStatusCancelled: {},
	enums.BookingStatusExpired:   {},
}

// CanTransition reports whether the move from one status to another is defined.
func CanTransition(from, to enums.BookingStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SourcesFor returns every status that may transition into the target.
func SourcesFor(to enums.BookingStatus) []enums.BookingStatus {
	var sources []enums.BookingStatus
	for from, targets := range transitions {
		for _, target := range targets {
			if target == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// ValidateTransition returns a coded error when the move is undefined.
func ValidateTransition(from, to enums.BookingStatus) error {
	if !from.IsValid() || !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid booking status")
	}
	if !CanTransition(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "booking transition not allowed in current state")
	}
	return nil
}
