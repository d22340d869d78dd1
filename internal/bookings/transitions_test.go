package bookings

import (
	"testing"

	"github.com/safariconnector/backend/pkg/enums"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from enums.BookingStatus
		to   enums.BookingStatus
		want bool
	}{
		{"awaiting to submitted", enums.BookingStatusAwaitingPayment, enums.BookingStatusPaymentSubmitted, true},
		{"awaiting to expired", enums.BookingStatusAwaitingPayment, enums.BookingStatusExpired, true},
		{"awaiting to cancelled", enums.BookingStatusAwaitingPayment, enums.BookingStatusCancelled, true},
		{"awaiting to verified skips proof", enums.BookingStatusAwaitingPayment, enums.BookingStatusPaymentVerified, false},
		{"submitted to verified", enums.BookingStatusPaymentSubmitted, enums.BookingStatusPaymentVerified, true},
		{"submitted to expired", enums.BookingStatusPaymentSubmitted, enums.BookingStatusExpired, false},
		{"verified to confirmed", enums.BookingStatusPaymentVerified, enums.BookingStatusConfirmed, true},
		{"confirmed is terminal", enums.BookingStatusConfirmed, enums.BookingStatusCancelled, false},
		{"cancelled is terminal", enums.BookingStatusCancelled, enums.BookingStatusAwaitingPayment, false},
		{"expired is terminal", enums.BookingStatusExpired, enums.BookingStatusPaymentSubmitted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestSourcesFor(t *testing.T) {
	sources := SourcesFor(enums.BookingStatusCancelled)
	want := map[enums.BookingStatus]bool{
		enums.BookingStatusAwaitingPayment:  true,
		enums.BookingStatusPaymentSubmitted: true,
		enums.BookingStatusPaymentVerified:  true,
	}
	if len(sources) != len(want) {
		t.Fatalf("expected %d sources for cancelled, got %d", len(want), len(sources))
	}
	for _, source := range sources {
		if !want[source] {
			t.Fatalf("unexpected source %s for cancelled", source)
		}
	}

	confirmed := SourcesFor(enums.BookingStatusConfirmed)
	if len(confirmed) != 1 || confirmed[0] != enums.BookingStatusPaymentVerified {
		t.Fatalf("confirmed should only be reachable from payment_verified, got %v", confirmed)
	}
}

func TestValidateTransition(t *testing.T) {
	if err := ValidateTransition(enums.BookingStatusAwaitingPayment, enums.BookingStatusPaymentSubmitted); err != nil {
		t.Fatalf("expected allowed transition, got %v", err)
	}

	err := ValidateTransition(enums.BookingStatusConfirmed, enums.BookingStatusCancelled)
	if err == nil {
		t.Fatal("expected state conflict for terminal status")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict error, got %v", err)
	}

	err = ValidateTransition("bogus", enums.BookingStatusConfirmed)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}
