package enums

import "fmt"

// BookingStatus tracks the lifecycle of a booking from quote acceptance
// through payment verification and confirmation.
type BookingStatus string

const (
	BookingStatusAwaitingPayment  BookingStatus = "awaiting_payment"
	BookingStatusPaymentSubmitted BookingStatus = "payment_submitted"
	BookingStatusPaymentVerified  BookingStatus = "payment_verified"
	BookingStatusConfirmed        BookingStatus = "confirmed"
	BookingStatusCancelled        BookingStatus = "cancelled"
	BookingStatusExpired          BookingStatus = "expired"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusAwaitingPayment,
	BookingStatusPaymentSubmitted,
	BookingStatusPaymentVerified,
	BookingStatusConfirmed,
	BookingStatusCancelled,
	BookingStatusExpired,
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingStatus.
func (b BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (b BookingStatus) IsTerminal() bool {
	return b == BookingStatusConfirmed || b == BookingStatusCancelled || b == BookingStatusExpired
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
