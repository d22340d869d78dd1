package enums

import "fmt"

// PaymentStatus tracks how much of a booking's total has been settled.
type PaymentStatus string

const (
	PaymentStatusUnpaid         PaymentStatus = "unpaid"
	PaymentStatusProofSubmitted PaymentStatus = "proof_submitted"
	PaymentStatusDepositPaid    PaymentStatus = "deposit_paid"
	PaymentStatusPaidInFull     PaymentStatus = "paid_in_full"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusUnpaid,
	PaymentStatusProofSubmitted,
	PaymentStatusDepositPaid,
	PaymentStatusPaidInFull,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsSettled reports whether at least a deposit has been verified.
func (p PaymentStatus) IsSettled() bool {
	return p == PaymentStatusDepositPaid || p == PaymentStatusPaidInFull
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}

// PaymentLevel is the verification depth an admin records for a payment proof.
type PaymentLevel string

const (
	PaymentLevelDeposit PaymentLevel = "deposit"
	PaymentLevelFull    PaymentLevel = "full"
)

var validPaymentLevels = []PaymentLevel{
	PaymentLevelDeposit,
	PaymentLevelFull,
}

// IsValid reports whether the value is a known PaymentLevel.
func (p PaymentLevel) IsValid() bool {
	for _, candidate := range validPaymentLevels {
		if candidate == p {
			return true
		}
	}
	return false
}

// PaymentStatus maps the verification level onto the resulting payment status.
func (p PaymentLevel) PaymentStatus() PaymentStatus {
	if p == PaymentLevelFull {
		return PaymentStatusPaidInFull
	}
	return PaymentStatusDepositPaid
}

// ParsePaymentLevel converts raw input into a PaymentLevel.
func ParsePaymentLevel(value string) (PaymentLevel, error) {
	for _, candidate := range validPaymentLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment level %q", value)
}
