package enums

import "fmt"

// DisbursementStatus tracks the payout of verified funds to an operator.
type DisbursementStatus string

const (
	DisbursementStatusProcessing DisbursementStatus = "processing"
	DisbursementStatusPaid       DisbursementStatus = "paid"
	DisbursementStatusFailed     DisbursementStatus = "failed"
)

var validDisbursementStatuses = []DisbursementStatus{
	DisbursementStatusProcessing,
	DisbursementStatusPaid,
	DisbursementStatusFailed,
}

// String implements fmt.Stringer.
func (d DisbursementStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DisbursementStatus.
func (d DisbursementStatus) IsValid() bool {
	for _, candidate := range validDisbursementStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDisbursementStatus converts raw input into a DisbursementStatus.
func ParseDisbursementStatus(value string) (DisbursementStatus, error) {
	for _, candidate := range validDisbursementStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid disbursement status %q", value)
}
