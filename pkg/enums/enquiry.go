package enums

import "fmt"

// EnquiryStatus tracks a traveller enquiry from intake to booking.
type EnquiryStatus string

const (
	EnquiryStatusNew    EnquiryStatus = "new"
	EnquiryStatusQuoted EnquiryStatus = "quoted"
	EnquiryStatusBooked EnquiryStatus = "booked"
	EnquiryStatusClosed EnquiryStatus = "closed"
)

var validEnquiryStatuses = []EnquiryStatus{
	EnquiryStatusNew,
	EnquiryStatusQuoted,
	EnquiryStatusBooked,
	EnquiryStatusClosed,
}

// String implements fmt.Stringer.
func (e EnquiryStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EnquiryStatus.
func (e EnquiryStatus) IsValid() bool {
	for _, candidate := range validEnquiryStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEnquiryStatus converts raw input into an EnquiryStatus.
func ParseEnquiryStatus(value string) (EnquiryStatus, error) {
	for _, candidate := range validEnquiryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid enquiry status %q", value)
}

// EnquirySource records which channel produced the enquiry.
type EnquirySource string

const (
	EnquirySourceManual   EnquirySource = "manual"
	EnquirySourceAIStudio EnquirySource = "ai_studio"
)

var validEnquirySources = []EnquirySource{
	EnquirySourceManual,
	EnquirySourceAIStudio,
}

// IsValid reports whether the value is a known EnquirySource.
func (e EnquirySource) IsValid() bool {
	for _, candidate := range validEnquirySources {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEnquirySource converts raw input into an EnquirySource.
func ParseEnquirySource(value string) (EnquirySource, error) {
	for _, candidate := range validEnquirySources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid enquiry source %q", value)
}
