package enums

import "fmt"

// QuoteStatus tracks an operator quote from issue to traveller decision.
type QuoteStatus string

const (
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusDeclined QuoteStatus = "declined"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusSent,
	QuoteStatusAccepted,
	QuoteStatusDeclined,
}

// String implements fmt.Stringer.
func (q QuoteStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuoteStatus.
func (q QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}

// QuoteDecision is the traveller's answer to a sent quote.
type QuoteDecision string

const (
	QuoteDecisionAccept  QuoteDecision = "accept"
	QuoteDecisionDecline QuoteDecision = "decline"
)

var validQuoteDecisions = []QuoteDecision{
	QuoteDecisionAccept,
	QuoteDecisionDecline,
}

// IsValid reports whether the value is a known QuoteDecision.
func (q QuoteDecision) IsValid() bool {
	for _, candidate := range validQuoteDecisions {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQuoteDecision converts raw input into a QuoteDecision.
func ParseQuoteDecision(value string) (QuoteDecision, error) {
	for _, candidate := range validQuoteDecisions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote decision %q", value)
}
