package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeEnquiryAlert  NotificationType = "enquiry_alert"
	NotificationTypeQuoteAlert    NotificationType = "quote_alert"
	NotificationTypeBookingAlert  NotificationType = "booking_alert"
	NotificationTypePaymentAlert  NotificationType = "payment_alert"
	NotificationTypePayoutAlert   NotificationType = "payout_alert"
	NotificationTypeSecurityAlert NotificationType = "security_alert"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeEnquiryAlert,
	NotificationTypeQuoteAlert,
	NotificationTypeBookingAlert,
	NotificationTypePaymentAlert,
	NotificationTypePayoutAlert,
	NotificationTypeSecurityAlert,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
