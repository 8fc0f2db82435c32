package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeOfferReceived    NotificationType = "offer_received"
	NotificationTypeOfferUnavailable NotificationType = "offer_unavailable"
	NotificationTypeOrderAssigned    NotificationType = "order_assigned"
	NotificationTypeOrderReleased    NotificationType = "order_released"
	NotificationTypeOrderCancelled   NotificationType = "order_cancelled"
	NotificationTypeOrderDelivered   NotificationType = "order_delivered"
	NotificationTypeRechargeDecided  NotificationType = "recharge_decided"
	NotificationTypeBalanceAlert     NotificationType = "balance_alert"
	NotificationTypeSystemAlert      NotificationType = "system_alert"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOfferReceived,
	NotificationTypeOfferUnavailable,
	NotificationTypeOrderAssigned,
	NotificationTypeOrderReleased,
	NotificationTypeOrderCancelled,
	NotificationTypeOrderDelivered,
	NotificationTypeRechargeDecided,
	NotificationTypeBalanceAlert,
	NotificationTypeSystemAlert,
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
