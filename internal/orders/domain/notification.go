package domain

import "fmt"

// NotificationKind identifies a one-shot customer notification guarded by a flag.
type NotificationKind string

// Notification kinds.
const (
	NotificationPickupShipped NotificationKind = "pickup_shipped"
	NotificationProduction    NotificationKind = "production"
	NotificationFeedback      NotificationKind = "feedback"
)

// Validate rejects unknown kinds so callers never build a claim against an
// arbitrary column.
func (k NotificationKind) Validate() error {
	switch k {
	case NotificationPickupShipped, NotificationProduction, NotificationFeedback:
		return nil
	default:
		return fmt.Errorf("unknown notification kind %q", string(k))
	}
}

// IsSent reads the flag for kind from the order.
func (o *Order) IsSent(kind NotificationKind) bool {
	switch kind {
	case NotificationPickupShipped:
		return o.Notifications.PickupEmailSent
	case NotificationProduction:
		return o.Notifications.ProductionEmailSent
	case NotificationFeedback:
		return o.Notifications.FeedbackEmailSent
	default:
		return false
	}
}
