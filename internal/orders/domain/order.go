// Package domain defines the order record: the single mutable document that
// carries a purchase through printing, shipping and customer follow-up.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the admin-controlled lifecycle status of an order.
type Status string

// Order lifecycle statuses.
const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
	StatusRefunded  Status = "refunded"
	StatusReprint   Status = "reprint"
)

// TransitionStatuses are the statuses an operator may move an order to.
var TransitionStatuses = []Status{StatusCancelled, StatusRejected, StatusRefunded, StatusReprint}

// IsTransitionStatus reports whether s is an operator-settable status.
func IsTransitionStatus(s Status) bool {
	for _, allowed := range TransitionStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// IssueOrigins are the accepted values for Order.IssueOrigin.
var IssueOrigins = []string{"diffrun", "genesis", "yara", "customer"}

// IsIssueOrigin reports whether origin is accepted, case-insensitively.
func IsIssueOrigin(origin string) bool {
	origin = strings.ToLower(strings.TrimSpace(origin))
	for _, allowed := range IssueOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Print statuses written by fulfillment and the Cloudprinter webhook.
const (
	// PrintStatusSubmitting marks an order claimed for a printer hand-off that
	// has not been confirmed yet.
	PrintStatusSubmitting    = "submitting"
	PrintStatusSentToPrinter = "sent_to_printer"
	PrintStatusValidated     = "validated"
	PrintStatusInProduction  = "in_production"
	PrintStatusPacked        = "packed"
	PrintStatusShipped       = "shipped"
	PrintStatusError         = "print_error"
	PrintStatusCancelled     = "print_cancelled"
)

// Printers.
const (
	PrinterCloudprinter = "Cloudprinter"
	PrinterGenesis      = "Genesis"
	PrinterYara         = "Yara"
)

// Shipping statuses the system reacts to. Partner statuses are stored verbatim.
const (
	ShippingStatusDelivered    = "DELIVERED"
	ShippingStatusRTODelivered = "RTO DELIVERED"
	DeliveryStatusShipped      = "shipped"
)

// Address is the customer's shipping address.
type Address struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Lock is the admin-edit guard on an order.
type Lock struct {
	Locked     bool
	LockedBy   string
	LockedAt   *time.Time
	UnlockedBy string
	UnlockedAt *time.Time
}

// NotificationFlags records which one-shot customer emails went out.
type NotificationFlags struct {
	PickupEmailSent       bool
	PickupEmailSentAt     *time.Time
	ProductionEmailSent   bool
	ProductionEmailSentAt *time.Time
	FeedbackEmailSent     bool
	FeedbackEmailSentAt   *time.Time
}

// Timeline holds lifecycle instants. Each is written once, by its own trigger.
type Timeline struct {
	CreatedAt   time.Time
	ProcessedAt *time.Time
	ApprovedAt  *time.Time
	PrintSentAt *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	UpdatedAt   time.Time
}

// Order is a customer purchase, or an unpaid preview job, and its fulfillment state.
type Order struct {
	ID      uuid.UUID
	OrderID string
	JobID   string

	Email           string
	Phone           string
	CustomerName    string
	ChildName       string
	BookID          string
	BookStyle       string
	Locale          string
	DiscountCode    string
	TotalPrice      float64
	Currency        string
	ShippingAddress Address

	Paid               bool
	WorkflowsTotal     int
	WorkflowsCompleted int
	Approved           bool

	Status          Status
	StatusRemarks   string
	StatusUpdatedAt *time.Time
	IssueOrigin     string

	Printer               string
	PrintStatus           string
	CloudprinterReference string
	PrintSentBy           string

	TrackingNumber       string
	CourierPartner       string
	ShippingStatus       string
	ShippingStatusAt     *time.Time
	DeliveryStatus       string
	ShiprocketOrderID    string
	ShiprocketShipmentID string
	ShipmentData         *ShipmentData

	ReprintOrderID string
	ReprintMeta    map[string]ReprintMeta

	Lock          Lock
	Notifications NotificationFlags

	NudgeStage      int
	NudgeLastSentAt *time.Time

	Timeline
}

// HeldBy returns the lock holder, or "" when unlocked.
func (o *Order) HeldBy() string {
	if !o.Lock.Locked {
		return ""
	}
	return o.Lock.LockedBy
}

// IsLockedByOther reports whether another operator holds the lock.
func (o *Order) IsLockedByOther(actor string) bool {
	return o.Lock.Locked && !strings.EqualFold(o.Lock.LockedBy, actor)
}

// AllWorkflowsCompleted reports whether every preview workflow step has completed.
func (o *Order) AllWorkflowsCompleted(required int) bool {
	return o.WorkflowsTotal == required && o.WorkflowsCompleted == required
}

// IsDelivered reports whether the partner reported final delivery.
func (o *Order) IsDelivered() bool {
	return strings.EqualFold(o.ShippingStatus, ShippingStatusDelivered)
}
