package domain

import (
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows order listings. Zero values mean "any".
type ListFilter struct {
	Status  Status
	Printer string
	Email   string
	Locale  string
	Paid    *bool
}

// JobFilter narrows the preview job listing. Search matches job id, order id,
// customer name or book id as a case-insensitive substring.
type JobFilter struct {
	Approved *bool
	BookID   string
	Search   string
	// SortBy is one of JobSortColumns; empty sorts by creation.
	SortBy   string
	SortDesc bool
}

// ReconcileMark is an operator's payment reconciliation of a preview job.
type ReconcileMark struct {
	JobID         string    `json:"job_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	ReconciledAt  time.Time `json:"reconciled_at"`
}

// JobSortColumns are the columns the job listing can be sorted by.
var JobSortColumns = map[string]bool{
	"created_at":   true,
	"processed_at": true,
	"approved_at":  true,
	"order_id":     true,
	"job_id":       true,
	"book_id":      true,
	"book_style":   true,
	"total_price":  true,
	"print_status": true,
}

// ShipmentUpdate is the normalized result of a shipping partner status event.
type ShipmentUpdate struct {
	Data             ShipmentData
	TrackingNumber   string
	CourierPartner   string
	ShippingStatus   string
	ShippingStatusAt *time.Time
	DeliveryStatus   string
	DeliveredAt      *time.Time
	At               time.Time
}

// PrintUpdate is the normalized result of a print partner status event.
type PrintUpdate struct {
	PrintStatus    string
	TrackingNumber string
	CourierPartner string
	At             time.Time
}

// PrintDispatch records a successful hand-off of an order to a printer.
type PrintDispatch struct {
	Printer   string
	Reference string
	SentBy    string
	At        time.Time
}

// ShipmentBooking records shipping partner identifiers for a base order.
type ShipmentBooking struct {
	ShiprocketOrderID    string
	ShiprocketShipmentID string
	TrackingNumber       string
	CourierPartner       string
	At                   time.Time
}

// NudgeCandidateQuery selects unpaid preview jobs for the nudge run. Since
// bounds the window in which the latest job per email and any paid order are
// looked up; only jobs created in [DueFrom, DueBefore) are returned. Pages are
// keyed on (created_at, id) strictly after the After cursor.
type NudgeCandidateQuery struct {
	Since          time.Time
	DueFrom        time.Time
	DueBefore      time.Time
	ExcludedDomain string
	AfterCreatedAt time.Time
	AfterID        uuid.UUID
	Limit          int
}

// FeedbackCandidateQuery selects the latest delivered order per customer.
// Delivery must fall 0 to MaxDeliveryDays calendar days after processing,
// counted in the zone UTCOffset east of UTC.
type FeedbackCandidateQuery struct {
	ProcessedSince  time.Time
	UTCOffset       time.Duration
	MaxDeliveryDays int
	Limit           int
}
