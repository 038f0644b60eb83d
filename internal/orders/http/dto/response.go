package dto

import (
	"time"

	"github.com/diffrun/opsdesk/internal/orders/domain"
)

// LockResponse reports the lock holder after an acquire.
type LockResponse struct {
	OrderID  string `json:"order_id"`
	Acquired bool   `json:"acquired"`
	LockedBy string `json:"locked_by,omitempty"`
}

// LockHeldResponse is the 409 body when another operator holds the lock.
type LockHeldResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	HeldBy  string `json:"held_by"`
}

// LockStateResponse is the lock section of an order.
type LockStateResponse struct {
	Locked     bool       `json:"locked"`
	LockedBy   string     `json:"locked_by,omitempty"`
	LockedAt   *time.Time `json:"locked_at,omitempty"`
	UnlockedBy string     `json:"unlocked_by,omitempty"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// NotificationsResponse is the one-shot email state of an order.
type NotificationsResponse struct {
	PickupEmailSent       bool       `json:"shipped_email_sent"`
	PickupEmailSentAt     *time.Time `json:"shipped_email_sent_at,omitempty"`
	ProductionEmailSent   bool       `json:"production_email_sent"`
	ProductionEmailSentAt *time.Time `json:"production_email_sent_at,omitempty"`
	FeedbackEmailSent     bool       `json:"feedback_email_sent"`
	FeedbackEmailSentAt   *time.Time `json:"feedback_email_sent_at,omitempty"`
}

// TimelineResponse holds the order lifecycle instants.
type TimelineResponse struct {
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	PrintSentAt *time.Time `json:"print_sent_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID                 string         `json:"id"`
	OrderID            string         `json:"order_id,omitempty"`
	JobID              string         `json:"job_id,omitempty"`
	Email              string         `json:"email,omitempty"`
	Phone              string         `json:"phone,omitempty"`
	CustomerName       string         `json:"customer_name,omitempty"`
	ChildName          string         `json:"child_name,omitempty"`
	BookID             string         `json:"book_id,omitempty"`
	BookStyle          string         `json:"book_style,omitempty"`
	Locale             string         `json:"locale,omitempty"`
	DiscountCode       string         `json:"discount_code,omitempty"`
	TotalPrice         float64        `json:"total_price"`
	Currency           string         `json:"currency,omitempty"`
	ShippingAddress    domain.Address `json:"shipping_address"`
	Paid               bool           `json:"paid"`
	Approved           bool           `json:"approved"`
	WorkflowsTotal     int            `json:"workflows_total"`
	WorkflowsCompleted int            `json:"workflows_completed"`

	Status          string     `json:"status"`
	StatusRemarks   string     `json:"status_remarks,omitempty"`
	StatusUpdatedAt *time.Time `json:"status_updated_at,omitempty"`
	IssueOrigin     string     `json:"issue_origin,omitempty"`

	Printer               string `json:"printer,omitempty"`
	PrintStatus           string `json:"print_status,omitempty"`
	CloudprinterReference string `json:"cloudprinter_reference,omitempty"`
	PrintSentBy           string `json:"print_sent_by,omitempty"`

	TrackingNumber       string               `json:"tracking_number,omitempty"`
	CourierPartner       string               `json:"courier_partner,omitempty"`
	ShippingStatus       string               `json:"shipping_status,omitempty"`
	ShippingStatusAt     *time.Time           `json:"shipping_status_at,omitempty"`
	DeliveryStatus       string               `json:"delivery_status,omitempty"`
	ShiprocketOrderID    string               `json:"sr_order_id,omitempty"`
	ShiprocketShipmentID string               `json:"sr_shipment_id,omitempty"`
	ShiprocketData       *domain.ShipmentData `json:"shiprocket_data,omitempty"`

	ReprintOrderID string                        `json:"reprint_order_id,omitempty"`
	ReprintMeta    map[string]domain.ReprintMeta `json:"reprint_meta,omitempty"`

	Lock          LockStateResponse     `json:"lock"`
	Notifications NotificationsResponse `json:"notifications"`

	NudgeStage      int        `json:"nudge_stage"`
	NudgeLastSentAt *time.Time `json:"nudge_last_sent_at,omitempty"`

	Timeline TimelineResponse `json:"timeline"`
}

// MapOrderToResponse converts a domain order to an API response.
func MapOrderToResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                    o.ID.String(),
		OrderID:               o.OrderID,
		JobID:                 o.JobID,
		Email:                 o.Email,
		Phone:                 o.Phone,
		CustomerName:          o.CustomerName,
		ChildName:             o.ChildName,
		BookID:                o.BookID,
		BookStyle:             o.BookStyle,
		Locale:                o.Locale,
		DiscountCode:          o.DiscountCode,
		TotalPrice:            o.TotalPrice,
		Currency:              o.Currency,
		ShippingAddress:       o.ShippingAddress,
		Paid:                  o.Paid,
		Approved:              o.Approved,
		WorkflowsTotal:        o.WorkflowsTotal,
		WorkflowsCompleted:    o.WorkflowsCompleted,
		Status:                string(o.Status),
		StatusRemarks:         o.StatusRemarks,
		StatusUpdatedAt:       o.StatusUpdatedAt,
		IssueOrigin:           o.IssueOrigin,
		Printer:               o.Printer,
		PrintStatus:           o.PrintStatus,
		CloudprinterReference: o.CloudprinterReference,
		PrintSentBy:           o.PrintSentBy,
		TrackingNumber:        o.TrackingNumber,
		CourierPartner:        o.CourierPartner,
		ShippingStatus:        o.ShippingStatus,
		ShippingStatusAt:      o.ShippingStatusAt,
		DeliveryStatus:        o.DeliveryStatus,
		ShiprocketOrderID:     o.ShiprocketOrderID,
		ShiprocketShipmentID:  o.ShiprocketShipmentID,
		ShiprocketData:        o.ShipmentData,
		ReprintOrderID:        o.ReprintOrderID,
		ReprintMeta:           o.ReprintMeta,
		Lock: LockStateResponse{
			Locked:     o.Lock.Locked,
			LockedBy:   o.Lock.LockedBy,
			LockedAt:   o.Lock.LockedAt,
			UnlockedBy: o.Lock.UnlockedBy,
			UnlockedAt: o.Lock.UnlockedAt,
		},
		Notifications: NotificationsResponse{
			PickupEmailSent:       o.Notifications.PickupEmailSent,
			PickupEmailSentAt:     o.Notifications.PickupEmailSentAt,
			ProductionEmailSent:   o.Notifications.ProductionEmailSent,
			ProductionEmailSentAt: o.Notifications.ProductionEmailSentAt,
			FeedbackEmailSent:     o.Notifications.FeedbackEmailSent,
			FeedbackEmailSentAt:   o.Notifications.FeedbackEmailSentAt,
		},
		NudgeStage:      o.NudgeStage,
		NudgeLastSentAt: o.NudgeLastSentAt,
		Timeline: TimelineResponse{
			CreatedAt:   o.CreatedAt,
			ProcessedAt: o.ProcessedAt,
			ApprovedAt:  o.ApprovedAt,
			PrintSentAt: o.PrintSentAt,
			ShippedAt:   o.ShippedAt,
			DeliveredAt: o.DeliveredAt,
			UpdatedAt:   o.UpdatedAt,
		},
	}
}

// ListOrdersResponse is a page of orders.
type ListOrdersResponse struct {
	Data   []OrderResponse `json:"data"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// MapOrdersToListResponse converts a page of orders.
func MapOrdersToListResponse(orders []*domain.Order, offset, limit int) ListOrdersResponse {
	data := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		data = append(data, MapOrderToResponse(o))
	}
	return ListOrdersResponse{Data: data, Offset: offset, Limit: limit}
}

// PaginationResponse describes a page of a counted listing.
type PaginationResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ListJobsResponse is a page of preview jobs.
type ListJobsResponse struct {
	Jobs       []OrderResponse    `json:"jobs"`
	Pagination PaginationResponse `json:"pagination"`
}

// MapJobsToListResponse converts a page of jobs starting at offset.
func MapJobsToListResponse(jobs []*domain.Order, total, offset, limit int) ListJobsResponse {
	data := make([]OrderResponse, 0, len(jobs))
	for _, j := range jobs {
		data = append(data, MapOrderToResponse(j))
	}
	return ListJobsResponse{
		Jobs: data,
		Pagination: PaginationResponse{
			Page:  offset/limit + 1,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}
}
