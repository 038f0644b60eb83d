// Package dto provides request and response bodies for the admin order endpoints.
package dto

import (
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/diffrun/opsdesk/internal/orders/domain"
	customValidation "github.com/diffrun/opsdesk/internal/validation"
)

// AddressRequest is a shipping address in request bodies.
type AddressRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// ToDomain converts the request address.
func (a AddressRequest) ToDomain() domain.Address {
	return domain.Address{
		FirstName: strings.TrimSpace(a.FirstName),
		LastName:  strings.TrimSpace(a.LastName),
		Address1:  strings.TrimSpace(a.Address1),
		Address2:  strings.TrimSpace(a.Address2),
		City:      strings.TrimSpace(a.City),
		Province:  strings.TrimSpace(a.Province),
		Zip:       strings.TrimSpace(a.Zip),
		Country:   strings.TrimSpace(a.Country),
		Phone:     strings.TrimSpace(a.Phone),
	}
}

// RegisterOrderRequest records a storefront order or preview job.
type RegisterOrderRequest struct {
	OrderID            string         `json:"order_id"`
	JobID              string         `json:"job_id"`
	Email              string         `json:"email"`
	Phone              string         `json:"phone"`
	CustomerName       string         `json:"customer_name"`
	ChildName          string         `json:"child_name"`
	BookID             string         `json:"book_id"`
	BookStyle          string         `json:"book_style"`
	Locale             string         `json:"locale"`
	DiscountCode       string         `json:"discount_code"`
	TotalPrice         float64        `json:"total_price"`
	Currency           string         `json:"currency"`
	ShippingAddress    AddressRequest `json:"shipping_address"`
	Paid               bool           `json:"paid"`
	WorkflowsTotal     int            `json:"workflows_total"`
	WorkflowsCompleted int            `json:"workflows_completed"`
	CreatedAt          *time.Time     `json:"created_at"`
	ProcessedAt        *time.Time     `json:"processed_at"`
}

// Validate checks the register request.
func (r *RegisterOrderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OrderID,
			validation.Required.When(r.JobID == "").Error("order_id or job_id is required"),
			customValidation.NoWhitespace,
			validation.Length(1, 64),
		),
		validation.Field(&r.JobID, customValidation.NoWhitespace, validation.Length(1, 64)),
		validation.Field(&r.Email, customValidation.Email),
		validation.Field(&r.TotalPrice, validation.Min(0.0)),
		validation.Field(&r.WorkflowsTotal, validation.Min(0)),
		validation.Field(&r.WorkflowsCompleted, validation.Min(0), validation.Max(r.WorkflowsTotal)),
	)
}

// ToDomain converts the request to a use case input.
func (r *RegisterOrderRequest) ToDomain() domain.RegisterInput {
	return domain.RegisterInput{
		OrderID:            strings.TrimSpace(r.OrderID),
		JobID:              strings.TrimSpace(r.JobID),
		Email:              r.Email,
		Phone:              r.Phone,
		CustomerName:       r.CustomerName,
		ChildName:          r.ChildName,
		BookID:             r.BookID,
		BookStyle:          r.BookStyle,
		Locale:             strings.ToUpper(strings.TrimSpace(r.Locale)),
		DiscountCode:       r.DiscountCode,
		TotalPrice:         r.TotalPrice,
		Currency:           r.Currency,
		ShippingAddress:    r.ShippingAddress.ToDomain(),
		Paid:               r.Paid,
		WorkflowsTotal:     r.WorkflowsTotal,
		WorkflowsCompleted: r.WorkflowsCompleted,
		CreatedAt:          r.CreatedAt,
		ProcessedAt:        r.ProcessedAt,
	}
}

// PatchOrderRequest carries operator edits. Absent fields are left unchanged.
type PatchOrderRequest struct {
	Email           *string         `json:"email"`
	Phone           *string         `json:"phone"`
	CustomerName    *string         `json:"customer_name"`
	ChildName       *string         `json:"child_name"`
	BookStyle       *string         `json:"book_style"`
	DiscountCode    *string         `json:"discount_code"`
	Locale          *string         `json:"locale"`
	ShippingAddress *AddressRequest `json:"shipping_address"`
}

// Validate checks the patch request.
func (r *PatchOrderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.NilOrNotEmpty, customValidation.Email),
		validation.Field(&r.CustomerName, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.ChildName, validation.Length(0, 255)),
		validation.Field(&r.Locale, validation.Length(0, 8)),
	)
}

// ToDomain converts the request to a domain patch.
func (r *PatchOrderRequest) ToDomain() domain.Patch {
	patch := domain.Patch{
		Email:        r.Email,
		Phone:        r.Phone,
		CustomerName: r.CustomerName,
		ChildName:    r.ChildName,
		BookStyle:    r.BookStyle,
		DiscountCode: r.DiscountCode,
		Locale:       r.Locale,
	}
	if r.ShippingAddress != nil {
		addr := r.ShippingAddress.ToDomain()
		patch.ShippingAddress = &addr
	}
	return patch
}

// TransitionStatusRequest moves an order to an operator status.
type TransitionStatusRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

// Validate checks the status request.
func (r *TransitionStatusRequest) Validate() error {
	allowed := make([]any, 0, len(domain.TransitionStatuses))
	for _, s := range domain.TransitionStatuses {
		allowed = append(allowed, string(s))
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Status, validation.Required, validation.In(allowed...)),
		validation.Field(&r.Remarks, validation.Required, customValidation.NotBlank, validation.Length(1, 2000)),
	)
}

// IssueOriginRequest records which party caused a problem.
type IssueOriginRequest struct {
	Origin string `json:"origin"`
}

// Validate checks the issue origin request.
func (r *IssueOriginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Origin, validation.Required, customValidation.NotBlank),
	)
}

// MarkReconciledRequest records an operator's payment reconciliation of a job.
type MarkReconciledRequest struct {
	JobID         string `json:"job_id"`
	TransactionID string `json:"transaction_id"`
}

// Validate checks the reconcile request.
func (r *MarkReconciledRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.JobID, validation.Required, customValidation.NoWhitespace, validation.Length(1, 64)),
		validation.Field(&r.TransactionID, customValidation.NoWhitespace, validation.Length(0, 128)),
	)
}
