// Package dto provides request bodies for the bulk fulfillment endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/diffrun/opsdesk/internal/validation"
)

// maxBulkItems caps the ids of one bulk request.
const maxBulkItems = 500

// ApprovePrintingRequest lists the orders to send to the printer.
type ApprovePrintingRequest struct {
	OrderIDs []string `json:"order_ids"`
}

// Validate checks the approve request.
func (r *ApprovePrintingRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OrderIDs, validation.Required, validation.Length(1, maxBulkItems),
			customValidation.NonBlankItems),
	)
}

// CreateShipmentsRequest lists the order or reprint ids to book shipments for.
type CreateShipmentsRequest struct {
	OrderIDs      []string `json:"order_ids"`
	AssignAWB     bool     `json:"assign_awb"`
	RequestPickup bool     `json:"request_pickup"`
}

// Validate checks the shipments request.
func (r *CreateShipmentsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OrderIDs, validation.Required, validation.Length(1, maxBulkItems),
			customValidation.NonBlankItems),
	)
}

// UnapproveRequest lists the preview jobs to unapprove.
type UnapproveRequest struct {
	JobIDs []string `json:"job_ids"`
}

// Validate checks the unapprove request.
func (r *UnapproveRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.JobIDs, validation.Required, validation.Length(1, maxBulkItems),
			customValidation.NonBlankItems),
	)
}
