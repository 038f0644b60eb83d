// Package http provides the admin endpoints for bulk printing, shipping and
// unapproval. Every bulk endpoint answers 200 with per-item results once the
// request itself is valid.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/diffrun/opsdesk/internal/auth/http"
	"github.com/diffrun/opsdesk/internal/fulfillment/http/dto"
	fulfillmentUseCase "github.com/diffrun/opsdesk/internal/fulfillment/usecase"
	"github.com/diffrun/opsdesk/internal/httputil"
	customValidation "github.com/diffrun/opsdesk/internal/validation"
)

// FulfillmentHandler handles bulk fulfillment requests.
type FulfillmentHandler struct {
	fulfillmentUseCase fulfillmentUseCase.FulfillmentUseCase
	logger             *slog.Logger
}

// NewFulfillmentHandler creates a new fulfillment handler.
func NewFulfillmentHandler(
	fulfillmentUseCase fulfillmentUseCase.FulfillmentUseCase,
	logger *slog.Logger,
) *FulfillmentHandler {
	return &FulfillmentHandler{
		fulfillmentUseCase: fulfillmentUseCase,
		logger:             logger,
	}
}

// ApprovePrintingHandler sends orders to the printer.
// POST /v1/fulfillment/approve-printing
func (h *FulfillmentHandler) ApprovePrintingHandler(c *gin.Context) {
	var req dto.ApprovePrintingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	actor := authHTTP.ActorEmail(c.Request.Context())
	result, err := h.fulfillmentUseCase.ApprovePrinting(c.Request.Context(), req.OrderIDs, actor)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateShipmentsHandler books shipments with Shiprocket.
// POST /v1/fulfillment/shipments
func (h *FulfillmentHandler) CreateShipmentsHandler(c *gin.Context) {
	var req dto.CreateShipmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.fulfillmentUseCase.CreateShipments(
		c.Request.Context(), req.OrderIDs, req.AssignAWB, req.RequestPickup)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UnapproveHandler withdraws approvals.
// POST /v1/fulfillment/unapprove
func (h *FulfillmentHandler) UnapproveHandler(c *gin.Context) {
	var req dto.UnapproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.fulfillmentUseCase.Unapprove(c.Request.Context(), req.JobIDs)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, result)
}
