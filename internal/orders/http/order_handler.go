// Package http provides the admin HTTP handlers for orders.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/diffrun/opsdesk/internal/auth/http"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/httputil"
	"github.com/diffrun/opsdesk/internal/orders/domain"
	"github.com/diffrun/opsdesk/internal/orders/http/dto"
	ordersUseCase "github.com/diffrun/opsdesk/internal/orders/usecase"
	customValidation "github.com/diffrun/opsdesk/internal/validation"
)

// OrderHandler handles the admin order endpoints.
type OrderHandler struct {
	orderUseCase ordersUseCase.OrderUseCase
	logger       *slog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orderUseCase ordersUseCase.OrderUseCase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
		logger:       logger,
	}
}

func orderIDParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("order_id"))
	return id, id != ""
}

// RegisterHandler records a storefront order or preview job.
// POST /v1/orders
func (h *OrderHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	order, err := h.orderUseCase.Register(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusCreated, dto.MapOrderToResponse(order))
}

// GetHandler returns an order by order id or reprint id.
// GET /v1/orders/:order_id
func (h *OrderHandler) GetHandler(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("order_id cannot be empty"), h.logger)
		return
	}

	order, err := h.orderUseCase.Get(c.Request.Context(), orderID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}

// GetByJobHandler returns an order by preview job id.
// GET /v1/jobs/:job_id
func (h *OrderHandler) GetByJobHandler(c *gin.Context) {
	order, err := h.orderUseCase.GetByJobID(c.Request.Context(), strings.TrimSpace(c.Param("job_id")))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}

// ListHandler lists orders newest first.
// GET /v1/orders?status=&printer=&email=&locale=&paid=&offset=&limit=
func (h *OrderHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := domain.ListFilter{
		Status:  domain.Status(strings.ToLower(c.Query("status"))),
		Printer: c.Query("printer"),
		Email:   strings.TrimSpace(c.Query("email")),
		Locale:  strings.ToUpper(c.Query("locale")),
	}
	if raw := c.Query("paid"); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid paid parameter: must be a boolean"), h.logger)
			return
		}
		filter.Paid = &paid
	}

	orders, err := h.orderUseCase.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrdersToListResponse(orders, offset, limit))
}

// ListJobsHandler lists preview jobs with a total count.
// GET /v1/jobs?filter_status=approved|uploaded&filter_book_style=&q=&sort_by=&sort_dir=asc&page=&limit=
func (h *OrderHandler) ListJobsHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := domain.JobFilter{
		BookID:   strings.TrimSpace(c.Query("filter_book_style")),
		Search:   c.Query("q"),
		SortBy:   c.Query("sort_by"),
		SortDesc: strings.EqualFold(c.Query("sort_dir"), "desc"),
	}
	switch c.Query("filter_status") {
	case "approved":
		approved := true
		filter.Approved = &approved
	case "uploaded":
		approved := false
		filter.Approved = &approved
	}
	if filter.SortBy != "" && !domain.JobSortColumns[filter.SortBy] {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid sort_by parameter: %q", filter.SortBy), h.logger)
		return
	}

	jobs, total, err := h.orderUseCase.ListJobs(c.Request.Context(), filter, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapJobsToListResponse(jobs, total, offset, limit))
}

// MarkReconciledHandler records an operator's payment reconciliation of a job.
// POST /v1/reconcile/mark
func (h *OrderHandler) MarkReconciledHandler(c *gin.Context) {
	var req dto.MarkReconciledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	mark, err := h.orderUseCase.MarkReconciled(
		c.Request.Context(), req.JobID, req.TransactionID, authHTTP.ActorEmail(c.Request.Context()))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, mark)
}

// immutableKeys returns the body keys that are not editable, sorted.
func immutableKeys(raw map[string]json.RawMessage) []string {
	var keys []string
	for key := range raw {
		if !domain.IsEditableField(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// PatchHandler edits whitelisted order fields. Any other key is rejected with 422.
// PATCH /v1/orders/:order_id
func (h *OrderHandler) PatchHandler(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("order_id cannot be empty"), h.logger)
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if keys := immutableKeys(raw); len(keys) > 0 {
		httputil.HandleErrorGin(c,
			apperrors.Wrapf(domain.ErrImmutableField, "cannot edit %s", strings.Join(keys, ", ")),
			h.logger)
		return
	}

	var req dto.PatchOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	actor := authHTTP.ActorEmail(c.Request.Context())
	order, err := h.orderUseCase.Patch(c.Request.Context(), orderID, req.ToDomain(), actor)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}

// TransitionStatusHandler moves an order to cancelled, rejected, refunded or reprint.
// POST /v1/orders/:order_id/status
func (h *OrderHandler) TransitionStatusHandler(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("order_id cannot be empty"), h.logger)
		return
	}

	var req dto.TransitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	actor := authHTTP.ActorEmail(c.Request.Context())
	order, err := h.orderUseCase.TransitionStatus(
		c.Request.Context(), orderID, domain.Status(req.Status), req.Remarks, actor,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}

// IssueOriginHandler records the party responsible for an order problem.
// POST /v1/orders/:order_id/issue-origin
func (h *OrderHandler) IssueOriginHandler(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("order_id cannot be empty"), h.logger)
		return
	}

	var req dto.IssueOriginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	actor := authHTTP.ActorEmail(c.Request.Context())
	order, err := h.orderUseCase.SetIssueOrigin(c.Request.Context(), orderID, req.Origin, actor)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrderToResponse(order))
}

// LockHandler acquires the admin-edit lock for the calling operator. A lock
// held by someone else returns 409 with the holder.
// POST /v1/orders/:order_id/lock
func (h *OrderHandler) LockHandler(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("order_id cannot be empty"), h.logger)
		return
	}

	actor := authHTTP.ActorEmail(c.Request.Context())
	result, err := h.orderUseCase.Lock(c.Request.Context(), orderID, actor)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if !result.Acquired {
		c.JSON(http.StatusConflict, dto.LockHeldResponse{
			Error:   "locked",
			Message: fmt.Sprintf("order is locked by %s", result.HeldBy),
			HeldBy:  result.HeldBy,
		})
		return
	}
	c.JSON(http.StatusOK, dto.LockResponse{OrderID: orderID, Acquired: true, LockedBy: actor})
}

// UnlockHandler releases the admin-edit lock.
// POST /v1/orders/:order_id/unlock
func (h *OrderHandler) UnlockHandler(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("order_id cannot be empty"), h.logger)
		return
	}

	if err := h.orderUseCase.Unlock(c.Request.Context(), orderID, authHTTP.ActorEmail(c.Request.Context())); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.LockResponse{OrderID: orderID, Acquired: false})
}
