// Package http exposes the dashboard report endpoints.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/diffrun/opsdesk/internal/httputil"
	"github.com/diffrun/opsdesk/internal/reports/domain"
	reportsUseCase "github.com/diffrun/opsdesk/internal/reports/usecase"
)

// ReportsHandler handles report queries.
type ReportsHandler struct {
	reportsUseCase reportsUseCase.ReportsUseCase
	logger         *slog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(reportsUseCase reportsUseCase.ReportsUseCase, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{
		reportsUseCase: reportsUseCase,
		logger:         logger,
	}
}

func rangeQuery(c *gin.Context) domain.RangeQuery {
	return domain.RangeQuery{
		Range:     c.DefaultQuery("range", domain.Range1Week),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Locale:    c.Query("loc"),
	}
}

// OrdersHandler returns order counts per bucket.
// GET /v1/stats/orders?range=1w&loc=IN
func (h *ReportsHandler) OrdersHandler(c *gin.Context) {
	series, err := h.reportsUseCase.Orders(c.Request.Context(), rangeQuery(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, series)
}

// RevenueHandler returns revenue per bucket.
// GET /v1/stats/revenue?range=1m
func (h *ReportsHandler) RevenueHandler(c *gin.Context) {
	series, err := h.reportsUseCase.Revenue(c.Request.Context(), rangeQuery(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, series)
}

// ShipStatusHandler returns shipping status counts per day.
// GET /v1/stats/ship-status?range=1w&printer=genesis
func (h *ReportsHandler) ShipStatusHandler(c *gin.Context) {
	report, err := h.reportsUseCase.ShipStatus(c.Request.Context(), rangeQuery(c), c.DefaultQuery("printer", "all"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SLASummaryHandler returns the delivery SLA summary.
// GET /v1/stats/sla-summary?start_date=2025-03-01&end_date=2025-03-31
func (h *ReportsHandler) SLASummaryHandler(c *gin.Context) {
	summary, err := h.reportsUseCase.SLASummary(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ProductionKPIsHandler returns per-printer production counts.
// GET /v1/stats/production-kpis
func (h *ReportsHandler) ProductionKPIsHandler(c *gin.Context) {
	kpis, err := h.reportsUseCase.ProductionKPIs(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

// ProductionGraphHandler returns per-printer production counts for a date range.
// GET /v1/stats/production-kpis-graph?start_date=&end_date=
func (h *ReportsHandler) ProductionGraphHandler(c *gin.Context) {
	graph, err := h.reportsUseCase.ProductionGraph(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, graph)
}

// SLACohortsHandler returns the delivered share per processing day, or the
// orders of one day when cohort_date is set.
// GET /v1/stats/sla-cohorts?start_date=&end_date=&cohort_date=
func (h *ReportsHandler) SLACohortsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	startDate, endDate := c.Query("start_date"), c.Query("end_date")

	if day := c.Query("cohort_date"); day != "" {
		orders, err := h.reportsUseCase.CohortOrders(ctx, startDate, endDate, day)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		c.JSON(http.StatusOK, orders)
		return
	}

	cohorts, err := h.reportsUseCase.SLACohorts(ctx, startDate, endDate)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, cohorts)
}

// DeliveryLatencyHandler returns the delivery latency table.
// GET /v1/stats/delivery-latency-cohorts?start_date=&end_date=
func (h *ReportsHandler) DeliveryLatencyHandler(c *gin.Context) {
	rows, err := h.reportsUseCase.DeliveryLatency(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter: must be an integer", key)
	}
	return n, nil
}

// WeeklySLAHandler returns delivery performance per ISO week.
// GET /v1/stats/shipment-weekly-sla?weeks=6&exclude_weeks=2 or ?start_date=&end_date=
func (h *ReportsHandler) WeeklySLAHandler(c *gin.Context) {
	weeks, err := intQuery(c, "weeks", domain.DefaultWeeks)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	exclude, err := intQuery(c, "exclude_weeks", domain.DefaultExcludeWeeks)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	report, err := h.reportsUseCase.WeeklySLA(c.Request.Context(), domain.WeeklyQuery{
		Weeks:        weeks,
		ExcludeWeeks: exclude,
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, report)
}

// PreviewVsOrdersHandler returns preview jobs, paid orders and conversion per bucket.
// GET /v1/stats/preview-vs-orders?range=1w&loc=IN
func (h *ReportsHandler) PreviewVsOrdersHandler(c *gin.Context) {
	conversion, err := h.reportsUseCase.PreviewVsOrders(c.Request.Context(), rangeQuery(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, conversion)
}

// OrderStatusHandler returns order counts per fulfillment state for each day.
// GET /v1/stats/order-status?range=1w&printer=all
func (h *ReportsHandler) OrderStatusHandler(c *gin.Context) {
	report, err := h.reportsUseCase.OrderStatus(c.Request.Context(), rangeQuery(c), c.DefaultQuery("printer", "all"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, report)
}
