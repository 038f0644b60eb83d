package usecase

import (
	"context"
	"time"

	"github.com/diffrun/opsdesk/internal/metrics"
	"github.com/diffrun/opsdesk/internal/reports/domain"
)

const metricsDomain = "reports"

// reportsUseCaseWithMetrics decorates ReportsUseCase with metrics instrumentation.
type reportsUseCaseWithMetrics struct {
	next    ReportsUseCase
	metrics metrics.BusinessMetrics
}

// NewReportsUseCaseWithMetrics wraps a ReportsUseCase with metrics recording.
func NewReportsUseCaseWithMetrics(useCase ReportsUseCase, m metrics.BusinessMetrics) ReportsUseCase {
	return &reportsUseCaseWithMetrics{next: useCase, metrics: m}
}

func (r *reportsUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	r.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	r.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Orders records metrics for the orders series.
func (r *reportsUseCaseWithMetrics) Orders(ctx context.Context, q domain.RangeQuery) (*domain.Series[int], error) {
	start := time.Now()
	s, err := r.next.Orders(ctx, q)
	r.record(ctx, "orders", start, err)
	return s, err
}

// Revenue records metrics for the revenue series.
func (r *reportsUseCaseWithMetrics) Revenue(
	ctx context.Context,
	q domain.RangeQuery,
) (*domain.Series[float64], error) {
	start := time.Now()
	s, err := r.next.Revenue(ctx, q)
	r.record(ctx, "revenue", start, err)
	return s, err
}

// ShipStatus records metrics for the shipping status report.
func (r *reportsUseCaseWithMetrics) ShipStatus(
	ctx context.Context,
	q domain.RangeQuery,
	printer string,
) (*domain.ShipStatusReport, error) {
	start := time.Now()
	rep, err := r.next.ShipStatus(ctx, q, printer)
	r.record(ctx, "ship_status", start, err)
	return rep, err
}

// SLASummary records metrics for the delivery SLA summary.
func (r *reportsUseCaseWithMetrics) SLASummary(
	ctx context.Context,
	startDate, endDate string,
) (*domain.SLASummary, error) {
	start := time.Now()
	s, err := r.next.SLASummary(ctx, startDate, endDate)
	r.record(ctx, "sla_summary", start, err)
	return s, err
}

// ProductionKPIs records metrics for the production KPIs.
func (r *reportsUseCaseWithMetrics) ProductionKPIs(ctx context.Context) (map[string]domain.PrinterKPI, error) {
	start := time.Now()
	k, err := r.next.ProductionKPIs(ctx)
	r.record(ctx, "production_kpis", start, err)
	return k, err
}

// ProductionGraph records metrics for the production graph.
func (r *reportsUseCaseWithMetrics) ProductionGraph(
	ctx context.Context,
	startDate, endDate string,
) (*domain.ProductionGraph, error) {
	start := time.Now()
	g, err := r.next.ProductionGraph(ctx, startDate, endDate)
	r.record(ctx, "production_graph", start, err)
	return g, err
}

// SLACohorts records metrics for the SLA cohorts.
func (r *reportsUseCaseWithMetrics) SLACohorts(
	ctx context.Context,
	startDate, endDate string,
) ([]domain.CohortDay, error) {
	start := time.Now()
	c, err := r.next.SLACohorts(ctx, startDate, endDate)
	r.record(ctx, "sla_cohorts", start, err)
	return c, err
}

// CohortOrders records metrics for the cohort drill-down.
func (r *reportsUseCaseWithMetrics) CohortOrders(
	ctx context.Context,
	startDate, endDate, cohortDate string,
) ([]domain.CohortOrder, error) {
	start := time.Now()
	o, err := r.next.CohortOrders(ctx, startDate, endDate, cohortDate)
	r.record(ctx, "cohort_orders", start, err)
	return o, err
}

// DeliveryLatency records metrics for the delivery latency cohorts.
func (r *reportsUseCaseWithMetrics) DeliveryLatency(
	ctx context.Context,
	startDate, endDate string,
) ([]domain.LatencyRow, error) {
	start := time.Now()
	rows, err := r.next.DeliveryLatency(ctx, startDate, endDate)
	r.record(ctx, "delivery_latency", start, err)
	return rows, err
}

// WeeklySLA records metrics for the weekly shipment SLA.
func (r *reportsUseCaseWithMetrics) WeeklySLA(
	ctx context.Context,
	q domain.WeeklyQuery,
) (*domain.WeeklySLAReport, error) {
	start := time.Now()
	rep, err := r.next.WeeklySLA(ctx, q)
	r.record(ctx, "weekly_sla", start, err)
	return rep, err
}

// PreviewVsOrders records metrics for the preview conversion report.
func (r *reportsUseCaseWithMetrics) PreviewVsOrders(
	ctx context.Context,
	q domain.RangeQuery,
) (*domain.Conversion, error) {
	start := time.Now()
	c, err := r.next.PreviewVsOrders(ctx, q)
	r.record(ctx, "preview_vs_orders", start, err)
	return c, err
}

// OrderStatus records metrics for the order status report.
func (r *reportsUseCaseWithMetrics) OrderStatus(
	ctx context.Context,
	q domain.RangeQuery,
	printer string,
) (*domain.OrderStatusReport, error) {
	start := time.Now()
	rep, err := r.next.OrderStatus(ctx, q, printer)
	r.record(ctx, "order_status", start, err)
	return rep, err
}
