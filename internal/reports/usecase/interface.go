// Package usecase computes the dashboard reports.
package usecase

import (
	"context"
	"time"

	"github.com/diffrun/opsdesk/internal/reports/domain"
)

// ReportRepository reads report facts.
type ReportRepository interface {
	ListFacts(ctx context.Context, q domain.FactQuery) ([]domain.Fact, error)
	ListJobCreations(ctx context.Context, w domain.Window, locale *domain.LocaleFilter) ([]time.Time, error)
}

// ReportsUseCase defines the read-only report queries.
type ReportsUseCase interface {
	// Orders counts eligible orders per bucket.
	Orders(ctx context.Context, q domain.RangeQuery) (*domain.Series[int], error)
	// Revenue sums total price per bucket.
	Revenue(ctx context.Context, q domain.RangeQuery) (*domain.Series[float64], error)
	// ShipStatus counts orders per shipping status for each processing day.
	// printer is "genesis", "yara" or "all".
	ShipStatus(ctx context.Context, q domain.RangeQuery, printer string) (*domain.ShipStatusReport, error)
	// SLASummary classifies deliveries of orders processed between the dates.
	SLASummary(ctx context.Context, startDate, endDate string) (*domain.SLASummary, error)
	// ProductionKPIs splits production printers' orders into in production and shipped.
	ProductionKPIs(ctx context.Context) (map[string]domain.PrinterKPI, error)
	// ProductionGraph is ProductionKPIs for orders processed between the dates.
	ProductionGraph(ctx context.Context, startDate, endDate string) (*domain.ProductionGraph, error)
	// SLACohorts reports the delivered share per processing day.
	SLACohorts(ctx context.Context, startDate, endDate string) ([]domain.CohortDay, error)
	// CohortOrders lists the orders of one processing day of the range.
	CohortOrders(ctx context.Context, startDate, endDate, cohortDate string) ([]domain.CohortOrder, error)
	// DeliveryLatency spreads each processing day's orders over delivery latency.
	DeliveryLatency(ctx context.Context, startDate, endDate string) ([]domain.LatencyRow, error)
	// WeeklySLA reports delivery performance per ISO week.
	WeeklySLA(ctx context.Context, q domain.WeeklyQuery) (*domain.WeeklySLAReport, error)
	// PreviewVsOrders compares preview jobs created with paid orders per bucket.
	PreviewVsOrders(ctx context.Context, q domain.RangeQuery) (*domain.Conversion, error)
	// OrderStatus counts orders per fulfillment state for each processing day.
	OrderStatus(ctx context.Context, q domain.RangeQuery, printer string) (*domain.OrderStatusReport, error)
}
