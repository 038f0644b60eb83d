package usecase

import (
	"context"
	"time"

	fulfillmentDomain "github.com/diffrun/opsdesk/internal/fulfillment/domain"
	"github.com/diffrun/opsdesk/internal/metrics"
)

const metricsDomain = "fulfillment"

// fulfillmentUseCaseWithMetrics decorates FulfillmentUseCase with metrics instrumentation.
type fulfillmentUseCaseWithMetrics struct {
	next    FulfillmentUseCase
	metrics metrics.BusinessMetrics
}

// NewFulfillmentUseCaseWithMetrics wraps a FulfillmentUseCase with metrics recording.
func NewFulfillmentUseCaseWithMetrics(useCase FulfillmentUseCase, m metrics.BusinessMetrics) FulfillmentUseCase {
	return &fulfillmentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (f *fulfillmentUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	result *fulfillmentDomain.BulkResult,
	err error,
) {
	status := metrics.StatusOf(err)
	f.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	f.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)

	if result == nil {
		return
	}
	f.metrics.RecordItems(ctx, metricsDomain, operation, string(fulfillmentDomain.ItemSuccess), result.Summary.Success)
	f.metrics.RecordItems(ctx, metricsDomain, operation, string(fulfillmentDomain.ItemError), result.Summary.Error)
	f.metrics.RecordItems(ctx, metricsDomain, operation, string(fulfillmentDomain.ItemSkipped), result.Summary.Skipped)
}

// ApprovePrinting records metrics for print approvals.
func (f *fulfillmentUseCaseWithMetrics) ApprovePrinting(
	ctx context.Context,
	orderIDs []string,
	actor string,
) (*fulfillmentDomain.BulkResult, error) {
	start := time.Now()
	result, err := f.next.ApprovePrinting(ctx, orderIDs, actor)
	f.record(ctx, "approve_printing", start, result, err)
	return result, err
}

// CreateShipments records metrics for shipment bookings.
func (f *fulfillmentUseCaseWithMetrics) CreateShipments(
	ctx context.Context,
	orderIDs []string,
	assignAWB, requestPickup bool,
) (*fulfillmentDomain.BulkResult, error) {
	start := time.Now()
	result, err := f.next.CreateShipments(ctx, orderIDs, assignAWB, requestPickup)
	f.record(ctx, "create_shipments", start, result, err)
	return result, err
}

// Unapprove records metrics for unapprovals.
func (f *fulfillmentUseCaseWithMetrics) Unapprove(
	ctx context.Context,
	jobIDs []string,
) (*fulfillmentDomain.BulkResult, error) {
	start := time.Now()
	result, err := f.next.Unapprove(ctx, jobIDs)
	f.record(ctx, "unapprove", start, result, err)
	return result, err
}
