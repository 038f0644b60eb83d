package usecase

import (
	"context"
	"time"

	"github.com/diffrun/opsdesk/internal/metrics"
	"github.com/diffrun/opsdesk/internal/orders/domain"
)

// orderUseCaseWithMetrics decorates OrderUseCase with metrics instrumentation.
type orderUseCaseWithMetrics struct {
	next    OrderUseCase
	metrics metrics.BusinessMetrics
}

// NewOrderUseCaseWithMetrics wraps an OrderUseCase with metrics recording.
func NewOrderUseCaseWithMetrics(useCase OrderUseCase, m metrics.BusinessMetrics) OrderUseCase {
	return &orderUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (o *orderUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	o.metrics.RecordOperation(ctx, "orders", operation, status)
	o.metrics.RecordDuration(ctx, "orders", operation, time.Since(start), status)
}

// Register records metrics for order registration.
func (o *orderUseCaseWithMetrics) Register(ctx context.Context, input domain.RegisterInput) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.Register(ctx, input)
	o.record(ctx, "order_register", start, err)
	return order, err
}

// Get records metrics for order lookups.
func (o *orderUseCaseWithMetrics) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.Get(ctx, orderID)
	o.record(ctx, "order_get", start, err)
	return order, err
}

// GetByJobID records metrics for job lookups.
func (o *orderUseCaseWithMetrics) GetByJobID(ctx context.Context, jobID string) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.GetByJobID(ctx, jobID)
	o.record(ctx, "order_get_by_job", start, err)
	return order, err
}

// List records metrics for order listings.
func (o *orderUseCaseWithMetrics) List(
	ctx context.Context,
	filter domain.ListFilter,
	offset, limit int,
) ([]*domain.Order, error) {
	start := time.Now()
	orders, err := o.next.List(ctx, filter, offset, limit)
	o.record(ctx, "order_list", start, err)
	return orders, err
}

// ListJobs records metrics for job listings.
func (o *orderUseCaseWithMetrics) ListJobs(
	ctx context.Context,
	filter domain.JobFilter,
	offset, limit int,
) ([]*domain.Order, int, error) {
	start := time.Now()
	jobs, total, err := o.next.ListJobs(ctx, filter, offset, limit)
	o.record(ctx, "job_list", start, err)
	return jobs, total, err
}

// MarkReconciled records metrics for manual reconciliation.
func (o *orderUseCaseWithMetrics) MarkReconciled(
	ctx context.Context,
	jobID, transactionID, actor string,
) (*domain.ReconcileMark, error) {
	start := time.Now()
	mark, err := o.next.MarkReconciled(ctx, jobID, transactionID, actor)
	o.record(ctx, "job_reconcile_mark", start, err)
	return mark, err
}

// Patch records metrics for order edits.
func (o *orderUseCaseWithMetrics) Patch(
	ctx context.Context,
	orderID string,
	patch domain.Patch,
	actor string,
) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.Patch(ctx, orderID, patch, actor)
	o.record(ctx, "order_patch", start, err)
	return order, err
}

// TransitionStatus records metrics for status transitions.
func (o *orderUseCaseWithMetrics) TransitionStatus(
	ctx context.Context,
	orderID string,
	status domain.Status,
	remarks, actor string,
) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.TransitionStatus(ctx, orderID, status, remarks, actor)
	o.record(ctx, "order_status_"+string(status), start, err)
	return order, err
}

// SetIssueOrigin records metrics for issue origin updates.
func (o *orderUseCaseWithMetrics) SetIssueOrigin(
	ctx context.Context,
	orderID, origin, actor string,
) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.SetIssueOrigin(ctx, orderID, origin, actor)
	o.record(ctx, "order_issue_origin", start, err)
	return order, err
}

// Lock records metrics for lock attempts; a lock held by another operator counts as "held".
func (o *orderUseCaseWithMetrics) Lock(ctx context.Context, orderID, actor string) (*domain.LockResult, error) {
	start := time.Now()
	result, err := o.next.Lock(ctx, orderID, actor)

	status := metrics.StatusOf(err)
	if err == nil && !result.Acquired {
		status = "held"
	}
	o.metrics.RecordOperation(ctx, "orders", "order_lock", status)
	o.metrics.RecordDuration(ctx, "orders", "order_lock", time.Since(start), status)

	return result, err
}

// Unlock records metrics for unlocks.
func (o *orderUseCaseWithMetrics) Unlock(ctx context.Context, orderID, actor string) error {
	start := time.Now()
	err := o.next.Unlock(ctx, orderID, actor)
	o.record(ctx, "order_unlock", start, err)
	return err
}
