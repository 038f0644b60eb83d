// Package usecase implements the admin operations on orders: lookup, edits,
// status transitions, issue origins and the admin-edit lock.
package usecase

import (
	"context"
	"time"

	"github.com/diffrun/opsdesk/internal/orders/domain"
)

// OrderRepository defines the order persistence operations admin use cases need.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.Order, error)
	GetByJobID(ctx context.Context, jobID string) (*domain.Order, error)
	List(ctx context.Context, filter domain.ListFilter, offset, limit int) ([]*domain.Order, error)
	ListJobs(ctx context.Context, filter domain.JobFilter, offset, limit int) ([]*domain.Order, int, error)
	MarkJobReconciled(ctx context.Context, jobID, transactionID string, at time.Time) (bool, error)
	Update(ctx context.Context, o *domain.Order) error
	AcquireLock(ctx context.Context, orderID, actor string, at time.Time) (bool, error)
	ReleaseLock(ctx context.Context, orderID, actor string, at time.Time) (bool, error)
}

// OrderUseCase defines the admin business logic for orders.
type OrderUseCase interface {
	Register(ctx context.Context, input domain.RegisterInput) (*domain.Order, error)
	// Get finds an order by order id or by one of its reprint ids ("1234_RP2").
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	GetByJobID(ctx context.Context, jobID string) (*domain.Order, error)
	List(ctx context.Context, filter domain.ListFilter, offset, limit int) ([]*domain.Order, error)
	// ListJobs returns a page of preview jobs and the total matching filter.
	ListJobs(ctx context.Context, filter domain.JobFilter, offset, limit int) ([]*domain.Order, int, error)
	// MarkReconciled records an operator's payment reconciliation of a job,
	// storing transactionID when it is not blank.
	MarkReconciled(ctx context.Context, jobID, transactionID, actor string) (*domain.ReconcileMark, error)
	Patch(ctx context.Context, orderID string, patch domain.Patch, actor string) (*domain.Order, error)
	TransitionStatus(ctx context.Context, orderID string, status domain.Status, remarks, actor string) (*domain.Order, error)
	SetIssueOrigin(ctx context.Context, orderID, origin, actor string) (*domain.Order, error)
	Lock(ctx context.Context, orderID, actor string) (*domain.LockResult, error)
	Unlock(ctx context.Context, orderID, actor string) error
}
