package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diffrun/opsdesk/internal/database"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/orders/domain"
)

// orderUseCase implements OrderUseCase.
type orderUseCase struct {
	txManager database.TxManager
	orderRepo OrderRepository
	logger    *slog.Logger
}

// NewOrderUseCase creates a new OrderUseCase.
func NewOrderUseCase(txManager database.TxManager, orderRepo OrderRepository, logger *slog.Logger) OrderUseCase {
	return &orderUseCase{
		txManager: txManager,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// Register records a storefront order or preview job.
func (o *orderUseCase) Register(ctx context.Context, input domain.RegisterInput) (*domain.Order, error) {
	if input.OrderID == "" && input.JobID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "order_id or job_id is required")
	}

	now := time.Now().UTC()
	createdAt := now
	if input.CreatedAt != nil {
		createdAt = input.CreatedAt.UTC()
	}

	order := &domain.Order{
		ID:                 uuid.Must(uuid.NewV7()),
		OrderID:            input.OrderID,
		JobID:              input.JobID,
		Email:              strings.TrimSpace(input.Email),
		Phone:              input.Phone,
		CustomerName:       input.CustomerName,
		ChildName:          input.ChildName,
		BookID:             input.BookID,
		BookStyle:          input.BookStyle,
		Locale:             input.Locale,
		DiscountCode:       input.DiscountCode,
		TotalPrice:         input.TotalPrice,
		Currency:           input.Currency,
		ShippingAddress:    input.ShippingAddress,
		Paid:               input.Paid,
		WorkflowsTotal:     input.WorkflowsTotal,
		WorkflowsCompleted: input.WorkflowsCompleted,
		Status:             domain.StatusActive,
		ReprintMeta:        map[string]domain.ReprintMeta{},
		Timeline: domain.Timeline{
			CreatedAt:   createdAt,
			ProcessedAt: input.ProcessedAt,
			UpdatedAt:   now,
		},
	}

	if err := o.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Get finds an order by order id, falling back to the base order of a reprint id.
func (o *orderUseCase) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	base, key, isReprint := domain.SplitReprintID(orderID)
	if !isReprint {
		return o.orderRepo.GetByOrderID(ctx, orderID)
	}

	order, err := o.orderRepo.GetByOrderID(ctx, base)
	if err != nil {
		return nil, err
	}
	// Older reprints only set reprint_order_id, without a meta entry.
	if _, ok := order.ReprintMeta[key]; !ok && order.ReprintOrderID != orderID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// GetByJobID finds an order by its preview job id.
func (o *orderUseCase) GetByJobID(ctx context.Context, jobID string) (*domain.Order, error) {
	return o.orderRepo.GetByJobID(ctx, jobID)
}

// List returns orders matching filter, newest first.
func (o *orderUseCase) List(
	ctx context.Context,
	filter domain.ListFilter,
	offset, limit int,
) ([]*domain.Order, error) {
	return o.orderRepo.List(ctx, filter, offset, limit)
}

// ListJobs returns a page of preview jobs and the total matching filter.
func (o *orderUseCase) ListJobs(
	ctx context.Context,
	filter domain.JobFilter,
	offset, limit int,
) ([]*domain.Order, int, error) {
	return o.orderRepo.ListJobs(ctx, filter, offset, limit)
}

// MarkReconciled stamps reconciled_at on the job.
func (o *orderUseCase) MarkReconciled(
	ctx context.Context,
	jobID, transactionID, actor string,
) (*domain.ReconcileMark, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "job_id is required")
	}

	mark := &domain.ReconcileMark{
		JobID:         jobID,
		TransactionID: strings.TrimSpace(transactionID),
		ReconciledAt:  time.Now().UTC(),
	}
	found, err := o.orderRepo.MarkJobReconciled(ctx, mark.JobID, mark.TransactionID, mark.ReconciledAt)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrOrderNotFound
	}

	o.logger.Info("job reconciled",
		slog.String("job_id", jobID),
		slog.Bool("transaction_id_set", mark.TransactionID != ""),
		slog.String("actor", actor),
	)
	return mark, nil
}

// mutate loads the base order under a row lock, refuses when another operator
// holds the admin lock, applies fn and writes the result.
func (o *orderUseCase) mutate(
	ctx context.Context,
	orderID, actor string,
	fn func(order *domain.Order, now time.Time) error,
) (*domain.Order, error) {
	base, _, _ := domain.SplitReprintID(orderID)

	var updated *domain.Order
	err := o.txManager.WithTx(ctx, func(txCtx context.Context) error {
		order, err := o.orderRepo.GetByOrderIDForUpdate(txCtx, base)
		if err != nil {
			return err
		}
		// The holder of the admin lock may still edit.
		if order.IsLockedByOther(actor) {
			return apperrors.Wrapf(domain.ErrOrderLocked, "held by %s", order.Lock.LockedBy)
		}

		now := time.Now().UTC()
		if err := fn(order, now); err != nil {
			return err
		}
		order.UpdatedAt = now

		if err := o.orderRepo.Update(txCtx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Patch applies operator edits to the editable fields of an order.
func (o *orderUseCase) Patch(
	ctx context.Context,
	orderID string,
	patch domain.Patch,
	actor string,
) (*domain.Order, error) {
	if patch.IsEmpty() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "no editable fields in patch")
	}

	return o.mutate(ctx, orderID, actor, func(order *domain.Order, _ time.Time) error {
		patch.Apply(order)
		return nil
	})
}

// TransitionStatus moves an order to an operator status. A reprint allocates
// the next _RPn identifier and records its meta entry.
func (o *orderUseCase) TransitionStatus(
	ctx context.Context,
	orderID string,
	status domain.Status,
	remarks, actor string,
) (*domain.Order, error) {
	if !domain.IsTransitionStatus(status) {
		return nil, apperrors.Wrapf(domain.ErrInvalidStatus, "status %q", string(status))
	}
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "remarks are required")
	}

	order, err := o.mutate(ctx, orderID, actor, func(order *domain.Order, now time.Time) error {
		order.Status = status
		order.StatusRemarks = remarks
		order.StatusUpdatedAt = &now

		if status == domain.StatusReprint {
			id, key := domain.NextReprint(order.OrderID, order.ReprintOrderID, order.ReprintMeta)
			if order.ReprintMeta == nil {
				order.ReprintMeta = map[string]domain.ReprintMeta{}
			}
			order.ReprintMeta[key] = domain.ReprintMeta{
				ReprintOrderID: id,
				Remarks:        remarks,
				RequestedBy:    actor,
				RequestedAt:    now,
			}
			order.ReprintOrderID = id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("order status changed",
		slog.String("order_id", order.OrderID),
		slog.String("status", string(status)),
		slog.String("reprint_order_id", order.ReprintOrderID),
		slog.String("actor", actor),
	)
	return order, nil
}

// SetIssueOrigin records which party caused a problem with the order.
func (o *orderUseCase) SetIssueOrigin(ctx context.Context, orderID, origin, actor string) (*domain.Order, error) {
	if !domain.IsIssueOrigin(origin) {
		return nil, apperrors.Wrapf(domain.ErrInvalidIssueOrigin, "origin %q", origin)
	}

	return o.mutate(ctx, orderID, actor, func(order *domain.Order, _ time.Time) error {
		order.IssueOrigin = strings.ToLower(strings.TrimSpace(origin))
		return nil
	})
}

// Lock acquires the admin-edit lock for actor. A lock held by someone else is
// reported through LockResult, not as an error.
func (o *orderUseCase) Lock(ctx context.Context, orderID, actor string) (*domain.LockResult, error) {
	acquired, err := o.orderRepo.AcquireLock(ctx, orderID, actor, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if acquired {
		return &domain.LockResult{Acquired: true}, nil
	}

	order, err := o.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	o.logger.Warn("order lock not acquired",
		slog.String("order_id", orderID),
		slog.String("actor", actor),
		slog.String("held_by", order.HeldBy()),
	)
	return &domain.LockResult{Acquired: false, HeldBy: order.HeldBy()}, nil
}

// Unlock releases the admin-edit lock.
func (o *orderUseCase) Unlock(ctx context.Context, orderID, actor string) error {
	released, err := o.orderRepo.ReleaseLock(ctx, orderID, actor, time.Now().UTC())
	if err != nil {
		return err
	}
	if released {
		return nil
	}

	if _, err := o.orderRepo.GetByOrderID(ctx, orderID); err != nil {
		return err
	}
	return domain.ErrOrderNotLocked
}
