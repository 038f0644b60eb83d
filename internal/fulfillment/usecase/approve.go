package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/diffrun/opsdesk/internal/errors"
	fulfillmentDomain "github.com/diffrun/opsdesk/internal/fulfillment/domain"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	outboxDomain "github.com/diffrun/opsdesk/internal/outbox/domain"
	"github.com/diffrun/opsdesk/internal/partner"
)

// ApprovePrinting submits each order to Cloudprinter. Locked orders and orders
// already handed to a printer are skipped.
func (f *fulfillmentUseCase) ApprovePrinting(
	ctx context.Context,
	orderIDs []string,
	actor string,
) (*fulfillmentDomain.BulkResult, error) {
	result := &fulfillmentDomain.BulkResult{Results: []fulfillmentDomain.ItemResult{}}

	for _, id := range fulfillmentDomain.UniqueIDs(orderIDs) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Add(f.approveOne(ctx, id, actor))
	}

	f.logSummary("approve_printing", result)
	return result, nil
}

func (f *fulfillmentUseCase) approveOne(ctx context.Context, id, actor string) fulfillmentDomain.ItemResult {
	order, err := f.orderRepo.GetByOrderID(ctx, id)
	if err != nil {
		return lookupFailure(id, err)
	}
	if order.Lock.Locked {
		return itemSkipped(id, fulfillmentDomain.StepLocked, "order is locked by "+order.Lock.LockedBy)
	}
	// Cheap pre-check; the claim below is what actually serializes approvals.
	if order.PrintSentAt != nil || order.CloudprinterReference != "" {
		return itemSkipped(id, fulfillmentDomain.StepAlreadySent, "order was already sent to the printer")
	}
	if order.JobID == "" {
		return itemError(id, fulfillmentDomain.StepArtifacts, errors.New("order has no preview job"))
	}

	files, err := f.artifacts.Approved(ctx, order.JobID)
	if err != nil {
		return itemError(id, fulfillmentDomain.StepArtifacts, err)
	}

	// The claim is taken before the partner call so concurrent approvals of the
	// same order submit it once.
	claimed, err := f.orderRepo.ClaimPrintSubmission(ctx, order.ID, f.now())
	if err != nil {
		return itemError(id, fulfillmentDomain.StepProcessing, err)
	}
	if !claimed {
		// Stale read: the order moved on since it was loaded.
		return itemSkipped(id, fulfillmentDomain.StepAlreadySent, "order is already being sent to the printer")
	}

	reference, err := f.printer.AddOrder(ctx, fulfillmentDomain.BuildPrintOrder(order, *files, f.config.ContactEmail))
	if err != nil {
		f.releasePrintClaim(ctx, order)
		step := fulfillmentDomain.StepProcessing
		if errors.Is(err, partner.ErrPartner) {
			step = fulfillmentDomain.StepCloudprinter
		}
		f.logger.Error("failed to submit print order", slog.String("order_id", id), slog.Any("error", err))
		return itemError(id, step, err)
	}

	now := f.now()
	err = f.txManager.WithTx(ctx, func(ctx context.Context) error {
		err := f.orderRepo.MarkSentToPrinter(ctx, order.ID, ordersDomain.PrintDispatch{
			Printer:   ordersDomain.PrinterCloudprinter,
			Reference: reference,
			SentBy:    actor,
			At:        now,
		})
		if err != nil {
			return err
		}
		return f.claimProduction(ctx, order, now)
	})
	if err != nil {
		// The printer accepted the order; the reference is logged so it can be
		// recorded by hand.
		f.logger.Error("print order accepted but not recorded",
			slog.String("order_id", id),
			slog.String("reference", reference),
			slog.Any("error", err),
		)
		return itemError(id, fulfillmentDomain.StepProcessing, err)
	}

	return fulfillmentDomain.ItemResult{
		ID:        id,
		Status:    fulfillmentDomain.ItemSuccess,
		Step:      fulfillmentDomain.StepCompleted,
		Reference: reference,
	}
}

// releasePrintClaim lets a later approval retry an order the printer rejected.
func (f *fulfillmentUseCase) releasePrintClaim(ctx context.Context, order *ordersDomain.Order) {
	err := f.orderRepo.ReleasePrintSubmission(context.WithoutCancel(ctx), order.ID, order.PrintStatus, f.now())
	if err != nil {
		f.logger.Error("failed to release print claim", slog.String("order_id", order.OrderID), slog.Any("error", err))
	}
}

// claimProduction flips the production flag and enqueues the production email
// when this caller won the claim.
func (f *fulfillmentUseCase) claimProduction(ctx context.Context, order *ordersDomain.Order, now time.Time) error {
	claimed, err := f.orderRepo.ClaimNotification(ctx, order.ID, ordersDomain.NotificationProduction, now)
	// Losing the claim is not an error; the winner enqueues the email.
	if err != nil || !claimed {
		return err
	}
	if order.Email == "" {
		f.logger.Warn("production email claimed without recipient", slog.String("order_id", order.OrderID))
		return nil
	}

	event, err := outboxDomain.NewEmailEvent(outboxDomain.EventEmailProduction, outboxDomain.EmailPayload{
		OrderID:      order.OrderID,
		JobID:        order.JobID,
		Email:        order.Email,
		CustomerName: order.CustomerName,
		ChildName:    order.ChildName,
		Locale:       order.Locale,
	}, now)
	if err != nil {
		return err
	}
	return f.outbox.Create(ctx, event)
}
