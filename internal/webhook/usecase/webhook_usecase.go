package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/diffrun/opsdesk/internal/database"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	outboxDomain "github.com/diffrun/opsdesk/internal/outbox/domain"
	"github.com/diffrun/opsdesk/internal/webhook/domain"
)

// webhookUseCase implements WebhookUseCase.
type webhookUseCase struct {
	txManager database.TxManager
	eventRepo EventRepository
	orderRepo OrderRepository
	outbox    OutboxWriter
	location  *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewWebhookUseCase creates a new WebhookUseCase. Partner wall-clock timestamps
// are interpreted in location.
func NewWebhookUseCase(
	txManager database.TxManager,
	eventRepo EventRepository,
	orderRepo OrderRepository,
	outbox OutboxWriter,
	location *time.Location,
	logger *slog.Logger,
) WebhookUseCase {
	return &webhookUseCase{
		txManager: txManager,
		eventRepo: eventRepo,
		orderRepo: orderRepo,
		outbox:    outbox,
		location:  location,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleShiprocket applies a shipment status event. After the update the order
// is re-read; when its latest scan shows courier pickup the pickup email is
// claimed and, for the winner only, shipped_at is set and the email enqueued.
func (w *webhookUseCase) HandleShiprocket(
	ctx context.Context,
	payload domain.ShiprocketPayload,
	raw []byte,
) (*domain.Result, error) {
	now := w.now()
	result := &domain.Result{Provider: domain.ProviderShiprocket, DedupKey: payload.DedupKey()}

	err := w.txManager.WithTx(ctx, func(ctx context.Context) error {
		fresh, err := w.eventRepo.Insert(ctx, &domain.Event{
			DedupKey:   result.DedupKey,
			Provider:   domain.ProviderShiprocket,
			OrderRef:   payload.OrderRef(),
			ReceivedAt: now,
		})
		if err != nil {
			return err
		}
		// A replayed delivery already applied its update; only acknowledge it.
		if !fresh {
			result.Outcome = domain.OutcomeDuplicate
			return nil
		}

		order, err := w.orderRepo.FindForShipment(ctx, payload.OrderID.String(), payload.AWB.String())
		// Unknown orders keep their dedup row so retries are not re-processed.
		if errors.Is(err, ordersDomain.ErrOrderNotFound) {
			result.Outcome = domain.OutcomeUnmatched
			return nil
		}
		if err != nil {
			return err
		}
		result.OrderID = order.OrderID

		applied, err := w.orderRepo.ApplyShipment(ctx, order.ID, payload.ShipmentUpdate(raw, w.location, now))
		if err != nil {
			return err
		}
		// Zero rows means a newer status timestamp is already stored.
		if !applied {
			result.Outcome = domain.OutcomeStale
			return nil
		}
		result.Outcome = domain.OutcomeApplied

		// Pickup is judged on the merged scan history, not on this payload alone.
		order, err = w.orderRepo.GetByID(ctx, order.ID)
		if err != nil {
			return err
		}
		if !pickupDetected(order, w.location) {
			return nil
		}

		claimed, err := w.claimPickup(ctx, order, now)
		if err != nil {
			return err
		}
		// shipped_at follows the claim so only the winning delivery stamps it.
		if claimed {
			if err := w.orderRepo.MarkShipped(ctx, order.ID, now); err != nil {
				return err
			}
		}
		result.PickupClaimed = claimed
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.logResult(result, payload.OrderRef())
	return result, nil
}

// HandleCloudprinter applies a print status event. A shipped event also sets
// shipped_at and claims the pickup email.
func (w *webhookUseCase) HandleCloudprinter(
	ctx context.Context,
	payload domain.CloudprinterPayload,
) (*domain.Result, error) {
	now := w.now()
	result := &domain.Result{Provider: domain.ProviderCloudprinter, DedupKey: payload.DedupKey()}
	orderRef := payload.OrderReference.String()

	if _, ok := payload.PrintStatus(); !ok || orderRef == "" {
		result.Outcome = domain.OutcomeIgnored
		w.logResult(result, orderRef)
		return result, nil
	}

	err := w.txManager.WithTx(ctx, func(ctx context.Context) error {
		fresh, err := w.eventRepo.Insert(ctx, &domain.Event{
			DedupKey:   result.DedupKey,
			Provider:   domain.ProviderCloudprinter,
			OrderRef:   orderRef,
			ReceivedAt: now,
		})
		if err != nil {
			return err
		}
		if !fresh {
			result.Outcome = domain.OutcomeDuplicate
			return nil
		}

		order, err := w.orderRepo.GetByOrderID(ctx, orderRef)
		if errors.Is(err, ordersDomain.ErrOrderNotFound) {
			result.Outcome = domain.OutcomeUnmatched
			return nil
		}
		if err != nil {
			return err
		}
		result.OrderID = order.OrderID

		if err := w.orderRepo.ApplyPrintStatus(ctx, order.ID, payload.PrintUpdate(now)); err != nil {
			return err
		}
		result.Outcome = domain.OutcomeApplied

		// Only the shipped event carries pickup semantics.
		if !payload.IsShipped() {
			return nil
		}
		if err := w.orderRepo.MarkShipped(ctx, order.ID, now); err != nil {
			return err
		}

		order, err = w.orderRepo.GetByID(ctx, order.ID)
		if err != nil {
			return err
		}
		result.PickupClaimed, err = w.claimPickup(ctx, order, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	w.logResult(result, orderRef)
	return result, nil
}

// PurgeEvents removes dedup rows older than retention.
func (w *webhookUseCase) PurgeEvents(ctx context.Context, retention time.Duration, dryRun bool) (int64, error) {
	before := w.now().Add(-retention)
	if dryRun {
		return w.eventRepo.CountReceivedBefore(ctx, before)
	}
	return w.eventRepo.DeleteReceivedBefore(ctx, before)
}

// claimPickup flips the pickup flag and, when this caller won, enqueues the
// shipped email in the same transaction.
func (w *webhookUseCase) claimPickup(ctx context.Context, order *ordersDomain.Order, now time.Time) (bool, error) {
	// Read inside the transaction; the conditional update still settles races.
	if order.IsSent(ordersDomain.NotificationPickupShipped) {
		return false, nil
	}
	claimed, err := w.orderRepo.ClaimNotification(ctx, order.ID, ordersDomain.NotificationPickupShipped, now)
	if err != nil {
		return false, err
	}
	if !claimed {
		w.logger.Debug("pickup email already claimed", slog.String("order_id", order.OrderID))
		return false, nil
	}
	if order.Email == "" {
		w.logger.Warn("pickup email claimed without recipient", slog.String("order_id", order.OrderID))
		return true, nil
	}

	event, err := outboxDomain.NewEmailEvent(outboxDomain.EventEmailPickupShipped, outboxDomain.EmailPayload{
		OrderID:        order.OrderID,
		JobID:          order.JobID,
		Email:          order.Email,
		CustomerName:   order.CustomerName,
		ChildName:      order.ChildName,
		Locale:         order.Locale,
		TrackingNumber: order.TrackingNumber,
		TrackingURL:    ordersDomain.TrackingURL(order.TrackingNumber),
		CourierPartner: order.CourierPartner,
	}, now)
	if err != nil {
		return false, err
	}
	if err := w.outbox.Create(ctx, event); err != nil {
		return false, err
	}
	return true, nil
}

// pickupDetected reports whether the order's latest scan is a courier pickup
// and a tracking number is known.
func pickupDetected(order *ordersDomain.Order, loc *time.Location) bool {
	if order.TrackingNumber == "" || order.ShipmentData == nil {
		return false
	}
	latest := ordersDomain.LatestScan(order.ShipmentData.Scans, loc)
	return latest != nil && ordersDomain.IsPickupActivity(latest.Activity)
}

func (w *webhookUseCase) logResult(result *domain.Result, orderRef string) {
	attrs := []any{
		slog.String("provider", result.Provider),
		slog.String("outcome", string(result.Outcome)),
		slog.String("order_ref", orderRef),
		slog.Bool("pickup_claimed", result.PickupClaimed),
	}
	switch result.Outcome {
	case domain.OutcomeUnmatched, domain.OutcomeIgnored:
		w.logger.Warn("webhook not applied", attrs...)
	default:
		w.logger.Info("webhook handled", attrs...)
	}
}
