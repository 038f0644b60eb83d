package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
	jobsDomain "github.com/diffrun/opsdesk/internal/jobs/domain"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	"github.com/diffrun/opsdesk/internal/partner"
	webhookDomain "github.com/diffrun/opsdesk/internal/webhook/domain"
)

// RunReconcile polls the shipping partner for orders that have not changed
// recently and feeds the current status through the webhook apply path.
func (j *jobsUseCase) RunReconcile(ctx context.Context, now time.Time) (*jobsDomain.ReconcileResult, error) {
	candidates, err := j.orderRepo.ListReconcileCandidates(
		ctx, now.Add(-j.config.ReconcileStaleAfter), j.config.ReconcileBatchSize)
	if err != nil {
		return nil, err
	}

	result := &jobsDomain.ReconcileResult{Total: len(candidates)}
	for _, order := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		updated, err := j.reconcile(ctx, order)
		// Stamp every poll, failed ones included, so the next run moves on.
		if markErr := j.orderRepo.MarkReconciled(ctx, order.ID, j.now()); markErr != nil {
			j.logger.Warn("failed to stamp reconcile poll",
				slog.String("order_id", order.OrderID),
				slog.Any("error", markErr),
			)
		}
		switch {
		case err != nil:
			result.Errors++
			j.logger.Warn("failed to reconcile shipment",
				slog.String("order_id", order.OrderID),
				slog.String("awb", order.TrackingNumber),
				slog.Any("error", err),
			)
		case updated:
			result.Updated++
		default:
			result.Unchanged++
		}
	}

	j.logger.Info("reconcile run finished",
		slog.Int("total", result.Total),
		slog.Int("updated", result.Updated),
		slog.Int("unchanged", result.Unchanged),
		slog.Int("errors", result.Errors),
	)
	return result, nil
}

func (j *jobsUseCase) reconcile(ctx context.Context, order *ordersDomain.Order) (bool, error) {
	tracking, err := j.tracker.Track(ctx, order.TrackingNumber)
	if err != nil {
		return false, err
	}

	payload, ok := trackingPayload(order, tracking, j.location)
	// Nothing scanned yet; leave the stored status alone.
	if !ok {
		return false, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to encode tracking payload")
	}

	res, err := j.shipments.HandleShiprocket(ctx, payload, raw)
	if err != nil {
		return false, err
	}
	return res.Outcome == webhookDomain.OutcomeApplied, nil
}

// trackingPayload shapes a tracking lookup as a status webhook. The latest scan
// supplies the status id and timestamp, so polling an unchanged shipment yields
// the same dedup key every time.
func trackingPayload(
	order *ordersDomain.Order,
	tracking *partner.Tracking,
	loc *time.Location,
) (webhookDomain.ShiprocketPayload, bool) {
	scans := make([]ordersDomain.Scan, 0, len(tracking.Activities))
	for _, a := range tracking.Activities {
		scans = append(scans, ordersDomain.Scan{
			Date:          a.Date,
			Status:        a.Status,
			Activity:      a.Activity,
			Location:      a.Location,
			SRStatus:      a.SRStatus.String(),
			SRStatusLabel: a.SRStatusLabel,
		})
	}

	payload := webhookDomain.ShiprocketPayload{
		AWB:              webhookDomain.FlexString(order.TrackingNumber),
		CourierName:      tracking.CourierName,
		CurrentStatus:    strings.ToUpper(strings.TrimSpace(tracking.CurrentStatus)),
		ShipmentStatusID: webhookDomain.FlexString(tracking.ShipmentStatus.String()),
		OrderID:          webhookDomain.FlexString(order.OrderID),
		ETD:              tracking.ETD,
		Scans:            scans,
	}
	// Some lookups omit the courier; fall back to the one booked.
	if payload.CourierName == "" {
		payload.CourierName = order.CourierPartner
	}

	if latest := ordersDomain.LatestScan(scans, loc); latest != nil {
		payload.CurrentStatusID = webhookDomain.FlexString(latest.SRStatus)
		payload.CurrentTimestamp = latest.Date
		if payload.CurrentStatus == "" {
			payload.CurrentStatus = strings.ToUpper(latest.SRStatusLabel)
		}
	}

	return payload, payload.CurrentStatus != ""
}
