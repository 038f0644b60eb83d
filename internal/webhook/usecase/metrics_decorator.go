package usecase

import (
	"context"
	"time"

	"github.com/diffrun/opsdesk/internal/metrics"
	"github.com/diffrun/opsdesk/internal/webhook/domain"
)

// webhookUseCaseWithMetrics decorates WebhookUseCase with metrics instrumentation.
type webhookUseCaseWithMetrics struct {
	next    WebhookUseCase
	metrics metrics.BusinessMetrics
}

// NewWebhookUseCaseWithMetrics wraps a WebhookUseCase with metrics recording.
// Successful deliveries are labelled with their outcome.
func NewWebhookUseCaseWithMetrics(useCase WebhookUseCase, m metrics.BusinessMetrics) WebhookUseCase {
	return &webhookUseCaseWithMetrics{next: useCase, metrics: m}
}

func (w *webhookUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	result *domain.Result,
	err error,
) {
	status := metrics.StatusOf(err)
	if err == nil && result != nil {
		status = string(result.Outcome)
	}
	w.metrics.RecordOperation(ctx, "webhook", operation, status)
	w.metrics.RecordDuration(ctx, "webhook", operation, time.Since(start), status)
}

// HandleShiprocket records metrics for Shiprocket deliveries.
func (w *webhookUseCaseWithMetrics) HandleShiprocket(
	ctx context.Context,
	payload domain.ShiprocketPayload,
	raw []byte,
) (*domain.Result, error) {
	start := time.Now()
	result, err := w.next.HandleShiprocket(ctx, payload, raw)
	w.record(ctx, "shiprocket", start, result, err)
	return result, err
}

// HandleCloudprinter records metrics for Cloudprinter deliveries.
func (w *webhookUseCaseWithMetrics) HandleCloudprinter(
	ctx context.Context,
	payload domain.CloudprinterPayload,
) (*domain.Result, error) {
	start := time.Now()
	result, err := w.next.HandleCloudprinter(ctx, payload)
	w.record(ctx, "cloudprinter", start, result, err)
	return result, err
}

// PurgeEvents records metrics for dedup purges.
func (w *webhookUseCaseWithMetrics) PurgeEvents(ctx context.Context, retention time.Duration, dryRun bool) (int64, error) {
	start := time.Now()
	n, err := w.next.PurgeEvents(ctx, retention, dryRun)
	w.record(ctx, "purge", start, nil, err)
	if err == nil && !dryRun {
		w.metrics.RecordItems(ctx, "webhook", "purge", "deleted", int(n))
	}
	return n, err
}
