// Package usecase delivers outbox events: a polling worker claims pending
// events and hands each to an EventProcessor, retrying failures up to a cap.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/diffrun/opsdesk/internal/database"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/metrics"
	"github.com/diffrun/opsdesk/internal/outbox/domain"
)

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

// EventProcessor delivers a single event.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
	// PurgeProcessed deletes processed events older than olderThan.
	PurgeProcessed(ctx context.Context, olderThan time.Duration) (int64, error)
}

// OutboxUseCase implements business logic for processing outbox events
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	metrics        metrics.BusinessMetrics
	logger         *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		metrics:        businessMetrics,
		logger:         logger,
	}
}

// Start polls for pending events every Interval until ctx is done.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox event processor",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox event processor")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("failed to process events", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents claims a batch of pending events in one transaction and
// delivers them. A failed delivery increments Retries and records the
// truncated error; at MaxRetries the event is marked failed.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		uc.logger.Debug("processing events", slog.Int("count", len(events)))

		var delivered, failed int
		for _, event := range events {
			now := time.Now().UTC()
			event.UpdatedAt = now

			if err := uc.eventProcessor.Process(ctx, event); err != nil {
				uc.logger.Error("failed to process event",
					slog.String("event_id", event.ID.String()),
					slog.String("event_type", event.EventType),
					slog.String("aggregate_id", event.AggregateID),
					slog.Any("error", err),
				)

				event.Retries++
				msg := apperrors.Truncate(err, apperrors.MaxMessageLength)
				event.LastError = &msg
				// Below the cap the event stays pending for the next poll.
				if event.Retries >= uc.config.MaxRetries {
					event.Status = domain.OutboxEventStatusFailed
				}
				failed++
			} else {
				event.Status = domain.OutboxEventStatusProcessed
				event.ProcessedAt = &now
				delivered++
			}

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		uc.metrics.RecordItems(ctx, "outbox", "deliver", "processed", delivered)
		uc.metrics.RecordItems(ctx, "outbox", "deliver", "failed", failed)
		return nil
	})
}

// PurgeProcessed deletes processed events older than olderThan. Pending and
// failed events are kept for inspection.
func (uc *OutboxUseCase) PurgeProcessed(ctx context.Context, olderThan time.Duration) (int64, error) {
	deleted, err := uc.outboxRepo.DeleteProcessedBefore(ctx, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	uc.logger.Info("purged processed outbox events", slog.Int64("deleted", deleted))
	return deleted, nil
}
