package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// WebhookEventPurger deletes webhook dedup rows past their retention.
type WebhookEventPurger interface {
	PurgeEvents(ctx context.Context, retention time.Duration, dryRun bool) (int64, error)
}

// OutboxPurger deletes processed outbox events.
type OutboxPurger interface {
	PurgeProcessed(ctx context.Context, olderThan time.Duration) (int64, error)
}

type purgeResult struct {
	Count  int64 `json:"count"`
	Days   int   `json:"days"`
	DryRun bool  `json:"dry_run"`
}

// RunCleanWebhookEvents deletes webhook dedup rows received more than days ago.
// With dryRun it only reports how many rows match.
func RunCleanWebhookEvents(
	ctx context.Context,
	purger WebhookEventPurger,
	logger *slog.Logger,
	w io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days <= 0 {
		return fmt.Errorf("days must be greater than zero, got: %d", days)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	count, err := purger.PurgeEvents(ctx, time.Duration(days)*24*time.Hour, dryRun)
	if err != nil {
		return fmt.Errorf("failed to clean webhook events: %w", err)
	}
	logger.Info("webhook events cleaned",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	result := purgeResult{Count: count, Days: days, DryRun: dryRun}
	return writeResult(w, format, result, func(w io.Writer) {
		if dryRun {
			_, _ = fmt.Fprintf(w, "Dry run: %d webhook event(s) older than %d day(s) would be deleted\n", count, days)
			return
		}
		_, _ = fmt.Fprintf(w, "Deleted %d webhook event(s) older than %d day(s)\n", count, days)
	})
}

// RunCleanOutboxEvents deletes processed outbox events older than days.
func RunCleanOutboxEvents(
	ctx context.Context,
	purger OutboxPurger,
	logger *slog.Logger,
	w io.Writer,
	days int,
	format string,
) error {
	if days <= 0 {
		return fmt.Errorf("days must be greater than zero, got: %d", days)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	count, err := purger.PurgeProcessed(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to clean outbox events: %w", err)
	}
	logger.Info("outbox events cleaned", slog.Int64("count", count), slog.Int("days", days))

	return writeResult(w, format, purgeResult{Count: count, Days: days}, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Deleted %d processed outbox event(s) older than %d day(s)\n", count, days)
	})
}
