package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	jobsDomain "github.com/diffrun/opsdesk/internal/jobs/domain"
)

// JobRunner runs the scheduled jobs on demand.
type JobRunner interface {
	RunNudges(ctx context.Context, now time.Time) (*jobsDomain.NudgeResult, error)
	RunFeedbackEmails(ctx context.Context, now time.Time, limit int) (*jobsDomain.FeedbackResult, error)
	RunReconcile(ctx context.Context, now time.Time) (*jobsDomain.ReconcileResult, error)
}

// RunNudgesJob sends the abandoned-checkout reminders due now.
func RunNudgesJob(ctx context.Context, runner JobRunner, logger *slog.Logger, w io.Writer, now time.Time, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	result, err := runner.RunNudges(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to run nudges: %w", err)
	}
	logger.Info("nudges run", slog.Int("sent", result.Sent), slog.Int("failed", result.Failed))

	return writeResult(w, format, result, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Nudges: %d candidate(s), %d sent, %d skipped, %d failed\n",
			result.Total, result.Sent, result.Skipped, result.Failed)
	})
}

// RunFeedbackJob enqueues feedback emails for at most limit delivered customers.
func RunFeedbackJob(
	ctx context.Context,
	runner JobRunner,
	logger *slog.Logger,
	w io.Writer,
	now time.Time,
	limit int,
	format string,
) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than zero, got: %d", limit)
	}
	if err := validateFormat(format); err != nil {
		return err
	}
	result, err := runner.RunFeedbackEmails(ctx, now, limit)
	if err != nil {
		return fmt.Errorf("failed to run feedback emails: %w", err)
	}
	logger.Info("feedback emails run", slog.Int("sent", result.Sent), slog.Int("errors", result.Errors))

	return writeResult(w, format, result, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Feedback emails: %d candidate(s), %d sent, %d skipped, %d error(s)\n",
			result.Total, result.Sent, result.Skipped, result.Errors)
	})
}

// RunReconcileJob refreshes stale shipments from the shipping partner.
func RunReconcileJob(ctx context.Context, runner JobRunner, logger *slog.Logger, w io.Writer, now time.Time, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	result, err := runner.RunReconcile(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to run reconcile: %w", err)
	}
	logger.Info("reconcile run", slog.Int("updated", result.Updated), slog.Int("errors", result.Errors))

	return writeResult(w, format, result, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Reconcile: %d shipment(s), %d updated, %d unchanged, %d error(s)\n",
			result.Total, result.Updated, result.Unchanged, result.Errors)
	})
}
