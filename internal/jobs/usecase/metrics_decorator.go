package usecase

import (
	"context"
	"time"

	jobsDomain "github.com/diffrun/opsdesk/internal/jobs/domain"
	"github.com/diffrun/opsdesk/internal/metrics"
)

const metricsDomain = "jobs"

// jobsUseCaseWithMetrics decorates JobsUseCase with metrics instrumentation.
type jobsUseCaseWithMetrics struct {
	next    JobsUseCase
	metrics metrics.BusinessMetrics
}

// NewJobsUseCaseWithMetrics wraps a JobsUseCase with metrics recording.
func NewJobsUseCaseWithMetrics(useCase JobsUseCase, m metrics.BusinessMetrics) JobsUseCase {
	return &jobsUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (j *jobsUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	j.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	j.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// RunNudges records metrics for nudge runs, including per-outcome item counts.
func (j *jobsUseCaseWithMetrics) RunNudges(ctx context.Context, now time.Time) (*jobsDomain.NudgeResult, error) {
	start := time.Now()
	result, err := j.next.RunNudges(ctx, now)
	j.record(ctx, jobsDomain.JobNudges, start, err)

	if result != nil {
		j.metrics.RecordItems(ctx, metricsDomain, jobsDomain.JobNudges, "sent", result.Sent)
		j.metrics.RecordItems(ctx, metricsDomain, jobsDomain.JobNudges, "skipped", result.Skipped)
		j.metrics.RecordItems(ctx, metricsDomain, jobsDomain.JobNudges, "failed", result.Failed)
	}
	return result, err
}

// RunFeedbackEmails records metrics for feedback runs.
func (j *jobsUseCaseWithMetrics) RunFeedbackEmails(
	ctx context.Context,
	now time.Time,
	limit int,
) (*jobsDomain.FeedbackResult, error) {
	start := time.Now()
	result, err := j.next.RunFeedbackEmails(ctx, now, limit)
	j.record(ctx, jobsDomain.JobFeedback, start, err)

	if result != nil {
		j.metrics.RecordItems(ctx, metricsDomain, jobsDomain.JobFeedback, "sent", result.Sent)
		j.metrics.RecordItems(ctx, metricsDomain, jobsDomain.JobFeedback, "skipped", result.Skipped)
		j.metrics.RecordItems(ctx, metricsDomain, jobsDomain.JobFeedback, "error", result.Errors)
	}
	return result, err
}

// SendFeedbackEmail records metrics for manual feedback sends.
func (j *jobsUseCaseWithMetrics) SendFeedbackEmail(ctx context.Context, jobID string) (*jobsDomain.FeedbackSend, error) {
	start := time.Now()
	result, err := j.next.SendFeedbackEmail(ctx, jobID)

	status := metrics.StatusOf(err)
	if err == nil {
		status = string(result.Status)
	}
	j.metrics.RecordOperation(ctx, metricsDomain, "feedback_email_send", status)
	j.metrics.RecordDuration(ctx, metricsDomain, "feedback_email_send", time.Since(start), status)
	return result, err
}

// RunReconcile records metrics for reconcile runs.
func (j *jobsUseCaseWithMetrics) RunReconcile(ctx context.Context, now time.Time) (*jobsDomain.ReconcileResult, error) {
	start := time.Now()
	result, err := j.next.RunReconcile(ctx, now)
	j.record(ctx, jobsDomain.JobReconcile, start, err)

	if result != nil {
		j.metrics.RecordItems(ctx, metricsDomain, jobsDomain.JobReconcile, "updated", result.Updated)
		j.metrics.RecordItems(ctx, metricsDomain, jobsDomain.JobReconcile, "unchanged", result.Unchanged)
		j.metrics.RecordItems(ctx, metricsDomain, jobsDomain.JobReconcile, "error", result.Errors)
	}
	return result, err
}
