// Package usecase implements the scheduled customer follow-up and shipment
// reconciliation jobs. Every run is safe to repeat: side effects are claimed
// through conditional updates before they happen.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	jobsDomain "github.com/diffrun/opsdesk/internal/jobs/domain"
	"github.com/diffrun/opsdesk/internal/notification"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	outboxDomain "github.com/diffrun/opsdesk/internal/outbox/domain"
	"github.com/diffrun/opsdesk/internal/partner"
	webhookDomain "github.com/diffrun/opsdesk/internal/webhook/domain"
)

// OrderRepository defines the order persistence operations the jobs need.
type OrderRepository interface {
	GetByJobID(ctx context.Context, jobID string) (*ordersDomain.Order, error)
	List(ctx context.Context, filter ordersDomain.ListFilter, offset, limit int) ([]*ordersDomain.Order, error)
	ClaimNotification(ctx context.Context, id uuid.UUID, kind ordersDomain.NotificationKind, at time.Time) (bool, error)

	ListNudgeCandidates(ctx context.Context, q ordersDomain.NudgeCandidateQuery) ([]*ordersDomain.Order, error)
	ListNudgeAttempts(ctx context.Context, id uuid.UUID) ([]ordersDomain.NudgeAttempt, error)
	AdvanceNudgeStage(ctx context.Context, id uuid.UUID, from, to int, at time.Time) (bool, error)
	BeginNudgeAttempt(ctx context.Context, id uuid.UUID, stage int, at time.Time) error
	ClaimNudgeRetry(ctx context.Context, id uuid.UUID, stage, observedAttempts int, at time.Time) (bool, error)
	FinishNudgeAttempt(
		ctx context.Context,
		id uuid.UUID,
		stage int,
		status ordersDomain.NudgeAttemptStatus,
		errText string,
		at time.Time,
	) error

	ListFeedbackCandidates(ctx context.Context, q ordersDomain.FeedbackCandidateQuery) ([]*ordersDomain.Order, error)
	MarkFeedbackSentForEmail(ctx context.Context, email string, at time.Time) (int64, error)

	ListReconcileCandidates(ctx context.Context, staleBefore time.Time, limit int) ([]*ordersDomain.Order, error)
	MarkReconciled(ctx context.Context, id uuid.UUID, at time.Time) error
}

// OutboxWriter enqueues deferred side effects in the caller's transaction.
type OutboxWriter interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// Tracker looks up the live status of a shipment.
type Tracker interface {
	Track(ctx context.Context, awb string) (*partner.Tracking, error)
}

// ShipmentApplier applies a shipping status event through the webhook path, so
// dedup and notification claims behave exactly as for a partner delivery.
type ShipmentApplier interface {
	HandleShiprocket(ctx context.Context, payload webhookDomain.ShiprocketPayload, raw []byte) (*webhookDomain.Result, error)
}

// Mailer sends a composed email.
type Mailer interface {
	Send(ctx context.Context, msg notification.Message) error
}

// JobsUseCase defines the scheduled jobs and their manual triggers.
type JobsUseCase interface {
	// RunNudges sends the abandoned-checkout reminder due at now to each candidate.
	RunNudges(ctx context.Context, now time.Time) (*jobsDomain.NudgeResult, error)
	// RunFeedbackEmails enqueues the feedback email for up to limit delivered customers.
	RunFeedbackEmails(ctx context.Context, now time.Time, limit int) (*jobsDomain.FeedbackResult, error)
	// SendFeedbackEmail enqueues the feedback email for one preview job.
	SendFeedbackEmail(ctx context.Context, jobID string) (*jobsDomain.FeedbackSend, error)
	// RunReconcile refreshes stale shipments from the shipping partner.
	RunReconcile(ctx context.Context, now time.Time) (*jobsDomain.ReconcileResult, error)
}
