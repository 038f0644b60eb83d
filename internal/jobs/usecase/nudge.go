package usecase

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
	jobsDomain "github.com/diffrun/opsdesk/internal/jobs/domain"
	"github.com/diffrun/opsdesk/internal/notification"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	"github.com/diffrun/opsdesk/internal/timeutil"
)

type nudgeOutcome int

const (
	nudgeSkipped nudgeOutcome = iota
	nudgeSent
	nudgeFailed
)

// RunNudges sends the reminder due at now to every unpaid preview job in the
// lookup window. A stage is claimed before the email goes out, so a send that
// crashes midway is never repeated. Candidates are read in keyset pages until
// the due window is exhausted.
func (j *jobsUseCase) RunNudges(ctx context.Context, now time.Time) (*jobsDomain.NudgeResult, error) {
	today := timeutil.StartOfDay(now, j.location)
	query := ordersDomain.NudgeCandidateQuery{
		Since: today.AddDate(0, 0, -jobsDomain.NudgeWindowDays),
		// Only jobs created one or two local days ago can be due.
		DueFrom:        today.AddDate(0, 0, -2),
		DueBefore:      today,
		ExcludedDomain: jobsDomain.NudgeExcludedDomain,
		Limit:          j.config.NudgeBatchSize,
	}

	result := &jobsDomain.NudgeResult{}
	for {
		candidates, err := j.orderRepo.ListNudgeCandidates(ctx, query)
		if err != nil {
			return result, err
		}
		result.Total += len(candidates)

		for _, order := range candidates {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			switch j.nudge(ctx, order, now) {
			case nudgeSent:
				result.Sent++
			case nudgeFailed:
				result.Failed++
			default:
				result.Skipped++
			}
		}

		// A short page means the due window is exhausted.
		if len(candidates) == 0 || len(candidates) < query.Limit {
			break
		}
		last := candidates[len(candidates)-1]
		query.AfterCreatedAt, query.AfterID = last.CreatedAt, last.ID
	}

	j.logger.Info("nudge run finished",
		slog.Int("total", result.Total),
		slog.Int("sent", result.Sent),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

func (j *jobsUseCase) nudge(ctx context.Context, order *ordersDomain.Order, now time.Time) nudgeOutcome {
	logger := j.logger.With(slog.String("job_id", order.JobID), slog.String("email", order.Email))

	attempts, err := j.orderRepo.ListNudgeAttempts(ctx, order.ID)
	if err != nil {
		logger.Error("failed to load nudge history", slog.Any("error", err))
		return nudgeFailed
	}

	plan, reason, ok := jobsDomain.PlanNudge(order, attempts, now, j.location)
	if !ok {
		logger.Debug("nudge skipped", slog.String("reason", string(reason)))
		return nudgeSkipped
	}
	logger = logger.With(slog.Int("stage", plan.Stage), slog.Bool("retry", plan.Retry))

	claimed, err := j.claimNudge(ctx, order, plan)
	if err != nil {
		logger.Error("failed to claim nudge", slog.Any("error", err))
		return nudgeFailed
	}
	// Losing the claim means a concurrent run already advanced this stage.
	if !claimed {
		logger.Warn("nudge claim lost, another run owns this stage")
		return nudgeSkipped
	}

	sendErr := j.sendNudge(ctx, order, plan.Stage)

	status := ordersDomain.NudgeSent
	errText := ""
	if sendErr != nil {
		status = ordersDomain.NudgeFailed
		errText = apperrors.Truncate(sendErr, apperrors.MaxMessageLength)
	}

	// The email may already be out; record the outcome even if the run is cancelled.
	finishCtx := context.WithoutCancel(ctx)
	if err := j.orderRepo.FinishNudgeAttempt(finishCtx, order.ID, plan.Stage, status, errText, j.now()); err != nil {
		logger.Error("failed to record nudge outcome",
			slog.String("status", string(status)),
			slog.Any("error", err),
		)
	}

	if sendErr != nil {
		logger.Warn("nudge send failed", slog.Any("error", sendErr))
		return nudgeFailed
	}
	logger.Info("nudge sent")
	return nudgeSent
}

// claimNudge takes ownership of the stage send. A fresh send advances the
// stage and opens a history row; a retry flips the failed row back to sending.
func (j *jobsUseCase) claimNudge(ctx context.Context, order *ordersDomain.Order, plan jobsDomain.NudgePlan) (bool, error) {
	at := j.now()

	if plan.Retry {
		// Guarded by the attempt count PlanNudge observed.
		return j.orderRepo.ClaimNudgeRetry(ctx, order.ID, plan.Stage, plan.ObservedAttempts, at)
	}

	claimed := false
	err := j.txManager.WithTx(ctx, func(txCtx context.Context) error {
		advanced, err := j.orderRepo.AdvanceNudgeStage(txCtx, order.ID, plan.Stage-1, plan.Stage, at)
		if err != nil {
			return err
		}
		if !advanced {
			// Stale stage: another run moved the order on.
			return nil
		}
		// The history row is opened in the same transaction so a crash never
		// leaves an advanced stage without its attempt.
		if err := j.orderRepo.BeginNudgeAttempt(txCtx, order.ID, plan.Stage, at); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

func (j *jobsUseCase) sendNudge(ctx context.Context, order *ordersDomain.Order, stage int) error {
	name, err := notification.NudgeTemplate(stage)
	if err != nil {
		return err
	}

	msg, err := notification.Compose(name, order.Email, notification.EmailData{
		OrderID:      order.OrderID,
		JobID:        order.JobID,
		CustomerName: order.CustomerName,
		ChildName:    order.ChildName,
		PreviewURL:   notification.PreviewURL(order.JobID, order.ChildName, order.BookID),
	})
	if err != nil {
		return err
	}
	return j.mailer.Send(ctx, msg)
}
