package usecase

import (
	"context"
	"log/slog"
	"time"

	jobsDomain "github.com/diffrun/opsdesk/internal/jobs/domain"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	outboxDomain "github.com/diffrun/opsdesk/internal/outbox/domain"
)

// customerOrdersLimit caps how many orders of one customer are checked for an
// earlier feedback email.
const customerOrdersLimit = 500

// RunFeedbackEmails enqueues the feedback email for customers whose latest
// processed order was delivered within the feedback window.
func (j *jobsUseCase) RunFeedbackEmails(
	ctx context.Context,
	now time.Time,
	limit int,
) (*jobsDomain.FeedbackResult, error) {
	if limit <= 0 {
		limit = j.config.FeedbackBatchSize
	}

	_, offset := now.In(j.location).Zone()
	candidates, err := j.orderRepo.ListFeedbackCandidates(ctx, ordersDomain.FeedbackCandidateQuery{
		ProcessedSince:  now.Add(-j.config.FeedbackLookback),
		UTCOffset:       time.Duration(offset) * time.Second,
		MaxDeliveryDays: jobsDomain.FeedbackMaxDeliveryDays,
		Limit:           limit,
	})
	if err != nil {
		return nil, err
	}

	result := &jobsDomain.FeedbackResult{}
	for _, order := range candidates {
		result.Total++
		// The query applies the window; a row outside it is counted, not mailed.
		if !jobsDomain.FeedbackEligible(order, j.location) {
			result.Skipped++
			continue
		}

		if err := ctx.Err(); err != nil {
			return result, err
		}

		status, err := j.sendFeedback(ctx, order, now)
		switch {
		case err != nil:
			result.Errors++
			j.logger.Error("failed to send feedback email",
				slog.String("job_id", order.JobID),
				slog.String("order_id", order.OrderID),
				slog.Any("error", err),
			)
		case status == jobsDomain.FeedbackSent:
			result.Sent++
		default:
			result.Skipped++
		}
	}

	j.logger.Info("feedback run finished",
		slog.Int("total", result.Total),
		slog.Int("sent", result.Sent),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", result.Errors),
	)
	return result, nil
}

// SendFeedbackEmail enqueues the feedback email for the order of jobID unless
// the customer already received one.
func (j *jobsUseCase) SendFeedbackEmail(ctx context.Context, jobID string) (*jobsDomain.FeedbackSend, error) {
	order, err := j.orderRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if order.Email == "" {
		return nil, ordersDomain.ErrMissingEmail
	}

	status, err := j.sendFeedback(ctx, order, j.now())
	if err != nil {
		return nil, err
	}
	return &jobsDomain.FeedbackSend{Status: status, Email: order.Email, JobID: jobID}, nil
}

// sendFeedback claims the feedback flag on the order, enqueues the email and
// flags every other order of the same customer in one transaction.
func (j *jobsUseCase) sendFeedback(
	ctx context.Context,
	order *ordersDomain.Order,
	now time.Time,
) (jobsDomain.FeedbackStatus, error) {
	status := jobsDomain.FeedbackAlreadySent

	err := j.txManager.WithTx(ctx, func(txCtx context.Context) error {
		siblings, err := j.orderRepo.List(txCtx, ordersDomain.ListFilter{Email: order.Email}, 0, customerOrdersLimit)
		if err != nil {
			return err
		}
		// One feedback email per customer, whichever order carried it.
		for _, s := range siblings {
			if s.IsSent(ordersDomain.NotificationFeedback) {
				return nil
			}
		}

		claimed, err := j.orderRepo.ClaimNotification(txCtx, order.ID, ordersDomain.NotificationFeedback, now)
		if err != nil {
			return err
		}
		if !claimed {
			// A concurrent run won the flag and owns the email.
			return nil
		}

		// The claim precedes the enqueue; a rollback releases both.
		event, err := outboxDomain.NewEmailEvent(outboxDomain.EventEmailFeedback, outboxDomain.EmailPayload{
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
		if err := j.outbox.Create(txCtx, event); err != nil {
			return err
		}

		if _, err := j.orderRepo.MarkFeedbackSentForEmail(txCtx, order.Email, now); err != nil {
			return err
		}
		status = jobsDomain.FeedbackSent
		return nil
	})
	if err != nil {
		return "", err
	}

	if status == jobsDomain.FeedbackAlreadySent {
		j.logger.Info("feedback email already sent for customer", slog.String("email", order.Email))
	}
	return status, nil
}
