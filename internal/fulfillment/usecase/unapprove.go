package usecase

import (
	"context"
	"fmt"
	"log/slog"

	fulfillmentDomain "github.com/diffrun/opsdesk/internal/fulfillment/domain"
)

// Unapprove clears the approval of each job and moves its approved files under
// previous/ so the job can be regenerated. Locked orders are skipped.
func (f *fulfillmentUseCase) Unapprove(ctx context.Context, jobIDs []string) (*fulfillmentDomain.BulkResult, error) {
	result := &fulfillmentDomain.BulkResult{Results: []fulfillmentDomain.ItemResult{}}

	for _, jobID := range fulfillmentDomain.UniqueIDs(jobIDs) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Add(f.unapproveOne(ctx, jobID))
	}

	f.logSummary("unapprove", result)
	return result, nil
}

func (f *fulfillmentUseCase) unapproveOne(ctx context.Context, jobID string) fulfillmentDomain.ItemResult {
	order, err := f.orderRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return lookupFailure(jobID, err)
	}
	if order.Lock.Locked {
		return itemSkipped(jobID, fulfillmentDomain.StepLocked, "order is locked by "+order.Lock.LockedBy)
	}

	// Files move before the flag clears; retrying after a failed update moves nothing.
	moved, err := f.artifacts.MoveToPrevious(ctx, jobID)
	if err != nil {
		f.logger.Error("failed to move artifacts", slog.String("job_id", jobID), slog.Any("error", err))
		return itemError(jobID, fulfillmentDomain.StepMoveArtifacts, err)
	}

	if err := f.orderRepo.SetApproved(ctx, order.ID, false, f.now()); err != nil {
		return itemError(jobID, fulfillmentDomain.StepProcessing, err)
	}

	return fulfillmentDomain.ItemResult{
		ID:      jobID,
		Status:  fulfillmentDomain.ItemSuccess,
		Step:    fulfillmentDomain.StepCompleted,
		Message: fmt.Sprintf("moved %d files", moved),
	}
}
