package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	databaseMocks "github.com/diffrun/opsdesk/internal/database/mocks"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/orders/domain"
	"github.com/diffrun/opsdesk/internal/orders/usecase/mocks"
)

func newTestUseCase(t *testing.T) (OrderUseCase, *mocks.MockOrderRepository, *databaseMocks.TxManager) {
	repo := mocks.NewMockOrderRepository(t)
	tx := &databaseMocks.TxManager{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOrderUseCase(tx, repo, logger), repo, tx
}

func strPtr(s string) *string { return &s }

func TestOrderUseCase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("Create", ctx, mock.MatchedBy(func(o *domain.Order) bool {
			return o.JobID == "job-1" && o.Status == domain.StatusActive && o.Email == "a@example.com"
		})).Return(nil).Once()

		order, err := uc.Register(ctx, domain.RegisterInput{JobID: "job-1", Email: " a@example.com "})
		require.NoError(t, err)
		assert.NotEmpty(t, order.ID)
		assert.NotNil(t, order.ReprintMeta)
	})

	t.Run("Error_NoIdentifier", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)
		_, err := uc.Register(ctx, domain.RegisterInput{Email: "a@example.com"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestOrderUseCase_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ByOrderID", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("GetByOrderID", ctx, "1001").Return(&domain.Order{OrderID: "1001"}, nil).Once()

		order, err := uc.Get(ctx, "1001")
		require.NoError(t, err)
		assert.Equal(t, "1001", order.OrderID)
	})

	t.Run("Success_ByReprintID", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("GetByOrderID", ctx, "1001").Return(&domain.Order{
			OrderID:     "1001",
			ReprintMeta: map[string]domain.ReprintMeta{"RP2": {ReprintOrderID: "1001_RP2"}},
		}, nil).Once()

		order, err := uc.Get(ctx, "1001_RP2")
		require.NoError(t, err)
		assert.Equal(t, "1001", order.OrderID)
	})

	t.Run("Error_UnknownReprint", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("GetByOrderID", ctx, "1001").Return(&domain.Order{
			OrderID:     "1001",
			ReprintMeta: map[string]domain.ReprintMeta{},
		}, nil).Once()

		_, err := uc.Get(ctx, "1001_RP3")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("GetByOrderID", ctx, "404").Return(nil, domain.ErrOrderNotFound).Once()

		_, err := uc.Get(ctx, "404")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestOrderUseCase_Patch(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		uc, repo, tx := newTestUseCase(t)
		repo.On("GetByOrderIDForUpdate", ctx, "1001").
			Return(&domain.Order{OrderID: "1001", CustomerName: "Old"}, nil).Once()
		repo.On("Update", ctx, mock.MatchedBy(func(o *domain.Order) bool {
			return o.CustomerName == "New" && o.ChildName == ""
		})).Return(nil).Once()

		order, err := uc.Patch(ctx, "1001", domain.Patch{CustomerName: strPtr(" New ")}, "ops@diffrun.com")
		require.NoError(t, err)
		assert.Equal(t, "New", order.CustomerName)
		assert.Equal(t, 1, tx.Calls())
	})

	t.Run("Error_LockedByOther", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("GetByOrderIDForUpdate", ctx, "1001").Return(&domain.Order{
			OrderID: "1001",
			Lock:    domain.Lock{Locked: true, LockedBy: "someone@diffrun.com"},
		}, nil).Once()

		_, err := uc.Patch(ctx, "1001", domain.Patch{Locale: strPtr("US")}, "ops@diffrun.com")
		assert.ErrorIs(t, err, apperrors.ErrLocked)
	})

	t.Run("Success_LockedBySelf", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("GetByOrderIDForUpdate", ctx, "1001").Return(&domain.Order{
			OrderID: "1001",
			Lock:    domain.Lock{Locked: true, LockedBy: "OPS@diffrun.com"},
		}, nil).Once()
		repo.On("Update", ctx, mock.Anything).Return(nil).Once()

		_, err := uc.Patch(ctx, "1001", domain.Patch{Locale: strPtr("US")}, "ops@diffrun.com")
		assert.NoError(t, err)
	})

	t.Run("Error_EmptyPatch", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)
		_, err := uc.Patch(ctx, "1001", domain.Patch{}, "ops@diffrun.com")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestOrderUseCase_TransitionStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Cancelled", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("GetByOrderIDForUpdate", ctx, "1001").Return(&domain.Order{OrderID: "1001"}, nil).Once()
		repo.On("Update", ctx, mock.Anything).Return(nil).Once()

		order, err := uc.TransitionStatus(ctx, "1001", domain.StatusCancelled, "customer asked", "ops@diffrun.com")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, order.Status)
		assert.Equal(t, "customer asked", order.StatusRemarks)
		assert.NotNil(t, order.StatusUpdatedAt)
		assert.Empty(t, order.ReprintOrderID)
	})

	t.Run("Success_ReprintAllocatesNextSuffix", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("GetByOrderIDForUpdate", ctx, "1001").Return(&domain.Order{
			OrderID:        "1001",
			ReprintOrderID: "1001_RP1",
			ReprintMeta:    map[string]domain.ReprintMeta{"RP1": {ReprintOrderID: "1001_RP1"}},
		}, nil).Once()
		repo.On("Update", ctx, mock.Anything).Return(nil).Once()

		order, err := uc.TransitionStatus(ctx, "1001", domain.StatusReprint, "misprint", "ops@diffrun.com")
		require.NoError(t, err)
		assert.Equal(t, "1001_RP2", order.ReprintOrderID)
		require.Contains(t, order.ReprintMeta, "RP2")
		assert.Equal(t, "misprint", order.ReprintMeta["RP2"].Remarks)
		assert.Equal(t, "ops@diffrun.com", order.ReprintMeta["RP2"].RequestedBy)
		assert.Contains(t, order.ReprintMeta, "RP1")
	})

	t.Run("Success_ReprintFromReprintID", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("GetByOrderIDForUpdate", ctx, "1001").Return(&domain.Order{OrderID: "1001"}, nil).Once()
		repo.On("Update", ctx, mock.Anything).Return(nil).Once()

		order, err := uc.TransitionStatus(ctx, "1001_RP1", domain.StatusReprint, "again", "ops@diffrun.com")
		require.NoError(t, err)
		assert.Equal(t, "1001_RP1", order.ReprintOrderID)
	})

	t.Run("Error_InvalidStatus", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)
		_, err := uc.TransitionStatus(ctx, "1001", domain.StatusActive, "x", "ops@diffrun.com")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("Error_MissingRemarks", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)
		_, err := uc.TransitionStatus(ctx, "1001", domain.StatusRefunded, "  ", "ops@diffrun.com")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_UpdateFails", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("GetByOrderIDForUpdate", ctx, "1001").Return(&domain.Order{OrderID: "1001"}, nil).Once()
		repo.On("Update", ctx, mock.Anything).Return(errors.New("db down")).Once()

		_, err := uc.TransitionStatus(ctx, "1001", domain.StatusRejected, "bad photo", "ops@diffrun.com")
		assert.EqualError(t, err, "db down")
	})
}

func TestOrderUseCase_SetIssueOrigin(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("GetByOrderIDForUpdate", ctx, "1001").Return(&domain.Order{OrderID: "1001"}, nil).Once()
		repo.On("Update", ctx, mock.Anything).Return(nil).Once()

		order, err := uc.SetIssueOrigin(ctx, "1001", "Genesis", "ops@diffrun.com")
		require.NoError(t, err)
		assert.Equal(t, "genesis", order.IssueOrigin)
	})

	t.Run("Error_Invalid", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)
		_, err := uc.SetIssueOrigin(ctx, "1001", "courier", "ops@diffrun.com")
		assert.ErrorIs(t, err, domain.ErrInvalidIssueOrigin)
	})
}

func TestOrderUseCase_Lock(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Acquired", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("AcquireLock", ctx, "1001", "ops@diffrun.com", mock.Anything).Return(true, nil).Once()

		result, err := uc.Lock(ctx, "1001", "ops@diffrun.com")
		require.NoError(t, err)
		assert.True(t, result.Acquired)
		assert.Empty(t, result.HeldBy)
	})

	t.Run("Success_HeldByOther", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("AcquireLock", ctx, "1001", "ops@diffrun.com", mock.Anything).Return(false, nil).Once()
		repo.On("GetByOrderID", ctx, "1001").Return(&domain.Order{
			OrderID: "1001",
			Lock:    domain.Lock{Locked: true, LockedBy: "other@diffrun.com"},
		}, nil).Once()

		result, err := uc.Lock(ctx, "1001", "ops@diffrun.com")
		require.NoError(t, err)
		assert.False(t, result.Acquired)
		assert.Equal(t, "other@diffrun.com", result.HeldBy)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("AcquireLock", ctx, "404", "ops@diffrun.com", mock.Anything).Return(false, nil).Once()
		repo.On("GetByOrderID", ctx, "404").Return(nil, domain.ErrOrderNotFound).Once()

		_, err := uc.Lock(ctx, "404", "ops@diffrun.com")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestOrderUseCase_Unlock(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("ReleaseLock", ctx, "1001", "ops@diffrun.com", mock.Anything).Return(true, nil).Once()

		assert.NoError(t, uc.Unlock(ctx, "1001", "ops@diffrun.com"))
	})

	t.Run("Error_NotLocked", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("ReleaseLock", ctx, "1001", "ops@diffrun.com", mock.Anything).Return(false, nil).Once()
		repo.On("GetByOrderID", ctx, "1001").Return(&domain.Order{OrderID: "1001"}, nil).Once()

		err := uc.Unlock(ctx, "1001", "ops@diffrun.com")
		assert.ErrorIs(t, err, apperrors.ErrPreconditionFailed)
	})
}

func TestOrderUseCase_ListJobs(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUseCase(t)
	filter := domain.JobFilter{Search: "maya"}
	repo.On("ListJobs", ctx, filter, 50, 50).Return([]*domain.Order{{JobID: "job-1"}}, 51, nil).Once()

	jobs, total, err := uc.ListJobs(ctx, filter, 50, 50)

	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, 51, total)
}

func TestOrderUseCase_MarkReconciled(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_StoresTransaction", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		before := time.Now().UTC()
		repo.On("MarkJobReconciled", ctx, "job-1", "pay_123", mock.AnythingOfType("time.Time")).
			Return(true, nil).Once()

		mark, err := uc.MarkReconciled(ctx, " job-1 ", " pay_123 ", "ops@example.com")

		require.NoError(t, err)
		assert.Equal(t, "job-1", mark.JobID)
		assert.Equal(t, "pay_123", mark.TransactionID)
		assert.False(t, mark.ReconciledAt.Before(before))
	})

	t.Run("Error_UnknownJob", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("MarkJobReconciled", ctx, "job-404", "", mock.Anything).Return(false, nil).Once()

		mark, err := uc.MarkReconciled(ctx, "job-404", "", "ops@example.com")

		assert.Nil(t, mark)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("Error_BlankJobID", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)

		_, err := uc.MarkReconciled(ctx, "  ", "", "ops@example.com")

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.On("MarkJobReconciled", ctx, "job-1", "", mock.Anything).Return(false, errors.New("db down")).Once()

		_, err := uc.MarkReconciled(ctx, "job-1", "", "ops@example.com")

		assert.EqualError(t, err, "db down")
	})
}
