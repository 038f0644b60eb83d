package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
	"github.com/diffrun/opsdesk/internal/auth/usecase/mocks"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

func TestOperatorUseCase_Create(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Success_NormalizesEmail", func(t *testing.T) {
		repo := mocks.NewMockOperatorRepository(t)
		secrets := &mocks.MockSecretService{}
		secrets.On("GenerateSecret").Return("plain", "hashed", nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(op *authDomain.Operator) bool {
			return op.Email == "ops@example.com" && op.SecretHash == "hashed" && op.IsActive
		})).Return(nil).Once()

		out, err := NewOperatorUseCase(repo, secrets, logger).Create(ctx, " Ops@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, "plain", out.PlainSecret)
		assert.Equal(t, "ops@example.com", out.Email)
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		repo := mocks.NewMockOperatorRepository(t)
		secrets := &mocks.MockSecretService{}
		secrets.On("GenerateSecret").Return("plain", "hashed", nil).Once()
		repo.On("Create", ctx, mock.Anything).Return(authDomain.ErrOperatorExists).Once()

		_, err := NewOperatorUseCase(repo, secrets, logger).Create(ctx, "ops@example.com")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Error_BlankEmail", func(t *testing.T) {
		_, err := NewOperatorUseCase(mocks.NewMockOperatorRepository(t), &mocks.MockSecretService{}, logger).
			Create(ctx, "  ")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
