package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authMocks "github.com/diffrun/opsdesk/internal/auth/http/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunCleanExpiredTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Text", func(t *testing.T) {
		uc := &authMocks.MockTokenUseCase{}
		uc.On("CleanupExpired", ctx, 7*24*time.Hour).Return(int64(3), nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunCleanExpiredTokens(ctx, uc, discardLogger(), &out, 7, FormatText))

		assert.Equal(t, "Deleted 3 expired token(s) older than 7 day(s)\n", out.String())
		uc.AssertExpectations(t)
	})

	t.Run("Success_JSON", func(t *testing.T) {
		uc := &authMocks.MockTokenUseCase{}
		uc.On("CleanupExpired", ctx, time.Duration(0)).Return(int64(0), nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunCleanExpiredTokens(ctx, uc, discardLogger(), &out, 0, FormatJSON))

		assert.JSONEq(t, `{"count":0,"days":0}`, out.String())
	})

	t.Run("Error_NegativeDays", func(t *testing.T) {
		err := RunCleanExpiredTokens(ctx, &authMocks.MockTokenUseCase{}, discardLogger(), io.Discard, -1, FormatText)
		assert.EqualError(t, err, "days must be a positive number, got: -1")
	})

	t.Run("Error_UseCase", func(t *testing.T) {
		uc := &authMocks.MockTokenUseCase{}
		uc.On("CleanupExpired", ctx, 24*time.Hour).Return(int64(0), errors.New("db down")).Once()

		err := RunCleanExpiredTokens(ctx, uc, discardLogger(), io.Discard, 1, FormatText)
		assert.EqualError(t, err, "failed to clean expired tokens: db down")
	})
}
