package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
	authMocks "github.com/diffrun/opsdesk/internal/auth/usecase/mocks"
)

func TestRunCreateOperator(t *testing.T) {
	ctx := context.Background()
	id := uuid.MustParse("0195a0c2-7a3e-7c11-9f00-4b5d2a0e9c10")

	t.Run("Success_Text", func(t *testing.T) {
		uc := authMocks.NewMockOperatorUseCase(t)
		uc.On("Create", ctx, "ops@example.com").Return(&authDomain.CreateOperatorOutput{
			ID:          id,
			Email:       "ops@example.com",
			PlainSecret: "s3cret",
		}, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunCreateOperator(ctx, uc, discardLogger(), &out, "  ops@example.com ", FormatText))

		assert.Contains(t, out.String(), "ID:     "+id.String())
		assert.Contains(t, out.String(), "Secret: s3cret")
	})

	t.Run("Success_JSON", func(t *testing.T) {
		uc := authMocks.NewMockOperatorUseCase(t)
		uc.On("Create", ctx, "ops@example.com").Return(&authDomain.CreateOperatorOutput{
			ID:          id,
			Email:       "ops@example.com",
			PlainSecret: "s3cret",
		}, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunCreateOperator(ctx, uc, discardLogger(), &out, "ops@example.com", FormatJSON))

		assert.JSONEq(t,
			`{"id":"`+id.String()+`","email":"ops@example.com","secret":"s3cret"}`,
			out.String(),
		)
	})

	t.Run("Error_EmptyEmail", func(t *testing.T) {
		uc := authMocks.NewMockOperatorUseCase(t)
		err := RunCreateOperator(ctx, uc, discardLogger(), io.Discard, " ", FormatText)
		assert.EqualError(t, err, "email is required")
	})

	t.Run("Error_InvalidFormat", func(t *testing.T) {
		uc := authMocks.NewMockOperatorUseCase(t)
		err := RunCreateOperator(ctx, uc, discardLogger(), io.Discard, "ops@example.com", "yaml")
		assert.EqualError(t, err, "invalid format: yaml (valid options: text, json)")
	})

	t.Run("Error_UseCase", func(t *testing.T) {
		uc := authMocks.NewMockOperatorUseCase(t)
		uc.On("Create", ctx, "ops@example.com").Return(nil, errors.New("duplicate")).Once()

		err := RunCreateOperator(ctx, uc, discardLogger(), io.Discard, "ops@example.com", FormatText)
		assert.EqualError(t, err, "failed to create operator: duplicate")
	})
}
