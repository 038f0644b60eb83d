package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
	authService "github.com/diffrun/opsdesk/internal/auth/service"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

type operatorUseCase struct {
	operatorRepo  OperatorRepository
	secretService authService.SecretService
	logger        *slog.Logger
}

// NewOperatorUseCase creates a new OperatorUseCase.
func NewOperatorUseCase(
	operatorRepo OperatorRepository,
	secretService authService.SecretService,
	logger *slog.Logger,
) OperatorUseCase {
	return &operatorUseCase{
		operatorRepo:  operatorRepo,
		secretService: secretService,
		logger:        logger,
	}
}

func (o *operatorUseCase) Create(ctx context.Context, email string) (*authDomain.CreateOperatorOutput, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "email is required")
	}

	plainSecret, hashedSecret, err := o.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	operator := &authDomain.Operator{
		ID:         uuid.Must(uuid.NewV7()),
		Email:      email,
		SecretHash: hashedSecret,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := o.operatorRepo.Create(ctx, operator); err != nil {
		return nil, err
	}

	o.logger.Info("operator created", slog.String("operator_id", operator.ID.String()), slog.String("email", email))

	return &authDomain.CreateOperatorOutput{
		ID:          operator.ID,
		Email:       operator.Email,
		PlainSecret: plainSecret,
	}, nil
}
