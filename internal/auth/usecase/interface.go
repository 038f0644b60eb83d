// Package usecase implements operator sign-in and bearer token authentication.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
)

// OperatorRepository defines persistence operations for operators.
type OperatorRepository interface {
	Create(ctx context.Context, operator *authDomain.Operator) error
	Get(ctx context.Context, operatorID uuid.UUID) (*authDomain.Operator, error)
	// GetByEmail matches case-insensitively. Returns ErrOperatorNotFound when missing.
	GetByEmail(ctx context.Context, email string) (*authDomain.Operator, error)
}

// TokenRepository defines persistence operations for bearer tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *authDomain.Token) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error)
	Revoke(ctx context.Context, tokenHash string, at time.Time) error
	// DeleteExpired removes tokens that expired before the cutoff and returns how many.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// OperatorUseCase manages operator accounts.
type OperatorUseCase interface {
	// Create registers an operator with a generated secret. The plain secret is
	// only returned here.
	Create(ctx context.Context, email string) (*authDomain.CreateOperatorOutput, error)
}

// TokenUseCase issues and validates bearer tokens.
type TokenUseCase interface {
	Issue(ctx context.Context, input *authDomain.IssueTokenInput) (*authDomain.IssueTokenOutput, error)
	Authenticate(ctx context.Context, tokenHash string) (*authDomain.Operator, error)
	Revoke(ctx context.Context, tokenHash string) error
	CleanupExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
