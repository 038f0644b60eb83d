package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
	authService "github.com/diffrun/opsdesk/internal/auth/service"
)

type tokenUseCase struct {
	tokenTTL      time.Duration
	operatorRepo  OperatorRepository
	tokenRepo     TokenRepository
	secretService authService.SecretService
	tokenService  authService.TokenService
}

// NewTokenUseCase creates a new TokenUseCase issuing tokens valid for tokenTTL.
func NewTokenUseCase(
	tokenTTL time.Duration,
	operatorRepo OperatorRepository,
	tokenRepo TokenRepository,
	secretService authService.SecretService,
	tokenService authService.TokenService,
) TokenUseCase {
	return &tokenUseCase{
		tokenTTL:      tokenTTL,
		operatorRepo:  operatorRepo,
		tokenRepo:     tokenRepo,
		secretService: secretService,
		tokenService:  tokenService,
	}
}

// Issue verifies operator credentials and stores a new token digest. Unknown
// emails and wrong secrets both yield ErrInvalidCredentials.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	operator, err := t.operatorRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, authDomain.ErrOperatorNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !t.secretService.CompareSecret(input.Secret, operator.SecretHash) {
		return nil, authDomain.ErrInvalidCredentials
	}
	if !operator.IsActive {
		return nil, authDomain.ErrOperatorInactive
	}

	plainToken, tokenHash, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	token := &authDomain.Token{
		ID:         uuid.Must(uuid.NewV7()),
		TokenHash:  tokenHash,
		OperatorID: operator.ID,
		ExpiresAt:  now.Add(t.tokenTTL),
		CreatedAt:  now,
	}
	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return &authDomain.IssueTokenOutput{
		PlainToken: plainToken,
		ExpiresAt:  token.ExpiresAt,
	}, nil
}

// Authenticate resolves a token digest to its active operator.
func (t *tokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Operator, error) {
	token, err := t.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, authDomain.ErrTokenNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !token.IsUsable(time.Now().UTC()) {
		return nil, authDomain.ErrInvalidCredentials
	}

	operator, err := t.operatorRepo.Get(ctx, token.OperatorID)
	if err != nil {
		if errors.Is(err, authDomain.ErrOperatorNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !operator.IsActive {
		return nil, authDomain.ErrOperatorInactive
	}
	return operator, nil
}

// Revoke invalidates a token. Unknown tokens are not an error.
func (t *tokenUseCase) Revoke(ctx context.Context, tokenHash string) error {
	return t.tokenRepo.Revoke(ctx, tokenHash, time.Now().UTC())
}

// CleanupExpired deletes tokens that expired more than olderThan ago.
func (t *tokenUseCase) CleanupExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return t.tokenRepo.DeleteExpired(ctx, time.Now().UTC().Add(-olderThan))
}
