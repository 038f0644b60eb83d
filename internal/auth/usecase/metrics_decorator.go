package usecase

import (
	"context"
	"time"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
	"github.com/diffrun/opsdesk/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{next: useCase, metrics: m}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	t.metrics.RecordOperation(ctx, "auth", operation, status)
	t.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// Issue records metrics for token issuance.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, input)
	t.record(ctx, "token_issue", start, err)
	return output, err
}

// Authenticate records metrics for token validation.
func (t *tokenUseCaseWithMetrics) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Operator, error) {
	start := time.Now()
	operator, err := t.next.Authenticate(ctx, tokenHash)
	t.record(ctx, "token_authenticate", start, err)
	return operator, err
}

// Revoke records metrics for token revocation.
func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, tokenHash string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, tokenHash)
	t.record(ctx, "token_revoke", start, err)
	return err
}

// CleanupExpired records metrics for expired token cleanup.
func (t *tokenUseCaseWithMetrics) CleanupExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	start := time.Now()
	count, err := t.next.CleanupExpired(ctx, olderThan)
	t.record(ctx, "token_cleanup", start, err)
	if err == nil {
		t.metrics.RecordItems(ctx, "auth", "token_cleanup", "deleted", int(count))
	}
	return count, err
}
