// Package mocks provides mock implementations for testing the auth HTTP layer.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
)

// MockTokenUseCase is a mock implementation of TokenUseCase.
type MockTokenUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method.
func (m *MockTokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssueTokenOutput), args.Error(1)
}

// Authenticate mocks the Authenticate method.
func (m *MockTokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Operator, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Operator), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockTokenUseCase) Revoke(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

// CleanupExpired mocks the CleanupExpired method.
func (m *MockTokenUseCase) CleanupExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}
