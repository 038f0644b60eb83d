// Package mocks provides testify mocks for the auth use case dependencies.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
)

// MockOperatorRepository is a mock implementation of usecase.OperatorRepository.
type MockOperatorRepository struct {
	mock.Mock
}

// NewMockOperatorRepository creates a mock whose expectations are asserted on cleanup.
func NewMockOperatorRepository(t *testing.T) *MockOperatorRepository {
	m := &MockOperatorRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func operator(args mock.Arguments) (*authDomain.Operator, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Operator), args.Error(1)
}

// Create mocks the Create method.
func (m *MockOperatorRepository) Create(ctx context.Context, op *authDomain.Operator) error {
	return m.Called(ctx, op).Error(0)
}

// Get mocks the Get method.
func (m *MockOperatorRepository) Get(ctx context.Context, operatorID uuid.UUID) (*authDomain.Operator, error) {
	return operator(m.Called(ctx, operatorID))
}

// GetByEmail mocks the GetByEmail method.
func (m *MockOperatorRepository) GetByEmail(ctx context.Context, email string) (*authDomain.Operator, error) {
	return operator(m.Called(ctx, email))
}

// MockTokenRepository is a mock implementation of usecase.TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

// NewMockTokenRepository creates a mock whose expectations are asserted on cleanup.
func NewMockTokenRepository(t *testing.T) *MockTokenRepository {
	m := &MockTokenRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks the Create method.
func (m *MockTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	return m.Called(ctx, token).Error(0)
}

// GetByTokenHash mocks the GetByTokenHash method.
func (m *MockTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Token), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockTokenRepository) Revoke(ctx context.Context, tokenHash string, at time.Time) error {
	return m.Called(ctx, tokenHash, at).Error(0)
}

// DeleteExpired mocks the DeleteExpired method.
func (m *MockTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockSecretService is a mock implementation of service.SecretService.
type MockSecretService struct {
	mock.Mock
}

// GenerateSecret mocks the GenerateSecret method.
func (m *MockSecretService) GenerateSecret() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// HashSecret mocks the HashSecret method.
func (m *MockSecretService) HashSecret(plainSecret string) (string, error) {
	args := m.Called(plainSecret)
	return args.String(0), args.Error(1)
}

// CompareSecret mocks the CompareSecret method.
func (m *MockSecretService) CompareSecret(plainSecret, hashedSecret string) bool {
	return m.Called(plainSecret, hashedSecret).Bool(0)
}

// MockTokenService is a mock implementation of service.TokenService.
type MockTokenService struct {
	mock.Mock
}

// GenerateToken mocks the GenerateToken method.
func (m *MockTokenService) GenerateToken() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// HashToken mocks the HashToken method.
func (m *MockTokenService) HashToken(plainToken string) string {
	return m.Called(plainToken).String(0)
}

// MockOperatorUseCase is a mock implementation of usecase.OperatorUseCase.
type MockOperatorUseCase struct {
	mock.Mock
}

// NewMockOperatorUseCase creates a mock whose expectations are asserted on cleanup.
func NewMockOperatorUseCase(t *testing.T) *MockOperatorUseCase {
	m := &MockOperatorUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks the Create method.
func (m *MockOperatorUseCase) Create(ctx context.Context, email string) (*authDomain.CreateOperatorOutput, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CreateOperatorOutput), args.Error(1)
}
