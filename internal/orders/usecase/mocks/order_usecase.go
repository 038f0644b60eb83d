package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/diffrun/opsdesk/internal/orders/domain"
)

// MockOrderUseCase is a mock implementation of usecase.OrderUseCase.
type MockOrderUseCase struct {
	mock.Mock
}

// NewMockOrderUseCase creates a mock whose expectations are asserted on cleanup.
func NewMockOrderUseCase(t *testing.T) *MockOrderUseCase {
	m := &MockOrderUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Register mocks the Register method.
func (m *MockOrderUseCase) Register(ctx context.Context, input domain.RegisterInput) (*domain.Order, error) {
	return order(m.Called(ctx, input))
}

// Get mocks the Get method.
func (m *MockOrderUseCase) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return order(m.Called(ctx, orderID))
}

// GetByJobID mocks the GetByJobID method.
func (m *MockOrderUseCase) GetByJobID(ctx context.Context, jobID string) (*domain.Order, error) {
	return order(m.Called(ctx, jobID))
}

// List mocks the List method.
func (m *MockOrderUseCase) List(
	ctx context.Context,
	filter domain.ListFilter,
	offset, limit int,
) ([]*domain.Order, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

// ListJobs mocks the ListJobs method.
func (m *MockOrderUseCase) ListJobs(
	ctx context.Context,
	filter domain.JobFilter,
	offset, limit int,
) ([]*domain.Order, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Order), args.Int(1), args.Error(2)
}

// MarkReconciled mocks the MarkReconciled method.
func (m *MockOrderUseCase) MarkReconciled(
	ctx context.Context,
	jobID, transactionID, actor string,
) (*domain.ReconcileMark, error) {
	args := m.Called(ctx, jobID, transactionID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconcileMark), args.Error(1)
}

// Patch mocks the Patch method.
func (m *MockOrderUseCase) Patch(
	ctx context.Context,
	orderID string,
	patch domain.Patch,
	actor string,
) (*domain.Order, error) {
	return order(m.Called(ctx, orderID, patch, actor))
}

// TransitionStatus mocks the TransitionStatus method.
func (m *MockOrderUseCase) TransitionStatus(
	ctx context.Context,
	orderID string,
	status domain.Status,
	remarks, actor string,
) (*domain.Order, error) {
	return order(m.Called(ctx, orderID, status, remarks, actor))
}

// SetIssueOrigin mocks the SetIssueOrigin method.
func (m *MockOrderUseCase) SetIssueOrigin(ctx context.Context, orderID, origin, actor string) (*domain.Order, error) {
	return order(m.Called(ctx, orderID, origin, actor))
}

// Lock mocks the Lock method.
func (m *MockOrderUseCase) Lock(ctx context.Context, orderID, actor string) (*domain.LockResult, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LockResult), args.Error(1)
}

// Unlock mocks the Unlock method.
func (m *MockOrderUseCase) Unlock(ctx context.Context, orderID, actor string) error {
	return m.Called(ctx, orderID, actor).Error(0)
}
