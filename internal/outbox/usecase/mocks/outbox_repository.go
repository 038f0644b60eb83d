// Package mocks provides mock implementations of the outbox dependencies.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/diffrun/opsdesk/internal/outbox/domain"
)

// MockOutboxEventRepository is a mock of the outbox event repository. It also
// satisfies the OutboxWriter interfaces of event producers.
type MockOutboxEventRepository struct {
	mock.Mock
}

// NewMockOutboxEventRepository creates a mock whose expectations are asserted on cleanup.
func NewMockOutboxEventRepository(t *testing.T) *MockOutboxEventRepository {
	m := &MockOutboxEventRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks the Create method.
func (m *MockOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

// GetPendingEvents mocks the GetPendingEvents method.
func (m *MockOutboxEventRepository) GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxEvent), args.Error(1)
}

// Update mocks the Update method.
func (m *MockOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

// DeleteProcessedBefore mocks the DeleteProcessedBefore method.
func (m *MockOutboxEventRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventProcessor is a mock of usecase.EventProcessor.
type MockEventProcessor struct {
	mock.Mock
}

// NewMockEventProcessor creates a mock whose expectations are asserted on cleanup.
func NewMockEventProcessor(t *testing.T) *MockEventProcessor {
	m := &MockEventProcessor{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Process mocks the Process method.
func (m *MockEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}
