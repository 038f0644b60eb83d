// Package mocks provides mock implementations of the webhook use case.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/diffrun/opsdesk/internal/webhook/domain"
)

// MockWebhookUseCase is a mock implementation of usecase.WebhookUseCase.
type MockWebhookUseCase struct {
	mock.Mock
}

// NewMockWebhookUseCase creates a mock whose expectations are asserted on cleanup.
func NewMockWebhookUseCase(t *testing.T) *MockWebhookUseCase {
	m := &MockWebhookUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func result(args mock.Arguments) (*domain.Result, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Result), args.Error(1)
}

// HandleShiprocket mocks the HandleShiprocket method.
func (m *MockWebhookUseCase) HandleShiprocket(
	ctx context.Context,
	payload domain.ShiprocketPayload,
	raw []byte,
) (*domain.Result, error) {
	return result(m.Called(ctx, payload, raw))
}

// HandleCloudprinter mocks the HandleCloudprinter method.
func (m *MockWebhookUseCase) HandleCloudprinter(
	ctx context.Context,
	payload domain.CloudprinterPayload,
) (*domain.Result, error) {
	return result(m.Called(ctx, payload))
}

// PurgeEvents mocks the PurgeEvents method.
func (m *MockWebhookUseCase) PurgeEvents(ctx context.Context, retention time.Duration, dryRun bool) (int64, error) {
	args := m.Called(ctx, retention, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventRepository is a mock implementation of usecase.EventRepository.
type MockEventRepository struct {
	mock.Mock
}

// NewMockEventRepository creates a mock whose expectations are asserted on cleanup.
func NewMockEventRepository(t *testing.T) *MockEventRepository {
	m := &MockEventRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Insert mocks the Insert method.
func (m *MockEventRepository) Insert(ctx context.Context, event *domain.Event) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

// CountReceivedBefore mocks the CountReceivedBefore method.
func (m *MockEventRepository) CountReceivedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// DeleteReceivedBefore mocks the DeleteReceivedBefore method.
func (m *MockEventRepository) DeleteReceivedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
