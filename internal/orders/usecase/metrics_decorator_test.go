package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/diffrun/opsdesk/internal/metrics"
	metricsMocks "github.com/diffrun/opsdesk/internal/metrics/mocks"
	"github.com/diffrun/opsdesk/internal/orders/domain"
	"github.com/diffrun/opsdesk/internal/orders/usecase/mocks"
)

var _ metrics.BusinessMetrics = (*metricsMocks.MockBusinessMetrics)(nil)

func TestNewOrderUseCaseWithMetrics(t *testing.T) {
	decorator := NewOrderUseCaseWithMetrics(mocks.NewMockOrderUseCase(t), &metricsMocks.MockBusinessMetrics{})
	assert.Implements(t, (*OrderUseCase)(nil), decorator)
}

func TestMetricsDecorator_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		next := mocks.NewMockOrderUseCase(t)
		m := &metricsMocks.MockBusinessMetrics{}
		next.On("Get", ctx, "1001").Return(&domain.Order{OrderID: "1001"}, nil).Once()
		m.On("RecordOperation", ctx, "orders", "order_get", "success").Once()
		m.On("RecordDuration", ctx, "orders", "order_get", mock.Anything, "success").Once()

		order, err := NewOrderUseCaseWithMetrics(next, m).Get(ctx, "1001")
		assert.NoError(t, err)
		assert.Equal(t, "1001", order.OrderID)
		m.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		next := mocks.NewMockOrderUseCase(t)
		m := &metricsMocks.MockBusinessMetrics{}
		next.On("Get", ctx, "1001").Return(nil, errors.New("boom")).Once()
		m.On("RecordOperation", ctx, "orders", "order_get", "error").Once()
		m.On("RecordDuration", ctx, "orders", "order_get", mock.Anything, "error").Once()

		_, err := NewOrderUseCaseWithMetrics(next, m).Get(ctx, "1001")
		assert.Error(t, err)
		m.AssertExpectations(t)
	})
}

func TestMetricsDecorator_Lock(t *testing.T) {
	ctx := context.Background()
	next := mocks.NewMockOrderUseCase(t)
	m := &metricsMocks.MockBusinessMetrics{}
	next.On("Lock", ctx, "1001", "ops@diffrun.com").
		Return(&domain.LockResult{Acquired: false, HeldBy: "other@diffrun.com"}, nil).Once()
	m.On("RecordOperation", ctx, "orders", "order_lock", "held").Once()
	m.On("RecordDuration", ctx, "orders", "order_lock", mock.Anything, "held").Once()

	result, err := NewOrderUseCaseWithMetrics(next, m).Lock(ctx, "1001", "ops@diffrun.com")
	assert.NoError(t, err)
	assert.False(t, result.Acquired)
	m.AssertExpectations(t)
}

func TestMetricsDecorator_TransitionStatus(t *testing.T) {
	ctx := context.Background()
	next := mocks.NewMockOrderUseCase(t)
	m := &metricsMocks.MockBusinessMetrics{}
	next.On("TransitionStatus", ctx, "1001", domain.StatusReprint, "torn", "ops@diffrun.com").
		Return(&domain.Order{OrderID: "1001"}, nil).Once()
	m.On("RecordOperation", ctx, "orders", "order_status_reprint", "success").Once()
	m.On("RecordDuration", ctx, "orders", "order_status_reprint", mock.Anything, "success").Once()

	_, err := NewOrderUseCaseWithMetrics(next, m).TransitionStatus(ctx, "1001", domain.StatusReprint, "torn", "ops@diffrun.com")
	assert.NoError(t, err)
	m.AssertExpectations(t)
}
