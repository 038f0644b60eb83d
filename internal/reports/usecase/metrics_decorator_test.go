package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	metricsMocks "github.com/diffrun/opsdesk/internal/metrics/mocks"
	"github.com/diffrun/opsdesk/internal/reports/domain"
	"github.com/diffrun/opsdesk/internal/reports/usecase/mocks"
)

func TestMetricsDecorator_Orders(t *testing.T) {
	ctx := context.Background()
	q := domain.RangeQuery{Range: domain.Range1Week}
	next := mocks.NewMockReportsUseCase(t)
	m := &metricsMocks.MockBusinessMetrics{}
	next.On("Orders", ctx, q).Return(&domain.Series[int]{}, nil).Once()
	m.On("RecordOperation", ctx, "reports", "orders", "success").Once()
	m.On("RecordDuration", ctx, "reports", "orders", mock.Anything, "success").Once()

	_, err := NewReportsUseCaseWithMetrics(next, m).Orders(ctx, q)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestMetricsDecorator_ProductionKPIs(t *testing.T) {
	ctx := context.Background()
	next := mocks.NewMockReportsUseCase(t)
	m := &metricsMocks.MockBusinessMetrics{}
	next.On("ProductionKPIs", ctx).Return(nil, errors.New("db down")).Once()
	m.On("RecordOperation", ctx, "reports", "production_kpis", "error").Once()
	m.On("RecordDuration", ctx, "reports", "production_kpis", mock.Anything, "error").Once()

	_, err := NewReportsUseCaseWithMetrics(next, m).ProductionKPIs(ctx)
	assert.Error(t, err)
	m.AssertExpectations(t)
}

func TestMetricsDecorator_WeeklySLA(t *testing.T) {
	ctx := context.Background()
	q := domain.WeeklyQuery{Weeks: 6, ExcludeWeeks: 2}
	next := mocks.NewMockReportsUseCase(t)
	m := &metricsMocks.MockBusinessMetrics{}
	next.On("WeeklySLA", ctx, q).Return(&domain.WeeklySLAReport{}, nil).Once()
	m.On("RecordOperation", ctx, "reports", "weekly_sla", "success").Once()
	m.On("RecordDuration", ctx, "reports", "weekly_sla", mock.Anything, "success").Once()

	_, err := NewReportsUseCaseWithMetrics(next, m).WeeklySLA(ctx, q)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestMetricsDecorator_OrderStatus(t *testing.T) {
	ctx := context.Background()
	q := domain.RangeQuery{Range: domain.Range1Week}
	next := mocks.NewMockReportsUseCase(t)
	m := &metricsMocks.MockBusinessMetrics{}
	next.On("OrderStatus", ctx, q, "all").Return(nil, errors.New("db down")).Once()
	m.On("RecordOperation", ctx, "reports", "order_status", "error").Once()
	m.On("RecordDuration", ctx, "reports", "order_status", mock.Anything, "error").Once()

	_, err := NewReportsUseCaseWithMetrics(next, m).OrderStatus(ctx, q, "all")
	assert.Error(t, err)
	m.AssertExpectations(t)
}
