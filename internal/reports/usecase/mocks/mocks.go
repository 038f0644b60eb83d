// Package mocks provides mock implementations of the reports use case and repository.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/diffrun/opsdesk/internal/reports/domain"
)

// MockReportRepository is a mock implementation of usecase.ReportRepository.
type MockReportRepository struct {
	mock.Mock
}

// NewMockReportRepository creates a mock whose expectations are asserted on cleanup.
func NewMockReportRepository(t *testing.T) *MockReportRepository {
	m := &MockReportRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ListFacts mocks the ListFacts method.
func (m *MockReportRepository) ListFacts(ctx context.Context, q domain.FactQuery) ([]domain.Fact, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fact), args.Error(1)
}

// ListJobCreations mocks the ListJobCreations method.
func (m *MockReportRepository) ListJobCreations(
	ctx context.Context,
	w domain.Window,
	locale *domain.LocaleFilter,
) ([]time.Time, error) {
	args := m.Called(ctx, w, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

// MockReportsUseCase is a mock implementation of usecase.ReportsUseCase.
type MockReportsUseCase struct {
	mock.Mock
}

// NewMockReportsUseCase creates a mock whose expectations are asserted on cleanup.
func NewMockReportsUseCase(t *testing.T) *MockReportsUseCase {
	m := &MockReportsUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Orders mocks the Orders method.
func (m *MockReportsUseCase) Orders(ctx context.Context, q domain.RangeQuery) (*domain.Series[int], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Series[int]), args.Error(1)
}

// Revenue mocks the Revenue method.
func (m *MockReportsUseCase) Revenue(ctx context.Context, q domain.RangeQuery) (*domain.Series[float64], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Series[float64]), args.Error(1)
}

// ShipStatus mocks the ShipStatus method.
func (m *MockReportsUseCase) ShipStatus(
	ctx context.Context,
	q domain.RangeQuery,
	printer string,
) (*domain.ShipStatusReport, error) {
	args := m.Called(ctx, q, printer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShipStatusReport), args.Error(1)
}

// SLASummary mocks the SLASummary method.
func (m *MockReportsUseCase) SLASummary(
	ctx context.Context,
	startDate, endDate string,
) (*domain.SLASummary, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SLASummary), args.Error(1)
}

// ProductionKPIs mocks the ProductionKPIs method.
func (m *MockReportsUseCase) ProductionKPIs(ctx context.Context) (map[string]domain.PrinterKPI, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.PrinterKPI), args.Error(1)
}

// ProductionGraph mocks the ProductionGraph method.
func (m *MockReportsUseCase) ProductionGraph(
	ctx context.Context,
	startDate, endDate string,
) (*domain.ProductionGraph, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductionGraph), args.Error(1)
}

// SLACohorts mocks the SLACohorts method.
func (m *MockReportsUseCase) SLACohorts(ctx context.Context, startDate, endDate string) ([]domain.CohortDay, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CohortDay), args.Error(1)
}

// CohortOrders mocks the CohortOrders method.
func (m *MockReportsUseCase) CohortOrders(
	ctx context.Context,
	startDate, endDate, cohortDate string,
) ([]domain.CohortOrder, error) {
	args := m.Called(ctx, startDate, endDate, cohortDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CohortOrder), args.Error(1)
}

// DeliveryLatency mocks the DeliveryLatency method.
func (m *MockReportsUseCase) DeliveryLatency(
	ctx context.Context,
	startDate, endDate string,
) ([]domain.LatencyRow, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LatencyRow), args.Error(1)
}

// WeeklySLA mocks the WeeklySLA method.
func (m *MockReportsUseCase) WeeklySLA(ctx context.Context, q domain.WeeklyQuery) (*domain.WeeklySLAReport, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WeeklySLAReport), args.Error(1)
}

// PreviewVsOrders mocks the PreviewVsOrders method.
func (m *MockReportsUseCase) PreviewVsOrders(ctx context.Context, q domain.RangeQuery) (*domain.Conversion, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversion), args.Error(1)
}

// OrderStatus mocks the OrderStatus method.
func (m *MockReportsUseCase) OrderStatus(
	ctx context.Context,
	q domain.RangeQuery,
	printer string,
) (*domain.OrderStatusReport, error) {
	args := m.Called(ctx, q, printer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderStatusReport), args.Error(1)
}
