// Package mocks provides mock implementations of the fulfillment use case and its dependencies.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/diffrun/opsdesk/internal/fulfillment/domain"
	"github.com/diffrun/opsdesk/internal/partner"
)

func bulk(args mock.Arguments) (*domain.BulkResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkResult), args.Error(1)
}

// MockFulfillmentUseCase is a mock implementation of usecase.FulfillmentUseCase.
type MockFulfillmentUseCase struct {
	mock.Mock
}

// NewMockFulfillmentUseCase creates a mock whose expectations are asserted on cleanup.
func NewMockFulfillmentUseCase(t *testing.T) *MockFulfillmentUseCase {
	m := &MockFulfillmentUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ApprovePrinting mocks the ApprovePrinting method.
func (m *MockFulfillmentUseCase) ApprovePrinting(
	ctx context.Context,
	orderIDs []string,
	actor string,
) (*domain.BulkResult, error) {
	return bulk(m.Called(ctx, orderIDs, actor))
}

// CreateShipments mocks the CreateShipments method.
func (m *MockFulfillmentUseCase) CreateShipments(
	ctx context.Context,
	orderIDs []string,
	assignAWB, requestPickup bool,
) (*domain.BulkResult, error) {
	return bulk(m.Called(ctx, orderIDs, assignAWB, requestPickup))
}

// Unapprove mocks the Unapprove method.
func (m *MockFulfillmentUseCase) Unapprove(ctx context.Context, jobIDs []string) (*domain.BulkResult, error) {
	return bulk(m.Called(ctx, jobIDs))
}

// MockPrinter is a mock implementation of usecase.Printer.
type MockPrinter struct {
	mock.Mock
}

// NewMockPrinter creates a mock whose expectations are asserted on cleanup.
func NewMockPrinter(t *testing.T) *MockPrinter {
	m := &MockPrinter{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// AddOrder mocks the AddOrder method.
func (m *MockPrinter) AddOrder(ctx context.Context, order partner.PrintOrder) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

// MockShipper is a mock implementation of usecase.Shipper.
type MockShipper struct {
	mock.Mock
}

// NewMockShipper creates a mock whose expectations are asserted on cleanup.
func NewMockShipper(t *testing.T) *MockShipper {
	m := &MockShipper{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Login mocks the Login method.
func (m *MockShipper) Login(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// CreateAdhocOrder mocks the CreateAdhocOrder method.
func (m *MockShipper) CreateAdhocOrder(ctx context.Context, order partner.AdhocOrder) (*partner.AdhocOrderResult, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.AdhocOrderResult), args.Error(1)
}

// AssignAWB mocks the AssignAWB method.
func (m *MockShipper) AssignAWB(ctx context.Context, shipmentID string) (*partner.AWBAssignment, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.AWBAssignment), args.Error(1)
}

// GeneratePickup mocks the GeneratePickup method.
func (m *MockShipper) GeneratePickup(ctx context.Context, shipmentIDs []string) (*partner.PickupRequest, error) {
	args := m.Called(ctx, shipmentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.PickupRequest), args.Error(1)
}

// MockArtifactStore is a mock implementation of usecase.ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

// NewMockArtifactStore creates a mock whose expectations are asserted on cleanup.
func NewMockArtifactStore(t *testing.T) *MockArtifactStore {
	m := &MockArtifactStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Approved mocks the Approved method.
func (m *MockArtifactStore) Approved(ctx context.Context, jobID string) (*domain.Artifacts, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Artifacts), args.Error(1)
}

// MoveToPrevious mocks the MoveToPrevious method.
func (m *MockArtifactStore) MoveToPrevious(ctx context.Context, jobID string) (int, error) {
	args := m.Called(ctx, jobID)
	return args.Int(0), args.Error(1)
}
