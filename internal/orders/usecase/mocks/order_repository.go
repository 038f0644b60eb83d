// Package mocks provides mock implementations of the order use case dependencies.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/diffrun/opsdesk/internal/orders/domain"
)

// MockOrderRepository mocks the full order repository. It satisfies the
// OrderRepository interfaces declared by every consumer of order persistence.
type MockOrderRepository struct {
	mock.Mock
}

// NewMockOrderRepository creates a mock whose expectations are asserted on cleanup.
func NewMockOrderRepository(t *testing.T) *MockOrderRepository {
	m := &MockOrderRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func order(args mock.Arguments) (*domain.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// Create mocks the Create method.
func (m *MockOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

// GetByOrderID mocks the GetByOrderID method.
func (m *MockOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	return order(m.Called(ctx, orderID))
}

// GetByOrderIDForUpdate mocks the GetByOrderIDForUpdate method.
func (m *MockOrderRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.Order, error) {
	return order(m.Called(ctx, orderID))
}

// GetByJobID mocks the GetByJobID method.
func (m *MockOrderRepository) GetByJobID(ctx context.Context, jobID string) (*domain.Order, error) {
	return order(m.Called(ctx, jobID))
}

// List mocks the List method.
func (m *MockOrderRepository) List(
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
func (m *MockOrderRepository) ListJobs(
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

// MarkJobReconciled mocks the MarkJobReconciled method.
func (m *MockOrderRepository) MarkJobReconciled(
	ctx context.Context,
	jobID, transactionID string,
	at time.Time,
) (bool, error) {
	args := m.Called(ctx, jobID, transactionID, at)
	return args.Bool(0), args.Error(1)
}

// Update mocks the Update method.
func (m *MockOrderRepository) Update(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

// AcquireLock mocks the AcquireLock method.
func (m *MockOrderRepository) AcquireLock(ctx context.Context, orderID, actor string, at time.Time) (bool, error) {
	args := m.Called(ctx, orderID, actor, at)
	return args.Bool(0), args.Error(1)
}

// ReleaseLock mocks the ReleaseLock method.
func (m *MockOrderRepository) ReleaseLock(ctx context.Context, orderID, actor string, at time.Time) (bool, error) {
	args := m.Called(ctx, orderID, actor, at)
	return args.Bool(0), args.Error(1)
}

func orders(args mock.Arguments) ([]*domain.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

// GetByID mocks the GetByID method.
func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return order(m.Called(ctx, id))
}

// FindForShipment mocks the FindForShipment method.
func (m *MockOrderRepository) FindForShipment(ctx context.Context, orderID, awb string) (*domain.Order, error) {
	return order(m.Called(ctx, orderID, awb))
}

// ApplyShipment mocks the ApplyShipment method.
func (m *MockOrderRepository) ApplyShipment(ctx context.Context, id uuid.UUID, u domain.ShipmentUpdate) (bool, error) {
	args := m.Called(ctx, id, u)
	return args.Bool(0), args.Error(1)
}

// ApplyPrintStatus mocks the ApplyPrintStatus method.
func (m *MockOrderRepository) ApplyPrintStatus(ctx context.Context, id uuid.UUID, u domain.PrintUpdate) error {
	return m.Called(ctx, id, u).Error(0)
}

// ClaimNotification mocks the ClaimNotification method.
func (m *MockOrderRepository) ClaimNotification(
	ctx context.Context,
	id uuid.UUID,
	kind domain.NotificationKind,
	at time.Time,
) (bool, error) {
	args := m.Called(ctx, id, kind, at)
	return args.Bool(0), args.Error(1)
}

// MarkShipped mocks the MarkShipped method.
func (m *MockOrderRepository) MarkShipped(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// MarkSentToPrinter mocks the MarkSentToPrinter method.
func (m *MockOrderRepository) MarkSentToPrinter(ctx context.Context, id uuid.UUID, d domain.PrintDispatch) error {
	return m.Called(ctx, id, d).Error(0)
}

// ClaimPrintSubmission mocks the ClaimPrintSubmission method.
func (m *MockOrderRepository) ClaimPrintSubmission(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

// ReleasePrintSubmission mocks the ReleasePrintSubmission method.
func (m *MockOrderRepository) ReleasePrintSubmission(ctx context.Context, id uuid.UUID, previous string, at time.Time) error {
	return m.Called(ctx, id, previous, at).Error(0)
}

// SaveShipmentBooking mocks the SaveShipmentBooking method.
func (m *MockOrderRepository) SaveShipmentBooking(ctx context.Context, id uuid.UUID, b domain.ShipmentBooking) error {
	return m.Called(ctx, id, b).Error(0)
}

// SetApproved mocks the SetApproved method.
func (m *MockOrderRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool, at time.Time) error {
	return m.Called(ctx, id, approved, at).Error(0)
}

// ListNudgeCandidates mocks the ListNudgeCandidates method.
func (m *MockOrderRepository) ListNudgeCandidates(
	ctx context.Context,
	q domain.NudgeCandidateQuery,
) ([]*domain.Order, error) {
	return orders(m.Called(ctx, q))
}

// AdvanceNudgeStage mocks the AdvanceNudgeStage method.
func (m *MockOrderRepository) AdvanceNudgeStage(ctx context.Context, id uuid.UUID, from, to int, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, at)
	return args.Bool(0), args.Error(1)
}

// ListNudgeAttempts mocks the ListNudgeAttempts method.
func (m *MockOrderRepository) ListNudgeAttempts(ctx context.Context, id uuid.UUID) ([]domain.NudgeAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NudgeAttempt), args.Error(1)
}

// BeginNudgeAttempt mocks the BeginNudgeAttempt method.
func (m *MockOrderRepository) BeginNudgeAttempt(ctx context.Context, id uuid.UUID, stage int, at time.Time) error {
	return m.Called(ctx, id, stage, at).Error(0)
}

// ClaimNudgeRetry mocks the ClaimNudgeRetry method.
func (m *MockOrderRepository) ClaimNudgeRetry(
	ctx context.Context,
	id uuid.UUID,
	stage, observedAttempts int,
	at time.Time,
) (bool, error) {
	args := m.Called(ctx, id, stage, observedAttempts, at)
	return args.Bool(0), args.Error(1)
}

// FinishNudgeAttempt mocks the FinishNudgeAttempt method.
func (m *MockOrderRepository) FinishNudgeAttempt(
	ctx context.Context,
	id uuid.UUID,
	stage int,
	status domain.NudgeAttemptStatus,
	errText string,
	at time.Time,
) error {
	return m.Called(ctx, id, stage, status, errText, at).Error(0)
}

// ListFeedbackCandidates mocks the ListFeedbackCandidates method.
func (m *MockOrderRepository) ListFeedbackCandidates(
	ctx context.Context,
	q domain.FeedbackCandidateQuery,
) ([]*domain.Order, error) {
	return orders(m.Called(ctx, q))
}

// MarkFeedbackSentForEmail mocks the MarkFeedbackSentForEmail method.
func (m *MockOrderRepository) MarkFeedbackSentForEmail(ctx context.Context, email string, at time.Time) (int64, error) {
	args := m.Called(ctx, email, at)
	return args.Get(0).(int64), args.Error(1)
}

// ListReconcileCandidates mocks the ListReconcileCandidates method.
func (m *MockOrderRepository) ListReconcileCandidates(
	ctx context.Context,
	staleBefore time.Time,
	limit int,
) ([]*domain.Order, error) {
	return orders(m.Called(ctx, staleBefore, limit))
}

// MarkReconciled mocks the MarkReconciled method.
func (m *MockOrderRepository) MarkReconciled(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}
