// Package mocks provides mock implementations of the jobs use case and its dependencies.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/diffrun/opsdesk/internal/jobs/domain"
	"github.com/diffrun/opsdesk/internal/notification"
	"github.com/diffrun/opsdesk/internal/partner"
)

// MockJobsUseCase is a mock implementation of usecase.JobsUseCase.
type MockJobsUseCase struct {
	mock.Mock
}

// NewMockJobsUseCase creates a mock whose expectations are asserted on cleanup.
func NewMockJobsUseCase(t *testing.T) *MockJobsUseCase {
	m := &MockJobsUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// RunNudges mocks the RunNudges method.
func (m *MockJobsUseCase) RunNudges(ctx context.Context, now time.Time) (*domain.NudgeResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NudgeResult), args.Error(1)
}

// RunFeedbackEmails mocks the RunFeedbackEmails method.
func (m *MockJobsUseCase) RunFeedbackEmails(ctx context.Context, now time.Time, limit int) (*domain.FeedbackResult, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedbackResult), args.Error(1)
}

// SendFeedbackEmail mocks the SendFeedbackEmail method.
func (m *MockJobsUseCase) SendFeedbackEmail(ctx context.Context, jobID string) (*domain.FeedbackSend, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedbackSend), args.Error(1)
}

// RunReconcile mocks the RunReconcile method.
func (m *MockJobsUseCase) RunReconcile(ctx context.Context, now time.Time) (*domain.ReconcileResult, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconcileResult), args.Error(1)
}

// MockTracker is a mock implementation of usecase.Tracker.
type MockTracker struct {
	mock.Mock
}

// NewMockTracker creates a mock whose expectations are asserted on cleanup.
func NewMockTracker(t *testing.T) *MockTracker {
	m := &MockTracker{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Track mocks the Track method.
func (m *MockTracker) Track(ctx context.Context, awb string) (*partner.Tracking, error) {
	args := m.Called(ctx, awb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Tracking), args.Error(1)
}

// MockMailer is a mock implementation of usecase.Mailer.
type MockMailer struct {
	mock.Mock
}

// NewMockMailer creates a mock whose expectations are asserted on cleanup.
func NewMockMailer(t *testing.T) *MockMailer {
	m := &MockMailer{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Send mocks the Send method.
func (m *MockMailer) Send(ctx context.Context, msg notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}
