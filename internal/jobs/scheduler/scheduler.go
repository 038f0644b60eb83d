// Package scheduler runs the periodic jobs on cron schedules in the business
// timezone. A job never overlaps itself: a tick that fires while the previous
// run is still going is skipped.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/diffrun/opsdesk/internal/metrics"
)

// Job is a named unit of scheduled work.
type Job struct {
	Name string
	// Spec is a standard five-field cron expression.
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler owns the cron runner and the context handed to running jobs.
type Scheduler struct {
	cron    *cron.Cron
	metrics metrics.BusinessMetrics
	logger  *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	running sync.WaitGroup
	entries map[string]cron.EntryID
}

// New creates a Scheduler firing in loc.
func New(loc *time.Location, businessMetrics metrics.BusinessMetrics, logger *slog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl)),
		),
		metrics: businessMetrics,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		entries: map[string]cron.EntryID{},
	}
}

// Add registers job. An invalid spec or a duplicate name is an error.
func (s *Scheduler) Add(job Job) error {
	if _, exists := s.entries[job.Name]; exists {
		return fmt.Errorf("job %q already scheduled", job.Name)
	}
	id, err := s.cron.AddFunc(job.Spec, func() { s.run(job) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", job.Spec, job.Name, err)
	}
	s.entries[job.Name] = id
	s.logger.Info("job scheduled", slog.String("job", job.Name), slog.String("spec", job.Spec))
	return nil
}

// Next returns the next activation of the named job, or the zero time when the
// scheduler is not started or the job is unknown.
func (s *Scheduler) Next(name string) time.Time {
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Start begins firing jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs. When ctx ends first the
// running jobs are cancelled and ctx's error is returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}

// Run starts the scheduler and blocks until ctx is done, then stops it,
// allowing running jobs up to shutdownTimeout to finish.
func (s *Scheduler) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	s.Start()
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		s.logger.Warn("scheduler stopped before jobs finished", slog.Any("error", err))
	}
	return nil
}

// run executes one job activation. Errors and panics are logged and recorded,
// never propagated.
func (s *Scheduler) run(job Job) {
	s.running.Add(1)
	defer s.running.Done()

	start := time.Now()
	logger := s.logger.With(slog.String("job", job.Name))
	logger.Info("job started")

	err := s.invoke(job)

	status := metrics.StatusOf(err)
	s.metrics.RecordOperation(s.ctx, "scheduler", job.Name, status)
	s.metrics.RecordDuration(s.ctx, "scheduler", job.Name, time.Since(start), status)

	if err != nil {
		logger.Error("job failed", slog.Duration("duration", time.Since(start)), slog.Any("error", err))
		return
	}
	logger.Info("job finished", slog.Duration("duration", time.Since(start)))
}

func (s *Scheduler) invoke(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(s.ctx)
}

// cronLogger adapts slog to the cron logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
