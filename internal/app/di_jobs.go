package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	jobsHTTP "github.com/diffrun/opsdesk/internal/jobs/http"
	"github.com/diffrun/opsdesk/internal/jobs/scheduler"
	jobsUseCase "github.com/diffrun/opsdesk/internal/jobs/usecase"
	"github.com/diffrun/opsdesk/internal/notification"
	outboxRepository "github.com/diffrun/opsdesk/internal/outbox/repository"
	outboxUseCase "github.com/diffrun/opsdesk/internal/outbox/usecase"
	"github.com/diffrun/opsdesk/internal/partner"
)

// Job names registered with the scheduler.
const (
	JobNudges    = "nudges"
	JobFeedback  = "feedback_emails"
	JobReconcile = "reconcile"
)

// OutboxRepository returns the outbox event repository.
func (c *Container) OutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	return c.outboxRepo.get(func() (outboxUseCase.OutboxEventRepository, error) {
		return driverSwitch(c, "outbox repository",
			func(db *sql.DB) outboxUseCase.OutboxEventRepository {
				return outboxRepository.NewPostgreSQLOutboxEventRepository(db)
			},
			func(db *sql.DB) outboxUseCase.OutboxEventRepository {
				return outboxRepository.NewMySQLOutboxEventRepository(db)
			},
		)
	})
}

// Mailer returns the configured mailer.
func (c *Container) Mailer() (notification.Mailer, error) {
	return c.mailer.get(func() (notification.Mailer, error) {
		switch c.config.EmailDriver {
		case "log":
			return notification.NewLogMailer(c.Logger()), nil
		case "smtp":
			mailer, err := notification.NewSMTPMailer(notification.SMTPConfig{
				Host:     c.config.SMTPHost,
				Port:     c.config.SMTPPort,
				Username: c.config.SMTPUsername,
				Password: c.config.SMTPPassword,
				From:     c.config.EmailFrom,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create smtp mailer: %w", err)
			}
			return mailer, nil
		default:
			return nil, fmt.Errorf("unsupported email driver: %s", c.config.EmailDriver)
		}
	})
}

// OutboxUseCase returns the outbox worker delivering queued emails.
func (c *Container) OutboxUseCase() (outboxUseCase.UseCase, error) {
	return c.outboxUseCase.get(func() (outboxUseCase.UseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return nil, err
		}
		mailer, err := c.Mailer()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		logger := c.Logger()
		return outboxUseCase.NewOutboxUseCase(
			outboxUseCase.Config{
				Interval:   c.config.OutboxPollInterval,
				BatchSize:  c.config.OutboxBatchSize,
				MaxRetries: c.config.OutboxMaxRetries,
			},
			txManager,
			outboxRepo,
			notification.NewDispatcher(mailer, businessMetrics, logger),
			businessMetrics,
			logger,
		), nil
	})
}

// ShiprocketClient returns the Shiprocket API client.
func (c *Container) ShiprocketClient() (*partner.ShiprocketClient, error) {
	return c.shiprocket.get(func() (*partner.ShiprocketClient, error) {
		return partner.NewShiprocketClient(partner.ShiprocketConfig{
			BaseURL:  c.config.ShiprocketBaseURL,
			Email:    c.config.ShiprocketEmail,
			Password: c.config.ShiprocketPassword,
			Timeout:  c.config.ShiprocketTimeout,
		}, c.Logger()), nil
	})
}

// CloudprinterClient returns the Cloudprinter API client.
func (c *Container) CloudprinterClient() (*partner.CloudprinterClient, error) {
	return c.cloudprinter.get(func() (*partner.CloudprinterClient, error) {
		return partner.NewCloudprinterClient(partner.CloudprinterConfig{
			BaseURL: c.config.CloudprinterBaseURL,
			APIKey:  c.config.CloudprinterAPIKey,
			Timeout: c.config.CloudprinterTimeout,
		}, c.Logger()), nil
	})
}

// JobsUseCase returns the scheduled jobs use case, decorated with metrics.
func (c *Container) JobsUseCase() (jobsUseCase.JobsUseCase, error) {
	return c.jobsUseCase.get(func() (jobsUseCase.JobsUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		orderRepo, err := c.OrderRepository()
		if err != nil {
			return nil, err
		}
		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return nil, err
		}
		mailer, err := c.Mailer()
		if err != nil {
			return nil, err
		}
		tracker, err := c.ShiprocketClient()
		if err != nil {
			return nil, err
		}
		webhooks, err := c.WebhookUseCase()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		config := jobsUseCase.DefaultConfig()
		config.NudgeBatchSize = c.config.NudgeBatchSize
		config.FeedbackBatchSize = c.config.FeedbackBatchSize
		config.ReconcileBatchSize = c.config.ReconcileBatchSize

		useCase := jobsUseCase.NewJobsUseCase(
			config,
			txManager,
			orderRepo,
			outboxRepo,
			mailer,
			tracker,
			webhooks,
			c.location,
			c.Logger(),
		)
		return jobsUseCase.NewJobsUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// JobsHandler returns the manual job trigger handler.
func (c *Container) JobsHandler() (*jobsHTTP.JobsHandler, error) {
	return c.jobsHandler.get(func() (*jobsHTTP.JobsHandler, error) {
		useCase, err := c.JobsUseCase()
		if err != nil {
			return nil, err
		}
		return jobsHTTP.NewJobsHandler(useCase, c.Logger()), nil
	})
}

// Scheduler returns the cron scheduler with the nudge, feedback and reconcile
// jobs registered.
func (c *Container) Scheduler() (*scheduler.Scheduler, error) {
	return c.scheduler.get(func() (*scheduler.Scheduler, error) {
		useCase, err := c.JobsUseCase()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		s := scheduler.New(c.location, businessMetrics, c.Logger())
		jobs := []scheduler.Job{
			{
				Name: JobNudges,
				Spec: c.config.NudgeSchedule,
				Run: func(ctx context.Context) error {
					_, err := useCase.RunNudges(ctx, time.Now().UTC())
					return err
				},
			},
			{
				Name: JobFeedback,
				Spec: c.config.FeedbackSchedule,
				Run: func(ctx context.Context) error {
					_, err := useCase.RunFeedbackEmails(ctx, time.Now().UTC(), c.config.FeedbackBatchSize)
					return err
				},
			},
			{
				Name: JobReconcile,
				Spec: c.config.ReconcileSchedule,
				Run: func(ctx context.Context) error {
					_, err := useCase.RunReconcile(ctx, time.Now().UTC())
					return err
				},
			},
		}
		for _, job := range jobs {
			if err := s.Add(job); err != nil {
				return nil, fmt.Errorf("failed to schedule %s: %w", job.Name, err)
			}
		}
		return s, nil
	})
}
