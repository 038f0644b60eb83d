package usecase

import (
	"log/slog"
	"time"

	"github.com/diffrun/opsdesk/internal/database"
)

// Config bounds the size of each job run.
type Config struct {
	NudgeBatchSize     int
	FeedbackBatchSize  int
	ReconcileBatchSize int
	// ReconcileStaleAfter is how long an order must sit unchanged before it is reconciled.
	ReconcileStaleAfter time.Duration
	// FeedbackLookback bounds how old a processed order may be to get a feedback email.
	FeedbackLookback time.Duration
}

// DefaultConfig returns the production batch sizes.
func DefaultConfig() Config {
	return Config{
		NudgeBatchSize:      200,
		FeedbackBatchSize:   200,
		ReconcileBatchSize:  100,
		ReconcileStaleAfter: 5 * time.Minute,
		FeedbackLookback:    90 * 24 * time.Hour,
	}
}

// jobsUseCase implements JobsUseCase.
type jobsUseCase struct {
	config    Config
	txManager database.TxManager
	orderRepo OrderRepository
	outbox    OutboxWriter
	mailer    Mailer
	tracker   Tracker
	shipments ShipmentApplier
	location  *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewJobsUseCase creates a new JobsUseCase.
func NewJobsUseCase(
	config Config,
	txManager database.TxManager,
	orderRepo OrderRepository,
	outbox OutboxWriter,
	mailer Mailer,
	tracker Tracker,
	shipments ShipmentApplier,
	location *time.Location,
	logger *slog.Logger,
) JobsUseCase {
	return &jobsUseCase{
		config:    config,
		txManager: txManager,
		orderRepo: orderRepo,
		outbox:    outbox,
		mailer:    mailer,
		tracker:   tracker,
		shipments: shipments,
		location:  location,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}
