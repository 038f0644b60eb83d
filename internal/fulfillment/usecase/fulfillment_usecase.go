package usecase

import (
	"log/slog"
	"time"

	"github.com/diffrun/opsdesk/internal/database"
	"github.com/diffrun/opsdesk/internal/errors"
	fulfillmentDomain "github.com/diffrun/opsdesk/internal/fulfillment/domain"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
)

// Config holds partner account settings used when building requests.
type Config struct {
	// ContactEmail is the account address sent with every print order.
	ContactEmail string
	// PickupLocation is the Shiprocket pickup used for printers without their own.
	PickupLocation string
}

// fulfillmentUseCase implements FulfillmentUseCase.
type fulfillmentUseCase struct {
	config    Config
	txManager database.TxManager
	orderRepo OrderRepository
	outbox    OutboxWriter
	printer   Printer
	shipper   Shipper
	artifacts ArtifactStore
	location  *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// NewFulfillmentUseCase creates a new FulfillmentUseCase.
func NewFulfillmentUseCase(
	config Config,
	txManager database.TxManager,
	orderRepo OrderRepository,
	outbox OutboxWriter,
	printer Printer,
	shipper Shipper,
	artifacts ArtifactStore,
	location *time.Location,
	logger *slog.Logger,
) FulfillmentUseCase {
	return &fulfillmentUseCase{
		config:    config,
		txManager: txManager,
		orderRepo: orderRepo,
		outbox:    outbox,
		printer:   printer,
		shipper:   shipper,
		artifacts: artifacts,
		location:  location,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func itemError(id, step string, err error) fulfillmentDomain.ItemResult {
	return fulfillmentDomain.ItemResult{
		ID:      id,
		Status:  fulfillmentDomain.ItemError,
		Step:    step,
		Message: errors.Truncate(err, errors.MaxMessageLength),
	}
}

func itemSkipped(id, step, message string) fulfillmentDomain.ItemResult {
	return fulfillmentDomain.ItemResult{
		ID:      id,
		Status:  fulfillmentDomain.ItemSkipped,
		Step:    step,
		Message: message,
	}
}

// lookupFailure maps a failed order lookup onto an item result.
func lookupFailure(id string, err error) fulfillmentDomain.ItemResult {
	if errors.Is(err, errors.ErrNotFound) {
		return itemError(id, fulfillmentDomain.StepDatabaseLookup, ordersDomain.ErrOrderNotFound)
	}
	return itemError(id, fulfillmentDomain.StepProcessing, err)
}

func (f *fulfillmentUseCase) logSummary(operation string, result *fulfillmentDomain.BulkResult) {
	f.logger.Info("bulk operation finished",
		slog.String("operation", operation),
		slog.Int("total", result.Summary.Total),
		slog.Int("success", result.Summary.Success),
		slog.Int("error", result.Summary.Error),
		slog.Int("skipped", result.Summary.Skipped),
	)
}
