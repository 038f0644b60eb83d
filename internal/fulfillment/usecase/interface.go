// Package usecase implements the bulk fulfillment operations: sending approved
// books to the printer, booking shipments and withdrawing approvals. Each id of
// a bulk request is processed on its own and reported as success, error or
// skipped.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	fulfillmentDomain "github.com/diffrun/opsdesk/internal/fulfillment/domain"
	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	outboxDomain "github.com/diffrun/opsdesk/internal/outbox/domain"
	"github.com/diffrun/opsdesk/internal/partner"
)

// OrderRepository defines the order persistence operations fulfillment needs.
type OrderRepository interface {
	GetByOrderID(ctx context.Context, orderID string) (*ordersDomain.Order, error)
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*ordersDomain.Order, error)
	GetByJobID(ctx context.Context, jobID string) (*ordersDomain.Order, error)
	Update(ctx context.Context, o *ordersDomain.Order) error
	ClaimPrintSubmission(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	ReleasePrintSubmission(ctx context.Context, id uuid.UUID, previous string, at time.Time) error
	MarkSentToPrinter(ctx context.Context, id uuid.UUID, d ordersDomain.PrintDispatch) error
	SaveShipmentBooking(ctx context.Context, id uuid.UUID, b ordersDomain.ShipmentBooking) error
	SetApproved(ctx context.Context, id uuid.UUID, approved bool, at time.Time) error
	ClaimNotification(ctx context.Context, id uuid.UUID, kind ordersDomain.NotificationKind, at time.Time) (bool, error)
}

// OutboxWriter enqueues deferred side effects in the caller's transaction.
type OutboxWriter interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// Printer submits print orders.
type Printer interface {
	AddOrder(ctx context.Context, order partner.PrintOrder) (string, error)
}

// Shipper books shipments with the shipping partner.
type Shipper interface {
	Login(ctx context.Context) (string, error)
	CreateAdhocOrder(ctx context.Context, order partner.AdhocOrder) (*partner.AdhocOrderResult, error)
	AssignAWB(ctx context.Context, shipmentID string) (*partner.AWBAssignment, error)
	GeneratePickup(ctx context.Context, shipmentIDs []string) (*partner.PickupRequest, error)
}

// ArtifactStore reads and moves the generated files of a preview job.
type ArtifactStore interface {
	Approved(ctx context.Context, jobID string) (*fulfillmentDomain.Artifacts, error)
	MoveToPrevious(ctx context.Context, jobID string) (int, error)
}

// FulfillmentUseCase defines the bulk fulfillment operations. Per-item failures
// are reported in the result; the error return is reserved for cancellation.
type FulfillmentUseCase interface {
	// ApprovePrinting sends each order to the printer and claims the production email.
	ApprovePrinting(ctx context.Context, orderIDs []string, actor string) (*fulfillmentDomain.BulkResult, error)
	// CreateShipments books a shipment for each order or reprint id, optionally
	// assigning a courier and requesting pickup.
	CreateShipments(
		ctx context.Context,
		orderIDs []string,
		assignAWB, requestPickup bool,
	) (*fulfillmentDomain.BulkResult, error)
	// Unapprove withdraws the approval of each job and moves its files aside.
	Unapprove(ctx context.Context, jobIDs []string) (*fulfillmentDomain.BulkResult, error)
}
