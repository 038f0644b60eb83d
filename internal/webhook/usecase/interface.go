// Package usecase applies partner webhooks to orders. Each delivery runs in one
// transaction: the dedup row, the order update, the notification claim and the
// outbox event commit or roll back together.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	ordersDomain "github.com/diffrun/opsdesk/internal/orders/domain"
	outboxDomain "github.com/diffrun/opsdesk/internal/outbox/domain"
	"github.com/diffrun/opsdesk/internal/webhook/domain"
)

// EventRepository persists webhook dedup keys.
type EventRepository interface {
	Insert(ctx context.Context, event *domain.Event) (bool, error)
	CountReceivedBefore(ctx context.Context, before time.Time) (int64, error)
	DeleteReceivedBefore(ctx context.Context, before time.Time) (int64, error)
}

// OrderRepository is the order surface webhooks write through. None of these
// operations creates an order.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ordersDomain.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*ordersDomain.Order, error)
	FindForShipment(ctx context.Context, orderID, awb string) (*ordersDomain.Order, error)
	ApplyShipment(ctx context.Context, id uuid.UUID, u ordersDomain.ShipmentUpdate) (bool, error)
	ApplyPrintStatus(ctx context.Context, id uuid.UUID, u ordersDomain.PrintUpdate) error
	ClaimNotification(ctx context.Context, id uuid.UUID, kind ordersDomain.NotificationKind, at time.Time) (bool, error)
	MarkShipped(ctx context.Context, id uuid.UUID, at time.Time) error
}

// OutboxWriter enqueues deferred side effects in the caller's transaction.
type OutboxWriter interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// WebhookUseCase handles partner deliveries.
type WebhookUseCase interface {
	HandleShiprocket(ctx context.Context, payload domain.ShiprocketPayload, raw []byte) (*domain.Result, error)
	HandleCloudprinter(ctx context.Context, payload domain.CloudprinterPayload) (*domain.Result, error)
	// PurgeEvents removes dedup rows older than retention. With dryRun it only counts them.
	PurgeEvents(ctx context.Context, retention time.Duration, dryRun bool) (int64, error)
}
