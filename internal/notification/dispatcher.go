package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/diffrun/opsdesk/internal/metrics"
	outboxDomain "github.com/diffrun/opsdesk/internal/outbox/domain"
)

// Dispatcher delivers outbox email events. It satisfies the outbox
// EventProcessor interface.
type Dispatcher struct {
	mailer  Mailer
	metrics metrics.BusinessMetrics
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(mailer Mailer, businessMetrics metrics.BusinessMetrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, metrics: businessMetrics, logger: logger}
}

// Process renders and sends the email for event. Unknown event types and
// payloads without a recipient are logged and dropped.
func (d *Dispatcher) Process(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	if !HasTemplate(event.EventType) {
		d.logger.Warn("dropping outbox event with unknown type",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
		)
		return nil
	}

	payload, err := event.DecodeEmailPayload()
	if err != nil {
		return err
	}
	if payload.Email == "" {
		d.logger.Warn("dropping email event without recipient",
			slog.String("event_id", event.ID.String()),
			slog.String("order_id", payload.OrderID),
		)
		return nil
	}

	msg, err := Compose(event.EventType, payload.Email, EmailData{
		OrderID:        payload.OrderID,
		JobID:          payload.JobID,
		CustomerName:   payload.CustomerName,
		ChildName:      payload.ChildName,
		TrackingNumber: payload.TrackingNumber,
		TrackingURL:    payload.TrackingURL,
		CourierPartner: payload.CourierPartner,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	err = d.mailer.Send(ctx, msg)
	status := metrics.StatusOf(err)
	d.metrics.RecordOperation(ctx, "notification", event.EventType, status)
	d.metrics.RecordDuration(ctx, "notification", event.EventType, time.Since(start), status)
	if err != nil {
		return err
	}

	d.logger.Info("email sent",
		slog.String("event_type", event.EventType),
		slog.String("order_id", payload.OrderID),
	)
	return nil
}
