// Package domain defines outbox events: side effects recorded in the same
// transaction as the state change that triggers them and delivered later.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// Customer email event types.
const (
	EventEmailPickupShipped = "email.pickup_shipped"
	EventEmailProduction    = "email.production"
	EventEmailFeedback      = "email.feedback"
)

// OutboxEvent represents an event in the transactional outbox pattern.
// AggregateID names the order the event belongs to.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	AggregateID string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EmailPayload is the payload of every customer email event.
type EmailPayload struct {
	OrderID        string `json:"order_id"`
	JobID          string `json:"job_id,omitempty"`
	Email          string `json:"email"`
	CustomerName   string `json:"customer_name,omitempty"`
	ChildName      string `json:"child_name,omitempty"`
	Locale         string `json:"locale,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	TrackingURL    string `json:"tracking_url,omitempty"`
	CourierPartner string `json:"courier_partner,omitempty"`
}

// NewEmailEvent builds a pending email event for an order.
func NewEmailEvent(eventType string, payload EmailPayload, now time.Time) (*OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:          uuid.Must(uuid.NewV7()),
		EventType:   eventType,
		AggregateID: payload.OrderID,
		Payload:     string(raw),
		Status:      OutboxEventStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// DecodeEmailPayload parses the payload of an email event.
func (e *OutboxEvent) DecodeEmailPayload() (EmailPayload, error) {
	var payload EmailPayload
	err := json.Unmarshal([]byte(e.Payload), &payload)
	return payload, err
}
