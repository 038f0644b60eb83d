package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailEvent(t *testing.T) {
	now := time.Now().UTC()
	event, err := NewEmailEvent(EventEmailFeedback, EmailPayload{OrderID: "1001", Email: "a@example.com"}, now)
	require.NoError(t, err)

	assert.Equal(t, EventEmailFeedback, event.EventType)
	assert.Equal(t, "1001", event.AggregateID)
	assert.Equal(t, OutboxEventStatusPending, event.Status)
	assert.Equal(t, now, event.CreatedAt)

	payload, err := event.DecodeEmailPayload()
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", payload.Email)
}

func TestDecodeEmailPayload_Invalid(t *testing.T) {
	_, err := (&OutboxEvent{Payload: "{"}).DecodeEmailPayload()
	assert.Error(t, err)
}
