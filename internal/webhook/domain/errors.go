package domain

import (
	"github.com/diffrun/opsdesk/internal/errors"
)

// Webhook-specific error definitions.
var (
	// ErrInvalidToken indicates the delivery did not carry the shared secret.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid webhook token")

	// ErrUnsupportedMediaType indicates a body that is not JSON.
	ErrUnsupportedMediaType = errors.Wrap(errors.ErrInvalidInput, "content type must be application/json")
)
