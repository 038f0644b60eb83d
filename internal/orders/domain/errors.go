package domain

import (
	"github.com/diffrun/opsdesk/internal/errors"
)

// Order-specific error definitions.
var (
	// ErrOrderNotFound indicates no order matched the identifier.
	ErrOrderNotFound = errors.Wrap(errors.ErrNotFound, "order not found")

	// ErrOrderLocked indicates the order is locked by another operator.
	ErrOrderLocked = errors.Wrap(errors.ErrLocked, "order is locked")

	// ErrOrderNotLocked indicates an unlock was attempted on an unlocked order.
	ErrOrderNotLocked = errors.Wrap(errors.ErrPreconditionFailed, "order is not locked")

	// ErrInvalidStatus indicates a status transition outside the allowed set.
	ErrInvalidStatus = errors.Wrap(errors.ErrInvalidInput, "invalid order status")

	// ErrInvalidIssueOrigin indicates an issue origin outside the allowed set.
	ErrInvalidIssueOrigin = errors.Wrap(errors.ErrInvalidInput, "invalid issue origin")

	// ErrImmutableField indicates a patch touched a field that cannot be edited.
	ErrImmutableField = errors.Wrap(errors.ErrInvalidInput, "field is immutable")

	// ErrMissingEmail indicates an operation needs a customer email the order lacks.
	ErrMissingEmail = errors.Wrap(errors.ErrInvalidInput, "order has no customer email")
)
