package domain

import (
	"github.com/diffrun/opsdesk/internal/errors"
)

// Authentication errors.
var (
	// ErrOperatorNotFound indicates no operator matched.
	ErrOperatorNotFound = errors.Wrap(errors.ErrNotFound, "operator not found")

	// ErrOperatorExists indicates an operator with the email is already registered.
	ErrOperatorExists = errors.Wrap(errors.ErrConflict, "operator already exists")

	// ErrTokenNotFound indicates no token matched the digest.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidCredentials covers unknown operators, wrong secrets and unusable tokens alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrOperatorInactive indicates a deactivated operator.
	ErrOperatorInactive = errors.Wrap(errors.ErrForbidden, "operator is inactive")
)
