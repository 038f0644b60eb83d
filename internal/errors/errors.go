// Package errors defines the domain error kinds shared by every module.
// Use cases wrap one of these sentinels and handlers map the kind to a status.
package errors

import (
	"errors"
	"fmt"
)

// Domain error kinds.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrLocked means another operator holds the record.
	ErrLocked = errors.New("locked")

	// ErrPreconditionFailed means a conditional write found the record in an unexpected state.
	ErrPreconditionFailed = errors.New("precondition failed")
)

// New is errors.New.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message, keeping err in the chain. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is is errors.Is, re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// MaxMessageLength bounds error text persisted alongside a record.
const MaxMessageLength = 1000

// Truncate returns the message of err cut to at most limit runes. A nil error yields "".
func Truncate(err error, limit int) string {
	if err == nil {
		return ""
	}
	msg := []rune(err.Error())
	if len(msg) <= limit {
		return string(msg)
	}
	return string(msg[:limit])
}
