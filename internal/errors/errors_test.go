package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Status int
}

func (e *apiError) Error() string { return "partner api error" }

func TestWrap(t *testing.T) {
	t.Run("Success_KeepsKindInChain", func(t *testing.T) {
		orderNotFound := Wrap(ErrNotFound, "order not found")
		err := Wrap(orderNotFound, "get order ord-1")

		assert.EqualError(t, err, "get order ord-1: order not found: not found")
		assert.True(t, Is(err, ErrNotFound))
		assert.True(t, Is(err, orderNotFound))
		assert.False(t, Is(err, ErrConflict))
	})

	t.Run("Success_NilStaysNil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
		assert.NoError(t, Wrapf(nil, "context %d", 1))
	})

	t.Run("Success_Formatted", func(t *testing.T) {
		err := Wrapf(ErrLocked, "held by %s", "ops@diffrun.com")

		assert.EqualError(t, err, "held by ops@diffrun.com: locked")
		assert.True(t, Is(err, ErrLocked))
	})
}

func TestAs(t *testing.T) {
	err := Wrap(&apiError{Status: 429}, "track awb")

	var target *apiError
	assert.True(t, As(err, &target))
	assert.Equal(t, 429, target.Status)

	assert.False(t, As(ErrNotFound, &target))
}

func TestKindsAreDistinct(t *testing.T) {
	kinds := []error{
		ErrNotFound,
		ErrConflict,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrForbidden,
		ErrLocked,
		ErrPreconditionFailed,
	}
	for i, a := range kinds {
		for j, b := range kinds {
			assert.Equal(t, i == j, errors.Is(a, b), "%v vs %v", a, b)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		limit int
		want  string
	}{
		{"nil", nil, 10, ""},
		{"short", errors.New("smtp timeout"), 100, "smtp timeout"},
		{"exact", errors.New("abcde"), 5, "abcde"},
		{"cut", errors.New("abcdefgh"), 3, "abc"},
		{"runes", errors.New("₹₹₹₹"), 2, "₹₹"},
		{"bounded", errors.New(strings.Repeat("x", 2*MaxMessageLength)), MaxMessageLength, strings.Repeat("x", MaxMessageLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.err, tt.limit))
		})
	}
}
