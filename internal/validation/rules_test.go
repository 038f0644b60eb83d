package validation

import (
	"errors"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		shouldErr bool
	}{
		{name: "valid email", email: "ops@diffrun.com", shouldErr: false},
		{name: "valid with plus", email: "ops+admin@diffrun.co.in", shouldErr: false},
		{name: "missing at", email: "opsdiffrun.com", shouldErr: true},
		{name: "missing tld", email: "ops@diffrun", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.email, Email)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, validation.Validate("reprint requested", NotBlank))
	assert.Error(t, validation.Validate("   ", NotBlank))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, validation.Validate("12345", NoWhitespace))
	assert.Error(t, validation.Validate(" 12345", NoWhitespace))
}

func TestDate(t *testing.T) {
	assert.NoError(t, validation.Validate("2025-03-09", Date))
	assert.Error(t, validation.Validate("09-03-2025", Date))
	assert.Error(t, validation.Validate("2025-02-30", Date))
}

func TestNonBlankItems(t *testing.T) {
	assert.NoError(t, validation.Validate([]string{"#1001", "#1002"}, NonBlankItems))
	assert.Error(t, validation.Validate([]string{"#1001", " "}, NonBlankItems))
}

func TestWrapValidationError(t *testing.T) {
	assert.Nil(t, WrapValidationError(nil))

	err := WrapValidationError(errors.New("remarks: cannot be blank."))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "remarks")
}
