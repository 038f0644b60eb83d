// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Date validates a calendar date in YYYY-MM-DD form.
var Date = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := time.Parse(time.DateOnly, s)
		return err == nil
	},
	validation.NewError("validation_date_format", "must be a date in YYYY-MM-DD format"),
)

// NonBlankItems validates that every element of a string slice is non-blank.
var NonBlankItems = validation.By(func(value any) error {
	items, ok := value.([]string)
	if !ok {
		return validation.NewError("validation_string_list", "must be a list of strings")
	}
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return validation.NewError("validation_blank_item", "must not contain blank items")
		}
	}
	return nil
})
