// Package dto provides request and response bodies for the token endpoint.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/diffrun/opsdesk/internal/validation"
)

// IssueTokenRequest carries operator credentials.
type IssueTokenRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

// Validate checks the issue token request.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Email,
		),
		validation.Field(&r.Secret,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// IssueTokenResponse returns the bearer token, shown once.
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
