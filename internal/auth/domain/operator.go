// Package domain defines operator authentication: operators sign in with an
// email and secret and receive short-lived opaque bearer tokens.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operator is a staff member allowed to use the admin API.
type Operator struct {
	ID         uuid.UUID
	Email      string
	SecretHash string
	IsActive   bool
	CreatedAt  time.Time
}

// Token is an issued bearer token. Only its digest is stored.
type Token struct {
	ID         uuid.UUID
	TokenHash  string
	OperatorID uuid.UUID
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// IsUsable reports whether the token can authenticate at now.
func (t *Token) IsUsable(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}

// IssueTokenInput carries operator credentials.
type IssueTokenInput struct {
	Email  string
	Secret string
}

// IssueTokenOutput is returned once; the plain token is never stored.
type IssueTokenOutput struct {
	PlainToken string
	ExpiresAt  time.Time
}

// CreateOperatorOutput carries the generated secret, shown once.
type CreateOperatorOutput struct {
	ID          uuid.UUID
	Email       string
	PlainSecret string
}
