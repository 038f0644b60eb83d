// Package http provides the operator authentication middleware, rate limits
// and the token endpoint.
package http

import (
	"context"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
)

type operatorKey struct{}

// WithOperator stores the authenticated operator in the context.
func WithOperator(ctx context.Context, operator *authDomain.Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, operator)
}

// GetOperator retrieves the authenticated operator from the context.
func GetOperator(ctx context.Context) (*authDomain.Operator, bool) {
	operator, ok := ctx.Value(operatorKey{}).(*authDomain.Operator)
	return operator, ok && operator != nil
}

// ActorEmail returns the authenticated operator's email, or "" when the
// request is unauthenticated.
func ActorEmail(ctx context.Context) string {
	if operator, ok := GetOperator(ctx); ok {
		return operator.Email
	}
	return ""
}
