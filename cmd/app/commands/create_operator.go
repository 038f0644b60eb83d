package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
)

// OperatorCreator creates admin operators.
type OperatorCreator interface {
	Create(ctx context.Context, email string) (*authDomain.CreateOperatorOutput, error)
}

// RunCreateOperator creates an operator and prints its one-time secret.
func RunCreateOperator(
	ctx context.Context,
	creator OperatorCreator,
	logger *slog.Logger,
	w io.Writer,
	email string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	output, err := creator.Create(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	logger.Info("operator created", slog.String("operator_id", output.ID.String()))

	result := map[string]string{
		"id":     output.ID.String(),
		"email":  output.Email,
		"secret": output.PlainSecret,
	}
	return writeResult(w, format, result, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Operator created\n")
		_, _ = fmt.Fprintf(w, "ID:     %s\n", output.ID)
		_, _ = fmt.Fprintf(w, "Email:  %s\n", output.Email)
		_, _ = fmt.Fprintf(w, "Secret: %s\n", output.PlainSecret)
		_, _ = fmt.Fprintln(w, "\nStore the secret now. It cannot be retrieved again.")
	})
}
