// Package commands implements the CLI commands. Each Run function takes its
// dependencies explicitly so it can be tested without a database.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// IOTuple holds the reader and writer a command talks to.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns stdin and stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

func validateFormat(format string) error {
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
	return nil
}

// writeResult prints v as indented JSON, or calls text for the text format.
func writeResult(w io.Writer, format string, v any, text func(io.Writer)) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return nil
	}
	text(w)
	return nil
}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	sourceErr, databaseErr := m.Close()
	if sourceErr != nil || databaseErr != nil {
		logger.Error("failed to close migrate",
			slog.Any("source_error", sourceErr),
			slog.Any("database_error", databaseErr),
		)
	}
}
