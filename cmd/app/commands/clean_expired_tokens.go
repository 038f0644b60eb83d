package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// TokenCleaner deletes expired operator tokens.
type TokenCleaner interface {
	CleanupExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

// RunCleanExpiredTokens deletes tokens that expired more than days ago.
func RunCleanExpiredTokens(
	ctx context.Context,
	cleaner TokenCleaner,
	logger *slog.Logger,
	w io.Writer,
	days int,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	count, err := cleaner.CleanupExpired(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to clean expired tokens: %w", err)
	}
	logger.Info("expired tokens cleaned", slog.Int64("count", count), slog.Int("days", days))

	return writeResult(w, format, map[string]any{"count": count, "days": days}, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Deleted %d expired token(s) older than %d day(s)\n", count, days)
	})
}
