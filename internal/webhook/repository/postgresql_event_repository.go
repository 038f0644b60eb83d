// Package repository persists webhook dedup keys for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/diffrun/opsdesk/internal/database"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/webhook/domain"
)

// PostgreSQLEventRepository handles webhook dedup rows for PostgreSQL.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQLEventRepository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Insert records the dedup key and reports whether this call inserted it. A key
// already present returns false without aborting the surrounding transaction.
func (r *PostgreSQLEventRepository) Insert(ctx context.Context, event *domain.Event) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO webhook_events (dedup_key, provider, order_ref, received_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (dedup_key) DO NOTHING`

	res, err := querier.ExecContext(ctx, query, event.DedupKey, event.Provider, event.OrderRef, event.ReceivedAt)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to insert webhook event")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read webhook event insert result")
	}
	return n == 1, nil
}

// CountReceivedBefore counts dedup rows older than before.
func (r *PostgreSQLEventRepository) CountReceivedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var n int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM webhook_events WHERE received_at < $1`, before).Scan(&n)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count webhook events")
	}
	return n, nil
}

// DeleteReceivedBefore purges dedup rows older than before.
func (r *PostgreSQLEventRepository) DeleteReceivedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	res, err := querier.ExecContext(ctx, `DELETE FROM webhook_events WHERE received_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete webhook events")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted webhook events")
	}
	return n, nil
}
