package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/diffrun/opsdesk/internal/database"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/webhook/domain"
)

// MySQLEventRepository handles webhook dedup rows for MySQL.
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQLEventRepository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Insert records the dedup key and reports whether this call inserted it.
// InnoDB keeps the transaction usable after a duplicate-key error.
func (r *MySQLEventRepository) Insert(ctx context.Context, event *domain.Event) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO webhook_events (dedup_key, provider, order_ref, received_at) VALUES (?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, event.DedupKey, event.Provider, event.OrderRef, event.ReceivedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, apperrors.Wrap(err, "failed to insert webhook event")
	}
	return true, nil
}

// CountReceivedBefore counts dedup rows older than before.
func (r *MySQLEventRepository) CountReceivedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var n int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM webhook_events WHERE received_at < ?`, before).Scan(&n)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count webhook events")
	}
	return n, nil
}

// DeleteReceivedBefore purges dedup rows older than before.
func (r *MySQLEventRepository) DeleteReceivedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	res, err := querier.ExecContext(ctx, `DELETE FROM webhook_events WHERE received_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete webhook events")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted webhook events")
	}
	return n, nil
}
