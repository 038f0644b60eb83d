package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/diffrun/opsdesk/internal/database"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/reports/domain"
)

// MySQLReportRepository reads report facts from MySQL.
type MySQLReportRepository struct {
	db *sql.DB
}

// NewMySQLReportRepository creates a new MySQL report repository.
func NewMySQLReportRepository(db *sql.DB) *MySQLReportRepository {
	return &MySQLReportRepository{db: db}
}

// ListFacts returns the eligible orders selected by q, oldest first.
func (r *MySQLReportRepository) ListFacts(ctx context.Context, q domain.FactQuery) ([]domain.Fact, error) {
	querier := database.GetTx(ctx, r.db)

	query, args := mysqlDialect.buildFactQuery(q)
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list report facts")
	}
	defer func() {
		_ = rows.Close()
	}()

	facts, err := scanFacts(rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan report facts")
	}
	return facts, nil
}

// ListJobCreations returns the creation times of preview jobs created in w.
func (r *MySQLReportRepository) ListJobCreations(
	ctx context.Context,
	w domain.Window,
	locale *domain.LocaleFilter,
) ([]time.Time, error) {
	querier := database.GetTx(ctx, r.db)

	query, args := mysqlDialect.buildJobQuery(w, locale)
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list job creations")
	}
	defer func() {
		_ = rows.Close()
	}()

	times, err := scanTimes(rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan job creations")
	}
	return times, nil
}
