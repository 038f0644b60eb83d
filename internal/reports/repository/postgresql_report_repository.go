package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/diffrun/opsdesk/internal/database"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/reports/domain"
)

// PostgreSQLReportRepository reads report facts from PostgreSQL.
type PostgreSQLReportRepository struct {
	db *sql.DB
}

// NewPostgreSQLReportRepository creates a new PostgreSQL report repository.
func NewPostgreSQLReportRepository(db *sql.DB) *PostgreSQLReportRepository {
	return &PostgreSQLReportRepository{db: db}
}

// ListFacts returns the eligible orders selected by q, oldest first.
func (r *PostgreSQLReportRepository) ListFacts(ctx context.Context, q domain.FactQuery) ([]domain.Fact, error) {
	querier := database.GetTx(ctx, r.db)

	query, args := postgresDialect.buildFactQuery(q)
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
func (r *PostgreSQLReportRepository) ListJobCreations(
	ctx context.Context,
	w domain.Window,
	locale *domain.LocaleFilter,
) ([]time.Time, error) {
	querier := database.GetTx(ctx, r.db)

	query, args := postgresDialect.buildJobQuery(w, locale)
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
