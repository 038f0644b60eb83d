// Package repository persists operators and their bearer tokens.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/diffrun/opsdesk/internal/auth/domain"
	"github.com/diffrun/opsdesk/internal/database"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

// PostgreSQLOperatorRepository implements operator and token persistence for PostgreSQL.
type PostgreSQLOperatorRepository struct {
	db *sql.DB
}

// NewPostgreSQLOperatorRepository creates a new PostgreSQL operator repository.
func NewPostgreSQLOperatorRepository(db *sql.DB) *PostgreSQLOperatorRepository {
	return &PostgreSQLOperatorRepository{db: db}
}

// Create inserts an operator. Returns ErrOperatorExists on a duplicate email.
func (p *PostgreSQLOperatorRepository) Create(ctx context.Context, op *authDomain.Operator) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO operators (id, email, secret_hash, is_active, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(ctx, query, op.ID, op.Email, op.SecretHash, op.IsActive, op.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return authDomain.ErrOperatorExists
		}
		return apperrors.Wrap(err, "failed to create operator")
	}
	return nil
}

func (p *PostgreSQLOperatorRepository) getOne(ctx context.Context, where string, arg any) (*authDomain.Operator, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, email, secret_hash, is_active, created_at FROM operators WHERE ` + where

	var op authDomain.Operator
	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&op.ID, &op.Email, &op.SecretHash, &op.IsActive, &op.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrOperatorNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get operator")
	}
	return &op, nil
}

// Get retrieves an operator by ID.
func (p *PostgreSQLOperatorRepository) Get(ctx context.Context, operatorID uuid.UUID) (*authDomain.Operator, error) {
	return p.getOne(ctx, "id = $1", operatorID)
}

// GetByEmail retrieves an operator by email, ignoring case.
func (p *PostgreSQLOperatorRepository) GetByEmail(ctx context.Context, email string) (*authDomain.Operator, error) {
	return p.getOne(ctx, "LOWER(email) = LOWER($1)", email)
}

// PostgreSQLTokenRepository implements Token persistence for PostgreSQL.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

// Create inserts a token.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO operator_tokens (id, token_hash, operator_id, expires_at, revoked_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.TokenHash,
		token.OperatorID,
		token.ExpiresAt,
		token.RevokedAt,
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// GetByTokenHash retrieves a token by its digest.
func (p *PostgreSQLTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, token_hash, operator_id, expires_at, revoked_at, created_at
			  FROM operator_tokens WHERE token_hash = $1`

	var token authDomain.Token
	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.TokenHash,
		&token.OperatorID,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}
	return &token, nil
}

// Revoke stamps revoked_at on an unrevoked token.
func (p *PostgreSQLTokenRepository) Revoke(ctx context.Context, tokenHash string, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE operator_tokens SET revoked_at = $1 WHERE token_hash = $2 AND revoked_at IS NULL`
	if _, err := querier.ExecContext(ctx, query, at, tokenHash); err != nil {
		return apperrors.Wrap(err, "failed to revoke token")
	}
	return nil
}

// DeleteExpired removes tokens that expired before the cutoff.
func (p *PostgreSQLTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM operator_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted tokens")
	}
	return n, nil
}
