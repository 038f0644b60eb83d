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

// MySQLOperatorRepository implements operator persistence for MySQL. IDs are
// stored as BINARY(16).
type MySQLOperatorRepository struct {
	db *sql.DB
}

// NewMySQLOperatorRepository creates a new MySQL operator repository.
func NewMySQLOperatorRepository(db *sql.DB) *MySQLOperatorRepository {
	return &MySQLOperatorRepository{db: db}
}

func binaryID(id uuid.UUID) ([]byte, error) {
	b, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal id")
	}
	return b, nil
}

// Create inserts an operator. Returns ErrOperatorExists on a duplicate email.
func (m *MySQLOperatorRepository) Create(ctx context.Context, op *authDomain.Operator) error {
	querier := database.GetTx(ctx, m.db)

	id, err := binaryID(op.ID)
	if err != nil {
		return err
	}

	query := `INSERT INTO operators (id, email, secret_hash, is_active, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, op.Email, op.SecretHash, op.IsActive, op.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return authDomain.ErrOperatorExists
		}
		return apperrors.Wrap(err, "failed to create operator")
	}
	return nil
}

func (m *MySQLOperatorRepository) getOne(ctx context.Context, where string, arg any) (*authDomain.Operator, error) {
	querier := database.GetTx(ctx, m.db)

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
func (m *MySQLOperatorRepository) Get(ctx context.Context, operatorID uuid.UUID) (*authDomain.Operator, error) {
	id, err := binaryID(operatorID)
	if err != nil {
		return nil, err
	}
	return m.getOne(ctx, "id = ?", id)
}

// GetByEmail retrieves an operator by email. The column collation is case-insensitive.
func (m *MySQLOperatorRepository) GetByEmail(ctx context.Context, email string) (*authDomain.Operator, error) {
	return m.getOne(ctx, "email = ?", email)
}

// MySQLTokenRepository implements Token persistence for MySQL.
type MySQLTokenRepository struct {
	db *sql.DB
}

// NewMySQLTokenRepository creates a new MySQL token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

// Create inserts a token.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, m.db)

	id, err := binaryID(token.ID)
	if err != nil {
		return err
	}
	operatorID, err := binaryID(token.OperatorID)
	if err != nil {
		return err
	}

	query := `INSERT INTO operator_tokens (id, token_hash, operator_id, expires_at, revoked_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		token.TokenHash,
		operatorID,
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
func (m *MySQLTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, token_hash, operator_id, expires_at, revoked_at, created_at
			  FROM operator_tokens WHERE token_hash = ?`

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
func (m *MySQLTokenRepository) Revoke(ctx context.Context, tokenHash string, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE operator_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL`
	if _, err := querier.ExecContext(ctx, query, at, tokenHash); err != nil {
		return apperrors.Wrap(err, "failed to revoke token")
	}
	return nil
}

// DeleteExpired removes tokens that expired before the cutoff.
func (m *MySQLTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM operator_tokens WHERE expires_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted tokens")
	}
	return n, nil
}
