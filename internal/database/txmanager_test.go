package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Commit", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
			assert.True(t, InTx(ctx))
			assert.IsType(t, &sql.Tx{}, GetTx(ctx, db))
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_RollbackOnError", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
			return assert.AnError
		})

		assert.Equal(t, assert.AnError, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_RollbackFailureKeepsCause", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("connection reset"))

		err := NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
			return assert.AnError
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "rollback: connection reset")
	})

	t.Run("Error_Begin", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		err := NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
			t.Fatal("fn must not run")
			return nil
		})

		assert.EqualError(t, err, "begin transaction: too many connections")
	})

	t.Run("Error_Commit", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		err := NewTxManager(db).WithTx(ctx, func(ctx context.Context) error { return nil })

		assert.EqualError(t, err, "commit transaction: serialization failure")
	})

	t.Run("Error_PanicRollsBack", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "boom", func() {
			_ = NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
				panic("boom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_NestedJoinsOuterTx", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		txManager := NewTxManager(db)
		err := txManager.WithTx(ctx, func(outer context.Context) error {
			return txManager.WithTx(outer, func(inner context.Context) error {
				assert.Same(t, GetTx(outer, db), GetTx(inner, db))
				return nil
			})
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_GetTxWithoutTx", func(t *testing.T) {
		db, _ := newMockDB(t)
		assert.False(t, InTx(ctx))
		assert.Equal(t, db, GetTx(ctx, db))
	})
}
