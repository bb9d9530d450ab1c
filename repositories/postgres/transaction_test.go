package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ruthenian8/dream/repositories"
)

func newMockTxManager(t *testing.T) (*TransactionManager, *DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger := zaptest.NewLogger(t)
	db := Wrap(sqlDB, logger)
	return NewTransactionManager(db, logger), db, mock
}

func TestInTransaction(t *testing.T) {
	tests := []struct {
		name        string
		fnErr       error
		setup       func(mock sqlmock.Sqlmock)
		expectError string
	}{
		{
			name: "commits on success",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM confidence_samples").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:  "rolls back on error",
			fnErr: errors.New("insert failed"),
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM confidence_samples").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectRollback()
			},
			expectError: "insert failed",
		},
		{
			name: "begin failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("too many connections"))
			},
			expectError: "failed to begin transaction",
		},
		{
			name: "commit failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM confidence_samples").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
			},
			expectError: "failed to commit transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, db, mock := newMockTxManager(t)
			tt.setup(mock)

			err := tm.InTransaction(context.Background(), func(ctx context.Context, tx repositories.Transaction) error {
				_, execErr := GetExecutor(ctx, db).ExecContext(ctx, "DELETE FROM confidence_samples")
				require.NoError(t, execErr)
				return tt.fnErr
			})

			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetExecutor(t *testing.T) {
	tm, db, mock := newMockTxManager(t)

	ctx := context.Background()
	assert.Same(t, db.DB, GetExecutor(ctx, db))

	mock.ExpectBegin()
	mock.ExpectCommit()
	err := tm.InTransaction(ctx, func(txCtx context.Context, tx repositories.Transaction) error {
		assert.NotSame(t, db.DB, GetExecutor(txCtx, db))
		assert.Equal(t, ctx, tx.Context())
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
