package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// mockResult implements sql.Result for testing
type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (m mockResult) RowsAffected() (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.rowsAffected, nil
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		expectedError error
	}{
		{
			name:          "nil_error",
			err:           nil,
			expectedError: nil,
		},
		{
			name:          "sql_no_rows",
			err:           sql.ErrNoRows,
			expectedError: store.ErrNotFound,
		},
		{
			name: "unique_violation",
			err: &pgconn.PgError{
				Code:           uniqueViolationCode,
				ConstraintName: "users_email_key",
			},
			expectedError: store.ErrDuplicate,
		},
		{
			name: "foreign_key_violation",
			err: &pgconn.PgError{
				Code:           foreignKeyViolationCode,
				ConstraintName: "tasks_project_id_fkey",
			},
			expectedError: store.ErrInvalidEntity,
		},
		{
			name: "check_violation",
			err: &pgconn.PgError{
				Code:           checkViolationCode,
				ConstraintName: "tasks_due_date_check",
			},
			expectedError: store.ErrInvalidEntity,
		},
		{
			name: "not_null_violation",
			err: &pgconn.PgError{
				Code:       notNullViolationCode,
				ColumnName: "email",
			},
			expectedError: store.ErrInvalidEntity,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mapped := MapError(tc.err)

			if tc.expectedError == nil && tc.err == nil {
				assert.NoError(t, mapped)
				return
			}
			require.Error(t, mapped)
			assert.ErrorIs(t, mapped, tc.expectedError)
		})
	}

	t.Run("unmapped_errors_pass_through", func(t *testing.T) {
		t.Parallel()

		original := errors.New("connection refused")
		assert.Equal(t, original, MapError(original))

		pgErr := &pgconn.PgError{Code: "57014"} // query_canceled
		assert.Equal(t, error(pgErr), MapError(pgErr))
	})

	t.Run("wrapped_pg_errors_are_unwrapped", func(t *testing.T) {
		t.Parallel()

		inner := &pgconn.PgError{Code: uniqueViolationCode}
		wrapped := fmt.Errorf("insert failed: %w", inner)

		assert.ErrorIs(t, MapError(wrapped), store.ErrDuplicate)
	})
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	unique := &pgconn.PgError{Code: uniqueViolationCode}
	foreignKey := &pgconn.PgError{Code: foreignKeyViolationCode}
	check := &pgconn.PgError{Code: checkViolationCode}
	notNull := &pgconn.PgError{Code: notNullViolationCode}
	other := errors.New("not a pg error")

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(foreignKey))
	assert.False(t, IsUniqueViolation(other))
	assert.False(t, IsUniqueViolation(nil))

	assert.True(t, IsForeignKeyViolation(foreignKey))
	assert.False(t, IsForeignKeyViolation(unique))

	assert.True(t, IsCheckConstraintViolation(check))
	assert.False(t, IsCheckConstraintViolation(notNull))

	assert.True(t, IsNotNullViolation(notNull))
	assert.False(t, IsNotNullViolation(check))

	// Predicates see through wrapping.
	assert.True(t, IsUniqueViolation(fmt.Errorf("create: %w", unique)))
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", store.ErrNotFound)))
	assert.False(t, IsNotFoundError(errors.New("boom")))
	assert.False(t, IsNotFoundError(nil))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	t.Run("nil_result", func(t *testing.T) {
		t.Parallel()

		err := CheckRowsAffected(nil, "user")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil result")
	})

	t.Run("rows_affected", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, CheckRowsAffected(mockResult{rowsAffected: 1}, "user"))
	})

	t.Run("no_rows_with_entity_name", func(t *testing.T) {
		t.Parallel()

		err := CheckRowsAffected(mockResult{rowsAffected: 0}, "task")
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Contains(t, err.Error(), "task not found")
	})

	t.Run("no_rows_without_entity_name", func(t *testing.T) {
		t.Parallel()

		err := CheckRowsAffected(mockResult{rowsAffected: 0}, "")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("rows_affected_error", func(t *testing.T) {
		t.Parallel()

		err := CheckRowsAffected(mockResult{err: errors.New("driver does not support RowsAffected")}, "user")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get rows affected")
	})
}

func TestMapUniqueViolation(t *testing.T) {
	t.Parallel()

	unique := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"}

	t.Run("non_unique_errors_pass_through", func(t *testing.T) {
		t.Parallel()

		original := errors.New("timeout")
		assert.Equal(t, original, MapUniqueViolation(original, "user", "", nil))
	})

	t.Run("specific_error_wins", func(t *testing.T) {
		t.Parallel()

		err := MapUniqueViolation(unique, "user", "users_email_key", store.ErrEmailExists)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("entity_name_message", func(t *testing.T) {
		t.Parallel()

		err := MapUniqueViolation(unique, "user", "", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrDuplicate)
		assert.Contains(t, err.Error(), "user already exists")
	})

	t.Run("constraint_name_message", func(t *testing.T) {
		t.Parallel()

		err := MapUniqueViolation(unique, "", "users_email_key", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrDuplicate)
		assert.Contains(t, err.Error(), "users_email_key")
	})

	t.Run("fallback_message", func(t *testing.T) {
		t.Parallel()

		err := MapUniqueViolation(unique, "", "", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrDuplicate)
		assert.Contains(t, err.Error(), "duplicate entry")
	})
}
