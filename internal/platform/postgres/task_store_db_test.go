package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

func newMockTaskStore(t *testing.T) (*PostgresTaskStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPostgresTaskStore(db, log), mock
}

func taskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "project_id", "title", "description", "assignee_id", "created_by",
		"status", "priority", "due_date", "created_at", "updated_at",
		"is_deleted", "deleted_at", "reminder_sent_at",
	})
}

func TestPostgresTaskStore_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("found_with_nullable_columns_empty", func(t *testing.T) {
		t.Parallel()

		taskStore, mock := newMockTaskStore(t)
		id := uuid.New()
		projectID := uuid.New()
		now := time.Now().UTC().Truncate(time.Microsecond)

		rows := taskRows().AddRow(
			id.String(), projectID.String(), "Fix login flow", "", nil, nil,
			"todo", "medium", nil, now, now, false, nil, nil,
		)

		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 AND is_deleted = FALSE")).
			WithArgs(id).
			WillReturnRows(rows)

		task, err := taskStore.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, task.ID)
		assert.Equal(t, projectID, task.ProjectID)
		assert.Equal(t, domain.TaskStatusTodo, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.Nil(t, task.AssigneeID)
		assert.Nil(t, task.DueDate)
		assert.Nil(t, task.ReminderSentAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("found_with_assignee_and_due_date", func(t *testing.T) {
		t.Parallel()

		taskStore, mock := newMockTaskStore(t)
		id := uuid.New()
		assignee := uuid.New()
		now := time.Now().UTC().Truncate(time.Microsecond)
		due := now.Add(48 * time.Hour)

		rows := taskRows().AddRow(
			id.String(), uuid.New().String(), "Ship release", "cut and tag", assignee.String(), assignee.String(),
			"in_progress", "high", due, now, now, false, nil, nil,
		)

		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 AND is_deleted = FALSE")).
			WithArgs(id).
			WillReturnRows(rows)

		task, err := taskStore.GetByID(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, task.AssigneeID)
		assert.Equal(t, assignee, *task.AssigneeID)
		require.NotNil(t, task.DueDate)
		assert.True(t, task.DueDate.Equal(due))
		assert.Equal(t, domain.TaskStatusInProgress, task.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		taskStore, mock := newMockTaskStore(t)
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 AND is_deleted = FALSE")).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		_, err := taskStore.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTaskStore_Create_UnknownProject(t *testing.T) {
	t.Parallel()

	taskStore, mock := newMockTaskStore(t)

	task, err := domain.NewTask(uuid.New(), uuid.New(), "Orphan", "", "", "", nil)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WillReturnError(&pgconn.PgError{
			Code:           foreignKeyViolationCode,
			ConstraintName: "tasks_project_id_fkey",
		})

	err = taskStore.Create(context.Background(), task)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_SoftDelete(t *testing.T) {
	t.Parallel()

	t.Run("marks_row_deleted", func(t *testing.T) {
		t.Parallel()

		taskStore, mock := newMockTaskStore(t)
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
			WithArgs(sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, taskStore.SoftDelete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already_deleted_or_missing", func(t *testing.T) {
		t.Parallel()

		taskStore, mock := newMockTaskStore(t)
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
			WithArgs(sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := taskStore.SoftDelete(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
