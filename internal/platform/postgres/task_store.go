package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/platform/logger"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
// Deleted tasks keep their rows; every query filters them out.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// taskColumns is the column list shared by all task queries, in scan order.
const taskColumns = `id, project_id, title, description, assignee_id, created_by,
		status, priority, due_date, created_at, updated_at, is_deleted, deleted_at, reminder_sent_at`

// taskOrdering sorts due work first, then urgency, then recency.
const taskOrdering = `ORDER BY due_date ASC NULLS LAST,
		CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END,
		created_at DESC`

// nullUUID adapts an optional UUID for a nullable column.
func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// nullTime adapts an optional timestamp for a nullable column.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// scanTask reads one task row from the given scanner.
func scanTask(scanner interface{ Scan(dest ...any) error }) (*domain.Task, error) {
	var task domain.Task
	var status, priority string
	var assigneeID, createdBy uuid.NullUUID
	var dueDate, deletedAt, reminderSentAt sql.NullTime

	err := scanner.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&assigneeID,
		&createdBy,
		&status,
		&priority,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.IsDeleted,
		&deletedAt,
		&reminderSentAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	if assigneeID.Valid {
		id := assigneeID.UUID
		task.AssigneeID = &id
	}
	if createdBy.Valid {
		id := createdBy.UUID
		task.CreatedBy = &id
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		task.DeletedAt = &t
	}
	if reminderSentAt.Valid {
		t := reminderSentAt.Time
		task.ReminderSentAt = &t
	}

	return &task, nil
}

// appendFilter extends the WHERE conditions and argument list with the
// non-zero fields of the filter. Argument positions continue from
// len(args).
func appendFilter(conditions []string, args []any, filter store.TaskFilter) ([]string, []any) {
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.AssigneeID != uuid.Nil {
		args = append(args, filter.AssigneeID)
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", len(args)))
	}
	return conditions, args
}

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if the project or assignee does not
// exist, or if the due date violates the due-after-creation check.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, project_id, title, description, assignee_id, created_by,
			status, priority, due_date, created_at, updated_at, is_deleted, deleted_at, reminder_sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Description,
		nullUUID(task.AssigneeID),
		nullUUID(task.CreatedBy),
		task.Status,
		task.Priority,
		nullTime(task.DueDate),
		task.CreatedAt,
		task.UpdatedAt,
		task.IsDeleted,
		nullTime(task.DeletedAt),
		nullTime(task.ReminderSentAt),
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("project_id", task.ProjectID.String()))
			return fmt.Errorf("%w: project or assignee not found", store.ErrInvalidEntity)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("project_id", task.ProjectID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("project_id", task.ProjectID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist or is soft deleted.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND is_deleted = FALSE`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist or is soft deleted.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, assignee_id = $3, status = $4,
			priority = $5, due_date = $6, updated_at = $7
		WHERE id = $8 AND is_deleted = FALSE
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		nullUUID(task.AssigneeID),
		task.Status,
		task.Priority,
		nullTime(task.DueDate),
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task update",
				slog.String("task_id", task.ID.String()))
			return fmt.Errorf("%w: assignee not found", store.ErrInvalidEntity)
		}

		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// SoftDelete implements store.TaskStore.SoftDelete
// Returns store.ErrTaskNotFound if the task does not exist or is already deleted.
func (s *PostgresTaskStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()

	query := `
		UPDATE tasks
		SET is_deleted = TRUE, deleted_at = $1, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE
	`

	result, err := s.db.ExecContext(ctx, query, now, id)
	if err != nil {
		log.Error("failed to soft delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for delete",
			slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task soft deleted successfully",
		slog.String("task_id", id.String()))
	return nil
}

// ListByProject implements store.TaskStore.ListByProject
func (s *PostgresTaskStore) ListByProject(
	ctx context.Context,
	projectID uuid.UUID,
	filter store.TaskFilter,
	offset, limit int,
) ([]*domain.Task, int, error) {
	conditions := []string{"project_id = $1", "is_deleted = FALSE"}
	args := []any{projectID}
	conditions, args = appendFilter(conditions, args, filter)

	return s.listTasks(ctx, conditions, args, offset, limit)
}

// ListByAssignee implements store.TaskStore.ListByAssignee
func (s *PostgresTaskStore) ListByAssignee(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
	offset, limit int,
) ([]*domain.Task, int, error) {
	conditions := []string{"assignee_id = $1", "is_deleted = FALSE"}
	args := []any{userID}
	// An assignee filter is redundant here; status and priority still apply.
	filter.AssigneeID = uuid.Nil
	conditions, args = appendFilter(conditions, args, filter)

	return s.listTasks(ctx, conditions, args, offset, limit)
}

// listTasks runs the shared count-then-page query pair for the given
// WHERE conditions.
func (s *PostgresTaskStore) listTasks(
	ctx context.Context,
	conditions []string,
	args []any,
	offset, limit int,
) ([]*domain.Task, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	where := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM tasks WHERE ` + where

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()))
		return nil, 0, err
	}

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := fmt.Sprintf(
		`SELECT %s FROM tasks WHERE %s %s LIMIT $%d OFFSET $%d`,
		taskColumns, where, taskOrdering, limitPos, offsetPos,
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()))
		return nil, 0, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning task rows",
			slog.String("error", err.Error()))
		return nil, 0, err
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, total, nil
}

// ListDueSoon implements store.TaskStore.ListDueSoon
// It returns open tasks due before the deadline that have no reminder
// recorded yet, soonest first.
func (s *PostgresTaskStore) ListDueSoon(ctx context.Context, deadline time.Time) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE is_deleted = FALSE
			AND status != $1
			AND due_date IS NOT NULL
			AND due_date <= $2
			AND reminder_sent_at IS NULL
		ORDER BY due_date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, domain.TaskStatusDone, deadline)
	if err != nil {
		log.Error("failed to query due tasks",
			slog.String("error", err.Error()),
			slog.Time("deadline", deadline))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan due task row",
				slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning due task rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

// MarkReminderSent implements store.TaskStore.MarkReminderSent
// Returns store.ErrTaskNotFound if the task does not exist or is soft deleted.
func (s *PostgresTaskStore) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET reminder_sent_at = $1
		WHERE id = $2 AND is_deleted = FALSE
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to mark reminder sent",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		log.Debug("task not found for reminder update",
			slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	return nil
}

// WithTx implements store.TaskStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}
