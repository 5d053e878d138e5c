package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
)

// TaskFilter narrows task listings. Zero values mean "no filter".
type TaskFilter struct {
	Status     domain.TaskStatus
	Priority   domain.TaskPriority
	AssigneeID uuid.UUID
}

// TaskStore defines the interface for task data persistence.
// All reads exclude soft-deleted tasks.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the due date violates the schema's
	// due-after-creation check.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist or is soft deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update modifies an existing task.
	// Returns ErrTaskNotFound if the task does not exist or is soft deleted.
	Update(ctx context.Context, task *domain.Task) error

	// SoftDelete hides a task from all listings while keeping the row.
	// Returns ErrTaskNotFound if the task does not exist or is already deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// ListByProject returns a project's tasks matching the filter, ordered
	// by due date, priority, and creation time, with the total count
	// before paging.
	ListByProject(ctx context.Context, projectID uuid.UUID, filter TaskFilter, offset, limit int) ([]*domain.Task, int, error)

	// ListByAssignee returns tasks assigned to the user across all
	// projects, with the total count before paging.
	ListByAssignee(ctx context.Context, userID uuid.UUID, filter TaskFilter, offset, limit int) ([]*domain.Task, int, error)

	// ListDueSoon returns open tasks due before the deadline that have not
	// had a reminder sent yet. Used by the reminder scheduler.
	ListDueSoon(ctx context.Context, deadline time.Time) ([]*domain.Task, error)

	// MarkReminderSent records that a due-soon reminder was enqueued for
	// the task so the scheduler skips it on later scans.
	MarkReminderSent(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
