package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents where a task sits in its workflow.
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority ranks how urgent a task is.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID           = errors.New("task ID cannot be empty")
	ErrEmptyTaskProjectID    = errors.New("task project ID cannot be empty")
	ErrEmptyTaskTitle        = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong      = errors.New("task title must be at most 200 characters long")
	ErrInvalidTaskStatus     = errors.New("invalid task status")
	ErrInvalidTaskPriority   = errors.New("invalid task priority")
	ErrDueDateBeforeCreation = errors.New("due date cannot be before task creation")
	ErrTaskDeleted           = errors.New("task has been deleted")
)

// Task is a unit of work inside a project. Tasks are soft deleted:
// a deleted task keeps its row but disappears from every listing.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	AssigneeID  *uuid.UUID   `json:"assignee_id,omitempty"`
	CreatedBy   *uuid.UUID   `json:"created_by,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	IsDeleted   bool         `json:"-"`
	DeletedAt   *time.Time   `json:"-"`

	// ReminderSentAt records when a due-soon reminder was enqueued,
	// so the scheduler does not send one twice.
	ReminderSentAt *time.Time `json:"-"`
}

// NewTask creates a new Task in the given project. Empty status and
// priority default to todo and medium. Returns an error if validation
// fails, including a due date earlier than the creation time.
func NewTask(
	projectID uuid.UUID,
	createdBy uuid.UUID,
	title, description string,
	status TaskStatus,
	priority TaskPriority,
	dueDate *time.Time,
) (*Task, error) {
	if status == "" {
		status = TaskStatusTodo
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if createdBy != uuid.Nil {
		task.CreatedBy = &createdBy
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.ProjectID == uuid.Nil {
		return ErrEmptyTaskProjectID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if len(t.Title) > 200 {
		return ErrTaskTitleTooLong
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if !isValidTaskPriority(t.Priority) {
		return ErrInvalidTaskPriority
	}

	if t.DueDate != nil && t.DueDate.Before(t.CreatedAt) {
		return ErrDueDateBeforeCreation
	}

	return nil
}

// Assign sets or clears the task's assignee and bumps UpdatedAt.
func (t *Task) Assign(userID *uuid.UUID) {
	t.AssigneeID = userID
	t.UpdatedAt = time.Now().UTC()
}

// UpdateStatus changes the task's workflow status.
// Returns an error if the new status is invalid.
func (t *Task) UpdateStatus(status TaskStatus) error {
	if !isValidTaskStatus(status) {
		return ErrInvalidTaskStatus
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkDeleted soft deletes the task. Deleting twice is a no-op.
func (t *Task) MarkDeleted() {
	if t.IsDeleted {
		return
	}
	now := time.Now().UTC()
	t.IsDeleted = true
	t.DeletedAt = &now
	t.UpdatedAt = now
}

// IsDue reports whether the task is due within the given window from now
// and still open. Tasks without a due date are never due.
func (t *Task) IsDue(window time.Duration) bool {
	if t.DueDate == nil || t.Status == TaskStatusDone || t.IsDeleted {
		return false
	}
	return t.DueDate.Before(time.Now().UTC().Add(window))
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// isValidTaskPriority checks if the given priority is a valid TaskPriority.
func isValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}
