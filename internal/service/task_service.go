package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// TaskService provides task operations inside projects. Writes require a
// membership whose role allows editing; viewers and non-members are
// rejected before any store mutation.
type TaskService interface {
	// CreateTask creates a task in a project the user can edit. Closed
	// projects reject new tasks.
	CreateTask(ctx context.Context, userID, projectID uuid.UUID, params CreateTaskParams) (*domain.Task, error)

	// GetTask retrieves a task the user may see. Tasks of public projects
	// are visible to any user.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a partial update to a task. Nil fields are left
	// unchanged.
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, params UpdateTaskParams) (*domain.Task, error)

	// AssignTask sets or clears the task's assignee. The assignee must be
	// a member of the task's project.
	AssignTask(ctx context.Context, userID, taskID uuid.UUID, assigneeID *uuid.UUID) (*domain.Task, error)

	// DeleteTask soft deletes a task. Owners and admins may delete any
	// task; other members only the tasks they created.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error

	// ListProjectTasks returns the page of a project's tasks matching the
	// filter, together with the total count.
	ListProjectTasks(ctx context.Context, userID, projectID uuid.UUID, filter store.TaskFilter, page PageRequest) ([]*domain.Task, int, error)

	// ListMyTasks returns the page of tasks assigned to the user across
	// all their projects, together with the total count.
	ListMyTasks(ctx context.Context, userID uuid.UUID, filter store.TaskFilter, page PageRequest) ([]*domain.Task, int, error)
}

// CreateTaskParams carries the fields of a new task. Empty status and
// priority fall back to the domain defaults.
type CreateTaskParams struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
	AssigneeID  *uuid.UUID
}

// UpdateTaskParams carries the optional fields of a task update.
// Nil pointers mean "leave unchanged".
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	DueDate     *time.Time
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskStore    store.TaskStore
	projectStore store.ProjectStore
	memberStore  store.MemberStore
	db           *sql.DB
	logger       *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskStore store.TaskStore,
	projectStore store.ProjectStore,
	memberStore store.MemberStore,
	db *sql.DB,
	logger *slog.Logger,
) TaskService {
	return &taskServiceImpl{
		taskStore:    taskStore,
		projectStore: projectStore,
		memberStore:  memberStore,
		db:           db,
		logger:       logger.With("component", "task_service"),
	}
}

// CreateTask creates a task after checking membership, project state, and
// the assignee.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	userID, projectID uuid.UUID,
	params CreateTaskParams,
) (*domain.Task, error) {
	if _, err := s.requireEditor(ctx, projectID, userID); err != nil {
		return nil, err
	}

	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve project: %w", err)
	}
	if project.IsClosed() {
		s.logger.Debug("task creation on closed project",
			"project_id", projectID,
			"user_id", userID)
		return nil, domain.ErrProjectClosed
	}

	if params.AssigneeID != nil {
		if err := s.checkAssignee(ctx, projectID, *params.AssigneeID); err != nil {
			return nil, err
		}
	}

	task, err := domain.NewTask(
		projectID,
		userID,
		params.Title,
		params.Description,
		params.Status,
		params.Priority,
		params.DueDate,
	)
	if err != nil {
		s.logger.Debug("invalid task data",
			"error", err,
			"project_id", projectID)
		return nil, fmt.Errorf("invalid task data: %w", err)
	}
	task.AssigneeID = params.AssigneeID

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		s.logger.Error("failed to save task",
			"error", err,
			"project_id", projectID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"project_id", projectID,
		"user_id", userID)

	return task, nil
}

// GetTask retrieves a task, enforcing the project's visibility.
func (s *taskServiceImpl) GetTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		s.logger.Debug("failed to retrieve task",
			"error", err,
			"task_id", taskID)
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	project, err := s.projectStore.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve project: %w", err)
	}

	if project.Status != domain.ProjectStatusPublic {
		if _, err := s.taskMember(ctx, task.ProjectID, userID); err != nil {
			return nil, err
		}
	}

	return task, nil
}

// UpdateTask applies a partial update after checking the caller's role.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	params UpdateTaskParams,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	if _, err := s.requireEditor(ctx, task.ProjectID, userID); err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		if params.Title != nil {
			task.Title = *params.Title
		}
		if params.Description != nil {
			task.Description = *params.Description
		}
		if params.Status != nil {
			if err := task.UpdateStatus(*params.Status); err != nil {
				return err
			}
		}
		if params.Priority != nil {
			task.Priority = *params.Priority
		}
		if params.DueDate != nil {
			task.DueDate = params.DueDate
		}

		if err := task.Validate(); err != nil {
			return err
		}

		return txTasks.Update(ctx, task)
	})
	if err != nil {
		s.logger.Debug("failed to update task",
			"error", err,
			"task_id", taskID)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("task updated",
		"task_id", taskID,
		"user_id", userID)

	return task, nil
}

// AssignTask sets or clears the task's assignee.
func (s *taskServiceImpl) AssignTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	assigneeID *uuid.UUID,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	if _, err := s.requireEditor(ctx, task.ProjectID, userID); err != nil {
		return nil, err
	}

	if assigneeID != nil {
		if err := s.checkAssignee(ctx, task.ProjectID, *assigneeID); err != nil {
			return nil, err
		}
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		task.Assign(assigneeID)
		return txTasks.Update(ctx, task)
	})
	if err != nil {
		s.logger.Error("failed to assign task",
			"error", err,
			"task_id", taskID)
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	s.logger.Info("task assignee changed",
		"task_id", taskID,
		"user_id", userID)

	return task, nil
}

// DeleteTask soft deletes a task.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to retrieve task: %w", err)
	}

	member, err := s.taskMember(ctx, task.ProjectID, userID)
	if err != nil {
		return err
	}

	createdByCaller := task.CreatedBy != nil && *task.CreatedBy == userID
	if !member.CanManageProject() && !createdByCaller {
		s.logger.Debug("task delete denied",
			"task_id", taskID,
			"user_id", userID,
			"role", member.Role)
		return ErrPermissionDenied
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).SoftDelete(ctx, taskID)
	})
	if err != nil {
		s.logger.Error("failed to delete task",
			"error", err,
			"task_id", taskID)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("task deleted",
		"task_id", taskID,
		"user_id", userID)

	return nil
}

// ListProjectTasks returns the page of a project's tasks matching the filter.
func (s *taskServiceImpl) ListProjectTasks(
	ctx context.Context,
	userID, projectID uuid.UUID,
	filter store.TaskFilter,
	page PageRequest,
) ([]*domain.Task, int, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve project: %w", err)
	}

	if project.Status != domain.ProjectStatusPublic {
		if _, err := s.taskMember(ctx, projectID, userID); err != nil {
			return nil, 0, err
		}
	}

	tasks, total, err := s.taskStore.ListByProject(ctx, projectID, filter, page.Offset(), page.PageSize)
	if err != nil {
		s.logger.Error("failed to list tasks",
			"error", err,
			"project_id", projectID)
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// ListMyTasks returns the page of tasks assigned to the user.
func (s *taskServiceImpl) ListMyTasks(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
	page PageRequest,
) ([]*domain.Task, int, error) {
	tasks, total, err := s.taskStore.ListByAssignee(ctx, userID, filter, page.Offset(), page.PageSize)
	if err != nil {
		s.logger.Error("failed to list assigned tasks",
			"error", err,
			"user_id", userID)
		return nil, 0, fmt.Errorf("failed to list assigned tasks: %w", err)
	}

	return tasks, total, nil
}

// taskMember loads the caller's membership, mapping a missing row to
// ErrNotMember.
func (s *taskServiceImpl) taskMember(
	ctx context.Context,
	projectID, userID uuid.UUID,
) (*domain.ProjectMember, error) {
	member, err := s.memberStore.Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			s.logger.Debug("caller is not a member",
				"project_id", projectID,
				"user_id", userID)
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	return member, nil
}

// requireEditor loads the caller's membership and rejects roles that
// cannot edit tasks.
func (s *taskServiceImpl) requireEditor(
	ctx context.Context,
	projectID, userID uuid.UUID,
) (*domain.ProjectMember, error) {
	member, err := s.taskMember(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !member.CanEditTasks() {
		s.logger.Debug("task edit denied",
			"project_id", projectID,
			"user_id", userID,
			"role", member.Role)
		return nil, ErrPermissionDenied
	}
	return member, nil
}

// checkAssignee verifies the prospective assignee belongs to the project.
func (s *taskServiceImpl) checkAssignee(
	ctx context.Context,
	projectID, assigneeID uuid.UUID,
) error {
	_, err := s.memberStore.Get(ctx, projectID, assigneeID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			s.logger.Debug("assignee outside the project",
				"project_id", projectID,
				"assignee_id", assigneeID)
			return ErrAssigneeNotMember
		}
		return fmt.Errorf("failed to check assignee: %w", err)
	}
	return nil
}
