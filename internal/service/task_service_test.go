package service_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/mocks"
	"github.com/SeyyedAliBargh/task-manager-api/internal/service"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// task builds a stored task for permission and update tests.
func task(projectID uuid.UUID, createdBy uuid.UUID) *domain.Task {
	created := createdBy
	return &domain.Task{
		ID:        uuid.New(),
		ProjectID: projectID,
		Title:     "Ship the report",
		CreatedBy: &created,
		Status:    domain.TaskStatusTodo,
		Priority:  domain.TaskPriorityMedium,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
		UpdatedAt: time.Now().UTC().Add(-time.Hour),
	}
}

func TestTaskService_CreateTask(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	db := mocks.TxDB()
	userID := uuid.New()
	projectID := uuid.New()

	openProject := &domain.Project{
		ID:      projectID,
		Name:    "Launch",
		OwnerID: uuid.New(),
		Status:  domain.ProjectStatusPrivate,
	}

	t.Run("member creates a task with defaults", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleMember), nil)
		mockProjectStore.On("GetByID", mock.Anything, projectID).Return(openProject, nil)
		mockTaskStore.On("Create", mock.Anything, mock.MatchedBy(func(tk *domain.Task) bool {
			return tk.Title == "Ship the report" &&
				tk.Status == domain.TaskStatusTodo &&
				tk.Priority == domain.TaskPriorityMedium &&
				tk.CreatedBy != nil && *tk.CreatedBy == userID &&
				tk.AssigneeID == nil
		})).Return(nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		created, err := taskService.CreateTask(context.Background(), userID, projectID,
			service.CreateTaskParams{Title: "Ship the report"})

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusTodo, created.Status)
		mockTaskStore.AssertExpectations(t)
	})

	t.Run("assigns a member on create", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		assigneeID := uuid.New()

		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleMember), nil)
		mockMemberStore.On("Get", mock.Anything, projectID, assigneeID).
			Return(member(projectID, assigneeID, domain.RoleMember), nil)
		mockProjectStore.On("GetByID", mock.Anything, projectID).Return(openProject, nil)
		mockTaskStore.On("Create", mock.Anything, mock.MatchedBy(func(tk *domain.Task) bool {
			return tk.AssigneeID != nil && *tk.AssigneeID == assigneeID
		})).Return(nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		created, err := taskService.CreateTask(context.Background(), userID, projectID,
			service.CreateTaskParams{Title: "Ship the report", AssigneeID: &assigneeID})

		require.NoError(t, err)
		require.NotNil(t, created.AssigneeID)
		assert.Equal(t, assigneeID, *created.AssigneeID)
	})

	t.Run("viewer cannot create", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleViewer), nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		_, err := taskService.CreateTask(context.Background(), userID, projectID,
			service.CreateTaskParams{Title: "Ship the report"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrPermissionDenied))
		mockProjectStore.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("non-member cannot create", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		mockMemberStore.On("Get", mock.Anything, projectID, userID).Return(nil, store.ErrMemberNotFound)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		_, err := taskService.CreateTask(context.Background(), userID, projectID,
			service.CreateTaskParams{Title: "Ship the report"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrNotMember))
	})

	t.Run("closed project rejects new tasks", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		closedProject := &domain.Project{
			ID:      projectID,
			Name:    "Wrapped",
			OwnerID: uuid.New(),
			Status:  domain.ProjectStatusClosed,
		}

		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleAdmin), nil)
		mockProjectStore.On("GetByID", mock.Anything, projectID).Return(closedProject, nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		_, err := taskService.CreateTask(context.Background(), userID, projectID,
			service.CreateTaskParams{Title: "Ship the report"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrProjectClosed))
		mockTaskStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("assignee outside the project", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		strangerID := uuid.New()

		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleMember), nil)
		mockMemberStore.On("Get", mock.Anything, projectID, strangerID).
			Return(nil, store.ErrMemberNotFound)
		mockProjectStore.On("GetByID", mock.Anything, projectID).Return(openProject, nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		_, err := taskService.CreateTask(context.Background(), userID, projectID,
			service.CreateTaskParams{Title: "Ship the report", AssigneeID: &strangerID})

		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrAssigneeNotMember))
		mockTaskStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTaskService_GetTask(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	db := mocks.TxDB()
	userID := uuid.New()
	projectID := uuid.New()

	t.Run("member views a private project task", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, userID)

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockProjectStore.On("GetByID", mock.Anything, projectID).Return(&domain.Project{
			ID: projectID, Name: "Launch", OwnerID: uuid.New(), Status: domain.ProjectStatusPrivate,
		}, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleViewer), nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		got, err := taskService.GetTask(context.Background(), userID, stored.ID)

		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("anyone views a public project task", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, uuid.New())

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockProjectStore.On("GetByID", mock.Anything, projectID).Return(&domain.Project{
			ID: projectID, Name: "Open Roadmap", OwnerID: uuid.New(), Status: domain.ProjectStatusPublic,
		}, nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		got, err := taskService.GetTask(context.Background(), userID, stored.ID)

		require.NoError(t, err)
		assert.Equal(t, stored, got)
		mockMemberStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-member cannot view", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, uuid.New())

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockProjectStore.On("GetByID", mock.Anything, projectID).Return(&domain.Project{
			ID: projectID, Name: "Launch", OwnerID: uuid.New(), Status: domain.ProjectStatusPrivate,
		}, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).Return(nil, store.ErrMemberNotFound)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		_, err := taskService.GetTask(context.Background(), userID, stored.ID)

		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrNotMember))
	})

	t.Run("unknown task", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		taskID := uuid.New()

		mockTaskStore.On("GetByID", mock.Anything, taskID).Return(nil, store.ErrTaskNotFound)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		_, err := taskService.GetTask(context.Background(), userID, taskID)

		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrTaskNotFound))
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	db := mocks.TxDB()
	userID := uuid.New()
	projectID := uuid.New()

	t.Run("member moves a task through the workflow", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, userID)
		done := domain.TaskStatusDone
		high := domain.TaskPriorityHigh

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleMember), nil)
		mockTaskStore.On("Update", mock.Anything, mock.MatchedBy(func(tk *domain.Task) bool {
			return tk.Status == domain.TaskStatusDone && tk.Priority == domain.TaskPriorityHigh
		})).Return(nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		updated, err := taskService.UpdateTask(context.Background(), userID, stored.ID,
			service.UpdateTaskParams{Status: &done, Priority: &high})

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusDone, updated.Status)
		mockTaskStore.AssertExpectations(t)
	})

	t.Run("viewer cannot update", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, uuid.New())

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleViewer), nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		_, err := taskService.UpdateTask(context.Background(), userID, stored.ID,
			service.UpdateTaskParams{Title: strPtr("Renamed")})

		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrPermissionDenied))
		mockTaskStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, userID)
		bogus := domain.TaskStatus("paused")

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleMember), nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		_, err := taskService.UpdateTask(context.Background(), userID, stored.ID,
			service.UpdateTaskParams{Status: &bogus})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidTaskStatus))
		mockTaskStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("rejects a due date before creation", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, userID)
		tooEarly := stored.CreatedAt.Add(-24 * time.Hour)

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleMember), nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		_, err := taskService.UpdateTask(context.Background(), userID, stored.ID,
			service.UpdateTaskParams{DueDate: &tooEarly})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDueDateBeforeCreation))
		mockTaskStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestTaskService_AssignTask(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	db := mocks.TxDB()
	userID := uuid.New()
	projectID := uuid.New()

	t.Run("assigns a member", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, userID)
		assigneeID := uuid.New()

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleMember), nil)
		mockMemberStore.On("Get", mock.Anything, projectID, assigneeID).
			Return(member(projectID, assigneeID, domain.RoleMember), nil)
		mockTaskStore.On("Update", mock.Anything, mock.MatchedBy(func(tk *domain.Task) bool {
			return tk.AssigneeID != nil && *tk.AssigneeID == assigneeID
		})).Return(nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		updated, err := taskService.AssignTask(context.Background(), userID, stored.ID, &assigneeID)

		require.NoError(t, err)
		require.NotNil(t, updated.AssigneeID)
		assert.Equal(t, assigneeID, *updated.AssigneeID)
	})

	t.Run("clears the assignee", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, userID)
		previous := uuid.New()
		stored.AssigneeID = &previous

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleMember), nil)
		mockTaskStore.On("Update", mock.Anything, mock.MatchedBy(func(tk *domain.Task) bool {
			return tk.AssigneeID == nil
		})).Return(nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		updated, err := taskService.AssignTask(context.Background(), userID, stored.ID, nil)

		require.NoError(t, err)
		assert.Nil(t, updated.AssigneeID)
	})

	t.Run("assignee outside the project", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, userID)
		strangerID := uuid.New()

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleMember), nil)
		mockMemberStore.On("Get", mock.Anything, projectID, strangerID).
			Return(nil, store.ErrMemberNotFound)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		_, err := taskService.AssignTask(context.Background(), userID, stored.ID, &strangerID)

		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrAssigneeNotMember))
		mockTaskStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	db := mocks.TxDB()
	userID := uuid.New()
	projectID := uuid.New()

	t.Run("creator deletes their own task", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, userID)

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleMember), nil)
		mockTaskStore.On("SoftDelete", mock.Anything, stored.ID).Return(nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		err := taskService.DeleteTask(context.Background(), userID, stored.ID)

		require.NoError(t, err)
		mockTaskStore.AssertExpectations(t)
	})

	t.Run("admin deletes any task", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, uuid.New())

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleAdmin), nil)
		mockTaskStore.On("SoftDelete", mock.Anything, stored.ID).Return(nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		err := taskService.DeleteTask(context.Background(), userID, stored.ID)

		require.NoError(t, err)
	})

	t.Run("member cannot delete someone else's task", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := task(projectID, uuid.New())

		mockTaskStore.On("GetByID", mock.Anything, stored.ID).Return(stored, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleMember), nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		err := taskService.DeleteTask(context.Background(), userID, stored.ID)

		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrPermissionDenied))
		mockTaskStore.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	})
}

func TestTaskService_ListProjectTasks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	db := mocks.TxDB()
	userID := uuid.New()
	projectID := uuid.New()

	t.Run("passes the filter and page window to the store", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		filter := store.TaskFilter{Status: domain.TaskStatusDone}
		stored := []*domain.Task{task(projectID, userID)}

		mockProjectStore.On("GetByID", mock.Anything, projectID).Return(&domain.Project{
			ID: projectID, Name: "Launch", OwnerID: uuid.New(), Status: domain.ProjectStatusPrivate,
		}, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).
			Return(member(projectID, userID, domain.RoleViewer), nil)
		mockTaskStore.On("ListByProject", mock.Anything, projectID, filter, 0, 25).
			Return(stored, 1, nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		tasks, total, err := taskService.ListProjectTasks(
			context.Background(), userID, projectID, filter, service.NewPageRequest(1, 25))

		require.NoError(t, err)
		assert.Equal(t, stored, tasks)
		assert.Equal(t, 1, total)
		mockTaskStore.AssertExpectations(t)
	})

	t.Run("non-member cannot list a private project", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		mockProjectStore.On("GetByID", mock.Anything, projectID).Return(&domain.Project{
			ID: projectID, Name: "Launch", OwnerID: uuid.New(), Status: domain.ProjectStatusPrivate,
		}, nil)
		mockMemberStore.On("Get", mock.Anything, projectID, userID).Return(nil, store.ErrMemberNotFound)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		_, _, err := taskService.ListProjectTasks(
			context.Background(), userID, projectID, store.TaskFilter{}, service.NewPageRequest(1, 10))

		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrNotMember))
		mockTaskStore.AssertNotCalled(t, "ListByProject",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTaskService_ListMyTasks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	db := mocks.TxDB()
	userID := uuid.New()

	t.Run("returns the page of assigned tasks", func(t *testing.T) {
		mockTaskStore := new(mocks.TestifyMockTaskStore)
		mockProjectStore := new(mocks.TestifyMockProjectStore)
		mockMemberStore := new(mocks.TestifyMockMemberStore)

		stored := []*domain.Task{task(uuid.New(), userID), task(uuid.New(), userID)}

		mockTaskStore.On("ListByAssignee", mock.Anything, userID, store.TaskFilter{}, 0, 10).
			Return(stored, 2, nil)

		taskService := service.NewTaskService(mockTaskStore, mockProjectStore, mockMemberStore, db, logger)

		tasks, total, err := taskService.ListMyTasks(
			context.Background(), userID, store.TaskFilter{}, service.NewPageRequest(1, 10))

		require.NoError(t, err)
		assert.Len(t, tasks, 2)
		assert.Equal(t, 2, total)
		mockTaskStore.AssertExpectations(t)
	})
}
