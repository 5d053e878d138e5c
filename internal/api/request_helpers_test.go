package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeyyedAliBargh/task-manager-api/internal/api/shared"
	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/service"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

func TestGetUserIDFromContext(t *testing.T) {
	tests := []struct {
		name           string
		setupContext   func() context.Context
		expectedUserID uuid.UUID
		expectedOK     bool
	}{
		{
			name: "valid user ID in context",
			setupContext: func() context.Context {
				userID := uuid.New()
				return context.WithValue(context.Background(), shared.UserIDContextKey, userID)
			},
			expectedOK: true,
		},
		{
			name: "missing user ID in context",
			setupContext: func() context.Context {
				return context.Background()
			},
			expectedUserID: uuid.Nil,
			expectedOK:     false,
		},
		{
			name: "nil user ID in context",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), shared.UserIDContextKey, uuid.Nil)
			},
			expectedUserID: uuid.Nil,
			expectedOK:     false,
		},
		{
			name: "wrong type in context",
			setupContext: func() context.Context {
				return context.WithValue(context.Background(), shared.UserIDContextKey, "not-a-uuid")
			},
			expectedUserID: uuid.Nil,
			expectedOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.setupContext()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(ctx)

			userID, ok := getUserIDFromContext(req)

			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.NotEqual(t, uuid.Nil, userID)
			} else {
				assert.Equal(t, tt.expectedUserID, userID)
			}
		})
	}
}

// routeRequest runs the request through a one-route chi router so URL
// parameters are populated, and hands the routed request back.
func routeRequest(t *testing.T, pattern, path string) *http.Request {
	t.Helper()

	var capturedReq *http.Request
	router := chi.NewRouter()
	router.Get(pattern, func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, capturedReq, "request did not match route %s", pattern)
	return capturedReq
}

func TestGetPathUUID(t *testing.T) {
	validUUID := uuid.New()

	t.Run("valid UUID parameter", func(t *testing.T) {
		req := routeRequest(t, "/test/{id}", "/test/"+validUUID.String())

		id, err := getPathUUID(req, "id")

		assert.NoError(t, err)
		assert.Equal(t, validUUID, id)
	})

	t.Run("invalid UUID format", func(t *testing.T) {
		req := routeRequest(t, "/test/{id}", "/test/invalid-uuid")

		id, err := getPathUUID(req, "id")

		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidID))
		assert.Equal(t, uuid.Nil, id)
	})

	t.Run("missing parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)

		id, err := getPathUUID(req, "id")

		assert.Error(t, err)
		assert.Equal(t, uuid.Nil, id)
	})
}

func TestHandleUserIDAndPathUUID(t *testing.T) {
	validUserID := uuid.New()
	validPathUUID := uuid.New()

	t.Run("valid user ID and path UUID", func(t *testing.T) {
		req := routeRequest(t, "/test/{id}", "/test/"+validPathUUID.String())
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, validUserID))
		rr := httptest.NewRecorder()

		userID, pathID, ok := handleUserIDAndPathUUID(rr, req, "id", nil)

		assert.True(t, ok)
		assert.Equal(t, validUserID, userID)
		assert.Equal(t, validPathUUID, pathID)
	})

	t.Run("missing user ID", func(t *testing.T) {
		req := routeRequest(t, "/test/{id}", "/test/"+validPathUUID.String())
		rr := httptest.NewRecorder()

		_, _, ok := handleUserIDAndPathUUID(rr, req, "id", nil)

		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid user ID but invalid path UUID", func(t *testing.T) {
		req := routeRequest(t, "/test/{id}", "/test/invalid-uuid")
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, validUserID))
		rr := httptest.NewRecorder()

		_, _, ok := handleUserIDAndPathUUID(rr, req, "id", nil)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetPageRequest(t *testing.T) {
	tests := []struct {
		name             string
		query            string
		expectedPage     int
		expectedPageSize int
	}{
		{
			name:             "explicit page and size",
			query:            "?page=3&page_size=25",
			expectedPage:     3,
			expectedPageSize: 25,
		},
		{
			name:             "missing parameters use defaults",
			query:            "",
			expectedPage:     1,
			expectedPageSize: service.DefaultPageSize,
		},
		{
			name:             "malformed values use defaults",
			query:            "?page=abc&page_size=xyz",
			expectedPage:     1,
			expectedPageSize: service.DefaultPageSize,
		},
		{
			name:             "oversized page size is clamped",
			query:            "?page=1&page_size=100000",
			expectedPage:     1,
			expectedPageSize: service.MaxPageSize,
		},
		{
			name:             "negative page falls back to first",
			query:            "?page=-2&page_size=10",
			expectedPage:     1,
			expectedPageSize: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/list"+tt.query, nil)

			page := getPageRequest(req)

			assert.Equal(t, tt.expectedPage, page.Page)
			assert.Equal(t, tt.expectedPageSize, page.PageSize)
		})
	}
}

func TestGetTaskFilter(t *testing.T) {
	t.Run("all filters set", func(t *testing.T) {
		assigneeID := uuid.New()
		req := httptest.NewRequest(http.MethodGet,
			"/tasks?status=todo&priority=high&assignee_id="+assigneeID.String(), nil)

		filter, err := getTaskFilter(req)

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusTodo, filter.Status)
		assert.Equal(t, domain.TaskPriorityHigh, filter.Priority)
		assert.Equal(t, assigneeID, filter.AssigneeID)
	})

	t.Run("empty query leaves the filter open", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)

		filter, err := getTaskFilter(req)

		require.NoError(t, err)
		assert.Equal(t, store.TaskFilter{}, filter)
	})

	t.Run("malformed assignee ID is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tasks?assignee_id=not-a-uuid", nil)

		_, err := getTaskFilter(req)

		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidID))
	})
}

func TestPaginated(t *testing.T) {
	page := service.NewPageRequest(2, 10)

	envelope := paginated([]string{"a", "b"}, page, 35)

	assert.Equal(t, 10, envelope.PageSize)
	assert.Equal(t, 35, envelope.TotalObjects)
	assert.Equal(t, 4, envelope.TotalPages)
	assert.Equal(t, 2, envelope.CurrentPageNumber)
	assert.Equal(t, []string{"a", "b"}, envelope.Results)
}
