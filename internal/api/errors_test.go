package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/service"
	"github.com/SeyyedAliBargh/task-manager-api/internal/service/auth"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError, // Default to 500 for nil error
		},
		{
			name:           "authentication error",
			err:            auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrapped authentication error",
			err:            fmt.Errorf("failed to authenticate: %w", auth.ErrInvalidToken),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "revoked refresh token",
			err:            auth.ErrRevokedRefreshToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid credentials",
			err:            service.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "disabled account",
			err:            service.ErrAccountDisabled,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "unverified account",
			err:            service.ErrAccountNotVerified,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "not a project member",
			err:            service.ErrNotMember,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "permission denied",
			err:            fmt.Errorf("role check failed: %w", service.ErrPermissionDenied),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "task not found",
			err:            store.ErrTaskNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "project not found through the generic family",
			err:            fmt.Errorf("lookup failed: %w", store.ErrProjectNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "duplicate email",
			err:            store.ErrEmailExists,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "duplicate membership",
			err:            store.ErrMemberExists,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "invitation no longer pending",
			err:            domain.ErrInvitationNotPending,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "expired invitation",
			err:            service.ErrInvitationExpired,
			expectedStatus: http.StatusGone,
		},
		{
			name:           "assignee outside the project",
			err:            service.ErrAssigneeNotMember,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "closed project",
			err:            domain.ErrProjectClosed,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid entity",
			err:            store.ErrInvalidEntity,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown error",
			err:            errors.New("unknown error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := MapErrorToStatusCode(tt.err)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name:            "nil error",
			err:             nil,
			expectedMessage: "An unexpected error occurred",
		},
		{
			name:            "authentication error",
			err:             auth.ErrInvalidToken,
			expectedMessage: "Invalid token",
		},
		{
			name:            "wrapped authentication error",
			err:             fmt.Errorf("failed due to: %w", auth.ErrInvalidToken),
			expectedMessage: "Invalid token",
		},
		{
			name:            "invalid credentials",
			err:             service.ErrInvalidCredentials,
			expectedMessage: "Invalid email or password",
		},
		{
			name:            "not a member",
			err:             service.ErrNotMember,
			expectedMessage: "You are not a member of this project",
		},
		{
			name:            "task not found",
			err:             fmt.Errorf("get task: %w", store.ErrTaskNotFound),
			expectedMessage: "Task not found",
		},
		{
			name:            "duplicate invitation",
			err:             store.ErrInvitationExists,
			expectedMessage: "An invitation for this user already exists",
		},
		{
			name:            "expired invitation",
			err:             service.ErrInvitationExpired,
			expectedMessage: "Invitation has expired",
		},
		{
			name:            "owner cannot be removed",
			err:             service.ErrCannotRemoveOwner,
			expectedMessage: "Project owner cannot be removed or demoted",
		},
		{
			name:            "unknown error",
			err:             errors.New("database error: connection refused"),
			expectedMessage: "An unexpected error occurred", // Database error details are hidden
		},
		{
			name: "wrapped database error with SQL details",
			err: fmt.Errorf(
				"SQL error: %w",
				errors.New("syntax error at line 42 in SELECT * FROM users"),
			),
			expectedMessage: "An unexpected error occurred", // SQL details are hidden
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := GetSafeErrorMessage(tt.err)
			assert.Equal(t, tt.expectedMessage, message)

			// Verify no sensitive details are leaked
			if tt.err != nil {
				if tt.expectedMessage == "An unexpected error occurred" {
					assert.NotContains(
						t,
						message,
						tt.err.Error(),
						"Error message should not contain the actual error",
					)
				}
			}
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	testError := errors.New(
		"Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag",
	)
	safeMessage := SanitizeValidationError(testError)

	// The sanitized message should not contain the full error details
	assert.NotEqual(t, testError.Error(), safeMessage)

	// It should contain a user-friendly reference to the field
	assert.Contains(t, safeMessage, "Email")

	// Verify that the specific field and tag are present in a user-friendly format
	assert.Equal(t, "Invalid Email: required field", safeMessage)

	// Test with a different format error
	otherError := errors.New("Some other kind of error")
	genericMessage := SanitizeValidationError(otherError)
	assert.Equal(t, "Validation error", genericMessage)
}

// TestMapErrorToStatusCodeWithCustomErrorTypes tests how error mapping handles custom error types
func TestMapErrorToStatusCodeWithCustomErrorTypes(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "domain validation error",
			err:            domain.NewValidationError("email", "must be valid format", nil),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "domain validation error wrapped",
			err: fmt.Errorf(
				"validation failed: %w",
				domain.NewValidationError("password", "too short", nil),
			),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "user service error with no specific cause",
			err:            &service.UserServiceError{Operation: "register", Message: "failed to process"},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "user service error wrapping not found",
			err: service.NewUserServiceError(
				"get_user",
				"failed to retrieve user",
				store.ErrUserNotFound,
			),
			expectedStatus: http.StatusNotFound, // Should check the wrapped error
		},
		{
			name: "user service error wrapping duplicate email",
			err: service.NewUserServiceError(
				"register",
				"failed to create user",
				store.ErrEmailExists,
			),
			expectedStatus: http.StatusConflict, // Should check the wrapped store.ErrEmailExists
		},
		{
			name: "deeply nested error",
			err: fmt.Errorf(
				"outer: %w",
				fmt.Errorf(
					"middle: %w",
					service.NewUserServiceError("get_user", "lookup failed", store.ErrUserNotFound),
				),
			),
			expectedStatus: http.StatusNotFound, // Should unwrap to the store.ErrUserNotFound
		},
		{
			name: "service error wrapping domain validation",
			err: service.NewUserServiceError(
				"update_profile",
				"validation failed",
				domain.ErrValidation,
			),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := MapErrorToStatusCode(tt.err)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}
}

// TestGetSafeErrorMessageWithCustomErrorTypes tests error messages for custom error types
func TestGetSafeErrorMessageWithCustomErrorTypes(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name:            "domain validation error with field",
			err:             domain.NewValidationError("email", "must be valid format", nil),
			expectedMessage: "Invalid email: must be valid format",
		},
		{
			name: "domain validation error without field",
			err: domain.NewValidationError(
				"",
				"validation failed",
				domain.ErrValidation,
			),
			expectedMessage: "validation failed",
		},
		{
			name: "domain validation error wrapped",
			err: fmt.Errorf(
				"validation failed: %w",
				domain.NewValidationError("password", "too short", nil),
			),
			expectedMessage: "Invalid password: too short",
		},
		{
			name: "user service error wrapping not found",
			err: service.NewUserServiceError(
				"get_user",
				"failed to retrieve user",
				store.ErrUserNotFound,
			),
			expectedMessage: "User not found", // Should check the wrapped error
		},
		{
			name: "user service error wrapping email exists",
			err: service.NewUserServiceError(
				"register",
				"failed to create user",
				store.ErrEmailExists,
			),
			expectedMessage: "Email already in use",
		},
		{
			name: "deeply nested error",
			err: fmt.Errorf(
				"outer: %w",
				fmt.Errorf(
					"middle: %w",
					service.NewUserServiceError("get_user", "lookup failed", store.ErrUserNotFound),
				),
			),
			expectedMessage: "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := GetSafeErrorMessage(tt.err)
			assert.Equal(t, tt.expectedMessage, message)
		})
	}
}

// TestSanitizeValidationErrorWithCustomTypes tests validation error sanitization with custom types
func TestSanitizeValidationErrorWithCustomTypes(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name:            "domain validation error with field",
			err:             domain.NewValidationError("email", "must be valid format", nil),
			expectedMessage: "Invalid email: must be valid format",
		},
		{
			name:            "domain validation error without field",
			err:             domain.NewValidationError("", "validation failed", nil),
			expectedMessage: "validation failed",
		},
		{
			name: "wrapped domain validation error",
			err: fmt.Errorf(
				"failed to create user: %w",
				domain.NewValidationError("email", "already exists", store.ErrEmailExists),
			),
			expectedMessage: "Invalid email: already exists",
		},
		{
			name:            "non-validation error",
			err:             errors.New("some other error"),
			expectedMessage: "Validation error", // Generic message for non-validation errors
		},
		{
			name: "validator library error format",
			err: errors.New(
				"Key: 'RegisterRequest.Password' Error:Field validation for 'Password' failed on the 'min' tag",
			),
			expectedMessage: "Invalid Password: too short",
		},
		{
			name:            "malformed validator error",
			err:             errors.New("Field validation for Email failed"),
			expectedMessage: "Validation error", // Fallback for malformed validator error
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := SanitizeValidationError(tt.err)
			assert.Equal(t, tt.expectedMessage, message)
		})
	}
}
