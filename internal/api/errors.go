package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SeyyedAliBargh/task-manager-api/internal/api/shared"
	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/service"
	"github.com/SeyyedAliBargh/task-manager-api/internal/service/auth"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrRevokedRefreshToken),
		errors.Is(err, auth.ErrInvalidActivationToken),
		errors.Is(err, auth.ErrExpiredActivationToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrAccountNotVerified),
		errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, domain.ErrInvitationNotPending):
		return http.StatusConflict

	// Expired invitations are gone rather than merely conflicting
	case errors.Is(err, service.ErrInvitationExpired):
		return http.StatusGone

	// Bad request errors
	case errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrAssigneeNotMember),
		errors.Is(err, service.ErrCannotRemoveOwner),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrCodeAlreadyUsed),
		errors.Is(err, domain.ErrProjectClosed),
		errors.Is(err, domain.ErrSelfInvitation),
		isDomainValidationError(err):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	// Field-level validation errors carry their own safe message
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.Field != "" {
			return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
		}
		return validationErr.Message
	}

	// Map specific error types to user-friendly messages
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrRevokedRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidActivationToken),
		errors.Is(err, auth.ErrExpiredActivationToken):
		return "Invalid or expired activation token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"

	// Authorization errors
	case errors.Is(err, service.ErrAccountDisabled):
		return "Account is disabled"

	case errors.Is(err, service.ErrAccountNotVerified):
		return "Account email is not verified"

	case errors.Is(err, service.ErrNotMember):
		return "You are not a member of this project"

	case errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, domain.ErrForbidden):
		return "You do not have permission to perform this action"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrProfileNotFound):
		return "Profile not found"

	case errors.Is(err, store.ErrProjectNotFound):
		return "Project not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrMemberNotFound):
		return "Project member not found"

	case errors.Is(err, store.ErrInvitationNotFound):
		return "Invitation not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already in use"

	case errors.Is(err, store.ErrMemberExists):
		return "User is already a member of this project"

	case errors.Is(err, store.ErrInvitationExists):
		return "An invitation for this user already exists"

	case errors.Is(err, domain.ErrInvitationNotPending):
		return "Invitation is no longer pending"

	case errors.Is(err, service.ErrInvitationExpired):
		return "Invitation has expired"

	// Bad request errors
	case errors.Is(err, service.ErrAlreadyVerified):
		return "Account is already verified"

	case errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrCodeAlreadyUsed):
		return "Invalid or expired verification code"

	case errors.Is(err, service.ErrAssigneeNotMember):
		return "Assignee is not a member of this project"

	case errors.Is(err, service.ErrCannotRemoveOwner):
		return "Project owner cannot be removed or demoted"

	case errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidMemberRole):
		return "Role cannot be assigned"

	case errors.Is(err, domain.ErrProjectClosed):
		return "Project is closed"

	case errors.Is(err, domain.ErrSelfInvitation):
		return "You cannot invite yourself"

	case errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrPasswordTooLong),
		errors.Is(err, domain.ErrEmptyPassword):
		return "Password must be between 8 and 72 characters"

	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyEmail):
		return "Invalid email address"

	case errors.Is(err, domain.ErrEmptyProjectName),
		errors.Is(err, domain.ErrProjectNameTooLong):
		return "Invalid project name"

	case errors.Is(err, domain.ErrInvalidProjectStatus):
		return "Invalid project status"

	case errors.Is(err, domain.ErrEmptyTaskTitle),
		errors.Is(err, domain.ErrTaskTitleTooLong):
		return "Invalid task title"

	case errors.Is(err, domain.ErrInvalidTaskStatus):
		return "Invalid task status"

	case errors.Is(err, domain.ErrInvalidTaskPriority):
		return "Invalid task priority"

	case errors.Is(err, domain.ErrDueDateBeforeCreation):
		return "Due date cannot be before task creation"

	case errors.Is(err, domain.ErrFirstNameTooLong),
		errors.Is(err, domain.ErrLastNameTooLong):
		return "Name is too long"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps the error to a status code, picks a safe message, and
// writes the response. A non-empty userMessage overrides the derived message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	statusCode := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, statusCode, userMessage, err)
}

// isDomainValidationError reports whether the error stems from domain
// entity validation.
func isDomainValidationError(err error) bool {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return true
	}

	domainValidationErrs := []error{
		domain.ErrValidation,
		domain.ErrInvalidID,
		domain.ErrInvalidEmail,
		domain.ErrEmptyEmail,
		domain.ErrPasswordTooShort,
		domain.ErrPasswordTooLong,
		domain.ErrEmptyPassword,
		domain.ErrFirstNameTooLong,
		domain.ErrLastNameTooLong,
		domain.ErrEmptyProjectName,
		domain.ErrProjectNameTooLong,
		domain.ErrInvalidProjectStatus,
		domain.ErrEmptyTaskTitle,
		domain.ErrTaskTitleTooLong,
		domain.ErrInvalidTaskStatus,
		domain.ErrInvalidTaskPriority,
		domain.ErrDueDateBeforeCreation,
		domain.ErrInvalidMemberRole,
		store.ErrInvalidEntity,
	}
	for _, sentinel := range domainValidationErrs {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	// Domain validation errors already carry a safe, field-scoped message
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.Field != "" {
			return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
		}
		return validationErr.Message
	}

	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Extract the field name and validation tag
		// Example format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			// Further split to get just the field validation part
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				// Create a cleaner error message
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "eqfield":
		return "fields do not match"
	case "uuid":
		return "invalid UUID format"
	default:
		return "validation failed"
	}
}
