package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Store-level sentinels (store.ErrUserNotFound etc.) are wrapped with %w so
//    callers can still match them with errors.Is
// 3. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrInvalidCredentials indicates the email/password pair did not match.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDisabled indicates the account exists but was deactivated.
	// API layer should map this to HTTP 403 Forbidden.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrAccountNotVerified indicates the account has not completed email
	// activation yet. API layer should map this to HTTP 403 Forbidden.
	ErrAccountNotVerified = errors.New("account email is not verified")

	// ErrAlreadyVerified indicates an activation was requested for an account
	// that is already verified. API layer should map this to HTTP 400.
	ErrAlreadyVerified = errors.New("account is already verified")

	// ErrInvalidCode indicates a verification code did not match or does not
	// exist. API layer should map this to HTTP 400.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrNotMember indicates the user does not belong to the project they tried
	// to act on. API layer should map this to HTTP 403 Forbidden.
	ErrNotMember = errors.New("user is not a member of this project")

	// ErrPermissionDenied indicates the user's role does not allow the
	// attempted operation. API layer should map this to HTTP 403 Forbidden.
	ErrPermissionDenied = errors.New("insufficient permissions for this operation")

	// ErrAssigneeNotMember indicates a task was assigned to a user outside the
	// project. API layer should map this to HTTP 400.
	ErrAssigneeNotMember = errors.New("assignee is not a member of this project")

	// ErrCannotRemoveOwner indicates an attempt to remove or demote the project
	// owner. API layer should map this to HTTP 400.
	ErrCannotRemoveOwner = errors.New("project owner cannot be removed or demoted")

	// ErrInvalidRole indicates a role value outside the assignable set.
	// API layer should map this to HTTP 400.
	ErrInvalidRole = errors.New("role cannot be assigned")

	// ErrInvitationExpired indicates the invitation outlived its acceptance
	// window. API layer should map this to HTTP 410 Gone.
	ErrInvitationExpired = errors.New("invitation has expired")
)
