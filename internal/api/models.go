package api

import (
	"github.com/google/uuid"
)

// Common request/response structures for the auth endpoints

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name"       validate:"max=100"`
	LastName        string `json:"last_name"        validate:"max=100"`
}

// RegisterResponse defines the successful response for the registration
// endpoint. The account stays unverified until the emailed activation
// link is followed.
type RegisterResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// UserEmail is the authenticated user's address
	UserEmail string `json:"user_email"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	// RefreshToken is the JWT refresh token to be used to obtain a new token pair
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	// AccessToken is the new JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the new JWT token used to obtain future access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// VerifyTokenRequest defines the payload for the token verification endpoint.
type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// LogoutRequest defines the payload for the logout endpoint. The refresh
// token is revoked; access tokens simply age out.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ResendActivationRequest defines the payload for re-sending the
// activation email.
type ResendActivationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordRequest defines the payload for the password change
// endpoint. The old password must verify against the stored hash.
type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password"         validate:"required"`
	NewPassword        string `json:"new_password"         validate:"required,min=8,max=72"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

// PasswordResetRequest defines the payload for requesting a password
// reset code.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest defines the payload for redeeming a
// password reset code.
type PasswordResetConfirmRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Code        string `json:"code"         validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// MessageResponse is a minimal body for endpoints that only confirm an
// action.
type MessageResponse struct {
	Message string `json:"message"`
}
