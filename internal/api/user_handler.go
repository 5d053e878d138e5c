package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/api/shared"
	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/platform/logger"
	"github.com/SeyyedAliBargh/task-manager-api/internal/service"
)

// ProfileResponse is the JSON shape of a user's profile.
type ProfileResponse struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	ImageURL    string    `json:"image_url,omitempty"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MeResponse is the JSON shape of the authenticated user's account
// together with their profile.
type MeResponse struct {
	ID         uuid.UUID       `json:"id"`
	Email      string          `json:"email"`
	IsActive   bool            `json:"is_active"`
	IsVerified bool            `json:"is_verified"`
	CreatedAt  time.Time       `json:"created_at"`
	Profile    ProfileResponse `json:"profile"`
}

// UpdateProfileRequest defines the payload for updating the
// authenticated user's profile. Absent fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name"  validate:"omitempty,max=100"`
	LastName    *string `json:"last_name"   validate:"omitempty,max=100"`
	ImageURL    *string `json:"image_url"   validate:"omitempty,max=500"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// EmailChangeRequest defines the payload for requesting an email
// change. The current address must be supplied and match.
type EmailChangeRequest struct {
	OldEmail string `json:"old_email" validate:"required,email"`
	NewEmail string `json:"new_email" validate:"required,email"`
}

// EmailChangeConfirmRequest defines the payload for redeeming an email
// change confirmation code.
type EmailChangeConfirmRequest struct {
	Code string `json:"code" validate:"required"`
}

// UserHandler handles requests against the authenticated user's own
// account: profile reads and updates, password resets, email changes,
// and account deletion.
type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(userService service.UserService, log *slog.Logger) *UserHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}

	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
		logger:      log.With(slog.String("component", "user_handler")),
	}
}

// GetMe handles GET /api/users/me requests.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	user, profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, meResponse(user, profile))
}

// UpdateMe handles PUT /api/users/me requests.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), userID, service.UpdateProfileParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("profile updated",
		slog.String("user_id", userID.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, profileResponse(profile))
}

// DeleteMe handles DELETE /api/users/me requests.
// Deletion is soft; the row is retained with a deleted timestamp.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	if err := h.userService.DeleteAccount(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("account deleted",
		slog.String("user_id", userID.String()))

	w.WriteHeader(http.StatusNoContent)
}

// RequestPasswordReset handles POST /api/auth/password/reset requests.
// A short-lived numeric code is emailed as a background job.
func (h *UserHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if err := h.userService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, MessageResponse{
		Message: "Password reset code sent",
	})
}

// ConfirmPasswordReset handles POST /api/auth/password/reset/confirm
// requests.
func (h *UserHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirmRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if err := h.userService.ConfirmPasswordReset(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Password has been reset",
	})
}

// RequestEmailChange handles PUT /api/users/me/email requests.
// The caller must state their current address; a confirmation code is
// emailed to the new one.
func (h *UserHandler) RequestEmailChange(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req EmailChangeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if domain.NormalizeEmail(req.OldEmail) != user.Email {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Current email does not match")
		return
	}

	if err := h.userService.RequestEmailChange(r.Context(), userID, req.NewEmail); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, MessageResponse{
		Message: "Confirmation code sent to the new address",
	})
}

// ConfirmEmailChange handles POST /api/users/me/email/confirm requests.
func (h *UserHandler) ConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req EmailChangeConfirmRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if err := h.userService.ConfirmEmailChange(r.Context(), userID, req.Code); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("email address updated",
		slog.String("user_id", userID.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Email address updated",
	})
}

func meResponse(user *domain.User, profile *domain.Profile) MeResponse {
	return MeResponse{
		ID:         user.ID,
		Email:      user.Email,
		IsActive:   user.IsActive,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
		Profile:    profileResponse(profile),
	}
}

func profileResponse(profile *domain.Profile) ProfileResponse {
	return ProfileResponse{
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		ImageURL:    profile.ImageURL,
		Description: profile.Description,
		UpdatedAt:   profile.UpdatedAt,
	}
}
