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

// InviteUserRequest defines the payload for inviting a user to a
// project by email.
type InviteUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"  validate:"omitempty,oneof=admin member viewer"`
}

// InvitationResponse is the JSON shape of a project invitation.
type InvitationResponse struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	InviteeID uuid.UUID `json:"invitee_id"`
	InvitedBy uuid.UUID `json:"invited_by"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// InvitationHandler handles project invitation API requests.
type InvitationHandler struct {
	invitationService service.InvitationService
	validator         *validator.Validate
	logger            *slog.Logger
}

// NewInvitationHandler creates a new InvitationHandler with the given
// dependencies.
func NewInvitationHandler(invitationService service.InvitationService, log *slog.Logger) *InvitationHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for InvitationHandler")
	}

	return &InvitationHandler{
		invitationService: invitationService,
		validator:         validator.New(),
		logger:            log.With(slog.String("component", "invitation_handler")),
	}
}

// InviteUser handles POST /api/projects/{id}/invitations requests.
// Owners and admins only. The invitee is notified by email.
func (h *InvitationHandler) InviteUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req InviteUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	invitation, err := h.invitationService.InviteUser(r.Context(), actorID, projectID, req.Email, domain.MemberRole(req.Role))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("user invited",
		slog.String("invitation_id", invitation.ID.String()),
		slog.String("project_id", projectID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, invitationResponse(invitation))
}

// ListMyInvitations handles GET /api/invitations requests.
// Returns the caller's pending invitations.
func (h *InvitationHandler) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	invitations, err := h.invitationService.ListMyInvitations(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, invitationResponses(invitations))
}

// AcceptInvitation handles POST /api/invitations/{id}/accept requests.
// Accepting joins the project with the invited role.
func (h *InvitationHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, invitationID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	member, err := h.invitationService.AcceptInvitation(r.Context(), userID, invitationID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("invitation accepted",
		slog.String("invitation_id", invitationID.String()),
		slog.String("project_id", member.ProjectID.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, memberResponse(member))
}

// DeclineInvitation handles POST /api/invitations/{id}/decline
// requests.
func (h *InvitationHandler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, invitationID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.invitationService.DeclineInvitation(r.Context(), userID, invitationID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("invitation declined",
		slog.String("invitation_id", invitationID.String()))

	w.WriteHeader(http.StatusNoContent)
}

// RevokeInvitation handles POST /api/invitations/{id}/revoke requests.
// Owners and admins of the inviting project only.
func (h *InvitationHandler) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, invitationID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.invitationService.RevokeInvitation(r.Context(), actorID, invitationID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("invitation revoked",
		slog.String("invitation_id", invitationID.String()))

	w.WriteHeader(http.StatusNoContent)
}

func invitationResponse(invitation *domain.ProjectInvitation) InvitationResponse {
	return InvitationResponse{
		ID:        invitation.ID,
		ProjectID: invitation.ProjectID,
		InviteeID: invitation.InviteeID,
		InvitedBy: invitation.InvitedBy,
		Role:      string(invitation.Role),
		Status:    string(invitation.Status),
		CreatedAt: invitation.CreatedAt,
	}
}

func invitationResponses(invitations []*domain.ProjectInvitation) []InvitationResponse {
	out := make([]InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, invitationResponse(inv))
	}
	return out
}
