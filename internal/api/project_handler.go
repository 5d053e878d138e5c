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

// CreateProjectRequest defines the payload for creating a project.
type CreateProjectRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Status      string `json:"status"      validate:"omitempty,oneof=private public closed"`
}

// UpdateProjectRequest defines the payload for updating a project.
// Absent fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      *string `json:"status"      validate:"omitempty,oneof=private public closed"`
}

// UpdateMemberRoleRequest defines the payload for changing a member's
// role. The owner role is assigned at creation and cannot be granted.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member viewer"`
}

// ProjectResponse is the JSON shape of a project.
type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberResponse is the JSON shape of a project membership.
type MemberResponse struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// ProjectHandler handles project and membership API requests.
type ProjectHandler struct {
	projectService service.ProjectService
	validator      *validator.Validate
	logger         *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler with the given
// dependencies.
func NewProjectHandler(projectService service.ProjectService, log *slog.Logger) *ProjectHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProjectHandler")
	}

	return &ProjectHandler{
		projectService: projectService,
		validator:      validator.New(),
		logger:         log.With(slog.String("component", "project_handler")),
	}
}

// CreateProject handles POST /api/projects requests.
// The creator becomes the project's owner member.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), userID, req.Name, req.Description, domain.ProjectStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("project created",
		slog.String("project_id", project.ID.String()),
		slog.String("owner_id", userID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, projectResponse(project))
}

// ListProjects handles GET /api/projects requests.
// Returns the projects the caller belongs to, paginated.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	page := getPageRequest(r)

	projects, total, err := h.projectService.ListProjects(r.Context(), userID, page)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, paginated(projectResponses(projects), page, total))
}

// ListPublicProjects handles GET /api/projects/public requests.
// No authentication required.
func (h *ProjectHandler) ListPublicProjects(w http.ResponseWriter, r *http.Request) {
	page := getPageRequest(r)

	projects, total, err := h.projectService.ListPublicProjects(r.Context(), page)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, paginated(projectResponses(projects), page, total))
}

// GetProject handles GET /api/projects/{id} requests.
// Private projects are only visible to members.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(r.Context(), userID, projectID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, projectResponse(project))
}

// UpdateProject handles PUT /api/projects/{id} requests.
// Only owners and admins may update a project.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	params := service.UpdateProjectParams{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.ProjectStatus(*req.Status)
		params.Status = &status
	}

	project, err := h.projectService.UpdateProject(r.Context(), userID, projectID, params)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("project updated",
		slog.String("project_id", projectID.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, projectResponse(project))
}

// DeleteProject handles DELETE /api/projects/{id} requests.
// Owners and admins only; tasks and memberships go with the project.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), userID, projectID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("project deleted",
		slog.String("project_id", projectID.String()),
		slog.String("user_id", userID.String()))

	w.WriteHeader(http.StatusNoContent)
}

// ListMembers handles GET /api/projects/{id}/members requests.
func (h *ProjectHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	members, err := h.projectService.ListMembers(r.Context(), userID, projectID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, memberResponses(members))
}

// UpdateMemberRole handles PUT /api/projects/{id}/members/{userID}
// requests. Owners and admins only; the owner's own role is fixed.
func (h *ProjectHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	targetID, err := getPathUUID(r, "userID")
	if err != nil {
		HandleAPIError(w, r, err, "Invalid user ID format")
		return
	}

	var req UpdateMemberRoleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	member, err := h.projectService.UpdateMemberRole(r.Context(), actorID, projectID, targetID, domain.MemberRole(req.Role))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("member role updated",
		slog.String("project_id", projectID.String()),
		slog.String("target_id", targetID.String()),
		slog.String("role", req.Role))

	shared.RespondWithJSON(w, r, http.StatusOK, memberResponse(member))
}

// RemoveMember handles DELETE /api/projects/{id}/members/{userID}
// requests. Members may remove themselves; managers may remove others.
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	targetID, err := getPathUUID(r, "userID")
	if err != nil {
		HandleAPIError(w, r, err, "Invalid user ID format")
		return
	}

	if err := h.projectService.RemoveMember(r.Context(), actorID, projectID, targetID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("member removed",
		slog.String("project_id", projectID.String()),
		slog.String("target_id", targetID.String()))

	w.WriteHeader(http.StatusNoContent)
}

func projectResponse(project *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		Status:      string(project.Status),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func projectResponses(projects []*domain.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectResponse(p))
	}
	return out
}

func memberResponse(member *domain.ProjectMember) MemberResponse {
	return MemberResponse{
		ID:        member.ID,
		ProjectID: member.ProjectID,
		UserID:    member.UserID,
		Role:      string(member.Role),
		JoinedAt:  member.JoinedAt,
	}
}

func memberResponses(members []*domain.ProjectMember) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse(m))
	}
	return out
}
