package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MemberRole describes what a project member may do.
type MemberRole string

// Possible member role values, from most to least privileged.
const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
	RoleViewer MemberRole = "viewer"
)

// Common validation errors for ProjectMember
var (
	ErrEmptyMemberID        = errors.New("member ID cannot be empty")
	ErrEmptyMemberProjectID = errors.New("member project ID cannot be empty")
	ErrEmptyMemberUserID    = errors.New("member user ID cannot be empty")
	ErrInvalidMemberRole    = errors.New("invalid member role")
)

// ProjectMember links a user to a project with a role.
// A user appears at most once per project.
type ProjectMember struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID uuid.UUID  `json:"project_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Role      MemberRole `json:"role"`
	JoinedAt  time.Time  `json:"joined_at"`
}

// NewProjectMember creates a membership row for the given project and user.
// An empty role defaults to member. Returns an error if validation fails.
func NewProjectMember(projectID, userID uuid.UUID, role MemberRole) (*ProjectMember, error) {
	if role == "" {
		role = RoleMember
	}

	member := &ProjectMember{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  time.Now().UTC(),
	}

	if err := member.Validate(); err != nil {
		return nil, err
	}

	return member, nil
}

// Validate checks if the ProjectMember has valid data.
func (m *ProjectMember) Validate() error {
	if m.ID == uuid.Nil {
		return ErrEmptyMemberID
	}

	if m.ProjectID == uuid.Nil {
		return ErrEmptyMemberProjectID
	}

	if m.UserID == uuid.Nil {
		return ErrEmptyMemberUserID
	}

	if !IsValidMemberRole(m.Role) {
		return ErrInvalidMemberRole
	}

	return nil
}

// CanManageProject reports whether the role may mutate the project,
// its members, and its invitations.
func (m *ProjectMember) CanManageProject() bool {
	return m.Role == RoleOwner || m.Role == RoleAdmin
}

// CanEditTasks reports whether the role may create and modify tasks.
// Viewers have read-only access.
func (m *ProjectMember) CanEditTasks() bool {
	return m.Role != RoleViewer
}

// IsValidMemberRole checks if the given role is a valid MemberRole.
func IsValidMemberRole(role MemberRole) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	default:
		return false
	}
}
