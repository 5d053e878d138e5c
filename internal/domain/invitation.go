package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// InvitationStatus tracks the lifecycle of a project invitation.
type InvitationStatus string

// Possible invitation status values
const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRevoked  InvitationStatus = "revoked"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// InvitationTTL is how long a pending invitation stays acceptable.
// The periodic sweep marks older pending invitations expired.
const InvitationTTL = 7 * 24 * time.Hour

// Common validation errors for ProjectInvitation
var (
	ErrEmptyInvitationID        = errors.New("invitation ID cannot be empty")
	ErrEmptyInvitationProjectID = errors.New("invitation project ID cannot be empty")
	ErrEmptyInvitationInviteeID = errors.New("invitation invitee ID cannot be empty")
	ErrEmptyInvitationInviterID = errors.New("invitation inviter ID cannot be empty")
	ErrInvalidInvitationStatus  = errors.New("invalid invitation status")
	ErrInvitationNotPending     = errors.New("invitation is no longer pending")
	ErrSelfInvitation           = errors.New("cannot invite yourself")
)

// ProjectInvitation asks a user to join a project with a given role.
// A project holds at most one invitation per invitee; accepting it
// creates the membership with the invitation's role.
type ProjectInvitation struct {
	ID        uuid.UUID        `json:"id"`
	ProjectID uuid.UUID        `json:"project_id"`
	InviteeID uuid.UUID        `json:"invitee_id"`
	Role      MemberRole       `json:"role"`
	InvitedBy uuid.UUID        `json:"invited_by"`
	Status    InvitationStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewProjectInvitation creates a pending invitation.
// An empty role defaults to member. Returns an error if validation fails
// or the inviter and invitee are the same user.
func NewProjectInvitation(projectID, inviteeID, invitedBy uuid.UUID, role MemberRole) (*ProjectInvitation, error) {
	if role == "" {
		role = RoleMember
	}

	now := time.Now().UTC()
	invitation := &ProjectInvitation{
		ID:        uuid.New(),
		ProjectID: projectID,
		InviteeID: inviteeID,
		Role:      role,
		InvitedBy: invitedBy,
		Status:    InvitationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := invitation.Validate(); err != nil {
		return nil, err
	}

	return invitation, nil
}

// Validate checks if the ProjectInvitation has valid data.
func (i *ProjectInvitation) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyInvitationID
	}

	if i.ProjectID == uuid.Nil {
		return ErrEmptyInvitationProjectID
	}

	if i.InviteeID == uuid.Nil {
		return ErrEmptyInvitationInviteeID
	}

	if i.InvitedBy == uuid.Nil {
		return ErrEmptyInvitationInviterID
	}

	if i.InviteeID == i.InvitedBy {
		return ErrSelfInvitation
	}

	if !IsValidMemberRole(i.Role) {
		return ErrInvalidMemberRole
	}

	if !isValidInvitationStatus(i.Status) {
		return ErrInvalidInvitationStatus
	}

	return nil
}

// Accept marks a pending invitation accepted.
// Returns ErrInvitationNotPending for any other current status.
func (i *ProjectInvitation) Accept() error {
	return i.transition(InvitationStatusAccepted)
}

// Revoke marks a pending invitation revoked.
// Returns ErrInvitationNotPending for any other current status.
func (i *ProjectInvitation) Revoke() error {
	return i.transition(InvitationStatusRevoked)
}

// Expire marks a pending invitation expired.
// Returns ErrInvitationNotPending for any other current status.
func (i *ProjectInvitation) Expire() error {
	return i.transition(InvitationStatusExpired)
}

// IsExpired reports whether a pending invitation has outlived InvitationTTL.
func (i *ProjectInvitation) IsExpired() bool {
	return i.Status == InvitationStatusPending &&
		time.Now().UTC().After(i.CreatedAt.Add(InvitationTTL))
}

// transition moves a pending invitation to a terminal status.
func (i *ProjectInvitation) transition(status InvitationStatus) error {
	if i.Status != InvitationStatusPending {
		return ErrInvitationNotPending
	}

	i.Status = status
	i.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidInvitationStatus checks if the given status is a valid InvitationStatus.
func isValidInvitationStatus(status InvitationStatus) bool {
	switch status {
	case InvitationStatusPending, InvitationStatusAccepted,
		InvitationStatusRevoked, InvitationStatusExpired:
		return true
	default:
		return false
	}
}
