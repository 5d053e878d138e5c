package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus controls who can see a project.
type ProjectStatus string

// Possible project status values
const (
	// ProjectStatusPrivate limits visibility to the owner and members.
	ProjectStatusPrivate ProjectStatus = "private"

	// ProjectStatusPublic makes the project visible to everyone,
	// including unauthenticated callers of the public listing.
	ProjectStatusPublic ProjectStatus = "public"

	// ProjectStatusClosed marks a finished project. It stays visible to
	// its members but no longer accepts new tasks.
	ProjectStatusClosed ProjectStatus = "closed"
)

// Common validation errors for Project
var (
	ErrEmptyProjectID       = errors.New("project ID cannot be empty")
	ErrEmptyProjectOwnerID  = errors.New("project owner ID cannot be empty")
	ErrEmptyProjectName     = errors.New("project name cannot be empty")
	ErrProjectNameTooLong   = errors.New("project name must be at most 100 characters long")
	ErrInvalidProjectStatus = errors.New("invalid project status")
	ErrProjectClosed        = errors.New("project is closed")
)

// Project groups tasks under a single owner with role-based membership.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewProject creates a new Project owned by the given user.
// An empty status defaults to private. Returns an error if validation fails.
func NewProject(ownerID uuid.UUID, name, description string, status ProjectStatus) (*Project, error) {
	if status == "" {
		status = ProjectStatusPrivate
	}

	now := time.Now().UTC()
	project := &Project{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProjectID
	}

	if p.OwnerID == uuid.Nil {
		return ErrEmptyProjectOwnerID
	}

	if p.Name == "" {
		return ErrEmptyProjectName
	}

	if len(p.Name) > 100 {
		return ErrProjectNameTooLong
	}

	if !isValidProjectStatus(p.Status) {
		return ErrInvalidProjectStatus
	}

	return nil
}

// UpdateStatus changes the project's visibility and bumps UpdatedAt.
// Returns an error if the new status is invalid.
func (p *Project) UpdateStatus(status ProjectStatus) error {
	if !isValidProjectStatus(status) {
		return ErrInvalidProjectStatus
	}

	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// IsClosed reports whether the project no longer accepts new tasks.
func (p *Project) IsClosed() bool {
	return p.Status == ProjectStatusClosed
}

// isValidProjectStatus checks if the given status is a valid ProjectStatus.
func isValidProjectStatus(status ProjectStatus) bool {
	switch status {
	case ProjectStatusPrivate, ProjectStatusPublic, ProjectStatusClosed:
		return true
	default:
		return false
	}
}
