package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
)

// ProjectStore defines the interface for project data persistence.
type ProjectStore interface {
	// Create saves a new project to the store.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// Update modifies an existing project.
	// Returns ErrProjectNotFound if the project does not exist.
	Update(ctx context.Context, project *domain.Project) error

	// Delete removes a project and, through cascading foreign keys, its
	// tasks, memberships, and invitations.
	// Returns ErrProjectNotFound if the project does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListForUser returns the projects the user owns or is a member of,
	// newest first, along with the total count before paging.
	ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Project, int, error)

	// ListPublic returns projects with public status, newest first,
	// along with the total count before paging.
	ListPublic(ctx context.Context, offset, limit int) ([]*domain.Project, int, error)

	// WithTx returns a new ProjectStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProjectStore
}

// MemberStore defines the interface for project membership persistence.
type MemberStore interface {
	// Create adds a member to a project.
	// Returns ErrMemberExists if the user already belongs to the project.
	Create(ctx context.Context, member *domain.ProjectMember) error

	// Get retrieves the membership row for the given project and user.
	// Returns ErrMemberNotFound if the user is not a member.
	Get(ctx context.Context, projectID, userID uuid.UUID) (*domain.ProjectMember, error)

	// ListByProject returns all members of a project ordered by join time.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMember, error)

	// UpdateRole changes a member's role.
	// Returns ErrMemberNotFound if the user is not a member.
	UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role domain.MemberRole) error

	// Delete removes a member from a project.
	// Returns ErrMemberNotFound if the user is not a member.
	Delete(ctx context.Context, projectID, userID uuid.UUID) error

	// WithTx returns a new MemberStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) MemberStore
}
