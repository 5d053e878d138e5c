package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
)

// InvitationStore defines the interface for project invitation persistence.
type InvitationStore interface {
	// Create saves a new invitation.
	// Returns ErrInvitationExists if the project already has an
	// invitation for that invitee.
	Create(ctx context.Context, invitation *domain.ProjectInvitation) error

	// GetByID retrieves an invitation by its unique ID.
	// Returns ErrInvitationNotFound if the invitation does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectInvitation, error)

	// Update persists a status change.
	// Returns ErrInvitationNotFound if the invitation does not exist.
	Update(ctx context.Context, invitation *domain.ProjectInvitation) error

	// ListPendingForUser returns the user's pending invitations, newest first.
	ListPendingForUser(ctx context.Context, inviteeID uuid.UUID) ([]*domain.ProjectInvitation, error)

	// ExpirePendingBefore marks pending invitations created before the
	// cutoff as expired. Returns how many rows changed. Used by the
	// periodic scheduler.
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// WithTx returns a new InvitationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) InvitationStore
}
