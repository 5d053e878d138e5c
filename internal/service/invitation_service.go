package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/events"
	"github.com/SeyyedAliBargh/task-manager-api/internal/job"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// InvitationService manages project invitations. Owners and admins invite
// existing users by email; the invitee accepts or declines. Accepting
// creates the membership with the invitation's role. Pending invitations
// outlive neither the TTL nor a revocation by a project manager.
type InvitationService interface {
	// InviteUser invites the user registered under inviteeEmail to the
	// project. An empty role defaults to member; the owner role cannot
	// be granted by invitation.
	InviteUser(ctx context.Context, actorID, projectID uuid.UUID, inviteeEmail string, role domain.MemberRole) (*domain.ProjectInvitation, error)

	// ListMyInvitations returns the caller's pending invitations,
	// newest first.
	ListMyInvitations(ctx context.Context, userID uuid.UUID) ([]*domain.ProjectInvitation, error)

	// AcceptInvitation accepts a pending invitation addressed to the
	// caller and creates the project membership.
	AcceptInvitation(ctx context.Context, userID, invitationID uuid.UUID) (*domain.ProjectMember, error)

	// DeclineInvitation declines a pending invitation addressed to the
	// caller.
	DeclineInvitation(ctx context.Context, userID, invitationID uuid.UUID) error

	// RevokeInvitation withdraws a pending invitation. Only owners and
	// admins of the invitation's project may revoke it.
	RevokeInvitation(ctx context.Context, actorID, invitationID uuid.UUID) error
}

// invitationServiceImpl implements the InvitationService interface
type invitationServiceImpl struct {
	invitationStore store.InvitationStore
	projectStore    store.ProjectStore
	memberStore     store.MemberStore
	userStore       store.UserStore
	eventEmitter    events.EventEmitter
	db              *sql.DB
	logger          *slog.Logger
}

// NewInvitationService creates a new InvitationService
func NewInvitationService(
	invitationStore store.InvitationStore,
	projectStore store.ProjectStore,
	memberStore store.MemberStore,
	userStore store.UserStore,
	eventEmitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) InvitationService {
	return &invitationServiceImpl{
		invitationStore: invitationStore,
		projectStore:    projectStore,
		memberStore:     memberStore,
		userStore:       userStore,
		eventEmitter:    eventEmitter,
		db:              db,
		logger:          logger.With("component", "invitation_service"),
	}
}

// InviteUser creates a pending invitation and emails the invitee.
func (s *invitationServiceImpl) InviteUser(
	ctx context.Context,
	actorID, projectID uuid.UUID,
	inviteeEmail string,
	role domain.MemberRole,
) (*domain.ProjectInvitation, error) {
	if role != "" && (!domain.IsValidMemberRole(role) || role == domain.RoleOwner) {
		s.logger.Debug("invitation with invalid role",
			"project_id", projectID,
			"role", role)
		return nil, ErrInvalidRole
	}

	if _, err := s.requireManager(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve project: %w", err)
	}

	invitee, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(inviteeEmail))
	if err != nil {
		s.logger.Debug("invitee lookup failed",
			"error", err,
			"project_id", projectID)
		return nil, fmt.Errorf("failed to look up invitee: %w", err)
	}

	_, err = s.memberStore.Get(ctx, projectID, invitee.ID)
	if err == nil {
		return nil, fmt.Errorf("invitee already belongs to the project: %w", store.ErrMemberExists)
	}
	if !errors.Is(err, store.ErrMemberNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	invitation, err := domain.NewProjectInvitation(projectID, invitee.ID, actorID, role)
	if err != nil {
		s.logger.Debug("invalid invitation data",
			"error", err,
			"project_id", projectID)
		return nil, fmt.Errorf("invalid invitation data: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.invitationStore.WithTx(tx).Create(ctx, invitation)
	})
	if err != nil {
		s.logger.Error("failed to save invitation",
			"error", err,
			"project_id", projectID,
			"invitee_id", invitee.ID)
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.logger.Info("invitation created",
		"invitation_id", invitation.ID,
		"project_id", projectID,
		"invitee_id", invitee.ID,
		"role", invitation.Role)

	// The invitation row is committed. A failed email event leaves it
	// acceptable from the invitee's pending list.
	payload := job.InvitationEmailPayload{
		Email:       invitee.Email,
		ProjectName: project.Name,
		Role:        string(invitation.Role),
	}
	if err := s.emitInvitationEmail(ctx, payload, invitation.ID); err != nil {
		return nil, err
	}

	return invitation, nil
}

// ListMyInvitations returns the caller's pending invitations.
func (s *invitationServiceImpl) ListMyInvitations(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.ProjectInvitation, error) {
	invitations, err := s.invitationStore.ListPendingForUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list invitations",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// AcceptInvitation accepts a pending invitation and creates the membership.
func (s *invitationServiceImpl) AcceptInvitation(
	ctx context.Context,
	userID, invitationID uuid.UUID,
) (*domain.ProjectMember, error) {
	invitation, err := s.invitationStore.GetByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve invitation: %w", err)
	}

	if invitation.InviteeID != userID {
		s.logger.Debug("invitation accept by non-invitee",
			"invitation_id", invitationID,
			"user_id", userID)
		return nil, ErrPermissionDenied
	}

	if invitation.IsExpired() {
		if err := s.markExpired(ctx, invitation); err != nil {
			s.logger.Error("failed to persist invitation expiry",
				"error", err,
				"invitation_id", invitationID)
		}
		return nil, ErrInvitationExpired
	}

	if err := invitation.Accept(); err != nil {
		s.logger.Debug("invitation not acceptable",
			"error", err,
			"invitation_id", invitationID,
			"status", invitation.Status)
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	member, err := domain.NewProjectMember(invitation.ProjectID, userID, invitation.Role)
	if err != nil {
		return nil, fmt.Errorf("invalid membership data: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.invitationStore.WithTx(tx).Update(ctx, invitation); err != nil {
			return err
		}
		return s.memberStore.WithTx(tx).Create(ctx, member)
	})
	if err != nil {
		s.logger.Error("failed to accept invitation",
			"error", err,
			"invitation_id", invitationID,
			"user_id", userID)
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	s.logger.Info("invitation accepted",
		"invitation_id", invitationID,
		"project_id", invitation.ProjectID,
		"user_id", userID,
		"role", member.Role)

	return member, nil
}

// DeclineInvitation declines a pending invitation addressed to the caller.
func (s *invitationServiceImpl) DeclineInvitation(
	ctx context.Context,
	userID, invitationID uuid.UUID,
) error {
	invitation, err := s.invitationStore.GetByID(ctx, invitationID)
	if err != nil {
		return fmt.Errorf("failed to retrieve invitation: %w", err)
	}

	if invitation.InviteeID != userID {
		s.logger.Debug("invitation decline by non-invitee",
			"invitation_id", invitationID,
			"user_id", userID)
		return ErrPermissionDenied
	}

	if err := invitation.Revoke(); err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.invitationStore.WithTx(tx).Update(ctx, invitation)
	})
	if err != nil {
		s.logger.Error("failed to decline invitation",
			"error", err,
			"invitation_id", invitationID)
		return fmt.Errorf("failed to decline invitation: %w", err)
	}

	s.logger.Info("invitation declined",
		"invitation_id", invitationID,
		"user_id", userID)

	return nil
}

// RevokeInvitation withdraws a pending invitation on behalf of a project
// manager.
func (s *invitationServiceImpl) RevokeInvitation(
	ctx context.Context,
	actorID, invitationID uuid.UUID,
) error {
	invitation, err := s.invitationStore.GetByID(ctx, invitationID)
	if err != nil {
		return fmt.Errorf("failed to retrieve invitation: %w", err)
	}

	if _, err := s.requireManager(ctx, invitation.ProjectID, actorID); err != nil {
		return err
	}

	if err := invitation.Revoke(); err != nil {
		return fmt.Errorf("failed to revoke invitation: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.invitationStore.WithTx(tx).Update(ctx, invitation)
	})
	if err != nil {
		s.logger.Error("failed to revoke invitation",
			"error", err,
			"invitation_id", invitationID)
		return fmt.Errorf("failed to revoke invitation: %w", err)
	}

	s.logger.Info("invitation revoked",
		"invitation_id", invitationID,
		"project_id", invitation.ProjectID,
		"actor_id", actorID)

	return nil
}

// requireManager loads the actor's membership and rejects roles that
// cannot manage the project.
func (s *invitationServiceImpl) requireManager(
	ctx context.Context,
	projectID, userID uuid.UUID,
) (*domain.ProjectMember, error) {
	member, err := s.memberStore.Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			s.logger.Debug("actor is not a member",
				"project_id", projectID,
				"user_id", userID)
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member.CanManageProject() {
		s.logger.Debug("invitation management denied",
			"project_id", projectID,
			"user_id", userID,
			"role", member.Role)
		return nil, ErrPermissionDenied
	}
	return member, nil
}

// markExpired persists the expired status on an invitation whose TTL has
// passed.
func (s *invitationServiceImpl) markExpired(
	ctx context.Context,
	invitation *domain.ProjectInvitation,
) error {
	if err := invitation.Expire(); err != nil {
		return err
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.invitationStore.WithTx(tx).Update(ctx, invitation)
	})
}

// emitInvitationEmail wraps the invitation notice in a job request event.
func (s *invitationServiceImpl) emitInvitationEmail(
	ctx context.Context,
	payload job.InvitationEmailPayload,
	invitationID uuid.UUID,
) error {
	event, err := events.NewJobRequestEvent(job.JobTypeInvitationEmail, payload)
	if err != nil {
		s.logger.Error("failed to create invitation email event",
			"error", err,
			"invitation_id", invitationID)
		return fmt.Errorf("failed to create invitation email event: %w", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit invitation email event",
			"error", err,
			"invitation_id", invitationID,
			"event_id", event.ID)
		return fmt.Errorf("failed to emit invitation email event: %w", err)
	}

	return nil
}
