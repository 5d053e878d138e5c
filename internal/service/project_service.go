package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// ProjectService provides project and membership operations. Every method
// that acts on an existing project enforces the caller's role first.
type ProjectService interface {
	// CreateProject creates a project and enrolls the creator as its owner.
	CreateProject(ctx context.Context, ownerID uuid.UUID, name, description string, status domain.ProjectStatus) (*domain.Project, error)

	// GetProject retrieves a project the user is a member of. Public
	// projects are visible to any user.
	GetProject(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error)

	// ListProjects returns the page of projects the user belongs to,
	// together with the total count.
	ListProjects(ctx context.Context, userID uuid.UUID, page PageRequest) ([]*domain.Project, int, error)

	// ListPublicProjects returns the page of public projects, together
	// with the total count.
	ListPublicProjects(ctx context.Context, page PageRequest) ([]*domain.Project, int, error)

	// UpdateProject applies a partial update to a project. The caller must
	// be the owner or an admin.
	UpdateProject(ctx context.Context, userID, projectID uuid.UUID, params UpdateProjectParams) (*domain.Project, error)

	// DeleteProject removes a project and everything under it. The caller
	// must be the owner or an admin.
	DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error

	// ListMembers returns the members of a project the user may see.
	ListMembers(ctx context.Context, userID, projectID uuid.UUID) ([]*domain.ProjectMember, error)

	// UpdateMemberRole changes another member's role. The caller must be
	// the owner or an admin; the owner's role cannot be changed and the
	// owner role cannot be granted.
	UpdateMemberRole(ctx context.Context, actorID, projectID, targetID uuid.UUID, role domain.MemberRole) (*domain.ProjectMember, error)

	// RemoveMember removes a member from a project. Owners and admins may
	// remove anyone but the owner; members may remove themselves.
	RemoveMember(ctx context.Context, actorID, projectID, targetID uuid.UUID) error
}

// UpdateProjectParams carries the optional fields of a project update.
// Nil pointers mean "leave unchanged".
type UpdateProjectParams struct {
	Name        *string
	Description *string
	Status      *domain.ProjectStatus
}

// projectServiceImpl implements the ProjectService interface
type projectServiceImpl struct {
	projectStore store.ProjectStore
	memberStore  store.MemberStore
	db           *sql.DB
	logger       *slog.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectStore store.ProjectStore,
	memberStore store.MemberStore,
	db *sql.DB,
	logger *slog.Logger,
) ProjectService {
	return &projectServiceImpl{
		projectStore: projectStore,
		memberStore:  memberStore,
		db:           db,
		logger:       logger.With("component", "project_service"),
	}
}

// CreateProject creates a project and its owner membership in one transaction.
func (s *projectServiceImpl) CreateProject(
	ctx context.Context,
	ownerID uuid.UUID,
	name, description string,
	status domain.ProjectStatus,
) (*domain.Project, error) {
	project, err := domain.NewProject(ownerID, name, description, status)
	if err != nil {
		s.logger.Debug("invalid project data",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("invalid project data: %w", err)
	}

	owner, err := domain.NewProjectMember(project.ID, ownerID, domain.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.projectStore.WithTx(tx).Create(ctx, project); err != nil {
			return err
		}
		return s.memberStore.WithTx(tx).Create(ctx, owner)
	})
	if err != nil {
		s.logger.Error("failed to save project",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		"project_id", project.ID,
		"owner_id", ownerID)

	return project, nil
}

// GetProject retrieves a project, enforcing visibility.
func (s *projectServiceImpl) GetProject(
	ctx context.Context,
	userID, projectID uuid.UUID,
) (*domain.Project, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		s.logger.Debug("failed to retrieve project",
			"error", err,
			"project_id", projectID)
		return nil, fmt.Errorf("failed to retrieve project: %w", err)
	}

	if project.Status != domain.ProjectStatusPublic {
		if _, err := s.requireMember(ctx, projectID, userID); err != nil {
			return nil, err
		}
	}

	return project, nil
}

// ListProjects returns the page of projects the user belongs to.
func (s *projectServiceImpl) ListProjects(
	ctx context.Context,
	userID uuid.UUID,
	page PageRequest,
) ([]*domain.Project, int, error) {
	projects, total, err := s.projectStore.ListForUser(ctx, userID, page.Offset(), page.PageSize)
	if err != nil {
		s.logger.Error("failed to list projects",
			"error", err,
			"user_id", userID)
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

// ListPublicProjects returns the page of public projects.
func (s *projectServiceImpl) ListPublicProjects(
	ctx context.Context,
	page PageRequest,
) ([]*domain.Project, int, error) {
	projects, total, err := s.projectStore.ListPublic(ctx, page.Offset(), page.PageSize)
	if err != nil {
		s.logger.Error("failed to list public projects",
			"error", err)
		return nil, 0, fmt.Errorf("failed to list public projects: %w", err)
	}

	return projects, total, nil
}

// UpdateProject applies a partial update after checking the caller's role.
func (s *projectServiceImpl) UpdateProject(
	ctx context.Context,
	userID, projectID uuid.UUID,
	params UpdateProjectParams,
) (*domain.Project, error) {
	member, err := s.requireMember(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !member.CanManageProject() {
		s.logger.Debug("project update denied",
			"project_id", projectID,
			"user_id", userID,
			"role", member.Role)
		return nil, ErrPermissionDenied
	}

	var project *domain.Project

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txProjects := s.projectStore.WithTx(tx)

		var err error
		project, err = txProjects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}

		if params.Name != nil {
			project.Name = *params.Name
		}
		if params.Description != nil {
			project.Description = *params.Description
		}
		if params.Status != nil {
			if err := project.UpdateStatus(*params.Status); err != nil {
				return err
			}
		}

		if err := project.Validate(); err != nil {
			return err
		}

		return txProjects.Update(ctx, project)
	})
	if err != nil {
		s.logger.Debug("failed to update project",
			"error", err,
			"project_id", projectID)
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.logger.Info("project updated",
		"project_id", projectID,
		"user_id", userID)

	return project, nil
}

// DeleteProject removes a project after checking the caller's role.
func (s *projectServiceImpl) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error {
	member, err := s.requireMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !member.CanManageProject() {
		s.logger.Debug("project delete denied",
			"project_id", projectID,
			"user_id", userID,
			"role", member.Role)
		return ErrPermissionDenied
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.projectStore.WithTx(tx).Delete(ctx, projectID)
	})
	if err != nil {
		s.logger.Error("failed to delete project",
			"error", err,
			"project_id", projectID)
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Info("project deleted",
		"project_id", projectID,
		"user_id", userID)

	return nil
}

// ListMembers returns the members of a project, enforcing visibility.
func (s *projectServiceImpl) ListMembers(
	ctx context.Context,
	userID, projectID uuid.UUID,
) ([]*domain.ProjectMember, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve project: %w", err)
	}

	if project.Status != domain.ProjectStatusPublic {
		if _, err := s.requireMember(ctx, projectID, userID); err != nil {
			return nil, err
		}
	}

	members, err := s.memberStore.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to list members",
			"error", err,
			"project_id", projectID)
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return members, nil
}

// UpdateMemberRole changes another member's role.
func (s *projectServiceImpl) UpdateMemberRole(
	ctx context.Context,
	actorID, projectID, targetID uuid.UUID,
	role domain.MemberRole,
) (*domain.ProjectMember, error) {
	if !domain.IsValidMemberRole(role) || role == domain.RoleOwner {
		return nil, ErrInvalidRole
	}

	actor, err := s.requireMember(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManageProject() {
		s.logger.Debug("role change denied",
			"project_id", projectID,
			"actor_id", actorID,
			"role", actor.Role)
		return nil, ErrPermissionDenied
	}

	target, err := s.memberStore.Get(ctx, projectID, targetID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, fmt.Errorf("target is not a member: %w", ErrNotMember)
		}
		return nil, fmt.Errorf("failed to retrieve member: %w", err)
	}
	if target.Role == domain.RoleOwner {
		return nil, ErrCannotRemoveOwner
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.memberStore.WithTx(tx).UpdateRole(ctx, projectID, targetID, role)
	})
	if err != nil {
		s.logger.Error("failed to update member role",
			"error", err,
			"project_id", projectID,
			"target_id", targetID)
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}

	target.Role = role

	s.logger.Info("member role updated",
		"project_id", projectID,
		"target_id", targetID,
		"role", role,
		"actor_id", actorID)

	return target, nil
}

// RemoveMember removes a member from a project.
func (s *projectServiceImpl) RemoveMember(
	ctx context.Context,
	actorID, projectID, targetID uuid.UUID,
) error {
	actor, err := s.requireMember(ctx, projectID, actorID)
	if err != nil {
		return err
	}

	// Members may leave on their own; removing someone else needs a
	// managing role.
	if actorID != targetID && !actor.CanManageProject() {
		s.logger.Debug("member removal denied",
			"project_id", projectID,
			"actor_id", actorID,
			"role", actor.Role)
		return ErrPermissionDenied
	}

	target, err := s.memberStore.Get(ctx, projectID, targetID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return fmt.Errorf("target is not a member: %w", ErrNotMember)
		}
		return fmt.Errorf("failed to retrieve member: %w", err)
	}
	if target.Role == domain.RoleOwner {
		return ErrCannotRemoveOwner
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.memberStore.WithTx(tx).Delete(ctx, projectID, targetID)
	})
	if err != nil {
		s.logger.Error("failed to remove member",
			"error", err,
			"project_id", projectID,
			"target_id", targetID)
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.logger.Info("member removed",
		"project_id", projectID,
		"target_id", targetID,
		"actor_id", actorID)

	return nil
}

// requireMember loads the caller's membership, mapping a missing row to
// ErrNotMember.
func (s *projectServiceImpl) requireMember(
	ctx context.Context,
	projectID, userID uuid.UUID,
) (*domain.ProjectMember, error) {
	member, err := s.memberStore.Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			s.logger.Debug("caller is not a member",
				"project_id", projectID,
				"user_id", userID)
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	return member, nil
}
