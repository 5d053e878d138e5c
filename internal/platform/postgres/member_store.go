package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/platform/logger"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// PostgresMemberStore implements the store.MemberStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMemberStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMemberStore creates a new PostgreSQL implementation of the
// MemberStore interface. If logger is nil, a default logger will be used.
func NewPostgresMemberStore(db store.DBTX, logger *slog.Logger) *PostgresMemberStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMemberStore{
		db:     db,
		logger: logger.With(slog.String("component", "member_store")),
	}
}

// Ensure PostgresMemberStore implements store.MemberStore interface
var _ store.MemberStore = (*PostgresMemberStore)(nil)

// Create implements store.MemberStore.Create
// Returns store.ErrMemberExists if the user already belongs to the project.
// Returns store.ErrInvalidEntity if the project or user does not exist.
func (s *PostgresMemberStore) Create(ctx context.Context, member *domain.ProjectMember) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := member.Validate(); err != nil {
		log.Warn("member validation failed during create",
			slog.String("error", err.Error()),
			slog.String("member_id", member.ID.String()))
		return err
	}

	query := `
		INSERT INTO project_members (id, project_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		member.ID,
		member.ProjectID,
		member.UserID,
		member.Role,
		member.JoinedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("user already a member of project",
				slog.String("project_id", member.ProjectID.String()),
				slog.String("user_id", member.UserID.String()))
			return MapUniqueViolation(err, "", "", store.ErrMemberExists)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during member creation",
				slog.String("project_id", member.ProjectID.String()),
				slog.String("user_id", member.UserID.String()))
			return fmt.Errorf("%w: project or user not found", store.ErrInvalidEntity)
		}

		log.Error("failed to create project member",
			slog.String("error", err.Error()),
			slog.String("project_id", member.ProjectID.String()),
			slog.String("user_id", member.UserID.String()))
		return MapError(err)
	}

	log.Info("project member created successfully",
		slog.String("project_id", member.ProjectID.String()),
		slog.String("user_id", member.UserID.String()),
		slog.String("role", string(member.Role)))
	return nil
}

// Get implements store.MemberStore.Get
// Returns store.ErrMemberNotFound if the user is not a member of the project.
func (s *PostgresMemberStore) Get(ctx context.Context, projectID, userID uuid.UUID) (*domain.ProjectMember, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, project_id, user_id, role, joined_at
		FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`

	var member domain.ProjectMember
	var role string

	err := s.db.QueryRowContext(ctx, query, projectID, userID).Scan(
		&member.ID,
		&member.ProjectID,
		&member.UserID,
		&role,
		&member.JoinedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("member not found",
				slog.String("project_id", projectID.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrMemberNotFound
		}
		log.Error("failed to get project member",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	member.Role = domain.MemberRole(role)
	return &member, nil
}

// ListByProject implements store.MemberStore.ListByProject
// It returns all members of the project ordered by join time.
func (s *PostgresMemberStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectMember, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, project_id, user_id, role, joined_at
		FROM project_members
		WHERE project_id = $1
		ORDER BY joined_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		log.Error("failed to query project members",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var members []*domain.ProjectMember
	for rows.Next() {
		var member domain.ProjectMember
		var role string

		err := rows.Scan(
			&member.ID,
			&member.ProjectID,
			&member.UserID,
			&role,
			&member.JoinedAt,
		)
		if err != nil {
			log.Error("failed to scan member row",
				slog.String("error", err.Error()))
			return nil, err
		}

		member.Role = domain.MemberRole(role)
		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning member rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if members == nil {
		members = []*domain.ProjectMember{}
	}
	return members, nil
}

// UpdateRole implements store.MemberStore.UpdateRole
// Returns store.ErrMemberNotFound if the user is not a member of the project.
func (s *PostgresMemberStore) UpdateRole(
	ctx context.Context,
	projectID, userID uuid.UUID,
	role domain.MemberRole,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidMemberRole(role) {
		log.Warn("invalid role for member update",
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()),
			slog.String("role", string(role)))
		return domain.ErrInvalidMemberRole
	}

	query := `
		UPDATE project_members
		SET role = $1
		WHERE project_id = $2 AND user_id = $3
	`

	result, err := s.db.ExecContext(ctx, query, role, projectID, userID)
	if err != nil {
		log.Error("failed to update member role",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "member"); err != nil {
		log.Debug("member not found for role update",
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()))
		return store.ErrMemberNotFound
	}

	log.Info("member role updated successfully",
		slog.String("project_id", projectID.String()),
		slog.String("user_id", userID.String()),
		slog.String("role", string(role)))
	return nil
}

// Delete implements store.MemberStore.Delete
// Returns store.ErrMemberNotFound if the user is not a member of the project.
func (s *PostgresMemberStore) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		log.Error("failed to delete project member",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "member"); err != nil {
		log.Debug("member not found for delete",
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()))
		return store.ErrMemberNotFound
	}

	log.Info("project member removed successfully",
		slog.String("project_id", projectID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// WithTx implements store.MemberStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresMemberStore) WithTx(tx *sql.Tx) store.MemberStore {
	return &PostgresMemberStore{
		db:     tx,
		logger: s.logger,
	}
}
