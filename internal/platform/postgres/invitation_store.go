package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/platform/logger"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// PostgresInvitationStore implements the store.InvitationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresInvitationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInvitationStore creates a new PostgreSQL implementation of
// the InvitationStore interface. If logger is nil, a default logger will
// be used.
func NewPostgresInvitationStore(db store.DBTX, logger *slog.Logger) *PostgresInvitationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInvitationStore{
		db:     db,
		logger: logger.With(slog.String("component", "invitation_store")),
	}
}

// Ensure PostgresInvitationStore implements store.InvitationStore interface
var _ store.InvitationStore = (*PostgresInvitationStore)(nil)

// invitationColumns is the column list shared by all invitation queries,
// in scan order.
const invitationColumns = "id, project_id, invitee_id, role, invited_by, status, created_at, updated_at"

// scanInvitation reads one invitation row from the given scanner.
func scanInvitation(scanner interface{ Scan(dest ...any) error }) (*domain.ProjectInvitation, error) {
	var invitation domain.ProjectInvitation
	var role, status string

	err := scanner.Scan(
		&invitation.ID,
		&invitation.ProjectID,
		&invitation.InviteeID,
		&role,
		&invitation.InvitedBy,
		&status,
		&invitation.CreatedAt,
		&invitation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	invitation.Role = domain.MemberRole(role)
	invitation.Status = domain.InvitationStatus(status)
	return &invitation, nil
}

// Create implements store.InvitationStore.Create
// Returns store.ErrInvitationExists if the project already has an
// invitation for that invitee.
// Returns store.ErrInvalidEntity if the project or a user does not exist.
func (s *PostgresInvitationStore) Create(ctx context.Context, invitation *domain.ProjectInvitation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := invitation.Validate(); err != nil {
		log.Warn("invitation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return err
	}

	query := `
		INSERT INTO project_invitations (id, project_id, invitee_id, role, invited_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		invitation.ID,
		invitation.ProjectID,
		invitation.InviteeID,
		invitation.Role,
		invitation.InvitedBy,
		invitation.Status,
		invitation.CreatedAt,
		invitation.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("invitee already invited to project",
				slog.String("project_id", invitation.ProjectID.String()),
				slog.String("invitee_id", invitation.InviteeID.String()))
			return MapUniqueViolation(err, "", "", store.ErrInvitationExists)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during invitation creation",
				slog.String("project_id", invitation.ProjectID.String()),
				slog.String("invitee_id", invitation.InviteeID.String()))
			return fmt.Errorf("%w: project or user not found", store.ErrInvalidEntity)
		}

		log.Error("failed to create invitation",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return MapError(err)
	}

	log.Info("invitation created successfully",
		slog.String("invitation_id", invitation.ID.String()),
		slog.String("project_id", invitation.ProjectID.String()),
		slog.String("invitee_id", invitation.InviteeID.String()))
	return nil
}

// GetByID implements store.InvitationStore.GetByID
// Returns store.ErrInvitationNotFound if the invitation does not exist.
func (s *PostgresInvitationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectInvitation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + invitationColumns + ` FROM project_invitations WHERE id = $1`

	invitation, err := scanInvitation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("invitation not found", slog.String("invitation_id", id.String()))
			return nil, store.ErrInvitationNotFound
		}
		log.Error("failed to get invitation by ID",
			slog.String("error", err.Error()),
			slog.String("invitation_id", id.String()))
		return nil, err
	}

	return invitation, nil
}

// Update implements store.InvitationStore.Update
// It persists the invitation's status and updated timestamp.
// Returns store.ErrInvitationNotFound if the invitation does not exist.
func (s *PostgresInvitationStore) Update(ctx context.Context, invitation *domain.ProjectInvitation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := invitation.Validate(); err != nil {
		log.Warn("invitation validation failed during update",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return err
	}

	invitation.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE project_invitations
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		invitation.Status,
		invitation.UpdatedAt,
		invitation.ID,
	)

	if err != nil {
		log.Error("failed to update invitation",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitation.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "invitation"); err != nil {
		log.Debug("invitation not found for update",
			slog.String("invitation_id", invitation.ID.String()))
		return store.ErrInvitationNotFound
	}

	log.Info("invitation updated successfully",
		slog.String("invitation_id", invitation.ID.String()),
		slog.String("status", string(invitation.Status)))
	return nil
}

// ListPendingForUser implements store.InvitationStore.ListPendingForUser
// It returns the user's pending invitations, newest first.
func (s *PostgresInvitationStore) ListPendingForUser(
	ctx context.Context,
	inviteeID uuid.UUID,
) ([]*domain.ProjectInvitation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + invitationColumns + `
		FROM project_invitations
		WHERE invitee_id = $1 AND status = $2
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, inviteeID, domain.InvitationStatusPending)
	if err != nil {
		log.Error("failed to query pending invitations",
			slog.String("error", err.Error()),
			slog.String("invitee_id", inviteeID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var invitations []*domain.ProjectInvitation
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			log.Error("failed to scan invitation row",
				slog.String("error", err.Error()))
			return nil, err
		}
		invitations = append(invitations, invitation)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning invitation rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if invitations == nil {
		invitations = []*domain.ProjectInvitation{}
	}
	return invitations, nil
}

// ExpirePendingBefore implements store.InvitationStore.ExpirePendingBefore
// It flips pending invitations created before the cutoff to expired and
// returns how many rows changed.
func (s *PostgresInvitationStore) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE project_invitations
		SET status = $1, updated_at = $2
		WHERE status = $3 AND created_at < $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		domain.InvitationStatusExpired,
		time.Now().UTC(),
		domain.InvitationStatusPending,
		cutoff,
	)
	if err != nil {
		log.Error("failed to expire invitations",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return 0, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()))
		return 0, err
	}

	if rowsAffected > 0 {
		log.Info("expired stale invitations",
			slog.Int64("count", rowsAffected),
			slog.Time("cutoff", cutoff))
	}
	return rowsAffected, nil
}

// WithTx implements store.InvitationStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresInvitationStore) WithTx(tx *sql.Tx) store.InvitationStore {
	return &PostgresInvitationStore{
		db:     tx,
		logger: s.logger,
	}
}
