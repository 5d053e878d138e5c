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

// PostgresVerificationCodeStore implements the store.VerificationCodeStore
// interface using a PostgreSQL database as the storage backend.
type PostgresVerificationCodeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVerificationCodeStore creates a new PostgreSQL implementation
// of the VerificationCodeStore interface. If logger is nil, a default
// logger will be used.
func NewPostgresVerificationCodeStore(db store.DBTX, logger *slog.Logger) *PostgresVerificationCodeStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresVerificationCodeStore{
		db:     db,
		logger: logger.With(slog.String("component", "verification_code_store")),
	}
}

// Ensure PostgresVerificationCodeStore implements store.VerificationCodeStore interface
var _ store.VerificationCodeStore = (*PostgresVerificationCodeStore)(nil)

// Create implements store.VerificationCodeStore.Create
// Returns store.ErrInvalidEntity if the user does not exist.
func (s *PostgresVerificationCodeStore) Create(ctx context.Context, code *domain.VerificationCode) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := code.Validate(); err != nil {
		log.Warn("verification code validation failed during create",
			slog.String("error", err.Error()),
			slog.String("code_id", code.ID.String()))
		return err
	}

	query := `
		INSERT INTO verification_codes (id, user_id, purpose, code, new_email, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		code.ID,
		code.UserID,
		code.Purpose,
		code.Code,
		code.NewEmail,
		code.Used,
		code.CreatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during code creation",
				slog.String("code_id", code.ID.String()),
				slog.String("user_id", code.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, code.UserID)
		}

		log.Error("failed to create verification code",
			slog.String("error", err.Error()),
			slog.String("code_id", code.ID.String()),
			slog.String("user_id", code.UserID.String()))
		return MapError(err)
	}

	log.Info("verification code created",
		slog.String("code_id", code.ID.String()),
		slog.String("user_id", code.UserID.String()),
		slog.String("purpose", string(code.Purpose)))
	return nil
}

// GetLatest implements store.VerificationCodeStore.GetLatest
// It returns the most recently created unused code for the user and
// purpose, so a reissued code supersedes earlier ones.
// Returns store.ErrCodeNotFound if no unused code exists.
func (s *PostgresVerificationCodeStore) GetLatest(
	ctx context.Context,
	userID uuid.UUID,
	purpose domain.VerificationPurpose,
) (*domain.VerificationCode, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, purpose, code, new_email, used, created_at
		FROM verification_codes
		WHERE user_id = $1 AND purpose = $2 AND used = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`

	var code domain.VerificationCode
	var purposeStr string

	err := s.db.QueryRowContext(ctx, query, userID, purpose).Scan(
		&code.ID,
		&code.UserID,
		&purposeStr,
		&code.Code,
		&code.NewEmail,
		&code.Used,
		&code.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("verification code not found",
				slog.String("user_id", userID.String()),
				slog.String("purpose", string(purpose)))
			return nil, store.ErrCodeNotFound
		}
		log.Error("failed to get verification code",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	code.Purpose = domain.VerificationPurpose(purposeStr)
	return &code, nil
}

// MarkUsed implements store.VerificationCodeStore.MarkUsed
// Returns store.ErrCodeNotFound if the code does not exist.
func (s *PostgresVerificationCodeStore) MarkUsed(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE verification_codes SET used = TRUE WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to mark verification code used",
			slog.String("error", err.Error()),
			slog.String("code_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "verification code"); err != nil {
		log.Debug("verification code not found for update",
			slog.String("code_id", id.String()))
		return store.ErrCodeNotFound
	}

	return nil
}

// WithTx implements store.VerificationCodeStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresVerificationCodeStore) WithTx(tx *sql.Tx) store.VerificationCodeStore {
	return &PostgresVerificationCodeStore{
		db:     tx,
		logger: s.logger,
	}
}
