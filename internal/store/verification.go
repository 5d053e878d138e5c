package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
)

// VerificationCodeStore defines the interface for verification code persistence.
type VerificationCodeStore interface {
	// Create saves a new code. Older unused codes for the same user and
	// purpose stay in place; GetLatest resolves which one wins.
	Create(ctx context.Context, code *domain.VerificationCode) error

	// GetLatest retrieves the most recently created unused code for the
	// given user and purpose.
	// Returns ErrCodeNotFound if no unused code exists.
	GetLatest(ctx context.Context, userID uuid.UUID, purpose domain.VerificationPurpose) (*domain.VerificationCode, error)

	// MarkUsed flags a code as redeemed.
	// Returns ErrCodeNotFound if the code does not exist.
	MarkUsed(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new VerificationCodeStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) VerificationCodeStore
}
