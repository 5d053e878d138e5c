package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SeyyedAliBargh/task-manager-api/internal/domain"
	"github.com/SeyyedAliBargh/task-manager-api/internal/events"
	"github.com/SeyyedAliBargh/task-manager-api/internal/job"
	"github.com/SeyyedAliBargh/task-manager-api/internal/service/auth"
	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// UserService provides account lifecycle operations: registration with
// email activation, credential recovery, email changes, and profile
// management.
type UserService interface {
	// Register creates a new unverified user with their profile and emits an
	// activation email job. The user cannot log in until they activate.
	Register(ctx context.Context, email, password, firstName, lastName string) (*domain.User, error)

	// Activate redeems an activation token and marks the account verified.
	// Activating an already verified account is a no-op.
	Activate(ctx context.Context, tokenString string) (*domain.User, error)

	// ResendActivation emits a fresh activation email for an unverified
	// account. Returns ErrAlreadyVerified for verified accounts and the
	// store's not-found error for unknown addresses.
	ResendActivation(ctx context.Context, email string) error

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetProfile retrieves a user together with their profile.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, *domain.Profile, error)

	// UpdateProfile applies a partial update to the user's profile and
	// returns the updated profile. Nil fields are left unchanged.
	UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*domain.Profile, error)

	// RequestPasswordReset creates a reset code and emits a reset email.
	// Returns the store's not-found error for unknown addresses.
	RequestPasswordReset(ctx context.Context, email string) error

	// ConfirmPasswordReset redeems a reset code and sets the new password.
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error

	// RequestEmailChange creates an email change code and sends it to the
	// new address to prove the caller controls it.
	RequestEmailChange(ctx context.Context, userID uuid.UUID, newEmail string) error

	// ConfirmEmailChange redeems an email change code and swaps the
	// account email to the address the code was issued for.
	ConfirmEmailChange(ctx context.Context, userID uuid.UUID, code string) error

	// DeleteAccount removes the user and, through cascading deletes, their
	// profile, memberships, and invitations.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// UpdateProfileParams carries the optional fields of a profile update.
// Nil pointers mean "leave unchanged".
type UpdateProfileParams struct {
	FirstName   *string
	LastName    *string
	ImageURL    *string
	Description *string
}

// UserServiceError wraps errors from the user service with context.
type UserServiceError struct {
	// Operation is the operation that failed (e.g., "register", "activate")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for UserServiceError.
func (e *UserServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("user service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("user service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *UserServiceError) Unwrap() error {
	return e.Err
}

// NewUserServiceError creates a new UserServiceError. Sentinel errors stay
// reachable through Unwrap, so callers can keep using errors.Is.
func NewUserServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &UserServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	userStore    store.UserStore
	profileStore store.ProfileStore
	codeStore    store.VerificationCodeStore
	jwtService   auth.JWTService
	eventEmitter events.EventEmitter
	db           *sql.DB
	logger       *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	userStore store.UserStore,
	profileStore store.ProfileStore,
	codeStore store.VerificationCodeStore,
	jwtService auth.JWTService,
	eventEmitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) (UserService, error) {
	// Validate dependencies
	if userStore == nil {
		return nil, &UserServiceError{Operation: "create_service", Message: "userStore cannot be nil"}
	}
	if profileStore == nil {
		return nil, &UserServiceError{Operation: "create_service", Message: "profileStore cannot be nil"}
	}
	if codeStore == nil {
		return nil, &UserServiceError{Operation: "create_service", Message: "codeStore cannot be nil"}
	}
	if jwtService == nil {
		return nil, &UserServiceError{Operation: "create_service", Message: "jwtService cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &UserServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if db == nil {
		return nil, &UserServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		userStore:    userStore,
		profileStore: profileStore,
		codeStore:    codeStore,
		jwtService:   jwtService,
		eventEmitter: eventEmitter,
		db:           db,
		logger:       logger.With("component", "user_service"),
	}, nil
}

// Register creates a new user and their profile in one transaction, then
// emits the activation email job.
func (s *userServiceImpl) Register(
	ctx context.Context,
	email, password, firstName, lastName string,
) (*domain.User, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		s.logger.Debug("failed to create user object",
			"error", err,
			"email", email)
		return nil, NewUserServiceError("register", "invalid user data", err)
	}

	profile, err := domain.NewProfile(user.ID, firstName, lastName)
	if err != nil {
		s.logger.Debug("failed to create profile object",
			"error", err,
			"email", email)
		return nil, NewUserServiceError("register", "invalid profile data", err)
	}

	// The user and their profile are created together or not at all.
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.userStore.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.profileStore.WithTx(tx).Create(ctx, profile)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted to register with existing email",
				"email", user.Email)
		} else {
			s.logger.Error("failed to save user and profile",
				"error", err,
				"email", user.Email)
		}
		return nil, NewUserServiceError("register", "failed to create account", err)
	}

	s.logger.Info("user registered, pending activation",
		"user_id", user.ID,
		"email", user.Email)

	if err := s.emitActivationEmail(ctx, user); err != nil {
		// The account exists; the user can request a resend.
		return nil, NewUserServiceError("register", "failed to enqueue activation email", err)
	}

	return user, nil
}

// emitActivationEmail mints an activation token and emits the job event
// that delivers it by email.
func (s *userServiceImpl) emitActivationEmail(ctx context.Context, user *domain.User) error {
	token, err := s.jwtService.GenerateActivationToken(ctx, user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate activation token",
			"error", err,
			"user_id", user.ID)
		return fmt.Errorf("failed to generate activation token: %w", err)
	}

	payload := job.ActivationEmailPayload{
		Email:           user.Email,
		ActivationToken: token,
	}

	event, err := events.NewJobRequestEvent(job.JobTypeActivationEmail, payload)
	if err != nil {
		s.logger.Error("failed to create activation email event",
			"error", err,
			"user_id", user.ID)
		return fmt.Errorf("failed to create activation email event: %w", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit activation email event",
			"error", err,
			"user_id", user.ID,
			"event_id", event.ID)
		return fmt.Errorf("failed to emit activation email event: %w", err)
	}

	s.logger.Info("activation email event emitted",
		"user_id", user.ID,
		"event_id", event.ID)

	return nil
}

// Activate redeems an activation token and marks the account verified.
func (s *userServiceImpl) Activate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.jwtService.ValidateActivationToken(ctx, tokenString)
	if err != nil {
		s.logger.Debug("activation token rejected",
			"error", err)
		return nil, NewUserServiceError("activate", "invalid activation token", err)
	}

	user, err := s.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Debug("activation for unknown user",
			"error", err,
			"user_id", claims.UserID)
		return nil, NewUserServiceError("activate", "failed to retrieve user", err)
	}

	// The token must still refer to the account's current address.
	if claims.Email != "" && domain.NormalizeEmail(claims.Email) != user.Email {
		s.logger.Debug("activation token email does not match account",
			"user_id", user.ID)
		return nil, NewUserServiceError("activate", "stale activation token", auth.ErrInvalidActivationToken)
	}

	if user.IsVerified {
		s.logger.Debug("account already verified",
			"user_id", user.ID)
		return user, nil
	}

	user.MarkVerified()

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Update(ctx, user)
	})
	if err != nil {
		s.logger.Error("failed to mark user verified",
			"error", err,
			"user_id", user.ID)
		return nil, NewUserServiceError("activate", "failed to update user", err)
	}

	s.logger.Info("account activated",
		"user_id", user.ID,
		"email", user.Email)

	return user, nil
}

// ResendActivation emits a fresh activation email for an unverified account.
func (s *userServiceImpl) ResendActivation(ctx context.Context, email string) error {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Debug("failed to look up user for activation resend",
			"error", err,
			"email", email)
		return NewUserServiceError("resend_activation", "failed to retrieve user", err)
	}

	if user.IsVerified {
		s.logger.Debug("activation resend for verified account",
			"user_id", user.ID)
		return NewUserServiceError("resend_activation", "account already verified", ErrAlreadyVerified)
	}

	if err := s.emitActivationEmail(ctx, user); err != nil {
		return NewUserServiceError("resend_activation", "failed to enqueue activation email", err)
	}

	return nil
}

// GetUser retrieves a user by their ID.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		s.logger.Debug("failed to retrieve user",
			"error", err,
			"user_id", userID)
		return nil, NewUserServiceError("get_user", "failed to retrieve user", err)
	}

	return user, nil
}

// GetProfile retrieves a user together with their profile.
func (s *userServiceImpl) GetProfile(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.User, *domain.Profile, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		s.logger.Debug("failed to retrieve user for profile",
			"error", err,
			"user_id", userID)
		return nil, nil, NewUserServiceError("get_profile", "failed to retrieve user", err)
	}

	profile, err := s.profileStore.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to retrieve profile",
			"error", err,
			"user_id", userID)
		return nil, nil, NewUserServiceError("get_profile", "failed to retrieve profile", err)
	}

	return user, profile, nil
}

// UpdateProfile applies a partial update to the user's profile.
func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	params UpdateProfileParams,
) (*domain.Profile, error) {
	var profile *domain.Profile

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txProfiles := s.profileStore.WithTx(tx)

		var err error
		profile, err = txProfiles.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}

		if params.FirstName != nil {
			profile.FirstName = *params.FirstName
		}
		if params.LastName != nil {
			profile.LastName = *params.LastName
		}
		if params.ImageURL != nil {
			profile.ImageURL = *params.ImageURL
		}
		if params.Description != nil {
			profile.Description = *params.Description
		}

		if err := profile.Validate(); err != nil {
			return err
		}

		return txProfiles.Update(ctx, profile)
	})
	if err != nil {
		s.logger.Debug("failed to update profile",
			"error", err,
			"user_id", userID)
		return nil, NewUserServiceError("update_profile", "failed to update profile", err)
	}

	s.logger.Info("profile updated",
		"user_id", userID,
		"profile_id", profile.ID)

	return profile, nil
}

// RequestPasswordReset creates a reset code and emits the reset email job.
func (s *userServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Debug("failed to look up user for password reset",
			"error", err,
			"email", email)
		return NewUserServiceError("request_password_reset", "failed to retrieve user", err)
	}

	code, err := domain.NewVerificationCode(user.ID, domain.PurposePasswordReset, "")
	if err != nil {
		s.logger.Error("failed to create password reset code",
			"error", err,
			"user_id", user.ID)
		return NewUserServiceError("request_password_reset", "failed to create code", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.codeStore.WithTx(tx).Create(ctx, code)
	})
	if err != nil {
		s.logger.Error("failed to save password reset code",
			"error", err,
			"user_id", user.ID)
		return NewUserServiceError("request_password_reset", "failed to save code", err)
	}

	payload := job.PasswordResetEmailPayload{
		Email: user.Email,
		Code:  code.Code,
	}
	if err := s.emitEmailJob(ctx, job.JobTypePasswordResetEmail, payload, user.ID); err != nil {
		return NewUserServiceError("request_password_reset", "failed to enqueue reset email", err)
	}

	s.logger.Info("password reset code issued",
		"user_id", user.ID)

	return nil
}

// ConfirmPasswordReset redeems a reset code and sets the new password.
func (s *userServiceImpl) ConfirmPasswordReset(
	ctx context.Context,
	email, code, newPassword string,
) error {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// An unknown address reports the same error as a wrong code.
			s.logger.Debug("password reset confirm for unknown email",
				"email", email)
			return NewUserServiceError("confirm_password_reset", "unknown email", ErrInvalidCode)
		}
		return NewUserServiceError("confirm_password_reset", "failed to retrieve user", err)
	}

	vc, err := s.matchCode(ctx, user.ID, domain.PurposePasswordReset, code)
	if err != nil {
		return NewUserServiceError("confirm_password_reset", "code rejected", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.codeStore.WithTx(tx).MarkUsed(ctx, vc.ID); err != nil {
			return err
		}

		// The store hashes the plaintext password on update.
		user.Password = newPassword
		return s.userStore.WithTx(tx).Update(ctx, user)
	})
	if err != nil {
		s.logger.Error("failed to reset password",
			"error", err,
			"user_id", user.ID)
		return NewUserServiceError("confirm_password_reset", "failed to update password", err)
	}

	s.logger.Info("password reset completed",
		"user_id", user.ID)

	return nil
}

// RequestEmailChange creates an email change code and sends it to the new
// address.
func (s *userServiceImpl) RequestEmailChange(
	ctx context.Context,
	userID uuid.UUID,
	newEmail string,
) error {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return NewUserServiceError("request_email_change", "failed to retrieve user", err)
	}

	normalized := domain.NormalizeEmail(newEmail)

	// Reject addresses that are already taken, including the user's own.
	_, err = s.userStore.GetByEmail(ctx, normalized)
	if err == nil {
		s.logger.Debug("email change to taken address",
			"user_id", userID)
		return NewUserServiceError("request_email_change", "address already in use", store.ErrEmailExists)
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return NewUserServiceError("request_email_change", "failed to check address", err)
	}

	code, err := domain.NewVerificationCode(userID, domain.PurposeEmailChange, normalized)
	if err != nil {
		s.logger.Debug("failed to create email change code",
			"error", err,
			"user_id", userID)
		return NewUserServiceError("request_email_change", "failed to create code", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.codeStore.WithTx(tx).Create(ctx, code)
	})
	if err != nil {
		s.logger.Error("failed to save email change code",
			"error", err,
			"user_id", userID)
		return NewUserServiceError("request_email_change", "failed to save code", err)
	}

	payload := job.EmailChangeEmailPayload{
		To:       code.NewEmail,
		NewEmail: code.NewEmail,
		Code:     code.Code,
	}
	if err := s.emitEmailJob(ctx, job.JobTypeEmailChangeEmail, payload, user.ID); err != nil {
		return NewUserServiceError("request_email_change", "failed to enqueue email", err)
	}

	s.logger.Info("email change code issued",
		"user_id", userID)

	return nil
}

// ConfirmEmailChange redeems an email change code and swaps the account email.
func (s *userServiceImpl) ConfirmEmailChange(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return NewUserServiceError("confirm_email_change", "failed to retrieve user", err)
	}

	vc, err := s.matchCode(ctx, userID, domain.PurposeEmailChange, code)
	if err != nil {
		return NewUserServiceError("confirm_email_change", "code rejected", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.codeStore.WithTx(tx).MarkUsed(ctx, vc.ID); err != nil {
			return err
		}

		user.Email = vc.NewEmail
		return s.userStore.WithTx(tx).Update(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("email change lost race for address",
				"user_id", userID)
		} else {
			s.logger.Error("failed to change email",
				"error", err,
				"user_id", userID)
		}
		return NewUserServiceError("confirm_email_change", "failed to update email", err)
	}

	s.logger.Info("account email changed",
		"user_id", userID)

	return nil
}

// DeleteAccount removes the user and their dependent rows.
func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("attempted to delete non-existent user",
				"user_id", userID)
		} else {
			s.logger.Error("failed to delete user",
				"error", err,
				"user_id", userID)
		}
		return NewUserServiceError("delete_account", "failed to delete user", err)
	}

	s.logger.Info("account deleted",
		"user_id", userID)

	return nil
}

// matchCode loads the latest unused code for the user and purpose and
// compares it against the presented value. Codes are compared in constant
// time and case-insensitively, since users type them by hand.
func (s *userServiceImpl) matchCode(
	ctx context.Context,
	userID uuid.UUID,
	purpose domain.VerificationPurpose,
	presented string,
) (*domain.VerificationCode, error) {
	vc, err := s.codeStore.GetLatest(ctx, userID, purpose)
	if err != nil {
		if errors.Is(err, store.ErrCodeNotFound) {
			s.logger.Debug("no verification code on file",
				"user_id", userID,
				"purpose", purpose)
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	presented = strings.ToUpper(strings.TrimSpace(presented))
	if subtle.ConstantTimeCompare([]byte(vc.Code), []byte(presented)) != 1 {
		s.logger.Debug("verification code mismatch",
			"user_id", userID,
			"purpose", purpose)
		return nil, ErrInvalidCode
	}

	if err := vc.Redeem(); err != nil {
		s.logger.Debug("verification code not redeemable",
			"error", err,
			"user_id", userID,
			"purpose", purpose)
		return nil, err
	}

	return vc, nil
}

// emitEmailJob wraps payload marshalling and event emission for the email
// job types issued by this service.
func (s *userServiceImpl) emitEmailJob(
	ctx context.Context,
	jobType string,
	payload interface{},
	userID uuid.UUID,
) error {
	event, err := events.NewJobRequestEvent(jobType, payload)
	if err != nil {
		s.logger.Error("failed to create email job event",
			"error", err,
			"job_type", jobType,
			"user_id", userID)
		return fmt.Errorf("failed to create %s event: %w", jobType, err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit email job event",
			"error", err,
			"job_type", jobType,
			"user_id", userID,
			"event_id", event.ID)
		return fmt.Errorf("failed to emit %s event: %w", jobType, err)
	}

	return nil
}
