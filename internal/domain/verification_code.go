package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VerificationPurpose says what a code authorizes once presented.
type VerificationPurpose string

// Possible verification purposes
const (
	// PurposePasswordReset authorizes setting a new password without the old one.
	PurposePasswordReset VerificationPurpose = "password_reset"

	// PurposeEmailChange authorizes swapping the account email to NewEmail.
	PurposeEmailChange VerificationPurpose = "email_change"
)

// VerificationCodeTTL is how long a code stays redeemable.
const VerificationCodeTTL = 24 * time.Hour

// verificationCodeLength is the number of characters in a generated code.
const verificationCodeLength = 8

// Common validation errors for VerificationCode
var (
	ErrEmptyCodeID     = errors.New("verification code ID cannot be empty")
	ErrEmptyCodeUserID = errors.New("verification code user ID cannot be empty")
	ErrEmptyCode       = errors.New("verification code cannot be empty")
	ErrInvalidPurpose  = errors.New("invalid verification purpose")
	ErrMissingNewEmail = errors.New("email change code requires a new email")
	ErrCodeAlreadyUsed = errors.New("verification code already used")
	ErrCodeExpired     = errors.New("verification code has expired")
)

// VerificationCode is a single-use, short-lived code emailed to a user to
// authorize a password reset or an email change.
type VerificationCode struct {
	ID        uuid.UUID           `json:"id"`
	UserID    uuid.UUID           `json:"user_id"`
	Purpose   VerificationPurpose `json:"purpose"`
	Code      string              `json:"-"` // Never expose codes in JSON
	NewEmail  string              `json:"-"` // Set only for email changes
	Used      bool                `json:"used"`
	CreatedAt time.Time           `json:"created_at"`
}

// NewVerificationCode creates a fresh code for the given user and purpose.
// newEmail is required for email changes and must be empty otherwise.
func NewVerificationCode(userID uuid.UUID, purpose VerificationPurpose, newEmail string) (*VerificationCode, error) {
	code, err := generateCode(verificationCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	vc := &VerificationCode{
		ID:        uuid.New(),
		UserID:    userID,
		Purpose:   purpose,
		Code:      code,
		NewEmail:  NormalizeEmail(newEmail),
		CreatedAt: time.Now().UTC(),
	}

	if err := vc.Validate(); err != nil {
		return nil, err
	}

	return vc, nil
}

// Validate checks if the VerificationCode has valid data.
func (c *VerificationCode) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCodeID
	}

	if c.UserID == uuid.Nil {
		return ErrEmptyCodeUserID
	}

	if c.Code == "" {
		return ErrEmptyCode
	}

	switch c.Purpose {
	case PurposePasswordReset:
	case PurposeEmailChange:
		if c.NewEmail == "" {
			return ErrMissingNewEmail
		}
	default:
		return ErrInvalidPurpose
	}

	return nil
}

// Redeem marks the code used. Returns ErrCodeAlreadyUsed if it was
// already redeemed and ErrCodeExpired past its TTL.
func (c *VerificationCode) Redeem() error {
	if c.Used {
		return ErrCodeAlreadyUsed
	}

	if time.Now().UTC().After(c.CreatedAt.Add(VerificationCodeTTL)) {
		return ErrCodeExpired
	}

	c.Used = true
	return nil
}

// codeAlphabet excludes ambiguous characters (0/O, 1/I/l) since users
// type these codes by hand.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// generateCode returns a random code of n characters from codeAlphabet.
func generateCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}

	return string(buf), nil
}
