package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewVerificationCode(t *testing.T) {
	t.Parallel()
	// Test password reset code
	userID := uuid.New()

	code, err := NewVerificationCode(userID, PurposePasswordReset, "")

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if code.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if code.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, code.UserID)
	}

	if len(code.Code) != 8 {
		t.Errorf("Expected 8 character code, got %q", code.Code)
	}

	if code.Used {
		t.Error("Expected fresh code to be unused")
	}

	// Codes avoid characters users confuse when typing.
	for _, c := range code.Code {
		if strings.ContainsRune("0O1Il", c) {
			t.Errorf("Expected code to avoid ambiguous characters, got %q", code.Code)
		}
	}
}

func TestNewVerificationCodeEmailChange(t *testing.T) {
	t.Parallel()

	code, err := NewVerificationCode(uuid.New(), PurposeEmailChange, "New@Example.com")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if code.NewEmail != "new@example.com" {
		t.Errorf("Expected normalized new email, got %s", code.NewEmail)
	}
}

func TestNewVerificationCodeInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		userID   uuid.UUID
		purpose  VerificationPurpose
		newEmail string
		wantErr  error
	}{
		{"empty_user", uuid.Nil, PurposePasswordReset, "", ErrEmptyCodeUserID},
		{"bad_purpose", uuid.New(), "mfa", "", ErrInvalidPurpose},
		{"email_change_without_email", uuid.New(), PurposeEmailChange, "", ErrMissingNewEmail},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewVerificationCode(tc.userID, tc.purpose, tc.newEmail)
			if err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestVerificationCodeRedeem(t *testing.T) {
	t.Parallel()

	code, err := NewVerificationCode(uuid.New(), PurposePasswordReset, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := code.Redeem(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !code.Used {
		t.Error("Expected code to be marked used")
	}

	if err := code.Redeem(); err != ErrCodeAlreadyUsed {
		t.Errorf("Expected error %v, got %v", ErrCodeAlreadyUsed, err)
	}
}

func TestVerificationCodeRedeemExpired(t *testing.T) {
	t.Parallel()

	code, err := NewVerificationCode(uuid.New(), PurposePasswordReset, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	code.CreatedAt = time.Now().UTC().Add(-VerificationCodeTTL - time.Minute)

	if err := code.Redeem(); err != ErrCodeExpired {
		t.Errorf("Expected error %v, got %v", ErrCodeExpired, err)
	}

	if code.Used {
		t.Error("Expected expired code to stay unused")
	}
}

func TestGenerateCodeUniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateCode(verificationCodeLength)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if seen[code] {
			t.Fatalf("Expected unique codes, got duplicate %q", code)
		}
		seen[code] = true
	}
}
