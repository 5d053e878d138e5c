package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewProfile(t *testing.T) {
	t.Parallel()
	// Test valid profile creation
	userID := uuid.New()

	profile, err := NewProfile(userID, "Ada", "Lovelace")

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if profile.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if profile.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, profile.UserID)
	}

	if profile.FirstName != "Ada" || profile.LastName != "Lovelace" {
		t.Errorf("Expected name Ada Lovelace, got %s %s", profile.FirstName, profile.LastName)
	}
}

func TestNewProfileEmptyNamesAllowed(t *testing.T) {
	t.Parallel()
	// Profiles are created automatically at registration, before the
	// user has told us anything about themselves.
	profile, err := NewProfile(uuid.New(), "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if profile.FirstName != "" || profile.LastName != "" {
		t.Error("Expected empty names to be preserved")
	}
}

func TestProfileValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(p *Profile)
		wantErr error
	}{
		{
			name:    "empty_user_id",
			mutate:  func(p *Profile) { p.UserID = uuid.Nil },
			wantErr: ErrEmptyProfileUserID,
		},
		{
			name:    "empty_id",
			mutate:  func(p *Profile) { p.ID = uuid.Nil },
			wantErr: ErrEmptyProfileID,
		},
		{
			name:    "long_first_name",
			mutate:  func(p *Profile) { p.FirstName = strings.Repeat("x", 101) },
			wantErr: ErrFirstNameTooLong,
		},
		{
			name:    "long_last_name",
			mutate:  func(p *Profile) { p.LastName = strings.Repeat("x", 101) },
			wantErr: ErrLastNameTooLong,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			profile, err := NewProfile(uuid.New(), "Ada", "Lovelace")
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			tc.mutate(profile)

			if err := profile.Validate(); err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}
