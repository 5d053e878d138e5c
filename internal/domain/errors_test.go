package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	t.Run("wraps_given_error", func(t *testing.T) {
		t.Parallel()

		err := NewValidationError("email", "must be a valid address", ErrInvalidEmail)

		if !errors.Is(err, ErrInvalidEmail) {
			t.Error("Expected errors.Is to match the wrapped sentinel")
		}

		if !strings.Contains(err.Error(), "email") {
			t.Errorf("Expected message to name the field, got %q", err.Error())
		}
	})

	t.Run("nil_error_wraps_validation_sentinel", func(t *testing.T) {
		t.Parallel()

		err := NewValidationError("title", "cannot be empty", nil)

		if !errors.Is(err, ErrValidation) {
			t.Error("Expected errors.Is to match ErrValidation")
		}

		if !strings.Contains(err.Error(), "title") {
			t.Errorf("Expected message to name the field, got %q", err.Error())
		}
	})

	t.Run("matches_as", func(t *testing.T) {
		t.Parallel()

		wrapped := NewValidationError("role", "unknown role", ErrInvalidMemberRole)

		var validationErr *ValidationError
		if !errors.As(wrapped, &validationErr) {
			t.Fatal("Expected errors.As to extract ValidationError")
		}

		if validationErr.Field != "role" {
			t.Errorf("Expected field role, got %s", validationErr.Field)
		}
	})
}
