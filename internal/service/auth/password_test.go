package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier_Compare(t *testing.T) {
	t.Parallel()

	verifier := NewBcryptVerifier()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery staple"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("matching_password", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, verifier.Compare(string(hash), "correct horse battery staple"))
	})

	t.Run("wrong_password", func(t *testing.T) {
		t.Parallel()

		err := verifier.Compare(string(hash), "incorrect donkey battery staple")
		assert.ErrorIs(t, err, bcrypt.ErrMismatchedHashAndPassword)
	})

	t.Run("malformed_hash", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, verifier.Compare("not-a-bcrypt-hash", "anything"))
	})
}
