package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Profile
var (
	ErrEmptyProfileID     = errors.New("profile ID cannot be empty")
	ErrEmptyProfileUserID = errors.New("profile user ID cannot be empty")
	ErrFirstNameTooLong   = errors.New("first name must be at most 100 characters long")
	ErrLastNameTooLong    = errors.New("last name must be at most 100 characters long")
)

// Profile holds the display information attached one-to-one to a User.
// It is created in the same transaction as the user account so every
// account always has one.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	ImageURL    string    `json:"image_url,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProfile creates a new Profile for the given user.
// Returns an error if validation fails.
func NewProfile(userID uuid.UUID, firstName, lastName string) (*Profile, error) {
	now := time.Now().UTC()
	profile := &Profile{
		ID:        uuid.New(),
		UserID:    userID,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

// Validate checks if the Profile has valid data.
func (p *Profile) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProfileID
	}

	if p.UserID == uuid.Nil {
		return ErrEmptyProfileUserID
	}

	if len(p.FirstName) > 100 {
		return ErrFirstNameTooLong
	}

	if len(p.LastName) > 100 {
		return ErrLastNameTooLong
	}

	return nil
}
