package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token containing the user's information.
	// Returns the token string or an error if token generation fails.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns the claims containing user information if the token is valid,
	// or an error if validation fails (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed JWT refresh token containing the user's information.
	// Refresh tokens have a longer lifetime and are used to obtain new access tokens.
	// Returns the refresh token string or an error if token generation fails.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken validates the provided refresh token string and extracts the claims.
	// Returns the claims containing user information if the refresh token is valid,
	// or an error if validation fails (expired, invalid signature, wrong token type,
	// revoked, etc.).
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)

	// RevokeRefreshToken validates the provided refresh token and records its token ID
	// in the denylist so the token can no longer be redeemed. Used on logout.
	// Revoking an already revoked token is not an error.
	RevokeRefreshToken(ctx context.Context, tokenString string) error

	// GenerateActivationToken creates a signed JWT activation token embedding the
	// user's email address. Activation tokens are delivered by email and redeemed
	// once to verify account ownership.
	GenerateActivationToken(ctx context.Context, userID uuid.UUID, email string) (string, error)

	// ValidateActivationToken validates the provided activation token string and extracts
	// the claims, including the email address the token was issued for.
	ValidateActivationToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshTokenWithExpiry creates a refresh token with a custom expiration
	// time. Intended for tests that exercise expiration handling.
	GenerateRefreshTokenWithExpiry(
		ctx context.Context,
		userID uuid.UUID,
		expiryTime time.Time,
	) (string, error)
}

// TokenDenylist records revoked token IDs until their natural expiry.
type TokenDenylist interface {
	// Revoke marks the given token ID as revoked for the supplied TTL.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsRevoked reports whether the given token ID has been revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific fields.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType indicates the purpose of the token ("access", "refresh", or
	// "activation"). Used to prevent token misuse across different contexts.
	TokenType string `json:"type,omitempty"`

	// Email is the address an activation token was issued for.
	// Empty on access and refresh tokens.
	Email string `json:"email,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
