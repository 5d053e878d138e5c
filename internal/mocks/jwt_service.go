package mocks

import (
	"context"
	"time"

	"github.com/SeyyedAliBargh/task-manager-api/internal/service/auth"
	"github.com/google/uuid"
)

// MockJWTService implements auth.JWTService for testing
type MockJWTService struct {
	// GenerateTokenFn allows test cases to mock the GenerateToken behavior
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// GenerateRefreshTokenFn allows test cases to mock the GenerateRefreshToken behavior
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshTokenFn allows test cases to mock the ValidateRefreshToken behavior
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// RevokeRefreshTokenFn allows test cases to mock the RevokeRefreshToken behavior
	RevokeRefreshTokenFn func(ctx context.Context, tokenString string) error

	// GenerateActivationTokenFn allows test cases to mock the GenerateActivationToken behavior
	GenerateActivationTokenFn func(ctx context.Context, userID uuid.UUID, email string) (string, error)

	// ValidateActivationTokenFn allows test cases to mock the ValidateActivationToken behavior
	ValidateActivationTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// GenerateRefreshTokenWithExpiryFn allows test cases to mock the
	// GenerateRefreshTokenWithExpiry behavior
	GenerateRefreshTokenWithExpiryFn func(ctx context.Context, userID uuid.UUID, expiryTime time.Time) (string, error)

	// Default values used when functions aren't explicitly defined
	Token           string
	RefreshToken    string
	ActivationToken string
	Err             error
	ValidateErr     error
	RevokeErr       error
	Claims          *auth.Claims

	// RevokedTokens records every token string passed to RevokeRefreshToken
	RevokedTokens []string
}

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	// If a custom function is provided, use it
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}

	// Otherwise use the default values
	return m.Token, m.Err
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	// If a custom function is provided, use it
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}

	// Otherwise use the default values
	return m.Claims, m.ValidateErr
}

// GenerateRefreshToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
) (string, error) {
	// If a custom function is provided, use it
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID)
	}

	// Otherwise use the default values
	return m.RefreshToken, m.Err
}

// ValidateRefreshToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateRefreshToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	// If a custom function is provided, use it
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}

	// Otherwise use the default values
	return m.Claims, m.ValidateErr
}

// RevokeRefreshToken implements the auth.JWTService interface
func (m *MockJWTService) RevokeRefreshToken(ctx context.Context, tokenString string) error {
	// If a custom function is provided, use it
	if m.RevokeRefreshTokenFn != nil {
		return m.RevokeRefreshTokenFn(ctx, tokenString)
	}

	// Otherwise record the call and use the default error
	m.RevokedTokens = append(m.RevokedTokens, tokenString)
	return m.RevokeErr
}

// GenerateActivationToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateActivationToken(
	ctx context.Context,
	userID uuid.UUID,
	email string,
) (string, error) {
	// If a custom function is provided, use it
	if m.GenerateActivationTokenFn != nil {
		return m.GenerateActivationTokenFn(ctx, userID, email)
	}

	// Otherwise use the default values
	return m.ActivationToken, m.Err
}

// ValidateActivationToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateActivationToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	// If a custom function is provided, use it
	if m.ValidateActivationTokenFn != nil {
		return m.ValidateActivationTokenFn(ctx, tokenString)
	}

	// Otherwise use the default values
	return m.Claims, m.ValidateErr
}

// GenerateRefreshTokenWithExpiry implements the auth.JWTService interface
func (m *MockJWTService) GenerateRefreshTokenWithExpiry(
	ctx context.Context,
	userID uuid.UUID,
	expiryTime time.Time,
) (string, error) {
	// If a custom function is provided, use it
	if m.GenerateRefreshTokenWithExpiryFn != nil {
		return m.GenerateRefreshTokenWithExpiryFn(ctx, userID, expiryTime)
	}

	// Otherwise use the default values
	return m.RefreshToken, m.Err
}
