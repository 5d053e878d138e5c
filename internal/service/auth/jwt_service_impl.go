package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SeyyedAliBargh/task-manager-api/internal/config"
	"github.com/SeyyedAliBargh/task-manager-api/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// hmacJWTService is an implementation of JWTService using HMAC-SHA signing.
type hmacJWTService struct {
	signingKey              []byte
	tokenLifetime           time.Duration    // Access token lifetime
	refreshTokenLifetime    time.Duration    // Refresh token lifetime
	activationTokenLifetime time.Duration    // Activation token lifetime
	denylist                TokenDenylist    // Revocation store; nil disables revocation
	timeFunc                func() time.Time // Injectable for testing
	clockSkew               time.Duration    // Allowed time difference for validation to handle clock drift
}

// jwtCustomClaims defines the structure of JWT claims we use
type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"uid"`
	TokenType string    `json:"type"`
	Email     string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// tokenSentinels groups the errors reported for one token type.
type tokenSentinels struct {
	expired     error
	notYetValid error
	invalid     error
}

var (
	accessSentinels = tokenSentinels{
		expired:     ErrExpiredToken,
		notYetValid: ErrTokenNotYetValid,
		invalid:     ErrInvalidToken,
	}
	refreshSentinels = tokenSentinels{
		expired:     ErrExpiredRefreshToken,
		notYetValid: ErrInvalidRefreshToken,
		invalid:     ErrInvalidRefreshToken,
	}
	activationSentinels = tokenSentinels{
		expired:     ErrExpiredActivationToken,
		notYetValid: ErrInvalidActivationToken,
		invalid:     ErrInvalidActivationToken,
	}
)

// Ensure hmacJWTService implements JWTService interface
var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates a new JWT service using HMAC-SHA signing.
// The denylist may be nil, in which case refresh tokens cannot be revoked
// before their natural expiry.
func NewJWTService(cfg config.AuthConfig, denylist TokenDenylist) (JWTService, error) {
	// Convert token lifetimes from minutes to duration
	accessTokenLifetime := time.Duration(cfg.TokenLifetimeMinutes) * time.Minute
	refreshTokenLifetime := time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute
	activationTokenLifetime := time.Duration(cfg.ActivationTokenLifetimeMinutes) * time.Minute

	// Validate that the secret meets minimum length requirements
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacJWTService{
		signingKey:              []byte(cfg.JWTSecret),
		tokenLifetime:           accessTokenLifetime,
		refreshTokenLifetime:    refreshTokenLifetime,
		activationTokenLifetime: activationTokenLifetime,
		denylist:                denylist,
		timeFunc:                time.Now,
		clockSkew:               2 * time.Minute, // Allow 2 minutes of clock skew to handle minor time drifts
	}, nil
}

// newClaims builds the claim set shared by every token type.
func (s *hmacJWTService) newClaims(
	userID uuid.UUID,
	tokenType string,
	issuedAt, expiresAt time.Time,
) jwtCustomClaims {
	return jwtCustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(), // Unique token ID
		},
	}
}

// signClaims signs the given claims with HMAC-SHA256.
func (s *hmacJWTService) signClaims(ctx context.Context, claims jwtCustomClaims) (string, error) {
	log := logger.FromContext(ctx)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign JWT token",
			"error", err,
			"user_id", claims.UserID,
			"token_type", claims.TokenType,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign %s token with HMAC-SHA256: %w", claims.TokenType, err)
	}

	return signedToken, nil
}

// parseToken parses and validates a token string, requiring the embedded type
// claim to match tokenType. Validation failures are mapped to the sentinel
// errors for that token type.
func (s *hmacJWTService) parseToken(
	ctx context.Context,
	tokenString string,
	tokenType string,
	sentinels tokenSentinels,
) (*Claims, error) {
	log := logger.FromContext(ctx)

	// Parse and validate the token
	now := s.timeFunc()

	// Configure parser options
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew), // Allow for clock skew when validating time claims
		jwt.WithTimeFunc(func() time.Time {
			return now // Use our injected time function for validation
		}),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method is what we expect
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)

	// Handle parsing errors
	if err != nil {
		// Check for specific JWT validation errors
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token validation failed: token expired",
				"error", err,
				"token_type", tokenType)
			return nil, sentinels.expired
		} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
			log.Debug("token validation failed: token not yet valid",
				"error", err,
				"token_type", tokenType)
			return nil, sentinels.notYetValid
		} else if errors.Is(err, jwt.ErrTokenMalformed) {
			log.Debug("token validation failed: malformed token",
				"error", err,
				"token_type", tokenType)
			return nil, sentinels.invalid
		} else if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			log.Debug("token validation failed: invalid signature",
				"error", err,
				"token_type", tokenType)
			return nil, sentinels.invalid
		} else {
			log.Debug("token validation failed: other validation error",
				"error", err,
				"token_type", tokenType,
				"error_type", fmt.Sprintf("%T", err))
		}

		return nil, sentinels.invalid
	}

	// Extract claims from valid token
	if claims, ok := token.Claims.(*jwtCustomClaims); ok && token.Valid {
		// Verify the token was issued for this purpose
		if claims.TokenType != tokenType {
			log.Debug("token validation failed: wrong token type",
				"expected", tokenType,
				"actual", claims.TokenType)
			return nil, ErrWrongTokenType
		}

		customClaims := &Claims{
			UserID:    claims.UserID,
			TokenType: claims.TokenType,
			Email:     claims.Email,
			Subject:   claims.Subject,
			IssuedAt:  claims.IssuedAt.Time,
			ExpiresAt: claims.ExpiresAt.Time,
			ID:        claims.ID,
		}

		// Log successful token validation
		log.Debug("token validated successfully",
			"user_id", claims.UserID,
			"token_type", tokenType,
			"token_id", claims.ID,
			"expiry", claims.ExpiresAt.Time)

		return customClaims, nil
	}

	log.Debug("token validation failed: invalid claims",
		"token_type", tokenType)
	return nil, sentinels.invalid
}

// GenerateToken creates a signed JWT access token with user claims.
func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	now := s.timeFunc()
	claims := s.newClaims(userID, "access", now, now.Add(s.tokenLifetime))
	return s.signClaims(ctx, claims)
}

// ValidateToken validates a JWT access token and returns the claims if valid.
// It verifies the token has type "access" and returns ErrWrongTokenType if not.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.parseToken(ctx, tokenString, "access", accessSentinels)
}

// GenerateRefreshToken creates a signed JWT refresh token with user claims.
// Refresh tokens have longer lifetime than access tokens and are used to obtain new token pairs.
func (s *hmacJWTService) GenerateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
) (string, error) {
	now := s.timeFunc()
	claims := s.newClaims(userID, "refresh", now, now.Add(s.refreshTokenLifetime))
	return s.signClaims(ctx, claims)
}

// ValidateRefreshToken validates a JWT refresh token and returns the claims if valid.
// It verifies the token has type "refresh" and returns ErrWrongTokenType if not.
// Tokens revoked by an earlier logout are rejected with ErrRevokedRefreshToken.
func (s *hmacJWTService) ValidateRefreshToken(
	ctx context.Context,
	tokenString string,
) (*Claims, error) {
	claims, err := s.parseToken(ctx, tokenString, "refresh", refreshSentinels)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil {
		log := logger.FromContext(ctx)

		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Lookup failures are treated as not revoked.
			log.Warn("refresh token revocation check failed",
				"error", err,
				"token_id", claims.ID)
		} else if revoked {
			log.Debug("refresh token validation failed: token revoked",
				"token_id", claims.ID,
				"user_id", claims.UserID)
			return nil, ErrRevokedRefreshToken
		}
	}

	return claims, nil
}

// RevokeRefreshToken validates the given refresh token and records its token ID
// in the denylist until the token's natural expiry.
func (s *hmacJWTService) RevokeRefreshToken(ctx context.Context, tokenString string) error {
	log := logger.FromContext(ctx)

	claims, err := s.parseToken(ctx, tokenString, "refresh", refreshSentinels)
	if err != nil {
		return err
	}

	if s.denylist == nil {
		log.Warn("refresh token revocation requested but no denylist is configured",
			"token_id", claims.ID)
		return nil
	}

	// TTL covers the remaining token lifetime plus the validation leeway window.
	ttl := claims.ExpiresAt.Sub(s.timeFunc()) + s.clockSkew
	if ttl <= 0 {
		return nil
	}

	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		log.Error("failed to revoke refresh token",
			"error", err,
			"token_id", claims.ID,
			"user_id", claims.UserID)
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	log.Debug("refresh token revoked",
		"token_id", claims.ID,
		"user_id", claims.UserID)

	return nil
}

// GenerateActivationToken creates a signed JWT activation token carrying the
// user's email address. The token is embedded in the activation link sent to
// newly registered users.
func (s *hmacJWTService) GenerateActivationToken(
	ctx context.Context,
	userID uuid.UUID,
	email string,
) (string, error) {
	now := s.timeFunc()
	claims := s.newClaims(userID, "activation", now, now.Add(s.activationTokenLifetime))
	claims.Email = email
	return s.signClaims(ctx, claims)
}

// ValidateActivationToken validates a JWT activation token and returns the claims
// if valid. It verifies the token has type "activation" and returns ErrWrongTokenType
// if not.
func (s *hmacJWTService) ValidateActivationToken(
	ctx context.Context,
	tokenString string,
) (*Claims, error) {
	return s.parseToken(ctx, tokenString, "activation", activationSentinels)
}

// GenerateRefreshTokenWithExpiry is a testing helper function that generates a refresh token
// with a custom expiration time. This is used primarily for testing expiration scenarios.
func (s *hmacJWTService) GenerateRefreshTokenWithExpiry(
	ctx context.Context,
	userID uuid.UUID,
	expiryTime time.Time,
) (string, error) {
	claims := s.newClaims(userID, "refresh", s.timeFunc(), expiryTime)
	return s.signClaims(ctx, claims)
}
