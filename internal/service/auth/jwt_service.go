package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// Claims holds the validated contents of a token.
type Claims struct {
	UserID    uuid.UUID
	Role      domain.UserRole
	TokenType string
	ExpiresAt time.Time
}

// JWTService issues and validates signed access and refresh tokens.
type JWTService interface {
	// GenerateToken creates a signed access token carrying the user's
	// identity and role.
	GenerateToken(ctx context.Context, userID uuid.UUID, role domain.UserRole) (string, error)

	// GenerateRefreshToken creates a signed refresh token with a longer
	// lifetime, used only to obtain new token pairs.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID, role domain.UserRole) (string, error)

	// ValidateToken validates an access token and returns its claims.
	// Returns ErrExpiredToken, ErrInvalidToken, ErrTokenNotYetValid or
	// ErrWrongTokenType on failure.
	ValidateToken(ctx context.Context, token string) (*Claims, error)

	// ValidateRefreshToken validates a refresh token and returns its
	// claims. Returns ErrExpiredRefreshToken, ErrInvalidRefreshToken or
	// ErrWrongTokenType on failure.
	ValidateRefreshToken(ctx context.Context, token string) (*Claims, error)
}
