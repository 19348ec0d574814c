package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/config"
	"github.com/taskhub/taskhub-api/internal/domain"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

// newTestJWTService builds a service with a fixed clock for predictable
// expiry testing.
func newTestJWTService(timeFunc func() time.Time) *hmacJWTService {
	return &hmacJWTService{
		signingKey:           []byte(testSecret),
		tokenLifetime:        60 * time.Minute,
		refreshTokenLifetime: 7 * 24 * time.Hour,
		timeFunc:             timeFunc,
		clockSkew:            2 * time.Minute,
	}
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{
		JWTSecret:                   "too-short",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 10080,
	})
	require.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	svc := newTestJWTService(func() time.Time { return fixedTime })

	token, err := svc.GenerateToken(context.Background(), userID, domain.RoleManager)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, domain.RoleManager, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, fixedTime.Add(60*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestValidateTokenErrors(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		now := fixedTime
		svc := newTestJWTService(func() time.Time { return now })

		token, err := svc.GenerateToken(context.Background(), userID, domain.RoleUser)
		require.NoError(t, err)

		// Jump past the lifetime plus the allowed clock skew.
		now = fixedTime.Add(63 * time.Minute)
		_, err = svc.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("expiry within clock skew still validates", func(t *testing.T) {
		t.Parallel()
		now := fixedTime
		svc := newTestJWTService(func() time.Time { return now })

		token, err := svc.GenerateToken(context.Background(), userID, domain.RoleUser)
		require.NoError(t, err)

		now = fixedTime.Add(61 * time.Minute)
		_, err = svc.ValidateToken(context.Background(), token)
		assert.NoError(t, err)
	})

	t.Run("tampered token", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(func() time.Time { return fixedTime })

		token, err := svc.GenerateToken(context.Background(), userID, domain.RoleUser)
		require.NoError(t, err)

		_, err = svc.ValidateToken(context.Background(), token+"x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(func() time.Time { return fixedTime })
		other := newTestJWTService(func() time.Time { return fixedTime })
		other.signingKey = []byte("another-secret-that-is-long-enough-xx")

		token, err := other.GenerateToken(context.Background(), userID, domain.RoleUser)
		require.NoError(t, err)

		_, err = svc.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		svc := newTestJWTService(func() time.Time { return fixedTime })

		_, err := svc.ValidateToken(context.Background(), "not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenTypeSeparation(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	svc := newTestJWTService(func() time.Time { return fixedTime })

	accessToken, err := svc.GenerateToken(context.Background(), userID, domain.RoleUser)
	require.NoError(t, err)
	refreshToken, err := svc.GenerateRefreshToken(context.Background(), userID, domain.RoleUser)
	require.NoError(t, err)

	// A refresh token is not an access token and vice versa.
	_, err = svc.ValidateToken(context.Background(), refreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.ValidateRefreshToken(context.Background(), accessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	claims, err := svc.ValidateRefreshToken(context.Background(), refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestValidateRefreshTokenUsesRefreshSentinels(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := fixedTime
	svc := newTestJWTService(func() time.Time { return now })

	refreshToken, err := svc.GenerateRefreshToken(context.Background(), uuid.New(), domain.RoleUser)
	require.NoError(t, err)

	now = fixedTime.Add(7*24*time.Hour + 3*time.Minute)
	_, err = svc.ValidateRefreshToken(context.Background(), refreshToken)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)

	_, err = svc.ValidateRefreshToken(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(4) // minimum cost keeps the test fast

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, hasher.Compare(hash, "correct horse battery staple"))
	assert.Error(t, hasher.Compare(hash, "wrong password"))
}
