package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service/auth"
)

// fakeJWTService validates exactly one known token.
type fakeJWTService struct {
	validToken  string
	claims      *auth.Claims
	validateErr error
}

func (s *fakeJWTService) GenerateToken(context.Context, uuid.UUID, domain.UserRole) (string, error) {
	return s.validToken, nil
}

func (s *fakeJWTService) GenerateRefreshToken(context.Context, uuid.UUID, domain.UserRole) (string, error) {
	return s.validToken, nil
}

func (s *fakeJWTService) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	if token != s.validToken {
		return nil, auth.ErrInvalidToken
	}
	return s.claims, nil
}

func (s *fakeJWTService) ValidateRefreshToken(_ context.Context, token string) (*auth.Claims, error) {
	return s.ValidateToken(context.Background(), token)
}

func runAuthenticated(t *testing.T, svc auth.JWTService, header string) (*httptest.ResponseRecorder, domain.Requester, bool) {
	t.Helper()

	var (
		requester domain.Requester
		found     bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requester, found = GetRequester(r)
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest("GET", "/api/tasks", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()

	NewAuthMiddleware(svc).Authenticate(next).ServeHTTP(w, r)
	return w, requester, found
}

func TestAuthenticateValidToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &fakeJWTService{
		validToken: "good-token",
		claims:     &auth.Claims{UserID: userID, Role: domain.RoleManager, TokenType: "access"},
	}

	w, requester, found := runAuthenticated(t, svc, "Bearer good-token")

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, found)
	assert.Equal(t, userID, requester.ID)
	assert.Equal(t, domain.RoleManager, requester.Role)
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	t.Parallel()

	w, _, found := runAuthenticated(t, &fakeJWTService{}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, found)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	t.Parallel()

	for _, header := range []string{"good-token", "Basic good-token", "Bearer a b"} {
		w, _, found := runAuthenticated(t, &fakeJWTService{validToken: "good-token"}, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.False(t, found)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	svc := &fakeJWTService{validateErr: auth.ErrExpiredToken}
	w, _, _ := runAuthenticated(t, svc, "Bearer stale-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	svc := &fakeJWTService{validToken: "good-token"}
	w, _, _ := runAuthenticated(t, svc, "Bearer forged-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuthenticateUnknownValidationFailureIs500(t *testing.T) {
	t.Parallel()

	svc := &fakeJWTService{validateErr: errors.New("keystore offline")}
	w, _, _ := runAuthenticated(t, svc, "Bearer any-token")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// The response never carries the raw error.
	assert.NotContains(t, w.Body.String(), "keystore")
}
