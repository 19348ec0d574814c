package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// AuthResult is the outcome of a successful registration, login or refresh.
type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// UserService handles registration and credential-based authentication.
type UserService struct {
	users    store.UserStore
	jwt      auth.JWTService
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

// NewUserService creates a UserService over the given collaborators.
func NewUserService(
	users store.UserStore,
	jwtService auth.JWTService,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	log *slog.Logger,
) *UserService {
	if log == nil {
		log = slog.Default()
	}

	return &UserService{
		users:    users,
		jwt:      jwtService,
		hasher:   hasher,
		verifier: verifier,
		logger:   log.With(slog.String("component", "user_service")),
	}
}

// Register creates a new user account and issues a token pair.
// Returns store.ErrEmailExists if the email is already taken.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(email, hashed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	user.Name = name

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Login verifies an email/password pair and issues a token pair.
// Returns auth.ErrInvalidCredentials without distinguishing an unknown
// email from a wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token for a new token pair. The user
// is re-read so a changed role takes effect on the next pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *UserService) issueTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.jwt.GenerateToken(ctx, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(ctx, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
