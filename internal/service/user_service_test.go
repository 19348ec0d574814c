package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// fakeUserStore implements store.UserStore over a map keyed by email.
type fakeUserStore struct {
	byEmail map[string]*domain.User
	byID    map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[uuid.UUID]*domain.User),
	}
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if _, ok := s.byEmail[user.Email]; ok {
		return store.ErrEmailExists
	}
	copied := *user
	s.byEmail[user.Email] = &copied
	s.byID[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) WithTx(*sql.Tx) store.UserStore { return s }

// fakeHasher is a reversible stand-in for bcrypt so tests stay fast.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return auth.ErrInvalidCredentials
	}
	return nil
}

// stubJWTService issues deterministic tokens encoding the user id.
type stubJWTService struct {
	refreshClaims *auth.Claims
	refreshErr    error
}

func (s *stubJWTService) GenerateToken(_ context.Context, userID uuid.UUID, _ domain.UserRole) (string, error) {
	return "access:" + userID.String(), nil
}

func (s *stubJWTService) GenerateRefreshToken(_ context.Context, userID uuid.UUID, _ domain.UserRole) (string, error) {
	return "refresh:" + userID.String(), nil
}

func (s *stubJWTService) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}

func (s *stubJWTService) ValidateRefreshToken(_ context.Context, token string) (*auth.Claims, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	if s.refreshClaims != nil {
		return s.refreshClaims, nil
	}
	id, err := uuid.Parse(strings.TrimPrefix(token, "refresh:"))
	if err != nil {
		return nil, auth.ErrInvalidRefreshToken
	}
	return &auth.Claims{UserID: id, TokenType: "refresh"}, nil
}

func newUserServiceFixture() (*UserService, *fakeUserStore) {
	users := newFakeUserStore()
	hasher := fakeHasher{}
	svc := NewUserService(users, &stubJWTService{}, hasher, hasher, nil)
	return svc, users
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	t.Parallel()

	svc, users := newUserServiceFixture()

	result, err := svc.Register(context.Background(), "alice@example.com", "a long password", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.Equal(t, "Alice", result.User.Name)
	assert.Equal(t, domain.RoleUser, result.User.Role)
	assert.Equal(t, "access:"+result.User.ID.String(), result.AccessToken)
	assert.Equal(t, "refresh:"+result.User.ID.String(), result.RefreshToken)

	// The stored password is the hash, never the plaintext.
	stored := users.byEmail["alice@example.com"]
	assert.Equal(t, "hashed:a long password", stored.HashedPassword)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newUserServiceFixture()

	_, err := svc.Register(context.Background(), "alice@example.com", "a long password", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice@example.com", "another password", "")
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestRegisterInvalidEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newUserServiceFixture()

	_, err := svc.Register(context.Background(), "not-an-email", "a long password", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, _ := newUserServiceFixture()
	_, err := svc.Register(context.Background(), "alice@example.com", "a long password", "")
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		result, err := svc.Login(context.Background(), "alice@example.com", "a long password")
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "alice@example.com", "wrong password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com", "a long password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestRefreshReReadsUser(t *testing.T) {
	t.Parallel()

	svc, users := newUserServiceFixture()
	result, err := svc.Register(context.Background(), "alice@example.com", "a long password", "")
	require.NoError(t, err)

	// Promote the user after the original pair was issued; the next pair
	// must reflect the new role.
	users.byEmail["alice@example.com"].Role = domain.RoleAdmin

	refreshed, err := svc.Refresh(context.Background(), result.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, refreshed.User.Role)
}

func TestRefreshWithUnknownUser(t *testing.T) {
	t.Parallel()

	svc, _ := newUserServiceFixture()

	_, err := svc.Refresh(context.Background(), "refresh:"+uuid.NewString())
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestRefreshWithInvalidToken(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	hasher := fakeHasher{}
	svc := NewUserService(users, &stubJWTService{refreshErr: auth.ErrExpiredRefreshToken}, hasher, hasher, nil)

	_, err := svc.Refresh(context.Background(), "anything")
	assert.ErrorIs(t, err, auth.ErrExpiredRefreshToken)
}
