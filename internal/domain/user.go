package domain

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// User-specific validation errors
var (
	// ErrUserIDEmpty is returned when a user ID is empty or nil.
	ErrUserIDEmpty = errors.New("user ID cannot be empty")

	// ErrUserEmailEmpty is returned when a user's email is empty.
	ErrUserEmailEmpty = errors.New("user email cannot be empty")

	// ErrUserEmailInvalid is returned when a user's email is malformed.
	ErrUserEmailInvalid = errors.New("user email is not a valid address")

	// ErrInvalidUserRole is returned when a role is not one of the known roles.
	ErrInvalidUserRole = errors.New("invalid user role")
)

// UserRole determines what a user may access beyond their own resources.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleManager UserRole = "MANAGER"
	RoleUser    UserRole = "USER"
)

// IsValid reports whether the role is one of the known user roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// User represents an account that owns tasks and categories.
// HashedPassword is a bcrypt hash and is never serialized.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	HashedPassword string    `json:"-"`
	Role           UserRole  `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email and bcrypt password hash,
// defaulting to the USER role. Returns an error if validation fails.
func NewUser(email, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           RoleUser,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrUserIDEmpty
	}

	if u.Email == "" {
		return ErrUserEmailEmpty
	}

	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrUserEmailInvalid
	}

	if !u.Role.IsValid() {
		return ErrInvalidUserRole
	}

	return nil
}

// Requester is the authorization context for a single request: the
// authenticated user's identity and role, as established by the auth
// middleware.
type Requester struct {
	ID   uuid.UUID
	Role UserRole
}

// CanAccess reports whether the requester may act on a resource owned by
// ownerID. Admins bypass the ownership check.
func (r Requester) CanAccess(ownerID uuid.UUID) bool {
	return r.ID == ownerID || r.Role == RoleAdmin
}
