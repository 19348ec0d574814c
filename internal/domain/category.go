package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Category-specific validation errors
var (
	// ErrCategoryIDEmpty is returned when a category ID is empty or nil.
	ErrCategoryIDEmpty = errors.New("category ID cannot be empty")

	// ErrCategoryOwnerIDEmpty is returned when a category's owner ID is empty or nil.
	ErrCategoryOwnerIDEmpty = errors.New("category owner ID cannot be empty")

	// ErrCategoryNameEmpty is returned when a category's name is empty.
	ErrCategoryNameEmpty = errors.New("category name cannot be empty")
)

// Category groups a user's tasks. Category names are unique per owner.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCategory creates a new Category owned by ownerID.
// Returns an error if validation fails.
func NewCategory(ownerID uuid.UUID, name string) (*Category, error) {
	now := time.Now().UTC()
	category := &Category{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	return category, nil
}

// Validate checks if the Category has valid data.
func (c *Category) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCategoryIDEmpty
	}

	if c.OwnerID == uuid.Nil {
		return ErrCategoryOwnerIDEmpty
	}

	if c.Name == "" {
		return ErrCategoryNameEmpty
	}

	return nil
}
