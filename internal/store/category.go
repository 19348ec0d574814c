package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// CategoryStore defines the interface for category data persistence.
type CategoryStore interface {
	// Create saves a new category to the store.
	// Returns ErrCategoryNameExists if the owner already has a category
	// with the same name.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its unique ID.
	// Returns ErrCategoryNotFound if the category does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// ListByOwner returns all of the owner's categories ordered by name.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Category, error)

	// Delete removes a category. Tasks referencing it keep a dangling
	// category id cleared by the schema's ON DELETE SET NULL.
	// Returns ErrCategoryNotFound if the category does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CategoryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CategoryStore
}
