package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// CategoryStore implements store.CategoryStore using PostgreSQL.
type CategoryStore struct {
	db store.DBTX
}

// NewCategoryStore creates a new CategoryStore using the given database connection.
func NewCategoryStore(db store.DBTX) *CategoryStore {
	return &CategoryStore{db: db}
}

// Ensure CategoryStore implements store.CategoryStore.
var _ store.CategoryStore = (*CategoryStore)(nil)

// WithTx implements store.CategoryStore.
func (s *CategoryStore) WithTx(tx *sql.Tx) store.CategoryStore {
	return &CategoryStore{db: tx}
}

// Create implements store.CategoryStore.
func (s *CategoryStore) Create(ctx context.Context, category *domain.Category) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO categories (id, name, color, icon, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		category.ID,
		category.Name,
		category.Color,
		category.Icon,
		category.OwnerID,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err, "categories_owner_id_name_key") {
			return store.ErrCategoryNameExists
		}
		return MapError(err)
	}

	return nil
}

// GetByID implements store.CategoryStore.
func (s *CategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `
		SELECT id, name, color, icon, owner_id, created_at, updated_at
		FROM categories WHERE id = $1
	`

	category, err := scanCategory(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCategoryNotFound
		}
		return nil, MapError(err)
	}

	return category, nil
}

// ListByOwner implements store.CategoryStore.
func (s *CategoryStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Category, error) {
	query := `
		SELECT id, name, color, icon, owner_id, created_at, updated_at
		FROM categories WHERE owner_id = $1 ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, MapError(err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return categories, nil
}

// Delete implements store.CategoryStore.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrCategoryNotFound
	}

	return nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		category domain.Category
		color    sql.NullString
		icon     sql.NullString
	)

	err := row.Scan(
		&category.ID,
		&category.Name,
		&color,
		&icon,
		&category.OwnerID,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	category.Color = color.String
	category.Icon = icon.String
	return &category, nil
}
