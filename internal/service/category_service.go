package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/cache"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// CategoryService handles owner-scoped category management.
type CategoryService struct {
	categories store.CategoryStore
	cache      *cache.Gateway
	logger     *slog.Logger
}

// NewCategoryService creates a CategoryService over the given collaborators.
func NewCategoryService(
	categories store.CategoryStore,
	gateway *cache.Gateway,
	log *slog.Logger,
) *CategoryService {
	if log == nil {
		log = slog.Default()
	}

	return &CategoryService{
		categories: categories,
		cache:      gateway,
		logger:     log.With(slog.String("component", "category_service")),
	}
}

// Create adds a category for the owner.
// Returns store.ErrCategoryNameExists if the owner already has a category
// with that name.
func (s *CategoryService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	name, color, icon string,
) (*domain.Category, error) {
	category, err := domain.NewCategory(ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	category.Color = color
	category.Icon = icon

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// List returns the owner's categories.
func (s *CategoryService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Category, error) {
	categories, err := s.categories.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	return categories, nil
}

// Remove deletes a category after enforcing ownership. Tasks referencing
// it lose the category through the schema, so the owner's cached task
// listings are invalidated as well.
func (s *CategoryService) Remove(ctx context.Context, id uuid.UUID, requester domain.Requester) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !requester.CanAccess(category.OwnerID) {
		return domain.ErrForbidden
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.InvalidateUserTasks(ctx, category.OwnerID)

	return nil
}
