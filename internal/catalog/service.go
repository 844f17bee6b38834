// Package catalog provides HTTP handlers and business logic for managing
// facility categories.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusworks/incident-desk/internal/domain"
)

// Service implements category business logic.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateCategory creates a new category. Names are unique across the catalog.
func (s *Service) CreateCategory(ctx context.Context, category *domain.Category) error {
	existing, err := s.repo.GetCategoryByName(ctx, category.Name)
	if err != nil && !errors.Is(err, ErrCategoryNotFound) {
		return fmt.Errorf("check category name: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", ErrNameExists, category.Name)
	}

	if category.PriorityLevel == 0 {
		category.PriorityLevel = 1
	}
	category.IsActive = true

	return s.repo.CreateCategory(ctx, category)
}

// GetCategoryByID retrieves a category by ID. Implements the directory
// interface the incidents engine resolves categories through.
func (s *Service) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	return s.repo.GetCategoryByID(ctx, id)
}

// ListCategories retrieves categories matching the filter.
func (s *Service) ListCategories(ctx context.Context, filter CategoryFilter) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx, filter)
}

// UpdateCategory updates an existing category.
func (s *Service) UpdateCategory(ctx context.Context, category *domain.Category) error {
	existing, err := s.repo.GetCategoryByName(ctx, category.Name)
	if err != nil && !errors.Is(err, ErrCategoryNotFound) {
		return fmt.Errorf("check category name: %w", err)
	}
	if existing != nil && existing.ID != category.ID {
		return fmt.Errorf("%w: %s", ErrNameExists, category.Name)
	}

	return s.repo.UpdateCategory(ctx, category)
}

// DeactivateCategory soft-removes a category from the reporting form. Existing
// incidents keep their reference.
func (s *Service) DeactivateCategory(ctx context.Context, id string) error {
	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if !category.IsActive {
		return ErrAlreadyInactive
	}

	category.IsActive = false
	return s.repo.UpdateCategory(ctx, category)
}

// RestoreCategory reactivates a previously deactivated category.
func (s *Service) RestoreCategory(ctx context.Context, id string) error {
	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if category.IsActive {
		return ErrNotInactive
	}

	category.IsActive = true
	return s.repo.UpdateCategory(ctx, category)
}

// DeleteCategory removes a category permanently. Refused while incidents still
// reference it; deactivate instead.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.repo.GetCategoryByID(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.GetIncidentCountForCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count incidents for category: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d incidents", ErrCategoryInUse, count)
	}

	return s.repo.DeleteCategory(ctx, id)
}
