package catalog

import (
	"context"

	"github.com/campusworks/incident-desk/internal/domain"
)

// Repository defines the interface for category data operations.
type Repository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	ListCategories(ctx context.Context, filter CategoryFilter) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Referencing-incidents check, used to refuse deletes.
	GetIncidentCountForCategory(ctx context.Context, categoryID string) (int, error)
}

// CategoryFilter represents filter criteria for listing categories.
type CategoryFilter struct {
	IncludeInactive bool
	MinPriority     *int
}
