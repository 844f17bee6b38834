// Package postgres provides PostgreSQL implementation of catalog repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusworks/incident-desk/internal/catalog"
	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements catalog.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const categoryColumns = `
	id, name, description, priority_level, is_active,
	estimated_resolution_time_hours, created_at, updated_at
`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.PriorityLevel,
		&c.IsActive,
		&c.EstimatedResolutionTimeHours,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory creates a new category in the database.
func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (
			name, description, priority_level, is_active, estimated_resolution_time_hours
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		category.Name,
		category.Description,
		category.PriorityLevel,
		category.IsActive,
		category.EstimatedResolutionTimeHours,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// GetCategoryByID retrieves a category by ID.
func (r *Repository) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	category, err := scanCategory(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// GetCategoryByName retrieves a category by its unique name.
func (r *Repository) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = $1`

	category, err := scanCategory(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return category, nil
}

// ListCategories retrieves categories matching the filter, by priority then name.
func (r *Repository) ListCategories(ctx context.Context, filter catalog.CategoryFilter) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if !filter.IncludeInactive {
		query += " AND is_active = true"
	}

	if filter.MinPriority != nil {
		query += fmt.Sprintf(" AND priority_level >= $%d", argNum)
		args = append(args, *filter.MinPriority)
	}

	query += " ORDER BY priority_level DESC, name ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return out, nil
}

// UpdateCategory updates an existing category.
func (r *Repository) UpdateCategory(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories SET
			name = $2,
			description = $3,
			priority_level = $4,
			is_active = $5,
			estimated_resolution_time_hours = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.PriorityLevel,
		category.IsActive,
		category.EstimatedResolutionTimeHours,
	).Scan(&category.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.ErrCategoryNotFound
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category permanently.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// GetIncidentCountForCategory returns the number of incidents referencing the category.
func (r *Repository) GetIncidentCountForCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM incidents WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count incidents for category: %w", err)
	}
	return count, nil
}
