package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	categories     map[string]*domain.Category
	incidentCounts map[string]int
	nextID         int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		categories:     make(map[string]*domain.Category),
		incidentCounts: make(map[string]int),
	}
}

func (m *mockRepository) CreateCategory(_ context.Context, category *domain.Category) error {
	m.nextID++
	category.ID = fmt.Sprintf("cat-%d", m.nextID)
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m *mockRepository) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	if c, ok := m.categories[id]; ok {
		out := *c
		return &out, nil
	}
	return nil, ErrCategoryNotFound
}

func (m *mockRepository) GetCategoryByName(_ context.Context, name string) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.Name == name {
			out := *c
			return &out, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (m *mockRepository) ListCategories(_ context.Context, filter CategoryFilter) ([]domain.Category, error) {
	out := make([]domain.Category, 0)
	for _, c := range m.categories {
		if !filter.IncludeInactive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockRepository) UpdateCategory(_ context.Context, category *domain.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return ErrCategoryNotFound
	}
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m *mockRepository) DeleteCategory(_ context.Context, id string) error {
	if _, ok := m.categories[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockRepository) GetIncidentCountForCategory(_ context.Context, categoryID string) (int, error) {
	return m.incidentCounts[categoryID], nil
}

func TestCreateCategory(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)
	ctx := context.Background()

	category := &domain.Category{Name: "Electrical", Description: "Wiring and lighting"}
	err := service.CreateCategory(ctx, category)
	require.NoError(t, err)

	assert.NotEmpty(t, category.ID)
	assert.True(t, category.IsActive)
	assert.Equal(t, 1, category.PriorityLevel) // default floor

	// Duplicate name is refused.
	err = service.CreateCategory(ctx, &domain.Category{Name: "Electrical"})
	assert.ErrorIs(t, err, ErrNameExists)
}

func TestUpdateCategory_NameConflict(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)
	ctx := context.Background()

	a := &domain.Category{Name: "Plumbing"}
	require.NoError(t, service.CreateCategory(ctx, a))
	b := &domain.Category{Name: "HVAC"}
	require.NoError(t, service.CreateCategory(ctx, b))

	// Renaming onto an existing name fails.
	b.Name = "Plumbing"
	err := service.UpdateCategory(ctx, b)
	assert.ErrorIs(t, err, ErrNameExists)

	// Updating while keeping one's own name is fine.
	a.Description = "Pipes and drains"
	assert.NoError(t, service.UpdateCategory(ctx, a))
}

func TestDeactivateAndRestore(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)
	ctx := context.Background()

	category := &domain.Category{Name: "Grounds"}
	require.NoError(t, service.CreateCategory(ctx, category))

	require.NoError(t, service.DeactivateCategory(ctx, category.ID))
	err := service.DeactivateCategory(ctx, category.ID)
	assert.ErrorIs(t, err, ErrAlreadyInactive)

	// Inactive categories disappear from the default listing.
	active, err := service.ListCategories(ctx, CategoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := service.ListCategories(ctx, CategoryFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, service.RestoreCategory(ctx, category.ID))
	err = service.RestoreCategory(ctx, category.ID)
	assert.ErrorIs(t, err, ErrNotInactive)
}

func TestDeleteCategory_RefusedWhileReferenced(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)
	ctx := context.Background()

	category := &domain.Category{Name: "Carpentry"}
	require.NoError(t, service.CreateCategory(ctx, category))
	repo.incidentCounts[category.ID] = 3

	err := service.DeleteCategory(ctx, category.ID)
	assert.ErrorIs(t, err, ErrCategoryInUse)

	repo.incidentCounts[category.ID] = 0
	assert.NoError(t, service.DeleteCategory(ctx, category.ID))

	err = service.DeleteCategory(ctx, category.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
