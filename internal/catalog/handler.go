package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/campusworks/incident-desk/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers category management routes (admin only).
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Post("/", h.CreateCategory)
		r.Patch("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
		r.Post("/{id}/deactivate", h.DeactivateCategory)
		r.Post("/{id}/restore", h.RestoreCategory)
	})
}

// RegisterPublicRoutes registers read-only category routes for any
// authenticated user.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{id}", h.GetCategory)
}

// CreateCategoryRequest represents the request body for creating a category.
type CreateCategoryRequest struct {
	Name                         string `json:"name" validate:"required,min=1,max=255"`
	Description                  string `json:"description" validate:"max=1000"`
	PriorityLevel                int    `json:"priority_level" validate:"omitempty,min=1,max=4"`
	EstimatedResolutionTimeHours int    `json:"estimated_resolution_time_hours" validate:"omitempty,min=1"`
}

// ToDomain converts the request to a domain model.
func (r *CreateCategoryRequest) ToDomain() *domain.Category {
	return &domain.Category{
		Name:                         r.Name,
		Description:                  r.Description,
		PriorityLevel:                r.PriorityLevel,
		EstimatedResolutionTimeHours: r.EstimatedResolutionTimeHours,
	}
}

// UpdateCategoryRequest represents the request body for updating a category.
type UpdateCategoryRequest struct {
	Name                         string `json:"name" validate:"required,min=1,max=255"`
	Description                  string `json:"description" validate:"max=1000"`
	PriorityLevel                int    `json:"priority_level" validate:"required,min=1,max=4"`
	EstimatedResolutionTimeHours int    `json:"estimated_resolution_time_hours" validate:"omitempty,min=1"`
}

// CreateCategory handles POST /categories request.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	category := req.ToDomain()
	if err := h.service.CreateCategory(r.Context(), category); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, category)
}

// GetCategory handles GET /categories/{id} request.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategoryByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, category)
}

// ListCategories handles GET /categories request.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	filter := CategoryFilter{}

	if r.URL.Query().Get("include_inactive") == "true" {
		filter.IncludeInactive = true
	}

	categories, err := h.service.ListCategories(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, categories)
}

// UpdateCategory handles PATCH /categories/{id} request.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	existing, err := h.service.GetCategoryByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.PriorityLevel = req.PriorityLevel
	existing.EstimatedResolutionTimeHours = req.EstimatedResolutionTimeHours

	if err := h.service.UpdateCategory(r.Context(), existing); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, existing)
}

// DeleteCategory handles DELETE /categories/{id} request.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeactivateCategory handles POST /categories/{id}/deactivate request.
func (h *Handler) DeactivateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeactivateCategory(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	category, err := h.service.GetCategoryByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, category)
}

// RestoreCategory handles POST /categories/{id}/restore request.
func (h *Handler) RestoreCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.RestoreCategory(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	category, err := h.service.GetCategoryByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, category)
}

var serviceErrorMappings = []httputil.ErrorMapping{
	{Error: ErrCategoryNotFound, Status: http.StatusNotFound},
	{Error: ErrNameExists, Status: http.StatusConflict},
	{Error: ErrCategoryInUse, Status: http.StatusConflict},
	{Error: ErrAlreadyInactive, Status: http.StatusConflict},
	{Error: ErrNotInactive, Status: http.StatusConflict},
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
}
