package incidents

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/campusworks/incident-desk/internal/domain"
	"github.com/campusworks/incident-desk/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Pagination constants.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service   *Service
	users     UserDirectory
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service, users UserDirectory) *Handler {
	return &Handler{
		service:   service,
		users:     users,
		validator: validator.New(),
	}
}

// RegisterRoutes registers routes available to any authenticated user.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", h.ListIncidents)
		r.Post("/", h.CreateIncident)
		r.Get("/search", h.SearchIncidents)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetIncident)
			r.Patch("/", h.UpdateIncident)
			r.Post("/logs", h.AppendLog)
			r.Get("/logs", h.GetResolutionLogs)
			r.Get("/status-updates", h.GetStatusUpdates)
			r.Get("/available-statuses", h.GetAvailableStatuses)
			r.Get("/report", h.GetReport)
		})
	})
}

// RegisterMaintenanceRoutes registers routes requiring maintenance role.
func (h *Handler) RegisterMaintenanceRoutes(r chi.Router) {
	r.Get("/incidents/pending", h.GetPendingIncidents)
	r.Get("/incidents/active", h.GetActiveIncidents)
	r.Get("/incidents/urgent", h.GetUrgentIncidents)
	r.Get("/incidents/overdue", h.GetOverdueIncidents)
	r.Get("/incidents/recent", h.GetRecentIncidents)
	r.Get("/incidents/high-priority", h.GetHighPriorityIncidents)
	r.Get("/incidents/by-status/{status}", h.GetIncidentsByStatus)
	r.Get("/incidents/by-category/{categoryID}", h.GetIncidentsByCategory)
	r.Get("/incidents/by-assignee/{assigneeID}", h.GetIncidentsByAssignee)
	r.Get("/incidents/by-reporter/{reporterID}", h.GetIncidentsByReporter)

	r.Put("/incidents/{id}/status", h.UpdateStatus)
	r.Put("/incidents/{id}/assign", h.AssignIncident)
	r.Post("/incidents/{id}/start-work", h.StartWork)
	r.Post("/incidents/{id}/pause-work", h.PauseWork)
	r.Post("/incidents/{id}/complete-work", h.CompleteWork)
	r.Post("/incidents/{id}/close", h.CloseIncident)

	r.Get("/dashboard/statistics", h.GetDashboardStatistics)
	r.Get("/dashboard/count-by-status", h.GetCountByStatus)
	r.Get("/dashboard/count-by-category", h.GetCountByCategory)
	r.Get("/dashboard/count-by-priority", h.GetCountByPriority)

	r.Post("/incidents/export/csv", h.ExportCSV)
}

// RegisterAdminRoutes registers routes requiring admin role.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/incidents/{id}", h.DeleteIncident)
	r.Put("/incidents/bulk/status", h.BulkUpdateStatus)
	r.Put("/incidents/bulk/assign", h.BulkAssign)
}

// CreateIncidentRequest represents the request body for reporting an incident.
type CreateIncidentRequest struct {
	Title                   string     `json:"title" validate:"required,min=1,max=255"`
	Description             string     `json:"description" validate:"required,min=1"`
	LocationDetails         string     `json:"location_details" validate:"max=500"`
	CategoryID              string     `json:"category_id" validate:"required"`
	PriorityLevel           int        `json:"priority_level" validate:"omitempty,min=1,max=4"`
	IsUrgent                bool       `json:"is_urgent"`
	IsConfidential          bool       `json:"is_confidential"`
	EstimatedResolutionDate *time.Time `json:"estimated_resolution_date"`
}

// UpdateIncidentRequest represents a partial update of incident details.
type UpdateIncidentRequest struct {
	Title                   *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description             *string    `json:"description" validate:"omitempty,min=1"`
	LocationDetails         *string    `json:"location_details" validate:"omitempty,max=500"`
	CategoryID              *string    `json:"category_id"`
	PriorityLevel           *int       `json:"priority_level" validate:"omitempty,min=1,max=4"`
	IsUrgent                *bool      `json:"is_urgent"`
	IsConfidential          *bool      `json:"is_confidential"`
	EstimatedResolutionDate *time.Time `json:"estimated_resolution_date"`
}

// UpdateStatusRequest represents the request body for a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=1000"`
}

// AssignRequest represents the request body for assigning an incident.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id" validate:"required"`
}

// WorkNotesRequest carries optional notes for work actions.
type WorkNotesRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}

// AppendLogRequest represents the request body for a resolution log entry.
type AppendLogRequest struct {
	LogType          string   `json:"log_type" validate:"required"`
	Action           string   `json:"action" validate:"required,min=1,max=255"`
	Notes            string   `json:"notes" validate:"max=2000"`
	TimeSpentMinutes *int     `json:"time_spent_minutes" validate:"omitempty,min=0"`
	MaterialsUsed    *string  `json:"materials_used"`
	CostIncurred     *float64 `json:"cost_incurred" validate:"omitempty,min=0"`
}

// BulkStatusRequest represents the request body for a bulk status sweep.
type BulkStatusRequest struct {
	IncidentIDs []string `json:"incident_ids" validate:"required,min=1"`
	Status      string   `json:"status" validate:"required"`
	Notes       string   `json:"notes" validate:"max=1000"`
}

// BulkAssignRequest represents the request body for a bulk assignment.
type BulkAssignRequest struct {
	IncidentIDs []string `json:"incident_ids" validate:"required,min=1"`
	AssigneeID  string   `json:"assignee_id" validate:"required"`
}

// ExportRequest represents the request body for a CSV export.
type ExportRequest struct {
	IncidentIDs []string `json:"incident_ids" validate:"required,min=1"`
}

// currentUser resolves the authenticated user from the request context.
func (h *Handler) currentUser(r *http.Request) (*domain.User, error) {
	userID := httputil.GetUserID(r.Context())
	if userID == "" {
		return nil, errors.New("no authenticated user in context")
	}
	return h.users.GetUserByID(r.Context(), userID)
}

// CreateIncident handles POST /incidents request.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.CreateIncident(r.Context(), CreateIncidentInput{
		Title:                   req.Title,
		Description:             req.Description,
		LocationDetails:         req.LocationDetails,
		CategoryID:              req.CategoryID,
		PriorityLevel:           req.PriorityLevel,
		IsUrgent:                req.IsUrgent,
		IsConfidential:          req.IsConfidential,
		EstimatedResolutionDate: req.EstimatedResolutionDate,
	}, user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, incident)
}

// GetIncident handles GET /incidents/{id} request.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	incident, err := h.service.GetIncident(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// ListIncidents handles GET /incidents request.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	incidents, err := h.service.ListIncidents(r.Context(), filter, user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incidents)
}

func parseListFilter(r *http.Request) (IncidentFilter, error) {
	filter := IncidentFilter{Limit: DefaultListLimit}
	q := r.URL.Query()

	if status := q.Get("status"); status != "" {
		s := domain.IncidentStatus(status)
		if !s.IsValid() {
			return filter, errors.New("invalid status filter")
		}
		filter.Status = &s
	}
	if categoryID := q.Get("category_id"); categoryID != "" {
		filter.CategoryID = &categoryID
	}
	if assigneeID := q.Get("assignee_id"); assigneeID != "" {
		filter.AssigneeID = &assigneeID
	}
	if urgent := q.Get("urgent"); urgent != "" {
		v := urgent == "true"
		filter.IsUrgent = &v
	}

	if l := q.Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			return filter, errors.New("limit must be a positive integer")
		}
		if parsed > MaxListLimit {
			parsed = MaxListLimit
		}
		filter.Limit = parsed
	}
	if o := q.Get("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil || parsed < 0 {
			return filter, errors.New("offset must be a non-negative integer")
		}
		filter.Offset = parsed
	}

	return filter, nil
}

// SearchIncidents handles GET /incidents/search request.
func (h *Handler) SearchIncidents(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		httputil.Error(w, http.StatusBadRequest, "missing search term")
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	incidents, err := h.service.SearchIncidents(r.Context(), term, filter.Limit, filter.Offset)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incidents)
}

// UpdateIncident handles PATCH /incidents/{id} request.
func (h *Handler) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.UpdateIncident(r.Context(), chi.URLParam(r, "id"), UpdateIncidentInput{
		Title:                   req.Title,
		Description:             req.Description,
		LocationDetails:         req.LocationDetails,
		CategoryID:              req.CategoryID,
		PriorityLevel:           req.PriorityLevel,
		IsUrgent:                req.IsUrgent,
		IsConfidential:          req.IsConfidential,
		EstimatedResolutionDate: req.EstimatedResolutionDate,
	}, user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// DeleteIncident handles DELETE /incidents/{id} request.
func (h *Handler) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.DeleteIncident(r.Context(), chi.URLParam(r, "id"), user); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus handles PUT /incidents/{id}/status request.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), domain.IncidentStatus(req.Status), user, req.Notes)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// AssignIncident handles PUT /incidents/{id}/assign request.
func (h *Handler) AssignIncident(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.AssignIncident(r.Context(), chi.URLParam(r, "id"), req.AssigneeID, user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// StartWork handles POST /incidents/{id}/start-work request.
func (h *Handler) StartWork(w http.ResponseWriter, r *http.Request) {
	h.workAction(w, r, func(user *domain.User, id, _ string) (*domain.Incident, error) {
		return h.service.StartWork(r.Context(), id, user)
	})
}

// PauseWork handles POST /incidents/{id}/pause-work request.
func (h *Handler) PauseWork(w http.ResponseWriter, r *http.Request) {
	h.workAction(w, r, func(user *domain.User, id, notes string) (*domain.Incident, error) {
		return h.service.PauseWork(r.Context(), id, user, notes)
	})
}

// CompleteWork handles POST /incidents/{id}/complete-work request.
func (h *Handler) CompleteWork(w http.ResponseWriter, r *http.Request) {
	h.workAction(w, r, func(user *domain.User, id, notes string) (*domain.Incident, error) {
		return h.service.CompleteWork(r.Context(), id, user, notes)
	})
}

// CloseIncident handles POST /incidents/{id}/close request.
func (h *Handler) CloseIncident(w http.ResponseWriter, r *http.Request) {
	h.workAction(w, r, func(user *domain.User, id, notes string) (*domain.Incident, error) {
		return h.service.CloseIncident(r.Context(), id, user, notes)
	})
}

func (h *Handler) workAction(w http.ResponseWriter, r *http.Request, fn func(user *domain.User, id, notes string) (*domain.Incident, error)) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Notes body is optional for work actions.
	var req WorkNotesRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	incident, err := fn(user, chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, incident)
}

// AppendLog handles POST /incidents/{id}/logs request.
func (h *Handler) AppendLog(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AppendLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	logType := domain.LogType(req.LogType)
	if !logType.IsValid() {
		httputil.Error(w, http.StatusBadRequest, "invalid log type")
		return
	}

	entry, err := h.service.AppendLog(r.Context(), chi.URLParam(r, "id"), AppendLogInput{
		LogType:          logType,
		Action:           req.Action,
		Notes:            req.Notes,
		TimeSpentMinutes: req.TimeSpentMinutes,
		MaterialsUsed:    req.MaterialsUsed,
		CostIncurred:     req.CostIncurred,
	}, user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, entry)
}

// GetResolutionLogs handles GET /incidents/{id}/logs request.
func (h *Handler) GetResolutionLogs(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	logs, err := h.service.GetResolutionLogs(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, logs)
}

// GetStatusUpdates handles GET /incidents/{id}/status-updates request.
func (h *Handler) GetStatusUpdates(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	updates, err := h.service.GetStatusUpdates(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, updates)
}

// GetAvailableStatuses handles GET /incidents/{id}/available-statuses request.
func (h *Handler) GetAvailableStatuses(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	incident, err := h.service.GetIncident(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, h.service.AvailableTransitions(incident))
}

// GetReport handles GET /incidents/{id}/report request.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	report, err := h.service.GenerateReport(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Text(w, http.StatusOK, report)
}

// GetPendingIncidents handles GET /incidents/pending request.
func (h *Handler) GetPendingIncidents(w http.ResponseWriter, r *http.Request) {
	h.listQuery(w, r, func() ([]*domain.Incident, error) {
		return h.service.GetPendingIncidents(r.Context())
	})
}

// GetActiveIncidents handles GET /incidents/active request.
func (h *Handler) GetActiveIncidents(w http.ResponseWriter, r *http.Request) {
	h.listQuery(w, r, func() ([]*domain.Incident, error) {
		return h.service.GetActiveIncidents(r.Context())
	})
}

// GetUrgentIncidents handles GET /incidents/urgent request.
func (h *Handler) GetUrgentIncidents(w http.ResponseWriter, r *http.Request) {
	h.listQuery(w, r, func() ([]*domain.Incident, error) {
		return h.service.GetUrgentIncidents(r.Context())
	})
}

// GetOverdueIncidents handles GET /incidents/overdue request.
func (h *Handler) GetOverdueIncidents(w http.ResponseWriter, r *http.Request) {
	h.listQuery(w, r, func() ([]*domain.Incident, error) {
		return h.service.GetOverdueIncidents(r.Context())
	})
}

// GetRecentIncidents handles GET /incidents/recent request.
func (h *Handler) GetRecentIncidents(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > MaxListLimit {
			parsed = MaxListLimit
		}
		limit = parsed
	}

	h.listQuery(w, r, func() ([]*domain.Incident, error) {
		return h.service.GetRecentIncidents(r.Context(), limit)
	})
}

// GetHighPriorityIncidents handles GET /incidents/high-priority request.
func (h *Handler) GetHighPriorityIncidents(w http.ResponseWriter, r *http.Request) {
	minPriority := 4
	if p := r.URL.Query().Get("min_priority"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 || parsed > 5 {
			httputil.Error(w, http.StatusBadRequest, "min_priority must be between 1 and 5")
			return
		}
		minPriority = parsed
	}

	h.listQuery(w, r, func() ([]*domain.Incident, error) {
		return h.service.GetHighPriorityIncidents(r.Context(), minPriority)
	})
}

// GetIncidentsByStatus handles GET /incidents/by-status/{status} request.
func (h *Handler) GetIncidentsByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.IncidentStatus(chi.URLParam(r, "status"))
	if !status.IsValid() {
		httputil.Error(w, http.StatusBadRequest, "invalid status")
		return
	}

	h.listQuery(w, r, func() ([]*domain.Incident, error) {
		return h.service.GetIncidentsByStatus(r.Context(), status)
	})
}

// GetIncidentsByCategory handles GET /incidents/by-category/{categoryID} request.
func (h *Handler) GetIncidentsByCategory(w http.ResponseWriter, r *http.Request) {
	h.listQuery(w, r, func() ([]*domain.Incident, error) {
		return h.service.GetIncidentsByCategory(r.Context(), chi.URLParam(r, "categoryID"))
	})
}

// GetIncidentsByAssignee handles GET /incidents/by-assignee/{assigneeID} request.
func (h *Handler) GetIncidentsByAssignee(w http.ResponseWriter, r *http.Request) {
	h.listQuery(w, r, func() ([]*domain.Incident, error) {
		return h.service.GetIncidentsByAssignee(r.Context(), chi.URLParam(r, "assigneeID"))
	})
}

// GetIncidentsByReporter handles GET /incidents/by-reporter/{reporterID} request.
func (h *Handler) GetIncidentsByReporter(w http.ResponseWriter, r *http.Request) {
	h.listQuery(w, r, func() ([]*domain.Incident, error) {
		return h.service.GetIncidentsByReporter(r.Context(), chi.URLParam(r, "reporterID"))
	})
}

func (h *Handler) listQuery(w http.ResponseWriter, r *http.Request, fn func() ([]*domain.Incident, error)) {
	incidents, err := fn()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, incidents)
}

// GetDashboardStatistics handles GET /dashboard/statistics request.
func (h *Handler) GetDashboardStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDashboardStatistics(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, stats)
}

// GetCountByStatus handles GET /dashboard/count-by-status request.
func (h *Handler) GetCountByStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.GetIncidentCountByStatus(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, counts)
}

// GetCountByCategory handles GET /dashboard/count-by-category request.
func (h *Handler) GetCountByCategory(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.GetIncidentCountByCategory(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, counts)
}

// GetCountByPriority handles GET /dashboard/count-by-priority request.
func (h *Handler) GetCountByPriority(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.GetIncidentCountByPriority(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Success(w, http.StatusOK, counts)
}

// BulkUpdateStatus handles PUT /incidents/bulk/status request.
func (h *Handler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req BulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	result := h.service.BulkUpdateStatus(r.Context(), req.IncidentIDs, domain.IncidentStatus(req.Status), user, req.Notes)
	httputil.Success(w, http.StatusOK, result)
}

// BulkAssign handles PUT /incidents/bulk/assign request.
func (h *Handler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req BulkAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	result := h.service.BulkAssign(r.Context(), req.IncidentIDs, req.AssigneeID, user)
	httputil.Success(w, http.StatusOK, result)
}

// ExportCSV handles POST /incidents/export/csv request.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	out, err := h.service.ExportCSV(r.Context(), req.IncidentIDs, user)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.CSV(w, "incidents.csv", out)
}

// serviceErrorMappings translates the lifecycle engine's sentinels into HTTP
// statuses. Anything unmapped falls through to a 500.
var serviceErrorMappings = []httputil.ErrorMapping{
	{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
	{Error: ErrReporterNotFound, Status: http.StatusNotFound},
	{Error: ErrAssigneeNotFound, Status: http.StatusUnprocessableEntity},
	{Error: ErrCategoryNotFound, Status: http.StatusUnprocessableEntity},
	{Error: ErrInvalidAssignee, Status: http.StatusUnprocessableEntity},
	{Error: ErrForbidden, Status: http.StatusForbidden},
	{Error: ErrIllegalTransition, Status: http.StatusConflict},
	{Error: ErrInvalidState, Status: http.StatusConflict},
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, serviceErrorMappings)
}
