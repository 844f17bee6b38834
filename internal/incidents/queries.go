package incidents

import (
	"context"
	"fmt"
	"time"

	"github.com/campusworks/incident-desk/internal/domain"
)

// ListIncidents retrieves incidents scoped to the caller's role. Reporters
// see only their own reports. Maintenance staff see incidents assigned to
// them plus the unassigned triage queue. Admins see everything the filter
// matches.
func (s *Service) ListIncidents(ctx context.Context, filter IncidentFilter, user *domain.User) ([]*domain.Incident, error) {
	switch {
	case user.Role.IsAdmin():
		// full filtering, no scoping
	case user.Role.IsMaintenance():
		if filter.AssigneeID != nil && *filter.AssigneeID == user.ID {
			// explicit own-queue request
		} else {
			filter.Unassigned = true
			filter.Statuses = []domain.IncidentStatus{domain.StatusReported, domain.StatusUnderReview}
		}
	default:
		filter.ReporterID = &user.ID
	}

	return s.repo.ListIncidents(ctx, filter)
}

// SearchIncidents performs a free-text search over title, description and
// location.
func (s *Service) SearchIncidents(ctx context.Context, term string, limit, offset int) ([]*domain.Incident, error) {
	return s.repo.ListIncidents(ctx, IncidentFilter{
		Search: term,
		Limit:  limit,
		Offset: offset,
	})
}

// GetIncidentsByStatus returns all incidents in the given status.
func (s *Service) GetIncidentsByStatus(ctx context.Context, status domain.IncidentStatus) ([]*domain.Incident, error) {
	return s.repo.ListIncidents(ctx, IncidentFilter{Status: &status})
}

// GetIncidentsByCategory returns all incidents in the given category.
func (s *Service) GetIncidentsByCategory(ctx context.Context, categoryID string) ([]*domain.Incident, error) {
	return s.repo.ListIncidents(ctx, IncidentFilter{CategoryID: &categoryID})
}

// GetIncidentsByReporter returns all incidents reported by the given user.
func (s *Service) GetIncidentsByReporter(ctx context.Context, reporterID string) ([]*domain.Incident, error) {
	if _, err := s.users.GetUserByID(ctx, reporterID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrReporterNotFound, reporterID)
	}
	return s.repo.ListIncidents(ctx, IncidentFilter{ReporterID: &reporterID})
}

// GetIncidentsByAssignee returns all incidents assigned to the given user.
func (s *Service) GetIncidentsByAssignee(ctx context.Context, assigneeID string) ([]*domain.Incident, error) {
	if _, err := s.users.GetUserByID(ctx, assigneeID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAssigneeNotFound, assigneeID)
	}
	return s.repo.ListIncidents(ctx, IncidentFilter{AssigneeID: &assigneeID})
}

// GetHighPriorityIncidents returns active incidents at or above the given
// priority.
func (s *Service) GetHighPriorityIncidents(ctx context.Context, minPriority int) ([]*domain.Incident, error) {
	return s.repo.ListIncidents(ctx, IncidentFilter{
		MinPriority: &minPriority,
		Statuses: []domain.IncidentStatus{
			domain.StatusReported, domain.StatusUnderReview,
			domain.StatusAssigned, domain.StatusInProgress,
		},
	})
}

// GetUrgentIncidents returns incidents flagged urgent.
func (s *Service) GetUrgentIncidents(ctx context.Context) ([]*domain.Incident, error) {
	urgent := true
	return s.repo.ListIncidents(ctx, IncidentFilter{IsUrgent: &urgent})
}

// GetOverdueIncidents returns unresolved incidents past their estimated
// resolution date.
func (s *Service) GetOverdueIncidents(ctx context.Context) ([]*domain.Incident, error) {
	return s.repo.ListOverdueIncidents(ctx, time.Now())
}

// GetRecentIncidents returns the most recently reported incidents.
func (s *Service) GetRecentIncidents(ctx context.Context, limit int) ([]*domain.Incident, error) {
	return s.repo.ListIncidents(ctx, IncidentFilter{Limit: limit})
}

// GetPendingIncidents returns incidents awaiting triage or assignment.
func (s *Service) GetPendingIncidents(ctx context.Context) ([]*domain.Incident, error) {
	return s.repo.ListIncidents(ctx, IncidentFilter{
		Statuses: []domain.IncidentStatus{domain.StatusReported, domain.StatusUnderReview},
	})
}

// GetActiveIncidents returns all incidents in a non-terminal, unresolved
// state.
func (s *Service) GetActiveIncidents(ctx context.Context) ([]*domain.Incident, error) {
	return s.repo.ListIncidents(ctx, IncidentFilter{
		Statuses: []domain.IncidentStatus{
			domain.StatusReported, domain.StatusUnderReview, domain.StatusAssigned,
			domain.StatusInProgress, domain.StatusOnHold,
		},
	})
}

// DashboardStats aggregates incident counts for the dashboard.
type DashboardStats struct {
	TotalIncidents    int `json:"total_incidents"`
	ActiveIncidents   int `json:"active_incidents"`
	ResolvedIncidents int `json:"resolved_incidents"`
	ClosedIncidents   int `json:"closed_incidents"`
	OverdueIncidents  int `json:"overdue_incidents"`
	UrgentIncidents   int `json:"urgent_incidents"`
}

// GetDashboardStatistics computes the dashboard summary.
func (s *Service) GetDashboardStatistics(ctx context.Context) (*DashboardStats, error) {
	total, err := s.repo.CountIncidents(ctx)
	if err != nil {
		return nil, fmt.Errorf("count incidents: %w", err)
	}

	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	overdue, err := s.GetOverdueIncidents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list overdue: %w", err)
	}

	urgent, err := s.GetUrgentIncidents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list urgent: %w", err)
	}

	return &DashboardStats{
		TotalIncidents: total,
		ActiveIncidents: byStatus[domain.StatusReported] + byStatus[domain.StatusUnderReview] +
			byStatus[domain.StatusAssigned] + byStatus[domain.StatusInProgress],
		ResolvedIncidents: byStatus[domain.StatusResolved],
		ClosedIncidents:   byStatus[domain.StatusClosed],
		OverdueIncidents:  len(overdue),
		UrgentIncidents:   len(urgent),
	}, nil
}

// GetIncidentCountByStatus returns counts keyed by status display name.
func (s *Service) GetIncidentCountByStatus(ctx context.Context) (map[string]int, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(byStatus))
	for status, count := range byStatus {
		out[status.DisplayName()] = count
	}
	return out, nil
}

// GetIncidentCountByCategory returns counts keyed by category name.
func (s *Service) GetIncidentCountByCategory(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByCategory(ctx)
}

// GetIncidentCountByPriority returns counts keyed by priority label.
func (s *Service) GetIncidentCountByPriority(ctx context.Context) (map[string]int, error) {
	byPriority, err := s.repo.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(byPriority))
	for level, count := range byPriority {
		out[fmt.Sprintf("Priority %d", level)] = count
	}
	return out, nil
}
